// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package segment implements the on-disk segment format: the document
// table, path store, meta record, and the trigram/token dictionaries and
// posting stores that make up one immutable segment (§3, §6.1). It
// generalizes index/write.go and index/read.go's fixed-width record and
// binary-search dictionary style from the teacher's single-file v1 format
// to the spec's per-segment directory layout.
package segment

import (
	"encoding/binary"

	"github.com/fxi-dev/fxi/internal/fxierr"
)

// Language is a small finite enumeration tag (§3). Values at or
// above LanguageCount are never valid on disk.
type Language uint16

const LanguageCount = 64

// Flag is a bit in a Document's flag set (§3).
type Flag uint16

const (
	FlagMinified Flag = 1 << iota
	FlagStale
	FlagTombstone
	FlagBinary
	FlagGenerated
)

func (f Flag) Has(bit Flag) bool { return f&bit != 0 }

// DocRecordSize is the fixed on-disk width of one Document record (§6.1):
// u32 doc_id | u32 path_id | u64 size | u64 mtime_secs | u16 language |
// u16 flags | u16 segment_id.
const DocRecordSize = 4 + 4 + 8 + 8 + 2 + 2 + 2

// Document is one indexed file (§3). PathID is a byte offset into the
// path store, not a sequential path index — "addressed by byte offset"
// per §3.
type Document struct {
	DocID     uint32
	PathID    uint32
	Size      uint64
	MTimeSecs uint64
	Language  Language
	Flags     Flag
	SegmentID uint16
}

// EncodeDocument writes d's fixed-width record into buf, which must be at
// least DocRecordSize bytes.
func EncodeDocument(buf []byte, d Document) {
	binary.LittleEndian.PutUint32(buf[0:4], d.DocID)
	binary.LittleEndian.PutUint32(buf[4:8], d.PathID)
	binary.LittleEndian.PutUint64(buf[8:16], d.Size)
	binary.LittleEndian.PutUint64(buf[16:24], d.MTimeSecs)
	binary.LittleEndian.PutUint16(buf[24:26], uint16(d.Language))
	binary.LittleEndian.PutUint16(buf[26:28], uint16(d.Flags))
	binary.LittleEndian.PutUint16(buf[28:30], d.SegmentID)
}

// DecodeDocument reads one fixed-width Document record from buf.
//
// The language tag is validated against LanguageCount here: an
// out-of-range value is reported as IndexCorrupt rather than silently
// reinterpreted as a Language, per §3's invariant and §9's "Source-language
// enums from raw bytes" note.
func DecodeDocument(buf []byte) (Document, error) {
	if len(buf) < DocRecordSize {
		return Document{}, fxierr.Truncated("document record")
	}
	d := Document{
		DocID:     binary.LittleEndian.Uint32(buf[0:4]),
		PathID:    binary.LittleEndian.Uint32(buf[4:8]),
		Size:      binary.LittleEndian.Uint64(buf[8:16]),
		MTimeSecs: binary.LittleEndian.Uint64(buf[16:24]),
		Language:  Language(binary.LittleEndian.Uint16(buf[24:26])),
		Flags:     Flag(binary.LittleEndian.Uint16(buf[26:28])),
		SegmentID: binary.LittleEndian.Uint16(buf[28:30]),
	}
	if uint16(d.Language) >= LanguageCount {
		return Document{}, fxierr.Corrupt("document.language", nil)
	}
	return d, nil
}
