// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"

	"github.com/fxi-dev/fxi/internal/codec"
	"github.com/fxi-dev/fxi/internal/fxierr"
)

// ProcessedDoc is one file's extracted index data, produced by the
// builder's processor stage and consumed by the writer stage (§4.5). Trigrams
// and Tokens must already be deduplicated per document; LocalID is the
// document's position within this segment (0-based, contiguous).
type ProcessedDoc struct {
	LocalID     uint32
	Trigrams    []uint32
	Tokens      []string
	LineOffsets []uint32
}

// trigramDictEntrySize mirrors index/read.go's fixed-width v1 posting
// index entry (3-byte trigram + offset + length), extended with a doc-freq
// field the planner needs for §4.7 rule 4's ascending-frequency ordering.
const trigramDictEntrySize = 3 + 4 + 4 + 4 // trigram | offset | length | docFreq

// tokenMaxLen bounds an individual token's stored length; tokens longer
// than this (rare for source identifiers) are truncated before indexing,
// keeping tokens.dict a fixed-width, binary-searchable file the same way
// grams.dict is, instead of needing a second variable-length blob file
// §6.1 does not name.
const tokenMaxLen = 63
const tokenDictEntrySize = 1 + tokenMaxLen + 4 + 4 + 4 // len | bytes | offset | length | docFreq

// WriteSegment builds one immutable on-disk segment directory from a batch
// of processed documents (§4.3). All per-segment files are written to temp
// paths in dir and then atomically renamed into place so a crash mid-write
// leaves no corrupted segment visible.
func WriteSegment(dir string, docs []ProcessedDoc, bloomM, bloomK uint32) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fxierr.IO(dir, err)
	}

	trigramPostings := make(map[uint32][]uint32)
	tokenPostings := make(map[string][]uint32)
	bloom := &codec.Bloom{M: bloomM, K: bloomK, Bits: make([]byte, (bloomM+7)/8)}

	for _, d := range docs {
		for _, t := range d.Trigrams {
			trigramPostings[t] = append(trigramPostings[t], d.LocalID)
			bloom.Insert(t)
		}
		for _, tok := range d.Tokens {
			if len(tok) > tokenMaxLen {
				tok = tok[:tokenMaxLen]
			}
			tokenPostings[tok] = append(tokenPostings[tok], d.LocalID)
		}
	}

	if err := writeTrigramDict(dir, trigramPostings); err != nil {
		return err
	}
	if err := writeTokenDict(dir, tokenPostings); err != nil {
		return err
	}
	if err := writeBloom(dir, bloom); err != nil {
		return err
	}
	if err := writeLineMap(dir, docs); err != nil {
		return err
	}
	return nil
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fxierr.IO(tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fxierr.IO(path, err)
	}
	return nil
}

func writeTrigramDict(dir string, postings map[uint32][]uint32) error {
	keys := make([]uint32, 0, len(postings))
	for k := range postings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var postBuf []byte
	dict := make([]byte, 0, len(keys)*trigramDictEntrySize)
	for _, key := range keys {
		ids := postings[key]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		off := uint32(len(postBuf))
		postBuf = codec.EncodeDeltas(postBuf, ids)
		length := uint32(len(postBuf)) - off

		var rec [trigramDictEntrySize]byte
		rec[0], rec[1], rec[2] = byte(key>>16), byte(key>>8), byte(key)
		binary.LittleEndian.PutUint32(rec[3:7], off)
		binary.LittleEndian.PutUint32(rec[7:11], length)
		binary.LittleEndian.PutUint32(rec[11:15], uint32(len(ids)))
		dict = append(dict, rec[:]...)
	}
	if err := atomicWrite(filepath.Join(dir, "grams.dict"), dict); err != nil {
		return err
	}
	return atomicWrite(filepath.Join(dir, "grams.postings"), postBuf)
}

func writeTokenDict(dir string, postings map[string][]uint32) error {
	keys := make([]string, 0, len(postings))
	for k := range postings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var postBuf []byte
	dict := make([]byte, 0, len(keys)*tokenDictEntrySize)
	for _, key := range keys {
		ids := postings[key]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		off := uint32(len(postBuf))
		postBuf = codec.EncodeDeltas(postBuf, ids)
		length := uint32(len(postBuf)) - off

		var rec [tokenDictEntrySize]byte
		rec[0] = byte(len(key))
		copy(rec[1:1+tokenMaxLen], key)
		binary.LittleEndian.PutUint32(rec[1+tokenMaxLen:5+tokenMaxLen], off)
		binary.LittleEndian.PutUint32(rec[5+tokenMaxLen:9+tokenMaxLen], length)
		binary.LittleEndian.PutUint32(rec[9+tokenMaxLen:13+tokenMaxLen], uint32(len(ids)))
		dict = append(dict, rec[:]...)
	}
	if err := atomicWrite(filepath.Join(dir, "tokens.dict"), dict); err != nil {
		return err
	}
	return atomicWrite(filepath.Join(dir, "tokens.postings"), postBuf)
}

// writeBloom persists a filter whose (m, k) must match whatever the
// index-wide policy fixed at build start (§3: "Its (m, k) parameters ...
// must match across any operation that combines filters").
func writeBloom(dir string, b *codec.Bloom) error {
	buf := make([]byte, 8+len(b.Bits))
	binary.LittleEndian.PutUint32(buf[0:4], b.M)
	binary.LittleEndian.PutUint32(buf[4:8], b.K)
	copy(buf[8:], b.Bits)
	return atomicWrite(filepath.Join(dir, "bloom.bin"), buf)
}

func writeLineMap(dir string, docs []ProcessedDoc) error {
	// Sort by LocalID so the offset table (addressed by local doc id,
	// §3's "Line-offset table: ... keyed by local document id") can be a
	// simple dense array.
	ordered := make([]ProcessedDoc, len(docs))
	copy(ordered, docs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].LocalID < ordered[j].LocalID })

	var blob []byte
	offsets := make([]uint32, len(ordered)+1)
	counts := make([]uint32, len(ordered))
	for i, d := range ordered {
		offsets[i] = uint32(len(blob))
		counts[i] = uint32(len(d.LineOffsets))
		blob = codec.EncodeDeltas(blob, d.LineOffsets)
	}
	offsets[len(ordered)] = uint32(len(blob))

	header := make([]byte, 4+4*len(offsets)+4*len(counts))
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(ordered)))
	pos := 4
	for _, off := range offsets {
		binary.LittleEndian.PutUint32(header[pos:pos+4], off)
		pos += 4
	}
	for _, c := range counts {
		binary.LittleEndian.PutUint32(header[pos:pos+4], c)
		pos += 4
	}
	buf := append(header, blob...)
	return atomicWrite(filepath.Join(dir, "linemap.bin"), buf)
}
