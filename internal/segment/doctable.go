// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment

import (
	"os"

	"github.com/fxi-dev/fxi/internal/fxierr"
)

// DocTableWriter appends fixed-width Document records to docs.bin in
// increasing DocID order, matching §3's invariant that document ids are
// dense and monotonically assigned inside one build.
type DocTableWriter struct {
	f   *os.File
	buf [DocRecordSize]byte
}

func CreateDocTable(path string) (*DocTableWriter, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fxierr.IO(path, err)
	}
	return &DocTableWriter{f: f}, nil
}

func (w *DocTableWriter) Append(d Document) error {
	EncodeDocument(w.buf[:], d)
	if _, err := w.f.Write(w.buf[:]); err != nil {
		return fxierr.IO(w.f.Name(), err)
	}
	return nil
}

func (w *DocTableWriter) Close() error { return w.f.Close() }

// DocTable is a memory-mapped, mmap-addressable array of Document records
// (§3: "Records are fixed-width so the full document table is a
// mmap-addressable array").
type DocTable struct {
	mm mmapData
}

func OpenDocTable(path string) (*DocTable, error) {
	mm, err := mmapPath(path)
	if err != nil {
		return nil, fxierr.IO(path, err)
	}
	if len(mm.d)%DocRecordSize != 0 {
		return nil, fxierr.Corrupt("doctable.size", nil)
	}
	return &DocTable{mm: mm}, nil
}

// Count returns the number of documents in the table.
func (t *DocTable) Count() int { return len(t.mm.d) / DocRecordSize }

// Get decodes the document record at index i (0 <= i < Count()).
func (t *DocTable) Get(i int) (Document, error) {
	if i < 0 || i >= t.Count() {
		return Document{}, fxierr.Corrupt("doctable.index", nil)
	}
	off := i * DocRecordSize
	return DecodeDocument(t.mm.d[off : off+DocRecordSize])
}

func (t *DocTable) Close() error { return unmmapFile(&t.mm) }
