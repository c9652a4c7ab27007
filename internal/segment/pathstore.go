// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment

import (
	"os"

	"github.com/fxi-dev/fxi/internal/codec"
	"github.com/fxi-dev/fxi/internal/fxierr"
)

// PathStoreWriter appends length-prefixed UTF-8 path strings to paths.bin
// and reports the byte offset of each, which becomes the written
// Document's PathID (§3, §6.1). Paths are stored relative to the indexed
// root, same convention as index/path.go's Path type but without that
// type's prefix compression — §6.1 specifies plain length-prefixed bytes
// for paths.bin.
type PathStoreWriter struct {
	f      *os.File
	offset uint32
}

func CreatePathStore(path string) (*PathStoreWriter, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fxierr.IO(path, err)
	}
	return &PathStoreWriter{f: f}, nil
}

// Append writes relPath and returns the byte offset to store as a
// Document's PathID.
func (w *PathStoreWriter) Append(relPath string) (uint32, error) {
	off := w.offset
	buf := codec.PutUvarint(nil, uint64(len(relPath)))
	buf = append(buf, relPath...)
	n, err := w.f.Write(buf)
	if err != nil {
		return 0, fxierr.IO(w.f.Name(), err)
	}
	w.offset += uint32(n)
	return off, nil
}

func (w *PathStoreWriter) Close() error { return w.f.Close() }

// PathStore is a memory-mapped, read-only view of paths.bin.
type PathStore struct {
	mm mmapData
}

func OpenPathStore(path string) (*PathStore, error) {
	mm, err := mmapPath(path)
	if err != nil {
		return nil, fxierr.IO(path, err)
	}
	return &PathStore{mm: mm}, nil
}

// Read returns the path stored at byte offset off.
func (p *PathStore) Read(off uint32) (string, error) {
	if int(off) > len(p.mm.d) {
		return "", fxierr.Corrupt("pathstore.offset", nil)
	}
	buf := p.mm.d[off:]
	n, w, err := codec.Uvarint(buf, "pathstore.length")
	if err != nil {
		return "", err
	}
	buf = buf[w:]
	if n > uint64(len(buf)) {
		return "", fxierr.Truncated("pathstore.bytes")
	}
	return string(buf[:n]), nil
}

func (p *PathStore) Close() error { return unmmapFile(&p.mm) }
