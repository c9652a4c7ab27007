// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapData is mmap'ed read-only data from a file, the same wrapper shape as
// index/read.go's mmapData — but built on golang.org/x/sys/unix.Mmap
// instead of the teacher's unexported syscall.Mmap call, matching the
// dependency rybkr-gitvista and standardbeagle-lci both already carry.
type mmapData struct {
	f *os.File
	d []byte
}

// mmapFile maps f's full contents read-only. An empty file maps to a
// zero-length byte range rather than failing, so callers representing
// missing optional segment files (§4.4, §9) can mmap a zero-byte file and
// get back `d == nil` without special-casing.
func mmapFile(f *os.File) (mmapData, error) {
	info, err := f.Stat()
	if err != nil {
		return mmapData{}, err
	}
	size := info.Size()
	if size == 0 {
		return mmapData{f: f}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return mmapData{}, err
	}
	return mmapData{f: f, d: data}, nil
}

// mmapPath opens and maps the file at path. A missing file is represented
// as a zero-length byte range (§4.4, §9) rather than an error, since
// optional per-segment files (e.g. an empty segment's tokens.postings) may
// legitimately not exist.
func mmapPath(path string) (mmapData, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return mmapData{}, nil
	}
	if err != nil {
		return mmapData{}, err
	}
	return mmapFile(f)
}

func unmmapFile(m *mmapData) error {
	if m.d != nil {
		if err := unix.Munmap(m.d); err != nil {
			return err
		}
		m.d = nil
	}
	if m.f != nil {
		return m.f.Close()
	}
	return nil
}
