// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapRead maps f read-only and copies its contents into a heap buffer,
// then unmaps. Trigram/token extraction need the bytes to outlive the
// mapping anyway (they run well after this call returns), so there is no
// benefit to holding the mapping open past this single read — unlike
// internal/segment's long-lived index mappings, this is strictly a large-
// file read strategy (§4.5: "larger files via mmap").
func mmapRead(f *os.File, size int64) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	defer unix.Munmap(data)
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
