// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapReadContent mirrors internal/build's mmapRead: map read-only, copy
// into a heap buffer, unmap immediately. A verification worker's read is
// as transient as the builder's extraction pass, so the same one-shot
// strategy applies (§4.5, §4.8).
func mmapReadContent(f *os.File, size int64) ([]byte, error) {
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
