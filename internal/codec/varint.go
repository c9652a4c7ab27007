// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package codec implements the low-level on-disk encodings shared by every
// segment file: unsigned varints, delta-encoded posting lists, and the
// fixed-(m,k) bloom filter. See index/write.go and index/delta.go in the
// codesearch teacher for the encoding style this generalizes from
// gamma-coded 32-bit deltas to plain varint deltas over the 32-bit doc id
// space the spec requires.
package codec

import (
	"encoding/binary"

	"github.com/fxi-dev/fxi/internal/fxierr"
)

// PutUvarint appends x to buf using the standard 7-bit-group, continuation-
// bit varint encoding and returns the extended slice.
func PutUvarint(buf []byte, x uint64) []byte {
	return binary.AppendUvarint(buf, x)
}

// Uvarint decodes an unsigned varint from the front of buf, returning the
// value and the number of bytes consumed. component is used only to label
// a DecodeTruncated error.
func Uvarint(buf []byte, component string) (uint64, int, error) {
	v, n := binary.Uvarint(buf)
	if n == 0 {
		return 0, 0, fxierr.Truncated(component)
	}
	if n < 0 {
		// binary.Uvarint returns a negative n on overflow of the 64-bit value.
		return 0, 0, fxierr.Overflow(component)
	}
	return v, n, nil
}
