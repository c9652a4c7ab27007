// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import "github.com/fxi-dev/fxi/internal/fxierr"

// MaxDocID is the largest representable document id (32-bit id space, §3).
const MaxDocID = uint32(1<<32 - 1)

// EncodeDeltas appends the delta-varint encoding of a strictly increasing
// sequence of document ids to buf. ids must already be sorted ascending;
// EncodeDeltas does not re-sort.
func EncodeDeltas(buf []byte, ids []uint32) []byte {
	var prev uint32
	for i, id := range ids {
		var delta uint64
		if i == 0 {
			delta = uint64(id)
		} else {
			delta = uint64(id - prev)
		}
		buf = PutUvarint(buf, delta)
		prev = id
	}
	return buf
}

// DecodeDeltas decodes a delta-varint posting list, returning a strictly
// increasing sequence of document ids. component labels errors.
//
// Decode fails with DecodeOverflow if any running sum would exceed the
// 32-bit id space (§4.1), and with DecodeTruncated if the buffer ends
// mid-varint.
func DecodeDeltas(buf []byte, count int, component string) ([]uint32, error) {
	ids := make([]uint32, 0, count)
	var cursor uint64
	for len(buf) > 0 && len(ids) < count {
		v, n, err := Uvarint(buf, component)
		if err != nil {
			return nil, err
		}
		buf = buf[n:]
		next := cursor + v
		if next > uint64(MaxDocID) || (len(ids) > 0 && v == 0) {
			return nil, fxierr.Overflow(component)
		}
		cursor = next
		ids = append(ids, uint32(cursor))
	}
	if len(ids) != count {
		return nil, fxierr.Truncated(component)
	}
	return ids, nil
}

// PostingCursor iterates a delta-encoded posting list lazily without
// materializing the full slice, for the executor's streaming intersection
// (§4.8 phase 1).
type PostingCursor struct {
	buf       []byte
	remaining int
	cur       uint32
	component string
	err       error
}

func NewPostingCursor(buf []byte, count int, component string) *PostingCursor {
	return &PostingCursor{buf: buf, remaining: count, component: component}
}

// Next advances the cursor and reports whether a value was produced.
func (c *PostingCursor) Next() bool {
	if c.err != nil || c.remaining == 0 {
		return false
	}
	v, n, err := Uvarint(c.buf, c.component)
	if err != nil {
		c.err = err
		return false
	}
	c.buf = c.buf[n:]
	next := uint64(c.cur) + v
	if next > uint64(MaxDocID) {
		c.err = fxierr.Overflow(c.component)
		return false
	}
	c.cur = uint32(next)
	c.remaining--
	return true
}

// Value returns the document id at the current cursor position.
func (c *PostingCursor) Value() uint32 { return c.cur }

// Err returns any decode error encountered; nil if exhausted cleanly.
func (c *PostingCursor) Err() error { return c.err }

// IntersectSorted intersects two strictly increasing uint32 slices.
// A sorted-sequence merge with short-circuit on empty, per §4.8 phase 1
// step 3.
func IntersectSorted(a, b []uint32) []uint32 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make([]uint32, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// UnionSorted merges two strictly increasing uint32 slices, deduplicating.
func UnionSorted(a, b []uint32) []uint32 {
	out := make([]uint32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i == len(a) || (j < len(b) && a[i] > b[j]):
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
