// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"testing"
)

func TestDeltaRoundTrip(t *testing.T) {
	cases := [][]uint32{
		nil,
		{0},
		{1, 2, 3},
		{0, 1, 2, 3, 1000, 100000},
		{5, 6, 7, 8, 9, 10000000},
	}
	for _, ids := range cases {
		buf := EncodeDeltas(nil, ids)
		got, err := DecodeDeltas(buf, len(ids), "test")
		if err != nil {
			t.Fatalf("DecodeDeltas(%v): %v", ids, err)
		}
		if len(got) != len(ids) {
			t.Fatalf("got %v, want %v", got, ids)
		}
		for i := range ids {
			if got[i] != ids[i] {
				t.Fatalf("got %v, want %v", got, ids)
			}
		}
	}
}

func TestDecodeDeltasTruncated(t *testing.T) {
	buf := EncodeDeltas(nil, []uint32{1, 2, 3})
	if _, err := DecodeDeltas(buf, 5, "test"); err == nil {
		t.Fatal("expected truncation error")
	}
}

func TestDecodeDeltasNonIncreasing(t *testing.T) {
	var buf []byte
	buf = PutUvarint(buf, 5)
	buf = PutUvarint(buf, 0) // duplicate id, not strictly increasing
	if _, err := DecodeDeltas(buf, 2, "test"); err == nil {
		t.Fatal("expected corruption error for non-increasing delta")
	}
}

func TestPostingCursor(t *testing.T) {
	ids := []uint32{2, 5, 6, 100}
	buf := EncodeDeltas(nil, ids)
	c := NewPostingCursor(buf, len(ids), "test")
	var got []uint32
	for c.Next() {
		got = append(got, c.Value())
	}
	if c.Err() != nil {
		t.Fatalf("unexpected error: %v", c.Err())
	}
	if len(got) != len(ids) {
		t.Fatalf("got %v, want %v", got, ids)
	}
}

func TestIntersectSorted(t *testing.T) {
	a := []uint32{1, 2, 3, 5, 8}
	b := []uint32{2, 3, 4, 8, 9}
	got := IntersectSorted(a, b)
	want := []uint32{2, 3, 8}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestUnionSorted(t *testing.T) {
	a := []uint32{1, 3, 5}
	b := []uint32{2, 3, 6}
	got := UnionSorted(a, b)
	want := []uint32{1, 2, 3, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
