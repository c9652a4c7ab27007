// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import "testing"

func TestBloomInsertContains(t *testing.T) {
	b := NewBloom(1000, 0.01)
	keys := []uint32{1, 2, 3, 0xABCDEF, 42}
	for _, k := range keys {
		b.Insert(k)
	}
	for _, k := range keys {
		if !b.Contains(k) {
			t.Fatalf("expected Contains(%d) to be true after Insert", k)
		}
	}
}

func TestBloomMergeIncompatible(t *testing.T) {
	a := NewBloom(100, 0.01)
	b := NewBloom(100000, 0.01)
	if err := a.Merge(b); err == nil {
		t.Fatal("expected BloomIncompatible for mismatched (m,k)")
	}
}

func TestBloomMergeUnion(t *testing.T) {
	a := NewBloom(1000, 0.01)
	b := &Bloom{M: a.M, K: a.K, Bits: make([]byte, len(a.Bits))}
	a.Insert(7)
	b.Insert(99)
	if err := a.Merge(b); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !a.Contains(7) || !a.Contains(99) {
		t.Fatal("merged filter should contain keys from both inputs")
	}
}
