// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment

import (
	"path/filepath"
	"testing"
)

func sampleDocs() []ProcessedDoc {
	return []ProcessedDoc{
		{
			LocalID:     0,
			Trigrams:    []uint32{1, 2, 3},
			Tokens:      []string{"alpha", "beta"},
			LineOffsets: []uint32{0, 10, 25},
		},
		{
			LocalID:     1,
			Trigrams:    []uint32{2, 3, 4},
			Tokens:      []string{"beta", "gamma"},
			LineOffsets: []uint32{0, 8},
		},
	}
}

func TestWriteAndReadSegmentRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seg_0000")
	if err := WriteSegment(dir, sampleDocs(), 256, 4); err != nil {
		t.Fatalf("WriteSegment: %v", err)
	}

	r, err := OpenReader(dir, 0)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	ids, ok, err := r.LookupTrigram(2)
	if err != nil || !ok {
		t.Fatalf("LookupTrigram(2): ok=%v err=%v", ok, err)
	}
	if len(ids) != 2 || ids[0] != 0 || ids[1] != 1 {
		t.Fatalf("LookupTrigram(2) = %v, want [0 1]", ids)
	}

	if _, ok, err := r.LookupTrigram(99); err != nil || ok {
		t.Fatalf("LookupTrigram(99) should miss cleanly, got ok=%v err=%v", ok, err)
	}

	ids, ok, err = r.LookupToken("beta")
	if err != nil || !ok {
		t.Fatalf("LookupToken(beta): ok=%v err=%v", ok, err)
	}
	if len(ids) != 2 {
		t.Fatalf("LookupToken(beta) = %v, want 2 ids", ids)
	}

	if _, ok, _ := r.LookupToken("delta"); ok {
		t.Fatalf("LookupToken(delta) should miss")
	}

	if freq := r.TrigramDocFreq(3); freq != 2 {
		t.Fatalf("TrigramDocFreq(3) = %d, want 2", freq)
	}

	offs, err := r.LineOffsets(0)
	if err != nil {
		t.Fatalf("LineOffsets(0): %v", err)
	}
	if len(offs) != 3 || offs[2] != 25 {
		t.Fatalf("LineOffsets(0) = %v, want [0 10 25]", offs)
	}

	offs, err = r.LineOffsets(1)
	if err != nil {
		t.Fatalf("LineOffsets(1): %v", err)
	}
	if len(offs) != 2 || offs[1] != 8 {
		t.Fatalf("LineOffsets(1) = %v, want [0 8]", offs)
	}

	if !r.BloomContains(2) {
		t.Fatalf("BloomContains(2) should be true, trigram 2 was inserted")
	}
}

func TestWriteSegmentEmptyBatch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seg_empty")
	if err := WriteSegment(dir, nil, 64, 2); err != nil {
		t.Fatalf("WriteSegment(empty): %v", err)
	}
	r, err := OpenReader(dir, 0)
	if err != nil {
		t.Fatalf("OpenReader(empty): %v", err)
	}
	defer r.Close()

	if _, ok, _ := r.LookupTrigram(1); ok {
		t.Fatalf("empty segment should have no trigrams")
	}
}
