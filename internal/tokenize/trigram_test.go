// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tokenize

import (
	"bytes"
	"math/rand/v2"
	"sort"
	"testing"
)

func trigramSet(data []byte) map[Trigram]bool {
	set := make(map[Trigram]bool)
	for i := 0; i+3 <= len(data); i++ {
		set[MakeTrigram(data[i], data[i+1], data[i+2])] = true
	}
	return set
}

func toSortedSlice(set map[Trigram]bool) []Trigram {
	out := make([]Trigram, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestExtractTrigramsShortFile(t *testing.T) {
	if got := ExtractTrigrams([]byte("ab")); got != nil {
		t.Fatalf("expected no trigrams for <3 byte input, got %v", got)
	}
}

func TestExtractTrigramsAgreesAcrossStrategies(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	data := make([]byte, 50)
	for i := range data {
		data[i] = byte('a' + r.IntN(4))
	}
	want := toSortedSlice(trigramSet(data))

	got := extractSortBuffer(data)
	if !equalTrigrams(got, want) {
		t.Fatalf("extractSortBuffer mismatch: got %v want %v", got, want)
	}
	got = extractHashSet(data)
	if !equalTrigrams(got, want) {
		t.Fatalf("extractHashSet mismatch: got %v want %v", got, want)
	}
	got = extractSparseBitset(data)
	if !equalTrigrams(got, want) {
		t.Fatalf("extractSparseBitset mismatch: got %v want %v", got, want)
	}
	got = extractDenseBitset(data)
	if !equalTrigrams(got, want) {
		t.Fatalf("extractDenseBitset mismatch: got %v want %v", got, want)
	}
}

func equalTrigrams(a, b []Trigram) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExtractTrigramsDispatchesOnSize(t *testing.T) {
	small := bytes.Repeat([]byte("x"), 10)
	if got, want := ExtractTrigrams(small), extractSortBuffer(small); !equalTrigrams(got, want) {
		t.Fatalf("small-file path mismatch: %v vs %v", got, want)
	}
}
