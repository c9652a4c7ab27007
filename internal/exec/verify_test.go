// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import (
	"testing"

	"github.com/fxi-dev/fxi/internal/plan"
)

func TestFindLiteralMultiMatchPerLine(t *testing.T) {
	data := []byte("foo bar foo\nbaz foo\n")
	offsets := lineOffsetsOf(data)
	hits := findLiteral(data, offsets, "foo")
	if len(hits) != 3 {
		t.Fatalf("len(hits) = %d, want 3", len(hits))
	}
	if hits[0].Line != 1 || hits[1].Line != 1 || hits[2].Line != 2 {
		t.Fatalf("hits = %+v, want lines [1 1 2]", hits)
	}
}

func TestFindNearWithinDistance(t *testing.T) {
	data := []byte("one\ntwo\nfoo\nfour\nbar\n")
	offsets := lineOffsetsOf(data)
	hits := findNear(data, offsets, []string{"foo", "bar"}, 3)
	if len(hits) == 0 {
		t.Fatalf("expected foo/bar within 3 lines to match")
	}
}

func TestFindNearOutsideDistance(t *testing.T) {
	data := []byte("foo\n\n\n\n\n\nbar\n")
	offsets := lineOffsetsOf(data)
	hits := findNear(data, offsets, []string{"foo", "bar"}, 1)
	if len(hits) != 0 {
		t.Fatalf("expected foo/bar 6 lines apart to not match distance 1, got %+v", hits)
	}
}

func TestVerifyCandidateNegatedStep(t *testing.T) {
	data := []byte("hello world\n")
	offsets := lineOffsetsOf(data)
	steps := []plan.VerifyStep{
		{Kind: plan.VerifyLiteral, Text: "hello", Weight: 1},
		{Kind: plan.VerifyLiteral, Text: "missing", Negate: true, Weight: 1},
	}
	survives, results := verifyCandidate(data, offsets, steps, newRegexCache())
	if !survives {
		t.Fatalf("expected candidate to survive: %+v", results)
	}
}

func TestVerifyCandidateFailsWhenRequiredTermAbsent(t *testing.T) {
	data := []byte("hello world\n")
	offsets := lineOffsetsOf(data)
	steps := []plan.VerifyStep{
		{Kind: plan.VerifyLiteral, Text: "nope", Weight: 1},
	}
	survives, _ := verifyCandidate(data, offsets, steps, newRegexCache())
	if survives {
		t.Fatalf("expected candidate to fail verification")
	}
}
