// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plan

import (
	"testing"

	"github.com/fxi-dev/fxi/internal/query"
)

func mustParse(t *testing.T, s string) query.Node {
	t.Helper()
	n, err := query.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return n
}

func TestLowerWordUnion(t *testing.T) {
	p, err := Lower(mustParse(t, "getUserById"), nil)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if p.Candidates.Kind != NarrowOr {
		t.Fatalf("Candidates.Kind = %v, want NarrowOr (rule 2)", p.Candidates.Kind)
	}
	if len(p.Verify) != 1 || p.Verify[0].Kind != VerifyLiteral {
		t.Fatalf("Verify = %+v, want one VerifyLiteral step", p.Verify)
	}
}

func TestLowerShortWordTokenOnly(t *testing.T) {
	p, err := Lower(mustParse(t, "id"), nil)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if p.Candidates.Kind != NarrowToken || p.Candidates.Token != "id" {
		t.Fatalf("Candidates = %+v, want NarrowToken{id} (rule 3)", p.Candidates)
	}
}

func TestLowerNotDoesNotNarrow(t *testing.T) {
	p, err := Lower(mustParse(t, "-foobar"), nil)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if p.Candidates.Kind != NarrowAll {
		t.Fatalf("Candidates.Kind = %v, want NarrowAll (rule 5)", p.Candidates.Kind)
	}
	if len(p.Verify) != 1 || !p.Verify[0].Negate {
		t.Fatalf("Verify = %+v, want one negated step", p.Verify)
	}
}

func TestLowerFilterDoesNotNarrow(t *testing.T) {
	p, err := Lower(mustParse(t, "ext:go"), nil)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if p.Candidates.Kind != NarrowAll {
		t.Fatalf("Candidates.Kind = %v, want NarrowAll", p.Candidates.Kind)
	}
	if len(p.Filters) != 1 || p.Filters[0].Field != query.FilterExt || p.Filters[0].Value != "go" {
		t.Fatalf("Filters = %+v, want one ext=go filter", p.Filters)
	}
}

func TestLowerOr(t *testing.T) {
	p, err := Lower(mustParse(t, "foobar | bazqux"), nil)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if p.Candidates.Kind != NarrowOr || len(p.Candidates.Children) != 2 {
		t.Fatalf("Candidates = %+v, want NarrowOr of 2 (rule 6)", p.Candidates)
	}
	if len(p.Verify) != 2 {
		t.Fatalf("Verify = %+v, want 2 steps", p.Verify)
	}
}

func TestLowerNear(t *testing.T) {
	p, err := Lower(mustParse(t, "near:foobar,bazqux,3"), nil)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if p.Candidates.Kind != NarrowAnd || len(p.Candidates.Children) != 2 {
		t.Fatalf("Candidates = %+v, want NarrowAnd of 2 (rule 8)", p.Candidates)
	}
	if len(p.Verify) != 1 || p.Verify[0].Kind != VerifyNear || p.Verify[0].Distance != 3 {
		t.Fatalf("Verify = %+v, want one VerifyNear{distance:3}", p.Verify)
	}
}

func TestLowerBoostPropagatesWeight(t *testing.T) {
	p, err := Lower(mustParse(t, "^4:foobar"), nil)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(p.Verify) != 1 || p.Verify[0].Weight != 4 {
		t.Fatalf("Verify = %+v, want weight 4", p.Verify)
	}
}

type stopAll struct{}

func (stopAll) IsStopGram(uint32) bool { return true }

func TestLowerPhraseAllStopGramsFallsBackToAll(t *testing.T) {
	p, err := Lower(mustParse(t, `"abc"`), stopAll{})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if p.Candidates.Kind != NarrowAll {
		t.Fatalf("Candidates.Kind = %v, want NarrowAll when every window is a stop-gram", p.Candidates.Kind)
	}
}
