// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package query

import (
	"errors"
	"testing"

	"github.com/fxi-dev/fxi/internal/fxierr"
)

func TestParseLiteral(t *testing.T) {
	n, err := Parse("foo")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	lit, ok := n.(Literal)
	if !ok || lit.Text != "foo" {
		t.Fatalf("Parse(foo) = %#v, want Literal{foo}", n)
	}
}

func TestParseAndImplicit(t *testing.T) {
	n, err := Parse("foo bar")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	and, ok := n.(And)
	if !ok || len(and.Children) != 2 {
		t.Fatalf("Parse(foo bar) = %#v, want And of 2", n)
	}
}

func TestParseOr(t *testing.T) {
	n, err := Parse("foo | bar")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	or, ok := n.(Or)
	if !ok || len(or.Children) != 2 {
		t.Fatalf("Parse(foo | bar) = %#v, want Or of 2", n)
	}
}

func TestParseNot(t *testing.T) {
	n, err := Parse("-foo")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	not, ok := n.(Not)
	if !ok {
		t.Fatalf("Parse(-foo) = %#v, want Not", n)
	}
	if _, ok := not.Child.(Literal); !ok {
		t.Fatalf("Not child = %#v, want Literal", not.Child)
	}
}

func TestParseGroup(t *testing.T) {
	n, err := Parse("(foo | bar) baz")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	and, ok := n.(And)
	if !ok || len(and.Children) != 2 {
		t.Fatalf("Parse = %#v, want And of 2", n)
	}
	if _, ok := and.Children[0].(Or); !ok {
		t.Fatalf("first child = %#v, want Or", and.Children[0])
	}
}

func TestParsePhrase(t *testing.T) {
	n, err := Parse(`"hello world"`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ph, ok := n.(Phrase)
	if !ok || ph.Text != "hello world" {
		t.Fatalf("Parse = %#v, want Phrase{hello world}", n)
	}
}

func TestParseUnterminatedPhrase(t *testing.T) {
	_, err := Parse(`"hello`)
	assertParseError(t, err)
}

func TestParseRegexBare(t *testing.T) {
	n, err := Parse("/fo+o/")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	re, ok := n.(Regex)
	if !ok || re.Pattern != "fo+o" {
		t.Fatalf("Parse = %#v, want Regex{fo+o}", n)
	}
}

func TestParseRegexPrefixed(t *testing.T) {
	n, err := Parse("re:/a\\/b/")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	re, ok := n.(Regex)
	if !ok || re.Pattern != `a\/b` {
		t.Fatalf("Parse = %#v, want Regex{a\\/b}", n)
	}
}

func TestParseBoostDefault(t *testing.T) {
	n, err := Parse("^foo")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, ok := n.(Boosted)
	if !ok || b.Weight != DefaultBoostWeight {
		t.Fatalf("Parse(^foo) = %#v, want default weight", n)
	}
}

func TestParseBoostExplicit(t *testing.T) {
	n, err := Parse("^3:foo")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, ok := n.(Boosted)
	if !ok || b.Weight != 3 {
		t.Fatalf("Parse(^3:foo) = %#v, want weight 3", n)
	}
}

func TestParseNear(t *testing.T) {
	n, err := Parse("near:foo,bar,5")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	near, ok := n.(Near)
	if !ok || len(near.Terms) != 2 || near.Distance != 5 {
		t.Fatalf("Parse(near:foo,bar,5) = %#v, want Near{[foo bar] 5}", n)
	}
}

func TestParseNearTooFewTerms(t *testing.T) {
	_, err := Parse("near:foo,5")
	assertParseError(t, err)
}

func TestParseFilter(t *testing.T) {
	n, err := Parse("ext:go")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	f, ok := n.(Filter)
	if !ok || f.Field != FilterExt || f.Value != "go" {
		t.Fatalf("Parse(ext:go) = %#v, want Filter{ext go}", n)
	}
}

func TestParseUnknownFilterField(t *testing.T) {
	_, err := Parse("frobnicate:go")
	assertParseError(t, err)
}

func TestParseUnmatchedParen(t *testing.T) {
	_, err := Parse("(foo")
	assertParseError(t, err)
}

func TestParseEmpty(t *testing.T) {
	n, err := Parse("")
	if err != nil {
		t.Fatalf("Parse(\"\"): %v", err)
	}
	if _, ok := n.(Empty); !ok {
		t.Fatalf("Parse(\"\") = %#v, want Empty", n)
	}
}

func TestParseComplex(t *testing.T) {
	n, err := Parse(`ext:go -"deprecated" ^2:TODO`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	and, ok := n.(And)
	if !ok || len(and.Children) != 3 {
		t.Fatalf("Parse = %#v, want And of 3", n)
	}
}

func assertParseError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a parse error, got nil")
	}
	var fe *fxierr.Error
	if !errors.As(err, &fe) || fe.Kind != fxierr.KindParse {
		t.Fatalf("error = %v, want KindParse", err)
	}
}
