// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tokenize implements the one tokenisation/trigram-extraction
// procedure shared by the builder (index time) and the planner (query
// time), per §4.2 and §8's tokeniser-parity invariant: "the token set
// produced by the tokenizer on a string s equals the token set produced by
// the planner when it tokenises the same s". Both callers import Tokens,
// never reimplement splitting.
package tokenize

// Tokens splits s into lowercased identifier fragments, starting a token on
// an alphanumeric byte and closing it on a non-alphanumeric byte, a
// lowercase-to-uppercase transition, or a letter-to-digit transition (§4.2):
// "XMLParser" -> "xml", "parser"; "get_user_by_id" -> "get", "user", "by",
// "id". Fragments shorter than 2 bytes are dropped.
func Tokens(s string) []string {
	var out []string
	n := len(s)
	i := 0
	for i < n {
		if !isAlnum(s[i]) {
			i++
			continue
		}
		start := i
		i++
		for i < n && isAlnum(s[i]) && !startsNewToken(s, i) {
			i++
		}
		if i-start >= 2 {
			out = append(out, toLowerASCII(s[start:i]))
		}
		// When startsNewToken split us early, the loop above stopped
		// before consuming the boundary byte; re-enter at i so the next
		// fragment begins there.
	}
	return out
}

// startsNewToken reports whether position i begins a new token given its
// neighbours: a letter<->digit transition, a lower-to-upper transition
// ("userId" -> "user", "Id"), or the last letter of an uppercase run that
// is followed by a lowercase run ("XMLParser" -> "XML", "Parser").
func startsNewToken(s string, i int) bool {
	prev, cur := s[i-1], s[i]
	prevDigit, curDigit := isDigit(prev), isDigit(cur)
	if prevDigit != curDigit {
		return true
	}
	if isLower(prev) && isUpper(cur) {
		return true
	}
	if isUpper(prev) && isUpper(cur) && i+1 < len(s) && isLower(s[i+1]) {
		return true
	}
	return false
}

func isAlnum(c byte) bool {
	return isDigit(c) || isLower(c) || isUpper(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func toLowerASCII(s string) string {
	buf := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		buf[i] = c
	}
	return string(buf)
}

// TokenSet returns the distinct tokens of s as a set (for the index-time
// per-document token multiset's key space and the §8 tokeniser-parity
// test, which compares sets, not multiplicities).
func TokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokens(s) {
		set[tok] = struct{}{}
	}
	return set
}
