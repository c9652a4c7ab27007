// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package plan lowers a query AST (internal/query) into an execution plan:
// an ordered narrowing expression over trigram/token candidates, plus the
// verification steps and field filters the executor applies to whatever
// the narrowing phase produces (§4.7).
package plan

import (
	"github.com/fxi-dev/fxi/internal/query"
	"github.com/fxi-dev/fxi/internal/tokenize"
)

// NarrowKind identifies one leaf or combinator in the narrowing expression
// tree.
type NarrowKind int

const (
	NarrowAll       NarrowKind = iota // no usable key; every document is a candidate
	NarrowTrigrams                    // intersection of Trigrams
	NarrowToken                       // single token lookup
	NarrowAnd                         // intersection of Children
	NarrowOr                          // union of Children
)

// Narrow is one node of the narrowing expression tree. Trigrams are left
// in ascending key order as extracted; the executor re-orders them by
// ascending document frequency at execution time against a specific
// index's dictionary stats
// (§4.7 rule 4 — frequency is per-index, so it cannot be baked in here).
type Narrow struct {
	Kind     NarrowKind
	Trigrams []uint32
	Token    string
	Children []Narrow
}

// VerifyKind identifies which predicate a VerifyStep checks against a
// candidate's raw content.
type VerifyKind int

const (
	VerifyLiteral VerifyKind = iota
	VerifyPhrase
	VerifyRegex
	VerifyNear
)

// VerifyStep is one phase-2 predicate (§4.8). Negate marks a step derived
// from a Not node: a candidate that is otherwise in the result set is
// dropped if this predicate matches. Weight carries any enclosing Boosted
// multiplier through to phase-3 scoring.
type VerifyStep struct {
	Kind     VerifyKind
	Text     string // Literal, Phrase
	Pattern  string // Regex
	Terms    []string
	Distance int
	Negate   bool
	Weight   float64
}

// FieldFilter is one phase-1 metadata filter (§4.8 step 4). Negate marks a
// filter derived from a Not node.
type FieldFilter struct {
	Field  query.FilterField
	Value  string
	Negate bool
}

// Plan is the full lowering of one query AST (§4.7).
type Plan struct {
	Candidates Narrow
	Verify     []VerifyStep
	Filters    []FieldFilter
}

// StopGramSet reports whether a trigram is excluded from every dictionary
// (§3's stop-gram list), so Lower can apply rule 1 ("drop any window
// appearing in the meta's stop-gram list").
type StopGramSet interface {
	IsStopGram(t uint32) bool
}

// Lower builds a Plan from an AST. stopGrams is typically an opened
// index's *segment.Meta; pass nil to skip stop-gram filtering (e.g. in
// tests where no index is open yet).
func Lower(n query.Node, stopGrams StopGramSet) (*Plan, error) {
	p := &Plan{}
	narrow, err := lowerNode(n, stopGrams, 1.0, false, p)
	if err != nil {
		return nil, err
	}
	p.Candidates = narrow
	return p, nil
}

func lowerNode(n query.Node, stop StopGramSet, weight float64, negate bool, p *Plan) (Narrow, error) {
	switch v := n.(type) {
	case query.Empty:
		return Narrow{Kind: NarrowAll}, nil

	case query.Literal:
		return lowerWord(v.Text, stop, weight, negate, p), nil

	case query.Phrase:
		return lowerPhrase(v.Text, stop, weight, negate, p), nil

	case query.Regex:
		return lowerRegex(v.Pattern, stop, weight, negate, p), nil

	case query.Near:
		return lowerNear(v, stop, weight, negate, p), nil

	case query.Boosted:
		return lowerNode(v.Child, stop, weight*v.Weight, negate, p)

	case query.Filter:
		p.Filters = append(p.Filters, FieldFilter{Field: v.Field, Value: v.Value, Negate: negate})
		return Narrow{Kind: NarrowAll}, nil

	case query.Not:
		// Rule 5: Not never narrows. The child is still lowered (so its
		// verify steps and filters are recorded, flipped to Negate) but
		// its narrowing contribution is discarded.
		if _, err := lowerNode(v.Child, stop, weight, !negate, p); err != nil {
			return Narrow{}, err
		}
		return Narrow{Kind: NarrowAll}, nil

	case query.And:
		children := make([]Narrow, 0, len(v.Children))
		for _, c := range v.Children {
			cn, err := lowerNode(c, stop, weight, negate, p)
			if err != nil {
				return Narrow{}, err
			}
			children = append(children, cn)
		}
		return Narrow{Kind: NarrowAnd, Children: children}, nil

	case query.Or:
		children := make([]Narrow, 0, len(v.Children))
		for _, c := range v.Children {
			cn, err := lowerNode(c, stop, weight, negate, p)
			if err != nil {
				return Narrow{}, err
			}
			children = append(children, cn)
		}
		return Narrow{Kind: NarrowOr, Children: children}, nil

	default:
		return Narrow{Kind: NarrowAll}, nil
	}
}

// windowsLessStopGrams extracts every length-3 trigram window of text and
// drops any that appear in the meta's stop-gram list (§4.7 rule 1).
func windowsLessStopGrams(text string, stop StopGramSet) []uint32 {
	grams := tokenize.ExtractTrigrams([]byte(text))
	out := make([]uint32, 0, len(grams))
	for _, g := range grams {
		v := uint32(g)
		if stop != nil && stop.IsStopGram(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// lowerWord implements rules 2 and 3 for a single unquoted word: words of
// length >= 3 narrow by the union of a token lookup and a trigram
// intersection (rule 2); shorter words fall back to the token index alone,
// tokenized exactly as the indexer would (rule 3, "the planner must not
// substitute a whitespace split").
func lowerWord(text string, stop StopGramSet, weight float64, negate bool, p *Plan) Narrow {
	p.Verify = append(p.Verify, VerifyStep{Kind: VerifyLiteral, Text: text, Negate: negate, Weight: weight})

	if len(text) >= 3 {
		trigrams := windowsLessStopGrams(text, stop)
		tokenLeaf := Narrow{Kind: NarrowAll}
		if toks := tokenize.Tokens(text); len(toks) == 1 {
			tokenLeaf = Narrow{Kind: NarrowToken, Token: toks[0]}
		}
		if len(trigrams) > 0 {
			return Narrow{Kind: NarrowOr, Children: []Narrow{
				tokenLeaf,
				{Kind: NarrowTrigrams, Trigrams: trigrams},
			}}
		}
		return tokenLeaf
	}

	toks := tokenize.Tokens(text)
	if len(toks) == 1 {
		return Narrow{Kind: NarrowToken, Token: toks[0]}
	}
	// A one-character word (or anything the tokenizer drops entirely)
	// cannot narrow at all; every document is a candidate.
	return Narrow{Kind: NarrowAll}
}

// lowerPhrase implements rule 1 for a quoted phrase: trigram windows of
// the whole phrase (including its interior whitespace), with stop-grams
// dropped; falls back to scanning everything if no trigram survives (a
// phrase's tokens can't be looked up individually without losing the
// phrase's word-order guarantee).
func lowerPhrase(text string, stop StopGramSet, weight float64, negate bool, p *Plan) Narrow {
	p.Verify = append(p.Verify, VerifyStep{Kind: VerifyPhrase, Text: text, Negate: negate, Weight: weight})
	trigrams := windowsLessStopGrams(text, stop)
	if len(trigrams) == 0 {
		return Narrow{Kind: NarrowAll}
	}
	return Narrow{Kind: NarrowTrigrams, Trigrams: trigrams}
}

// lowerRegex implements rule 7: a regex contributes any mandatory literal
// substring it contains as a trigram source. The literal prefix
// heuristic below only recognizes an unambiguous run of literal bytes at
// the start of the pattern; anything more general (alternation,
// optional/repeated literal runs) falls back to scanning everything,
// which is always correct, just not maximally selective.
func lowerRegex(pattern string, stop StopGramSet, weight float64, negate bool, p *Plan) Narrow {
	p.Verify = append(p.Verify, VerifyStep{Kind: VerifyRegex, Pattern: pattern, Negate: negate, Weight: weight})
	lit := mandatoryLiteralPrefix(pattern)
	if lit == "" {
		return Narrow{Kind: NarrowAll}
	}
	trigrams := windowsLessStopGrams(lit, stop)
	if len(trigrams) == 0 {
		return Narrow{Kind: NarrowAll}
	}
	return Narrow{Kind: NarrowTrigrams, Trigrams: trigrams}
}

const regexMeta = `\.+*?()|[]{}^$`

// mandatoryLiteralPrefix returns the longest prefix of pattern containing
// no regex metacharacter, a conservative approximation of "a literal
// substring every match must contain". A byte followed by '?', '*' or '{'
// is left out of the prefix, and a pattern containing '|' yields "".
func mandatoryLiteralPrefix(pattern string) string {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '|' {
			return "" // an alternation may match without the prefix
		}
	}
	for i := 0; i < len(pattern); i++ {
		for _, m := range []byte(regexMeta) {
			if pattern[i] == m {
				if (m == '?' || m == '*' || m == '{') && i > 0 {
					return pattern[:i-1] // the quantified byte may be absent
				}
				return pattern[:i]
			}
		}
	}
	return pattern
}

// lowerNear implements rule 8: the trigram intersection of all terms
// jointly, verified afterward by a line-distance check over the
// candidate's line-offset table.
func lowerNear(n query.Near, stop StopGramSet, weight float64, negate bool, p *Plan) Narrow {
	p.Verify = append(p.Verify, VerifyStep{Kind: VerifyNear, Terms: n.Terms, Distance: n.Distance, Negate: negate, Weight: weight})
	children := make([]Narrow, 0, len(n.Terms))
	for _, term := range n.Terms {
		children = append(children, lowerWordNarrowOnly(term, stop))
	}
	return Narrow{Kind: NarrowAnd, Children: children}
}

// lowerWordNarrowOnly mirrors lowerWord's narrowing logic without
// appending a VerifyStep, for terms that are narrowing inputs to another
// node's own verification (e.g. Near's per-term intersection).
func lowerWordNarrowOnly(text string, stop StopGramSet) Narrow {
	if len(text) >= 3 {
		trigrams := windowsLessStopGrams(text, stop)
		tokenLeaf := Narrow{Kind: NarrowAll}
		if toks := tokenize.Tokens(text); len(toks) == 1 {
			tokenLeaf = Narrow{Kind: NarrowToken, Token: toks[0]}
		}
		if len(trigrams) > 0 {
			return Narrow{Kind: NarrowOr, Children: []Narrow{tokenLeaf, {Kind: NarrowTrigrams, Trigrams: trigrams}}}
		}
		return tokenLeaf
	}
	toks := tokenize.Tokens(text)
	if len(toks) == 1 {
		return Narrow{Kind: NarrowToken, Token: toks[0]}
	}
	return Narrow{Kind: NarrowAll}
}
