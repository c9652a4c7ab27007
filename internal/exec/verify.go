// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import (
	"bytes"
	"sort"
	"strings"

	"github.com/fxi-dev/fxi/internal/plan"
)

// matchLine is one line-level hit produced by a VerifyStep.
type matchLine struct {
	Line int // 1-based
	Col  int // 0-based byte offset within the line
	Len  int // byte length of the matched text, for ContentSearch's match_start/match_end
}

// stepResult is the outcome of evaluating one VerifyStep against a
// candidate's content.
type stepResult struct {
	step    plan.VerifyStep
	matched bool
	lines   []matchLine
}

// verifyCandidate runs every VerifyStep against data/lineOffsets (§4.8
// phase 2) and reports whether the candidate survives (AND across all
// non-negated steps that found a hit, AND across all negated steps that
// found none) along with each step's individual outcome for scoring and
// context extraction.
func verifyCandidate(data []byte, lineOffsets []uint32, steps []plan.VerifyStep, cache *regexCache) (bool, []stepResult) {
	if len(steps) == 0 {
		return true, nil
	}
	results := make([]stepResult, 0, len(steps))
	survives := true
	for _, step := range steps {
		var lines []matchLine
		var err error
		switch step.Kind {
		case plan.VerifyLiteral:
			lines = findLiteral(data, lineOffsets, step.Text)
		case plan.VerifyPhrase:
			lines = findLiteral(data, lineOffsets, step.Text)
		case plan.VerifyRegex:
			lines, err = findRegex(data, lineOffsets, step.Pattern, cache)
		case plan.VerifyNear:
			lines = findNear(data, lineOffsets, step.Terms, step.Distance)
		}
		matched := err == nil && len(lines) > 0
		if step.Negate {
			matched = err == nil && len(lines) == 0
		}
		if !matched {
			survives = false
		}
		results = append(results, stepResult{step: step, matched: matched, lines: lines})
	}
	return survives, results
}

// findLiteral records every occurrence of needle (multi-match-per-line,
// §4.8) using the line-offset table to convert byte offsets into
// (line, column) pairs.
func findLiteral(data []byte, lineOffsets []uint32, needle string) []matchLine {
	if needle == "" {
		return nil
	}
	var out []matchLine
	n := []byte(needle)
	start := 0
	for {
		idx := bytes.Index(data[start:], n)
		if idx < 0 {
			break
		}
		pos := start + idx
		line, col := lineForOffset(lineOffsets, pos)
		out = append(out, matchLine{Line: line, Col: col, Len: len(n)})
		start = pos + 1
		if start >= len(data) {
			break
		}
	}
	return out
}

func findRegex(data []byte, lineOffsets []uint32, pattern string, cache *regexCache) ([]matchLine, error) {
	re, err := cache.compile(pattern)
	if err != nil {
		return nil, err
	}
	idxs := re.FindAllIndex(data, -1)
	out := make([]matchLine, 0, len(idxs))
	for _, m := range idxs {
		line, col := lineForOffset(lineOffsets, m[0])
		out = append(out, matchLine{Line: line, Col: col, Len: m[1] - m[0]})
	}
	return out, nil
}

// findNear looks for a line of the first term that has a line of every
// other term within distance lines of it, and reports the first such
// first-term line as the single match (§4.7 rule 8, §8 scenario 4).
func findNear(data []byte, lineOffsets []uint32, terms []string, distance int) []matchLine {
	if len(terms) < 2 {
		return nil
	}
	perTerm := make([][]int, len(terms))
	for i, t := range terms {
		hits := findLiteral(data, lineOffsets, t)
		lines := make([]int, 0, len(hits))
		for _, h := range hits {
			lines = append(lines, h.Line)
		}
		sort.Ints(lines)
		perTerm[i] = lines
		if len(lines) == 0 {
			return nil
		}
	}

candidates:
	for _, a := range perTerm[0] {
		for i := 1; i < len(perTerm); i++ {
			if !hasLineWithin(perTerm[i], a, distance) {
				continue candidates
			}
		}
		// A near-match spans multiple terms, not one contiguous span, so
		// there is no single byte column to report; Len covers the first
		// term only, the closest approximation of match_end available.
		return []matchLine{{Line: a, Len: len(terms[0])}}
	}
	return nil
}

func hasLineWithin(lines []int, target, distance int) bool {
	for _, l := range lines {
		d := l - target
		if d < 0 {
			d = -d
		}
		if d <= distance {
			return true
		}
	}
	return false
}

// lineForOffset converts a byte offset into a 1-based line number and the
// byte column within that line, using the document's line-offset table.
func lineForOffset(lineOffsets []uint32, offset int) (line, col int) {
	i := sort.Search(len(lineOffsets), func(i int) bool { return lineOffsets[i] > uint32(offset) })
	idx := i - 1
	if idx < 0 {
		idx = 0
	}
	return idx + 1, offset - int(lineOffsets[idx])
}

// contextLines extracts the [start-before, end+after] line range around
// line (1-based) as a slice of strings, using lineOffsets to locate line
// boundaries within data (§4.8 "extract context lines").
func contextLines(data []byte, lineOffsets []uint32, line, before, after int) []string {
	lo := line - before
	if lo < 1 {
		lo = 1
	}
	hi := line + after
	if hi > len(lineOffsets) {
		hi = len(lineOffsets)
	}
	out := make([]string, 0, hi-lo+1)
	for l := lo; l <= hi; l++ {
		start := int(lineOffsets[l-1])
		var end int
		if l < len(lineOffsets) {
			end = int(lineOffsets[l])
		} else {
			end = len(data)
		}
		text := string(data[start:end])
		out = append(out, strings.TrimRight(text, "\n"))
	}
	return out
}
