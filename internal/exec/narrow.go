// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package exec implements the three-phase query executor: narrowing
// (trigram/token candidate generation), verification (content matching),
// and scoring (§4.8).
package exec

import (
	"sort"

	"github.com/fxi-dev/fxi/internal/indexreader"
	"github.com/fxi-dev/fxi/internal/plan"
)

// docSet is a candidate set of global document ids, used as the unit of
// composition for AND/OR/ALL narrowing nodes.
type docSet map[uint32]struct{}

func (s docSet) intersect(other docSet) docSet {
	small, big := s, other
	if len(big) < len(small) {
		small, big = big, small
	}
	out := make(docSet, len(small))
	for id := range small {
		if _, ok := big[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

func (s docSet) union(other docSet) docSet {
	out := make(docSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// allDocsSet materializes the full set of global document ids, used when a
// Narrow node carries no usable key (NarrowAll).
func allDocsSet(idx *indexreader.Index) docSet {
	out := make(docSet, idx.DocTable.Count())
	for i := 0; i < idx.DocTable.Count(); i++ {
		out[uint32(i)] = struct{}{}
	}
	return out
}

// resolveNarrow evaluates a plan.Narrow tree against an opened index,
// implementing §4.8 phase 1 steps 1-3: per-segment bloom pre-check
// (indexreader.LookupTrigram already applies this), ascending-frequency
// ordered intersection (rule 4), and sorted-sequence set algebra.
func resolveNarrow(idx *indexreader.Index, n plan.Narrow) (docSet, error) {
	switch n.Kind {
	case plan.NarrowAll:
		return allDocsSet(idx), nil

	case plan.NarrowToken:
		hits, err := idx.LookupToken(n.Token)
		if err != nil {
			return nil, err
		}
		return setFromHits(idx, hits), nil

	case plan.NarrowTrigrams:
		return resolveTrigramIntersect(idx, n.Trigrams)

	case plan.NarrowAnd:
		var acc docSet
		for i, c := range n.Children {
			cs, err := resolveNarrow(idx, c)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				acc = cs
			} else {
				acc = acc.intersect(cs)
			}
			if len(acc) == 0 {
				break
			}
		}
		return acc, nil

	case plan.NarrowOr:
		acc := make(docSet)
		for _, c := range n.Children {
			cs, err := resolveNarrow(idx, c)
			if err != nil {
				return nil, err
			}
			acc = acc.union(cs)
		}
		return acc, nil

	default:
		return allDocsSet(idx), nil
	}
}

func setFromHits(idx *indexreader.Index, hits []indexreader.SegmentHit) docSet {
	out := make(docSet)
	for _, h := range hits {
		for _, local := range h.LocalIDs {
			out[idx.GlobalID(h.Segment, local)] = struct{}{}
		}
	}
	return out
}

// resolveTrigramIntersect orders trigrams by ascending document frequency
// summed across segments (rule 4, "rarest first") and intersects their
// posting sets with short-circuit on empty.
func resolveTrigramIntersect(idx *indexreader.Index, trigrams []uint32) (docSet, error) {
	if len(trigrams) == 0 {
		return allDocsSet(idx), nil
	}
	ordered := orderByFrequency(idx, trigrams)

	var acc docSet
	for i, t := range ordered {
		hits, err := idx.LookupTrigram(t)
		if err != nil {
			return nil, err
		}
		cur := setFromHits(idx, hits)
		if i == 0 {
			acc = cur
		} else {
			acc = acc.intersect(cur)
		}
		if len(acc) == 0 {
			return acc, nil
		}
	}
	return acc, nil
}

func orderByFrequency(idx *indexreader.Index, trigrams []uint32) []uint32 {
	type freqPair struct {
		t    uint32
		freq uint64
	}
	pairs := make([]freqPair, len(trigrams))
	for i, t := range trigrams {
		var sum uint64
		for _, r := range idx.Segments {
			sum += uint64(r.TrigramDocFreq(t))
		}
		pairs[i] = freqPair{t: t, freq: sum}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].freq < pairs[j].freq })
	out := make([]uint32, len(pairs))
	for i, p := range pairs {
		out[i] = p.t
	}
	return out
}
