// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package indexreader

import (
	"fmt"

	"github.com/fxi-dev/fxi/internal/fxierr"
)

// SegmentStats summarizes one segment reader for offline inspection,
// generalizing google-codesearch's cindex -stats (index.PrintStats) from a
// single monolithic posting-list size to this format's per-segment layout.
type SegmentStats struct {
	ID            uint16
	DocCount      int
	TrigramDictN  int
	TokenDictN    int
}

// Stats summarizes a whole opened index (§8's supplemented "stats"
// operator command).
type Stats struct {
	RootPath     string
	DocCount     int
	SegmentCount int
	StopGramN    int
	BloomM       uint32
	BloomK       uint32
	Segments     []SegmentStats
}

// ComputeStats reads idx's meta and segment readers into a Stats record.
func ComputeStats(idx *Index) Stats {
	s := Stats{
		RootPath:     idx.Meta.RootPath,
		DocCount:     idx.Meta.DocCount,
		SegmentCount: idx.Meta.SegmentCount,
		StopGramN:    len(idx.Meta.StopGrams),
		BloomM:       idx.Meta.BloomM,
		BloomK:       idx.Meta.BloomK,
	}
	for _, r := range idx.Segments {
		s.Segments = append(s.Segments, SegmentStats{
			ID:           r.ID,
			DocCount:     r.DocCount(),
			TrigramDictN: r.TrigramDictLen(),
			TokenDictN:   r.TokenDictLen(),
		})
	}
	return s
}

// Check walks idx's structural invariants (§3, §4.3, §9): every segment's
// base offset in meta.json must be non-decreasing and consistent with the
// document table's total length, and every segment must report a
// non-negative document count. It does not verify bloom/dictionary byte
// layout (segment.OpenReader only maps those files), only the
// cross-segment bookkeeping that only Index has visibility into, mirroring
// the scope of the teacher's Index.Check.
func Check(idx *Index) error {
	if len(idx.Meta.SegmentBase) != len(idx.Segments) {
		return fxierr.Corrupt("meta.json", fmt.Errorf(
			"segment_base has %d entries, but %d segment directories were opened",
			len(idx.Meta.SegmentBase), len(idx.Segments)))
	}

	total := 0
	for i, r := range idx.Segments {
		if i > 0 && idx.Meta.SegmentBase[i] < idx.Meta.SegmentBase[i-1] {
			return fxierr.Corrupt("meta.json", fmt.Errorf(
				"segment_base is not non-decreasing at index %d", i))
		}
		if int(idx.Meta.SegmentBase[i]) != total {
			return fxierr.Corrupt("meta.json", fmt.Errorf(
				"segment %d base %d does not match running document total %d",
				r.ID, idx.Meta.SegmentBase[i], total))
		}
		total += r.DocCount()
	}
	if total != idx.DocTable.Count() {
		return fxierr.Corrupt("docs.bin", fmt.Errorf(
			"sum of segment doc counts (%d) does not match doc table length (%d)",
			total, idx.DocTable.Count()))
	}
	if idx.Meta.DocCount != idx.DocTable.Count() {
		return fxierr.Corrupt("meta.json", fmt.Errorf(
			"meta doc_count %d does not match doc table length %d",
			idx.Meta.DocCount, idx.DocTable.Count()))
	}
	return nil
}
