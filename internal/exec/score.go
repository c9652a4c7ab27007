// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import (
	"math"
	"path/filepath"
	"strings"
	"time"
)

// ScoreWeights configures the phase-3 scoring formula (§4.8). Zero values
// fall back to DefaultScoreWeights via withDefaults.
type ScoreWeights struct {
	FilenameBonus  float64
	DepthPenalty   float64
	MaxDepth       int
	RecencyWeight  float64
	HalfLifeDays   float64
}

// DefaultScoreWeights matches §4.8's stated default (half-life 7 days);
// the remaining weights have no spec-mandated default, so a conservative,
// clearly-named constant stands in for each until a config layer
// overrides it.
var DefaultScoreWeights = ScoreWeights{
	FilenameBonus: 2.0,
	DepthPenalty:  0.1,
	MaxDepth:      8,
	RecencyWeight: 1.0,
	HalfLifeDays:  7,
}

func (w ScoreWeights) withDefaults() ScoreWeights {
	if w.HalfLifeDays <= 0 {
		w = DefaultScoreWeights
	}
	return w
}

// scoreCandidate implements §4.8's formula:
//
//	match_count_term * log2(matches+1)
//	  + filename_bonus * 1{query_term in filename}
//	  + depth_penalty * min(depth, max_depth)
//	  + recency_term * exp(-age_days/half_life_days)
//
// multiplied by the step's boost weight, summed across verify steps, and
// multiplied again by any enclosing query-wide boost already folded into
// each step's Weight field.
func scoreCandidate(results []stepResult, path string, mtimeSecs uint64, now time.Time, w ScoreWeights) float64 {
	w = w.withDefaults()
	depth := strings.Count(filepath.ToSlash(path), "/")
	if depth > w.MaxDepth {
		depth = w.MaxDepth
	}
	ageDays := now.Sub(time.Unix(int64(mtimeSecs), 0)).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	recencyTerm := math.Exp(-ageDays / w.HalfLifeDays)

	var total float64
	for _, r := range results {
		if !r.matched || r.step.Negate {
			continue
		}
		matches := len(r.lines)
		termScore := float64(matches) * math.Log2(float64(matches)+1)

		term := r.step.Text
		if term == "" {
			term = r.step.Pattern
		}
		filenameHit := 0.0
		if term != "" && strings.Contains(strings.ToLower(filepath.Base(path)), strings.ToLower(term)) {
			filenameHit = 1.0
		}

		score := termScore +
			w.FilenameBonus*filenameHit +
			w.DepthPenalty*float64(depth) +
			w.RecencyWeight*recencyTerm
		total += score * r.step.Weight
	}
	return total
}
