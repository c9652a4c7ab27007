// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import (
	"context"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fxi-dev/fxi/internal/config"
	"github.com/fxi-dev/fxi/internal/fxierr"
	"github.com/fxi-dev/fxi/internal/indexreader"
	"github.com/fxi-dev/fxi/internal/plan"
	"github.com/fxi-dev/fxi/internal/query"
)

// Match is one ranked search result (§6.3's Search response "matches").
type Match struct {
	DocID     uint32
	Path      string
	Line      int
	Col       int // 0-based byte offset of the match within Line
	MatchLen  int // byte length of the matched text
	Score     float64
	Context   []string // the matched line, plus before/after lines per Options.ContextBefore/After
}

// Options configures one Query call. Zero values fall back to spec
// defaults (§4.8, §4.9).
type Options struct {
	Limit             int
	VerifyThreshold   int // default runtime.NumCPU() * 4
	CacheCapacity     int // content cache entries, default 128
	ContextBefore     int
	ContextAfter      int
	FilesOnly         bool // stop once Limit files are found (§4.8 "-l" mode)
	Weights           ScoreWeights
}

// OptionsFromConfig builds Options from a loaded config.Config, applying
// its verification threshold and scoring weights.
func OptionsFromConfig(cfg config.Config, limit int) Options {
	return Options{
		Limit:           limit,
		VerifyThreshold: cfg.Executor.VerifyThreshold,
		CacheCapacity:   cfg.Executor.ContentCacheSize,
		Weights: ScoreWeights{
			FilenameBonus: cfg.Score.FilenameBonus,
			DepthPenalty:  cfg.Score.DepthPenalty,
			MaxDepth:      cfg.Score.MaxDepth,
			RecencyWeight: cfg.Score.RecencyWeight,
			HalfLifeDays:  cfg.Score.HalfLifeDays,
		},
	}
}

func (o Options) withDefaults() Options {
	if o.Limit <= 0 {
		o.Limit = 50
	}
	if o.VerifyThreshold <= 0 {
		o.VerifyThreshold = runtime.NumCPU() * 4
	}
	if o.CacheCapacity <= 0 {
		o.CacheCapacity = 128
	}
	return o
}

// Executor runs plans against one opened index. It uses the process-wide
// regex cache and owns a content cache shared across concurrent queries
// against that index (§4.9: "a per-index LRU cache"; here, the *content*
// cache — the query result cache is the daemon's concern).
type Executor struct {
	idx     *indexreader.Index
	regexes *regexCache
	content *contentCache
}

// NewExecutor wraps idx for querying with the spec's default cache
// capacity. Pass a freshly opened index; the Executor does not take
// ownership of idx.Close.
func NewExecutor(idx *indexreader.Index) *Executor {
	return &Executor{idx: idx, regexes: globalRegexCache, content: newContentCache(128)}
}

// NewExecutorWithConfig wraps idx using cfg's content-cache capacity.
func NewExecutorWithConfig(idx *indexreader.Index, cfg config.Config) *Executor {
	return &Executor{idx: idx, regexes: globalRegexCache, content: newContentCache(cfg.Executor.ContentCacheSize)}
}

// Query parses, plans, and executes q end-to-end (§4.6-4.8), returning
// the ranked matches truncated to opts.Limit.
func (e *Executor) Query(ctx context.Context, q string, opts Options) ([]Match, error) {
	opts = opts.withDefaults()

	ast, err := query.Parse(q)
	if err != nil {
		return nil, err
	}
	p, err := plan.Lower(ast, e.idx.Meta)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, p, opts)
}

// Execute runs an already-lowered plan (§4.8 phases 1-3).
func (e *Executor) Execute(ctx context.Context, p *plan.Plan, opts Options) ([]Match, error) {
	opts = opts.withDefaults()

	candidates, err := resolveNarrow(e.idx, p.Candidates)
	if err != nil {
		return nil, err
	}

	type filtered struct {
		docID uint32
		path  string
		mtime uint64
	}
	var survivors []filtered
	for docID := range candidates {
		select {
		case <-ctx.Done():
			return nil, fxierr.Cancelled
		default:
		}
		d, path, err := e.idx.GlobalDoc(docID)
		if err != nil {
			continue // per-segment failure: log-and-skip, never abort (§4.8)
		}
		ok := true
		for _, f := range p.Filters {
			if !matchFilter(f, d, path) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		survivors = append(survivors, filtered{docID: docID, path: path, mtime: d.MTimeSecs})
	}

	collectLimit := opts.Limit * 3 / 2
	if collectLimit < opts.Limit {
		collectLimit = opts.Limit
	}

	var (
		matches   []Match
		matchesMu sync.Mutex
		stop      int32
	)

	verifyOne := func(s filtered, useCache bool) {
		if opts.FilesOnly && atomic.LoadInt32(&stop) != 0 {
			return
		}
		var data []byte
		var err error
		if useCache {
			if cached, ok := e.content.get(s.path); ok {
				data = cached
			}
		}
		if data == nil {
			full := s.path
			if !filepath.IsAbs(full) {
				full = filepath.Join(e.idx.Meta.RootPath, full) // stored paths are root-relative
			}
			data, err = readContent(full)
			if err != nil {
				return // per-file failure: skip (§4.8)
			}
			if useCache {
				e.content.put(s.path, data)
			}
		}
		lineOffsets := computeLineOffsets(data)
		survives, results := verifyCandidate(data, lineOffsets, p.Verify, e.regexes)
		if !survives {
			return
		}
		score := scoreCandidate(results, s.path, s.mtime, time.Now(), opts.Weights)
		line, col, length := firstMatch(results)
		ctxLines := contextLines(data, lineOffsets, line, opts.ContextBefore, opts.ContextAfter)
		m := Match{DocID: s.docID, Path: s.path, Line: line, Col: col, MatchLen: length, Score: score, Context: ctxLines}

		matchesMu.Lock()
		matches = append(matches, m)
		if opts.FilesOnly && len(matches) >= opts.Limit {
			atomic.StoreInt32(&stop, 1)
		}
		matchesMu.Unlock()
	}

	if len(survivors) > opts.VerifyThreshold {
		var wg sync.WaitGroup
		sem := make(chan struct{}, runtime.NumCPU())
		for _, s := range survivors {
			if opts.FilesOnly && atomic.LoadInt32(&stop) != 0 {
				break
			}
			s := s
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				verifyOne(s, false) // cache bypassed in the parallel path (§4.8)
			}()
		}
		wg.Wait()
	} else {
		for _, s := range survivors {
			if opts.FilesOnly && atomic.LoadInt32(&stop) != 0 {
				break
			}
			verifyOne(s, true)
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > collectLimit {
		matches = matches[:collectLimit]
	}
	if len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches, nil
}

// firstMatch returns the line, byte column, and byte length of the first
// matched step's first hit, for populating both Match.Line/Col/MatchLen
// and the daemon's ContentSearch match_start/match_end fields (§6.3, §8
// scenario 2).
func firstMatch(results []stepResult) (line, col, length int) {
	for _, r := range results {
		if r.matched && len(r.lines) > 0 {
			m := r.lines[0]
			return m.Line, m.Col, m.Len
		}
	}
	return 1, 0, 0
}

func computeLineOffsets(data []byte) []uint32 {
	offsets := []uint32{0}
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' && i+1 < len(data) {
			offsets = append(offsets, uint32(i+1))
		}
	}
	return offsets
}
