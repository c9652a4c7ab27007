// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import (
	"regexp"
	"sync"

	"github.com/fxi-dev/fxi/internal/fxierr"
)

// regexCache is a process-wide cache of compiled patterns, shared by every
// concurrent verification worker. The teacher's regexp package (regexp/match.go)
// hand-rolls its own DFA matcher over a bespoke syntax tree; that engine
// depends on an internal sparse-set package this module does not carry
// forward, so verification instead leans on the standard library's RE2
// engine behind this cache (documented in DESIGN.md).
type regexCache struct {
	mu   sync.RWMutex
	byPat map[string]*regexp.Regexp
}

func newRegexCache() *regexCache {
	return &regexCache{byPat: make(map[string]*regexp.Regexp)}
}

func (c *regexCache) compile(pattern string) (*regexp.Regexp, error) {
	c.mu.RLock()
	re, ok := c.byPat[pattern]
	c.mu.RUnlock()
	if ok {
		return re, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if re, ok := c.byPat[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fxierr.New(fxierr.KindParse, "regex", err)
	}
	c.byPat[pattern] = re
	return re, nil
}

// globalRegexCache backs every Executor unless one is constructed with its
// own cache (tests isolate state this way).
var globalRegexCache = newRegexCache()
