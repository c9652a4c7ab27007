// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daemon

import (
	"container/list"
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxi-dev/fxi/internal/config"
	"github.com/fxi-dev/fxi/internal/exec"
	"github.com/fxi-dev/fxi/internal/indexreader"
)

// CachedIndex bundles one opened index with its per-index query-result
// LRU cache and last-used timestamp (§4.9).
type CachedIndex struct {
	mu       sync.Mutex
	Index    *indexreader.Index
	Executor *exec.Executor
	queries  *queryCache
	lastUsed time.Time
}

func (c *CachedIndex) touch() {
	c.mu.Lock()
	c.lastUsed = time.Now()
	c.mu.Unlock()
}

func (c *CachedIndex) idleSince() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastUsed)
}

// queryCacheEntry is one cached (query string -> ranked results) pair.
type queryCacheEntry struct {
	key     string
	results []exec.Match
}

// queryCache is a small capacity-bounded LRU mapping a query string to
// its ranked result list, one per CachedIndex (§4.9: "capacity 128").
type queryCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	index    map[string]*list.Element
}

func newQueryCache(capacity int) *queryCache {
	if capacity <= 0 {
		capacity = 128
	}
	return &queryCache{capacity: capacity, ll: list.New(), index: make(map[string]*list.Element)}
}

func (c *queryCache) get(key string) ([]exec.Match, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*queryCacheEntry).results, true
}

func (c *queryCache) put(key string, results []exec.Match) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*queryCacheEntry).results = results
		return
	}
	el := c.ll.PushFront(&queryCacheEntry{key: key, results: results})
	c.index[key] = el
	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.index, oldest.Value.(*queryCacheEntry).key)
		}
	}
}

// IndexRegistry is the `HashMap<CanonicalRoot, CachedIndex>` behind a
// reader-writer lock that the daemon holds (§4.9). Opening a new index is
// double-checked under the write lock so two concurrent requests for the
// same root never race to open it twice.
type IndexRegistry struct {
	mu  sync.RWMutex
	byRoot map[string]*CachedIndex
	cfg config.Config
}

func NewIndexRegistry(cfg config.Config) *IndexRegistry {
	return &IndexRegistry{byRoot: make(map[string]*CachedIndex), cfg: cfg}
}

// Get returns the cached index for root, opening and inserting it if
// absent.
func (r *IndexRegistry) Get(ctx context.Context, root string) (*CachedIndex, error) {
	canon, err := canonicalRoot(root)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	ci, ok := r.byRoot[canon]
	r.mu.RUnlock()
	if ok {
		ci.touch()
		return ci, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ci, ok := r.byRoot[canon]; ok {
		ci.touch()
		return ci, nil
	}

	idx, err := indexreader.Open(ctx, indexDirForRoot(canon))
	if err != nil {
		return nil, err
	}
	ci = &CachedIndex{
		Index:    idx,
		Executor: exec.NewExecutorWithConfig(idx, r.cfg),
		queries:  newQueryCache(r.cfg.Executor.QueryCacheSize),
		lastUsed: time.Now(),
	}
	r.byRoot[canon] = ci
	return ci, nil
}

// Reload closes and reopens the index for root, discarding its query
// cache (§6.3's Reload request).
func (r *IndexRegistry) Reload(ctx context.Context, root string) error {
	canon, err := canonicalRoot(root)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.byRoot[canon]; ok {
		old.Index.Close()
		delete(r.byRoot, canon)
	}
	idx, err := indexreader.Open(ctx, indexDirForRoot(canon))
	if err != nil {
		return err
	}
	r.byRoot[canon] = &CachedIndex{
		Index:    idx,
		Executor: exec.NewExecutorWithConfig(idx, r.cfg),
		queries:  newQueryCache(r.cfg.Executor.QueryCacheSize),
		lastUsed: time.Now(),
	}
	return nil
}

// EvictIdle closes and drops any cached index whose last use is older
// than timeout (§4.9's idle-eviction policy).
func (r *IndexRegistry) EvictIdle(timeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for root, ci := range r.byRoot {
		if ci.idleSince() > timeout {
			ci.Index.Close()
			delete(r.byRoot, root)
		}
	}
}

// CloseAll closes every cached index, used during shutdown.
func (r *IndexRegistry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for root, ci := range r.byRoot {
		ci.Index.Close()
		delete(r.byRoot, root)
	}
}

// Roots returns every currently loaded canonical root (§6.3 Status's
// loaded_roots).
func (r *IndexRegistry) Roots() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byRoot))
	for root := range r.byRoot {
		out = append(out, root)
	}
	return out
}

// TotalDocs sums DocCount across every loaded index.
func (r *IndexRegistry) TotalDocs() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, ci := range r.byRoot {
		total += ci.Index.Meta.DocCount
	}
	return total
}

func canonicalRoot(root string) (string, error) {
	return filepath.Abs(root)
}
