// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import (
	"container/list"
	"os"
	"sync"

	"github.com/fxi-dev/fxi/internal/fxierr"
)

// directReadThreshold mirrors internal/build's read strategy split so a
// verified file is read the same way it was indexed.
const directReadThreshold = 4 << 10

// maxCacheEntryBytes bounds a single cached file body: §4.8 caps the
// content cache "by both entry count and maximum entry size" so one
// huge file can't evict the whole working set. Larger files are read
// fresh on every verification instead of cached.
const maxCacheEntryBytes = 8 << 20

// readContent loads path's bytes using the same direct-read/mmap split the
// builder uses (§4.5, §4.8), stat-ing the file itself to decide which
// strategy applies and to size the mapping.
func readContent(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fxierr.IO(path, err)
	}
	if info.Size() <= directReadThreshold {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fxierr.IO(path, err)
		}
		return data, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fxierr.IO(path, err)
	}
	defer f.Close()
	data, err := mmapReadContent(f, info.Size())
	if err != nil {
		return nil, fxierr.IO(path, err)
	}
	return data, nil
}

// contentCache is a small LRU of recently-read file bodies, sized per
// §4.8's "LRU capacity 128" default. It is only consulted on the
// sequential verification path: once candidate count crosses the
// parallel-verification threshold, each worker reads content directly and
// the cache is bypassed entirely, since a shared LRU under goroutine
// contention would serialize what should be parallel I/O.
type contentCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	index    map[string]*list.Element
}

type cacheEntry struct {
	path string
	data []byte
}

func newContentCache(capacity int) *contentCache {
	if capacity <= 0 {
		capacity = 128
	}
	return &contentCache{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

func (c *contentCache) get(path string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[path]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).data, true
}

func (c *contentCache) put(path string, data []byte) {
	if len(data) > maxCacheEntryBytes {
		return // too large to cache; caller already has the bytes for this call
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[path]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*cacheEntry).data = data
		return
	}
	el := c.ll.PushFront(&cacheEntry{path: path, data: data})
	c.index[path] = el
	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.index, oldest.Value.(*cacheEntry).path)
		}
	}
}
