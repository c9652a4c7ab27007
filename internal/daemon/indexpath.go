// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// baseIndexCacheDir is where every on-disk index directory lives,
// keyed by a hash of its canonical source root (§3: "an index directory
// is named by a stable hash of the absolute canonical root path").
func baseIndexCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "fxi", "indexes")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".cache", "fxi", "indexes")
	}
	return filepath.Join(os.TempDir(), "fxi-indexes")
}

// indexDirForRoot maps an absolute, canonicalized root path to its index
// directory: a stable xxhash of the path, the same hashing dependency
// already used for bloom double-hashing in internal/codec.
func indexDirForRoot(canonRoot string) string {
	h := xxhash.Sum64String(canonRoot)
	return filepath.Join(baseIndexCacheDir(), fmt.Sprintf("%016x", h))
}

// IndexDirForRoot is indexDirForRoot exported for cmd/fxi-index, which
// must derive the same on-disk location the daemon will later look for
// under this same canonical root (§3).
func IndexDirForRoot(canonRoot string) string { return indexDirForRoot(canonRoot) }

// BaseIndexCacheDir is baseIndexCacheDir exported for cmd/fxi-index's
// "roots" listing, which enumerates every index directory under the
// cache root regardless of which one a running daemon currently has
// open.
func BaseIndexCacheDir() string { return baseIndexCacheDir() }
