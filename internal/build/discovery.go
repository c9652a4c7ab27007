// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package build implements the builder pipeline: file discovery, parallel
// content processing, and a single writer stage that assembles segments
// (§4.5).
package build

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileDiscovery yields candidate file paths under a root. The default
// walker skips the same class of temporary/hidden entries
// cmd/cindex.go's filepath.Walk callback does; a caller may supply its
// own for tests or for alternate discovery strategies (e.g. a VCS file
// list).
type FileDiscovery interface {
	Discover(root string) (<-chan string, error)
}

// WalkDiscovery walks the filesystem rooted at Root, skipping entries that
// match Exclude (doublestar glob patterns, relative to Root) and any
// temporary/hidden file or directory, the same convention
// cmd/cindex/cindex.go applies ad hoc in its filepath.Walk callback.
type WalkDiscovery struct {
	Root    string
	Exclude []string
}

func (w WalkDiscovery) Discover(root string) (<-chan string, error) {
	out := make(chan string, 256)
	go func() {
		defer close(out)
		filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			_, elem := filepath.Split(path)
			if elem != "" && isHiddenOrTemp(elem) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if info.IsDir() {
				return nil
			}
			if info.Mode()&os.ModeType != 0 {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				rel = path
			}
			rel = filepath.ToSlash(rel)
			for _, pat := range w.Exclude {
				if ok, _ := doublestar.Match(pat, rel); ok {
					return nil
				}
			}
			out <- path
			return nil
		})
	}()
	return out, nil
}

func isHiddenOrTemp(elem string) bool {
	if elem[0] == '.' || elem[0] == '#' || elem[0] == '~' {
		return true
	}
	return strings.HasSuffix(elem, "~")
}
