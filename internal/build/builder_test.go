// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/fxi-dev/fxi/internal/indexreader"
)

func writeSourceTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"main.go":        "package main\n\nfunc main() {\n\tprintln(\"hello\")\n}\n",
		"sub/helper.go":  "package sub\n\nfunc HelperFunc() int {\n\treturn 42\n}\n",
		".git/HEAD":      "ref: refs/heads/main\n",
		"vendor/bin.dat": "\x00\x01\x02binary stuff",
	}
	for rel, content := range files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

func TestBuildProducesQueryableIndex(t *testing.T) {
	root := writeSourceTree(t)
	indexDir := filepath.Join(t.TempDir(), "index")

	disco := WalkDiscovery{Root: root}
	log := zap.NewNop()
	res, err := Build(context.Background(), root, indexDir, disco, Options{BatchSize: 10}, log)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.DocCount != 2 {
		t.Fatalf("DocCount = %d, want 2 (vendor/.git should be skipped)", res.DocCount)
	}

	idx, err := indexreader.Open(context.Background(), indexDir)
	if err != nil {
		t.Fatalf("Open built index: %v", err)
	}
	defer idx.Close()

	if idx.Meta.DocCount != 2 {
		t.Fatalf("meta DocCount = %d, want 2", idx.Meta.DocCount)
	}

	hits, err := idx.LookupToken("helper")
	if err != nil {
		t.Fatalf("LookupToken: %v", err)
	}
	if len(hits) == 0 {
		t.Fatalf("expected HelperFunc's \"helper\" token to be indexed")
	}
}
