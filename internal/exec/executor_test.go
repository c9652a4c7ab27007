// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fxi-dev/fxi/internal/indexreader"
	"github.com/fxi-dev/fxi/internal/segment"
	"github.com/fxi-dev/fxi/internal/tokenize"
)

// buildFileIndex writes real files under dir/src and a matching on-disk
// index, returning the opened Index.
func buildFileIndex(t *testing.T) *indexreader.Index {
	t.Helper()
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatal(err)
	}

	content0 := []byte("package main\nfunc Needle() int {\nreturn 1\n}\n")
	content1 := []byte("package main\nfunc Other() int {\nreturn 2\n}\n")

	path0 := filepath.Join(srcDir, "alpha.go")
	path1 := filepath.Join(srcDir, "beta.go")
	if err := os.WriteFile(path0, content0, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path1, content1, 0o644); err != nil {
		t.Fatal(err)
	}

	indexDir := filepath.Join(dir, "index")
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		t.Fatal(err)
	}

	pw, err := segment.CreatePathStore(filepath.Join(indexDir, "paths.bin"))
	if err != nil {
		t.Fatal(err)
	}
	off0, _ := pw.Append(path0)
	off1, _ := pw.Append(path1)
	if err := pw.Close(); err != nil {
		t.Fatal(err)
	}

	dw, err := segment.CreateDocTable(filepath.Join(indexDir, "docs.bin"))
	if err != nil {
		t.Fatal(err)
	}
	now := uint64(time.Now().Unix())
	if err := dw.Append(segment.Document{DocID: 0, PathID: off0, Size: uint64(len(content0)), MTimeSecs: now, SegmentID: 0}); err != nil {
		t.Fatal(err)
	}
	if err := dw.Append(segment.Document{DocID: 1, PathID: off1, Size: uint64(len(content1)), MTimeSecs: now, SegmentID: 0}); err != nil {
		t.Fatal(err)
	}
	if err := dw.Close(); err != nil {
		t.Fatal(err)
	}

	trigrams0 := dedupTrigrams(tokenize.ExtractTrigrams(content0))
	trigrams1 := dedupTrigrams(tokenize.ExtractTrigrams(content1))
	tokens0 := setSlice(tokenize.TokenSet(string(content0)))
	tokens1 := setSlice(tokenize.TokenSet(string(content1)))

	segDir := filepath.Join(indexDir, "segments", "seg_0000")
	docs := []segment.ProcessedDoc{
		{LocalID: 0, Trigrams: trigrams0, Tokens: tokens0, LineOffsets: lineOffsetsOf(content0)},
		{LocalID: 1, Trigrams: trigrams1, Tokens: tokens1, LineOffsets: lineOffsetsOf(content1)},
	}
	if err := segment.WriteSegment(segDir, docs, 1024, 4); err != nil {
		t.Fatal(err)
	}

	meta := &segment.Meta{
		Version:      segment.MetaVersion,
		DocCount:     2,
		SegmentCount: 1,
		RootPath:     srcDir,
		CreatedAt:    time.Unix(0, 0),
		BloomM:       1024,
		BloomK:       4,
		SegmentBase:  []uint32{0},
	}
	if err := segment.SaveMeta(indexDir, meta); err != nil {
		t.Fatal(err)
	}

	idx, err := indexreader.Open(context.Background(), indexDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return idx
}

func dedupTrigrams(ts []tokenize.Trigram) []uint32 {
	seen := make(map[uint32]struct{}, len(ts))
	out := make([]uint32, 0, len(ts))
	for _, t := range ts {
		v := uint32(t)
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func setSlice(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	return out
}

func lineOffsetsOf(data []byte) []uint32 {
	offsets := []uint32{0}
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' && i+1 < len(data) {
			offsets = append(offsets, uint32(i+1))
		}
	}
	return offsets
}

func TestQueryLiteralFindsOnlyMatchingFile(t *testing.T) {
	idx := buildFileIndex(t)
	defer idx.Close()

	e := NewExecutor(idx)
	matches, err := e.Query(context.Background(), "Needle", Options{Limit: 10})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1 (%+v)", len(matches), matches)
	}
	if filepath.Base(matches[0].Path) != "alpha.go" {
		t.Fatalf("match path = %q, want alpha.go", matches[0].Path)
	}
	if matches[0].Line != 2 {
		t.Fatalf("match line = %d, want 2", matches[0].Line)
	}
}

func TestQueryFilterExcludesNonMatchingExtension(t *testing.T) {
	idx := buildFileIndex(t)
	defer idx.Close()

	e := NewExecutor(idx)
	matches, err := e.Query(context.Background(), "package ext:txt", Options{Limit: 10})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("len(matches) = %d, want 0 when ext filter excludes every .go file", len(matches))
	}
}

func TestQueryRegexMatches(t *testing.T) {
	idx := buildFileIndex(t)
	defer idx.Close()

	e := NewExecutor(idx)
	matches, err := e.Query(context.Background(), `/func \w+\(\)/`, Options{Limit: 10})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("len(matches) = %d, want 2", len(matches))
	}
}

func TestQueryNotExcludesMatchingFile(t *testing.T) {
	idx := buildFileIndex(t)
	defer idx.Close()

	e := NewExecutor(idx)
	matches, err := e.Query(context.Background(), "package -Needle", Options{Limit: 10})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
	if filepath.Base(matches[0].Path) != "beta.go" {
		t.Fatalf("match path = %q, want beta.go", matches[0].Path)
	}
}
