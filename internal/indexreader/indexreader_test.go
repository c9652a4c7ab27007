// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package indexreader

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fxi-dev/fxi/internal/segment"
)

func buildTestIndex(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	pw, err := segment.CreatePathStore(filepath.Join(dir, "paths.bin"))
	if err != nil {
		t.Fatalf("CreatePathStore: %v", err)
	}
	off0, _ := pw.Append("a.go")
	off1, _ := pw.Append("b.go")
	if err := pw.Close(); err != nil {
		t.Fatalf("close paths: %v", err)
	}

	dw, err := segment.CreateDocTable(filepath.Join(dir, "docs.bin"))
	if err != nil {
		t.Fatalf("CreateDocTable: %v", err)
	}
	if err := dw.Append(segment.Document{DocID: 0, PathID: off0, Size: 10, SegmentID: 0}); err != nil {
		t.Fatalf("append doc0: %v", err)
	}
	if err := dw.Append(segment.Document{DocID: 1, PathID: off1, Size: 20, SegmentID: 0}); err != nil {
		t.Fatalf("append doc1: %v", err)
	}
	if err := dw.Close(); err != nil {
		t.Fatalf("close docs: %v", err)
	}

	segDir := filepath.Join(dir, "segments", "seg_0000")
	docs := []segment.ProcessedDoc{
		{LocalID: 0, Trigrams: []uint32{10, 11}, Tokens: []string{"foo"}, LineOffsets: []uint32{0}},
		{LocalID: 1, Trigrams: []uint32{11, 12}, Tokens: []string{"bar"}, LineOffsets: []uint32{0}},
	}
	if err := segment.WriteSegment(segDir, docs, 128, 3); err != nil {
		t.Fatalf("WriteSegment: %v", err)
	}

	meta := &segment.Meta{
		Version:      segment.MetaVersion,
		DocCount:     2,
		SegmentCount: 1,
		RootPath:     dir,
		CreatedAt:    time.Unix(0, 0),
		BloomM:       128,
		BloomK:       3,
		SegmentBase:  []uint32{0},
	}
	if err := segment.SaveMeta(dir, meta); err != nil {
		t.Fatalf("SaveMeta: %v", err)
	}
	return dir
}

func TestOpenAggregatesSegmentsAndResolvesDocs(t *testing.T) {
	dir := buildTestIndex(t)
	idx, err := Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	if len(idx.Segments) != 1 {
		t.Fatalf("len(Segments) = %d, want 1", len(idx.Segments))
	}

	hits, err := idx.LookupTrigram(11)
	if err != nil {
		t.Fatalf("LookupTrigram: %v", err)
	}
	if len(hits) != 1 || len(hits[0].LocalIDs) != 2 {
		t.Fatalf("LookupTrigram(11) = %+v, want both docs", hits)
	}

	d, path, err := idx.GlobalDoc(1)
	if err != nil {
		t.Fatalf("GlobalDoc(1): %v", err)
	}
	if path != "b.go" || d.Size != 20 {
		t.Fatalf("GlobalDoc(1) = %+v path=%q, want b.go/size 20", d, path)
	}
}

func TestOpenMissingMeta(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(context.Background(), dir); err == nil {
		t.Fatalf("Open should fail when meta.json is missing")
	}
}
