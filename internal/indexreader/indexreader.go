// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package indexreader aggregates an index's document table, path store,
// meta record, and ordered segment readers into a single read-only handle
// (§4.4).
package indexreader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fxi-dev/fxi/internal/fxierr"
	"github.com/fxi-dev/fxi/internal/segment"
)

// Index is a fully opened, read-only view of one on-disk index directory.
// All segments are opened in parallel at construction time; Open blocks
// until every segment has opened successfully or one has failed (§4.4:
// "Opening is parallel ... blocks until all succeed or one fails").
type Index struct {
	Dir      string
	Meta     *segment.Meta
	DocTable *segment.DocTable
	Paths    *segment.PathStore
	Segments []*segment.Reader // ordered ascending by segment id
}

// Open opens every component of the index rooted at dir.
func Open(ctx context.Context, dir string) (*Index, error) {
	meta, err := segment.LoadMeta(dir)
	if err != nil {
		return nil, err
	}

	docTable, err := segment.OpenDocTable(filepath.Join(dir, "docs.bin"))
	if err != nil {
		return nil, err
	}
	paths, err := segment.OpenPathStore(filepath.Join(dir, "paths.bin"))
	if err != nil {
		docTable.Close()
		return nil, err
	}

	ids, err := discoverSegments(dir)
	if err != nil {
		docTable.Close()
		paths.Close()
		return nil, err
	}

	readers := make([]*segment.Reader, len(ids))
	g, _ := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			r, err := segment.OpenReader(filepath.Join(dir, "segments", segDirName(id)), id)
			if err != nil {
				return err
			}
			readers[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, r := range readers {
			if r != nil {
				r.Close()
			}
		}
		docTable.Close()
		paths.Close()
		return nil, err
	}

	return &Index{Dir: dir, Meta: meta, DocTable: docTable, Paths: paths, Segments: readers}, nil
}

// Close releases every mmap held by the index.
func (idx *Index) Close() error {
	var first error
	for _, r := range idx.Segments {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	if err := idx.DocTable.Close(); err != nil && first == nil {
		first = err
	}
	if err := idx.Paths.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

func segDirName(id uint16) string {
	return fmt.Sprintf("seg_%04d", id)
}

// discoverSegments lists segments/seg_NNNN directories under dir, in
// ascending segment-id order.
func discoverSegments(dir string) ([]uint16, error) {
	entries, err := os.ReadDir(filepath.Join(dir, "segments"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fxierr.IO(dir, err)
	}
	var ids []uint16
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "seg_") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(e.Name(), "seg_"))
		if err != nil {
			continue
		}
		ids = append(ids, uint16(n))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// LookupTrigram fans a trigram lookup out across every segment and returns,
// per segment (in segment order), the local document ids that matched. A
// segment whose bloom filter rejects t is skipped without touching its
// dictionary (§4.1 narrowing).
func (idx *Index) LookupTrigram(t uint32) ([]SegmentHit, error) {
	var hits []SegmentHit
	for _, r := range idx.Segments {
		if !r.BloomContains(t) {
			continue
		}
		ids, ok, err := r.LookupTrigram(t)
		if err != nil {
			return nil, err
		}
		if ok {
			hits = append(hits, SegmentHit{Segment: r, LocalIDs: ids})
		}
	}
	return hits, nil
}

// LookupToken fans a token lookup out across every segment.
func (idx *Index) LookupToken(token string) ([]SegmentHit, error) {
	var hits []SegmentHit
	for _, r := range idx.Segments {
		ids, ok, err := r.LookupToken(token)
		if err != nil {
			return nil, err
		}
		if ok {
			hits = append(hits, SegmentHit{Segment: r, LocalIDs: ids})
		}
	}
	return hits, nil
}

// SegmentHit is one segment's contribution to a dictionary lookup.
type SegmentHit struct {
	Segment  *segment.Reader
	LocalIDs []uint32
}

// GlobalID converts a segment reader's local document id into the index's
// global document id, using the base offset recorded in meta.json at
// build time (§3, §4.4).
func (idx *Index) GlobalID(r *segment.Reader, localID uint32) uint32 {
	if int(r.ID) < len(idx.Meta.SegmentBase) {
		return idx.Meta.SegmentBase[r.ID] + localID
	}
	return localID
}

// GlobalDoc resolves a global document id into the document's record and
// stored path. Document records carry their own SegmentID (§3), so the
// daemon can map a hit straight back to a path without re-deriving which
// segment it came from.
func (idx *Index) GlobalDoc(globalDocID uint32) (segment.Document, string, error) {
	d, err := idx.DocTable.Get(int(globalDocID))
	if err != nil {
		return segment.Document{}, "", err
	}
	path, err := idx.Paths.Read(d.PathID)
	if err != nil {
		return segment.Document{}, "", err
	}
	return d, path, nil
}
