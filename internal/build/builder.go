// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/fxi-dev/fxi/internal/codec"
	"github.com/fxi-dev/fxi/internal/segment"
)

// Result summarizes a completed build.
type Result struct {
	DocCount     int
	SegmentCount int
}

// Build runs the two-stage pipeline against root and writes a complete
// index directory at indexDir: the processor stage extracts trigrams and
// tokens from every file disco yields, and the writer stage (this
// goroutine) accumulates them into fixed-size batches and invokes
// segment.WriteSegment for each, then writes the document table, path
// store, and meta record (§4.5).
//
// The builder buffers at most one in-flight batch: the channel between the
// two stages is unbuffered-in-spirit (small, fixed capacity), so the
// processor stage blocks once a batch's worth of results are queued
// rather than unboundedly racing ahead of the writer.
func Build(ctx context.Context, root, indexDir string, disco FileDiscovery, opts Options, log *zap.Logger) (Result, error) {
	opts = opts.withDefaults()

	paths, err := disco.Discover(root)
	if err != nil {
		return Result{}, err
	}

	results := make(chan processed, opts.BatchSize)
	go runProcessors(paths, root, opts, log, results)

	pathStorePath := filepath.Join(indexDir, "paths.bin")
	docTablePath := filepath.Join(indexDir, "docs.bin")

	pw, err := segment.CreatePathStore(pathStorePath)
	if err != nil {
		return Result{}, err
	}
	dw, err := segment.CreateDocTable(docTablePath)
	if err != nil {
		pw.Close()
		return Result{}, err
	}

	var (
		batch        []segment.ProcessedDoc
		docCount     int
		segmentCount uint16
		segmentBase  []uint32
		batchBase    = uint32(0)
	)

	bloomM, bloomK := estimateBloomParams(opts)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		dir := filepath.Join(indexDir, "segments", segDirName(segmentCount))
		if err := segment.WriteSegment(dir, batch, bloomM, bloomK); err != nil {
			return err
		}
		segmentBase = append(segmentBase, batchBase)
		segmentCount++
		batchBase = uint32(docCount)
		batch = batch[:0]
		return nil
	}

	for p := range results {
		select {
		case <-ctx.Done():
			pw.Close()
			dw.Close()
			return Result{}, ctx.Err()
		default:
		}

		pathID, err := pw.Append(p.doc.relPath)
		if err != nil {
			return Result{}, err
		}
		localID := uint32(len(batch))
		doc := segment.Document{
			DocID:     uint32(docCount),
			PathID:    pathID,
			Size:      uint64(p.doc.size),
			MTimeSecs: uint64(p.doc.mtime),
			Language:  p.doc.language,
			Flags:     p.doc.flags,
			SegmentID: segmentCount,
		}
		if err := dw.Append(doc); err != nil {
			return Result{}, err
		}
		p.data.LocalID = localID
		batch = append(batch, p.data)
		docCount++

		if len(batch) >= opts.BatchSize {
			if err := flush(); err != nil {
				return Result{}, err
			}
		}
	}
	if err := flush(); err != nil {
		return Result{}, err
	}

	if err := pw.Close(); err != nil {
		return Result{}, err
	}
	if err := dw.Close(); err != nil {
		return Result{}, err
	}

	meta := &segment.Meta{
		Version:      segment.MetaVersion,
		DocCount:     docCount,
		SegmentCount: int(segmentCount),
		RootPath:     root,
		CreatedAt:    time.Now(),
		BloomM:       bloomM,
		BloomK:       bloomK,
		SegmentBase:  segmentBase,
	}
	if err := segment.SaveMeta(indexDir, meta); err != nil {
		return Result{}, err
	}

	return Result{DocCount: docCount, SegmentCount: int(segmentCount)}, nil
}

func estimateBloomParams(opts Options) (uint32, uint32) {
	b := codec.NewBloom(opts.BatchSize*3, opts.BloomFPRate)
	return b.M, b.K
}

func segDirName(id uint16) string {
	return fmt.Sprintf("seg_%04d", id)
}
