// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/fxi-dev/fxi/internal/segment"
	"github.com/fxi-dev/fxi/internal/tokenize"
)

// directReadThreshold is the cutoff below which a file is read with a
// single os.ReadFile call rather than mmap'd (§4.5: "content files smaller
// than ~4 KiB via a single read; larger files via mmap").
const directReadThreshold = 4 << 10

// rawDoc is one file read off disk, ready for trigram/token extraction.
// Separated from segment.ProcessedDoc so the processor stage can carry
// path and filesystem metadata through to the writer stage without
// threading it through the segment package.
type rawDoc struct {
	relPath  string
	absPath  string
	size     int64
	mtime    int64
	language segment.Language
	flags    segment.Flag
}

// processed is what the processor stage pushes onto the builder's bounded
// channel: the extracted index data plus enough metadata for the writer
// stage to build a Document record.
type processed struct {
	doc  rawDoc
	data segment.ProcessedDoc // LocalID left zero; assigned by the writer stage
}

// Options configures the builder pipeline.
type Options struct {
	MaxFileSize int64 // default build.MaxFileSize
	BatchSize   int   // documents per segment; default 4096
	Workers     int   // default runtime.NumCPU()
	BloomFPRate float64
}

func (o Options) withDefaults() Options {
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = MaxFileSize
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 4096
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.BloomFPRate <= 0 {
		o.BloomFPRate = 0.01
	}
	return o
}

// runProcessors reads paths from disco, filters and extracts each file in
// parallel across opts.Workers goroutines (work-stealing over a shared
// input channel, §4.5), and sends processed results to out. It closes out
// when every worker has finished. Per-file read failures are logged and
// skipped; they never abort the build (§4.5, §7).
func runProcessors(paths <-chan string, root string, opts Options, log *zap.Logger, out chan<- processed) {
	var wg sync.WaitGroup
	wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go func() {
			defer wg.Done()
			for path := range paths {
				doc, data, ok := processFile(root, path, opts, log)
				if !ok {
					continue
				}
				out <- processed{doc: doc, data: data}
			}
		}()
	}
	wg.Wait()
	close(out)
}

func processFile(root, path string, opts Options, log *zap.Logger) (rawDoc, segment.ProcessedDoc, bool) {
	info, err := os.Stat(path)
	if err != nil {
		log.Warn("stat failed, skipping", zap.String("path", path), zap.Error(err))
		return rawDoc{}, segment.ProcessedDoc{}, false
	}
	if info.Size() > opts.MaxFileSize {
		return rawDoc{}, segment.ProcessedDoc{}, false
	}

	data, err := readFile(path, info.Size())
	if err != nil {
		log.Warn("read failed, skipping", zap.String("path", path), zap.Error(err))
		return rawDoc{}, segment.ProcessedDoc{}, false
	}

	var flags segment.Flag
	if looksBinary(data) {
		flags |= segment.FlagBinary
		return rawDoc{}, segment.ProcessedDoc{}, false
	}
	if looksGenerated(data) {
		flags |= segment.FlagGenerated
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	trigrams := tokenize.ExtractTrigrams(data)
	trigramSet := make(map[uint32]struct{}, len(trigrams))
	uniqueTrigrams := make([]uint32, 0, len(trigrams))
	for _, t := range trigrams {
		v := uint32(t)
		if _, seen := trigramSet[v]; !seen {
			trigramSet[v] = struct{}{}
			uniqueTrigrams = append(uniqueTrigrams, v)
		}
	}

	tokenSet := tokenize.TokenSet(string(data))
	tokens := make([]string, 0, len(tokenSet))
	for t := range tokenSet {
		tokens = append(tokens, t)
	}

	doc := rawDoc{
		relPath:  rel,
		absPath:  path,
		size:     info.Size(),
		mtime:    info.ModTime().Unix(),
		language: segment.LanguageFromPath(path),
		flags:    flags,
	}
	return doc, segment.ProcessedDoc{
		Trigrams:    uniqueTrigrams,
		Tokens:      tokens,
		LineOffsets: lineOffsets(data),
	}, true
}

func readFile(path string, size int64) ([]byte, error) {
	if size <= directReadThreshold {
		return os.ReadFile(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mmapRead(f, size)
}

// lineOffsets computes the byte offset of the start of each line, the
// input to linemap.bin (§4.3) and to the executor's context-line and
// proximity logic (§4.8).
func lineOffsets(data []byte) []uint32 {
	offsets := []uint32{0}
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' && i+1 < len(data) {
			offsets = append(offsets, uint32(i+1))
		}
	}
	return offsets
}
