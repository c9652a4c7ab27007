// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/fxi-dev/fxi/internal/fxierr"
)

// Meta is the index-wide record described in §3 and §6.1's meta.json.
type Meta struct {
	Version      int       `json:"version"`
	DocCount     int       `json:"doc_count"`
	SegmentCount int       `json:"segment_count"`
	StopGrams    []uint32  `json:"stop_grams"`
	RootPath     string    `json:"root_path"`
	CreatedAt    time.Time `json:"created_at"`
	BloomM       uint32    `json:"bloom_m"`
	BloomK       uint32    `json:"bloom_k"`

	// SegmentBase[i] is the global document id of local id 0 in segment
	// i: segments are filled and flushed in global-id order, so a
	// segment's local ids map onto a contiguous global range starting
	// here (§3, §4.4).
	SegmentBase []uint32 `json:"segment_base"`
}

const MetaVersion = 1

// LoadMeta reads and validates meta.json from dir.
func LoadMeta(dir string) (*Meta, error) {
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return nil, fxierr.IO(dir, err)
	}
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fxierr.Corrupt("meta.json", err)
	}
	return &m, nil
}

// SaveMeta writes meta.json atomically: write-temp then rename, so a
// reader either sees the previous valid version or the new one, never a
// partial file (§3 "Lifecycle", §4.3, §9).
func SaveMeta(dir string, m *Meta) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	final := filepath.Join(dir, "meta.json")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fxierr.IO(tmp, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fxierr.IO(final, err)
	}
	return nil
}

// IsStopGram reports whether trigram t is in the meta's stop-gram list
// (§3: "A stop-gram never appears in any dictionary; queries referencing
// it must fall back to other trigrams or to the token index").
func (m *Meta) IsStopGram(t uint32) bool {
	for _, g := range m.StopGrams {
		if g == t {
			return true
		}
	}
	return false
}
