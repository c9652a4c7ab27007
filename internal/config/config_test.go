// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.Score.HalfLifeDays != want.Score.HalfLifeDays {
		t.Fatalf("HalfLifeDays = %v, want %v", cfg.Score.HalfLifeDays, want.Score.HalfLifeDays)
	}
	if cfg.Executor.ContentCacheSize != 128 {
		t.Fatalf("ContentCacheSize = %d, want 128", cfg.Executor.ContentCacheSize)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fxi.toml")
	data := []byte(`
[score]
half_life_days = 14.0

[executor]
verify_parallel_threshold = 16
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Score.HalfLifeDays != 14.0 {
		t.Fatalf("HalfLifeDays = %v, want 14", cfg.Score.HalfLifeDays)
	}
	if cfg.Executor.VerifyThreshold != 16 {
		t.Fatalf("VerifyThreshold = %d, want 16", cfg.Executor.VerifyThreshold)
	}
	if cfg.Build.BatchSize != Default().Build.BatchSize {
		t.Fatalf("BatchSize should keep default when not overridden, got %d", cfg.Build.BatchSize)
	}
}

func TestIdleAndDrainTimeouts(t *testing.T) {
	cfg := Default()
	if cfg.IdleTimeout().Seconds() != 30 {
		t.Fatalf("IdleTimeout = %v, want 30s", cfg.IdleTimeout())
	}
	if cfg.DrainTimeout().Seconds() != 1.5 {
		t.Fatalf("DrainTimeout = %v, want 1.5s", cfg.DrainTimeout())
	}
}
