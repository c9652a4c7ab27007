// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads builder tuning and executor/scorer weights from an
// optional TOML file. Every field has a default matching the spec's
// stated values, so a missing or empty config file is never an error
// (§4.5, §4.8, §4.9).
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/fxi-dev/fxi/internal/fxierr"
)

// Build configures the builder pipeline (§4.5).
type Build struct {
	MaxFileSizeBytes int64   `toml:"max_file_size_bytes"`
	BatchSize        int     `toml:"batch_size"`
	ChannelDepth     int     `toml:"channel_depth"`
	Workers          int     `toml:"workers"`
	BloomFPRate      float64 `toml:"bloom_fp_rate"`
}

// Score configures the §4.8 phase-3 scoring formula.
type Score struct {
	FilenameBonus float64 `toml:"filename_bonus"`
	DepthPenalty  float64 `toml:"depth_penalty"`
	MaxDepth      int     `toml:"max_depth"`
	RecencyWeight float64 `toml:"recency_weight"`
	HalfLifeDays  float64 `toml:"half_life_days"`
}

// Executor configures query-time concurrency and caching (§4.8, §4.9).
type Executor struct {
	VerifyThreshold    int     `toml:"verify_parallel_threshold"` // 0 means cpu_count*4
	ContentCacheSize   int     `toml:"content_cache_size"`
	QueryCacheSize     int     `toml:"query_cache_size"`
	IdleTimeoutSeconds float64 `toml:"idle_timeout_seconds"`
	DrainTimeoutSecs   float64 `toml:"drain_timeout_seconds"`
}

// Config is the full, optional on-disk configuration (§4.5, §4.8, §4.9's
// "Configuration" paragraph).
type Config struct {
	Build    Build    `toml:"build"`
	Score    Score    `toml:"score"`
	Executor Executor `toml:"executor"`
}

// Default returns a Config whose values match every default named in the
// spec: half-life 7 days, verification threshold cpu_count*4, LRU
// capacity 128, idle timeout 30s, drain timeout 1.5s.
func Default() Config {
	return Config{
		Build: Build{
			MaxFileSizeBytes: 32 << 20,
			BatchSize:        4096,
			ChannelDepth:     4096,
			Workers:          runtime.NumCPU(),
			BloomFPRate:      0.01,
		},
		Score: Score{
			FilenameBonus: 2.0,
			DepthPenalty:  0.1,
			MaxDepth:      8,
			RecencyWeight: 1.0,
			HalfLifeDays:  7,
		},
		Executor: Executor{
			VerifyThreshold:    runtime.NumCPU() * 4,
			ContentCacheSize:   128,
			QueryCacheSize:     128,
			IdleTimeoutSeconds: 30,
			DrainTimeoutSecs:   1.5,
		},
	}
}

// IdleTimeout and DrainTimeout convert the config's float seconds into
// time.Duration for the daemon's idle-eviction and shutdown-drain timers.
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.Executor.IdleTimeoutSeconds * float64(time.Second))
}

func (c Config) DrainTimeout() time.Duration {
	return time.Duration(c.Executor.DrainTimeoutSecs * float64(time.Second))
}

// Load reads and merges a TOML config file over Default(). A missing
// file is not an error: Load returns Default() unchanged, matching §4.5's
// "always valid with no config file present".
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fxierr.IO(path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fxierr.New(fxierr.KindIO, path, err)
	}
	return cfg, nil
}

// DefaultPath resolves the conventional config file location,
// "fxi/config.toml" under the user's config directory, or "" when that
// directory cannot be determined. Callers may always pass an explicit
// path instead.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "fxi", "config.toml")
	}
	return ""
}
