// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command fxi-index builds, inspects, and lists on-disk fxi indexes. It
// is the offline counterpart to fxid: fxid serves queries against
// indexes this binary produces, generalizing google-codesearch's
// cindex into the subcommand-per-operation shape standardbeagle-lci's
// cmd/lci uses.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/fxi-dev/fxi/internal/build"
	"github.com/fxi-dev/fxi/internal/config"
	"github.com/fxi-dev/fxi/internal/daemon"
	"github.com/fxi-dev/fxi/internal/indexreader"
)

func main() {
	app := &cli.App{
		Name:  "fxi-index",
		Usage: "build and inspect fxi indexes",
		Commands: []*cli.Command{
			buildCommand(),
			statsCommand(),
			checkCommand(),
			rootsCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fxi-index:", err)
		os.Exit(1)
	}
}

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "index a directory tree",
		ArgsUsage: "<root>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to TOML config file"},
			&cli.StringSliceFlag{Name: "exclude", Aliases: []string{"e"}, Usage: "doublestar glob patterns to exclude"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: fxi-index build [flags] <root>", 2)
			}
			root, err := filepath.Abs(c.Args().First())
			if err != nil {
				return err
			}

			cfg := config.Default()
			if path := c.String("config"); path != "" {
				cfg, err = config.Load(path)
				if err != nil {
					return err
				}
			}

			indexDir := daemon.IndexDirForRoot(root)
			if err := os.MkdirAll(indexDir, 0o755); err != nil {
				return err
			}

			log, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer log.Sync()

			disco := &build.WalkDiscovery{Root: root, Exclude: c.StringSlice("exclude")}
			opts := build.Options{
				MaxFileSize: cfg.Build.MaxFileSizeBytes,
				BatchSize:   cfg.Build.BatchSize,
				Workers:     cfg.Build.Workers,
				BloomFPRate: cfg.Build.BloomFPRate,
			}

			start := time.Now()
			result, err := build.Build(context.Background(), root, indexDir, disco, opts, log)
			if err != nil {
				return err
			}
			fmt.Printf("indexed %d documents in %d segments (%s) -> %s\n",
				result.DocCount, result.SegmentCount, time.Since(start).Round(time.Millisecond), indexDir)
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "print index size statistics",
		ArgsUsage: "<root-hash>",
		Action: func(c *cli.Context) error {
			idx, err := openByHashArg(c)
			if err != nil {
				return err
			}
			defer idx.Close()

			s := indexreader.ComputeStats(idx)
			fmt.Printf("root:       %s\n", s.RootPath)
			fmt.Printf("documents:  %d\n", s.DocCount)
			fmt.Printf("segments:   %d\n", s.SegmentCount)
			fmt.Printf("stop grams: %d\n", s.StopGramN)
			fmt.Printf("bloom:      m=%d k=%d\n", s.BloomM, s.BloomK)
			for _, seg := range s.Segments {
				fmt.Printf("  seg %04d: docs=%-6d trigrams=%-8d tokens=%d\n",
					seg.ID, seg.DocCount, seg.TrigramDictN, seg.TokenDictN)
			}
			return nil
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "verify index structural consistency",
		ArgsUsage: "<root-hash>",
		Action: func(c *cli.Context) error {
			idx, err := openByHashArg(c)
			if err != nil {
				return err
			}
			defer idx.Close()

			if err := indexreader.Check(idx); err != nil {
				return cli.Exit(fmt.Sprintf("index is corrupt: %v", err), 1)
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func rootsCommand() *cli.Command {
	return &cli.Command{
		Name:  "roots",
		Usage: "list every indexed root under the index cache",
		Action: func(c *cli.Context) error {
			base := daemon.BaseIndexCacheDir()
			entries, err := os.ReadDir(base)
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			for _, e := range entries {
				if !e.IsDir() {
					continue
				}
				idx, err := indexreader.Open(context.Background(), filepath.Join(base, e.Name()))
				if err != nil {
					continue
				}
				fmt.Printf("%s  %s  (%d docs)\n", e.Name(), idx.Meta.RootPath, idx.Meta.DocCount)
				idx.Close()
			}
			return nil
		},
	}
}

// openByHashArg opens the index directory named by the single
// "root-hash" directory-name argument (as printed by the roots and build
// commands), not a root path — the hash is what's stable across the
// filesystem, and recomputing it from a root path the caller might spell
// differently (trailing slash, symlink) would risk opening the wrong
// directory.
func openByHashArg(c *cli.Context) (*indexreader.Index, error) {
	if c.NArg() != 1 {
		return nil, cli.Exit("usage: fxi-index <command> <root-hash>", 2)
	}
	dir := filepath.Join(daemon.BaseIndexCacheDir(), c.Args().First())
	return indexreader.Open(context.Background(), dir)
}
