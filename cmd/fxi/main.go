// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command fxi is the interactive client for fxid: it sends one request
// per invocation over the daemon's length-prefixed JSON socket and
// prints the response, in the spirit of standardbeagle-lci's cmd/lci
// search/status/shutdown subcommands but against this module's own wire
// protocol.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/fxi-dev/fxi/internal/client"
	"github.com/fxi-dev/fxi/internal/daemon"
)

func main() {
	app := &cli.App{
		Name:  "fxi",
		Usage: "query a running fxid daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "socket", Aliases: []string{"s"}, Usage: "daemon socket path (default resolved per §6.4)"},
			&cli.BoolFlag{Name: "json", Aliases: []string{"j"}, Usage: "print raw JSON responses"},
		},
		Commands: []*cli.Command{
			searchCommand(),
			grepCommand(),
			statusCommand(),
			reloadCommand(),
			shutdownCommand(),
			pingCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fxi:", err)
		os.Exit(1)
	}
}

func newClient(c *cli.Context) *client.Client {
	return client.New(c.String("socket"))
}

func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	if c.Bool("json") {
		return enc.Encode(v)
	}
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "run a structured query against a root's index",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "project root", Value: "."},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "max results", Value: 50},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: fxi search [flags] <query>", 2)
			}
			root, err := filepath.Abs(c.String("root"))
			if err != nil {
				return err
			}
			cl := newClient(c)
			defer cl.Close()
			resp, err := cl.Search(c.Args().First(), root, c.Int("limit"))
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(c, resp)
			}
			for _, m := range resp.Matches {
				fmt.Printf("%s:%d: score=%.3f\n", m.Path, m.LineNumber, m.Score)
			}
			fmt.Fprintf(os.Stderr, "%d matches in %dms%s\n", len(resp.Matches), resp.DurationMs, cachedSuffix(resp.Cached))
			return nil
		},
	}
}

func cachedSuffix(cached bool) string {
	if cached {
		return " (cached)"
	}
	return ""
}

func grepCommand() *cli.Command {
	return &cli.Command{
		Name:      "grep",
		Aliases:   []string{"g"},
		Usage:     "grep-style content search against a root's index",
		ArgsUsage: "<pattern>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "project root", Value: "."},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "max results", Value: 50},
			&cli.BoolFlag{Name: "case-insensitive", Aliases: []string{"i"}, Usage: "case-insensitive match"},
			&cli.BoolFlag{Name: "files-only", Aliases: []string{"l"}, Usage: "list only file paths"},
			&cli.IntFlag{Name: "before", Usage: "lines of context before a match"},
			&cli.IntFlag{Name: "after", Usage: "lines of context after a match"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: fxi grep [flags] <pattern>", 2)
			}
			root, err := filepath.Abs(c.String("root"))
			if err != nil {
				return err
			}
			cl := newClient(c)
			defer cl.Close()
			opts := daemon.ContentSearchOptions{
				CaseInsensitive: c.Bool("case-insensitive"),
				FilesOnly:       c.Bool("files-only"),
				ContextBefore:   c.Int("before"),
				ContextAfter:    c.Int("after"),
			}
			resp, err := cl.ContentSearch(c.Args().First(), root, c.Int("limit"), opts)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(c, resp)
			}
			for _, m := range resp.Matches {
				fmt.Printf("%s:%d: %s\n", m.Path, m.LineNumber, m.LineContent)
			}
			fmt.Fprintf(os.Stderr, "%d files, %d matches in %dms\n", resp.FilesWithMatches, len(resp.Matches), resp.DurationMs)
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "show daemon status",
		Action: func(c *cli.Context) error {
			cl := newClient(c)
			defer cl.Close()
			resp, err := cl.Status()
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(c, resp)
			}
			fmt.Printf("uptime:        %.1fs\n", resp.UptimeSecs)
			fmt.Printf("indexes:       %d\n", resp.IndexesLoaded)
			fmt.Printf("total docs:    %d\n", resp.TotalDocs)
			fmt.Printf("queries:       %d\n", resp.QueriesServed)
			fmt.Printf("cache hit rate: %.1f%%\n", resp.CacheHitRate*100)
			for _, r := range resp.LoadedRoots {
				fmt.Printf("  root: %s\n", r)
			}
			return nil
		},
	}
}

func reloadCommand() *cli.Command {
	return &cli.Command{
		Name:      "reload",
		Usage:     "reload a root's index after an out-of-band rebuild",
		ArgsUsage: "<root>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: fxi reload <root>", 2)
			}
			root, err := filepath.Abs(c.Args().First())
			if err != nil {
				return err
			}
			cl := newClient(c)
			defer cl.Close()
			resp, err := cl.Reload(root)
			if err != nil {
				return err
			}
			fmt.Println(resp.Message)
			return nil
		},
	}
}

func shutdownCommand() *cli.Command {
	return &cli.Command{
		Name:  "shutdown",
		Usage: "ask the daemon to drain and stop",
		Action: func(c *cli.Context) error {
			cl := newClient(c)
			defer cl.Close()
			if err := cl.Shutdown(); err != nil {
				return err
			}
			fmt.Println("shutting down")
			return nil
		},
	}
}

func pingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "check that the daemon is reachable",
		Action: func(c *cli.Context) error {
			cl := newClient(c)
			defer cl.Close()
			if err := cl.Ping(); err != nil {
				return err
			}
			fmt.Println("pong")
			return nil
		},
	}
}
