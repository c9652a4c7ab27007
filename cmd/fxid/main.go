// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command fxid is the long-running query daemon (§4.9). It loads no
// index at startup; indexes are opened lazily, on first query against a
// root, and held in a registry that closes any index left unused for
// longer than the configured idle timeout.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/fxi-dev/fxi/internal/config"
	"github.com/fxi-dev/fxi/internal/daemon"
)

func main() {
	app := &cli.App{
		Name:  "fxid",
		Usage: "persistent fxi query daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "socket", Aliases: []string{"s"}, Usage: "unix socket path (default resolved per §6.4)"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to TOML config file"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fxid:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	srv := daemon.New(cfg, c.String("socket"), log)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received")
	srv.Shutdown()
	srv.Wait()
	return nil
}
