// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fxi-dev/fxi/internal/build"
	"github.com/fxi-dev/fxi/internal/client"
	"github.com/fxi-dev/fxi/internal/config"
)

// setupIndexedRoot builds a real on-disk index for a temp source tree at
// the same path indexDirForRoot would derive, using a scratch
// XDG_CACHE_HOME so the test never touches a real user cache directory.
func setupIndexedRoot(t *testing.T) (root string) {
	t.Helper()
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	root = t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\nfunc Needle() int { return 1 }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	canon, err := filepath.Abs(root)
	if err != nil {
		t.Fatal(err)
	}
	indexDir := indexDirForRoot(canon)
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		t.Fatal(err)
	}

	log := zap.NewNop()
	disco := &build.WalkDiscovery{Root: root}
	if _, err := build.Build(context.Background(), root, indexDir, disco, build.Options{BatchSize: 10}, log); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return root
}

func TestDaemonSearchRoundTrip(t *testing.T) {
	root := setupIndexedRoot(t)

	sockDir := t.TempDir()
	sockPath := filepath.Join(sockDir, "fxi-test.sock")

	cfg := config.Default()
	srv := New(cfg, sockPath, zap.NewNop())
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Shutdown()

	c := client.New(sockPath)
	defer c.Close()

	if err := c.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	resp, err := c.Search("Needle", root, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Matches) != 1 {
		t.Fatalf("len(Matches) = %d, want 1 (%+v)", len(resp.Matches), resp.Matches)
	}

	status, err := c.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.IndexesLoaded != 1 {
		t.Fatalf("IndexesLoaded = %d, want 1", status.IndexesLoaded)
	}
}

func TestDaemonShutdownStopsAndRemovesSocket(t *testing.T) {
	root := setupIndexedRoot(t)
	_ = root

	sockDir := t.TempDir()
	sockPath := filepath.Join(sockDir, "fxi-test.sock")

	cfg := config.Default()
	srv := New(cfg, sockPath, zap.NewNop())
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if got := srv.State(); got != StateServing {
		t.Fatalf("State = %v, want serving", got)
	}

	srv.Shutdown()
	srv.Wait()

	if srv.State() != StateStopped {
		t.Fatalf("State = %v, want stopped", srv.State())
	}
	if _, err := os.Stat(sockPath); !os.IsNotExist(err) {
		t.Fatalf("socket file should be removed after shutdown, stat err = %v", err)
	}

	time.Sleep(10 * time.Millisecond)
}
