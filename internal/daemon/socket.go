// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daemon

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
)

// SocketPath resolves the daemon's listen address per §6.4: a user
// runtime dir if advertised, else a home-relative run dir, else a
// uid-qualified path under /tmp; a Windows-style named pipe on that
// platform. Grounded on standardbeagle-lci/internal/server/server.go's
// GetSocketPath, generalized from that file's single hardcoded
// os.TempDir() fallback into the full §6.4 precedence chain.
func SocketPath() string {
	if runtime.GOOS == "windows" {
		name := "fxi"
		if u, err := user.Current(); err == nil && u.Username != "" {
			name = u.Username
		}
		return `\\.\pipe\fxi-` + name
	}

	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "fxi.sock")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".local", "run", "fxi.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("fxi-%d.sock", os.Getuid()))
}

// ensureSocketDir creates the parent directory of path if it does not
// already exist, matching the owner-only permission requirement (§6.4).
func ensureSocketDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o700)
}
