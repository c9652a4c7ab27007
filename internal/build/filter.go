// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import "bytes"

// MaxFileSize is the default oversize cutoff; files larger than this are
// skipped rather than indexed (§4.5 "filter heuristics: skip binary,
// oversize, known-generated").
const MaxFileSize = 32 << 20

// binarySniffLen bounds how much of a file is inspected to decide whether
// it looks binary, the same NUL-byte heuristic git and ripgrep use.
const binarySniffLen = 8000

// looksBinary reports whether data's leading bytes contain a NUL, the
// conventional signal that a file is not text.
func looksBinary(data []byte) bool {
	n := len(data)
	if n > binarySniffLen {
		n = binarySniffLen
	}
	return bytes.IndexByte(data[:n], 0) >= 0
}

// generatedMarkers are the header strings Go tooling and most code
// generators use to mark a file as machine-written (the same convention
// `go generate`-produced files and protoc plugins follow).
var generatedMarkers = [][]byte{
	[]byte("Code generated"),
	[]byte("DO NOT EDIT"),
	[]byte("@generated"),
}

// looksGenerated reports whether data's first few lines carry a known
// generated-file marker.
func looksGenerated(data []byte) bool {
	n := len(data)
	if n > 512 {
		n = 512
	}
	head := data[:n]
	for _, m := range generatedMarkers {
		if bytes.Contains(head, m) {
			return true
		}
	}
	return false
}
