// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package daemon implements the long-running query server: a cache of
// opened indexes keyed by canonical root, a length-prefixed JSON wire
// protocol over a unix socket (loopback TCP on Windows), and the
// starting/serving/draining/stopped lifecycle of §4.9.
package daemon

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxi-dev/fxi/internal/fxierr"
)

// Message types, one per §6.3 request/response name.
const (
	TypeSearch        = "Search"
	TypeContentSearch = "ContentSearch"
	TypeStatus        = "Status"
	TypeReload        = "Reload"
	TypeShutdown      = "Shutdown"
	TypePing          = "Ping"

	TypeReloaded     = "Reloaded"
	TypePong         = "Pong"
	TypeShuttingDown = "ShuttingDown"
	TypeError        = "Error"
)

// Envelope is the generic shape every frame decodes into first: "type"
// selects which concrete request/response struct the remaining fields
// belong to (§6.3: "remaining fields of the payload are at the same
// level as type").
type Envelope struct {
	Type string `json:"type"`
}

type SearchRequest struct {
	Type     string `json:"type"`
	Query    string `json:"query"`
	RootPath string `json:"root_path"`
	Limit    int    `json:"limit"`
}

type ContentSearchOptions struct {
	ContextBefore   int  `json:"context_before"`
	ContextAfter    int  `json:"context_after"`
	CaseInsensitive bool `json:"case_insensitive"`
	FilesOnly       bool `json:"files_only"`
}

type ContentSearchRequest struct {
	Type     string               `json:"type"`
	Pattern  string               `json:"pattern"`
	RootPath string               `json:"root_path"`
	Limit    int                  `json:"limit"`
	Options  ContentSearchOptions `json:"options"`
}

type StatusRequest struct {
	Type string `json:"type"`
}

type ReloadRequest struct {
	Type     string `json:"type"`
	RootPath string `json:"root_path"`
}

type ShutdownRequest struct {
	Type string `json:"type"`
}

type PingRequest struct {
	Type string `json:"type"`
}

type SearchMatch struct {
	DocID      uint32  `json:"doc_id"`
	Path       string  `json:"path"`
	LineNumber int     `json:"line_number"`
	Score      float64 `json:"score"`
}

type SearchResponse struct {
	Type       string        `json:"type"`
	Matches    []SearchMatch `json:"matches"`
	DurationMs int64         `json:"duration_ms"`
	Cached     bool          `json:"cached"`
}

type ContextLine struct {
	LineNumber int    `json:"line_no"`
	Text       string `json:"text"`
}

type ContentMatch struct {
	Path          string        `json:"path"`
	LineNumber    int           `json:"line_number"`
	LineContent   string        `json:"line_content"`
	MatchStart    int           `json:"match_start"`
	MatchEnd      int           `json:"match_end"`
	ContextBefore []ContextLine `json:"context_before"`
	ContextAfter  []ContextLine `json:"context_after"`
}

type ContentSearchResponse struct {
	Type            string         `json:"type"`
	Matches         []ContentMatch `json:"matches"`
	DurationMs      int64          `json:"duration_ms"`
	FilesWithMatches int           `json:"files_with_matches"`
}

type StatusResponse struct {
	Type           string   `json:"type"`
	UptimeSecs     float64  `json:"uptime_secs"`
	IndexesLoaded  int      `json:"indexes_loaded"`
	TotalDocs      int      `json:"total_docs"`
	QueriesServed  uint64   `json:"queries_served"`
	CacheHitRate   float64  `json:"cache_hit_rate"`
	MemoryBytes    uint64   `json:"memory_bytes"`
	LoadedRoots    []string `json:"loaded_roots"`
}

type ReloadedResponse struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type PongResponse struct {
	Type string `json:"type"`
}

type ShuttingDownResponse struct {
	Type string `json:"type"`
}

type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// maxFrameBytes bounds a single frame's declared length: payloads
// exceeding 100 MiB close the connection (§4.9, §8).
const maxFrameBytes = 100 << 20

// WriteFrame writes v as the wire protocol's 4-byte little-endian length
// prefix followed by its UTF-8 JSON encoding (§6.3).
func WriteFrame(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fxierr.Protocol("encode")
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fxierr.IO("frame length", err)
	}
	if _, err := w.Write(data); err != nil {
		return fxierr.IO("frame body", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed JSON frame and returns its raw
// bytes, leaving type-specific decoding to the caller (who has already
// peeked the "type" field via Envelope).
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err // io.EOF on clean close is not wrapped, callers check it directly
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > maxFrameBytes {
		return nil, fxierr.Protocol(fmt.Sprintf("frame too large: %d bytes", n))
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fxierr.IO("frame body", err)
	}
	return buf, nil
}
