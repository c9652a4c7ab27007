// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package client implements a stub for the daemon's length-prefixed JSON
// protocol (§6.3), generalizing
// standardbeagle-lci/internal/server/client.go's Client (socket-path
// configuration, Ping/GetStatus convenience methods) from that server's
// HTTP-over-unix-socket transport to this module's raw framed protocol.
package client

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/fxi-dev/fxi/internal/daemon"
)

// Client is a connection to the daemon that reconnects automatically
// whenever a request fails against the current connection.
type Client struct {
	mu         sync.Mutex
	socketPath string
	conn       net.Conn
	dialTimeout time.Duration
}

// New returns a Client bound to socketPath (pass "" for the default
// resolved location).
func New(socketPath string) *Client {
	if socketPath == "" {
		socketPath = daemon.SocketPath()
	}
	return &Client{socketPath: socketPath, dialTimeout: 5 * time.Second}
}

func (c *Client) ensureConn() (net.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}
	conn, err := net.DialTimeout("unix", c.socketPath, c.dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon at %s: %w", c.socketPath, err)
	}
	c.conn = conn
	return conn, nil
}

func (c *Client) dropConn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// call sends req and decodes one response frame into resp, retrying once
// against a fresh connection if the first attempt fails for any reason
// (closed socket, daemon restart, and so on; an Error response from the
// daemon also counts as a failure and is retried).
func (c *Client) call(req interface{}, resp interface{}) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		conn, err := c.ensureConn()
		if err != nil {
			lastErr = err
			continue
		}
		if err := c.roundTrip(conn, req, resp); err != nil {
			lastErr = err
			c.dropConn()
			continue
		}
		return nil
	}
	return lastErr
}

func (c *Client) roundTrip(conn net.Conn, req, resp interface{}) error {
	if err := daemon.WriteFrame(conn, req); err != nil {
		return err
	}
	raw, err := daemon.ReadFrame(conn)
	if err != nil {
		return err
	}
	var env daemon.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	if env.Type == daemon.TypeError {
		var errResp daemon.ErrorResponse
		if err := json.Unmarshal(raw, &errResp); err != nil {
			return err
		}
		return fmt.Errorf("daemon error: %s", errResp.Message)
	}
	return json.Unmarshal(raw, resp)
}

// Ping checks that the daemon is reachable.
func (c *Client) Ping() error {
	var resp daemon.PongResponse
	return c.call(daemon.PingRequest{Type: daemon.TypePing}, &resp)
}

// Status fetches the daemon's current status.
func (c *Client) Status() (daemon.StatusResponse, error) {
	var resp daemon.StatusResponse
	err := c.call(daemon.StatusRequest{Type: daemon.TypeStatus}, &resp)
	return resp, err
}

// Search runs a structured query against rootPath's index.
func (c *Client) Search(query, rootPath string, limit int) (daemon.SearchResponse, error) {
	var resp daemon.SearchResponse
	req := daemon.SearchRequest{Type: daemon.TypeSearch, Query: query, RootPath: rootPath, Limit: limit}
	err := c.call(req, &resp)
	return resp, err
}

// ContentSearch runs a grep-style pattern search against rootPath's index.
func (c *Client) ContentSearch(pattern, rootPath string, limit int, opts daemon.ContentSearchOptions) (daemon.ContentSearchResponse, error) {
	var resp daemon.ContentSearchResponse
	req := daemon.ContentSearchRequest{Type: daemon.TypeContentSearch, Pattern: pattern, RootPath: rootPath, Limit: limit, Options: opts}
	err := c.call(req, &resp)
	return resp, err
}

// Reload asks the daemon to rebuild its in-memory view of rootPath's
// index after an out-of-band rebuild.
func (c *Client) Reload(rootPath string) (daemon.ReloadedResponse, error) {
	var resp daemon.ReloadedResponse
	err := c.call(daemon.ReloadRequest{Type: daemon.TypeReload, RootPath: rootPath}, &resp)
	return resp, err
}

// Shutdown asks the daemon to drain and stop.
func (c *Client) Shutdown() error {
	var resp daemon.ShuttingDownResponse
	return c.call(daemon.ShutdownRequest{Type: daemon.TypeShutdown}, &resp)
}

// Close releases the underlying connection, if any.
func (c *Client) Close() error {
	c.dropConn()
	return nil
}
