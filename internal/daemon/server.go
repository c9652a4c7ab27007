// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daemon

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/fxi-dev/fxi/internal/config"
	"github.com/fxi-dev/fxi/internal/exec"
	"github.com/fxi-dev/fxi/internal/fxierr"
)

// State is the daemon's lifecycle stage (§4.9).
type State int32

const (
	StateStarting State = iota
	StateServing
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateServing:
		return "serving"
	case StateDraining:
		return "draining"
	default:
		return "stopped"
	}
}

// Server is the long-running query daemon: an index registry, a unix
// (on Windows, loopback TCP) listener, and a request-dispatch loop, generalizing
// standardbeagle-lci/internal/server/server.go's IndexServer lifecycle
// (socket creation, Chmod 0600, shutdownChan, WaitGroup-tracked
// connections) from that server's HTTP/RPC transport to this module's
// length-prefixed JSON framing (§6.3).
type Server struct {
	cfg        config.Config
	log        *zap.Logger
	socketPath string
	listener   net.Listener

	registry *IndexRegistry

	state     atomic.Int32
	startTime time.Time
	wg        sync.WaitGroup
	shutdown  chan struct{}
	closeOnce sync.Once

	queriesServed atomic.Uint64
	cacheHits     atomic.Uint64
	cacheLookups  atomic.Uint64
}

// New builds a Server bound to socketPath (pass "" to use SocketPath()).
func New(cfg config.Config, socketPath string, log *zap.Logger) *Server {
	if socketPath == "" {
		socketPath = SocketPath()
	}
	return &Server{
		cfg:        cfg,
		log:        log,
		socketPath: socketPath,
		registry:   NewIndexRegistry(cfg),
		shutdown:   make(chan struct{}),
	}
}

func (s *Server) State() State { return State(s.state.Load()) }

// Start opens the listener and begins accepting connections in the
// background; it returns once the socket is ready.
func (s *Server) Start() error {
	s.state.Store(int32(StateStarting))

	os.Remove(s.socketPath)
	if err := ensureSocketDir(s.socketPath); err != nil {
		return err
	}

	l, err := listen(s.socketPath)
	if err != nil {
		return err
	}
	s.listener = l
	os.Chmod(s.socketPath, 0o600)
	s.startTime = time.Now()
	s.state.Store(int32(StateServing))

	s.wg.Add(1)
	go s.acceptLoop()

	s.wg.Add(1)
	go s.idleEvictionLoop()

	s.log.Info("daemon started", zap.String("socket", s.socketPath))
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				s.log.Warn("accept failed", zap.Error(err))
				return
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) idleEvictionLoop() {
	defer s.wg.Done()
	timeout := s.cfg.IdleTimeout()
	if timeout <= 0 {
		return
	}
	ticker := time.NewTicker(timeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			s.registry.EvictIdle(timeout)
		}
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	idle := s.cfg.IdleTimeout()
	for {
		if s.State() == StateDraining || s.State() == StateStopped {
			return
		}
		if idle > 0 {
			conn.SetReadDeadline(time.Now().Add(idle))
		}
		raw, err := ReadFrame(conn)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				s.log.Debug("connection idle timeout", zap.Error(fxierr.Timeout))
			}
			return // client closed, framing error, or idle timeout: drop the connection
		}
		resp := s.dispatch(conn, raw)
		if resp == nil {
			continue // Shutdown handler already wrote its own response
		}
		if err := WriteFrame(conn, resp); err != nil {
			s.log.Warn("write frame failed", zap.Error(err))
			return
		}
	}
}

// dispatch decodes one frame by its "type" tag and runs the matching
// handler, returning the response to write back (or nil if the handler
// already wrote one itself, as Shutdown does before closing the
// listener).
func (s *Server) dispatch(conn net.Conn, raw []byte) interface{} {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ErrorResponse{Type: TypeError, Message: "malformed request"}
	}

	ctx := context.Background()
	switch env.Type {
	case TypePing:
		return PongResponse{Type: TypePong}

	case TypeStatus:
		return s.handleStatus()

	case TypeSearch:
		var req SearchRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return ErrorResponse{Type: TypeError, Message: err.Error()}
		}
		return s.handleSearch(ctx, req)

	case TypeContentSearch:
		var req ContentSearchRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return ErrorResponse{Type: TypeError, Message: err.Error()}
		}
		return s.handleContentSearch(ctx, req)

	case TypeReload:
		var req ReloadRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return ErrorResponse{Type: TypeError, Message: err.Error()}
		}
		return s.handleReload(ctx, req)

	case TypeShutdown:
		resp := ShuttingDownResponse{Type: TypeShuttingDown}
		WriteFrame(conn, resp)
		go s.Shutdown()
		return nil

	default:
		return ErrorResponse{Type: TypeError, Message: "unknown request type: " + env.Type}
	}
}

func (s *Server) handleStatus() StatusResponse {
	var hitRate float64
	if lookups := s.cacheLookups.Load(); lookups > 0 {
		hitRate = float64(s.cacheHits.Load()) / float64(lookups)
	}
	return StatusResponse{
		Type:          TypeStatus,
		UptimeSecs:    time.Since(s.startTime).Seconds(),
		IndexesLoaded: len(s.registry.Roots()),
		TotalDocs:     s.registry.TotalDocs(),
		QueriesServed: s.queriesServed.Load(),
		CacheHitRate:  hitRate,
		LoadedRoots:   s.registry.Roots(),
	}
}

func (s *Server) handleSearch(ctx context.Context, req SearchRequest) interface{} {
	start := time.Now()
	ci, err := s.registry.Get(ctx, req.RootPath)
	if err != nil {
		return ErrorResponse{Type: TypeError, Message: err.Error()}
	}
	s.queriesServed.Add(1)
	s.cacheLookups.Add(1)

	if cached, ok := ci.queries.get(req.Query); ok {
		s.cacheHits.Add(1)
		return SearchResponse{Type: TypeSearch, Matches: toSearchMatches(cached), DurationMs: time.Since(start).Milliseconds(), Cached: true}
	}

	matches, err := ci.Executor.Query(ctx, req.Query, exec.OptionsFromConfig(s.cfg, req.Limit))
	if err != nil {
		return ErrorResponse{Type: TypeError, Message: err.Error()}
	}
	ci.queries.put(req.Query, matches)
	return SearchResponse{Type: TypeSearch, Matches: toSearchMatches(matches), DurationMs: time.Since(start).Milliseconds(), Cached: false}
}

func (s *Server) handleContentSearch(ctx context.Context, req ContentSearchRequest) interface{} {
	start := time.Now()
	ci, err := s.registry.Get(ctx, req.RootPath)
	if err != nil {
		return ErrorResponse{Type: TypeError, Message: err.Error()}
	}
	s.queriesServed.Add(1)

	opts := exec.OptionsFromConfig(s.cfg, req.Limit)
	opts.ContextBefore = req.Options.ContextBefore
	opts.ContextAfter = req.Options.ContextAfter
	opts.FilesOnly = req.Options.FilesOnly

	pattern := req.Pattern
	if req.Options.CaseInsensitive {
		pattern = "(?i)" + pattern
	}
	matches, err := ci.Executor.Query(ctx, "/"+escapeRegexSlashes(pattern)+"/", opts)
	if err != nil {
		return ErrorResponse{Type: TypeError, Message: err.Error()}
	}

	filesSeen := make(map[string]struct{}, len(matches))
	out := make([]ContentMatch, 0, len(matches))
	for _, m := range matches {
		filesSeen[m.Path] = struct{}{}
		out = append(out, toContentMatch(m, req.Options.ContextBefore))
	}
	return ContentSearchResponse{
		Type:             TypeContentSearch,
		Matches:          out,
		DurationMs:       time.Since(start).Milliseconds(),
		FilesWithMatches: len(filesSeen),
	}
}

func (s *Server) handleReload(ctx context.Context, req ReloadRequest) interface{} {
	if err := s.registry.Reload(ctx, req.RootPath); err != nil {
		return ReloadedResponse{Type: TypeReloaded, Success: false, Message: err.Error()}
	}
	return ReloadedResponse{Type: TypeReloaded, Success: true, Message: "reloaded"}
}

// toContentMatch splits an exec.Match's flat Context slice (before lines,
// the matched line, after lines, in that order — see
// internal/exec/verify.go's contextLines) back into the wire protocol's
// separate before/matched/after fields, using the number of before-lines
// the caller asked for to locate the matched line's index.
func toContentMatch(m exec.Match, requestedBefore int) ContentMatch {
	cm := ContentMatch{
		Path:       m.Path,
		LineNumber: m.Line,
		MatchStart: m.Col,
		MatchEnd:   m.Col + m.MatchLen,
	}
	if len(m.Context) == 0 {
		return cm
	}
	idx := requestedBefore
	if idx > m.Line-1 {
		idx = m.Line - 1 // fewer before-lines exist near the top of the file
	}
	if idx >= len(m.Context) {
		idx = len(m.Context) - 1
	}
	if idx < 0 {
		idx = 0
	}
	cm.LineContent = m.Context[idx]
	startLine := m.Line - idx
	for i, text := range m.Context {
		switch {
		case i < idx:
			cm.ContextBefore = append(cm.ContextBefore, ContextLine{LineNumber: startLine + i, Text: text})
		case i > idx:
			cm.ContextAfter = append(cm.ContextAfter, ContextLine{LineNumber: startLine + i, Text: text})
		}
	}
	return cm
}

func toSearchMatches(matches []exec.Match) []SearchMatch {
	out := make([]SearchMatch, len(matches))
	for i, m := range matches {
		out[i] = SearchMatch{DocID: m.DocID, Path: m.Path, LineNumber: m.Line, Score: m.Score}
	}
	return out
}

// escapeRegexSlashes escapes '/' so a pattern containing it survives the
// query grammar's "/pattern/" regex syntax round trip.
func escapeRegexSlashes(pattern string) string {
	out := make([]byte, 0, len(pattern))
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '/' && (i == 0 || pattern[i-1] != '\\') {
			out = append(out, '\\', '/')
			continue
		}
		out = append(out, pattern[i])
	}
	return string(out)
}

// Shutdown transitions the server through Draining to Stopped: it closes
// the listener, gives in-flight connections up to cfg.DrainTimeout to
// finish, then closes every cached index (§4.9).
func (s *Server) Shutdown() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateDraining))
		close(s.shutdown)
		if s.listener != nil {
			s.listener.Close()
		}

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(s.cfg.DrainTimeout()):
			s.log.Warn("drain timeout exceeded, forcing shutdown")
		}

		s.registry.CloseAll()
		os.Remove(s.socketPath)
		s.state.Store(int32(StateStopped))
		s.log.Info("daemon stopped")
	})
}

// Wait blocks until the server has fully stopped.
func (s *Server) Wait() {
	for s.State() != StateStopped {
		time.Sleep(10 * time.Millisecond)
	}
}
