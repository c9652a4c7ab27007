// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fxierr defines the error taxonomy shared by every layer of the
// index: codecs, segments, the planner/executor, and the daemon's wire
// protocol. Callers use errors.As to recover the concrete kind and errors.Is
// against the sentinel Kind values to classify a failure without caring
// which layer produced it.
package fxierr

import "fmt"

// Kind identifies one of the error categories from the design's error
// taxonomy. Kind values are comparable so callers can switch on them.
type Kind int

const (
	KindParse Kind = iota
	KindIndexMissing
	KindIndexCorrupt
	KindDecodeTruncated
	KindDecodeOverflow
	KindIO
	KindBloomIncompatible
	KindProtocol
	KindCancelled
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "ParseError"
	case KindIndexMissing:
		return "IndexMissing"
	case KindIndexCorrupt:
		return "IndexCorrupt"
	case KindDecodeTruncated:
		return "DecodeTruncated"
	case KindDecodeOverflow:
		return "DecodeOverflow"
	case KindIO:
		return "IoError"
	case KindBloomIncompatible:
		return "BloomIncompatible"
	case KindProtocol:
		return "ProtocolError"
	case KindCancelled:
		return "Cancelled"
	case KindTimeout:
		return "Timeout"
	default:
		return "UnknownError"
	}
}

// Error is the concrete error type carried through the system. Component
// is a short label identifying the subsystem or file that raised it
// (used by IndexCorrupt to say *which* invariant failed, per §7).
type Error struct {
	Kind      Kind
	Component string
	Pos       int // byte/column position, meaningful for KindParse
	Err       error
}

func New(kind Kind, component string, err error) *Error {
	return &Error{Kind: kind, Component: component, Err: err}
}

func NewAt(kind Kind, component string, pos int, err error) *Error {
	return &Error{Kind: kind, Component: component, Pos: pos, Err: err}
}

func (e *Error) Error() string {
	if e.Kind == KindParse {
		return fmt.Sprintf("%s: %s at position %d: %v", e.Kind, e.Component, e.Pos, e.Err)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Component)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Component, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, letting
// callers write errors.Is(err, fxierr.Timeout) style sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Component == ""
}

// Sentinels for errors.Is comparisons that don't care about Component.
var (
	Timeout           = &Error{Kind: KindTimeout}
	Cancelled         = &Error{Kind: KindCancelled}
	BloomIncompatible = &Error{Kind: KindBloomIncompatible}
)

func Truncated(component string) *Error {
	return New(KindDecodeTruncated, component, nil)
}

func Overflow(component string) *Error {
	return New(KindDecodeOverflow, component, nil)
}

func Corrupt(component string, err error) *Error {
	return New(KindIndexCorrupt, component, err)
}

func Missing(root string) *Error {
	return New(KindIndexMissing, root, nil)
}

func IO(path string, err error) *Error {
	return New(KindIO, path, err)
}

func Protocol(kind string) *Error {
	return New(KindProtocol, kind, nil)
}

func Parse(pos int, reason string) *Error {
	return NewAt(KindParse, "query", pos, fmt.Errorf("%s", reason))
}
