// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/fxi-dev/fxi/internal/plan"
	"github.com/fxi-dev/fxi/internal/segment"
)

// matchFilter evaluates one phase-1 metadata filter (§4.8 step 4) against
// a candidate document's record and path. Filters never touch file
// content, so they run before any file is read.
func matchFilter(f plan.FieldFilter, d segment.Document, path string) bool {
	ok := evalFilter(f, d, path)
	if f.Negate {
		return !ok
	}
	return ok
}

func evalFilter(f plan.FieldFilter, d segment.Document, path string) bool {
	switch f.Field {
	case "ext":
		want := strings.TrimPrefix(f.Value, ".")
		got := strings.TrimPrefix(filepath.Ext(path), ".")
		return strings.EqualFold(want, got)

	case "lang":
		name := segment.LanguageName(d.Language)
		return strings.EqualFold(name, f.Value)

	case "path":
		ok, _ := doublestar.Match(f.Value, path)
		return ok || strings.Contains(path, f.Value)

	case "file":
		ok, _ := filepath.Match(f.Value, filepath.Base(path))
		return ok

	case "size":
		return matchNumericComparison(f.Value, int64(d.Size))

	case "mtime":
		return matchMTimeComparison(f.Value, d.MTimeSecs)

	case "line":
		// Line filters pass every document; the executor does not restrict
		// verified or reported lines to the given range either.
		return true

	default:
		return true
	}
}

// matchNumericComparison parses values like ">1024", "<=200", "512" and
// compares against v.
func matchNumericComparison(expr string, v int64) bool {
	op, num := splitComparison(expr)
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return false
	}
	return applyComparison(op, v, n)
}

// matchMTimeComparison implements §6.2's "mtime accepts >unix, <unix,
// YYYY-MM-DD": the comparison value is either a unix timestamp or a
// calendar date, never a relative duration.
func matchMTimeComparison(expr string, secs uint64) bool {
	op, rest := splitComparison(expr)
	cutoff, err := parseMTimeValue(rest)
	if err != nil {
		return false
	}
	return applyComparison(op, int64(secs), cutoff)
}

func parseMTimeValue(s string) (int64, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Unix(), nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func splitComparison(expr string) (op, rest string) {
	switch {
	case strings.HasPrefix(expr, ">="):
		return ">=", expr[2:]
	case strings.HasPrefix(expr, "<="):
		return "<=", expr[2:]
	case strings.HasPrefix(expr, ">"):
		return ">", expr[1:]
	case strings.HasPrefix(expr, "<"):
		return "<", expr[1:]
	default:
		return "=", expr
	}
}

func applyComparison(op string, v, n int64) bool {
	switch op {
	case ">":
		return v > n
	case ">=":
		return v >= n
	case "<":
		return v < n
	case "<=":
		return v <= n
	default:
		return v == n
	}
}
