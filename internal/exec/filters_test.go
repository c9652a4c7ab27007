// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import (
	"testing"
	"time"

	"github.com/fxi-dev/fxi/internal/plan"
	"github.com/fxi-dev/fxi/internal/query"
	"github.com/fxi-dev/fxi/internal/segment"
)

func TestMatchFilterExt(t *testing.T) {
	d := segment.Document{}
	f := plan.FieldFilter{Field: query.FilterExt, Value: "go"}
	if !matchFilter(f, d, "a/b/main.go") {
		t.Fatalf("ext:go should match main.go")
	}
	if matchFilter(f, d, "a/b/main.rs") {
		t.Fatalf("ext:go should not match main.rs")
	}
}

func TestMatchFilterSizeComparison(t *testing.T) {
	small := segment.Document{Size: 100}
	big := segment.Document{Size: 10000}
	f := plan.FieldFilter{Field: query.FilterSize, Value: ">1000"}
	if matchFilter(f, small, "x") {
		t.Fatalf("size>1000 should not match a 100-byte doc")
	}
	if !matchFilter(f, big, "x") {
		t.Fatalf("size>1000 should match a 10000-byte doc")
	}
}

func TestMatchFilterMTimeDate(t *testing.T) {
	old := segment.Document{MTimeSecs: uint64(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Unix())}
	f := plan.FieldFilter{Field: query.FilterMTime, Value: "<2021-01-01"}
	if !matchFilter(f, old, "x") {
		t.Fatalf("mtime<2021-01-01 should match a 2020 document")
	}
}

func TestMatchFilterNegate(t *testing.T) {
	d := segment.Document{}
	f := plan.FieldFilter{Field: query.FilterExt, Value: "go", Negate: true}
	if matchFilter(f, d, "main.go") {
		t.Fatalf("negated ext:go should exclude main.go")
	}
	if !matchFilter(f, d, "main.rs") {
		t.Fatalf("negated ext:go should include main.rs")
	}
}
