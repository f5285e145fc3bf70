// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pls

import (
	"testing"

	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/ring"
	"github.com/gogpu/pls/software"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.threshold != draw.DefaultTriangulationThreshold || o.depth != ring.DefaultDepth || o.tolerance != geom.DefaultTolerance {
		t.Errorf("defaultOptions() = %+v", o)
	}
	if o.exec != nil || o.caps != nil || o.override != nil {
		t.Error("defaults should not pin an executor, capabilities or mode")
	}
}

func TestOptions(t *testing.T) {
	exec := software.New()
	o := defaultOptions()
	for _, opt := range []Option{
		WithExecutor(exec),
		WithTriangulationThreshold(50),
		WithRingDepth(9),
		WithTolerance(0.5),
		WithFlushCapacity(Counters{Draws: 3}),
		WithInterlockOverride(MSAA),
	} {
		opt(&o)
	}
	if o.exec != exec || o.threshold != 50 || o.depth != 3 || o.tolerance != 0.5 || o.capacity.Draws != 3 || *o.override != MSAA {
		t.Errorf("options = %+v", o)
	}

	WithRingDepth(0)(&o)
	WithTriangulationThreshold(-1)(&o)
	WithTolerance(0)(&o)
	if o.depth != 2 || o.threshold != 50 || o.tolerance != 0.5 {
		t.Errorf("out-of-range values = %+v, want clamped or ignored", o)
	}
}

func TestWithExecutorIsNotDestroyed(t *testing.T) {
	exec := software.New()
	ctx, err := NewContext(WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Executor() != Executor(exec) {
		t.Error("Executor() should return the injected executor")
	}
	ctx.Close()
	tex, err := exec.MakeImageTexture(1, 1, [][]byte{{1, 2, 3, 4}})
	if err != nil || tex == nil {
		t.Errorf("injected executor unusable after Close: %v", err)
	}
}
