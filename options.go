// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pls

import (
	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/ring"
)

// Option configures a Context during creation.
//
// Example:
//
//	// Software rendering with the defaults.
//	ctx, err := pls.NewContext()
//
//	// GPU rendering, forced onto MSAA.
//	ctx, err := pls.NewContext(pls.WithExecutor(exec), pls.WithInterlockOverride(pls.MSAA))
type Option func(*options)

type options struct {
	exec      Executor
	caps      *caps.Capabilities
	override  *caps.InterlockMode
	threshold int
	depth     int
	capacity  draw.Counters
	tolerance float64
}

func defaultOptions() options {
	return options{
		threshold: draw.DefaultTriangulationThreshold,
		depth:     ring.DefaultDepth,
		tolerance: geom.DefaultTolerance,
	}
}

// WithExecutor renders with exec instead of a new software executor. The
// Context does not destroy executors passed in.
func WithExecutor(exec Executor) Option {
	return func(o *options) {
		o.exec = exec
	}
}

// WithCapabilities restricts the executor's capabilities before
// negotiation. A feature is used only when both report it.
func WithCapabilities(c Capabilities) Option {
	return func(o *options) {
		o.caps = &c
	}
}

// WithInterlockOverride starts negotiation at mode. The context may still
// land on a later mode when the executor lacks support.
func WithInterlockOverride(mode InterlockMode) Option {
	return func(o *options) {
		o.override = &mode
	}
}

// WithTriangulationThreshold sets the segment count at which fills switch
// from midpoint fans to interior triangulation.
func WithTriangulationThreshold(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.threshold = n
		}
	}
}

// WithRingDepth sets how many flushes may be in flight at once. It is
// clamped to 2 or 3.
func WithRingDepth(n int) Option {
	return func(o *options) {
		o.depth = min(max(n, 2), 3)
	}
}

// WithFlushCapacity sets the initial per-flush capacity. Zero fields keep
// their defaults. Draws that exceed it grow the rings.
func WithFlushCapacity(c Counters) Option {
	return func(o *options) {
		o.capacity = c
	}
}

// WithTolerance sets the flattening tolerance in pixels.
func WithTolerance(px float64) Option {
	return func(o *options) {
		if px > 0 {
			o.tolerance = px
		}
	}
}
