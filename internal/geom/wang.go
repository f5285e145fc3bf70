// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import "math"

const (
	// DefaultTolerance is the flattening tolerance in device pixels.
	DefaultTolerance = 0.25

	// MaxParametricSegments caps the segments emitted for one curve.
	MaxParametricSegments = 1023

	// MaxPolarSegments caps the segments emitted for a half-turn of a round
	// join or cap.
	MaxPolarSegments = 64

	// wangCubicTerm is d*(d-1)/8 for d = 3.
	wangCubicTerm = 0.75
)

// WangSegments returns the number of linear segments needed to flatten a
// device-space segment so that the polyline stays within tol pixels of the
// curve. Lines always need exactly one.
func WangSegments(s Segment, tol float64) int {
	if s.Kind == SegmentLine {
		return 1
	}
	if tol <= 0 {
		tol = DefaultTolerance
	}
	p := s.Points()
	v1 := p[1].Mul(-2).Add(p[0]).Add(p[2])
	v2 := p[2].Mul(-2).Add(p[1]).Add(p[3])
	m := math.Max(v1.Hypot(), v2.Hypot())
	n := math.Ceil(math.Sqrt(wangCubicTerm * m / tol))
	switch {
	case math.IsNaN(n) || n < 1:
		return 1
	case n > MaxParametricSegments:
		return MaxParametricSegments
	}
	return int(n)
}

// PolarSegments returns how many segments approximate an arc of the given
// angle on a circle of device-space radius r within tol pixels.
func PolarSegments(r, angle, tol float64) int {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if r <= tol || angle <= 0 {
		return 1
	}
	step := 2 * math.Acos(1-tol/r)
	if step <= 0 || math.IsNaN(step) {
		return MaxPolarSegments
	}
	n := int(math.Ceil(angle / step))
	return min(max(n, 1), MaxPolarSegments)
}
