// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import (
	"math"

	"honnef.co/go/curve"
)

// AABB is an axis-aligned bounding box with float64 edges.
// The zero value is not empty; use EmptyAABB to start accumulating.
type AABB struct {
	curve.Rect
}

// EmptyAABB returns a box that contains nothing. Adding any point yields a
// box containing exactly that point.
func EmptyAABB() AABB {
	return AABB{curve.Rect{
		X0: math.Inf(1), Y0: math.Inf(1),
		X1: math.Inf(-1), Y1: math.Inf(-1),
	}}
}

// BoundsOf returns the box containing pts.
func BoundsOf(pts ...Point) AABB {
	b := EmptyAABB()
	for _, p := range pts {
		b.Add(p)
	}
	return b
}

// Add grows the box to contain p.
func (b *AABB) Add(p Point) {
	b.Rect = b.UnionPoint(curve.Point(p))
}

// Union grows the box to contain o. Empty boxes are ignored.
func (b *AABB) Union(o AABB) {
	switch {
	case o.IsEmpty():
	case b.IsEmpty():
		*b = o
	default:
		b.Rect = b.Rect.Union(o.Rect)
	}
}

// IsEmpty reports whether the box contains no points.
func (b AABB) IsEmpty() bool {
	return !(b.X0 <= b.X1 && b.Y0 <= b.Y1)
}

// Contains reports whether p lies inside the half-open box.
func (b AABB) Contains(p Point) bool {
	return b.Rect.Contains(curve.Point(p))
}

// Outset grows each edge by r.
func (b AABB) Outset(r float64) AABB {
	if b.IsEmpty() {
		return b
	}
	return AABB{b.Inflate(r, r)}
}

// RoundOut returns the smallest integer box covering b.
func (b AABB) RoundOut() IAABB {
	if b.IsEmpty() {
		return IAABB{}
	}
	e := b.Expand()
	return IAABB{L: int32(e.X0), T: int32(e.Y0), R: int32(e.X1), B: int32(e.Y1)}
}

// IAABB is a half-open integer pixel box [L, R) x [T, B).
type IAABB struct {
	L, T, R, B int32
}

// Viewport returns the box [0, w) x [0, h).
func Viewport(w, h int) IAABB {
	return IAABB{R: int32(w), B: int32(h)}
}

// Empty reports whether the box covers no pixels.
func (r IAABB) Empty() bool {
	return r.L >= r.R || r.T >= r.B
}

// Width returns the box width, or zero when empty.
func (r IAABB) Width() int {
	if r.Empty() {
		return 0
	}
	return int(r.R - r.L)
}

// Height returns the box height, or zero when empty.
func (r IAABB) Height() int {
	if r.Empty() {
		return 0
	}
	return int(r.B - r.T)
}

// Area returns the number of pixels in the box.
func (r IAABB) Area() int {
	return r.Width() * r.Height()
}

// Intersect returns the overlap of r and o. The result may be empty.
func (r IAABB) Intersect(o IAABB) IAABB {
	out := IAABB{
		L: max(r.L, o.L),
		T: max(r.T, o.T),
		R: min(r.R, o.R),
		B: min(r.B, o.B),
	}
	if out.Empty() {
		return IAABB{}
	}
	return out
}

// Union returns the smallest box containing r and o. Empty inputs are ignored.
func (r IAABB) Union(o IAABB) IAABB {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return IAABB{
		L: min(r.L, o.L),
		T: min(r.T, o.T),
		R: max(r.R, o.R),
		B: max(r.B, o.B),
	}
}

// Overlaps reports whether r and o share at least one pixel.
func (r IAABB) Overlaps(o IAABB) bool {
	return !r.Intersect(o).Empty()
}

// Outset grows every edge of r by n pixels.
func (r IAABB) Outset(n int32) IAABB {
	if r.Empty() {
		return r
	}
	return IAABB{r.L - n, r.T - n, r.R + n, r.B + n}
}
