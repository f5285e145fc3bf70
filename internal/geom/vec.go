// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import "honnef.co/go/curve"

// Point is a position or direction.
type Point = curve.Vec2

// Pt returns the point (x, y).
func Pt(x, y float64) Point { return curve.Vec(x, y) }

// Cross returns the z component of the 3D cross product of a and b.
func Cross(a, b Point) float64 { return a.X*b.Y - a.Y*b.X }

// Dot returns the dot product of a and b.
func Dot(a, b Point) float64 { return a.X*b.X + a.Y*b.Y }

// Perp returns p rotated by 90 degrees.
func Perp(p Point) Point { return Pt(-p.Y, p.X) }

// Normalize returns p scaled to unit length. The zero vector stays zero.
func Normalize(p Point) Point {
	l := p.Hypot()
	if l == 0 {
		return Point{}
	}
	return p.Mul(1 / l)
}

// Near reports whether a and b are within eps of each other on both axes.
func Near(a, b Point, eps float64) bool {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx <= eps && dx >= -eps && dy <= eps && dy >= -eps
}
