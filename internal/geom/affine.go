// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import (
	"math"

	"honnef.co/go/curve"
)

// Affine is a 2x3 affine transform in curve's coefficient order: a point
// (x, y) maps to (N0*x + N2*y + N4, N1*x + N3*y + N5).
type Affine curve.Affine

// Curve returns the transform as a curve.Affine.
func (a Affine) Curve() curve.Affine { return curve.Affine(a) }

// Identity returns the identity transform.
func Identity() Affine { return Affine(curve.Identity) }

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) Affine { return Affine(curve.Translate(curve.Vec(tx, ty))) }

// Scale returns a scale by (sx, sy).
func Scale(sx, sy float64) Affine { return Affine(curve.Scale(sx, sy)) }

// Rotate returns a rotation by angle radians.
func Rotate(angle float64) Affine { return Affine(curve.Rotate(angle)) }

// Apply transforms p.
func (a Affine) Apply(p Point) Point {
	return Point(curve.Point(p).Transform(a.Curve()))
}

// Mul returns the transform that applies b first and then a.
func (a Affine) Mul(b Affine) Affine {
	return Affine(a.Curve().Mul(b.Curve()))
}

// Determinant returns the determinant of the linear part.
func (a Affine) Determinant() float64 {
	return a.Curve().Determinant()
}

// Invert returns the inverse transform. ok is false for singular matrices.
func (a Affine) Invert() (inv Affine, ok bool) {
	det := a.Determinant()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Affine{}, false
	}
	return Affine(a.Curve().Invert()), true
}

// MaxScale returns an upper bound on how much the transform stretches any
// unit vector. It is the larger singular value of the linear part.
func (a Affine) MaxScale() float64 {
	p := a.N0*a.N0 + a.N1*a.N1
	q := a.N2*a.N2 + a.N3*a.N3
	r := a.N0*a.N2 + a.N1*a.N3
	mid := (p + q) / 2
	d := math.Sqrt(((p-q)/2)*((p-q)/2) + r*r)
	return math.Sqrt(mid + d)
}

// Float32 returns the six coefficients as float32 values in N0..N5 order,
// the layout used by GPU records.
func (a Affine) Float32() [6]float32 {
	var out [6]float32
	for i, v := range a.Curve().Coefficients() {
		out[i] = float32(v)
	}
	return out
}
