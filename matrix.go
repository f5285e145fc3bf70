// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pls

import (
	"math"

	"github.com/gogpu/pls/internal/geom"
)

// Matrix is a 2D affine transform in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// It maps (x, y) to (a*x + b*y + c, d*x + e*y + f).
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// Translate returns a translation.
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, C: x, E: 1, F: y}
}

// Scale returns a scale about the origin.
func Scale(x, y float64) Matrix {
	return Matrix{A: x, E: y}
}

// Rotate returns a rotation by angle radians.
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{A: cos, B: -sin, D: sin, E: cos}
}

// Multiply returns m * other, which applies other first.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint applies the transform to (x, y).
func (m Matrix) TransformPoint(x, y float64) (float64, float64) {
	return m.A*x + m.B*y + m.C, m.D*x + m.E*y + m.F
}

// IsIdentity reports whether m is the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// The zero Matrix is treated as the identity so callers can leave it unset.
func (m Matrix) affine() geom.Affine {
	if m == (Matrix{}) {
		return geom.Identity()
	}
	return geom.Affine{N0: m.A, N1: m.D, N2: m.B, N3: m.E, N4: m.C, N5: m.F}
}
