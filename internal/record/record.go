// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package record defines the fixed-layout structs a flush writes into its
// buffer-ring slots. Every executor reads draws back from these layouts, so
// field order and padding match the WGSL structs in internal/gpu/shaders.
//
// All records are multiples of 16 bytes and contain only 4-byte fields.
package record

// TessVertex is one point of a tessellated run. A run is a contiguous
// polyline whose triangles fan from an apex: the contour midpoint for
// midpoint-fan runs, or the run's first vertex for outer-curve runs.
// Span is the absolute index of the run's first vertex; a vertex starts a
// new run when Span equals its own index. Stroke runs are plain triangle
// lists and ignore Span.
type TessVertex struct {
	X, Y    float32
	Contour uint32
	Span    uint32
}

// TriangleVertex is one corner of an interior triangulation triangle.
// Winding comes from the triangle's orientation in device space.
type TriangleVertex struct {
	X, Y float32
	Path uint32
	Pad  uint32
}

// Contour flags.
const (
	ContourClosed uint32 = 1 << iota
	ContourOuterCurves
	ContourStroke
)

// ContourRecord describes one contour of a path draw.
type ContourRecord struct {
	MidX, MidY float32
	Path       uint32
	Flags      uint32
}

// PathRecord describes one path or image draw. Paint indexes the paint
// record written alongside it.
type PathRecord struct {
	Matrix         [6]float32
	StrokeRadius   float32
	FeatherRadius  float32
	Bounds         [4]int32
	FillRule       uint32
	Contents       uint32
	ClipID         uint32
	ClipUpdateID   uint32
	BlendMode      uint32
	Paint          uint32
	CoverageOffset uint32
	Pad            uint32
}

// Paint kinds.
const (
	PaintSolid uint32 = iota
	PaintLinear
	PaintRadial
	PaintImage
	PaintClip
)

// PaintRecord describes how a draw is colored. Color is premultiplied.
// Gradient holds (x0, y0, x1, y1) for linear gradients and (cx, cy, r, 0)
// for radial ones, in paint space. Inverse maps device pixels to paint space.
type PaintRecord struct {
	Color      [4]float32
	Gradient   [4]float32
	Inverse    [6]float32
	Kind       uint32
	SpanOffset uint32
	SpanCount  uint32
	Texture    uint32
	Opacity    float32
	Pad        uint32
}

// GradientSpan is one color ramp segment between stop offsets T0 and T1.
// Colors are premultiplied.
type GradientSpan struct {
	T0, T1 float32
	Pad    [2]float32
	Color0 [4]float32
	Color1 [4]float32
}

// FlushUniforms holds the per-flush constants.
type FlushUniforms struct {
	Width, Height float32
	Flags         uint32
	Pad           uint32
}

// Flush uniform flags.
const (
	FlushWireframe uint32 = 1 << iota
)
