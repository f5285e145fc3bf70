// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import (
	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/record"
	"github.com/gogpu/pls/internal/tess"
)

// PaintKind selects how a path is colored.
type PaintKind uint8

// Paint kinds.
const (
	PaintSolid PaintKind = iota
	PaintLinear
	PaintRadial
)

// Stop is one gradient stop. Color is straight-alpha RGBA in [0, 1].
type Stop struct {
	Offset float32
	Color  [4]float32
}

// Paint describes the color and outline style of a path draw.
type Paint struct {
	Kind PaintKind
	// Color is the straight-alpha RGBA color of solid paints.
	Color [4]float32
	// Stops are sorted by offset.
	Stops []Stop
	// Start and End define a linear gradient. Start is also the center of
	// a radial gradient.
	Start, End geom.Point
	Radius     float64

	// Stroke is nil for fills.
	Stroke   *tess.StrokeStyle
	FillRule FillRule
	// Feather softens the edge over this many path units.
	Feather float64
}

// gradient reports whether the paint evaluates gradient spans.
func (p *Paint) gradient() bool {
	return (p.Kind == PaintLinear || p.Kind == PaintRadial) && len(p.Stops) >= 2
}

// spanCount is the number of gradient spans the paint consumes.
func (p *Paint) spanCount() int {
	if !p.gradient() {
		return 0
	}
	return len(p.Stops) - 1
}

// opaque reports whether every color the paint can produce has alpha one.
func (p *Paint) opaque() bool {
	if p.Feather > 0 {
		return false
	}
	if !p.gradient() {
		if p.Kind != PaintSolid && len(p.Stops) == 1 {
			return p.Stops[0].Color[3] >= 1
		}
		return p.Kind == PaintSolid && p.Color[3] >= 1
	}
	for _, s := range p.Stops {
		if s.Color[3] < 1 {
			return false
		}
	}
	return true
}

// record fills the paint record. Gradient geometry stays in path space and
// inverse maps device pixels back to it.
func (p *Paint) record(dst *record.PaintRecord, inverse geom.Affine, spanBase uint32) {
	*dst = record.PaintRecord{Kind: record.PaintSolid, Color: premultiply(p.Color), Opacity: 1, Inverse: inverse.Float32()}
	switch {
	case p.gradient():
		dst.SpanOffset = spanBase
		dst.SpanCount = uint32(p.spanCount())
		if p.Kind == PaintLinear {
			dst.Kind = record.PaintLinear
			dst.Gradient = [4]float32{float32(p.Start.X), float32(p.Start.Y), float32(p.End.X), float32(p.End.Y)}
		} else {
			dst.Kind = record.PaintRadial
			dst.Gradient = [4]float32{float32(p.Start.X), float32(p.Start.Y), float32(p.Radius), 0}
		}
	case p.Kind != PaintSolid && len(p.Stops) == 1:
		dst.Color = premultiply(p.Stops[0].Color)
	case p.Kind != PaintSolid:
		dst.Color = [4]float32{}
	}
}

// spans writes the gradient spans and returns how many were written.
func (p *Paint) spans(dst []record.GradientSpan) int {
	n := p.spanCount()
	for i := 0; i < n; i++ {
		a, b := p.Stops[i], p.Stops[i+1]
		dst[i] = record.GradientSpan{T0: a.Offset, T1: b.Offset, Color0: premultiply(a.Color), Color1: premultiply(b.Color)}
	}
	return n
}

func premultiply(c [4]float32) [4]float32 {
	a := min(max(c[3], 0), 1)
	return [4]float32{c[0] * a, c[1] * a, c[2] * a, a}
}
