// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pls

import (
	"cmp"
	"slices"

	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/tess"
)

// LineCap specifies the shape of open contour ends.
type LineCap uint8

const (
	// LineCapButt ends the stroke flat at the endpoint.
	LineCapButt LineCap = iota
	// LineCapRound adds a half circle.
	LineCapRound
	// LineCapSquare extends the stroke by half its width.
	LineCapSquare
)

// LineJoin specifies the shape of stroke corners.
type LineJoin uint8

const (
	// LineJoinMiter extends the edges until they meet, up to the miter
	// limit.
	LineJoinMiter LineJoin = iota
	// LineJoinRound rounds the corner.
	LineJoinRound
	// LineJoinBevel cuts the corner.
	LineJoinBevel
)

// FillRule decides which winding numbers are inside a path.
type FillRule uint8

const (
	// FillRuleNonZero fills where the winding is not zero.
	FillRuleNonZero FillRule = iota
	// FillRuleEvenOdd fills where the winding is odd.
	FillRuleEvenOdd
	// FillRuleClockwise fills only where the winding is positive.
	FillRuleClockwise
)

// PaintKind selects how a path is colored.
type PaintKind uint8

const (
	PaintSolid PaintKind = iota
	PaintLinearGradient
	PaintRadialGradient
)

// GradientStop is one color of a gradient.
type GradientStop struct {
	Offset float64
	Color  RGBA
}

// Stroke outlines a path instead of filling it.
type Stroke struct {
	Width      float64
	Join       LineJoin
	Cap        LineCap
	MiterLimit float64
}

// Paint describes how a path draw is colored and whether it is filled or
// stroked.
type Paint struct {
	Kind  PaintKind
	Color RGBA
	// Stops of gradient paints. They are sorted by offset when drawn.
	Stops []GradientStop
	// X0, Y0 to X1, Y1 is the axis of a linear gradient. X0, Y0 is also the
	// center of a radial gradient of radius R.
	X0, Y0, X1, Y1, R float64

	FillRule FillRule
	// Stroke is nil for fills.
	Stroke *Stroke
	// Feather softens edges over this many path units.
	Feather float64
}

// SolidPaint returns a nonzero fill of color c.
func SolidPaint(c RGBA) *Paint {
	return &Paint{Kind: PaintSolid, Color: c}
}

// LinearGradient returns a fill shading along x0, y0 to x1, y1.
func LinearGradient(x0, y0, x1, y1 float64, stops ...GradientStop) *Paint {
	return &Paint{Kind: PaintLinearGradient, X0: x0, Y0: y0, X1: x1, Y1: y1, Stops: stops}
}

// RadialGradient returns a fill shading outward from cx, cy to radius r.
func RadialGradient(cx, cy, r float64, stops ...GradientStop) *Paint {
	return &Paint{Kind: PaintRadialGradient, X0: cx, Y0: cy, R: r, Stops: stops}
}

// WithStroke returns a copy of p that strokes with s.
func (p *Paint) WithStroke(s Stroke) *Paint {
	q := *p
	q.Stroke = &s
	return &q
}

// WithFillRule returns a copy of p that fills with rule.
func (p *Paint) WithFillRule(rule FillRule) *Paint {
	q := *p
	q.FillRule = rule
	return &q
}

// defaultMiterLimit matches the SVG default.
const defaultMiterLimit = 4

func (p *Paint) internal() draw.Paint {
	if p == nil {
		return draw.Paint{Kind: draw.PaintSolid, Color: Black.vec4()}
	}
	out := draw.Paint{
		Color:    p.Color.vec4(),
		Start:    geom.Pt(p.X0, p.Y0),
		End:      geom.Pt(p.X1, p.Y1),
		Radius:   p.R,
		FillRule: fillRule(p.FillRule),
		Feather:  max(p.Feather, 0),
	}
	switch p.Kind {
	case PaintLinearGradient:
		out.Kind = draw.PaintLinear
	case PaintRadialGradient:
		out.Kind = draw.PaintRadial
	default:
		out.Kind = draw.PaintSolid
	}
	if len(p.Stops) > 0 {
		stops := slices.Clone(p.Stops)
		slices.SortStableFunc(stops, func(a, b GradientStop) int { return cmp.Compare(a.Offset, b.Offset) })
		out.Stops = make([]draw.Stop, len(stops))
		for i, s := range stops {
			out.Stops[i] = draw.Stop{Offset: float32(min(max(s.Offset, 0), 1)), Color: s.Color.vec4()}
		}
	}
	if s := p.Stroke; s != nil && s.Width > 0 {
		limit := s.MiterLimit
		if limit <= 0 {
			limit = defaultMiterLimit
		}
		out.Stroke = &tess.StrokeStyle{
			Radius:     s.Width / 2,
			Join:       tess.Join(s.Join),
			Cap:        tess.Cap(s.Cap),
			MiterLimit: limit,
		}
	}
	return out
}

func fillRule(r FillRule) draw.FillRule {
	switch r {
	case FillRuleEvenOdd:
		return draw.EvenOdd
	case FillRuleClockwise:
		return draw.Clockwise
	default:
		return draw.NonZero
	}
}
