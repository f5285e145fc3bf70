// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pls

import (
	"math"

	"github.com/gogpu/pls/internal/geom"
)

// Path is a vector path made of contours of lines, quadratic and cubic
// curves. Paths are immutable once handed to a draw for the rest of the
// frame.
type Path struct {
	g geom.Path
}

// NewPath returns an empty path.
func NewPath() *Path {
	return &Path{}
}

// MoveTo starts a new contour.
func (p *Path) MoveTo(x, y float64) {
	p.g.MoveTo(geom.Pt(x, y))
}

// LineTo adds a line.
func (p *Path) LineTo(x, y float64) {
	p.g.LineTo(geom.Pt(x, y))
}

// QuadraticTo adds a quadratic curve.
func (p *Path) QuadraticTo(cx, cy, x, y float64) {
	p.g.QuadTo(geom.Pt(cx, cy), geom.Pt(x, y))
}

// CubicTo adds a cubic curve.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.g.CubicTo(geom.Pt(c1x, c1y), geom.Pt(c2x, c2y), geom.Pt(x, y))
}

// Close closes the current contour.
func (p *Path) Close() {
	p.g.Close()
}

// Clear removes every contour.
func (p *Path) Clear() {
	p.g.Reset()
}

// SegmentCount returns the number of lines and curves. Fills with at least
// the triangulation threshold of segments are triangulated.
func (p *Path) SegmentCount() int {
	return p.g.SegmentCount()
}

// Empty reports whether the path has no segments.
func (p *Path) Empty() bool {
	return len(p.g.Verbs()) == 0
}

// Rectangle adds a closed rectangle.
func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498307936

// Circle adds a closed circle.
func (p *Path) Circle(cx, cy, r float64) {
	p.Ellipse(cx, cy, r, r)
}

// Ellipse adds a closed axis-aligned ellipse.
func (p *Path) Ellipse(cx, cy, rx, ry float64) {
	ox, oy := rx*kappa, ry*kappa
	p.MoveTo(cx+rx, cy)
	p.CubicTo(cx+rx, cy+oy, cx+ox, cy+ry, cx, cy+ry)
	p.CubicTo(cx-ox, cy+ry, cx-rx, cy+oy, cx-rx, cy)
	p.CubicTo(cx-rx, cy-oy, cx-ox, cy-ry, cx, cy-ry)
	p.CubicTo(cx+ox, cy-ry, cx+rx, cy-oy, cx+rx, cy)
	p.Close()
}

// Arc adds a circular arc from angle1 to angle2 radians around (cx, cy),
// split into cubics of at most a quarter turn. An empty path starts a
// contour at the arc's first point; otherwise a line joins it.
func (p *Path) Arc(cx, cy, r, angle1, angle2 float64) {
	for angle2 < angle1 {
		angle2 += 2 * math.Pi
	}
	n := max(int(math.Ceil((angle2-angle1)/(math.Pi/2)-1e-9)), 1)
	step := (angle2 - angle1) / float64(n)

	sin, cos := math.Sincos(angle1)
	start := geom.Pt(cx+r*cos, cy+r*sin)
	switch pts := p.g.Points(); {
	case len(pts) == 0:
		p.g.MoveTo(start)
	case !geom.Near(pts[len(pts)-1], start, 1e-9):
		p.g.LineTo(start)
	}
	for i := range n {
		a1 := angle1 + float64(i)*step
		p.arcSegment(cx, cy, r, a1, a1+step)
	}
}

func (p *Path) arcSegment(cx, cy, r, a1, a2 float64) {
	t := math.Tan((a2 - a1) / 2)
	alpha := math.Sin(a2-a1) * (math.Sqrt(4+3*t*t) - 1) / 3
	sin1, cos1 := math.Sincos(a1)
	sin2, cos2 := math.Sincos(a2)
	x1, y1 := cx+r*cos1, cy+r*sin1
	x2, y2 := cx+r*cos2, cy+r*sin2
	p.CubicTo(x1-alpha*r*sin1, y1+alpha*r*cos1, x2+alpha*r*sin2, y2-alpha*r*cos2, x2, y2)
}

// RoundedRectangle adds a closed rectangle with corner radius r, clamped
// to half the shorter side.
func (p *Path) RoundedRectangle(x, y, w, h, r float64) {
	r = min(r, min(w, h)/2)
	p.MoveTo(x+r, y)
	p.LineTo(x+w-r, y)
	p.Arc(x+w-r, y+r, r, -math.Pi/2, 0)
	p.LineTo(x+w, y+h-r)
	p.Arc(x+w-r, y+h-r, r, 0, math.Pi/2)
	p.LineTo(x+r, y+h)
	p.Arc(x+r, y+h-r, r, math.Pi/2, math.Pi)
	p.LineTo(x, y+r)
	p.Arc(x+r, y+r, r, math.Pi, 3*math.Pi/2)
	p.Close()
}
