// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import (
	"math"

	"honnef.co/go/curve"
)

// Verb identifies a path command.
type Verb uint8

// Path verbs.
const (
	VerbMove Verb = iota
	VerbLine
	VerbQuad
	VerbCubic
	VerbClose
)

// Path is an immutable-once-submitted sequence of contours built from
// move/line/quad/cubic/close commands.
type Path struct {
	verbs  []Verb
	points []Point
}

// MoveTo starts a new contour at p.
func (p *Path) MoveTo(pt Point) {
	p.verbs = append(p.verbs, VerbMove)
	p.points = append(p.points, pt)
}

// LineTo adds a line to pt.
func (p *Path) LineTo(pt Point) {
	p.verbs = append(p.verbs, VerbLine)
	p.points = append(p.points, pt)
}

// QuadTo adds a quadratic curve with control point c ending at pt.
func (p *Path) QuadTo(c, pt Point) {
	p.verbs = append(p.verbs, VerbQuad)
	p.points = append(p.points, c, pt)
}

// CubicTo adds a cubic curve with control points c1, c2 ending at pt.
func (p *Path) CubicTo(c1, c2, pt Point) {
	p.verbs = append(p.verbs, VerbCubic)
	p.points = append(p.points, c1, c2, pt)
}

// Close closes the current contour.
func (p *Path) Close() {
	p.verbs = append(p.verbs, VerbClose)
}

// Reset clears the path, keeping its storage.
func (p *Path) Reset() {
	p.verbs = p.verbs[:0]
	p.points = p.points[:0]
}

// Verbs returns the path verbs. The slice must not be modified.
func (p *Path) Verbs() []Verb { return p.verbs }

// Points returns the path points. The slice must not be modified.
func (p *Path) Points() []Point { return p.points }

// SegmentCount returns the number of boundary segments (lines, quads and
// cubics) in the path. Implicit closing lines are not counted.
func (p *Path) SegmentCount() int {
	n := 0
	for _, v := range p.verbs {
		if v == VerbLine || v == VerbQuad || v == VerbCubic {
			n++
		}
	}
	return n
}

// Bounds returns the bounding box of all points, including control points.
func (p *Path) Bounds() AABB {
	return BoundsOf(p.points...)
}

// Contours splits the path into contours of line and cubic segments.
// Quadratics are elevated to cubics. Contours without segments are dropped.
func (p *Path) Contours() []Contour {
	var (
		out   []Contour
		cur   Contour
		start Point
		last  Point
	)
	flush := func() {
		if len(cur.Segments) > 0 {
			out = append(out, cur)
		}
		cur = Contour{}
	}
	i := 0
	for _, v := range p.verbs {
		switch v {
		case VerbMove:
			flush()
			start = p.points[i]
			last = start
			i++
		case VerbLine:
			cur.Segments = append(cur.Segments, LineSegment(last, p.points[i]))
			last = p.points[i]
			i++
		case VerbQuad:
			c, end := p.points[i], p.points[i+1]
			cur.Segments = append(cur.Segments, CubicSegment(last, c.Lerp(last, 1.0/3), c.Lerp(end, 1.0/3), end))
			last = end
			i += 2
		case VerbCubic:
			cur.Segments = append(cur.Segments, CubicSegment(last, p.points[i], p.points[i+1], p.points[i+2]))
			last = p.points[i+2]
			i += 3
		case VerbClose:
			if len(cur.Segments) > 0 {
				cur.Closed = true
			}
			flush()
			last = start
		}
	}
	flush()
	return out
}

// SegmentKind distinguishes lines from cubic curves.
type SegmentKind uint8

// Segment kinds.
const (
	SegmentLine SegmentKind = iota
	SegmentCubic
)

// Segment is one boundary piece of a contour. Lines keep evenly spaced inner
// control points so they can be treated as cubics.
type Segment struct {
	Kind SegmentKind
	curve.CubicBez
}

// LineSegment returns a line from a to b.
func LineSegment(a, b Point) Segment {
	s := CubicSegment(a, a.Lerp(b, 1.0/3), a.Lerp(b, 2.0/3), b)
	s.Kind = SegmentLine
	return s
}

// CubicSegment returns a cubic curve.
func CubicSegment(p0, p1, p2, p3 Point) Segment {
	return Segment{Kind: SegmentCubic, CubicBez: curve.CubicBez{
		P0: curve.Point(p0), P1: curve.Point(p1), P2: curve.Point(p2), P3: curve.Point(p3),
	}}
}

// Points returns the four control points.
func (s Segment) Points() [4]Point {
	return [4]Point{Point(s.P0), Point(s.P1), Point(s.P2), Point(s.P3)}
}

// Start returns the first point.
func (s Segment) Start() Point { return Point(s.P0) }

// End returns the last point.
func (s Segment) End() Point { return Point(s.P3) }

// Eval returns the point at parameter t in [0, 1].
func (s Segment) Eval(t float64) Point {
	if s.Kind == SegmentLine {
		return Point(curve.Line{P0: s.P0, P1: s.P3}.Eval(t))
	}
	return Point(s.CubicBez.Eval(t))
}

// Bounds returns the tight bounding box of the segment.
func (s Segment) Bounds() AABB {
	return AABB{s.BoundingBox()}
}

// StartTangent returns the direction the segment leaves its start point.
// Degenerate control points fall back to the next distinct point.
func (s Segment) StartTangent() Point {
	p := s.Points()
	for i := 1; i < 4; i++ {
		if d := p[i].Sub(p[0]); d.X != 0 || d.Y != 0 {
			return d
		}
	}
	return Point{}
}

// EndTangent returns the direction the segment arrives at its end point.
func (s Segment) EndTangent() Point {
	p := s.Points()
	for i := 2; i >= 0; i-- {
		if d := p[3].Sub(p[i]); d.X != 0 || d.Y != 0 {
			return d
		}
	}
	return Point{}
}

// Transform returns the segment mapped by m.
func (s Segment) Transform(m Affine) Segment {
	return Segment{Kind: s.Kind, CubicBez: s.CubicBez.Transform(m.Curve())}
}

// Contour is one connected boundary of a path.
type Contour struct {
	Segments []Segment
	Closed   bool
}

// Start returns the first point of the contour.
func (c Contour) Start() Point { return c.Segments[0].Start() }

// End returns the last point of the contour.
func (c Contour) End() Point { return c.Segments[len(c.Segments)-1].End() }

// Transform returns the contour mapped by m.
func (c Contour) Transform(m Affine) Contour {
	out := Contour{Segments: make([]Segment, len(c.Segments)), Closed: c.Closed}
	for i, s := range c.Segments {
		out.Segments[i] = s.Transform(m)
	}
	return out
}

// EndpointMean returns the mean of the segment endpoints, including the
// start point once. It is the fan apex for midpoint-fan tessellation.
func (c Contour) EndpointMean() Point {
	sum := c.Start()
	for _, s := range c.Segments {
		sum = sum.Add(s.End())
	}
	return sum.Mul(1 / float64(len(c.Segments)+1))
}

// ConvexPolygon reports whether the contour, closed implicitly, is a convex
// polygon made only of lines that turns exactly once. Collinear vertices are
// allowed; degenerate contours are not convex.
func (c Contour) ConvexPolygon() bool {
	pts := make([]Point, 0, len(c.Segments)+1)
	pts = append(pts, c.Start())
	for _, s := range c.Segments {
		if s.Kind != SegmentLine {
			return false
		}
		if e := s.End(); e != pts[len(pts)-1] {
			pts = append(pts, e)
		}
	}
	if len(pts) > 1 && pts[len(pts)-1] == pts[0] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return false
	}
	var sign, turn float64
	for i := range pts {
		a := pts[(i+1)%len(pts)].Sub(pts[i])
		b := pts[(i+2)%len(pts)].Sub(pts[(i+1)%len(pts)])
		x := Cross(a, b)
		if x == 0 {
			continue
		}
		if sign == 0 {
			sign = math.Copysign(1, x)
		} else if math.Copysign(1, x) != sign {
			return false
		}
		turn += math.Atan2(x, Dot(a, b))
	}
	// A star polygon turns the same way at every vertex but more than once.
	return sign != 0 && math.Abs(math.Abs(turn)-2*math.Pi) < 1e-6
}
