// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tess

import (
	"math"

	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/record"
)

// Join is a stroke join style.
type Join uint8

// Join styles.
const (
	JoinMiter Join = iota
	JoinRound
	JoinBevel
)

// Cap is a stroke cap style.
type Cap uint8

// Cap styles.
const (
	CapButt Cap = iota
	CapRound
	CapSquare
)

// joinKind is what the join generator emits at one vertex. Caps are joins
// against an emulated reversed segment.
type joinKind uint8

const (
	kindBevel joinKind = iota
	kindMiter
	kindRound
	kindSquare
)

// StrokeStyle describes a stroke in path space.
type StrokeStyle struct {
	Radius     float64
	Join       Join
	Cap        Cap
	MiterLimit float64
}

// strokeEdge is one flattened edge of a stroked contour. Emulated edges have
// zero length and only provide a reversed tangent for a cap.
type strokeEdge struct {
	p, q     geom.Point
	tangent  geom.Point
	emulated bool
	// segEnd is set when q ends an input segment, so the join after this
	// edge uses the stroke's join style rather than an interior bevel.
	segEnd bool
}

// strokeContour is the counted form of one stroked contour.
type strokeContour struct {
	edges     []strokeEdge
	closed    bool
	triangles int
}

// StrokePlan counts the triangles of a stroke.
type StrokePlan struct {
	contours []strokeContour
	xform    geom.Affine
	style    StrokeStyle
	polar    int
	Joins    int
	Caps     int
	Vertices int
}

// PlanStroke counts a stroke of path-space contours drawn with xform.
// Flattening and round-join density are chosen in device space.
func PlanStroke(contours []geom.Contour, xform geom.Affine, style StrokeStyle, tol float64) StrokePlan {
	plan := StrokePlan{
		xform: xform,
		style: style,
		polar: geom.PolarSegments(style.Radius*xform.MaxScale(), math.Pi, tol),
	}
	for _, c := range contours {
		sc := strokeContour{closed: c.Closed}
		segs := c.Segments
		if c.Closed && !geom.Near(c.End(), c.Start(), closeEpsilon) {
			segs = append(segs[:len(segs):len(segs)], geom.LineSegment(c.End(), c.Start()))
		}
		for _, s := range segs {
			n := geom.WangSegments(s.Transform(xform), tol)
			prev := s.Start()
			for k := 1; k <= n; k++ {
				q := s.Eval(float64(k) / float64(n))
				sc.edges = append(sc.edges, strokeEdge{p: prev, q: q, segEnd: k == n})
				prev = q
			}
		}
		fillTangents(sc.edges, segs)

		capped := !c.Closed && style.Cap != CapButt
		if capped {
			first := sc.edges[0]
			last := sc.edges[len(sc.edges)-1]
			head := strokeEdge{p: first.p, q: first.p, tangent: first.tangent.Mul(-1), emulated: true, segEnd: true}
			tail := strokeEdge{p: last.q, q: last.q, tangent: last.tangent.Mul(-1), emulated: true}
			sc.edges = append([]strokeEdge{head}, sc.edges...)
			sc.edges = append(sc.edges, tail)
			plan.Caps += 2
		}

		for i, e := range sc.edges {
			if !e.emulated {
				sc.triangles += 2
			}
			if i+1 < len(sc.edges) || c.Closed {
				sc.triangles += plan.joinTriangles(plan.joinAfter(sc.edges, i))
				plan.Joins++
			}
		}
		plan.contours = append(plan.contours, sc)
		plan.Vertices += sc.triangles * 3
	}
	return plan
}

// fillTangents assigns every edge a unit tangent. Zero-length edges borrow
// the nearest non-degenerate tangent so joins around them stay defined.
func fillTangents(edges []strokeEdge, segs []geom.Segment) {
	fallback := geom.Pt(1, 0)
	for _, s := range segs {
		if t := geom.Normalize(s.StartTangent()); t.X != 0 || t.Y != 0 {
			fallback = t
			break
		}
	}
	last := fallback
	for i := range edges {
		t := geom.Normalize(edges[i].q.Sub(edges[i].p))
		if t.X == 0 && t.Y == 0 {
			t = last
		}
		edges[i].tangent = t
		last = t
	}
}

// joinAfter returns the join emitted between edge i and the edge after it.
func (p *StrokePlan) joinAfter(edges []strokeEdge, i int) joinKind {
	e := edges[i]
	n := edges[(i+1)%len(edges)]
	if e.emulated || n.emulated {
		if p.style.Cap == CapSquare {
			return kindSquare
		}
		return kindRound
	}
	if !e.segEnd {
		return kindBevel
	}
	switch p.style.Join {
	case JoinRound:
		return kindRound
	case JoinMiter:
		return kindMiter
	default:
		return kindBevel
	}
}

func (p *StrokePlan) joinTriangles(k joinKind) int {
	switch k {
	case kindRound:
		return p.polar
	case kindMiter, kindSquare:
		return 2
	default:
		return 1
	}
}

// Emit writes the stroke triangles into dst and returns the number of
// vertices written, which always equals p.Vertices. Triangles are in device
// space and oriented so that each covers its area with winding +1.
func (p *StrokePlan) Emit(dst []record.TessVertex, base, firstContour uint32) int {
	w := triWriter{dst: dst, xform: p.xform}
	for ci := range p.contours {
		sc := &p.contours[ci]
		w.contour = firstContour + uint32(ci)
		w.span = base + uint32(w.n)
		start := w.n
		for i, e := range sc.edges {
			if !e.emulated {
				p.emitQuad(&w, e)
			}
			if i+1 < len(sc.edges) || sc.closed {
				next := sc.edges[(i+1)%len(sc.edges)]
				p.emitJoin(&w, e.q, e.tangent, next.tangent, p.joinAfter(sc.edges, i))
			}
		}
		if got := (w.n - start) / 3; got != sc.triangles {
			panic("tess: stroke emitted a different triangle count than planned")
		}
	}
	return w.n
}

func (p *StrokePlan) emitQuad(w *triWriter, e strokeEdge) {
	n := geom.Perp(e.tangent).Mul(p.style.Radius)
	a, b := e.p.Add(n), e.q.Add(n)
	c, d := e.q.Sub(n), e.p.Sub(n)
	w.tri(a, b, c)
	w.tri(a, c, d)
}

// emitJoin emits exactly joinTriangles(k) triangles around v between an edge
// arriving with tangent t0 and one leaving with tangent t1.
func (p *StrokePlan) emitJoin(w *triWriter, v, t0, t1 geom.Point, k joinKind) {
	r := p.style.Radius
	count := p.joinTriangles(k)
	emitted := 0

	// m points at the outer side of the join.
	m := t0.Sub(t1)
	straight := m.Hypot() < 1e-12
	n0 := geom.Perp(t0)
	if geom.Dot(n0, m) < 0 {
		n0 = n0.Mul(-1)
	}
	n1 := geom.Perp(t1)
	if geom.Dot(n1, m) < 0 {
		n1 = n1.Mul(-1)
	}
	o0 := v.Add(n0.Mul(r))
	o1 := v.Add(n1.Mul(r))

	if !straight {
		switch k {
		case kindBevel:
			w.tri(v, o0, o1)
			emitted = 1
		case kindMiter:
			w.tri(v, o0, o1)
			emitted = 1
			bis := geom.Normalize(n0.Add(n1))
			cosHalf := geom.Dot(bis, n0)
			limit := p.style.MiterLimit
			if limit <= 0 {
				limit = 4
			}
			if cosHalf > 1e-12 && 1/cosHalf <= limit {
				tip := v.Add(bis.Mul(r / cosHalf))
				w.tri(o0, tip, o1)
				emitted = 2
			}
		case kindSquare:
			ext := geom.Normalize(m).Mul(r)
			w.tri(o0, o0.Add(ext), o1.Add(ext))
			w.tri(o0, o1.Add(ext), o1)
			emitted = 2
		case kindRound:
			mid := math.Atan2(m.Y, m.X)
			a0 := math.Atan2(n0.Y, n0.X)
			sweep := 2 * wrapPi(mid-a0)
			prev := o0
			for s := 1; s <= count; s++ {
				a := a0 + sweep*float64(s)/float64(count)
				q := v.Add(geom.Pt(math.Cos(a), math.Sin(a)).Mul(r))
				w.tri(v, prev, q)
				prev = q
			}
			emitted = count
		}
	}
	for ; emitted < count; emitted++ {
		w.tri(v, v, v)
	}
}

// wrapPi maps an angle into (-pi, pi].
func wrapPi(a float64) float64 {
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// triWriter writes device-space triangles with positive orientation.
type triWriter struct {
	dst     []record.TessVertex
	n       int
	xform   geom.Affine
	contour uint32
	span    uint32
}

func (w *triWriter) tri(a, b, c geom.Point) {
	a, b, c = w.xform.Apply(a), w.xform.Apply(b), w.xform.Apply(c)
	if geom.Cross(b.Sub(a), c.Sub(a)) < 0 {
		b, c = c, b
	}
	for _, p := range [3]geom.Point{a, b, c} {
		w.dst[w.n] = record.TessVertex{X: float32(p.X), Y: float32(p.Y), Contour: w.contour, Span: w.span}
		w.n++
	}
}
