// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import (
	"math"

	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/record"
	"github.com/gogpu/pls/internal/tess"
)

// DefaultTriangulationThreshold is the segment count at which fills switch
// from midpoint fans to interior triangulation.
const DefaultTriangulationThreshold = 1000

// PathParams describes a path draw.
type PathParams struct {
	Common
	Path  *geom.Path
	Paint Paint
	// ClipUpdateID turns the draw into a clip update that writes this id
	// into the clip plane instead of color. ClipID is then the outer clip.
	ClipUpdateID uint32
	// Threshold is the segment count at which fills are triangulated.
	Threshold int
	Tolerance float64
}

// pathPayload is the geometry of a path draw. Exactly one of fan, stroke
// and tri is set.
type pathPayload struct {
	paint        Paint
	rule         FillRule
	clipUpdateID uint32

	fan    *tess.FanPlan
	stroke *tess.StrokePlan
	outer  *tess.OuterPlan
	tri    *tess.Triangulator
}

// NewPath builds a path draw. It reports false when the path covers no
// pixel inside the viewport.
func NewPath(p PathParams) (*Draw, bool) {
	if p.Path == nil {
		return nil, false
	}
	contours := p.Path.Contours()
	if len(contours) == 0 {
		return nil, false
	}
	threshold := p.Threshold
	if threshold <= 0 {
		threshold = DefaultTriangulationThreshold
	}
	tol := p.Tolerance
	if tol <= 0 {
		tol = geom.DefaultTolerance
	}

	pp := &pathPayload{paint: p.Paint, rule: p.Paint.FillRule, clipUpdateID: p.ClipUpdateID}
	d := &Draw{
		kind:      KindPath,
		transform: p.Transform,
		blend:     p.Blend,
		clipID:    p.ClipID,
		payload:   pp,
	}

	device := make([]geom.Contour, len(contours))
	box := geom.EmptyAABB()
	for i, c := range contours {
		device[i] = c.Transform(p.Transform)
		for _, s := range device[i].Segments {
			for _, pt := range s.Points() {
				box.Add(pt)
			}
		}
	}

	scale := p.Transform.MaxScale()
	if st := p.Paint.Stroke; st != nil {
		pp.rule = NonZero
		d.contents |= ContentStroke
		outset := st.Radius * scale
		if st.Join == tess.JoinMiter && st.MiterLimit > 1 {
			outset *= st.MiterLimit
		} else if st.Cap == tess.CapSquare {
			outset *= math.Sqrt2
		}
		box = box.Outset(outset)
	}
	if p.Paint.Feather > 0 {
		d.contents |= ContentFeather
		box = box.Outset(p.Paint.Feather * scale)
	}
	if box.IsEmpty() {
		return nil, false
	}
	// One pixel of slack covers samples on the rounded edge.
	d.bounds = box.RoundOut().Outset(1).Intersect(p.Viewport)
	if d.bounds.Empty() {
		return nil, false
	}

	switch pp.rule {
	case EvenOdd:
		d.contents |= ContentEvenOdd
	case Clockwise:
		d.contents |= ContentClockwise
	}
	if p.ClipID != 0 {
		d.contents |= ContentActiveClip
	}
	if p.ClipUpdateID != 0 {
		d.contents |= ContentClipUpdate
	} else if p.Paint.opaque() && !p.Blend.Advanced() {
		d.contents |= ContentOpaque
	}
	if p.Blend.Advanced() && p.ClipUpdateID == 0 {
		d.contents |= ContentAdvancedBlend
	}

	d.counters = Counters{Draws: 1, Paths: 1, Contours: len(contours)}
	if p.ClipUpdateID == 0 {
		d.counters.GradientSpans = p.Paint.spanCount()
	}
	switch {
	case p.Paint.Stroke != nil:
		plan := tess.PlanStroke(contours, p.Transform, *p.Paint.Stroke, tol)
		pp.stroke = &plan
		d.drawType = TypeMidpointFanPatches
		d.counters.TessVertices = plan.Vertices
	case p.Path.SegmentCount() >= threshold:
		outer := tess.PlanOuterCurves(device, tol)
		pp.outer = &outer
		pp.tri = tess.NewTriangulator(device)
		d.drawType = TypeInteriorTriangulation
		d.counters.TessVertices = outer.Vertices
		d.counters.TriangleVertices = pp.tri.Count()
	default:
		plan := tess.PlanFan(device, tol)
		pp.fan = &plan
		d.drawType = TypeMidpointFanPatches
		d.counters.TessVertices = plan.Vertices
	}

	// Nonzero fan fills cancel forward triangle hits against backward ones
	// as they draw. A convex polygon fans from an interior apex into
	// triangles that never overlap, so it has nothing to cancel.
	d.simple = pp.fan != nil && pp.rule == NonZero && p.ClipUpdateID == 0 && p.Paint.Feather == 0
	d.convex = d.simple && len(device) == 1 && device[0].ConvexPolygon()
	d.finish(p.Strategy)
	return d, true
}

// FillRule returns the effective fill rule. Strokes always use nonzero.
func (d *Draw) FillRule() FillRule {
	if pp, ok := d.payload.(*pathPayload); ok {
		return pp.rule
	}
	return NonZero
}

// ClipUpdateID returns the id a clip-update draw writes, or zero.
func (d *Draw) ClipUpdateID() uint32 {
	if pp, ok := d.payload.(*pathPayload); ok {
		return pp.clipUpdateID
	}
	return 0
}

// Stroked reports whether the draw is a stroke.
func (d *Draw) Stroked() bool { return d.contents&ContentStroke != 0 }

func (pp *pathPayload) emit(d *Draw, e *Emitter) Counters {
	d.pathRecord(e)
	e.Path.FillRule = uint32(pp.rule)
	e.Path.ClipUpdateID = pp.clipUpdateID
	if st := pp.paint.Stroke; st != nil {
		e.Path.StrokeRadius = float32(st.Radius * d.transform.MaxScale())
	}
	e.Path.FeatherRadius = float32(pp.paint.Feather * d.transform.MaxScale())

	w := Counters{Draws: 1, Paths: 1}
	if pp.clipUpdateID != 0 {
		*e.Paint = record.PaintRecord{Kind: record.PaintClip, Opacity: 1}
	} else {
		pp.paint.record(e.Paint, d.inverse(), e.SpanBase)
		w.GradientSpans = pp.paint.spans(e.Spans)
	}

	var flags uint32
	switch {
	case pp.stroke != nil:
		flags = record.ContourStroke
		w.TessVertices = pp.stroke.Emit(e.Tess, e.TessBase, e.FirstContour)
		for i := range e.Contours {
			e.Contours[i] = record.ContourRecord{Path: e.PathID, Flags: flags}
		}
	case pp.fan != nil:
		w.TessVertices = pp.fan.Emit(e.Tess, e.TessBase, e.FirstContour)
		for i, fc := range pp.fan.Contours {
			f := uint32(0)
			if fc.Contour.Closed {
				f = record.ContourClosed
			}
			e.Contours[i] = record.ContourRecord{
				MidX: float32(fc.Midpoint.X), MidY: float32(fc.Midpoint.Y),
				Path: e.PathID, Flags: f,
			}
		}
	default:
		w.TessVertices = pp.outer.Emit(e.Tess, e.TessBase, e.FirstContour)
		w.TriangleVertices = pp.tri.Emit(e.Triangles, e.PathID)
		for i := range e.Contours {
			e.Contours[i] = record.ContourRecord{Path: e.PathID, Flags: record.ContourOuterCurves | record.ContourClosed}
		}
	}
	w.Contours = len(e.Contours)
	w.CoverageSamples = d.counters.CoverageSamples
	return w
}
