// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tess

import (
	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/record"
)

const (
	// MidpointFanPatchSegmentSpan is the number of segments in one
	// midpoint-fan patch.
	MidpointFanPatchSegmentSpan = 8

	// OuterCurvePatchSegmentSpan is the number of segments in one
	// outer-curve patch.
	OuterCurvePatchSegmentSpan = 17

	// closeEpsilon decides whether a fill contour already ends at its start.
	closeEpsilon = 1e-9
)

// PaddedRunVertices returns the vertex count of a run of n segments padded
// to whole patches of span segments.
func PaddedRunVertices(n, span int) int {
	if n <= 0 {
		return 0
	}
	patches := (n + span - 1) / span
	return patches*span + 1
}

// FanContour is the counted form of one midpoint-fan contour.
type FanContour struct {
	Contour  geom.Contour
	Counts   []int
	Close    bool
	Segments int
	Midpoint geom.Point
	Vertices int
}

// FanPlan counts a midpoint-fan tessellation.
type FanPlan struct {
	Contours []FanContour
	Vertices int
}

// PlanFan counts the midpoint-fan runs for device-space contours. Fills are
// implicitly closed, so an open contour gets a closing line.
func PlanFan(contours []geom.Contour, tol float64) FanPlan {
	plan := FanPlan{Contours: make([]FanContour, 0, len(contours))}
	for _, c := range contours {
		fc := FanContour{
			Contour:  c,
			Counts:   make([]int, len(c.Segments)),
			Midpoint: c.EndpointMean(),
		}
		for i, s := range c.Segments {
			n := geom.WangSegments(s, tol)
			fc.Counts[i] = n
			fc.Segments += n
		}
		if !geom.Near(c.End(), c.Start(), closeEpsilon) {
			fc.Close = true
			fc.Segments++
		}
		fc.Vertices = PaddedRunVertices(fc.Segments, MidpointFanPatchSegmentSpan)
		plan.Contours = append(plan.Contours, fc)
		plan.Vertices += fc.Vertices
	}
	return plan
}

// Emit writes every run into dst and returns the number of vertices written,
// which always equals p.Vertices. base is the absolute index of dst[0] in the
// ring slot and firstContour the id of the first contour record.
func (p *FanPlan) Emit(dst []record.TessVertex, base, firstContour uint32) int {
	n := 0
	for i := range p.Contours {
		fc := &p.Contours[i]
		w := runWriter{dst: dst[n : n+fc.Vertices], span: base + uint32(n), contour: firstContour + uint32(i)}
		w.put(fc.Contour.Start())
		for j, s := range fc.Contour.Segments {
			count := fc.Counts[j]
			for k := 1; k <= count; k++ {
				w.put(s.Eval(float64(k) / float64(count)))
			}
		}
		if fc.Close {
			w.put(fc.Contour.Start())
		}
		w.pad()
		n += fc.Vertices
	}
	return n
}

// runWriter fills one padded run.
type runWriter struct {
	dst     []record.TessVertex
	n       int
	span    uint32
	contour uint32
}

func (w *runWriter) put(p geom.Point) {
	w.dst[w.n] = record.TessVertex{X: float32(p.X), Y: float32(p.Y), Contour: w.contour, Span: w.span}
	w.n++
}

// pad repeats the last vertex until the run is full. The repeated vertices
// form zero-area triangles.
func (w *runWriter) pad() {
	last := w.dst[w.n-1]
	for w.n < len(w.dst) {
		w.dst[w.n] = last
		w.n++
	}
}
