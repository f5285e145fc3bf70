// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tess

import (
	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/record"
)

// outerRun is one cubic whose curve-to-chord region is fanned from its
// start point.
type outerRun struct {
	seg      geom.Segment
	count    int
	contour  int
	vertices int
}

// OuterPlan counts the outer-curve runs of an interior-triangulation draw.
// Lines lie on their chord and need no run.
type OuterPlan struct {
	runs     []outerRun
	Vertices int
}

// PlanOuterCurves counts outer-curve runs for device-space contours.
func PlanOuterCurves(contours []geom.Contour, tol float64) OuterPlan {
	var plan OuterPlan
	for ci, c := range contours {
		for _, s := range c.Segments {
			if s.Kind != geom.SegmentCubic {
				continue
			}
			n := geom.WangSegments(s, tol)
			r := outerRun{seg: s, count: n, contour: ci, vertices: PaddedRunVertices(n, OuterCurvePatchSegmentSpan)}
			plan.runs = append(plan.runs, r)
			plan.Vertices += r.vertices
		}
	}
	return plan
}

// Runs returns the number of outer-curve runs.
func (p *OuterPlan) Runs() int { return len(p.runs) }

// Emit writes the runs into dst and returns the number of vertices written,
// which always equals p.Vertices.
func (p *OuterPlan) Emit(dst []record.TessVertex, base, firstContour uint32) int {
	n := 0
	for _, r := range p.runs {
		w := runWriter{dst: dst[n : n+r.vertices], span: base + uint32(n), contour: firstContour + uint32(r.contour)}
		w.put(r.seg.Start())
		for k := 1; k <= r.count; k++ {
			w.put(r.seg.Eval(float64(k) / float64(r.count)))
		}
		w.pad()
		n += r.vertices
	}
	return n
}
