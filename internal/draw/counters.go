// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import "fmt"

// CoverageSamplesPerPixel is the coverage-buffer granularity in atomics mode.
const CoverageSamplesPerPixel = 4

// Counters are the GPU resources a draw consumes. They are computed from the
// geometry when the draw is built and never change afterwards.
type Counters struct {
	Draws            int
	Paths            int
	Contours         int
	TessVertices     int
	TriangleVertices int
	GradientSpans    int
	CoverageSamples  int
}

// Add returns the component-wise sum.
func (c Counters) Add(o Counters) Counters {
	return Counters{
		Draws:            c.Draws + o.Draws,
		Paths:            c.Paths + o.Paths,
		Contours:         c.Contours + o.Contours,
		TessVertices:     c.TessVertices + o.TessVertices,
		TriangleVertices: c.TriangleVertices + o.TriangleVertices,
		GradientSpans:    c.GradientSpans + o.GradientSpans,
		CoverageSamples:  c.CoverageSamples + o.CoverageSamples,
	}
}

// Fits reports whether every component of c is at most the matching
// component of limit.
func (c Counters) Fits(limit Counters) bool {
	return c.Draws <= limit.Draws &&
		c.Paths <= limit.Paths &&
		c.Contours <= limit.Contours &&
		c.TessVertices <= limit.TessVertices &&
		c.TriangleVertices <= limit.TriangleVertices &&
		c.GradientSpans <= limit.GradientSpans &&
		c.CoverageSamples <= limit.CoverageSamples
}

// Max returns the component-wise maximum.
func (c Counters) Max(o Counters) Counters {
	return Counters{
		Draws:            max(c.Draws, o.Draws),
		Paths:            max(c.Paths, o.Paths),
		Contours:         max(c.Contours, o.Contours),
		TessVertices:     max(c.TessVertices, o.TessVertices),
		TriangleVertices: max(c.TriangleVertices, o.TriangleVertices),
		GradientSpans:    max(c.GradientSpans, o.GradientSpans),
		CoverageSamples:  max(c.CoverageSamples, o.CoverageSamples),
	}
}

// String formats the counters for logs.
func (c Counters) String() string {
	return fmt.Sprintf("draws=%d paths=%d contours=%d tess=%d tris=%d spans=%d coverage=%d",
		c.Draws, c.Paths, c.Contours, c.TessVertices, c.TriangleVertices, c.GradientSpans, c.CoverageSamples)
}
