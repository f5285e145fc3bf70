// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"math"

	"github.com/gogpu/pls/internal/blend"
	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/flush"
	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/record"
)

const samples = draw.CoverageSamplesPerPixel

// sampleOffsets is the rotated-grid sample pattern within a pixel.
var sampleOffsets = [samples][2]float64{
	{0.375, 0.125},
	{0.875, 0.375},
	{0.125, 0.625},
	{0.625, 0.875},
}

// sampleCoverage maps a covered sample count to coverage.
var sampleCoverage = [samples + 1]uint8{0, 64, 128, 191, 255}

// path renders one phase of a path draw. Winding is accumulated the way the
// interlock mode would: straight into scratch for pixel-local storage and
// simple MSAA fills, into the draw's coverage-buffer range for atomics, and
// through the stencil plane for other MSAA paths.
func (f *flushState) path(el *flush.Element, pr *record.PathRecord) {
	bounds := recordBounds(pr)
	n := bounds.Area() * samples
	var wind []int32
	switch f.mode {
	case caps.Atomics:
		region := f.planes.coverage[pr.CoverageOffset : int(pr.CoverageOffset)+n]
		if el.Pass == flush.Prepass {
			f.accumulate(el, bounds, region)
			return
		}
		wind = region
	case caps.MSAA:
		wind = f.planes.scratch(n)
		if el.Draw.Coverage() == draw.CoverageDirect {
			f.accumulate(el, bounds, wind)
			break
		}
		if el.Phase == 0 {
			f.accumulate(el, bounds, wind)
			f.stencilAdd(bounds, wind)
			return
		}
		f.stencilTake(bounds, wind)
	default:
		wind = f.planes.scratch(n)
		f.accumulate(el, bounds, wind)
	}

	rule := draw.FillRule(pr.FillRule)
	if pr.ClipUpdateID != 0 {
		f.writeClip(pr, bounds, wind, rule)
		return
	}
	if f.wireframe {
		f.wire(el, pr)
		return
	}
	mask := f.resolve(pr, bounds, wind, rule)
	if el.Draw.Features()&caps.FeatureFeather != 0 && pr.FeatherRadius > 0 {
		f.feather(mask, bounds, int(math.Round(float64(pr.FeatherRadius))))
	}
	f.shade(pr, bounds, mask, f.paintFunc(pr))
}

// accumulate adds the signed winding of every triangle of el into dst,
// which holds the samples of bounds in row-major order.
func (f *flushState) accumulate(el *flush.Element, bounds geom.IAABB, dst []int32) {
	f.triangles(el, func(a, b, c geom.Point) {
		rasterize(a, b, c, bounds, dst)
	})
}

func vertex(x, y float32) geom.Point { return geom.Pt(float64(x), float64(y)) }

// triangles calls fn for every triangle of a path draw. Stroke runs are
// triangle lists; other runs fan from their contour midpoint or, for outer
// curves, from the run's first vertex.
func (f *flushState) triangles(el *flush.Element, fn func(a, b, c geom.Point)) {
	run := f.tess[el.TessOffset : el.TessOffset+el.TessCount]
	if len(run) > 0 && f.contours[run[0].Contour].Flags&record.ContourStroke != 0 {
		for i := 0; i+2 < len(run); i += 3 {
			fn(vertex(run[i].X, run[i].Y), vertex(run[i+1].X, run[i+1].Y), vertex(run[i+2].X, run[i+2].Y))
		}
		return
	}
	for i := 0; i+1 < len(run); i++ {
		v, w := &run[i], &run[i+1]
		if v.Span != w.Span {
			continue
		}
		var apex geom.Point
		if c := &f.contours[v.Contour]; c.Flags&record.ContourOuterCurves != 0 {
			s := &f.tess[v.Span]
			apex = vertex(s.X, s.Y)
		} else {
			apex = vertex(c.MidX, c.MidY)
		}
		fn(apex, vertex(v.X, v.Y), vertex(w.X, w.Y))
	}
	tris := f.tris[el.TriOffset : el.TriOffset+el.TriCount]
	for i := 0; i+2 < len(tris); i += 3 {
		fn(vertex(tris[i].X, tris[i].Y), vertex(tris[i+1].X, tris[i+1].Y), vertex(tris[i+2].X, tris[i+2].Y))
	}
}

// rasterize adds +1 to every sample of bounds inside a positively oriented
// triangle and -1 inside a negatively oriented one. Samples on an edge
// belong to the triangle only for top-left edges, so triangles sharing an
// edge never both count a sample.
func rasterize(a, b, c geom.Point, bounds geom.IAABB, dst []int32) {
	area := geom.Cross(b.Sub(a), c.Sub(a))
	if area == 0 || math.IsNaN(area) {
		return
	}
	w := int32(1)
	if area < 0 {
		b, c = c, b
		w = -1
	}
	x0 := max(int(math.Floor(min(a.X, b.X, c.X))), int(bounds.L))
	x1 := min(int(math.Ceil(max(a.X, b.X, c.X))), int(bounds.R))
	y0 := max(int(math.Floor(min(a.Y, b.Y, c.Y))), int(bounds.T))
	y1 := min(int(math.Ceil(max(a.Y, b.Y, c.Y))), int(bounds.B))
	if x0 >= x1 || y0 >= y1 {
		return
	}
	e0, e1, e2 := newEdge(a, b), newEdge(b, c), newEdge(c, a)
	bw := bounds.Width()
	for y := y0; y < y1; y++ {
		row := ((y-int(bounds.T))*bw - int(bounds.L)) * samples
		for x := x0; x < x1; x++ {
			for s, o := range sampleOffsets {
				q := geom.Pt(float64(x)+o[0], float64(y)+o[1])
				if e0.covers(q) && e1.covers(q) && e2.covers(q) {
					dst[row+x*samples+s] += w
				}
			}
		}
	}
}

type edge struct {
	p, d    geom.Point
	topLeft bool
}

func newEdge(p0, p1 geom.Point) edge {
	d := p1.Sub(p0)
	return edge{p: p0, d: d, topLeft: d.Y < 0 || (d.Y == 0 && d.X > 0)}
}

func (e edge) covers(q geom.Point) bool {
	v := geom.Cross(e.d, q.Sub(e.p))
	return v > 0 || (v == 0 && e.topLeft)
}

// stencilAdd folds winding into the stencil plane with 8-bit wrapping.
func (f *flushState) stencilAdd(bounds geom.IAABB, wind []int32) {
	f.eachSample(bounds, func(local, global int) {
		f.planes.stencil[global] += uint8(wind[local])
	})
}

// stencilTake reads the stencil plane back as signed winding and zeroes it,
// like a cover pass whose stencil pass op is zero.
func (f *flushState) stencilTake(bounds geom.IAABB, wind []int32) {
	f.eachSample(bounds, func(local, global int) {
		wind[local] = int32(int8(f.planes.stencil[global]))
		f.planes.stencil[global] = 0
	})
}

// eachSample visits every sample of bounds with its index in a bounds-local
// buffer and in a frame plane.
func (f *flushState) eachSample(bounds geom.IAABB, fn func(local, global int)) {
	bw, fw := bounds.Width(), f.planes.width
	in := bounds.Intersect(f.frame)
	for y := int(in.T); y < int(in.B); y++ {
		for x := int(in.L); x < int(in.R); x++ {
			local := ((y-int(bounds.T))*bw + x - int(bounds.L)) * samples
			global := (y*fw + x) * samples
			for s := 0; s < samples; s++ {
				fn(local+s, global+s)
			}
		}
	}
}

func (f *flushState) clipPasses(pr *record.PathRecord, global int) bool {
	return pr.ClipID == 0 || f.planes.clip[global] == uint16(pr.ClipID)
}

// resolve turns winding into per-pixel coverage, testing each sample
// against the clip plane.
func (f *flushState) resolve(pr *record.PathRecord, bounds geom.IAABB, wind []int32, rule draw.FillRule) []uint8 {
	mask := f.planes.masks(bounds.Area())
	f.eachSample(bounds, func(local, global int) {
		if rule.Inside(wind[local]) && f.clipPasses(pr, global) {
			mask[local/samples]++
		}
	})
	for i, n := range mask {
		mask[i] = sampleCoverage[n]
	}
	return mask
}

// writeClip stores the draw's clip id in every covered sample that passes
// the outer clip.
func (f *flushState) writeClip(pr *record.PathRecord, bounds geom.IAABB, wind []int32, rule draw.FillRule) {
	f.eachSample(bounds, func(local, global int) {
		if rule.Inside(wind[local]) && f.clipPasses(pr, global) {
			f.planes.clip[global] = uint16(pr.ClipUpdateID)
		}
	})
}

func (f *flushState) clipReset(pr *record.PathRecord) {
	f.eachSample(recordBounds(pr), func(_, global int) {
		f.planes.clip[global] = uint16(pr.ClipUpdateID)
	})
}

// feather box-blurs the coverage mask horizontally and then vertically.
func (f *flushState) feather(mask []uint8, bounds geom.IAABB, r int) {
	if r <= 0 {
		return
	}
	w, h := bounds.Width(), bounds.Height()
	if cap(f.planes.blur) < len(mask) {
		f.planes.blur = make([]uint8, len(mask))
	}
	tmp := f.planes.blur[:len(mask)]
	boxBlur(tmp, mask, w, h, 1, w, r)
	boxBlur(mask, tmp, h, w, w, 1, r)
}

// boxBlur averages src along lines of n elements spaced step apart; lines
// start lineStride apart.
func boxBlur(dst, src []uint8, n, lines, step, lineStride, r int) {
	div := 2*r + 1
	for l := 0; l < lines; l++ {
		base := l * lineStride
		for i := 0; i < n; i++ {
			sum := 0
			for k := max(i-r, 0); k <= min(i+r, n-1); k++ {
				sum += int(src[base+k*step])
			}
			dst[base+i*step] = uint8((sum + div/2) / div)
		}
	}
}

// shade blends the paint into dst through mask.
func (f *flushState) shade(pr *record.PathRecord, bounds geom.IAABB, mask []uint8, paint func(x, y int) [4]byte) {
	mode := blend.Mode(pr.BlendMode)
	bw := bounds.Width()
	for y := int(bounds.T); y < int(bounds.B); y++ {
		for x := int(bounds.L); x < int(bounds.R); x++ {
			m := mask[(y-int(bounds.T))*bw+x-int(bounds.L)]
			if m == 0 {
				continue
			}
			off := f.dst.at(x, y)
			px := f.dst.pix[off : off+4 : off+4]
			out := blend.Apply(mode, paint(x, y), m, [4]byte(px))
			copy(px, out[:])
		}
	}
}

// wire draws the triangle edges of a path in its paint color.
func (f *flushState) wire(el *flush.Element, pr *record.PathRecord) {
	paint := f.paintFunc(pr)
	bounds := recordBounds(pr).Intersect(f.frame)
	plot := func(x, y int) {
		if x < int(bounds.L) || x >= int(bounds.R) || y < int(bounds.T) || y >= int(bounds.B) {
			return
		}
		if !f.clipPasses(pr, (y*f.planes.width+x)*samples) {
			return
		}
		off := f.dst.at(x, y)
		px := f.dst.pix[off : off+4 : off+4]
		out := blend.Apply(blend.SrcOver, paint(x, y), 255, [4]byte(px))
		copy(px, out[:])
	}
	line := func(a, b geom.Point) {
		steps := int(math.Ceil(max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
		for i := 0; i <= steps; i++ {
			t := 0.0
			if steps > 0 {
				t = float64(i) / float64(steps)
			}
			plot(int(math.Floor(a.X+(b.X-a.X)*t)), int(math.Floor(a.Y+(b.Y-a.Y)*t)))
		}
	}
	f.triangles(el, func(a, b, c geom.Point) {
		if geom.Cross(b.Sub(a), c.Sub(a)) == 0 {
			return
		}
		line(a, b)
		line(b, c)
		line(c, a)
	})
}
