// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"math"

	"github.com/chewxy/math32"
	"honnef.co/go/safeish"

	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/flush"
	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/record"
	"github.com/gogpu/pls/internal/resource"
)

// paintFunc returns the premultiplied color of a draw's paint at each
// pixel center.
func (f *flushState) paintFunc(pr *record.PathRecord) func(x, y int) [4]byte {
	p := &f.paints[pr.Paint]
	switch p.Kind {
	case record.PaintLinear, record.PaintRadial:
		spans := f.spans[p.SpanOffset : p.SpanOffset+p.SpanCount]
		return func(x, y int) [4]byte {
			lx, ly := mapPoint(&p.Inverse, float32(x)+0.5, float32(y)+0.5)
			return toBytes(rampColor(spans, gradientT(p, lx, ly)))
		}
	case record.PaintImage:
		tex := f.exec.texture(p.Texture)
		if tex == nil {
			return func(int, int) [4]byte { return [4]byte{} }
		}
		level := mipLevel(&p.Inverse, tex)
		w, h := p.Gradient[0], p.Gradient[1]
		return func(x, y int) [4]byte {
			lx, ly := mapPoint(&p.Inverse, float32(x)+0.5, float32(y)+0.5)
			return scale(sampleNearest(tex, level, lx/w, ly/h), p.Opacity)
		}
	default:
		c := toBytes(p.Color)
		return func(int, int) [4]byte { return c }
	}
}

// mapPoint applies a matrix in record layout.
func mapPoint(m *[6]float32, x, y float32) (float32, float32) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

func gradientT(p *record.PaintRecord, x, y float32) float32 {
	g := p.Gradient
	if p.Kind == record.PaintRadial {
		if g[2] <= 0 {
			return 1
		}
		return math32.Hypot(x-g[0], y-g[1]) / g[2]
	}
	dx, dy := g[2]-g[0], g[3]-g[1]
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return 0
	}
	return ((x-g[0])*dx + (y-g[1])*dy) / l2
}

// rampColor evaluates premultiplied gradient spans at t, extending the end
// colors beyond the first and last stop.
func rampColor(spans []record.GradientSpan, t float32) [4]float32 {
	if len(spans) == 0 {
		return [4]float32{}
	}
	if t <= spans[0].T0 {
		return spans[0].Color0
	}
	for i := range spans {
		s := &spans[i]
		if t > s.T1 {
			continue
		}
		u := float32(0)
		if s.T1 > s.T0 {
			u = (t - s.T0) / (s.T1 - s.T0)
		}
		var c [4]float32
		for k := range c {
			c[k] = s.Color0[k] + (s.Color1[k]-s.Color0[k])*u
		}
		return c
	}
	return spans[len(spans)-1].Color1
}

// mipLevel picks the level whose texels are closest to one per pixel.
func mipLevel(inv *[6]float32, tex resource.Texture) int {
	s := max(math32.Hypot(inv[0], inv[1]), math32.Hypot(inv[2], inv[3]))
	level := 0
	for s >= 2 && level+1 < tex.MipLevels() {
		s /= 2
		level++
	}
	return level
}

// sampleNearest reads level at normalized coordinates (u, v), clamping to
// the edge.
func sampleNearest(tex resource.Texture, level int, u, v float32) [4]byte {
	w, h := resource.LevelSize(tex.Width(), tex.Height(), level)
	x := min(max(int(math32.Floor(u*float32(w))), 0), w-1)
	y := min(max(int(math32.Floor(v*float32(h))), 0), h-1)
	pix := tex.Level(level)
	o := (y*w + x) * 4
	return [4]byte(pix[o : o+4])
}

func scale(c [4]byte, opacity float32) [4]byte {
	if opacity >= 1 {
		return c
	}
	a := uint32(math32.Round(opacity * 255))
	for i := range c {
		c[i] = uint8((uint32(c[i])*a + 127) / 255)
	}
	return c
}

func premultiplied(c [4]float32) [4]float32 {
	a := min(max(c[3], 0), 1)
	return [4]float32{c[0] * a, c[1] * a, c[2] * a, a}
}

func toBytes(c [4]float32) [4]byte {
	var out [4]byte
	for i, v := range c {
		out[i] = uint8(min(max(v, 0), 1)*255 + 0.5)
	}
	return out
}

// imageRect covers the transformed image rectangle.
func (f *flushState) imageRect(pr *record.PathRecord) {
	p := &f.paints[pr.Paint]
	bounds := recordBounds(pr)
	w, h := float64(p.Gradient[0]), float64(p.Gradient[1])
	m := &pr.Matrix
	corner := func(x, y float64) geom.Point {
		px, py := mapPoint(m, float32(x), float32(y))
		return vertex(px, py)
	}
	a, b, c, d := corner(0, 0), corner(w, 0), corner(w, h), corner(0, h)
	wind := f.planes.scratch(bounds.Area() * samples)
	rasterize(a, b, c, bounds, wind)
	rasterize(a, c, d, bounds, wind)
	mask := f.resolve(pr, bounds, wind, draw.NonZero)
	f.shade(pr, bounds, mask, f.paintFunc(pr))
}

// meshTri is one mesh triangle in device space, wound counterclockwise.
type meshTri struct {
	a, b, c    geom.Point
	i0, i1, i2 int
	area       float64
	box        geom.AABB
}

// weights returns the barycentric weights of q for a, b and c.
func (t *meshTri) weights(q geom.Point) (float64, float64, float64) {
	wa := geom.Cross(t.c.Sub(t.b), q.Sub(t.b)) / t.area
	wb := geom.Cross(t.a.Sub(t.c), q.Sub(t.c)) / t.area
	return wa, wb, 1 - wa - wb
}

// imageMesh accumulates every mesh triangle into one winding buffer and
// shades the draw once, so pixels on shared edges blend a single time.
// Each pixel takes its texture coordinates from the triangle that contains
// its center, or from the nearest one when the center lies outside the
// mesh.
func (f *flushState) imageMesh(el *flush.Element, pr *record.PathRecord) {
	verts, uvs, indices := el.Draw.Mesh()
	if verts == nil {
		return
	}
	p := &f.paints[pr.Paint]
	tex := f.exec.texture(p.Texture)
	if tex == nil {
		return
	}
	pos := safeish.SliceCast[[]float32](verts.Bytes())
	uv := safeish.SliceCast[[]float32](uvs.Bytes())
	idx := safeish.SliceCast[[]uint16](indices.Bytes()[:el.Draw.IndexCount()*2])
	bounds := recordBounds(pr)

	point := func(i uint16) (geom.Point, bool) {
		if int(i)*2+1 >= len(pos) || int(i)*2+1 >= len(uv) {
			return geom.Point{}, false
		}
		x, y := mapPoint(&pr.Matrix, pos[int(i)*2], pos[int(i)*2+1])
		return vertex(x, y), true
	}
	tris := make([]meshTri, 0, len(idx)/3)
	for t := 0; t+2 < len(idx); t += 3 {
		a, ok0 := point(idx[t])
		b, ok1 := point(idx[t+1])
		c, ok2 := point(idx[t+2])
		if !ok0 || !ok1 || !ok2 {
			continue
		}
		tri := meshTri{a: a, b: b, c: c, i0: int(idx[t]), i1: int(idx[t+1]), i2: int(idx[t+2])}
		tri.area = geom.Cross(b.Sub(a), c.Sub(a))
		if tri.area == 0 || math.IsNaN(tri.area) {
			continue
		}
		if tri.area < 0 {
			tri.b, tri.c = tri.c, tri.b
			tri.i1, tri.i2 = tri.i2, tri.i1
			tri.area = -tri.area
		}
		tri.box = geom.BoundsOf(tri.a, tri.b, tri.c).Outset(1)
		tris = append(tris, tri)
	}
	if len(tris) == 0 {
		return
	}

	wind := f.planes.scratch(bounds.Area() * samples)
	for i := range tris {
		rasterize(tris[i].a, tris[i].b, tris[i].c, bounds, wind)
	}
	mask := f.resolve(pr, bounds, wind, draw.NonZero)
	f.shade(pr, bounds, mask, func(x, y int) [4]byte {
		q := geom.Pt(float64(x)+0.5, float64(y)+0.5)
		best, bestMin := -1, math.Inf(-1)
		var ba, bb, bc float64
		for i := range tris {
			t := &tris[i]
			if !t.box.Contains(q) {
				continue
			}
			wa, wb, wc := t.weights(q)
			if m := min(wa, wb, wc); m > bestMin {
				best, bestMin = i, m
				ba, bb, bc = wa, wb, wc
			}
		}
		if best < 0 {
			return [4]byte{}
		}
		t := &tris[best]
		u := ba*float64(uv[t.i0*2]) + bb*float64(uv[t.i1*2]) + bc*float64(uv[t.i2*2])
		v := ba*float64(uv[t.i0*2+1]) + bb*float64(uv[t.i1*2+1]) + bc*float64(uv[t.i2*2+1])
		return scale(sampleNearest(tex, 0, float32(u), float32(v)), p.Opacity)
	})
}
