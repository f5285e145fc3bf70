// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tess

import (
	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/record"
)

// Triangulator triangulates the interior polygons of a path: one polygon per
// contour through its segment endpoints. It keeps only the polygons, not the
// triangles; Count is known up front and Emit re-derives the triangles by
// ear clipping.
//
// Any split of a polygon into a triangle of three consecutive vertices plus
// the remaining polygon preserves signed winding, so the output covers the
// interior with the correct winding even when ear clipping has to fall back
// to a plain fan for self-intersecting input.
type Triangulator struct {
	polygons [][]geom.Point
	count    int
}

// NewTriangulator builds the interior polygons of device-space contours.
func NewTriangulator(contours []geom.Contour) *Triangulator {
	t := &Triangulator{}
	for _, c := range contours {
		poly := make([]geom.Point, 0, len(c.Segments)+1)
		poly = appendDistinct(poly, c.Start())
		for _, s := range c.Segments {
			poly = appendDistinct(poly, s.End())
		}
		if len(poly) > 1 && geom.Near(poly[len(poly)-1], poly[0], closeEpsilon) {
			poly = poly[:len(poly)-1]
		}
		if len(poly) < 3 {
			continue
		}
		t.polygons = append(t.polygons, poly)
		t.count += (len(poly) - 2) * 3
	}
	return t
}

func appendDistinct(poly []geom.Point, p geom.Point) []geom.Point {
	if len(poly) > 0 && geom.Near(poly[len(poly)-1], p, closeEpsilon) {
		return poly
	}
	return append(poly, p)
}

// Count returns the number of triangle vertices Emit will write.
func (t *Triangulator) Count() int { return t.count }

// Polygons returns the number of interior polygons.
func (t *Triangulator) Polygons() int { return len(t.polygons) }

// Emit writes the triangles into dst, tagging each vertex with path, and
// returns the number of vertices written, which always equals Count.
func (t *Triangulator) Emit(dst []record.TriangleVertex, path uint32) int {
	n := 0
	put := func(a, b, c geom.Point) {
		dst[n] = record.TriangleVertex{X: float32(a.X), Y: float32(a.Y), Path: path}
		dst[n+1] = record.TriangleVertex{X: float32(b.X), Y: float32(b.Y), Path: path}
		dst[n+2] = record.TriangleVertex{X: float32(c.X), Y: float32(c.Y), Path: path}
		n += 3
	}
	for _, poly := range t.polygons {
		earClip(poly, put)
	}
	return n
}

// earClip emits len(poly)-2 triangles covering poly.
func earClip(poly []geom.Point, put func(a, b, c geom.Point)) {
	n := len(poly)
	next := make([]int, n)
	prev := make([]int, n)
	for i := range poly {
		next[i] = (i + 1) % n
		prev[i] = (i + n - 1) % n
	}
	orient := signedArea(poly)

	remaining := n
	i := 0
	misses := 0
	for remaining > 3 {
		a, b, c := prev[i], i, next[i]
		if isEar(poly, next, a, b, c, orient) {
			put(poly[a], poly[b], poly[c])
			next[a] = c
			prev[c] = a
			remaining--
			i = c
			misses = 0
			continue
		}
		i = next[i]
		misses++
		if misses > remaining {
			// No ear left: the rest is self-intersecting. Fan it.
			first := i
			for v := next[first]; next[v] != first; v = next[v] {
				put(poly[first], poly[v], poly[next[v]])
			}
			return
		}
	}
	put(poly[prev[i]], poly[i], poly[next[i]])
}

// isEar reports whether b is a convex vertex whose triangle contains no
// other remaining vertex.
func isEar(poly []geom.Point, next []int, a, b, c int, orient float64) bool {
	pa, pb, pc := poly[a], poly[b], poly[c]
	cross := geom.Cross(pb.Sub(pa), pc.Sub(pb))
	if cross*orient < 0 {
		return false
	}
	if cross == 0 {
		return true
	}
	for v := next[c]; v != a; v = next[v] {
		if strictlyInside(poly[v], pa, pb, pc) {
			return false
		}
	}
	return true
}

func strictlyInside(p, a, b, c geom.Point) bool {
	d1 := geom.Cross(b.Sub(a), p.Sub(a))
	d2 := geom.Cross(c.Sub(b), p.Sub(b))
	d3 := geom.Cross(a.Sub(c), p.Sub(c))
	return (d1 > 0 && d2 > 0 && d3 > 0) || (d1 < 0 && d2 < 0 && d3 < 0)
}

func signedArea(poly []geom.Point) float64 {
	var a float64
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		a += geom.Cross(p, q)
	}
	return a / 2
}
