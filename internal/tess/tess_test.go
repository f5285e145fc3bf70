// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tess

import (
	"math"
	"testing"

	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/record"
)

func square(x, y, s float64) geom.Contour {
	var p geom.Path
	p.MoveTo(geom.Pt(x, y))
	p.LineTo(geom.Pt(x+s, y))
	p.LineTo(geom.Pt(x+s, y+s))
	p.LineTo(geom.Pt(x, y+s))
	p.Close()
	return p.Contours()[0]
}

func circle(cx, cy, r float64) geom.Contour {
	const k = 0.5522847498
	var p geom.Path
	p.MoveTo(geom.Pt(cx+r, cy))
	p.CubicTo(geom.Pt(cx+r, cy+k*r), geom.Pt(cx+k*r, cy+r), geom.Pt(cx, cy+r))
	p.CubicTo(geom.Pt(cx-k*r, cy+r), geom.Pt(cx-r, cy+k*r), geom.Pt(cx-r, cy))
	p.CubicTo(geom.Pt(cx-r, cy-k*r), geom.Pt(cx-k*r, cy-r), geom.Pt(cx, cy-r))
	p.CubicTo(geom.Pt(cx+k*r, cy-r), geom.Pt(cx+r, cy-k*r), geom.Pt(cx+r, cy))
	p.Close()
	return p.Contours()[0]
}

func TestPaddedRunVertices(t *testing.T) {
	tests := []struct{ n, span, want int }{
		{0, 8, 0},
		{1, 8, 9},
		{8, 8, 9},
		{9, 8, 17},
		{17, 17, 18},
	}
	for _, tt := range tests {
		if got := PaddedRunVertices(tt.n, tt.span); got != tt.want {
			t.Errorf("PaddedRunVertices(%d, %d) = %d, want %d", tt.n, tt.span, got, tt.want)
		}
	}
}

// fanArea sums the signed areas of the fan triangles of every run.
func fanArea(verts []record.TessVertex, contours []record.ContourRecord, firstContour uint32) float64 {
	area := 0.0
	for i := 0; i+1 < len(verts); i++ {
		a, b := verts[i], verts[i+1]
		if a.Span != b.Span {
			continue
		}
		c := contours[a.Contour-firstContour]
		area += 0.5 * float64((a.X-c.MidX)*(b.Y-c.MidY)-(a.Y-c.MidY)*(b.X-c.MidX))
	}
	return area
}

func TestFanCountsMatchEmit(t *testing.T) {
	contours := []geom.Contour{square(0, 0, 10), circle(50, 50, 20)}
	plan := PlanFan(contours, geom.DefaultTolerance)

	dst := make([]record.TessVertex, plan.Vertices)
	const base, first = 100, 7
	if got := plan.Emit(dst, base, first); got != plan.Vertices {
		t.Fatalf("Emit() wrote %d, planned %d", got, plan.Vertices)
	}
	if dst[0].Span != base || dst[0].Contour != first {
		t.Errorf("first vertex span/contour = %d/%d, want %d/%d", dst[0].Span, dst[0].Contour, base, first)
	}

	recs := make([]record.ContourRecord, len(plan.Contours))
	for i, fc := range plan.Contours {
		recs[i] = record.ContourRecord{MidX: float32(fc.Midpoint.X), MidY: float32(fc.Midpoint.Y)}
	}
	got := fanArea(dst, recs, first)
	want := 100 + math.Pi*400
	if math.Abs(got-want) > want*0.02 {
		t.Errorf("fan area = %.2f, want about %.2f", got, want)
	}
}

func TestFanClosesOpenContours(t *testing.T) {
	var p geom.Path
	p.MoveTo(geom.Pt(0, 0))
	p.LineTo(geom.Pt(10, 0))
	p.LineTo(geom.Pt(10, 10))
	plan := PlanFan(p.Contours(), geom.DefaultTolerance)
	if got := plan.Contours[0].Segments; got != 3 {
		t.Errorf("segments = %d, want 3 with the implicit close", got)
	}
}

func TestTriangulatorPreservesArea(t *testing.T) {
	// An L shape has a reflex vertex, so a naive fan would overlap.
	var p geom.Path
	p.MoveTo(geom.Pt(0, 0))
	p.LineTo(geom.Pt(20, 0))
	p.LineTo(geom.Pt(20, 10))
	p.LineTo(geom.Pt(10, 10))
	p.LineTo(geom.Pt(10, 20))
	p.LineTo(geom.Pt(0, 20))
	p.Close()

	tri := NewTriangulator(p.Contours())
	if got, want := tri.Count(), (6-2)*3; got != want {
		t.Fatalf("Count() = %d, want %d", got, want)
	}
	dst := make([]record.TriangleVertex, tri.Count())
	if got := tri.Emit(dst, 3); got != tri.Count() {
		t.Fatalf("Emit() = %d, want %d", got, tri.Count())
	}
	area := 0.0
	for i := 0; i < len(dst); i += 3 {
		a, b, c := dst[i], dst[i+1], dst[i+2]
		if a.Path != 3 {
			t.Fatalf("vertex path = %d, want 3", a.Path)
		}
		area += 0.5 * float64((b.X-a.X)*(c.Y-a.Y)-(b.Y-a.Y)*(c.X-a.X))
	}
	if math.Abs(area-300) > 1e-3 {
		t.Errorf("triangulated area = %v, want 300", area)
	}
}

func TestOuterCurvesSkipLines(t *testing.T) {
	contours := []geom.Contour{square(0, 0, 10), circle(0, 0, 10)}
	plan := PlanOuterCurves(contours, geom.DefaultTolerance)
	if got := plan.Runs(); got != 4 {
		t.Errorf("Runs() = %d, want 4 (one per cubic)", got)
	}
	dst := make([]record.TessVertex, plan.Vertices)
	if got := plan.Emit(dst, 0, 0); got != plan.Vertices {
		t.Errorf("Emit() = %d, want %d", got, plan.Vertices)
	}
	for _, v := range dst {
		if v.Contour != 1 {
			t.Fatalf("outer run tagged with contour %d, want 1", v.Contour)
		}
	}
}

func TestStrokeCounts(t *testing.T) {
	var open geom.Path
	open.MoveTo(geom.Pt(0, 0))
	open.LineTo(geom.Pt(50, 0))
	open.LineTo(geom.Pt(50, 50))

	tests := []struct {
		name      string
		style     StrokeStyle
		wantJoins int
		wantCaps  int
		wantTris  int
	}{
		// 2 edges * 2 + 1 bevel join.
		{"butt bevel", StrokeStyle{Radius: 2, Join: JoinBevel, Cap: CapButt}, 1, 0, 5},
		// 2 edges * 2 + 2 miter + 2 square caps * 2.
		{"square miter", StrokeStyle{Radius: 2, Join: JoinMiter, Cap: CapSquare, MiterLimit: 4}, 3, 2, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanStroke(open.Contours(), geom.Identity(), tt.style, geom.DefaultTolerance)
			if plan.Joins != tt.wantJoins || plan.Caps != tt.wantCaps {
				t.Errorf("joins/caps = %d/%d, want %d/%d", plan.Joins, plan.Caps, tt.wantJoins, tt.wantCaps)
			}
			if plan.Vertices != tt.wantTris*3 {
				t.Errorf("Vertices = %d, want %d", plan.Vertices, tt.wantTris*3)
			}
			dst := make([]record.TessVertex, plan.Vertices)
			if got := plan.Emit(dst, 0, 0); got != plan.Vertices {
				t.Errorf("Emit() = %d, want %d", got, plan.Vertices)
			}
		})
	}
}

func TestStrokeTrianglesArePositive(t *testing.T) {
	plan := PlanStroke([]geom.Contour{circle(0, 0, 30)}, geom.Scale(2, 2),
		StrokeStyle{Radius: 3, Join: JoinRound, Cap: CapRound}, geom.DefaultTolerance)
	dst := make([]record.TessVertex, plan.Vertices)
	plan.Emit(dst, 0, 0)
	for i := 0; i < len(dst); i += 3 {
		a, b, c := dst[i], dst[i+1], dst[i+2]
		if cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X); cross < -1e-3 {
			t.Fatalf("triangle %d has negative orientation", i/3)
		}
	}
}
