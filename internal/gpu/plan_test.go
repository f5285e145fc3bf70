// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/flush"
	"github.com/gogpu/pls/internal/record"
)

// fanPlan returns a plan over one path whose eight-vertex run fans from
// the contour midpoint.
func fanPlan(pr record.PathRecord, flags uint32) *plan {
	p := &plan{
		paths:    []record.PathRecord{pr},
		paints:   []record.PaintRecord{{}},
		contours: []record.ContourRecord{{Flags: flags}},
	}
	for range 8 {
		p.tess = append(p.tess, record.TessVertex{})
	}
	return p
}

func roles(calls []call) []role {
	out := make([]role, len(calls))
	for i, c := range calls {
		out[i] = c.key.role
	}
	return out
}

func equalRoles(a, b []role) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlanPathPhases(t *testing.T) {
	msaa := caps.Strategy{Mode: caps.MSAA, SampleCount: 4}
	evenOdd := solid(1, 0, 0, 1)
	evenOdd.FillRule = draw.EvenOdd
	winding := mustPath(t, draw.PathParams{Common: common(msaa), Path: star(32, 32, 20), Paint: evenOdd})
	concave := mustPath(t, draw.PathParams{Common: common(msaa), Path: star(32, 32, 20), Paint: solid(1, 0, 0, 1)})
	convex := mustPath(t, draw.PathParams{Common: common(msaa), Path: rect(4, 4, 20, 20), Paint: solid(1, 0, 0, 1)})
	if winding.Coverage() != draw.CoverageStencil || concave.Coverage() != draw.CoverageDirect || concave.Convex() ||
		convex.Coverage() != draw.CoverageDirect || !convex.Convex() {
		t.Fatalf("coverage = %v, %v and %v", winding.Coverage(), concave.Coverage(), convex.Coverage())
	}

	tests := []struct {
		name  string
		d     *draw.Draw
		pr    record.PathRecord
		phase int
		wire  bool
		want  []role
	}{
		{"stencil", winding, record.PathRecord{}, 0, false, []role{roleStencil}},
		{"cover", winding, record.PathRecord{}, 1, false, []role{roleCover}},
		{"clockwise cover", winding, record.PathRecord{FillRule: uint32(draw.Clockwise)}, 1, false,
			[]role{roleRejectNegative, roleCover}},
		{"clip write", winding, record.PathRecord{ClipUpdateID: 2}, 1, false, []role{roleClipWrite}},
		{"nested clip write", winding, record.PathRecord{ClipID: 1, ClipUpdateID: 2}, 1, false,
			[]role{roleClipMask, roleClipWrite}},
		{"direct", convex, record.PathRecord{}, 0, false, []role{roleDirect}},
		{"direct concave", concave, record.PathRecord{}, 0, false,
			[]role{roleBackCount, roleFrontShade, roleBackShade, roleFrontClear}},
		{"wire direct concave", concave, record.PathRecord{}, 0, true, []role{roleWire}},
		{"wire skips stencil", winding, record.PathRecord{}, 0, true, []role{}},
		{"wire cover", winding, record.PathRecord{}, 1, true, []role{roleWire}},
		{"wire keeps clip", winding, record.PathRecord{ClipUpdateID: 2}, 1, true, []role{roleClipWrite}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fanPlan(tt.pr, 0)
			p.wireframe = tt.wire
			el := &flush.Element{Draw: tt.d, Pass: flush.Subpass, Phase: tt.phase, TessCount: 8}
			if err := p.element(flush.PipelineKey{DrawType: draw.TypeMidpointFanPatches, Mode: caps.MSAA}, el); err != nil {
				t.Fatal(err)
			}
			if got := roles(p.calls); !equalRoles(got, tt.want) {
				t.Errorf("roles = %v, want %v", got, tt.want)
			}
			if len(p.args) != 1 {
				t.Errorf("args = %d, want 1", len(p.args))
			}
		})
	}
}

func TestPlanGeometryCounts(t *testing.T) {
	msaa := caps.Strategy{Mode: caps.MSAA, SampleCount: 4}
	evenOdd := solid(1, 0, 0, 1)
	evenOdd.FillRule = draw.EvenOdd
	concave := mustPath(t, draw.PathParams{Common: common(msaa), Path: star(32, 32, 20), Paint: evenOdd})
	pk := flush.PipelineKey{DrawType: draw.TypeInteriorTriangulation, Mode: caps.MSAA}

	p := fanPlan(record.PathRecord{}, 0)
	el := &flush.Element{Draw: concave, Phase: 0, TessCount: 8, TriCount: 9}
	if err := p.element(pk, el); err != nil {
		t.Fatal(err)
	}
	if len(p.calls) != 2 {
		t.Fatalf("calls = %d, want fan and triangles", len(p.calls))
	}
	if c := p.calls[0]; c.key.geom != geomFan || c.count != 21 {
		t.Errorf("fan call = geom %d count %d, want fan with 21 vertices", c.key.geom, c.count)
	}
	if c := p.calls[1]; c.key.geom != geomTris || c.count != 9 {
		t.Errorf("triangle call = geom %d count %d, want 9 vertices", c.key.geom, c.count)
	}

	stroke := fanPlan(record.PathRecord{}, record.ContourStroke)
	stroke.wireframe = true
	el = &flush.Element{Draw: concave, Phase: 1, TessCount: 8}
	if err := stroke.element(pk, el); err != nil {
		t.Fatal(err)
	}
	if c := stroke.calls[0]; c.key.geom != geomStrip || c.count != 12 {
		t.Errorf("stroke wire call = geom %d count %d, want two triangles as 12 line vertices", c.key.geom, c.count)
	}
}

func TestPlanRejectsAtomics(t *testing.T) {
	p := fanPlan(record.PathRecord{}, 0)
	err := p.element(flush.PipelineKey{DrawType: draw.TypeAtomicResolve}, &flush.Element{})
	if err == nil {
		t.Fatal("atomic resolve should not be planned")
	}
}

func TestEntryPoints(t *testing.T) {
	tests := []struct {
		v      variant
		vs, fs string
	}{
		{variant{role: roleStencil, geom: geomFan}, vsFan, fsNone},
		{variant{role: roleWire, geom: geomStrip}, vsStripLines, fsPaint},
		{variant{role: roleCover, geom: geomBounds}, vsCover, fsPaint},
		{variant{role: roleClipWrite, geom: geomBounds}, vsClipWrite, fsNone},
		{variant{role: roleClipReset, geom: geomBounds}, vsClipWrite, fsNone},
		{variant{role: roleMesh, geom: geomMesh}, vsMesh, fsMesh},
		{variant{role: rolePreserve, geom: geomFullscreen}, vsFullscreen, fsPreserve},
	}
	for _, tt := range tests {
		vs, fs := entryPoints(tt.v)
		if vs != tt.vs || fs != tt.fs {
			t.Errorf("entryPoints(%s) = %s, %s; want %s, %s", tt.v.role, vs, fs, tt.vs, tt.fs)
		}
	}
}

func TestDepthStencilStates(t *testing.T) {
	nonzero := depthStencil(variant{role: roleStencil})
	if nonzero.StencilFront.PassOp != hal.StencilOperationIncrementWrap ||
		nonzero.StencilBack.PassOp != hal.StencilOperationDecrementWrap {
		t.Error("nonzero stencil should count front faces up and back faces down")
	}
	evenOdd := depthStencil(variant{role: roleStencil, rule: draw.EvenOdd})
	if evenOdd.StencilFront.PassOp != hal.StencilOperationInvert || evenOdd.StencilWriteMask != 0x01 {
		t.Error("even-odd stencil should invert the low bit")
	}

	cover := depthStencil(variant{role: roleCover, clipped: true})
	if cover.DepthCompare != gputypes.CompareFunctionEqual || cover.DepthWriteEnabled {
		t.Error("clipped cover should test clip ids without writing them")
	}
	if cover.StencilFront.DepthFailOp != hal.StencilOperationZero {
		t.Error("cover should reset winding on samples outside the clip")
	}

	write := depthStencil(variant{role: roleClipWrite})
	if !write.DepthWriteEnabled || write.DepthCompare != gputypes.CompareFunctionAlways {
		t.Error("clip write should store the clip id")
	}
	mask := depthStencil(variant{role: roleClipMask})
	if mask.DepthCompare != gputypes.CompareFunctionNotEqual || mask.DepthWriteEnabled {
		t.Error("clip mask should select samples outside the outer clip")
	}
	reject := depthStencil(variant{role: roleRejectNegative})
	if reject.StencilReadMask != refNegative || reject.StencilFront.Compare != gputypes.CompareFunctionEqual {
		t.Error("reject should match the sign bit of wrapped winding")
	}
}

func TestDirectFillPasses(t *testing.T) {
	msaa := caps.Strategy{Mode: caps.MSAA, SampleCount: 4}
	concave := mustPath(t, draw.PathParams{Common: common(msaa), Path: star(32, 32, 20), Paint: solid(1, 0, 0, 1)})
	p := fanPlan(record.PathRecord{}, 0)
	el := &flush.Element{Draw: concave, Pass: flush.Subpass, TessCount: 8}
	if err := p.element(flush.PipelineKey{DrawType: draw.TypeMidpointFanPatches, Mode: caps.MSAA}, el); err != nil {
		t.Fatal(err)
	}
	wantRefs := []uint32{refZero, refZero, refNegative, refZero}
	wantCull := []gputypes.CullMode{gputypes.CullModeFront, gputypes.CullModeBack, gputypes.CullModeFront, gputypes.CullModeBack}
	if len(p.calls) != len(wantRefs) {
		t.Fatalf("calls = %d, want %d", len(p.calls), len(wantRefs))
	}
	for i, c := range p.calls {
		if c.ref != wantRefs[i] {
			t.Errorf("%s ref = %#x, want %#x", c.key.role, c.ref, wantRefs[i])
		}
		if got := cullMode(c.key.role); got != wantCull[i] {
			t.Errorf("%s cull = %v, want %v", c.key.role, got, wantCull[i])
		}
		if c.key.geom != geomFan || c.count != 21 {
			t.Errorf("%s = geom %d count %d, want the whole fan", c.key.role, c.key.geom, c.count)
		}
	}
	if p.calls[0].key.shades() || !p.calls[1].key.shades() || !p.calls[2].key.shades() || p.calls[3].key.shades() {
		t.Error("only the forward and leftover passes shade")
	}

	count := depthStencil(variant{role: roleBackCount})
	if count.StencilBack.PassOp != hal.StencilOperationDecrementWrap {
		t.Error("backward hits should count down")
	}
	front := depthStencil(variant{role: roleFrontShade})
	if front.StencilFront.Compare != gputypes.CompareFunctionEqual ||
		front.StencilFront.FailOp != hal.StencilOperationIncrementWrap ||
		front.StencilFront.PassOp != hal.StencilOperationIncrementWrap {
		t.Error("forward hits should shade at zero and step every count up")
	}
	back := depthStencil(variant{role: roleBackShade})
	if back.StencilReadMask != refNegative || back.StencilBack.PassOp != hal.StencilOperationZero ||
		back.StencilBack.FailOp != hal.StencilOperationZero {
		t.Error("leftover pass should match the sign bit and zero every sample it touches")
	}
	wipe := depthStencil(variant{role: roleFrontClear})
	if wipe.StencilFront.PassOp != hal.StencilOperationZero {
		t.Error("the last pass should zero the stencil under forward triangles")
	}
	if cullMode(roleStencil) != gputypes.CullModeNone {
		t.Error("winding stencil draws both faces")
	}
}

func TestBlendState(t *testing.T) {
	if !exactBlend(draw.BlendSrcOver) || !exactBlend(draw.BlendScreen) || exactBlend(draw.BlendHue) {
		t.Error("only source-over and screen are exact")
	}
	if got := blendState(draw.BlendSrcOver); got != gputypes.BlendStatePremultiplied() {
		t.Errorf("srcOver = %+v", got)
	}
	if got := blendState(draw.BlendHue); got != gputypes.BlendStatePremultiplied() {
		t.Errorf("hue should fall back to source-over, got %+v", got)
	}
	if got := blendState(draw.BlendLighten).Color.Operation; got != gputypes.BlendOperationMax {
		t.Errorf("lighten operation = %v, want max", got)
	}
	if got := blendState(draw.BlendScreen).Color.DstFactor; got != gputypes.BlendFactorOneMinusSrc {
		t.Errorf("screen dst factor = %v, want one-minus-src", got)
	}
}
