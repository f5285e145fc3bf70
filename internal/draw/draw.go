// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import (
	"fmt"

	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/record"
	"github.com/gogpu/pls/internal/resource"
)

// Draw is one immutable unit of work in a frame. The variant payload holds
// the geometry; the fields here are what the flush sorts and batches on.
type Draw struct {
	kind      Kind
	drawType  Type
	bounds    geom.IAABB
	transform geom.Affine
	blend     BlendMode
	clipID    uint32
	contents  Contents
	features  caps.ShaderFeatures
	coverage  CoverageType
	counters  Counters
	prepasses int
	subpasses int
	texture   resource.Texture
	// simple marks a nonzero fan fill that MSAA draws without a separate
	// cover over its bounds.
	simple bool
	// convex marks a simple fill whose fan triangles never overlap.
	convex bool

	payload payload
}

// payload is implemented by every variant.
type payload interface {
	emit(d *Draw, e *Emitter) Counters
}

// Emitter is the window of ring memory assigned to one draw. Every slice is
// exactly as long as the matching counter.
type Emitter struct {
	PathID         uint32
	Path           *record.PathRecord
	Paint          *record.PaintRecord
	FirstContour   uint32
	Contours       []record.ContourRecord
	TessBase       uint32
	Tess           []record.TessVertex
	Triangles      []record.TriangleVertex
	SpanBase       uint32
	Spans          []record.GradientSpan
	CoverageOffset uint32
}

// Common are the parameters shared by every draw variant.
type Common struct {
	Transform geom.Affine
	Blend     BlendMode
	// ClipID restricts the draw to pixels whose clip plane holds this id.
	// Zero means unclipped.
	ClipID   uint32
	Strategy caps.Strategy
	Viewport geom.IAABB
}

// Kind returns the variant tag.
func (d *Draw) Kind() Kind { return d.kind }

// Type returns the draw type.
func (d *Draw) Type() Type { return d.drawType }

// Bounds returns the pixel bounds, already clipped to the viewport.
func (d *Draw) Bounds() geom.IAABB { return d.bounds }

// Transform returns the draw's transform.
func (d *Draw) Transform() geom.Affine { return d.transform }

// Blend returns the blend mode.
func (d *Draw) Blend() BlendMode { return d.blend }

// ClipID returns the clip the draw is tested against.
func (d *Draw) ClipID() uint32 { return d.clipID }

// Contents returns the content flags.
func (d *Draw) Contents() Contents { return d.contents }

// Features returns the shader features the draw needs under its strategy.
func (d *Draw) Features() caps.ShaderFeatures { return d.features }

// Coverage returns how the draw's coverage is resolved.
func (d *Draw) Coverage() CoverageType { return d.coverage }

// Counters returns the ring resources the draw consumes.
func (d *Draw) Counters() Counters { return d.counters }

// Prepasses returns the number of prepass phases.
func (d *Draw) Prepasses() int { return d.prepasses }

// Convex reports whether the draw is a nonzero fill of one convex polygon,
// whose fan triangles never overlap.
func (d *Draw) Convex() bool { return d.convex }

// Subpasses returns the number of subpass phases.
func (d *Draw) Subpasses() int { return d.subpasses }

// Texture returns the sampled texture of image draws, or nil.
func (d *Draw) Texture() resource.Texture { return d.texture }

// TextureID returns the texture id used in sort keys. Untextured draws
// report zero.
func (d *Draw) TextureID() uint32 {
	if d.texture == nil {
		return 0
	}
	return d.texture.ID()
}

// Emit writes the draw's records through e and returns what it wrote.
// The flush compares the result with Counters.
func (d *Draw) Emit(e *Emitter) Counters {
	return d.payload.emit(d, e)
}

// String describes the draw for logs and test failures.
func (d *Draw) String() string {
	return fmt.Sprintf("%s/%s bounds=%v clip=%d pre=%d sub=%d", d.kind, d.drawType, d.bounds, d.clipID, d.prepasses, d.subpasses)
}

// finish derives the pass structure and shader features from the fields
// already set by a variant constructor.
func (d *Draw) finish(s caps.Strategy) {
	MustSupport(s.Mode, d.drawType)
	d.prepasses, d.subpasses, d.coverage = passCounts(s.Mode, d.kind, d.simple)
	if d.coverage == CoverageAtomic {
		d.counters.CoverageSamples = d.bounds.Area() * CoverageSamplesPerPixel
	}

	var f caps.ShaderFeatures
	if d.clipID != 0 || d.contents&ContentClipUpdate != 0 {
		f |= caps.FeatureClipping
	}
	if d.clipID != 0 && d.contents&ContentClipUpdate != 0 {
		f |= caps.FeatureNestedClipping
	}
	if d.blend.Advanced() {
		f |= caps.FeatureAdvancedBlend
	}
	if d.blend.HSL() {
		f |= caps.FeatureHSLBlendModes
	}
	if d.contents&ContentEvenOdd != 0 {
		f |= caps.FeatureEvenOdd
	}
	if d.contents&ContentFeather != 0 {
		f |= caps.FeatureFeather
	}
	d.features = f & s.Features
}

// passCounts is the pass structure of each variant under each mode.
func passCounts(mode caps.InterlockMode, k Kind, simple bool) (pre, sub int, cov CoverageType) {
	if k != KindPath {
		if mode == caps.MSAA {
			return 0, 1, CoverageDirect
		}
		return 0, 1, CoverageNone
	}
	switch mode {
	case caps.RasterOrdering, caps.LoadStore:
		return 0, 1, CoveragePLS
	case caps.Atomics:
		return 1, 1, CoverageAtomic
	case caps.MSAA:
		if simple {
			return 0, 1, CoverageDirect
		}
		// Other fills and strokes resolve winding in the stencil before
		// covering.
		return 0, 2, CoverageStencil
	default:
		panic(fmt.Sprintf("draw: unknown interlock mode %d", mode))
	}
}

// pathRecord fills the fields of a path record common to every variant.
func (d *Draw) pathRecord(e *Emitter) {
	*e.Path = record.PathRecord{
		Matrix:         d.transform.Float32(),
		Bounds:         [4]int32{d.bounds.L, d.bounds.T, d.bounds.R, d.bounds.B},
		Contents:       uint32(d.contents),
		ClipID:         d.clipID,
		BlendMode:      uint32(d.blend),
		Paint:          e.PathID,
		CoverageOffset: e.CoverageOffset,
	}
}

// inverse returns the device-to-local transform, or the identity for
// singular transforms, which never cover any pixel.
func (d *Draw) inverse() geom.Affine {
	inv, ok := d.transform.Invert()
	if !ok {
		return geom.Identity()
	}
	return inv
}
