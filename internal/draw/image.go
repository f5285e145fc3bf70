// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import (
	"honnef.co/go/safeish"

	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/record"
	"github.com/gogpu/pls/internal/resource"
)

// ImageParams describes an image rectangle. The image covers
// [0, width] x [0, height] in local space.
type ImageParams struct {
	Common
	Texture resource.Texture
	Opacity float32
}

// MeshParams describes an image mesh. Vertices and UVs hold float32 pairs,
// Indices uint16 triangle-list indices.
type MeshParams struct {
	Common
	Texture  resource.Texture
	Vertices resource.RenderBuffer
	UVs      resource.RenderBuffer
	Indices  resource.RenderBuffer
	Opacity  float32
}

type imagePayload struct {
	opacity float32
	mesh    *MeshParams
}

// NewImageRect builds an image rectangle draw. It reports false when the
// image is outside the viewport or fully transparent.
func NewImageRect(p ImageParams) (*Draw, bool) {
	if p.Texture == nil || p.Opacity <= 0 {
		return nil, false
	}
	w, h := float64(p.Texture.Width()), float64(p.Texture.Height())
	box := geom.EmptyAABB()
	for _, c := range [4]geom.Point{geom.Pt(0, 0), geom.Pt(w, 0), geom.Pt(w, h), geom.Pt(0, h)} {
		box.Add(p.Transform.Apply(c))
	}
	d := &Draw{
		kind:      KindImageRect,
		drawType:  TypeImageRect,
		transform: p.Transform,
		blend:     p.Blend,
		clipID:    p.ClipID,
		texture:   p.Texture,
		payload:   &imagePayload{opacity: min(p.Opacity, 1)},
	}
	if !d.place(box, p.Viewport) {
		return nil, false
	}
	d.imageContents()
	d.counters = Counters{Draws: 1, Paths: 1}
	d.finish(p.Strategy)
	return d, true
}

// NewImageMesh builds an image mesh draw.
func NewImageMesh(p MeshParams) (*Draw, bool) {
	if p.Texture == nil || p.Vertices == nil || p.UVs == nil || p.Indices == nil || p.Opacity <= 0 {
		return nil, false
	}
	if len(p.Indices.Bytes()) < 6 {
		return nil, false
	}
	verts := safeish.SliceCast[[]float32](p.Vertices.Bytes())
	box := geom.EmptyAABB()
	for i := 0; i+1 < len(verts); i += 2 {
		box.Add(p.Transform.Apply(geom.Pt(float64(verts[i]), float64(verts[i+1]))))
	}
	mp := p
	d := &Draw{
		kind:      KindImageMesh,
		drawType:  TypeImageMesh,
		transform: p.Transform,
		blend:     p.Blend,
		clipID:    p.ClipID,
		texture:   p.Texture,
		payload:   &imagePayload{opacity: min(p.Opacity, 1), mesh: &mp},
	}
	if !d.place(box, p.Viewport) {
		return nil, false
	}
	d.imageContents()
	d.counters = Counters{Draws: 1, Paths: 1}
	d.finish(p.Strategy)
	return d, true
}

// Mesh returns the buffers of an image mesh draw, or nil.
func (d *Draw) Mesh() (vertices, uvs, indices resource.RenderBuffer) {
	ip, ok := d.payload.(*imagePayload)
	if !ok || ip.mesh == nil {
		return nil, nil, nil
	}
	return ip.mesh.Vertices, ip.mesh.UVs, ip.mesh.Indices
}

// IndexCount returns the number of mesh indices.
func (d *Draw) IndexCount() int {
	_, _, idx := d.Mesh()
	if idx == nil {
		return 0
	}
	return len(idx.Bytes()) / 2 / 3 * 3
}

func (d *Draw) place(box geom.AABB, viewport geom.IAABB) bool {
	if box.IsEmpty() {
		return false
	}
	d.bounds = box.RoundOut().Outset(1).Intersect(viewport)
	return !d.bounds.Empty()
}

func (d *Draw) imageContents() {
	if d.clipID != 0 {
		d.contents |= ContentActiveClip
	}
	if d.blend.Advanced() {
		d.contents |= ContentAdvancedBlend
	}
}

func (ip *imagePayload) emit(d *Draw, e *Emitter) Counters {
	d.pathRecord(e)
	*e.Paint = record.PaintRecord{
		Kind:     record.PaintImage,
		Texture:  d.texture.ID(),
		Opacity:  ip.opacity,
		Inverse:  d.inverse().Float32(),
		Gradient: [4]float32{float32(d.texture.Width()), float32(d.texture.Height())},
	}
	return Counters{Draws: 1, Paths: 1}
}

// ClipResetParams describes a stencil clip reset. Every pixel in Bounds
// gets its clip plane set to ResetTo.
type ClipResetParams struct {
	Bounds   geom.IAABB
	ResetTo  uint32
	Strategy caps.Strategy
	Viewport geom.IAABB
}

type clipResetPayload struct {
	resetTo uint32
}

// NewStencilClipReset builds a clip reset draw.
func NewStencilClipReset(p ClipResetParams) (*Draw, bool) {
	d := &Draw{
		kind:      KindStencilClipReset,
		drawType:  TypeStencilClipReset,
		bounds:    p.Bounds.Intersect(p.Viewport),
		transform: geom.Identity(),
		contents:  ContentClipUpdate,
		payload:   &clipResetPayload{resetTo: p.ResetTo},
	}
	if d.bounds.Empty() {
		return nil, false
	}
	d.counters = Counters{Draws: 1, Paths: 1}
	d.finish(p.Strategy)
	return d, true
}

// ResetTo returns the clip value a clip reset writes.
func (d *Draw) ResetTo() uint32 {
	if cp, ok := d.payload.(*clipResetPayload); ok {
		return cp.resetTo
	}
	return 0
}

func (cp *clipResetPayload) emit(d *Draw, e *Emitter) Counters {
	d.pathRecord(e)
	e.Path.ClipUpdateID = cp.resetTo
	*e.Paint = record.PaintRecord{Kind: record.PaintClip, Opacity: 1}
	return Counters{Draws: 1, Paths: 1}
}
