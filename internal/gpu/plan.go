// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/flush"
	"github.com/gogpu/pls/internal/record"
	"github.com/gogpu/pls/internal/ring"
)

// drawArgs is read by the vertex stage through instance_index. It matches
// DrawArgs in pls.wgsl.
type drawArgs struct {
	Path uint32
	Tess uint32
	Tris uint32
	Pad  uint32
}

// Stencil references.
const (
	refZero     = 0x00
	refNegative = 0x80
)

// call is one draw call of a flush.
type call struct {
	key pipelineKey
	// count is the vertex count, or the index count for meshes.
	count uint32
	arg   uint32
	ref   uint32
	// imageID names the texture bound as group 1, zero for none.
	imageID uint32
	image   hal.BindGroup
	mesh    *mesh
}

type mesh struct {
	vertices, uvs, indices hal.Buffer
}

// plan turns the commands of one flush into draw calls and their
// arguments. It reads the records back from the ring host copies.
type plan struct {
	e         *Executor
	paths     []record.PathRecord
	paints    []record.PaintRecord
	contours  []record.ContourRecord
	tess      []record.TessVertex
	wireframe bool

	args  []drawArgs
	calls []call
}

func (e *Executor) newPlan(d *flush.Descriptor) *plan {
	slot := func(k ring.Kind) []byte {
		return e.backings[k].Map(d.Slots[k])
	}
	p := &plan{
		e:        e,
		paths:    ring.View[record.PathRecord](slot(ring.Paths)),
		paints:   ring.View[record.PaintRecord](slot(ring.Paints)),
		contours: ring.View[record.ContourRecord](slot(ring.Contours)),
		tess:     ring.View[record.TessVertex](slot(ring.Tess)),
	}
	uniforms := ring.View[record.FlushUniforms](slot(ring.Uniforms))
	p.wireframe = uniforms[0].Flags&record.FlushWireframe != 0
	return p
}

func (p *plan) build(d *flush.Descriptor) error {
	for i := range d.Commands {
		cmd := &d.Commands[i]
		switch cmd.Kind {
		case flush.CmdBarrier:
			// Draws within one render pass already run in order.
		case flush.CmdBatch:
			for j := range cmd.Elements {
				if err := p.element(cmd.Pipeline, &cmd.Elements[j]); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("%w: %s command", ErrUnsupportedMode, cmd.Kind)
		}
	}
	return nil
}

func (p *plan) add(pk flush.PipelineKey, v variant, count, arg, ref uint32) *call {
	p.calls = append(p.calls, call{key: pipelineKey{pk, v}, count: count, arg: arg, ref: ref})
	return &p.calls[len(p.calls)-1]
}

func (p *plan) element(pk flush.PipelineKey, el *flush.Element) error {
	pr := &p.paths[el.PathID]
	p.args = append(p.args, drawArgs{Path: el.PathID, Tess: el.TessOffset, Tris: el.TriOffset})
	arg := uint32(len(p.args) - 1)
	clipped := pr.ClipID != 0
	blend := draw.BlendMode(pr.BlendMode)

	switch pk.DrawType {
	case draw.TypeMidpointFanPatches, draw.TypeInteriorTriangulation:
		p.path(pk, el, pr, arg)
	case draw.TypeStencilClipReset:
		p.add(pk, variant{role: roleClipReset, geom: geomBounds}, 6, arg, refZero)
	case draw.TypeImageRect:
		tex := p.image(pr)
		if tex == nil {
			return nil
		}
		c := p.add(pk, variant{role: roleImage, geom: geomImageRect, blend: blend, clipped: clipped}, 6, arg, refZero)
		c.imageID, c.image = tex.ID(), tex.binding.group
	case draw.TypeImageMesh:
		tex := p.image(pr)
		m := meshOf(el.Draw)
		if tex == nil || m == nil {
			return nil
		}
		c := p.add(pk, variant{role: roleMesh, geom: geomMesh, blend: blend, clipped: clipped},
			uint32(el.Draw.IndexCount()), arg, refZero)
		c.imageID, c.image = tex.ID(), tex.binding.group
		c.mesh = m
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDrawType, pk.DrawType)
	}
	return nil
}

func (p *plan) image(pr *record.PathRecord) *texture {
	tex := p.e.texture(p.paints[pr.Paint].Texture)
	if tex == nil {
		slogger().Debug("gpu: image draw without texture", "texture", p.paints[pr.Paint].Texture)
	}
	return tex
}

func meshOf(d *draw.Draw) *mesh {
	v, uv, idx := d.Mesh()
	vb, ok1 := v.(*renderBuffer)
	ub, ok2 := uv.(*renderBuffer)
	ib, ok3 := idx.(*renderBuffer)
	if !ok1 || !ok2 || !ok3 {
		slogger().Warn("gpu: image mesh buffers were not created by this executor")
		return nil
	}
	return &mesh{vertices: vb.buf, uvs: ub.buf, indices: ib.buf}
}

// path expands one phase of a path draw. Stencil draws take two subpasses:
// winding into the stencil, then a cover over the bounds. Direct draws
// shade their triangles in one.
func (p *plan) path(pk flush.PipelineKey, el *flush.Element, pr *record.PathRecord, arg uint32) {
	rule := draw.FillRule(pr.FillRule)
	clipUpdate := pr.ClipUpdateID != 0
	wire := (p.wireframe || pk.Misc&caps.MiscWireframe != 0) && !clipUpdate
	shade := variant{blend: draw.BlendMode(pr.BlendMode), clipped: pr.ClipID != 0}

	if el.Draw.Coverage() == draw.CoverageDirect {
		switch {
		case wire:
			shade.role = roleWire
			p.geometry(pk, el, shade, arg, refZero)
		case el.Draw.Convex():
			shade.role = roleDirect
			p.geometry(pk, el, shade, arg, refZero)
		default:
			// Backward hits are counted first and cancel forward hits one
			// for one, so each sample shades once where winding is nonzero.
			p.geometry(pk, el, variant{role: roleBackCount}, arg, refZero)
			shade.role = roleFrontShade
			p.geometry(pk, el, shade, arg, refZero)
			shade.role = roleBackShade
			p.geometry(pk, el, shade, arg, refNegative)
			p.geometry(pk, el, variant{role: roleFrontClear}, arg, refZero)
		}
		return
	}
	if el.Phase == 0 {
		if !wire {
			p.geometry(pk, el, variant{role: roleStencil, rule: rule}, arg, refZero)
		}
		return
	}
	if wire {
		shade.role = roleWire
		p.geometry(pk, el, shade, arg, refZero)
		return
	}

	if clipUpdate && pr.ClipID != 0 {
		// Drawn at the outer clip's depth; zeroes winding outside it.
		p.add(pk, variant{role: roleClipMask, geom: geomBounds}, 6, arg, refZero)
	}
	if rule == draw.Clockwise {
		p.add(pk, variant{role: roleRejectNegative, geom: geomBounds}, 6, arg, refNegative)
	}
	if clipUpdate {
		p.add(pk, variant{role: roleClipWrite, geom: geomBounds, rule: rule}, 6, arg, refZero)
		return
	}
	shade.role, shade.geom, shade.rule = roleCover, geomBounds, rule
	p.add(pk, shade, 6, arg, refZero)
}

// geometry emits the tessellated triangles of el with v and stencil
// reference ref. Stroke runs are triangle lists, fill runs are fans, and
// interior triangulations add their own triangle list.
func (p *plan) geometry(pk flush.PipelineKey, el *flush.Element, v variant, arg, ref uint32) {
	lines := v.role == roleWire
	vertices := func(tris uint32) uint32 {
		if lines {
			return tris * 6
		}
		return tris * 3
	}
	if el.TessCount > 0 {
		first := &p.tess[el.TessOffset]
		g := v
		if p.contours[first.Contour].Flags&record.ContourStroke != 0 {
			g.geom = geomStrip
			p.add(pk, g, vertices(el.TessCount/3), arg, ref)
		} else if el.TessCount >= 2 {
			g.geom = geomFan
			p.add(pk, g, vertices(el.TessCount-1), arg, ref)
		}
	}
	if el.TriCount >= 3 {
		g := v
		g.geom = geomTris
		p.add(pk, g, vertices(el.TriCount/3), arg, ref)
	}
}
