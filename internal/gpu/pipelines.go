// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/flush"
)

// role is the job of one draw call. A flush pipeline key expands into a
// role per step of stencil-then-cover.
type role uint8

const (
	// roleStencil accumulates winding in the stencil without color.
	roleStencil role = iota
	// roleCover shades the bounds where the stencil is inside and zeroes it.
	roleCover
	// roleDirect shades the tessellation with no stencil test.
	roleDirect
	// roleBackCount counts backward triangle hits down from zero.
	roleBackCount
	// roleFrontShade shades forward hits that no backward hit cancels.
	roleFrontShade
	// roleBackShade shades what backward hits have left over and zeroes
	// the stencil under them.
	roleBackShade
	// roleFrontClear zeroes the stencil under forward triangles.
	roleFrontClear
	// roleClipMask zeroes winding outside the clip a nested clip intersects.
	roleClipMask
	// roleRejectNegative zeroes negative winding before a clockwise cover.
	roleRejectNegative
	// roleClipWrite writes a clip id into depth where the stencil is inside.
	roleClipWrite
	// roleClipReset writes a clip id over the bounds unconditionally.
	roleClipReset
	roleImage
	roleMesh
	// roleWire draws triangle edges.
	roleWire
	// rolePreserve copies an uploaded target into the color attachment.
	rolePreserve
)

var roleNames = [...]string{"stencil", "cover", "direct", "backCount", "frontShade", "backShade",
	"frontClear", "clipMask", "rejectNegative", "clipWrite", "clipReset", "image", "mesh", "wire", "preserve"}

func (r role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("role(%d)", r)
}

// geometry selects how the vertex stage finds its vertices.
type geometry uint8

const (
	geomFan geometry = iota
	geomStrip
	geomTris
	geomBounds
	geomImageRect
	geomMesh
	geomFullscreen
)

// variant is the fixed-function state of one draw call.
type variant struct {
	role    role
	geom    geometry
	rule    draw.FillRule
	blend   draw.BlendMode
	clipped bool
}

// pipelineKey identifies a cached render pipeline.
type pipelineKey struct {
	flush.PipelineKey
	variant
}

func (k pipelineKey) label() string {
	return fmt.Sprintf("pls_%s_%s_g%d_r%d_b%d", k.PipelineKey, k.role, k.geom, k.rule, k.blend)
}

// entryPoints returns the vertex and fragment entry points of v.
func entryPoints(v variant) (vs, fs string) {
	lines := v.role == roleWire
	switch v.geom {
	case geomFan:
		vs = pick(lines, vsFanLines, vsFan)
	case geomStrip:
		vs = pick(lines, vsStripLines, vsStrip)
	case geomTris:
		vs = pick(lines, vsTrisLines, vsTris)
	case geomBounds:
		vs = pick(v.role == roleClipWrite || v.role == roleClipReset, vsClipWrite, vsCover)
	case geomImageRect:
		vs = vsImageRect
	case geomMesh:
		vs = vsMesh
	case geomFullscreen:
		vs = vsFullscreen
	}
	switch v.role {
	case roleCover, roleDirect, roleFrontShade, roleBackShade, roleImage, roleWire:
		fs = fsPaint
	case roleMesh:
		fs = fsMesh
	case rolePreserve:
		fs = fsPreserve
	default:
		fs = fsNone
	}
	return vs, fs
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

// shades reports whether v writes color.
func (v variant) shades() bool {
	switch v.role {
	case roleCover, roleDirect, roleFrontShade, roleBackShade, roleImage, roleMesh, roleWire, rolePreserve:
		return true
	}
	return false
}

// cullMode keeps the one face a direct fill pass draws. Front faces wind
// forward, matching the increment of roleStencil.
func cullMode(r role) gputypes.CullMode {
	switch r {
	case roleBackCount, roleBackShade:
		return gputypes.CullModeFront
	case roleFrontShade, roleFrontClear:
		return gputypes.CullModeBack
	}
	return gputypes.CullModeNone
}

// exactBlend reports whether fixed-function blending reproduces mode
// exactly. The rest are approximated.
func exactBlend(mode draw.BlendMode) bool {
	return mode == draw.BlendSrcOver || mode == draw.BlendScreen
}

// blendState maps a blend mode onto fixed-function blending over
// premultiplied color. Modes without a fixed-function form fall back to
// source-over.
func blendState(mode draw.BlendMode) gputypes.BlendState {
	state := gputypes.BlendStatePremultiplied()
	switch mode {
	case draw.BlendScreen:
		state.Color = gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOneMinusSrc,
			Operation: gputypes.BlendOperationAdd,
		}
	case draw.BlendMultiply:
		// Exact for opaque destinations.
		state.Color = gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorDst,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		}
	case draw.BlendDarken:
		state.Color = gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOne,
			Operation: gputypes.BlendOperationMin,
		}
	case draw.BlendLighten:
		state.Color = gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOne,
			Operation: gputypes.BlendOperationMax,
		}
	}
	return state
}

func stencilFace(compare gputypes.CompareFunction, pass, depthFail hal.StencilOperation) hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     compare,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: depthFail,
		PassOp:      pass,
	}
}

// depthStencil returns the depth and stencil state of v. Depth holds the
// clip id of each sample; the stencil holds winding.
func depthStencil(v variant) *hal.DepthStencilState {
	keep := stencilFace(gputypes.CompareFunctionAlways, hal.StencilOperationKeep, hal.StencilOperationKeep)
	ds := &hal.DepthStencilState{
		Format:           stencilFormat,
		DepthCompare:     gputypes.CompareFunctionAlways,
		StencilFront:     keep,
		StencilBack:      keep,
		StencilReadMask:  0xFF,
		StencilWriteMask: 0xFF,
	}
	if v.clipped {
		ds.DepthCompare = gputypes.CompareFunctionEqual
	}

	switch v.role {
	case roleStencil:
		if v.rule == draw.EvenOdd {
			invert := stencilFace(gputypes.CompareFunctionAlways, hal.StencilOperationInvert, hal.StencilOperationKeep)
			ds.StencilFront, ds.StencilBack = invert, invert
			ds.StencilWriteMask = 0x01
			break
		}
		ds.StencilFront = stencilFace(gputypes.CompareFunctionAlways, hal.StencilOperationIncrementWrap, hal.StencilOperationKeep)
		ds.StencilBack = stencilFace(gputypes.CompareFunctionAlways, hal.StencilOperationDecrementWrap, hal.StencilOperationKeep)

	case roleCover, roleClipWrite:
		// Samples outside the clip still reset their winding.
		cover := stencilFace(gputypes.CompareFunctionNotEqual, hal.StencilOperationZero, hal.StencilOperationZero)
		ds.StencilFront, ds.StencilBack = cover, cover
		if v.rule == draw.EvenOdd {
			ds.StencilReadMask = 0x01
		}
		if v.role == roleClipWrite {
			ds.DepthCompare = gputypes.CompareFunctionAlways
			ds.DepthWriteEnabled = true
		}

	case roleBackCount:
		count := stencilFace(gputypes.CompareFunctionAlways, hal.StencilOperationDecrementWrap, hal.StencilOperationKeep)
		ds.StencilFront, ds.StencilBack = count, count

	case roleFrontShade:
		// Zero means no backward hit is left and nothing shaded yet. Every
		// hit steps up, so uncancelled counts climb toward zero and a
		// shaded sample moves away from it.
		step := hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionEqual,
			FailOp:      hal.StencilOperationIncrementWrap,
			DepthFailOp: hal.StencilOperationIncrementWrap,
			PassOp:      hal.StencilOperationIncrementWrap,
		}
		ds.StencilFront, ds.StencilBack = step, step

	case roleBackShade:
		// Counts left below zero have the sign bit set. Winding magnitudes
		// stay under 128.
		ds.StencilReadMask = 0x80
		left := hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionEqual,
			FailOp:      hal.StencilOperationZero,
			DepthFailOp: hal.StencilOperationZero,
			PassOp:      hal.StencilOperationZero,
		}
		ds.StencilFront, ds.StencilBack = left, left

	case roleFrontClear:
		zero := stencilFace(gputypes.CompareFunctionAlways, hal.StencilOperationZero, hal.StencilOperationZero)
		ds.StencilFront, ds.StencilBack = zero, zero

	case roleClipMask:
		// Drawn at the depth of the clip being intersected, so only samples
		// outside it pass.
		ds.DepthCompare = gputypes.CompareFunctionNotEqual
		zero := stencilFace(gputypes.CompareFunctionAlways, hal.StencilOperationZero, hal.StencilOperationKeep)
		ds.StencilFront, ds.StencilBack = zero, zero

	case roleRejectNegative:
		// Reference 0x80 matches winding that wrapped below zero.
		ds.StencilReadMask = 0x80
		reject := stencilFace(gputypes.CompareFunctionEqual, hal.StencilOperationZero, hal.StencilOperationKeep)
		ds.StencilFront, ds.StencilBack = reject, reject

	case roleClipReset:
		ds.DepthCompare = gputypes.CompareFunctionAlways
		ds.DepthWriteEnabled = true
	}
	return ds
}

func meshBuffers() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: 8,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
			},
		},
		{
			ArrayStride: 8,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 1}, // uv
			},
		},
	}
}

// pipeline returns the cached pipeline for k, creating it on first use.
func (e *Executor) pipeline(k pipelineKey) (hal.RenderPipeline, error) {
	return e.pipelines.GetOrCreate(k, func() (hal.RenderPipeline, error) {
		return e.createPipeline(k)
	})
}

func (e *Executor) createPipeline(k pipelineKey) (hal.RenderPipeline, error) {
	vs, fs := entryPoints(k.variant)

	target := gputypes.ColorTargetState{Format: colorFormat, WriteMask: gputypes.ColorWriteMaskNone}
	if k.shades() {
		target.WriteMask = gputypes.ColorWriteMaskAll
		if k.role != rolePreserve {
			blend := blendState(k.blend)
			target.Blend = &blend
			if !exactBlend(k.blend) {
				slogger().Warn("gpu: blend mode approximated with fixed-function blending", "blend", int(k.blend))
			}
		}
	}

	topology := gputypes.PrimitiveTopologyTriangleList
	if k.role == roleWire {
		topology = gputypes.PrimitiveTopologyLineList
	}

	var buffers []gputypes.VertexBufferLayout
	if k.geom == geomMesh {
		buffers = meshBuffers()
	}

	p, err := e.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  k.label(),
		Layout: e.layouts.pipeline,
		Vertex: hal.VertexState{
			Module:     e.shader,
			EntryPoint: vs,
			Buffers:    buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     e.shader,
			EntryPoint: fs,
			Targets:    []gputypes.ColorTargetState{target},
		},
		DepthStencil: depthStencil(k.variant),
		Multisample: gputypes.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: topology,
			CullMode: cullMode(k.role),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPipelineCreation, k.label(), err)
	}
	slogger().Debug("gpu: pipeline created", "key", k.label(), "vs", vs, "fs", fs)
	return p, nil
}

// layouts are the bind group and pipeline layouts every pipeline shares.
type layouts struct {
	// frame is group 0: the flush uniforms, the record rings and the draw
	// arguments.
	frame hal.BindGroupLayout
	// image is group 1: one image's texels.
	image    hal.BindGroupLayout
	pipeline hal.PipelineLayout
}

// frameBindings is the number of group 0 bindings: uniforms, six record
// rings and the draw arguments.
const frameBindings = 8

func createLayouts(device hal.Device) (layouts, error) {
	var l layouts
	visible := gputypes.ShaderStageVertex | gputypes.ShaderStageFragment

	entries := make([]gputypes.BindGroupLayoutEntry, frameBindings)
	for i := range entries {
		kind := gputypes.BufferBindingTypeReadOnlyStorage
		if i == 0 {
			kind = gputypes.BufferBindingTypeUniform
		}
		entries[i] = gputypes.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: visible,
			Buffer:     &gputypes.BufferBindingLayout{Type: kind},
		}
	}
	var err error
	l.frame, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "pls_frame_layout",
		Entries: entries,
	})
	if err != nil {
		return l, fmt.Errorf("create frame layout: %w", err)
	}

	l.image, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "pls_image_layout",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		}},
	})
	if err != nil {
		l.destroy(device)
		return l, fmt.Errorf("create image layout: %w", err)
	}

	l.pipeline, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "pls_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{l.frame, l.image},
	})
	if err != nil {
		l.destroy(device)
		return l, fmt.Errorf("create pipeline layout: %w", err)
	}
	return l, nil
}

func (l *layouts) destroy(device hal.Device) {
	if l.pipeline != nil {
		device.DestroyPipelineLayout(l.pipeline)
	}
	if l.image != nil {
		device.DestroyBindGroupLayout(l.image)
	}
	if l.frame != nil {
		device.DestroyBindGroupLayout(l.frame)
	}
	*l = layouts{}
}
