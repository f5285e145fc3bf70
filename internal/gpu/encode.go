// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"honnef.co/go/safeish"

	"github.com/gogpu/pls/internal/flush"
	"github.com/gogpu/pls/internal/ring"
)

// readbackTimeout bounds the wait for a flush whose pixels are copied out.
const readbackTimeout = 5 * time.Second

// frameKinds maps group 0 bindings 0 to 6 onto rings. Binding 7 holds the
// draw arguments.
var frameKinds = [frameBindings - 1]ring.Kind{
	ring.Uniforms, ring.Paths, ring.Paints, ring.Contours, ring.Tess, ring.Triangles, ring.Gradients,
}

// flushResources are the objects one flush owns until it completes.
type flushResources struct {
	serial   uint64
	args     hal.Buffer
	frame    hal.BindGroup
	preserve imageBinding
	staging  hal.Buffer
	cmd      hal.CommandBuffer
}

func (r *flushResources) destroy(device hal.Device) {
	if r.cmd != nil {
		device.FreeCommandBuffer(r.cmd)
	}
	if r.frame != nil {
		device.DestroyBindGroup(r.frame)
	}
	if r.args != nil {
		device.DestroyBuffer(r.args)
	}
	if r.staging != nil {
		device.DestroyBuffer(r.staging)
	}
	r.preserve.destroy(device)
	*r = flushResources{serial: r.serial}
}

// encodeAndSubmit records one render pass for the flush, submits it and,
// for image targets, reads the resolved pixels back.
func (e *Executor) encodeAndSubmit(d *flush.Descriptor, res *flushResources, fresh bool, img *image.RGBA, surface hal.TextureView) error {
	p := e.newPlan(d)
	if err := p.build(d); err != nil {
		return err
	}
	if err := e.bindFrame(d, p, res); err != nil {
		return err
	}

	preserve := d.Index == 0 && d.LoadAction == flush.LoadPreserve
	if preserve && img != nil {
		var err error
		res.preserve, err = newImageBinding(e.device, e.queue, e.layouts.image, "pls_preserve",
			packImage(img, d.Frame.Width, d.Frame.Height))
		if err != nil {
			return err
		}
	}

	encoder, err := e.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "pls_flush_encoder"})
	if err != nil {
		return fmt.Errorf("%w: command encoder: %w", ErrResourceCreation, err)
	}
	if err := encoder.BeginEncoding(fmt.Sprintf("pls_flush_%d", d.Serial)); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	resolve := surface
	if img != nil {
		resolve = e.targets.resolve.view
	}
	rp := encoder.BeginRenderPass(e.passDescriptor(d, fresh, img != nil, resolve))
	rp.SetBindGroup(0, res.frame, nil)
	rp.SetBindGroup(1, e.blank.group, nil)

	if res.preserve.group != nil {
		pipe, err := e.pipeline(pipelineKey{variant: variant{role: rolePreserve, geom: geomFullscreen}})
		if err != nil {
			rp.End()
			encoder.DiscardEncoding()
			return err
		}
		rp.SetPipeline(pipe)
		rp.SetBindGroup(1, res.preserve.group, nil)
		rp.Draw(3, 1, 0, 0)
		rp.SetBindGroup(1, e.blank.group, nil)
	}

	if err := e.record(rp, p.calls); err != nil {
		rp.End()
		encoder.DiscardEncoding()
		return err
	}
	rp.End()

	var pitch uint32
	if img != nil {
		if pitch, err = e.encodeCopy(encoder, res); err != nil {
			encoder.DiscardEncoding()
			return err
		}
	}

	res.cmd, err = encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	if err := e.queue.Submit([]hal.CommandBuffer{res.cmd}, e.timeline.fence, d.Serial); err != nil {
		return fmt.Errorf("submit flush %d: %w", d.Serial, err)
	}
	e.timeline.submit(d.Serial)

	if img != nil {
		return e.readback(d, res, pitch, img)
	}
	return nil
}

// bindFrame uploads the draw arguments and binds them with the ring slots
// of this flush.
func (e *Executor) bindFrame(d *flush.Descriptor, p *plan, res *flushResources) error {
	if len(p.args) == 0 {
		p.args = append(p.args, drawArgs{})
	}
	data := safeish.SliceCast[[]byte](p.args)
	var err error
	res.args, err = e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "pls_draw_args",
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: draw args: %w", ErrResourceCreation, err)
	}
	e.queue.WriteBuffer(res.args, 0, data)

	entries := make([]gputypes.BindGroupEntry, 0, frameBindings)
	for i, kind := range frameKinds {
		b := e.backings[kind]
		if b == nil {
			return fmt.Errorf("%w: no %s ring", ErrResourceCreation, kind)
		}
		entries = append(entries, gputypes.BindGroupEntry{Binding: uint32(i), Resource: b.binding(d.Slots[kind])})
	}
	entries = append(entries, gputypes.BindGroupEntry{
		Binding:  frameBindings - 1,
		Resource: gputypes.BufferBinding{Buffer: res.args.NativeHandle(), Offset: 0, Size: uint64(len(data))},
	})
	res.frame, err = e.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "pls_frame_group",
		Layout:  e.layouts.frame,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%w: frame bind group: %w", ErrResourceCreation, err)
	}
	return nil
}

// passDescriptor loads what earlier flushes of the frame left behind and
// stores everything for the flushes after it.
func (e *Executor) passDescriptor(d *flush.Descriptor, fresh, readback bool, resolve hal.TextureView) *hal.RenderPassDescriptor {
	colorLoad, clipLoad := gputypes.LoadOpLoad, gputypes.LoadOpLoad
	var clearColor gputypes.Color
	if d.Index == 0 || fresh {
		clipLoad = gputypes.LoadOpClear
		colorLoad = gputypes.LoadOpClear
		switch {
		case d.Index == 0 && d.LoadAction == flush.LoadClear:
			c := d.Frame.ClearColor
			a := float64(min(max(c[3], 0), 1))
			clearColor = gputypes.Color{R: float64(c[0]) * a, G: float64(c[1]) * a, B: float64(c[2]) * a, A: a}
		case !readback && !fresh && d.LoadAction == flush.LoadPreserve:
			// The multisampled color still holds the last frame.
			colorLoad = gputypes.LoadOpLoad
		}
	}
	return &hal.RenderPassDescriptor{
		Label: fmt.Sprintf("pls_flush_%d_pass", d.Serial),
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:          e.targets.color.view,
			ResolveTarget: resolve,
			LoadOp:        colorLoad,
			StoreOp:       gputypes.StoreOpStore,
			ClearValue:    clearColor,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              e.targets.clip.view,
			DepthLoadOp:       clipLoad,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   0,
			StencilLoadOp:     clipLoad,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		},
	}
}

// record encodes the draw calls, switching pipelines and images only when
// they change.
func (e *Executor) record(rp hal.RenderPassEncoder, calls []call) error {
	var (
		bound   pipelineKey
		image   uint32
		ref     uint32
		started bool
	)
	rp.SetStencilReference(refZero)
	for i := range calls {
		c := &calls[i]
		if !started || c.key != bound {
			pipe, err := e.pipeline(c.key)
			if err != nil {
				return err
			}
			rp.SetPipeline(pipe)
			bound, started = c.key, true
		}
		if c.imageID != image {
			group := e.blank.group
			if c.image != nil {
				group = c.image
			}
			rp.SetBindGroup(1, group, nil)
			image = c.imageID
		}
		if c.ref != ref {
			rp.SetStencilReference(c.ref)
			ref = c.ref
		}
		if c.mesh != nil {
			rp.SetVertexBuffer(0, c.mesh.vertices, 0)
			rp.SetVertexBuffer(1, c.mesh.uvs, 0)
			rp.SetIndexBuffer(c.mesh.indices, gputypes.IndexFormatUint16, 0)
			rp.DrawIndexed(c.count, 1, 0, 0, c.arg)
			continue
		}
		rp.Draw(c.count, 1, 0, c.arg)
	}
	return nil
}

// encodeCopy copies the resolved color into a staging buffer. It returns
// the row pitch, aligned to 256 bytes as copies require.
func (e *Executor) encodeCopy(encoder hal.CommandEncoder, res *flushResources) (uint32, error) {
	w, h := e.targets.width, e.targets.height
	const copyPitchAlignment = 256
	pitch := (w*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)

	var err error
	res.staging, err = e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "pls_staging",
		Size:  uint64(pitch) * uint64(h),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: staging buffer: %w", ErrResourceCreation, err)
	}

	tex := e.targets.resolve.tex
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(tex, res.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	// Back to RenderAttachment for the next flush's resolve.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	return pitch, nil
}

// readback waits for the flush and converts the BGRA rows into img.
func (e *Executor) readback(d *flush.Descriptor, res *flushResources, pitch uint32, img *image.RGBA) error {
	ok, err := e.device.Wait(e.timeline.fence, d.Serial, readbackTimeout)
	if err != nil || !ok {
		return fmt.Errorf("gpu: wait for flush %d: ok=%v err=%w", d.Serial, ok, err)
	}
	buf := make([]byte, uint64(pitch)*uint64(e.targets.height))
	if err := e.queue.ReadBuffer(res.staging, 0, buf); err != nil {
		return fmt.Errorf("gpu: readback flush %d: %w", d.Serial, err)
	}
	storeBGRA(img, buf, int(pitch), d.Frame.Width, d.Frame.Height)
	return nil
}

// storeBGRA writes w x h BGRA pixels with the given row pitch into img.
func storeBGRA(img *image.RGBA, src []byte, pitch, w, h int) {
	for y := range h {
		row := src[y*pitch : y*pitch+w*4]
		dst := img.Pix[img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y):]
		for x := 0; x < w*4; x += 4 {
			dst[x+0] = row[x+2]
			dst[x+1] = row[x+1]
			dst[x+2] = row[x+0]
			dst[x+3] = row[x+3]
		}
	}
}
