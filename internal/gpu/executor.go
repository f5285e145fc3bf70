// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/pls/internal/cache"
	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/flush"
	"github.com/gogpu/pls/internal/resource"
	"github.com/gogpu/pls/internal/ring"
)

// Sentinel errors for GPU execution.
var (
	// ErrNilDevice is returned when the executor is built without a device
	// or queue.
	ErrNilDevice = errors.New("gpu: nil device")

	// ErrPipelineCreation is returned when a render pipeline cannot be
	// created.
	ErrPipelineCreation = errors.New("gpu: pipeline creation failed")

	// ErrResourceCreation is returned when a buffer, bind group or fence
	// cannot be created.
	ErrResourceCreation = errors.New("gpu: resource creation failed")

	// ErrUnsupportedDrawType is returned for draw types that only exist
	// under interlock modes this executor does not implement.
	ErrUnsupportedDrawType = errors.New("gpu: unsupported draw type")

	// ErrUnsupportedMode is returned when a flush was negotiated for an
	// interlock mode other than MSAA.
	ErrUnsupportedMode = errors.New("gpu: unsupported interlock mode")

	// ErrInvalidTarget is returned when a frame's target is neither an
	// *image.RGBA covering the frame nor a SurfaceTarget.
	ErrInvalidTarget = errors.New("gpu: frame target must be an *image.RGBA or a SurfaceTarget")
)

// SurfaceTarget renders into a caller-owned single-sample BGRA8Unorm view,
// such as a swapchain image. The multisampled color resolves into it at
// the end of every flush.
type SurfaceTarget struct {
	View hal.TextureView
}

// Executor records flushes with hal render passes using MSAA: winding in
// the stencil, clip ids in depth and fixed-function blending.
//
// Executor is not safe for concurrent Execute calls; texture and buffer
// creation may run concurrently with Execute.
type Executor struct {
	device hal.Device
	queue  hal.Queue
	caps   caps.Capabilities

	timeline *fenceTimeline
	backings [ring.KindCount]*ringBacking

	shader    hal.ShaderModule
	layouts   layouts
	pipelines *cache.Cache[pipelineKey, hal.RenderPipeline]
	// blank is bound as group 1 by draws without an image.
	blank imageBinding

	mu       sync.RWMutex
	textures map[uint32]*texture
	buffers  []*renderBuffer

	targets targetSet
	// retired holds per-flush resources until the timeline passes them.
	retired []*flushResources
}

var _ flush.Executor = (*Executor)(nil)

// New creates an executor on device and queue. It compiles the shader and
// builds the shared layouts; pipelines are created on first use.
func New(device hal.Device, queue hal.Queue) (*Executor, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if err := validateShader(); err != nil {
		if nagaGap(err) {
			slogger().Debug("gpu: naga cannot validate the pls shader", "err", err)
		} else {
			slogger().Warn("gpu: pls shader failed naga validation", "err", err)
		}
	}

	e := &Executor{
		device:    device,
		queue:     queue,
		caps:      capabilities(),
		pipelines: cache.New[pipelineKey, hal.RenderPipeline](),
		textures:  make(map[uint32]*texture),
	}

	var err error
	if e.timeline, err = newFenceTimeline(device); err != nil {
		return nil, err
	}
	e.shader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "pls_shader",
		Source: hal.ShaderSource{WGSL: plsShaderSource},
	})
	if err != nil {
		e.Destroy()
		return nil, fmt.Errorf("%w: compile pls shader: %w", ErrPipelineCreation, err)
	}
	if e.layouts, err = createLayouts(device); err != nil {
		e.Destroy()
		return nil, fmt.Errorf("%w: %w", ErrPipelineCreation, err)
	}
	if e.blank, err = newImageBinding(device, queue, e.layouts.image, "pls_blank_image",
		packTexels(1, 1, [][]byte{make([]byte, 4)})); err != nil {
		e.Destroy()
		return nil, err
	}
	slogger().Info("gpu: executor ready", "backend", e.caps.Backend, "samples", e.caps.MaxSamples)
	return e, nil
}

// capabilities describes a hal device driven through render passes only:
// no fragment interlock, storage atomics from fragments or native PLS.
func capabilities() caps.Capabilities {
	return caps.Capabilities{
		Backend:    "wgpu",
		MaxSamples: sampleCount,
		Stencil:    true,
	}
}

// Capabilities returns the advertised capabilities.
func (e *Executor) Capabilities() caps.Capabilities { return e.caps }

// Timeline returns the fence-backed completion timeline.
func (e *Executor) Timeline() ring.Timeline { return e.timeline }

// NewRingBacking creates a host copy and a GPU buffer per slot.
func (e *Executor) NewRingBacking(kind ring.Kind, depth int) (ring.Backing, error) {
	b := newRingBacking(e.device, e.queue, kind, depth)
	e.backings[kind] = b
	return b, nil
}

// MakeRenderBuffer creates a vertex or index buffer with a host copy.
func (e *Executor) MakeRenderBuffer(kind resource.BufferKind, flags resource.BufferFlags, size int) (resource.RenderBuffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("gpu: render buffer size %d", size)
	}
	buf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "pls_render_buffer",
		Size:  uint64((size + 3) &^ 3),
		Usage: bufferUsage(kind),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: render buffer: %w", ErrResourceCreation, err)
	}
	b := &renderBuffer{HostBuffer: resource.NewHostBuffer(kind, flags, size), queue: e.queue, buf: buf}
	e.mu.Lock()
	e.buffers = append(e.buffers, b)
	e.mu.Unlock()
	return b, nil
}

// MakeImageTexture uploads the mip chain into a storage buffer bound as
// group 1 by image draws.
func (e *Executor) MakeImageTexture(width, height int, levels [][]byte) (resource.Texture, error) {
	host, err := resource.NewHostTexture(width, height, levels)
	if err != nil {
		return nil, err
	}
	binding, err := newImageBinding(e.device, e.queue, e.layouts.image,
		fmt.Sprintf("pls_image_%d", host.ID()), packTexels(width, height, levels))
	if err != nil {
		return nil, err
	}
	t := &texture{HostTexture: host, binding: binding}
	e.mu.Lock()
	e.textures[t.ID()] = t
	e.mu.Unlock()
	return t, nil
}

func (e *Executor) texture(id uint32) *texture {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.textures[id]
}

// Execute records the flush into one command buffer and submits it with
// the flush serial as the fence value. Readback targets block until the
// pixels are copied out.
func (e *Executor) Execute(ctx context.Context, d *flush.Descriptor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.Strategy.Mode != caps.MSAA {
		return fmt.Errorf("%w: %s", ErrUnsupportedMode, d.Strategy.Mode)
	}

	var (
		img     *image.RGBA
		surface hal.TextureView
	)
	switch t := d.Frame.Target.(type) {
	case *image.RGBA:
		if t == nil {
			return fmt.Errorf("%w: nil image", ErrInvalidTarget)
		}
		if b := t.Bounds(); b.Dx() < d.Frame.Width || b.Dy() < d.Frame.Height {
			return fmt.Errorf("%w: %v for a %dx%d frame", ErrInvalidTarget, b, d.Frame.Width, d.Frame.Height)
		}
		img = t
	case SurfaceTarget:
		if t.View == nil {
			return fmt.Errorf("%w: nil surface view", ErrInvalidTarget)
		}
		surface = t.View
	default:
		return fmt.Errorf("%w: got %T", ErrInvalidTarget, d.Frame.Target)
	}

	e.reclaim()
	w, h := uint32(d.Frame.Width), uint32(d.Frame.Height)
	fresh, err := e.targets.ensure(e.device, w, h, img != nil)
	if err != nil {
		return fmt.Errorf("%w: attachments: %w", ErrResourceCreation, err)
	}

	res := &flushResources{serial: d.Serial}
	if err := e.encodeAndSubmit(d, res, fresh, img, surface); err != nil {
		res.destroy(e.device)
		return err
	}
	if img != nil {
		// Readback already waited on the fence.
		res.destroy(e.device)
	} else {
		e.retired = append(e.retired, res)
	}
	slogger().Debug("gpu: executed flush", "serial", d.Serial, "commands", len(d.Commands),
		"draws", d.Stats.Draws, "pipelines", e.pipelines.Len())
	return nil
}

// reclaim destroys per-flush resources whose serial has completed.
func (e *Executor) reclaim() {
	done := e.timeline.Completed()
	kept := e.retired[:0]
	for _, r := range e.retired {
		if r.serial <= done {
			r.destroy(e.device)
			continue
		}
		kept = append(kept, r)
	}
	clear(e.retired[len(kept):])
	e.retired = kept
}

// PipelineStats reports pipeline cache hits and misses.
func (e *Executor) PipelineStats() cache.Stats { return e.pipelines.Stats() }

// Destroy waits for submitted work and releases every GPU object. Ring
// backings are destroyed by their rings.
func (e *Executor) Destroy() {
	if e.timeline != nil {
		e.timeline.mu.Lock()
		last := e.timeline.submitted
		e.timeline.mu.Unlock()
		if err := e.timeline.Wait(context.Background(), last); err != nil {
			slogger().Warn("gpu: destroy before queue drained", "err", err)
		}
	}
	for _, r := range e.retired {
		r.destroy(e.device)
	}
	e.retired = nil

	e.mu.Lock()
	for id, t := range e.textures {
		t.binding.destroy(e.device)
		delete(e.textures, id)
	}
	for _, b := range e.buffers {
		e.device.DestroyBuffer(b.buf)
	}
	e.buffers = nil
	e.mu.Unlock()

	e.pipelines.Drain(func(_ pipelineKey, p hal.RenderPipeline) {
		e.device.DestroyRenderPipeline(p)
	})
	e.targets.destroy(e.device)
	e.blank.destroy(e.device)
	e.layouts.destroy(e.device)
	if e.shader != nil {
		e.device.DestroyShaderModule(e.shader)
		e.shader = nil
	}
	if e.timeline != nil {
		e.timeline.destroy()
		e.timeline = nil
	}
}
