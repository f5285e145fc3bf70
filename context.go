// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pls

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/flush"
	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/software"
)

// maxClipID is the largest clip id a frame can allocate. Executors store
// clip ids in 16 bits.
const maxClipID = 1<<16 - 1

// ClipID names a clip region written by Clip. Zero means unclipped.
type ClipID uint32

// Context turns draws into flushes for one executor. A Context is not safe
// for concurrent use.
//
// Each frame is bracketed by BeginFrame and Flush:
//
//	ctx.BeginFrame(pls.FrameDescriptor{Target: img, Width: w, Height: h})
//	ctx.Draw(bg, path, pls.SolidPaint(pls.Red), pls.Identity(), pls.BlendSrcOver, 0)
//	ctx.Flush(bg)
type Context struct {
	opts     options
	exec     Executor
	ownsExec bool
	untrack  func()

	caps     Capabilities
	strategy Strategy
	sched    *flush.Scheduler

	inFrame  bool
	current  Strategy
	viewport geom.IAABB
	nextClip uint32
	closed   bool
}

var _ io.Closer = (*Context)(nil)

// NewContext negotiates an interlock mode with the executor and creates
// the buffer rings. Without WithExecutor it renders in software.
func NewContext(opts ...Option) (*Context, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &Context{opts: o, exec: o.exec}
	if c.exec == nil {
		c.exec = software.New()
		c.ownsExec = true
	}
	c.untrack = track(c.exec)

	c.caps = c.exec.Capabilities()
	if o.caps != nil {
		c.caps = restrict(c.caps, *o.caps)
	}
	strategy, err := caps.Negotiate(c.caps, o.override)
	if err != nil {
		c.release()
		if errors.Is(err, caps.ErrUnsupported) {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedHardware, err)
		}
		return nil, err
	}
	c.strategy = strategy
	if strategy.Degraded {
		Logger().Warn("pls: interlock mode degraded", "mode", strategy.Mode.String(), "backend", c.caps.Backend)
	}
	Logger().Info("pls: negotiated interlock mode",
		"backend", c.caps.Backend, "mode", strategy.Mode.String(),
		"pls", strategy.PLS.String(), "samples", strategy.SampleCount)

	c.sched, err = flush.NewScheduler(c.exec, strategy, flush.Config{Capacity: o.capacity, Depth: o.depth})
	if err != nil {
		c.release()
		Logger().Error("pls: create buffer rings", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrContextUnusable, err)
	}
	return c, nil
}

// restrict keeps only what both capability sets report.
func restrict(a, b Capabilities) Capabilities {
	return Capabilities{
		Backend:           a.Backend,
		RasterOrdering:    a.RasterOrdering && b.RasterOrdering,
		FragmentAtomics:   a.FragmentAtomics && b.FragmentAtomics,
		ReadWriteTextures: a.ReadWriteTextures && b.ReadWriteTextures,
		NativePLS:         a.NativePLS && b.NativePLS,
		FramebufferFetch:  a.FramebufferFetch && b.FramebufferFetch,
		InputAttachments:  a.InputAttachments && b.InputAttachments,
		MaxSamples:        min(a.MaxSamples, b.MaxSamples),
		Stencil:           a.Stencil && b.Stencil,
	}
}

// Strategy returns the strategy negotiated at creation.
func (c *Context) Strategy() Strategy { return c.strategy }

// Capabilities returns the capabilities negotiation used.
func (c *Context) Capabilities() Capabilities { return c.caps }

// Executor returns the executor.
func (c *Context) Executor() Executor { return c.exec }

// Stats returns the statistics of every flush of the last frame.
func (c *Context) Stats() []Stats { return c.sched.Stats() }

// Capacity returns the current per-flush capacity. It grows when a single
// draw needs more.
func (c *Context) Capacity() Counters { return c.sched.Capacity() }

func (c *Context) check() error {
	if c.closed {
		return ErrClosed
	}
	return c.sched.Err()
}

// BeginFrame starts a frame.
func (c *Context) BeginFrame(desc FrameDescriptor) error {
	if err := c.check(); err != nil {
		return err
	}
	if c.inFrame {
		return ErrFrameInProgress
	}
	if err := desc.validate(); err != nil {
		return err
	}
	st := c.strategy
	if o := desc.InterlockOverride; o != nil && *o != st.Mode {
		mode := max(*o, st.Mode)
		var err error
		if st, err = caps.Negotiate(c.caps, &mode); err != nil {
			return fmt.Errorf("%w: %w", ErrUnsupportedHardware, err)
		}
	}
	if err := c.sched.SetStrategy(st); err != nil {
		return err
	}
	f := desc.frame()
	if err := c.sched.BeginFrame(f); err != nil {
		return err
	}
	c.inFrame = true
	c.current = st
	c.viewport = geom.Viewport(f.Width, f.Height)
	c.nextClip = 0
	return nil
}

// FrameStrategy returns the strategy of the frame in progress, or of the
// last frame.
func (c *Context) FrameStrategy() Strategy { return c.current }

func (c *Context) common(m Matrix, blend BlendMode, clip ClipID) draw.Common {
	if blend >= draw.BlendModeCount {
		blend = BlendSrcOver
	}
	return draw.Common{
		Transform: m.affine(),
		Blend:     blend,
		ClipID:    uint32(clip),
		Strategy:  c.current,
		Viewport:  c.viewport,
	}
}

// push admits d into the frame. Scheduler errors past this point are
// fatal and leave the context unusable.
func (c *Context) push(ctx context.Context, d *draw.Draw) (Handle, error) {
	if err := c.sched.Push(ctx, d); err != nil {
		if errors.Is(err, ErrContextUnusable) {
			c.inFrame = false
		}
		return Handle{}, err
	}
	return Handle{d: d}, nil
}

func (c *Context) drawing() error {
	if err := c.check(); err != nil {
		return err
	}
	if !c.inFrame {
		return ErrNoFrame
	}
	return nil
}

// Draw submits path with paint. The returned handle is empty when the draw
// covers no pixel of the frame.
func (c *Context) Draw(ctx context.Context, path *Path, paint *Paint, m Matrix, blend BlendMode, clip ClipID) (Handle, error) {
	if err := c.drawing(); err != nil {
		return Handle{}, err
	}
	if path == nil || (paint != nil && paint.Stroke != nil && paint.Stroke.Width <= 0) {
		return Handle{}, nil
	}
	d, ok := draw.NewPath(draw.PathParams{
		Common:    c.common(m, blend, clip),
		Path:      &path.g,
		Paint:     paint.internal(),
		Threshold: c.opts.threshold,
		Tolerance: c.opts.tolerance,
	})
	if !ok {
		return Handle{}, nil
	}
	return c.push(ctx, d)
}

// Clip writes a new clip region covering path filled with rule and returns
// its id. When outer is non-zero the region is also limited to outer.
// Clip ids are valid until the end of the frame.
func (c *Context) Clip(ctx context.Context, path *Path, m Matrix, rule FillRule, outer ClipID) (ClipID, error) {
	if err := c.drawing(); err != nil {
		return 0, err
	}
	if c.nextClip >= maxClipID {
		return 0, ErrTooManyClips
	}
	c.nextClip++
	id := ClipID(c.nextClip)
	if path == nil {
		return id, nil
	}
	d, ok := draw.NewPath(draw.PathParams{
		Common:       c.common(m, BlendSrcOver, outer),
		Path:         &path.g,
		Paint:        draw.Paint{Kind: draw.PaintSolid, FillRule: fillRule(rule)},
		ClipUpdateID: uint32(id),
		Threshold:    c.opts.threshold,
		Tolerance:    c.opts.tolerance,
	})
	if !ok {
		return id, nil
	}
	_, err := c.push(ctx, d)
	return id, err
}

// ResetClip sets the clip plane of every pixel in r to clip. Passing zero
// removes all clipping inside r.
func (c *Context) ResetClip(ctx context.Context, r image.Rectangle, clip ClipID) error {
	if err := c.drawing(); err != nil {
		return err
	}
	d, ok := draw.NewStencilClipReset(draw.ClipResetParams{
		Bounds:   geom.IAABB{L: int32(r.Min.X), T: int32(r.Min.Y), R: int32(r.Max.X), B: int32(r.Max.Y)},
		ResetTo:  uint32(clip),
		Strategy: c.current,
		Viewport: c.viewport,
	})
	if !ok {
		return nil
	}
	_, err := c.push(ctx, d)
	return err
}

// DrawImage draws tex over [0, width] x [0, height] in local space.
func (c *Context) DrawImage(ctx context.Context, tex Texture, m Matrix, blend BlendMode, clip ClipID, opacity float32) (Handle, error) {
	if err := c.drawing(); err != nil {
		return Handle{}, err
	}
	d, ok := draw.NewImageRect(draw.ImageParams{
		Common:  c.common(m, blend, clip),
		Texture: tex,
		Opacity: opacity,
	})
	if !ok {
		return Handle{}, nil
	}
	return c.push(ctx, d)
}

// Mesh is an indexed triangle list textured by an image. Vertices and UVs
// hold float32 pairs; Indices holds uint16 indices.
type Mesh struct {
	Vertices, UVs, Indices RenderBuffer
}

// DrawImageMesh draws mesh textured with tex.
func (c *Context) DrawImageMesh(ctx context.Context, tex Texture, mesh Mesh, m Matrix, blend BlendMode, clip ClipID, opacity float32) (Handle, error) {
	if err := c.drawing(); err != nil {
		return Handle{}, err
	}
	d, ok := draw.NewImageMesh(draw.MeshParams{
		Common:   c.common(m, blend, clip),
		Texture:  tex,
		Vertices: mesh.Vertices,
		UVs:      mesh.UVs,
		Indices:  mesh.Indices,
		Opacity:  opacity,
	})
	if !ok {
		return Handle{}, nil
	}
	return c.push(ctx, d)
}

// Flush executes the draws of the frame and ends it. It returns once the
// executor has recorded its commands; rendering may still be in flight.
func (c *Context) Flush(ctx context.Context) error {
	if err := c.drawing(); err != nil {
		return err
	}
	c.inFrame = false
	return c.sched.EndFrame(ctx)
}

// Close releases the rings, and the executor when the context created it.
// Close is idempotent.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.inFrame = false
	c.sched.Destroy()
	c.release()
	return nil
}

func (c *Context) release() {
	c.untrack()
	if c.ownsExec {
		c.exec.Destroy()
	}
}

// Handle describes a submitted draw.
type Handle struct {
	d *draw.Draw
}

// Visible reports whether the draw was submitted. Draws outside the frame
// are culled.
func (h Handle) Visible() bool { return h.d != nil }

// Triangulated reports whether the path was interior-triangulated rather
// than drawn as a midpoint fan.
func (h Handle) Triangulated() bool {
	return h.d != nil && h.d.Type() == draw.TypeInteriorTriangulation
}

// Counters returns the ring resources the draw consumes.
func (h Handle) Counters() Counters {
	if h.d == nil {
		return Counters{}
	}
	return h.d.Counters()
}

// Bounds returns the pixel bounds of the draw.
func (h Handle) Bounds() image.Rectangle {
	if h.d == nil {
		return image.Rectangle{}
	}
	b := h.d.Bounds()
	return image.Rect(int(b.L), int(b.T), int(b.R), int(b.B))
}

// String describes the draw for logs.
func (h Handle) String() string {
	if h.d == nil {
		return "culled"
	}
	return h.d.String()
}
