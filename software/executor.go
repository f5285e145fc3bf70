// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/flush"
	"github.com/gogpu/pls/internal/resource"
	"github.com/gogpu/pls/internal/ring"
)

// ErrInvalidTarget is returned when a frame's target is not an *image.RGBA
// large enough for the frame.
var ErrInvalidTarget = errors.New("software: frame target must be an *image.RGBA covering the frame")

// Option configures an Executor.
type Option func(*Executor)

// WithCapabilities replaces the advertised capabilities. Tests use it to
// force negotiation onto a particular interlock mode.
func WithCapabilities(c caps.Capabilities) Option {
	return func(e *Executor) {
		e.caps = c
	}
}

// Executor renders sealed flushes on the CPU.
type Executor struct {
	caps     caps.Capabilities
	timeline *ring.ManualTimeline
	backings [ring.KindCount]*ring.HostBacking

	mu       sync.RWMutex
	textures map[uint32]resource.Texture

	planes planes
}

var _ flush.Executor = (*Executor)(nil)

// New returns an executor that supports every interlock mode.
func New(opts ...Option) *Executor {
	e := &Executor{
		caps:     caps.Full("software"),
		timeline: ring.NewManualTimeline(),
		textures: make(map[uint32]resource.Texture),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Capabilities returns the advertised capabilities.
func (e *Executor) Capabilities() caps.Capabilities { return e.caps }

// Timeline returns the executor's completion timeline.
func (e *Executor) Timeline() ring.Timeline { return e.timeline }

// NewRingBacking keeps the ring in host memory.
func (e *Executor) NewRingBacking(kind ring.Kind, depth int) (ring.Backing, error) {
	b := ring.NewHostBacking(depth)
	e.backings[kind] = b
	return b, nil
}

// MakeRenderBuffer allocates a host buffer.
func (e *Executor) MakeRenderBuffer(kind resource.BufferKind, flags resource.BufferFlags, size int) (resource.RenderBuffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("software: render buffer size %d", size)
	}
	return resource.NewHostBuffer(kind, flags, size), nil
}

// MakeImageTexture registers a texture so paint records can refer to it by
// id.
func (e *Executor) MakeImageTexture(width, height int, levels [][]byte) (resource.Texture, error) {
	t, err := resource.NewHostTexture(width, height, levels)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.textures[t.ID()] = t
	e.mu.Unlock()
	return t, nil
}

func (e *Executor) texture(id uint32) resource.Texture {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.textures[id]
}

// Execute renders one flush into the frame's target and signals its serial.
func (e *Executor) Execute(ctx context.Context, d *flush.Descriptor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, ok := d.Frame.Target.(*image.RGBA)
	if !ok || target == nil {
		return fmt.Errorf("%w: got %T", ErrInvalidTarget, d.Frame.Target)
	}
	if b := target.Bounds(); b.Dx() < d.Frame.Width || b.Dy() < d.Frame.Height {
		return fmt.Errorf("%w: %v for a %dx%d frame", ErrInvalidTarget, b, d.Frame.Width, d.Frame.Height)
	}

	f := e.begin(d, target)
	for i := range d.Commands {
		f.run(&d.Commands[i])
	}
	e.timeline.Signal(d.Serial)
	slogger().Debug("software: executed flush", "serial", d.Serial, "mode", d.Strategy.Mode.String(),
		"commands", len(d.Commands), "draws", d.Stats.Draws)
	return nil
}

// Destroy drops the textures and planes.
func (e *Executor) Destroy() {
	e.mu.Lock()
	clear(e.textures)
	e.mu.Unlock()
	e.planes = planes{}
}
