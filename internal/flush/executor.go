// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package flush

import (
	"context"
	"fmt"

	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/resource"
	"github.com/gogpu/pls/internal/ring"
)

// Executor records the GPU work of sealed flushes. Implementations own the
// ring backings, the pipeline cache and every GPU object.
type Executor interface {
	// Capabilities describes what the device can do.
	Capabilities() caps.Capabilities
	// Timeline reports which flush serials the device has finished.
	Timeline() ring.Timeline
	// NewRingBacking creates the storage of one buffer ring.
	NewRingBacking(kind ring.Kind, depth int) (ring.Backing, error)
	MakeRenderBuffer(kind resource.BufferKind, flags resource.BufferFlags, size int) (resource.RenderBuffer, error)
	// MakeImageTexture uploads a premultiplied RGBA8 image with its mip
	// chain. levels[0] is the full-size image.
	MakeImageTexture(width, height int, levels [][]byte) (resource.Texture, error)
	// Execute records and submits the work of one flush. It returns once
	// the commands are recorded; completion is reported by the Timeline.
	Execute(ctx context.Context, d *Descriptor) error
	Destroy()
}

// LoadAction says what happens to the target before the first flush of a
// frame draws.
type LoadAction uint8

// Load actions.
const (
	LoadClear LoadAction = iota
	LoadPreserve
	LoadDontCare
)

// String returns the action name.
func (a LoadAction) String() string {
	switch a {
	case LoadClear:
		return "clear"
	case LoadPreserve:
		return "preserveRenderTarget"
	case LoadDontCare:
		return "dontCare"
	default:
		return fmt.Sprintf("LoadAction(%d)", a)
	}
}

// Frame is the per-frame configuration shared by its flushes.
type Frame struct {
	Width, Height int
	// Target is the executor-specific render target.
	Target     any
	LoadAction LoadAction
	// ClearColor is straight-alpha RGBA.
	ClearColor [4]float32
	Wireframe  bool
}

// Pass distinguishes prepass phases from subpass phases.
type Pass uint8

// Passes.
const (
	Prepass Pass = iota
	Subpass
)

// PipelineKey identifies one cached pipeline.
type PipelineKey struct {
	DrawType draw.Type
	Features caps.ShaderFeatures
	Mode     caps.InterlockMode
	Misc     caps.MiscFlags
}

// String formats the key for logs and pipeline labels.
func (k PipelineKey) String() string {
	return fmt.Sprintf("%s/%s/f%x/m%x", k.DrawType, k.Mode, uint32(k.Features), uint32(k.Misc))
}

// Element is one phase of one draw, with the ring ranges it reads.
type Element struct {
	Draw      *draw.Draw
	DrawIndex int
	Pass      Pass
	// Phase is the index of the phase within its pass.
	Phase int
	Group int

	PathID         uint32
	FirstContour   uint32
	ContourCount   uint32
	TessOffset     uint32
	TessCount      uint32
	TriOffset      uint32
	TriCount       uint32
	SpanOffset     uint32
	CoverageOffset uint32

	key int64
}

// CommandKind is the kind of a Command.
type CommandKind uint8

// Command kinds.
const (
	// CmdBatch draws Elements with one pipeline.
	CmdBatch CommandKind = iota
	// CmdBarrier orders the commands after it behind those before it.
	CmdBarrier
	// CmdAtomicInitialize clears the coverage buffer and sets up atomics.
	CmdAtomicInitialize
	// CmdAtomicResolve writes resolved atomics color to the target.
	CmdAtomicResolve
	// CmdLoadColor loads the target into pixel-local storage.
	CmdLoadColor
	// CmdStoreColor stores pixel-local storage back to the target.
	CmdStoreColor
)

// String returns the command name.
func (k CommandKind) String() string {
	switch k {
	case CmdBatch:
		return "batch"
	case CmdBarrier:
		return "barrier"
	case CmdAtomicInitialize:
		return "atomicInitialize"
	case CmdAtomicResolve:
		return "atomicResolve"
	case CmdLoadColor:
		return "loadColor"
	case CmdStoreColor:
		return "storeColor"
	default:
		return fmt.Sprintf("CommandKind(%d)", k)
	}
}

// Command is one step of a flush, in execution order.
type Command struct {
	Kind     CommandKind
	Pipeline PipelineKey
	Pass     Pass
	Phase    int
	Elements []Element
}

// Descriptor is a sealed flush.
type Descriptor struct {
	Serial   uint64
	Strategy caps.Strategy
	Frame    Frame
	// LoadAction is the frame's action for the first flush and
	// LoadPreserve for every later one.
	LoadAction LoadAction
	// Index is the position of the flush within its frame.
	Index int
	// Slots is the ring slot each kind of record was written to.
	Slots [ring.KindCount]int

	// Draws in submission order.
	Draws    []*draw.Draw
	Commands []Command
	Stats    Stats
}

// Stats are the counters of one flush.
type Stats struct {
	Serial    uint64
	Draws     int
	Batches   int
	Prepasses int
	Subpasses int
	Barriers  int
	// Written is what the draws emitted.
	Written draw.Counters
	// Capacity is the per-slot limit the flush was packed against.
	Capacity draw.Counters
}
