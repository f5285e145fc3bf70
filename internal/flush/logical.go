// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package flush

import (
	"fmt"
	"slices"

	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/record"
	"github.com/gogpu/pls/internal/ring"
)

// State is the lifecycle state of a LogicalFlush.
type State uint8

// States.
const (
	Accumulating State = iota
	Flushed
)

// LogicalFlush accumulates draws whose summed counters fit one ring slot.
type LogicalFlush struct {
	state    State
	capacity draw.Counters
	used     draw.Counters
	draws    []*draw.Draw
}

// NewLogicalFlush returns an empty flush packed against capacity.
func NewLogicalFlush(capacity draw.Counters) *LogicalFlush {
	capacity.Draws = min(capacity.Draws, MaxDrawsPerFlush)
	return &LogicalFlush{capacity: capacity}
}

// State returns the lifecycle state.
func (f *LogicalFlush) State() State { return f.state }

// Len returns the number of admitted draws.
func (f *LogicalFlush) Len() int { return len(f.draws) }

// Used returns the summed counters of the admitted draws.
func (f *LogicalFlush) Used() draw.Counters { return f.used }

// Capacity returns the limit the flush packs against.
func (f *LogicalFlush) Capacity() draw.Counters { return f.capacity }

// Admit adds d when its counters fit in the remaining capacity. It reports
// false, leaving the flush unchanged, when they do not.
func (f *LogicalFlush) Admit(d *draw.Draw) bool {
	if f.state != Accumulating {
		panic("flush: admit into a sealed flush")
	}
	next := f.used.Add(d.Counters())
	if !next.Fits(f.capacity) {
		return false
	}
	f.used = next
	f.draws = append(f.draws, d)
	return true
}

// Seal writes every draw's records through guards and builds the
// descriptor. The flush is Flushed afterwards.
func (f *LogicalFlush) Seal(guards ring.Guards, strategy caps.Strategy, frame Frame, serial uint64) *Descriptor {
	if f.state != Accumulating {
		panic("flush: flush sealed twice")
	}
	f.state = Flushed

	desc := &Descriptor{
		Serial:   serial,
		Strategy: strategy,
		Frame:    frame,
		Draws:    f.draws,
	}
	for k, g := range guards {
		desc.Slots[k] = g.Slot()
	}

	paths := ring.Records[record.PathRecord](guards[ring.Paths])
	paints := ring.Records[record.PaintRecord](guards[ring.Paints])
	contours := ring.Records[record.ContourRecord](guards[ring.Contours])
	tessVerts := ring.Records[record.TessVertex](guards[ring.Tess])
	tris := ring.Records[record.TriangleVertex](guards[ring.Triangles])
	spans := ring.Records[record.GradientSpan](guards[ring.Gradients])
	uniforms := ring.Records[record.FlushUniforms](guards[ring.Uniforms])

	u := record.FlushUniforms{Width: float32(frame.Width), Height: float32(frame.Height)}
	if frame.Wireframe {
		u.Flags |= record.FlushWireframe
	}
	uniforms[0] = u

	var at draw.Counters
	elements := make([]Element, 0, len(f.draws)*2)
	board := NewIntersectionBoard(frame.Width, frame.Height)
	for i, d := range f.draws {
		c := d.Counters()
		base := Element{
			Draw:           d,
			DrawIndex:      i,
			PathID:         uint32(at.Paths),
			FirstContour:   uint32(at.Contours),
			ContourCount:   uint32(c.Contours),
			TessOffset:     uint32(at.TessVertices),
			TessCount:      uint32(c.TessVertices),
			TriOffset:      uint32(at.TriangleVertices),
			TriCount:       uint32(c.TriangleVertices),
			SpanOffset:     uint32(at.GradientSpans),
			CoverageOffset: uint32(at.CoverageSamples),
		}
		e := draw.Emitter{
			PathID:         base.PathID,
			Path:           &paths[at.Paths],
			Paint:          &paints[at.Paths],
			FirstContour:   base.FirstContour,
			Contours:       contours[at.Contours : at.Contours+c.Contours],
			TessBase:       base.TessOffset,
			Tess:           tessVerts[at.TessVertices : at.TessVertices+c.TessVertices],
			Triangles:      tris[at.TriangleVertices : at.TriangleVertices+c.TriangleVertices],
			SpanBase:       base.SpanOffset,
			Spans:          spans[at.GradientSpans : at.GradientSpans+c.GradientSpans],
			CoverageOffset: base.CoverageOffset,
		}
		if written := d.Emit(&e); written != c {
			panic(fmt.Sprintf("flush: draw %d emitted %v, counted %v", i, written, c))
		}
		at = at.Add(c)

		group := 0
		if strategy.Mode != caps.RasterOrdering {
			group = board.Add(d.Bounds(), max(d.Prepasses(), d.Subpasses()))
			if group+max(d.Prepasses(), d.Subpasses()) > maxGroups {
				panic("flush: intersection board exceeded the group key range")
			}
		}
		for p := 0; p < d.Prepasses(); p++ {
			el := base
			el.Pass, el.Phase, el.Group = Prepass, p, group+p
			elements = append(elements, el)
		}
		for s := 0; s < d.Subpasses(); s++ {
			el := base
			el.Pass, el.Phase, el.Group = Subpass, s, group+s
			elements = append(elements, el)
		}
	}

	if strategy.Mode != caps.RasterOrdering {
		for i := range elements {
			elements[i].key = sortKey(&elements[i])
		}
		slices.SortStableFunc(elements, func(a, b Element) int {
			switch {
			case a.key < b.key:
				return -1
			case a.key > b.key:
				return 1
			}
			return 0
		})
	}

	desc.Commands = buildCommands(elements, strategy, frame)
	desc.Stats = Stats{
		Serial:   serial,
		Draws:    len(f.draws),
		Written:  at,
		Capacity: f.capacity,
	}
	for _, cmd := range desc.Commands {
		switch cmd.Kind {
		case CmdBatch:
			desc.Stats.Batches++
			if cmd.Pass == Prepass {
				desc.Stats.Prepasses += len(cmd.Elements)
			} else {
				desc.Stats.Subpasses += len(cmd.Elements)
			}
		case CmdBarrier:
			desc.Stats.Barriers++
		}
	}
	return desc
}

// misc derives the pipeline variation flags of one element.
func misc(e *Element, mode caps.InterlockMode, frame Frame) caps.MiscFlags {
	var m caps.MiscFlags
	d := e.Draw
	if d.FillRule() == draw.Clockwise {
		m |= caps.MiscClockwiseFill
	}
	if frame.Wireframe {
		m |= caps.MiscWireframe
	}
	if mode == caps.MSAA {
		if d.Coverage() == draw.CoverageDirect && d.ClipID() == 0 && d.Kind() != draw.KindStencilClipReset {
			m |= caps.MiscStencilSkip
		}
		if !d.Blend().Advanced() {
			m |= caps.MiscFixedFunctionColorOutput
		}
	}
	return m
}

// buildCommands inserts framing commands and barriers around batches of
// sorted elements.
func buildCommands(elements []Element, s caps.Strategy, frame Frame) []Command {
	var cmds []Command
	switch s.Mode {
	case caps.Atomics:
		draw.MustSupport(s.Mode, draw.TypeAtomicInitialize)
		cmds = append(cmds, Command{Kind: CmdAtomicInitialize, Pipeline: PipelineKey{DrawType: draw.TypeAtomicInitialize, Mode: s.Mode}})
	case caps.LoadStore:
		cmds = append(cmds, Command{Kind: CmdLoadColor})
	}

	for i := 0; i < len(elements); {
		e := &elements[i]
		key := PipelineKey{
			DrawType: e.Draw.Type(),
			Features: e.Draw.Features(),
			Mode:     s.Mode,
			Misc:     misc(e, s.Mode, frame),
		}
		if i > 0 {
			if b, ok := barrierBetween(&elements[i-1], e, s.Mode); ok {
				cmds = append(cmds, b...)
			}
		}
		j := i + 1
		for j < len(elements) {
			n := &elements[j]
			if n.Pass != e.Pass || n.Phase != e.Phase {
				break
			}
			if _, ok := barrierBetween(&elements[j-1], n, s.Mode); ok {
				break
			}
			nk := PipelineKey{DrawType: n.Draw.Type(), Features: n.Draw.Features(), Mode: s.Mode, Misc: misc(n, s.Mode, frame)}
			if nk != key {
				break
			}
			j++
		}
		cmds = append(cmds, Command{Kind: CmdBatch, Pipeline: key, Pass: e.Pass, Phase: e.Phase, Elements: elements[i:j]})
		i = j
	}

	switch s.Mode {
	case caps.Atomics:
		draw.MustSupport(s.Mode, draw.TypeAtomicResolve)
		cmds = append(cmds, Command{Kind: CmdAtomicResolve, Pipeline: PipelineKey{DrawType: draw.TypeAtomicResolve, Mode: s.Mode}})
	case caps.LoadStore:
		cmds = append(cmds, Command{Kind: CmdStoreColor})
	}
	return cmds
}

// barrierBetween returns the commands separating prev from next.
func barrierBetween(prev, next *Element, mode caps.InterlockMode) ([]Command, bool) {
	switch mode {
	case caps.Atomics:
		if prev.Pass != next.Pass || prev.Group != next.Group {
			return []Command{{Kind: CmdBarrier}}, true
		}
	case caps.MSAA:
		if prev.Group != next.Group || prev.Draw.Contents() != next.Draw.Contents() {
			return []Command{{Kind: CmdBarrier}}, true
		}
	case caps.LoadStore:
		if prev.Group != next.Group {
			return []Command{{Kind: CmdStoreColor}, {Kind: CmdBarrier}, {Kind: CmdLoadColor}}, true
		}
	}
	return nil, false
}
