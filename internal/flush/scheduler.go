// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package flush

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/record"
	"github.com/gogpu/pls/internal/ring"
)

// Sentinel errors.
var (
	// ErrUnusable is returned after an executor failure has poisoned the
	// scheduler.
	ErrUnusable = errors.New("pls: context unusable after a fatal GPU error")

	// ErrFrameInProgress is returned by BeginFrame inside a frame.
	ErrFrameInProgress = errors.New("pls: frame already in progress")

	// ErrNoFrame is returned when drawing or ending outside a frame.
	ErrNoFrame = errors.New("pls: no frame in progress")
)

// DefaultCapacity is the per-slot capacity of a new scheduler.
var DefaultCapacity = draw.Counters{
	Draws:            4096,
	Paths:            4096,
	Contours:         8192,
	TessVertices:     1 << 17,
	TriangleVertices: 1 << 16,
	GradientSpans:    1024,
	CoverageSamples:  1 << 22,
}

// Config configures a Scheduler.
type Config struct {
	Capacity draw.Counters
	Depth    int
}

// Scheduler packs the draws of each frame into logical flushes and hands
// sealed flushes to the executor.
type Scheduler struct {
	exec     Executor
	strategy caps.Strategy
	rings    *ring.Set
	capacity draw.Counters

	serial     uint64
	inFrame    bool
	frame      Frame
	frameIndex int
	current    *LogicalFlush
	stats      []Stats
	broken     error
}

var elemSizes = [ring.KindCount]int{
	ring.Paths:     int(unsafe.Sizeof(record.PathRecord{})),
	ring.Paints:    int(unsafe.Sizeof(record.PaintRecord{})),
	ring.Contours:  int(unsafe.Sizeof(record.ContourRecord{})),
	ring.Tess:      int(unsafe.Sizeof(record.TessVertex{})),
	ring.Triangles: int(unsafe.Sizeof(record.TriangleVertex{})),
	ring.Gradients: int(unsafe.Sizeof(record.GradientSpan{})),
	ring.Uniforms:  int(unsafe.Sizeof(record.FlushUniforms{})),
}

// NewScheduler creates the buffer rings through the executor.
func NewScheduler(exec Executor, strategy caps.Strategy, cfg Config) (*Scheduler, error) {
	if cfg.Capacity == (draw.Counters{}) {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Depth <= 0 {
		cfg.Depth = ring.DefaultDepth
	}
	cfg.Capacity.Draws = min(cfg.Capacity.Draws, MaxDrawsPerFlush)
	rings, err := ring.NewSet(cfg.Depth, elemSizes, ringCapacities(cfg.Capacity),
		func(k ring.Kind) (ring.Backing, error) { return exec.NewRingBacking(k, cfg.Depth) },
		exec.Timeline())
	if err != nil {
		return nil, fmt.Errorf("flush: create rings: %w", err)
	}
	return &Scheduler{exec: exec, strategy: strategy, rings: rings, capacity: cfg.Capacity}, nil
}

func ringCapacities(c draw.Counters) [ring.KindCount]int {
	return [ring.KindCount]int{
		ring.Paths:     c.Paths,
		ring.Paints:    c.Paths,
		ring.Contours:  c.Contours,
		ring.Tess:      c.TessVertices,
		ring.Triangles: c.TriangleVertices,
		ring.Gradients: c.GradientSpans,
		ring.Uniforms:  1,
	}
}

// Strategy returns the negotiated strategy.
func (s *Scheduler) Strategy() caps.Strategy { return s.strategy }

// SetStrategy changes the strategy of later frames. Frames may lower the
// negotiated mode, so draws must be built with the strategy in force.
func (s *Scheduler) SetStrategy(st caps.Strategy) error {
	if s.inFrame {
		return ErrFrameInProgress
	}
	s.strategy = st
	return nil
}

// Capacity returns the current per-slot capacity.
func (s *Scheduler) Capacity() draw.Counters { return s.capacity }

// Rings returns the buffer rings.
func (s *Scheduler) Rings() *ring.Set { return s.rings }

// Stats returns the statistics of every flush of the last frame.
func (s *Scheduler) Stats() []Stats { return s.stats }

// Err returns the error that made the scheduler unusable, if any.
func (s *Scheduler) Err() error { return s.broken }

// BeginFrame starts a frame.
func (s *Scheduler) BeginFrame(f Frame) error {
	if s.broken != nil {
		return s.broken
	}
	if s.inFrame {
		return ErrFrameInProgress
	}
	s.inFrame = true
	s.frame = f
	s.frameIndex = 0
	s.stats = s.stats[:0]
	s.current = s.newFlush()
	return nil
}

// newFlush returns an empty flush. The coverage limit always admits a
// single viewport-sized draw.
func (s *Scheduler) newFlush() *LogicalFlush {
	c := s.capacity
	c.CoverageSamples = max(c.CoverageSamples, s.frame.Width*s.frame.Height*draw.CoverageSamplesPerPixel)
	return NewLogicalFlush(c)
}

// Push adds a draw to the frame. When the draw does not fit the current
// flush, the flush is executed and the draw starts the next one. A draw
// too large for an empty flush grows the rings first.
func (s *Scheduler) Push(ctx context.Context, d *draw.Draw) error {
	if s.broken != nil {
		return s.broken
	}
	if !s.inFrame {
		return ErrNoFrame
	}
	if s.current.Admit(d) {
		return nil
	}
	if s.current.Len() > 0 {
		if err := s.flush(ctx); err != nil {
			return err
		}
		s.current = s.newFlush()
		if s.current.Admit(d) {
			return nil
		}
	}
	if err := s.grow(ctx, d.Counters()); err != nil {
		return s.fail(err)
	}
	s.current = s.newFlush()
	if !s.current.Admit(d) {
		panic(fmt.Sprintf("flush: draw %v does not fit grown capacity %v", d.Counters(), s.capacity))
	}
	return nil
}

// grow raises every capacity the draw exceeds to the next power of two.
func (s *Scheduler) grow(ctx context.Context, need draw.Counters) error {
	if need.Draws > MaxDrawsPerFlush {
		return fmt.Errorf("flush: draw needs %d draw slots", need.Draws)
	}
	next := s.capacity.Max(need)
	if err := s.rings.Grow(ctx, ringCapacities(next)); err != nil {
		return err
	}
	// Rings round up; read the real capacities back.
	got := s.rings.Capacities()
	next.Paths = min(got[ring.Paths], got[ring.Paints])
	next.Contours = got[ring.Contours]
	next.TessVertices = got[ring.Tess]
	next.TriangleVertices = got[ring.Triangles]
	next.GradientSpans = got[ring.Gradients]
	if need.CoverageSamples > next.CoverageSamples {
		next.CoverageSamples = need.CoverageSamples
	}
	slogger().Debug("flush: grew rings", "from", s.capacity.String(), "to", next.String())
	s.capacity = next
	return nil
}

// EndFrame executes the remaining draws. A frame always executes at least
// one flush so its load action is applied.
func (s *Scheduler) EndFrame(ctx context.Context) error {
	if s.broken != nil {
		return s.broken
	}
	if !s.inFrame {
		return ErrNoFrame
	}
	err := s.flush(ctx)
	s.inFrame = false
	s.current = nil
	return err
}

// flush seals the current flush and executes it.
func (s *Scheduler) flush(ctx context.Context) error {
	s.serial++
	guards, err := s.rings.Acquire(ctx, s.serial)
	if err != nil {
		s.serial--
		return fmt.Errorf("flush: acquire ring slots: %w", err)
	}
	desc := s.current.Seal(guards, s.strategy, s.frame, s.serial)
	desc.Index = s.frameIndex
	desc.LoadAction = s.frame.LoadAction
	if s.frameIndex > 0 {
		desc.LoadAction = LoadPreserve
	}
	s.frameIndex++

	if err := guards.Release(); err != nil {
		return s.fail(err)
	}
	if err := s.exec.Execute(ctx, desc); err != nil {
		return s.fail(err)
	}
	s.stats = append(s.stats, desc.Stats)
	st := desc.Stats
	slogger().Debug("flush: executed",
		"serial", st.Serial, "draws", st.Draws, "batches", st.Batches,
		"prepasses", st.Prepasses, "subpasses", st.Subpasses, "barriers", st.Barriers)
	return nil
}

func (s *Scheduler) fail(err error) error {
	s.broken = fmt.Errorf("%w: %w", ErrUnusable, err)
	s.inFrame = false
	slogger().Error("flush: fatal executor error", "err", err)
	return s.broken
}

// Destroy releases the rings.
func (s *Scheduler) Destroy() {
	if s.rings != nil {
		s.rings.Destroy()
		s.rings = nil
	}
}
