// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ring

import (
	"context"
	"errors"
	"fmt"
	"math/bits"

	"golang.org/x/exp/constraints"
	"honnef.co/go/safeish"
)

// Sentinel errors.
var (
	// ErrSlotInFlight is returned by TryAcquire when the next slot is still
	// being read by an earlier flush.
	ErrSlotInFlight = errors.New("ring: slot still in flight")

	// ErrGuardReleased is returned when a guard is released twice.
	ErrGuardReleased = errors.New("ring: guard already released")

	// ErrGuardHeld is returned when a slot is acquired or the ring resized
	// while a guard is outstanding.
	ErrGuardHeld = errors.New("ring: guard still held")
)

// Kind identifies one of the rings in a Set.
type Kind uint8

// Ring kinds.
const (
	Paths Kind = iota
	Paints
	Contours
	Tess
	Triangles
	Gradients
	Uniforms

	KindCount
)

var kindNames = [KindCount]string{"paths", "paints", "contours", "tess", "triangles", "gradients", "uniforms"}

// String returns the ring name.
func (k Kind) String() string {
	if k < KindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Backing stores the bytes of every slot of one ring.
type Backing interface {
	// Map returns writable memory for slot, or nil when writes must be
	// staged in a shadow buffer and handed to Commit.
	Map(slot int) []byte
	// Commit publishes the contents of slot. shadow is nil when Map
	// returned memory.
	Commit(slot int, shadow []byte) error
	// Resize reallocates every slot to size bytes. Contents are discarded.
	Resize(size int) error
	Destroy()
}

// Ring is a fixed-depth ring of equally sized slots.
type Ring struct {
	kind     Kind
	elemSize int
	capacity int
	depth    int

	next     int
	serials  []uint64
	backing  Backing
	shadow   []byte
	timeline Timeline
	held     bool
}

// New creates a ring of depth slots, each holding capacity elements of
// elemSize bytes, and sizes the backing to match. elemSize must be a
// multiple of 16.
func New(kind Kind, elemSize, capacity, depth int, b Backing, tl Timeline) (*Ring, error) {
	if depth < 1 || elemSize <= 0 || elemSize != alignUp(elemSize, 16) || capacity < 0 {
		return nil, fmt.Errorf("ring: invalid %s ring (depth %d, element %d bytes, capacity %d)", kind, depth, elemSize, capacity)
	}
	r := &Ring{
		kind:     kind,
		elemSize: elemSize,
		capacity: capacity,
		depth:    depth,
		serials:  make([]uint64, depth),
		backing:  b,
		timeline: tl,
	}
	if err := b.Resize(r.slotBytes()); err != nil {
		return nil, fmt.Errorf("ring: size %s ring: %w", kind, err)
	}
	return r, nil
}

// Kind returns the ring kind.
func (r *Ring) Kind() Kind { return r.kind }

// Capacity returns the number of elements per slot.
func (r *Ring) Capacity() int { return r.capacity }

// Depth returns the number of slots.
func (r *Ring) Depth() int { return r.depth }

// ElemSize returns the element size in bytes.
func (r *Ring) ElemSize() int { return r.elemSize }

// Backing returns the backing store.
func (r *Ring) Backing() Backing { return r.backing }

// NextSlot returns the slot the next acquisition will use.
func (r *Ring) NextSlot() int { return r.next }

// slotBytes is the byte size of a slot. It is never zero so every backing
// can bind it.
func (r *Ring) slotBytes() int {
	return max(r.capacity, 1) * r.elemSize
}

// TryAcquire takes the next slot for the flush with the given serial. It
// fails with ErrSlotInFlight when the flush that last used the slot has not
// completed.
func (r *Ring) TryAcquire(serial uint64) (*Guard, error) {
	if r.held {
		return nil, ErrGuardHeld
	}
	slot := r.next
	if r.serials[slot] > r.timeline.Completed() {
		return nil, fmt.Errorf("%w: %s slot %d waits for serial %d", ErrSlotInFlight, r.kind, slot, r.serials[slot])
	}
	g := &Guard{ring: r, slot: slot, serial: serial}
	if mem := r.backing.Map(slot); mem != nil {
		g.data = mem[:r.slotBytes()]
	} else {
		if len(r.shadow) != r.slotBytes() {
			r.shadow = AlignedBytes(r.slotBytes())
		}
		clear(r.shadow)
		g.data = r.shadow
		g.shadow = true
	}
	r.held = true
	return g, nil
}

// Acquire is TryAcquire that first waits for the slot's previous flush.
func (r *Ring) Acquire(ctx context.Context, serial uint64) (*Guard, error) {
	if err := r.timeline.Wait(ctx, r.serials[r.next]); err != nil {
		return nil, fmt.Errorf("ring: wait for %s slot %d: %w", r.kind, r.next, err)
	}
	return r.TryAcquire(serial)
}

// Grow raises the capacity to at least n elements, rounded up to a power
// of two. Every slot must be idle; Grow waits for in-flight flushes.
func (r *Ring) Grow(ctx context.Context, n int) error {
	if n <= r.capacity {
		return nil
	}
	if r.held {
		return ErrGuardHeld
	}
	for _, s := range r.serials {
		if err := r.timeline.Wait(ctx, s); err != nil {
			return fmt.Errorf("ring: drain %s ring: %w", r.kind, err)
		}
	}
	r.capacity = nextPow2(n)
	r.shadow = nil
	if err := r.backing.Resize(r.slotBytes()); err != nil {
		return fmt.Errorf("ring: grow %s ring to %d: %w", r.kind, r.capacity, err)
	}
	return nil
}

// Destroy releases the backing store.
func (r *Ring) Destroy() {
	if r.backing != nil {
		r.backing.Destroy()
		r.backing = nil
	}
}

// Guard is exclusive write access to one slot. Release publishes the slot.
type Guard struct {
	ring     *Ring
	slot     int
	serial   uint64
	data     []byte
	shadow   bool
	released bool
}

// Slot returns the slot index.
func (g *Guard) Slot() int { return g.slot }

// Serial returns the flush serial the slot is written for.
func (g *Guard) Serial() uint64 { return g.serial }

// Bytes returns the slot memory.
func (g *Guard) Bytes() []byte { return g.data }

// Release commits the slot, stamps it with the guard's serial and advances
// the ring. A second call returns ErrGuardReleased.
func (g *Guard) Release() error {
	if g.released {
		return ErrGuardReleased
	}
	g.released = true
	r := g.ring
	r.held = false
	r.serials[g.slot] = g.serial
	r.next = (g.slot + 1) % r.depth
	var shadow []byte
	if g.shadow {
		shadow = g.data
	}
	if err := r.backing.Commit(g.slot, shadow); err != nil {
		return fmt.Errorf("ring: commit %s slot %d: %w", r.kind, g.slot, err)
	}
	return nil
}

// Records views the slot as a slice of T. The element size of the ring must
// equal the size of T.
func Records[T any](g *Guard) []T {
	s := safeish.SliceCast[[]T](g.data)
	return s[:g.ring.capacity]
}

// View reinterprets committed slot bytes as a slice of T. Executors use it
// to read records back.
func View[T any](b []byte) []T {
	return safeish.SliceCast[[]T](b)
}

// AlignedBytes allocates n bytes aligned for any record type. Backings use
// it for slot memory that View reinterprets.
func AlignedBytes(n int) []byte {
	words := make([]uint64, (n+7)/8)
	return safeish.SliceCast[[]byte](words)[:n]
}

func alignUp[T constraints.Integer](x, a T) T {
	return (x + a - 1) / a * a
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
