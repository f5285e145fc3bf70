// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ring

import (
	"context"
	"errors"
	"fmt"
)

// DefaultDepth is the number of slots per ring. Three slots let the CPU
// write one flush while the GPU reads the two before it.
const DefaultDepth = 3

// Set is one ring per Kind, all with the same depth. A flush acquires a slot
// in every ring at once.
type Set struct {
	rings [KindCount]*Ring
}

// Guards holds one guard per ring.
type Guards [KindCount]*Guard

// NewSet creates the rings. newBacking is called once per kind.
func NewSet(depth int, elemSizes, capacities [KindCount]int, newBacking func(Kind) (Backing, error), tl Timeline) (*Set, error) {
	s := &Set{}
	for k := Kind(0); k < KindCount; k++ {
		b, err := newBacking(k)
		if err != nil {
			s.Destroy()
			return nil, fmt.Errorf("ring: create %s backing: %w", k, err)
		}
		r, err := New(k, elemSizes[k], capacities[k], depth, b, tl)
		if err != nil {
			b.Destroy()
			s.Destroy()
			return nil, err
		}
		s.rings[k] = r
	}
	return s, nil
}

// Ring returns the ring of kind k.
func (s *Set) Ring(k Kind) *Ring { return s.rings[k] }

// Capacities returns the per-slot element capacity of every ring.
func (s *Set) Capacities() [KindCount]int {
	var c [KindCount]int
	for k, r := range s.rings {
		c[k] = r.capacity
	}
	return c
}

// Acquire takes the next slot of every ring for serial, waiting for
// in-flight flushes as needed. On failure no guard is held.
func (s *Set) Acquire(ctx context.Context, serial uint64) (Guards, error) {
	var g Guards
	for k, r := range s.rings {
		guard, err := r.Acquire(ctx, serial)
		if err != nil {
			for _, held := range g[:k] {
				held.abandon()
			}
			return Guards{}, err
		}
		g[k] = guard
	}
	return g, nil
}

// Grow raises the capacity of each ring whose need exceeds it.
func (s *Set) Grow(ctx context.Context, need [KindCount]int) error {
	for k, r := range s.rings {
		if err := r.Grow(ctx, need[k]); err != nil {
			return err
		}
	}
	return nil
}

// Destroy releases every backing.
func (s *Set) Destroy() {
	for _, r := range s.rings {
		if r != nil {
			r.Destroy()
		}
	}
}

// Release releases every guard and joins the errors.
func (g Guards) Release() error {
	var errs []error
	for _, guard := range g {
		if guard == nil {
			continue
		}
		if err := guard.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// abandon drops the guard without publishing the slot.
func (g *Guard) abandon() {
	if !g.released {
		g.released = true
		g.ring.held = false
	}
}
