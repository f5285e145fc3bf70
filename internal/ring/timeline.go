// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ring

import (
	"context"
	"sync"
)

// Timeline reports how far the GPU has progressed through submitted
// flushes. Serials increase by one per flush.
type Timeline interface {
	// Completed returns the highest serial whose work has finished.
	Completed() uint64
	// Wait blocks until serial has completed or ctx is done.
	Wait(ctx context.Context, serial uint64) error
}

// ManualTimeline is a Timeline advanced explicitly with Signal. Executors
// that finish work synchronously signal after each flush; tests use it to
// hold slots in flight.
type ManualTimeline struct {
	mu        sync.Mutex
	completed uint64
	changed   chan struct{}
}

// NewManualTimeline returns a timeline with nothing completed.
func NewManualTimeline() *ManualTimeline {
	return &ManualTimeline{changed: make(chan struct{})}
}

// Completed returns the highest signaled serial.
func (t *ManualTimeline) Completed() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// Signal marks every serial up to and including serial as completed.
func (t *ManualTimeline) Signal(serial uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if serial <= t.completed {
		return
	}
	t.completed = serial
	close(t.changed)
	t.changed = make(chan struct{})
}

// Wait blocks until serial is signaled or ctx is done.
func (t *ManualTimeline) Wait(ctx context.Context, serial uint64) error {
	for {
		t.mu.Lock()
		if t.completed >= serial {
			t.mu.Unlock()
			return nil
		}
		ch := t.changed
		t.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
