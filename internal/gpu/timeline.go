// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// waitSlice bounds each fence wait so a Wait can observe cancellation.
const waitSlice = 10 * time.Millisecond

// fenceTimeline tracks flush completion with one fence whose value is the
// serial of the last submitted flush.
type fenceTimeline struct {
	device hal.Device
	fence  hal.Fence

	mu        sync.Mutex
	submitted uint64
	completed uint64
}

func newFenceTimeline(device hal.Device) (*fenceTimeline, error) {
	fence, err := device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("%w: fence: %w", ErrResourceCreation, err)
	}
	return &fenceTimeline{device: device, fence: fence}, nil
}

// submit records that serial was handed to the queue.
func (t *fenceTimeline) submit(serial uint64) {
	t.mu.Lock()
	t.submitted = max(t.submitted, serial)
	t.mu.Unlock()
}

// poll advances completed as far as the fence allows without blocking.
func (t *fenceTimeline) poll() uint64 {
	for t.completed < t.submitted {
		ok, err := t.device.Wait(t.fence, t.completed+1, 0)
		if err != nil || !ok {
			break
		}
		t.completed++
	}
	return t.completed
}

// Completed returns the highest serial the GPU has finished.
func (t *fenceTimeline) Completed() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.poll()
}

// Wait blocks until serial completes or ctx is done.
func (t *fenceTimeline) Wait(ctx context.Context, serial uint64) error {
	for {
		t.mu.Lock()
		done := t.poll() >= serial
		pending := serial <= t.submitted
		t.mu.Unlock()
		if done {
			return nil
		}
		if !pending {
			return fmt.Errorf("gpu: wait for serial %d that was never submitted", serial)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := t.device.Wait(t.fence, serial, waitSlice)
		if err != nil {
			return fmt.Errorf("gpu: wait for serial %d: %w", serial, err)
		}
		if ok {
			t.mu.Lock()
			t.completed = max(t.completed, serial)
			t.mu.Unlock()
			return nil
		}
	}
}

func (t *fenceTimeline) destroy() {
	if t.fence != nil {
		t.device.DestroyFence(t.fence)
		t.fence = nil
	}
}
