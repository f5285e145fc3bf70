// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/pls/internal/ring"
)

// ringBacking stores each slot of a ring twice: host memory the flush
// writes records into and a GPU buffer the shaders bind. Commit uploads the
// host copy with queue.WriteBuffer.
type ringBacking struct {
	device hal.Device
	queue  hal.Queue
	kind   ring.Kind
	depth  int
	size   int

	host    [][]byte
	buffers []hal.Buffer
}

func newRingBacking(device hal.Device, queue hal.Queue, kind ring.Kind, depth int) *ringBacking {
	return &ringBacking{device: device, queue: queue, kind: kind, depth: depth}
}

// Map returns the host copy of slot.
func (b *ringBacking) Map(slot int) []byte { return b.host[slot] }

// Commit uploads slot to its GPU buffer.
func (b *ringBacking) Commit(slot int, shadow []byte) error {
	data := b.host[slot]
	if shadow != nil {
		copy(data, shadow)
	}
	b.queue.WriteBuffer(b.buffers[slot], 0, data)
	return nil
}

// Resize replaces every slot with size bytes.
func (b *ringBacking) Resize(size int) error {
	b.Destroy()
	usage := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	if b.kind == ring.Uniforms {
		usage = gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	}
	b.host = make([][]byte, b.depth)
	b.buffers = make([]hal.Buffer, b.depth)
	for i := range b.depth {
		buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("pls_ring_%s_%d", b.kind, i),
			Size:  uint64(size),
			Usage: usage,
		})
		if err != nil {
			b.Destroy()
			return fmt.Errorf("%w: %s ring buffer: %w", ErrResourceCreation, b.kind, err)
		}
		b.buffers[i] = buf
		b.host[i] = ring.AlignedBytes(size)
	}
	b.size = size
	slogger().Debug("gpu: ring resized", "kind", b.kind.String(), "bytes", size, "depth", b.depth)
	return nil
}

// binding returns the whole of slot as a bind group resource.
func (b *ringBacking) binding(slot int) gputypes.BufferBinding {
	return gputypes.BufferBinding{Buffer: b.buffers[slot].NativeHandle(), Offset: 0, Size: uint64(b.size)}
}

// Destroy releases the GPU buffers.
func (b *ringBacking) Destroy() {
	for _, buf := range b.buffers {
		if buf != nil {
			b.device.DestroyBuffer(buf)
		}
	}
	b.buffers = nil
	b.host = nil
	b.size = 0
}
