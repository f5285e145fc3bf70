// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ring

// HostBacking keeps every slot in host memory. Map always succeeds, so
// writes land in place and Commit has nothing to copy.
type HostBacking struct {
	slots [][]byte
	depth int
}

// NewHostBacking returns a backing for a ring of depth slots.
func NewHostBacking(depth int) *HostBacking {
	return &HostBacking{depth: depth}
}

// Map returns the memory of slot.
func (h *HostBacking) Map(slot int) []byte { return h.slots[slot] }

// Slot returns the committed bytes of slot.
func (h *HostBacking) Slot(slot int) []byte { return h.slots[slot] }

// Commit is a no-op for host memory.
func (h *HostBacking) Commit(int, []byte) error { return nil }

// Resize reallocates every slot.
func (h *HostBacking) Resize(size int) error {
	h.slots = make([][]byte, h.depth)
	for i := range h.slots {
		h.slots[i] = AlignedBytes(size)
	}
	return nil
}

// Destroy drops the slots.
func (h *HostBacking) Destroy() { h.slots = nil }
