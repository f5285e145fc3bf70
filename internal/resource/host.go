// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrInvalidTexture is returned for textures with bad dimensions or levels.
var ErrInvalidTexture = errors.New("resource: invalid texture")

var lastID atomic.Uint32

// NextID returns a process-unique non-zero resource id.
func NextID() uint32 { return lastID.Add(1) }

// HostBuffer is a RenderBuffer kept in host memory. Executors that upload
// to the device embed it and keep the CPU copy for bounds computation.
type HostBuffer struct {
	id    uint32
	kind  BufferKind
	flags BufferFlags
	data  []byte
}

// NewHostBuffer allocates a zeroed buffer of size bytes.
func NewHostBuffer(kind BufferKind, flags BufferFlags, size int) *HostBuffer {
	return &HostBuffer{id: NextID(), kind: kind, flags: flags, data: make([]byte, max(size, 0))}
}

func (b *HostBuffer) ID() uint32         { return b.id }
func (b *HostBuffer) Kind() BufferKind   { return b.kind }
func (b *HostBuffer) Flags() BufferFlags { return b.flags }
func (b *HostBuffer) Size() int          { return len(b.data) }
func (b *HostBuffer) Bytes() []byte      { return b.data }

// Update copies data to the start of the buffer.
func (b *HostBuffer) Update(data []byte) error {
	if len(data) > len(b.data) {
		return fmt.Errorf("%w: %d > %d", ErrBufferTooSmall, len(data), len(b.data))
	}
	copy(b.data, data)
	return nil
}

// HostTexture is a Texture kept in host memory.
type HostTexture struct {
	id            uint32
	width, height int
	levels        [][]byte
}

// NewHostTexture checks that every level has the size of its mip and wraps
// them. levels[0] is the full-size image.
func NewHostTexture(width, height int, levels [][]byte) (*HostTexture, error) {
	if width <= 0 || height <= 0 || len(levels) == 0 {
		return nil, fmt.Errorf("%w: %dx%d with %d levels", ErrInvalidTexture, width, height, len(levels))
	}
	w, h := width, height
	for i, l := range levels {
		if len(l) != w*h*4 {
			return nil, fmt.Errorf("%w: level %d has %d bytes, want %d", ErrInvalidTexture, i, len(l), w*h*4)
		}
		w, h = max(w/2, 1), max(h/2, 1)
	}
	return &HostTexture{id: NextID(), width: width, height: height, levels: levels}, nil
}

func (t *HostTexture) ID() uint32         { return t.id }
func (t *HostTexture) Width() int         { return t.width }
func (t *HostTexture) Height() int        { return t.height }
func (t *HostTexture) MipLevels() int     { return len(t.levels) }
func (t *HostTexture) Level(i int) []byte { return t.levels[i] }

// LevelSize returns the dimensions of mip level i.
func LevelSize(width, height, i int) (int, int) {
	return max(width>>i, 1), max(height>>i, 1)
}
