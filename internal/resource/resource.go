// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package resource defines the GPU objects the scene-graph collaborator can
// create through the factory: render buffers for image meshes and image
// textures. Executors implement them; draws only hold references.
package resource

import "errors"

// ErrBufferTooSmall is returned when data does not fit a render buffer.
var ErrBufferTooSmall = errors.New("resource: data exceeds buffer size")

// BufferKind is the role of a render buffer.
type BufferKind uint8

// Render buffer kinds.
const (
	// BufferVertex holds float32 x, y pairs.
	BufferVertex BufferKind = iota
	// BufferUV holds float32 u, v pairs.
	BufferUV
	// BufferIndex holds uint16 triangle indices.
	BufferIndex
)

// BufferFlags describe how a render buffer is updated.
type BufferFlags uint8

// Render buffer flags.
const (
	// BufferMappedOnceAtInitialization marks buffers whose contents never
	// change after the first upload.
	BufferMappedOnceAtInitialization BufferFlags = 1 << iota
)

// RenderBuffer is a caller-owned GPU buffer.
type RenderBuffer interface {
	ID() uint32
	Kind() BufferKind
	Flags() BufferFlags
	Size() int
	// Update replaces the buffer contents starting at offset zero.
	Update(data []byte) error
	// Bytes returns the CPU copy of the contents.
	Bytes() []byte
}

// Texture is an immutable RGBA8 premultiplied image with a mip chain.
type Texture interface {
	ID() uint32
	Width() int
	Height() int
	MipLevels() int
	// Level returns the pixels of mip level i, row-major, 4 bytes per pixel.
	Level(i int) []byte
}
