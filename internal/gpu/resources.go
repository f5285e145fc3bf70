// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"honnef.co/go/safeish"

	"github.com/gogpu/pls/internal/resource"
	"github.com/gogpu/pls/internal/ring"
)

// renderBuffer keeps the host copy for bounds and mirrors every update
// into a vertex or index buffer.
type renderBuffer struct {
	*resource.HostBuffer
	queue hal.Queue
	buf   hal.Buffer
}

// Update replaces the contents on both copies.
func (b *renderBuffer) Update(data []byte) error {
	if err := b.HostBuffer.Update(data); err != nil {
		return err
	}
	if n := len(data); n%4 != 0 {
		padded := make([]byte, n+4-n%4)
		copy(padded, data)
		data = padded
	}
	b.queue.WriteBuffer(b.buf, 0, data)
	return nil
}

func bufferUsage(kind resource.BufferKind) gputypes.BufferUsage {
	if kind == resource.BufferIndex {
		return gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	}
	return gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
}

// imageBinding is a storage buffer of texels with its group 1 bind group.
type imageBinding struct {
	buf   hal.Buffer
	group hal.BindGroup
}

func newImageBinding(device hal.Device, queue hal.Queue, layout hal.BindGroupLayout, label string, data []byte) (imageBinding, error) {
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return imageBinding{}, fmt.Errorf("%w: %s buffer: %w", ErrResourceCreation, label, err)
	}
	queue.WriteBuffer(buf, 0, data)
	group, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label + "_group",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{{
			Binding:  0,
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: uint64(len(data))},
		}},
	})
	if err != nil {
		device.DestroyBuffer(buf)
		return imageBinding{}, fmt.Errorf("%w: %s bind group: %w", ErrResourceCreation, label, err)
	}
	return imageBinding{buf: buf, group: group}, nil
}

func (b *imageBinding) destroy(device hal.Device) {
	if b.group != nil {
		device.DestroyBindGroup(b.group)
	}
	if b.buf != nil {
		device.DestroyBuffer(b.buf)
	}
	*b = imageBinding{}
}

// texture is an image texture with its texels on the device.
type texture struct {
	*resource.HostTexture
	binding imageBinding
}

// packTexels lays out a mip chain the way the shader reads it: the level
// count, then offset, width and height per level in words, then the
// levels' RGBA8 texels one word each.
func packTexels(width, height int, levels [][]byte) []byte {
	header := 1 + 3*len(levels)
	words := header
	for _, l := range levels {
		words += len(l) / 4
	}
	out := ring.AlignedBytes(words * 4)
	w := safeish.SliceCast[[]uint32](out)
	w[0] = uint32(len(levels))
	offset := header
	for i, l := range levels {
		lw, lh := resource.LevelSize(width, height, i)
		w[1+3*i], w[2+3*i], w[3+3*i] = uint32(offset), uint32(lw), uint32(lh)
		copy(out[offset*4:], l)
		offset += len(l) / 4
	}
	return out
}

// packImage packs the first width x height pixels of img as one level.
func packImage(img *image.RGBA, width, height int) []byte {
	level := make([]byte, width*height*4)
	for y := range height {
		row := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(level[y*width*4:(y+1)*width*4], img.Pix[row:row+width*4])
	}
	return packTexels(width, height, [][]byte{level})
}
