// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pls

import (
	"fmt"
	"image"
	"math/bits"

	"golang.org/x/image/draw"
	"honnef.co/go/safeish"

	"github.com/gogpu/pls/internal/resource"
)

// MakeRenderBuffer creates a buffer of size bytes for image meshes.
func (c *Context) MakeRenderBuffer(kind BufferKind, flags BufferFlags, size int) (RenderBuffer, error) {
	if c.closed {
		return nil, ErrClosed
	}
	return c.exec.MakeRenderBuffer(kind, flags, size)
}

// MakeImageTexture uploads a width x height premultiplied RGBA8 image.
// The executor receives mips levels generated with bilinear
// downsampling; zero or a count beyond the full chain gives the full
// chain down to 1x1.
func (c *Context) MakeImageTexture(width, height, mips int, pixels []byte) (Texture, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil, fmt.Errorf("%w: %dx%d with %d bytes", ErrInvalidTexture, width, height, len(pixels))
	}
	base := &image.RGBA{Pix: pixels, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	return c.exec.MakeImageTexture(width, height, mipChain(base, mips))
}

// MakeImageTextureFromImage converts img to premultiplied RGBA and uploads
// it with a full mip chain.
func (c *Context) MakeImageTextureFromImage(img image.Image) (Texture, error) {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return c.MakeImageTexture(b.Dx(), b.Dy(), 0, rgba.Pix)
}

// MakeMesh creates the three render buffers of an image mesh.
func (c *Context) MakeMesh(vertices, uvs []float32, indices []uint16) (Mesh, error) {
	if len(vertices) != len(uvs) || len(vertices)%2 != 0 || len(indices)%3 != 0 {
		return Mesh{}, fmt.Errorf("pls: mesh with %d vertex floats, %d uv floats and %d indices", len(vertices), len(uvs), len(indices))
	}
	var m Mesh
	for _, b := range []struct {
		dst  *RenderBuffer
		kind BufferKind
		data []byte
	}{
		{&m.Vertices, BufferVertex, safeish.SliceCast[[]byte](vertices)},
		{&m.UVs, BufferUV, safeish.SliceCast[[]byte](uvs)},
		{&m.Indices, BufferIndex, safeish.SliceCast[[]byte](indices)},
	} {
		buf, err := c.MakeRenderBuffer(b.kind, BufferMappedOnceAtInitialization, max(len(b.data), 4))
		if err != nil {
			return Mesh{}, err
		}
		if err := buf.Update(b.data); err != nil {
			return Mesh{}, err
		}
		*b.dst = buf
	}
	return m, nil
}

// mipChain returns base followed by successively halved levels.
func mipChain(base *image.RGBA, mips int) [][]byte {
	w, h := base.Rect.Dx(), base.Rect.Dy()
	full := bits.Len(uint(max(w, h)))
	if mips <= 0 || mips > full {
		mips = full
	}
	levels := [][]byte{base.Pix}
	prev := base
	for i := 1; i < mips; i++ {
		lw, lh := resource.LevelSize(w, h, i)
		next := image.NewRGBA(image.Rect(0, 0, lw, lh))
		draw.BiLinear.Scale(next, next.Rect, prev, prev.Rect, draw.Src, nil)
		levels = append(levels, next.Pix)
		prev = next
	}
	return levels
}
