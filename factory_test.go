// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pls

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestMakeImageTextureMips(t *testing.T) {
	ctx := newTestContext(t)
	pix := make([]byte, 8*4*4)
	for i := 0; i < len(pix); i += 4 {
		copy(pix[i:], []byte{200, 100, 50, 255})
	}
	tests := []struct {
		mips, want int
	}{
		{0, 4},
		{2, 2},
		{9, 4},
	}
	for _, tt := range tests {
		tex, err := ctx.MakeImageTexture(8, 4, tt.mips, pix)
		if err != nil {
			t.Fatalf("MakeImageTexture(mips=%d) error = %v", tt.mips, err)
		}
		if tex.MipLevels() != tt.want {
			t.Errorf("mips=%d: MipLevels() = %d, want %d", tt.mips, tex.MipLevels(), tt.want)
		}
	}

	tex, err := ctx.MakeImageTexture(8, 4, 0, pix)
	if err != nil {
		t.Fatal(err)
	}
	last := tex.Level(tex.MipLevels() - 1)
	if len(last) != 4 || last[0] != 200 || last[1] != 100 || last[2] != 50 || last[3] != 255 {
		t.Errorf("1x1 level = %v, want the uniform color", last)
	}
}

func TestMakeImageTextureInvalid(t *testing.T) {
	ctx := newTestContext(t)
	if _, err := ctx.MakeImageTexture(2, 2, 1, make([]byte, 15)); !errors.Is(err, ErrInvalidTexture) {
		t.Errorf("short pixels error = %v, want ErrInvalidTexture", err)
	}
	if _, err := ctx.MakeImageTexture(0, 2, 1, nil); !errors.Is(err, ErrInvalidTexture) {
		t.Errorf("zero width error = %v, want ErrInvalidTexture", err)
	}
}

func TestMakeImageTextureFromImagePremultiplies(t *testing.T) {
	ctx := newTestContext(t)
	src := image.NewNRGBA(image.Rect(5, 5, 7, 7))
	for y := 5; y < 7; y++ {
		for x := 5; x < 7; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 255, A: 128})
		}
	}
	tex, err := ctx.MakeImageTextureFromImage(src)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width() != 2 || tex.Height() != 2 {
		t.Fatalf("size = %dx%d, want 2x2", tex.Width(), tex.Height())
	}
	if px := tex.Level(0)[:4]; px[0] != 128 || px[3] != 128 {
		t.Errorf("texel = %v, want premultiplied red", px)
	}
}

func TestDrawImageAndMesh(t *testing.T) {
	ctx := newTestContext(t)
	red := []byte{255, 0, 0, 255, 255, 0, 0, 255, 255, 0, 0, 255, 255, 0, 0, 255}
	tex, err := ctx.MakeImageTexture(2, 2, 1, red)
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := ctx.MakeMesh(
		[]float32{40, 40, 60, 40, 60, 60, 40, 60},
		[]float32{0, 0, 1, 0, 1, 1, 0, 1},
		[]uint16{0, 1, 2, 0, 2, 3},
	)
	if err != nil {
		t.Fatal(err)
	}
	img := begin(t, ctx)
	if h, err := ctx.DrawImage(bg, tex, Scale(10, 10), BlendSrcOver, 0, 1); err != nil || !h.Visible() {
		t.Fatalf("DrawImage() = %v, %v", h, err)
	}
	if h, err := ctx.DrawImageMesh(bg, tex, mesh, Identity(), BlendSrcOver, 0, 1); err != nil || !h.Visible() {
		t.Fatalf("DrawImageMesh() = %v, %v", h, err)
	}
	if err := ctx.Flush(bg); err != nil {
		t.Fatal(err)
	}
	for _, pt := range []image.Point{{10, 10}, {50, 50}} {
		if c := img.RGBAAt(pt.X, pt.Y); c.R != 255 || c.G != 0 {
			t.Errorf("pixel %v = %v, want red", pt, c)
		}
	}
	if c := img.RGBAAt(30, 50); c.G != 255 {
		t.Errorf("pixel between draws = %v, want white", c)
	}
}

func TestMakeMeshInvalid(t *testing.T) {
	ctx := newTestContext(t)
	if _, err := ctx.MakeMesh([]float32{0, 0}, []float32{0}, nil); err == nil {
		t.Error("mismatched uv count should fail")
	}
	if _, err := ctx.MakeMesh(nil, nil, []uint16{0, 1}); err == nil {
		t.Error("partial triangle should fail")
	}
}
