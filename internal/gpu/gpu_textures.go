// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

const (
	sampleCount   = 4
	colorFormat   = gputypes.TextureFormatBGRA8Unorm
	stencilFormat = gputypes.TextureFormatDepth24PlusStencil8
)

// attachment is a texture with its default view.
type attachment struct {
	tex  hal.Texture
	view hal.TextureView
}

func (a *attachment) destroy(device hal.Device) {
	if a.view != nil {
		device.DestroyTextureView(a.view)
	}
	if a.tex != nil {
		device.DestroyTexture(a.tex)
	}
	*a = attachment{}
}

func newAttachment(device hal.Device, label string, w, h, samples uint32, format gputypes.TextureFormat, usage gputypes.TextureUsage) (attachment, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return attachment{}, fmt.Errorf("create %s: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label + "_view"})
	if err != nil {
		device.DestroyTexture(tex)
		return attachment{}, fmt.Errorf("create %s view: %w", label, err)
	}
	return attachment{tex: tex, view: view}, nil
}

// targetSet holds the attachments every flush renders into:
//   - color: 4x BGRA8Unorm, stored between flushes of a frame
//   - clip: 4x Depth24PlusStencil8; depth holds clip ids, stencil winding
//   - resolve: 1x BGRA8Unorm with CopySrc, only for readback targets
//
// Surface targets resolve straight into the caller's view.
type targetSet struct {
	color   attachment
	clip    attachment
	resolve attachment

	width, height uint32
	readback      bool
}

// ensure recreates the attachments when the size or the target kind
// changes. It reports whether new attachments were created, in which case
// their contents are undefined.
func (ts *targetSet) ensure(device hal.Device, w, h uint32, readback bool) (bool, error) {
	if ts.width == w && ts.height == h && ts.readback == readback && ts.color.tex != nil {
		return false, nil
	}
	ts.destroy(device)

	var err error
	if ts.color, err = newAttachment(device, "pls_color", w, h, sampleCount, colorFormat,
		gputypes.TextureUsageRenderAttachment); err != nil {
		return false, err
	}
	if ts.clip, err = newAttachment(device, "pls_clip_stencil", w, h, sampleCount, stencilFormat,
		gputypes.TextureUsageRenderAttachment); err != nil {
		ts.destroy(device)
		return false, err
	}
	if readback {
		if ts.resolve, err = newAttachment(device, "pls_resolve", w, h, 1, colorFormat,
			gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc); err != nil {
			ts.destroy(device)
			return false, err
		}
	}
	ts.width, ts.height, ts.readback = w, h, readback
	return true, nil
}

func (ts *targetSet) destroy(device hal.Device) {
	ts.resolve.destroy(device)
	ts.clip.destroy(device)
	ts.color.destroy(device)
	ts.width, ts.height = 0, 0
}
