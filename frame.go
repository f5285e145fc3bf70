// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pls

import (
	"fmt"

	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/flush"
)

// FrameDescriptor configures one frame.
type FrameDescriptor struct {
	// Target receives the pixels. The software executor and the gpu
	// executor accept an *image.RGBA; the gpu executor also accepts a
	// gpu.SurfaceTarget.
	Target        any
	Width, Height int
	// LoadAction applies to the first flush. Later flushes of the frame
	// always preserve the target.
	LoadAction LoadAction
	// ClearColor is used by LoadClear.
	ClearColor RGBA
	// InterlockOverride, when set, renegotiates for this frame starting at
	// the given mode. It cannot raise the context's mode.
	InterlockOverride *InterlockMode
	// Wireframe draws triangle edges instead of filled coverage.
	Wireframe bool
}

func (f *FrameDescriptor) validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidFrame, f.Width, f.Height)
	}
	if f.Target == nil {
		return fmt.Errorf("%w: nil target", ErrInvalidFrame)
	}
	if f.InterlockOverride != nil && !validMode(*f.InterlockOverride) {
		return fmt.Errorf("%w: interlock override %v", ErrInvalidFrame, *f.InterlockOverride)
	}
	return nil
}

func validMode(m InterlockMode) bool {
	for _, mode := range caps.Modes {
		if mode == m {
			return true
		}
	}
	return false
}

func (f *FrameDescriptor) frame() flush.Frame {
	return flush.Frame{
		Width:      f.Width,
		Height:     f.Height,
		Target:     f.Target,
		LoadAction: f.LoadAction,
		ClearColor: f.ClearColor.vec4(),
		Wireframe:  f.Wireframe,
	}
}
