// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pls

import (
	"errors"

	"github.com/gogpu/pls/internal/flush"
)

// Sentinel errors returned by Context.
var (
	// ErrUnsupportedHardware is returned by NewContext when no interlock
	// mode can be negotiated on the executor.
	ErrUnsupportedHardware = errors.New("pls: unsupported hardware")

	// ErrContextUnusable is returned by every call after a fatal executor
	// failure. Close the context and create a new one.
	ErrContextUnusable = flush.ErrUnusable

	// ErrFrameInProgress is returned by BeginFrame inside a frame.
	ErrFrameInProgress = flush.ErrFrameInProgress

	// ErrNoFrame is returned by draws and Flush outside a frame.
	ErrNoFrame = flush.ErrNoFrame

	// ErrInvalidTexture is returned by the factory for bad texture sizes
	// or pixel data.
	ErrInvalidTexture = errors.New("pls: invalid texture")

	// ErrInvalidFrame is returned by BeginFrame for empty frames.
	ErrInvalidFrame = errors.New("pls: invalid frame descriptor")

	// ErrTooManyClips is returned when a frame allocates more clip ids than
	// the clip plane can hold.
	ErrTooManyClips = errors.New("pls: too many clips in frame")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("pls: context closed")
)
