// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package caps negotiates how pixel-local storage is realized on a backend.
//
// A backend reports what it can do as an immutable Capabilities value. At
// context creation Negotiate picks exactly one InterlockMode in descending
// preference and the PLS mechanism that backs it. The resulting Strategy is
// passed explicitly to every component; nothing here is global.
package caps

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned when no interlock mode can be realized.
var ErrUnsupported = errors.New("caps: no supported interlock mode")

// InterlockMode is the strategy used to serialize per-pixel
// read-modify-write across overlapping draws.
type InterlockMode uint8

// Interlock modes in descending preference.
const (
	// RasterOrdering relies on hardware raster-ordered fragment access.
	RasterOrdering InterlockMode = iota
	// Atomics accumulates coverage with fragment-shader atomics and merges
	// it in a separate resolve pass.
	Atomics
	// LoadStore emulates PLS with explicit full-screen load and store passes
	// around groups of non-overlapping draws.
	LoadStore
	// MSAA renders with stencil-then-cover on a multisampled target and
	// needs no interlock at all.
	MSAA

	modeCount
)

// Modes lists every interlock mode in preference order.
var Modes = [...]InterlockMode{RasterOrdering, Atomics, LoadStore, MSAA}

// String returns the mode name.
func (m InterlockMode) String() string {
	switch m {
	case RasterOrdering:
		return "rasterOrdering"
	case Atomics:
		return "atomics"
	case LoadStore:
		return "loadStore"
	case MSAA:
		return "msaa"
	default:
		return fmt.Sprintf("InterlockMode(%d)", m)
	}
}

// PLSImpl names the hardware mechanism that stores the per-pixel planes.
type PLSImpl uint8

// PLS mechanisms.
const (
	PLSNone PLSImpl = iota
	PLSNativeExtension
	PLSFramebufferFetch
	PLSInputAttachment
	PLSReadWriteTexture
)

// String returns the mechanism name.
func (p PLSImpl) String() string {
	switch p {
	case PLSNone:
		return "none"
	case PLSNativeExtension:
		return "nativeExtension"
	case PLSFramebufferFetch:
		return "framebufferFetch"
	case PLSInputAttachment:
		return "inputAttachment"
	case PLSReadWriteTexture:
		return "readWriteTexture"
	default:
		return fmt.Sprintf("PLSImpl(%d)", p)
	}
}

// Capabilities is the probed feature set of one backend. It is computed once
// when the executor is created and never changes.
type Capabilities struct {
	// Backend names the executor for logs.
	Backend string

	// RasterOrdering reports raster-ordered fragment access (fragment shader
	// interlock or raster order groups).
	RasterOrdering bool
	// FragmentAtomics reports atomic operations on storage buffers from
	// fragment shaders.
	FragmentAtomics bool
	// ReadWriteTextures reports storage textures readable and writable from
	// fragment shaders.
	ReadWriteTextures bool
	// NativePLS reports a native pixel-local-storage extension.
	NativePLS bool
	// FramebufferFetch reports reading the current attachment value.
	FramebufferFetch bool
	// InputAttachments reports subpass input attachments.
	InputAttachments bool

	// MaxSamples is the largest supported MSAA sample count.
	MaxSamples uint32
	// Stencil reports a stencil attachment format.
	Stencil bool
}

// Full returns capabilities that support every mode. It describes a
// reference backend such as the software executor.
func Full(backend string) Capabilities {
	return Capabilities{
		Backend:           backend,
		RasterOrdering:    true,
		FragmentAtomics:   true,
		ReadWriteTextures: true,
		NativePLS:         true,
		FramebufferFetch:  true,
		InputAttachments:  true,
		MaxSamples:        4,
		Stencil:           true,
	}
}

// plsImplFor returns the preferred mechanism for raster-ordered PLS.
func (c Capabilities) plsImplFor(mode InterlockMode) PLSImpl {
	switch mode {
	case RasterOrdering:
		switch {
		case c.NativePLS:
			return PLSNativeExtension
		case c.FramebufferFetch:
			return PLSFramebufferFetch
		case c.ReadWriteTextures:
			return PLSReadWriteTexture
		}
	case Atomics:
		if c.ReadWriteTextures {
			return PLSReadWriteTexture
		}
	case LoadStore:
		switch {
		case c.InputAttachments:
			return PLSInputAttachment
		case c.FramebufferFetch:
			return PLSFramebufferFetch
		case c.ReadWriteTextures:
			return PLSReadWriteTexture
		}
	}
	return PLSNone
}

// Supports reports whether the mode can be realized.
func (c Capabilities) Supports(mode InterlockMode) bool {
	switch mode {
	case RasterOrdering:
		return c.RasterOrdering && c.plsImplFor(mode) != PLSNone
	case Atomics:
		return c.FragmentAtomics && c.plsImplFor(mode) != PLSNone
	case LoadStore:
		return c.plsImplFor(mode) != PLSNone
	case MSAA:
		return c.Stencil && c.MaxSamples >= 4
	}
	return false
}
