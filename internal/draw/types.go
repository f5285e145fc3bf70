// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import (
	"fmt"

	"github.com/gogpu/pls/internal/caps"
)

// Kind is the variant tag of a Draw.
type Kind uint8

// Draw variants.
const (
	KindPath Kind = iota
	KindImageRect
	KindImageMesh
	KindStencilClipReset
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindImageRect:
		return "imageRect"
	case KindImageMesh:
		return "imageMesh"
	case KindStencilClipReset:
		return "stencilClipReset"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type selects the shader program family that renders a draw. It is the
// first component of every pipeline key.
type Type uint8

// Draw types.
const (
	TypeMidpointFanPatches Type = iota
	TypeInteriorTriangulation
	TypeImageRect
	TypeImageMesh
	TypeAtomicInitialize
	TypeAtomicResolve
	TypeStencilClipReset

	TypeCount
)

// String returns the draw type name.
func (t Type) String() string {
	switch t {
	case TypeMidpointFanPatches:
		return "midpointFanPatches"
	case TypeInteriorTriangulation:
		return "interiorTriangulation"
	case TypeImageRect:
		return "imageRect"
	case TypeImageMesh:
		return "imageMesh"
	case TypeAtomicInitialize:
		return "atomicInitialize"
	case TypeAtomicResolve:
		return "atomicResolve"
	case TypeStencilClipReset:
		return "stencilClipReset"
	default:
		return fmt.Sprintf("Type(%d)", t)
	}
}

// MustSupport panics when a draw type cannot be expressed under mode. Such a
// combination is a programming error, never a runtime condition.
func MustSupport(mode caps.InterlockMode, t Type) {
	if t >= TypeCount {
		panic(fmt.Sprintf("draw: unknown draw type %d", t))
	}
	if (t == TypeAtomicInitialize || t == TypeAtomicResolve) && mode != caps.Atomics {
		panic(fmt.Sprintf("draw: %s requires atomics interlock, have %s", t, mode))
	}
}

// Contents describes what a draw does to the pixels it touches.
type Contents uint16

// Content flags.
const (
	ContentOpaque Contents = 1 << iota
	ContentStroke
	ContentEvenOdd
	ContentClockwise
	ContentActiveClip
	ContentClipUpdate
	ContentAdvancedBlend
	ContentFeather
)

// FillRule decides which winding numbers are inside a path.
type FillRule uint8

// Fill rules.
const (
	NonZero FillRule = iota
	EvenOdd
	// Clockwise treats only positive winding as inside.
	Clockwise
)

// Inside reports whether winding w is inside under the rule.
func (r FillRule) Inside(w int32) bool {
	switch r {
	case EvenOdd:
		return w&1 != 0
	case Clockwise:
		return w > 0
	default:
		return w != 0
	}
}

// BlendMode is a color blend mode.
type BlendMode uint8

// Blend modes.
const (
	BlendSrcOver BlendMode = iota
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendMultiply
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity

	BlendModeCount
)

// Advanced reports whether the mode needs the destination color in the
// shader.
func (b BlendMode) Advanced() bool { return b != BlendSrcOver }

// HSL reports whether the mode is one of the non-separable HSL modes.
func (b BlendMode) HSL() bool { return b >= BlendHue && b <= BlendLuminosity }

// CoverageType is how a draw's coverage is resolved under the negotiated
// interlock mode.
type CoverageType uint8

// Coverage types.
const (
	// CoveragePLS accumulates and resolves coverage in pixel-local storage.
	CoveragePLS CoverageType = iota
	// CoverageAtomic accumulates into the coverage buffer in a prepass.
	CoverageAtomic
	// CoverageStencil stencils the winding and covers in a second subpass.
	CoverageStencil
	// CoverageDirect draws in one MSAA subpass with no cover over the
	// bounds. Images and nonzero fan fills use it.
	CoverageDirect
	// CoverageNone is used by draws that do not compute path coverage.
	CoverageNone
)
