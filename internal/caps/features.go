// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package caps

// ShaderFeatures is the set of optional shader paths a draw needs. It is part
// of every pipeline key.
type ShaderFeatures uint32

// Shader features.
const (
	FeatureClipping ShaderFeatures = 1 << iota
	FeatureClipRect
	FeatureAdvancedBlend
	FeatureEvenOdd
	FeatureNestedClipping
	FeatureHSLBlendModes
	FeatureFeather

	AllFeatures = FeatureClipping | FeatureClipRect | FeatureAdvancedBlend |
		FeatureEvenOdd | FeatureNestedClipping | FeatureHSLBlendModes | FeatureFeather
)

// FeatureMask returns the features a mode can express. Features outside the
// mask are dropped from pipeline keys and rendered with the base path.
func FeatureMask(mode InterlockMode) ShaderFeatures {
	if mode == MSAA {
		// Stencil coverage is binary per sample; feathering degrades to a
		// hard edge.
		return AllFeatures &^ FeatureFeather
	}
	return AllFeatures
}

// MiscFlags are backend-specific pipeline variations.
type MiscFlags uint32

// Misc flags.
const (
	// MiscFixedFunctionColorOutput blends with fixed-function hardware
	// instead of in the shader.
	MiscFixedFunctionColorOutput MiscFlags = 1 << iota
	// MiscStoreColorClear clears color as part of the store pass.
	MiscStoreColorClear
	// MiscClockwiseFill selects the clockwise fill rule variant.
	MiscClockwiseFill
	// MiscStencilSkip selects the MSAA variant with no cover over the
	// bounds, used by unclipped image draws and nonzero fan fills.
	MiscStencilSkip
	// MiscWireframe draws triangle edges instead of faces.
	MiscWireframe
)
