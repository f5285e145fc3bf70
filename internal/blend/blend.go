// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package blend implements the draw blend modes on premultiplied RGBA8
// pixels: source-over, the separable modes and the HSL modes of W3C
// Compositing and Blending Level 1.
//
// References:
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

// Mode is a blend mode. The numbering matches the mode stored in path
// records.
type Mode uint8

// Blend modes.
const (
	SrcOver Mode = iota
	Screen
	Overlay
	Darken
	Lighten
	ColorDodge
	ColorBurn
	HardLight
	SoftLight
	Difference
	Exclusion
	Multiply
	Hue
	Saturation
	Color
	Luminosity
)

// Func is the signature of a blend operation. All values are premultiplied
// alpha, 0-255.
type Func func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

var funcs = [...]Func{
	SrcOver:    blendSourceOver,
	Screen:     blendScreen,
	Overlay:    blendOverlay,
	Darken:     blendDarken,
	Lighten:    blendLighten,
	ColorDodge: blendColorDodge,
	ColorBurn:  blendColorBurn,
	HardLight:  blendHardLight,
	SoftLight:  blendSoftLight,
	Difference: blendDifference,
	Exclusion:  blendExclusion,
	Multiply:   blendMultiply,
	Hue:        blendHue,
	Saturation: blendSaturation,
	Color:      blendColor,
	Luminosity: blendLuminosity,
}

// FuncFor returns the blend function for mode. Unknown modes fall back to
// source-over.
func FuncFor(mode Mode) Func {
	if int(mode) < len(funcs) {
		return funcs[mode]
	}
	return blendSourceOver
}

// Apply blends src over dst with mode after scaling src by coverage.
func Apply(mode Mode, src [4]byte, coverage byte, dst [4]byte) [4]byte {
	if coverage == 0 {
		return dst
	}
	if coverage != 255 {
		for i := range src {
			src[i] = mulDiv255(src[i], coverage)
		}
	}
	r, g, b, a := FuncFor(mode)(src[0], src[1], src[2], src[3], dst[0], dst[1], dst[2], dst[3])
	return [4]byte{r, g, b, a}
}
