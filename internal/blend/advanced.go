// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package blend

import "github.com/chewxy/math32"

// separableBlend applies a per-channel blend function B to unmultiplied
// channels and composites the result:
//
//	Result = (1 - Sa) * D + (1 - Da) * S + Sa * Da * B(Sc, Dc)
func separableBlend(sr, sg, sb, sa, dr, dg, db, da byte, blendChan func(s, d byte) byte) (byte, byte, byte, byte) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}

	sur, sug, sub := unpremul(sr, sa), unpremul(sg, sa), unpremul(sb, sa)
	dur, dug, dub := unpremul(dr, da), unpremul(dg, da), unpremul(db, da)

	blendR := blendChan(sur, dur)
	blendG := blendChan(sug, dug)
	blendB := blendChan(sub, dub)

	return composite(sr, sg, sb, sa, dr, dg, db, da, blendR, blendG, blendB)
}

// composite finishes a blend given the unmultiplied blend result.
func composite(sr, sg, sb, sa, dr, dg, db, da, br, bg, bb byte) (byte, byte, byte, byte) {
	invSa := 255 - sa
	invDa := 255 - da
	finalA := addDiv255(sa, mulDiv255(da, invSa))

	saDa := mulDiv255(sa, da)
	r := addDiv255(addDiv255(mulDiv255(dr, invSa), mulDiv255(sr, invDa)), mulDiv255(saDa, br))
	g := addDiv255(addDiv255(mulDiv255(dg, invSa), mulDiv255(sg, invDa)), mulDiv255(saDa, bg))
	b := addDiv255(addDiv255(mulDiv255(db, invSa), mulDiv255(sb, invDa)), mulDiv255(saDa, bb))
	return min(r, finalA), min(g, finalA), min(b, finalA), finalA
}

func unpremul(c, a byte) byte {
	return byte(min(uint16(c)*255/uint16(a), 255))
}

// blendMultiply: B(Cb, Cs) = Cb * Cs
func blendMultiply(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, mulDiv255)
}

// blendScreen: B(Cb, Cs) = 1 - (1 - Cb) * (1 - Cs)
func blendScreen(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, screen)
}

func screen(s, d byte) byte {
	return 255 - mulDiv255(255-s, 255-d)
}

// hardLight is Multiply(Cb, 2*Cs) for Cs <= 0.5, else Screen(Cb, 2*Cs - 1).
func hardLight(s, d byte) byte {
	if s <= 127 {
		return mulDiv255Wide(2*uint16(s), d)
	}
	return 255 - mulDiv255Wide(2*uint16(255-s), 255-d)
}

// blendOverlay is HardLight with the layers swapped.
func blendOverlay(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		return hardLight(d, s)
	})
}

// blendDarken: B(Cb, Cs) = min(Cb, Cs)
func blendDarken(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte { return min(s, d) })
}

// blendLighten: B(Cb, Cs) = max(Cb, Cs)
func blendLighten(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte { return max(s, d) })
}

// blendColorDodge: B(Cb, Cs) = 1 if Cs == 1, else min(1, Cb / (1 - Cs))
func blendColorDodge(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if d == 0 {
			return 0
		}
		if s == 255 {
			return 255
		}
		return byte(min(uint16(d)*255/uint16(255-s), 255))
	})
}

// blendColorBurn: B(Cb, Cs) = 0 if Cs == 0, else 1 - min(1, (1 - Cb) / Cs)
func blendColorBurn(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if d == 255 {
			return 255
		}
		if s == 0 {
			return 0
		}
		return 255 - byte(min(uint16(255-d)*255/uint16(s), 255))
	})
}

// blendHardLight combines Multiply and Screen based on the source.
func blendHardLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, hardLight)
}

// blendSoftLight is a softer version of HardLight.
func blendSoftLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		sf := float32(s) / 255
		df := float32(d) / 255

		var result float32
		if sf <= 0.5 {
			result = df - (1-2*sf)*df*(1-df)
		} else {
			var dx float32
			if df <= 0.25 {
				dx = ((16*df-12)*df + 4) * df
			} else {
				dx = math32.Sqrt(df)
			}
			result = df + (2*sf-1)*(dx-df)
		}
		return byte(math32.Round(min(max(result, 0), 1) * 255))
	})
}

// blendDifference: B(Cb, Cs) = |Cb - Cs|
func blendDifference(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if s > d {
			return s - d
		}
		return d - s
	})
}

// blendExclusion: B(Cb, Cs) = Cb + Cs - 2 * Cb * Cs
func blendExclusion(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		sum := uint16(s) + uint16(d)
		return byte(min(sum-2*uint16(mulDiv255(s, d)), 255))
	})
}
