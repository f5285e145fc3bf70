// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package blend

import "github.com/chewxy/math32"

// rgb is an unmultiplied color with channels in [0, 1].
type rgb [3]float32

func (c rgb) lum() float32 { return 0.30*c[0] + 0.59*c[1] + 0.11*c[2] }

func (c rgb) sat() float32 { return max(c[0], c[1], c[2]) - min(c[0], c[1], c[2]) }

// withLum moves c to luminance l, then pulls channels that left [0, 1]
// back toward the gray of that luminance.
func (c rgb) withLum(l float32) rgb {
	d := l - c.lum()
	for i := range c {
		c[i] += d
	}
	l = c.lum()
	lo, hi := min(c[0], c[1], c[2]), max(c[0], c[1], c[2])
	if lo < 0 && l > lo {
		for i := range c {
			c[i] = l + (c[i]-l)*l/(l-lo)
		}
	}
	if hi > 1 && hi > l {
		for i := range c {
			c[i] = l + (c[i]-l)*(1-l)/(hi-l)
		}
	}
	return c
}

// withSat rescales c to saturation s, keeping the order of its channels.
func (c rgb) withSat(s float32) rgb {
	lo, mid, hi := 0, 1, 2
	if c[lo] > c[mid] {
		lo, mid = mid, lo
	}
	if c[mid] > c[hi] {
		mid, hi = hi, mid
	}
	if c[lo] > c[mid] {
		lo, mid = mid, lo
	}
	var out rgb
	if c[hi] > c[lo] {
		out[mid] = (c[mid] - c[lo]) * s / (c[hi] - c[lo])
		out[hi] = s
	}
	return out
}

var (
	blendHue = nonSeparable(func(s, d rgb) rgb {
		return s.withSat(d.sat()).withLum(d.lum())
	})
	blendSaturation = nonSeparable(func(s, d rgb) rgb {
		return d.withSat(s.sat()).withLum(d.lum())
	})
	blendColor = nonSeparable(func(s, d rgb) rgb {
		return s.withLum(d.lum())
	})
	blendLuminosity = nonSeparable(func(s, d rgb) rgb {
		return d.withLum(s.lum())
	})
)

// nonSeparable lifts a whole-color blend to premultiplied bytes and
// composites it like separableBlend.
func nonSeparable(mix func(s, d rgb) rgb) Func {
	return func(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
		if sa == 0 {
			return dr, dg, db, da
		}
		if da == 0 {
			return sr, sg, sb, sa
		}
		fs, fd := float32(sa), float32(da)
		m := mix(
			rgb{float32(sr) / fs, float32(sg) / fs, float32(sb) / fs},
			rgb{float32(dr) / fd, float32(dg) / fd, float32(db) / fd},
		)
		return composite(sr, sg, sb, sa, dr, dg, db, da, toByte(m[0]), toByte(m[1]), toByte(m[2]))
	}
}

func toByte(v float32) byte {
	return byte(math32.Round(min(max(v, 0), 1) * 255))
}
