// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pls

import (
	"image/color"
	"strconv"
)

// RGBA is a straight-alpha color. Each component is in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// RGB returns an opaque color.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// FromColor converts a standard color.Color.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}

// Hex parses "RGB", "RGBA", "RRGGBB" or "RRGGBBAA", with an optional
// leading '#'. It reports false for any other input.
func Hex(s string) (RGBA, bool) {
	if s != "" && s[0] == '#' {
		s = s[1:]
	}
	var digits int
	switch len(s) {
	case 3, 4:
		digits = 1
	case 6, 8:
		digits = 2
	default:
		return RGBA{}, false
	}
	c := [4]float64{3: 1}
	for i := range len(s) / digits {
		v, err := strconv.ParseUint(s[i*digits:(i+1)*digits], 16, 8)
		if err != nil {
			return RGBA{}, false
		}
		if digits == 1 {
			v *= 17
		}
		c[i] = float64(v) / 255
	}
	return RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}, true
}

// Color converts to color.NRGBA.
func (c RGBA) Color() color.Color {
	return color.NRGBA{R: unit8(c.R), G: unit8(c.G), B: unit8(c.B), A: unit8(c.A)}
}

func unit8(v float64) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}

func (c RGBA) vec4() [4]float32 {
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
}

// Common colors.
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Red         = RGB(1, 0, 0)
	Green       = RGB(0, 1, 0)
	Blue        = RGB(0, 0, 1)
	Transparent = RGBA{}
)
