// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package blend

import (
	"math"
	"testing"
)

func near(a, b byte, tol int) bool {
	d := int(a) - int(b)
	return d >= -tol && d <= tol
}

func TestSourceOver(t *testing.T) {
	tests := []struct {
		name     string
		src, dst [4]byte
		want     [4]byte
	}{
		{"opaque src", [4]byte{255, 0, 0, 255}, [4]byte{0, 0, 255, 255}, [4]byte{255, 0, 0, 255}},
		{"transparent src", [4]byte{0, 0, 0, 0}, [4]byte{0, 0, 255, 255}, [4]byte{0, 0, 255, 255}},
		{"half red over blue", [4]byte{128, 0, 0, 128}, [4]byte{0, 0, 255, 255}, [4]byte{128, 0, 127, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Apply(SrcOver, tt.src, 255, tt.dst); got != tt.want {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCoverageScalesSource(t *testing.T) {
	dst := [4]byte{0, 0, 0, 0}
	got := Apply(SrcOver, [4]byte{255, 255, 255, 255}, 64, dst)
	if got != [4]byte{64, 64, 64, 64} {
		t.Errorf("quarter coverage = %v, want 64s", got)
	}
	if got := Apply(Multiply, [4]byte{255, 0, 0, 255}, 0, [4]byte{1, 2, 3, 4}); got != [4]byte{1, 2, 3, 4} {
		t.Errorf("zero coverage changed dst: %v", got)
	}
}

func TestSeparableModesOpaque(t *testing.T) {
	src := [4]byte{204, 51, 128, 255}
	dst := [4]byte{102, 153, 128, 255}
	tests := []struct {
		mode Mode
		want [3]byte
	}{
		{Multiply, [3]byte{82, 31, 64}},
		{Screen, [3]byte{224, 173, 192}},
		{Darken, [3]byte{102, 51, 128}},
		{Lighten, [3]byte{204, 153, 128}},
		{Difference, [3]byte{102, 102, 0}},
	}
	for _, tt := range tests {
		got := Apply(tt.mode, src, 255, dst)
		for i := 0; i < 3; i++ {
			if !near(got[i], tt.want[i], 1) {
				t.Errorf("mode %d channel %d = %d, want %d", tt.mode, i, got[i], tt.want[i])
			}
		}
		if got[3] != 255 {
			t.Errorf("mode %d alpha = %d, want 255", tt.mode, got[3])
		}
	}
}

func TestOverlayMidpointDoesNotWrap(t *testing.T) {
	// 2*128 overflows a byte; the result must stay close to 128.
	got := Apply(Overlay, [4]byte{128, 128, 128, 255}, 255, [4]byte{128, 128, 128, 255})
	if !near(got[0], 128, 2) {
		t.Errorf("overlay(0.5, 0.5) = %d, want about 128", got[0])
	}
	got = Apply(HardLight, [4]byte{128, 128, 128, 255}, 255, [4]byte{128, 128, 128, 255})
	if !near(got[0], 128, 2) {
		t.Errorf("hardLight(0.5, 0.5) = %d, want about 128", got[0])
	}
}

func TestHSLModes(t *testing.T) {
	gray := [4]byte{128, 128, 128, 255}
	red := [4]byte{255, 0, 0, 255}

	// Luminosity of gray onto red keeps red's hue.
	got := Apply(Luminosity, gray, 255, red)
	if got[0] <= got[1] || got[0] <= got[2] {
		t.Errorf("luminosity result %v lost the backdrop hue", got)
	}
	// Saturation of gray removes all saturation.
	got = Apply(Saturation, gray, 255, red)
	if !near(got[0], got[1], 1) || !near(got[1], got[2], 1) {
		t.Errorf("saturation result %v should be gray", got)
	}
	for _, m := range []Mode{Hue, Color} {
		got := Apply(m, red, 255, gray)
		if got[3] != 255 {
			t.Errorf("mode %d alpha = %d, want 255", m, got[3])
		}
	}
}

func TestResultStaysPremultiplied(t *testing.T) {
	for m := SrcOver; m <= Luminosity; m++ {
		got := Apply(m, [4]byte{200, 10, 90, 200}, 180, [4]byte{20, 120, 60, 130})
		if got[0] > got[3] || got[1] > got[3] || got[2] > got[3] {
			t.Errorf("mode %d produced non-premultiplied %v", m, got)
		}
	}
}

func TestColorKeepsBackdropLuminance(t *testing.T) {
	// Red at gray's luminance overshoots 1 and is pulled back toward gray.
	got := Apply(Color, [4]byte{255, 0, 0, 255}, 255, [4]byte{128, 128, 128, 255})
	if got[0] != 255 || !near(got[1], 74, 1) || got[1] != got[2] || got[3] != 255 {
		t.Errorf("color(red, gray) = %v, want about {255 74 74 255}", got)
	}
	if l := (rgb{1, 0.2857, 0.2857}).lum(); math.Abs(float64(l)-0.5) > 1e-3 {
		t.Errorf("lum = %v, want 0.5", l)
	}
	s := (rgb{0.2, 0.9, 0.5}).withSat(0.4)
	if s[0] != 0 || s[1] != 0.4 || math.Abs(float64(s[2])-0.3*0.4/0.7) > 1e-6 {
		t.Errorf("withSat = %v, want {0 0.4 0.171}", s)
	}
}
