// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package caps

import (
	"errors"
	"testing"
)

func TestNegotiatePreferenceOrder(t *testing.T) {
	tests := []struct {
		name     string
		caps     Capabilities
		want     InterlockMode
		degraded bool
	}{
		{"full", Full("test"), RasterOrdering, false},
		{"atomics only", Capabilities{FragmentAtomics: true, ReadWriteTextures: true}, Atomics, true},
		{"input attachments", Capabilities{InputAttachments: true}, LoadStore, true},
		{"stencil only", Capabilities{Stencil: true, MaxSamples: 4}, MSAA, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Negotiate(tt.caps, nil)
			if err != nil {
				t.Fatalf("Negotiate() error = %v", err)
			}
			if s.Mode != tt.want {
				t.Errorf("Mode = %s, want %s", s.Mode, tt.want)
			}
			if s.Degraded != tt.degraded {
				t.Errorf("Degraded = %v, want %v", s.Degraded, tt.degraded)
			}
		})
	}
}

func TestNegotiateOverride(t *testing.T) {
	mode := LoadStore
	s, err := Negotiate(Full("test"), &mode)
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if s.Mode != LoadStore || s.Degraded {
		t.Errorf("got %s degraded=%v, want loadStore without degradation", s.Mode, s.Degraded)
	}

	// An override above what the device supports walks down.
	mode = RasterOrdering
	s, err = Negotiate(Capabilities{Stencil: true, MaxSamples: 4}, &mode)
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if s.Mode != MSAA || s.SampleCount != 4 {
		t.Errorf("got %s x%d, want msaa x4", s.Mode, s.SampleCount)
	}

	bad := InterlockMode(42)
	if _, err := Negotiate(Full("test"), &bad); err == nil {
		t.Error("invalid override should fail")
	}
}

func TestNegotiateUnsupported(t *testing.T) {
	_, err := Negotiate(Capabilities{Backend: "none", Stencil: true, MaxSamples: 1}, nil)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
}

func TestFeatureMask(t *testing.T) {
	if FeatureMask(MSAA)&FeatureFeather != 0 {
		t.Error("msaa should not express feathering")
	}
	if FeatureMask(Atomics) != AllFeatures {
		t.Error("atomics should express every feature")
	}
}
