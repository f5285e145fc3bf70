// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package caps

import "fmt"

// Strategy is the negotiated outcome for one context.
type Strategy struct {
	Mode        InterlockMode
	PLS         PLSImpl
	SampleCount uint32
	Features    ShaderFeatures
	// Degraded is set when a requested or preferred mode was skipped.
	Degraded bool
}

// String describes the strategy for logs.
func (s Strategy) String() string {
	return fmt.Sprintf("%s/%s x%d", s.Mode, s.PLS, s.SampleCount)
}

// Negotiate picks the best supported mode. When override is non-nil the
// search starts at that mode instead of the top of the preference list, so
// an override can only lower quality, never require an unsupported mode.
func Negotiate(c Capabilities, override *InterlockMode) (Strategy, error) {
	start := RasterOrdering
	if override != nil {
		if *override >= modeCount {
			return Strategy{}, fmt.Errorf("caps: invalid interlock override %d", *override)
		}
		start = *override
	}
	for _, mode := range Modes[start:] {
		if !c.Supports(mode) {
			continue
		}
		s := Strategy{
			Mode:        mode,
			PLS:         c.plsImplFor(mode),
			SampleCount: 1,
			Features:    FeatureMask(mode),
			Degraded:    mode != start,
		}
		if mode == MSAA {
			s.SampleCount = 4
		}
		return s, nil
	}
	return Strategy{}, fmt.Errorf("%w on backend %q", ErrUnsupported, c.Backend)
}
