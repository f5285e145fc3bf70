// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/gogpu/naga"
)

// plsShaderSource holds every entry point the MSAA executor uses. The
// record structs mirror internal/record.
//
//go:embed shaders/pls.wgsl
var plsShaderSource string

// Vertex entry points.
const (
	vsFan        = "vs_fan"
	vsFanLines   = "vs_fan_lines"
	vsStrip      = "vs_strip"
	vsStripLines = "vs_strip_lines"
	vsTris       = "vs_tris"
	vsTrisLines  = "vs_tris_lines"
	vsCover      = "vs_cover"
	vsClipWrite  = "vs_clip_write"
	vsImageRect  = "vs_image_rect"
	vsMesh       = "vs_mesh"
	vsFullscreen = "vs_fullscreen"
)

// Fragment entry points.
const (
	fsPaint    = "fs_paint"
	fsMesh     = "fs_mesh"
	fsPreserve = "fs_preserve"
	fsNone     = "fs_none"
)

// validateShader compiles the shader once with naga so mistakes are
// reported with naga's diagnostics. The driver compiler stays the
// authority: New logs a failure and carries on.
var validateShader = sync.OnceValue(func() error {
	_, err := naga.Compile(plsShaderSource)
	return err
})

// nagaGap reports whether err comes from a WGSL feature naga does not
// implement yet rather than from the shader.
func nagaGap(err error) bool {
	msg := err.Error()
	for _, gap := range []string{"not yet implemented", "not supported", "runtime-sized arrays", "lowering error"} {
		if strings.Contains(msg, gap) {
			return true
		}
	}
	return false
}
