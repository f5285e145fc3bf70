// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pls renders vector paths, strokes and images through a GPU
// flush pipeline that emulates pixel-local storage.
//
// # Overview
//
// A Context negotiates one interlock mode with its executor at creation,
// in descending preference:
//
//   - raster ordering, where the hardware orders overlapping fragments
//   - atomics, which accumulate coverage and resolve it in a final pass
//   - load/store, which brackets groups of non-overlapping draws
//   - MSAA, which stencils path winding and then covers it
//
// Every mode produces the same pixels. The software executor, the default,
// implements all four. The gpu package provides an MSAA executor on a
// gogpu/wgpu device.
//
// # Quick Start
//
//	ctx, err := pls.NewContext()
//	if err != nil {
//		return err
//	}
//	defer ctx.Close()
//
//	img := image.NewRGBA(image.Rect(0, 0, 256, 256))
//	ctx.BeginFrame(pls.FrameDescriptor{Target: img, Width: 256, Height: 256, ClearColor: pls.White})
//	star := pls.NewPath()
//	star.Circle(128, 128, 96)
//	ctx.Draw(bg, star, pls.SolidPaint(pls.Red), pls.Identity(), pls.BlendSrcOver, 0)
//	if err := ctx.Flush(bg); err != nil {
//		return err
//	}
//
// # Flushes
//
// Draws are counted before anything is written: paths, contours,
// tessellation vertices, triangle vertices and gradient spans. A frame is
// split into as many flushes as its counters need, and a split frame
// renders exactly like one flushed at once. A single draw larger than a
// flush grows the buffer rings.
//
// Fills with at least the triangulation threshold of segments are
// triangulated; smaller ones fan from the midpoint of each contour.
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
package pls
