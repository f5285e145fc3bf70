// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software provides a CPU executor for pls.
//
// The executor simulates every interlock mode over a four-sample-per-pixel
// grid. It reads all draw data back out of the buffer-ring slots the flush
// wrote, keeps a clip plane, a stencil plane and an atomic coverage buffer
// per target, and blends through the same per-pixel math for every mode, so
// a frame renders to identical pixels whichever mode was negotiated.
//
// Render targets are *image.RGBA values holding premultiplied color:
//
//	exec := software.New()
//	ctx, err := pls.NewContext(pls.WithExecutor(exec))
//	...
//	img := image.NewRGBA(image.Rect(0, 0, 512, 512))
//	ctx.BeginFrame(pls.FrameDescriptor{Target: img, Width: 512, Height: 512})
//
// The executor finishes its work inside Execute and signals the flush serial
// on its timeline before returning.
package software
