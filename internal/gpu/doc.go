// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu executes flushes on a gogpu/wgpu hal device.
//
// The executor implements the MSAA interlock mode only. It advertises no
// fragment interlock, fragment atomics or pixel-local storage, so
// negotiation always lands on MSAA.
//
// # Attachments
//
// Every flush renders into one render pass over three attachments:
//
//   - a 4x BGRA8Unorm color attachment, stored between the flushes of a frame
//   - a 4x Depth24PlusStencil8 attachment; depth holds the clip id of each
//     sample and the stencil holds path winding
//   - a resolve target: the caller's surface view, or an internal texture
//     that is copied back into an *image.RGBA
//
// # Draws
//
// Vertices are pulled from the record rings in storage buffers. Each draw
// call passes the index of its drawArgs entry as the first instance.
// Concave paths stencil their winding and then cover their bounds where the
// stencil is inside, zeroing it as they go. Convex nonzero fills and images
// shade directly. Clip updates write their id into depth.
//
// # Blending
//
// Source-over and screen blend exactly. Multiply, darken and lighten use
// fixed-function approximations; the other advanced modes fall back to
// source-over with a warning when their pipeline is first created.
//
// # Pipelines
//
// Pipelines are keyed by the flush pipeline key and the fixed-function
// variant of each draw call, created on first use and cached until
// Destroy.
package gpu
