// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package tess converts device-space path contours into the vertex streams a
// flush writes into its buffer-ring slots.
//
// Every tessellation runs in two phases. A Plan* function counts exactly how
// many vertices the draw will need, and the plan's Emit method later writes
// that many vertices, no more and no fewer, into a contiguous slice of ring
// memory. Runs are padded to whole patches with degenerate triangles so the
// count never depends on the shape of the emitted geometry.
//
// Three tessellations are provided:
//
//   - Midpoint fan: one run per contour whose triangles fan from the mean of
//     the contour's endpoints.
//   - Outer curves plus interior triangulation: the polygon through the
//     contour's segment endpoints is triangulated by ear clipping, and each
//     cubic contributes a run that fans from its start point to cover the
//     region between the curve and its chord.
//   - Stroke: explicit triangles for edge quads, joins and caps. Caps are
//     produced by the join code through an emulated, zero-length reversed
//     segment at each open end.
package tess
