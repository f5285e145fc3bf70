// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package geom holds the path-space and device-space geometry shared by the
// tessellator, the draw model and the executors: points, affine transforms,
// bounding boxes, path contours and Wang's formula segment estimates.
//
// Points use honnef.co/go/curve's float64 Vec2 so curve evaluation and the
// segment estimate keep full precision; GPU records are narrowed to float32
// only when they are written to a buffer ring.
package geom
