// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package draw models the draws of a frame as a closed set of variants:
// paths, image rectangles, image meshes and stencil clip resets.
//
// A Draw is built once, counts the ring resources it will consume, and
// later emits exactly that many records into the slices a logical flush
// hands it. Counting and emission walk the same plans, so the two can
// never disagree.
package draw
