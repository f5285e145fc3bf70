// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package flush turns the draws of a frame into executor work.
//
// Draws accumulate in a LogicalFlush until the next one would overflow a
// ring slot. The flush then seals: it assigns every draw its ring offsets,
// has the draws emit their records, orders the draw phases (prepasses
// front-to-back, then subpasses back-to-front), inserts the barriers the
// interlock mode needs and groups consecutive phases that share a pipeline
// into batches. The resulting Descriptor is handed to an Executor.
package flush
