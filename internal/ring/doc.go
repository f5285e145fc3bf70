// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package ring implements the per-kind buffer rings a flush writes into.
//
// Each ring has a fixed number of slots. A flush acquires one slot per ring
// through a Guard, writes its records, and releases the guard, which
// commits the bytes to the backing store and advances the ring. A slot
// carries the serial of the flush that last wrote it and cannot be
// acquired again until the Timeline reports that serial as completed, so
// memory the GPU may still be reading is never rewritten.
package ring
