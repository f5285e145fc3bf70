// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cache provides a generic memoizing cache for objects that live as
// long as their owner, such as compiled GPU pipelines.
//
//	c := cache.New[PipelineKey, *Pipeline]()
//	p, err := c.GetOrCreate(key, func() (*Pipeline, error) { return build(key) })
//
// Creation happens at most once per key and is serialized; lookups of
// existing entries take a shared lock. Entries are never evicted; Drain
// hands every value to a release function when the owner is destroyed.
package cache
