// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pls

import (
	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/flush"
	"github.com/gogpu/pls/internal/resource"
)

// Executor records the GPU work of sealed flushes. The software package
// and the gpu package provide implementations.
type Executor = flush.Executor

// Capabilities is the immutable feature set an executor reports.
type Capabilities = caps.Capabilities

// Strategy is the outcome of interlock negotiation.
type Strategy = caps.Strategy

// InterlockMode is how overlapping per-pixel read-modify-write is
// serialized.
type InterlockMode = caps.InterlockMode

// Interlock modes in descending preference.
const (
	RasterOrdering = caps.RasterOrdering
	Atomics        = caps.Atomics
	LoadStore      = caps.LoadStore
	MSAA           = caps.MSAA
)

// Counters are the ring resources a draw or flush consumes.
type Counters = draw.Counters

// Stats are the counters of one executed flush.
type Stats = flush.Stats

// LoadAction says what happens to the target before a frame draws.
type LoadAction = flush.LoadAction

// Load actions.
const (
	LoadClear    = flush.LoadClear
	LoadPreserve = flush.LoadPreserve
	LoadDontCare = flush.LoadDontCare
)

// BlendMode is a color blend mode.
type BlendMode = draw.BlendMode

// Blend modes. Every mode other than BlendSrcOver is an advanced mode.
const (
	BlendSrcOver    = draw.BlendSrcOver
	BlendScreen     = draw.BlendScreen
	BlendOverlay    = draw.BlendOverlay
	BlendDarken     = draw.BlendDarken
	BlendLighten    = draw.BlendLighten
	BlendColorDodge = draw.BlendColorDodge
	BlendColorBurn  = draw.BlendColorBurn
	BlendHardLight  = draw.BlendHardLight
	BlendSoftLight  = draw.BlendSoftLight
	BlendDifference = draw.BlendDifference
	BlendExclusion  = draw.BlendExclusion
	BlendMultiply   = draw.BlendMultiply
	BlendHue        = draw.BlendHue
	BlendSaturation = draw.BlendSaturation
	BlendColor      = draw.BlendColor
	BlendLuminosity = draw.BlendLuminosity
)

// RenderBuffer is a GPU buffer created by the factory.
type RenderBuffer = resource.RenderBuffer

// Texture is an immutable premultiplied RGBA8 image with a mip chain.
type Texture = resource.Texture

// BufferKind is the role of a render buffer.
type BufferKind = resource.BufferKind

// Render buffer kinds.
const (
	BufferVertex = resource.BufferVertex
	BufferUV     = resource.BufferUV
	BufferIndex  = resource.BufferIndex
)

// BufferFlags describe how a render buffer is updated.
type BufferFlags = resource.BufferFlags

// BufferMappedOnceAtInitialization marks buffers written once.
const BufferMappedOnceAtInitialization = resource.BufferMappedOnceAtInitialization
