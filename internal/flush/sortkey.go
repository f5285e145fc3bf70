// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package flush

// Sort key layout, most significant first. The key stays below 2^62 so
// prepass keys can be negated.
const (
	phaseBits     = 2
	drawIndexBits = 16
	contentsBits  = 8
	blendBits     = 5
	textureBits   = 10
	drawTypeBits  = 4
	groupBits     = 17

	drawIndexShift = phaseBits
	contentsShift  = drawIndexShift + drawIndexBits
	blendShift     = contentsShift + contentsBits
	textureShift   = blendShift + blendBits
	drawTypeShift  = textureShift + textureBits
	groupShift     = drawTypeShift + drawTypeBits

	// MaxDrawsPerFlush is the most draws the draw-index field can order.
	MaxDrawsPerFlush = 1<<drawIndexBits - 1
	maxGroups        = 1 << groupBits
)

func field(v uint64, bits uint) uint64 { return v & (1<<bits - 1) }

// sortKey orders the phases of a flush. Within a group, phases are grouped
// by pipeline-relevant state; groups themselves are ordered by index.
// Prepass keys are negated so an ascending sort visits prepasses from the
// highest group down before any subpass.
func sortKey(e *Element) int64 {
	d := e.Draw
	k := field(uint64(e.Group), groupBits)<<groupShift |
		field(uint64(d.Type()), drawTypeBits)<<drawTypeShift |
		field(uint64(d.TextureID()), textureBits)<<textureShift |
		field(uint64(d.Blend()), blendBits)<<blendShift |
		field(uint64(d.Contents()), contentsBits)<<contentsShift |
		field(uint64(e.DrawIndex), drawIndexBits)<<drawIndexShift |
		field(uint64(e.Phase), phaseBits)
	if e.Pass == Prepass {
		return -int64(k) - 1
	}
	return int64(k)
}
