// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package flush

import "github.com/gogpu/pls/internal/geom"

// boardTileSize is the edge of one IntersectionBoard tile in pixels.
const boardTileSize = 255

// IntersectionBoard assigns draws to groups such that draws sharing a group
// never overlap and a draw's group is above every earlier draw it overlaps.
// Draws within a group can then be reordered freely.
type IntersectionBoard struct {
	cols, rows int
	tiles      [][]boardEntry
}

type boardEntry struct {
	rect geom.IAABB
	top  int
}

// NewIntersectionBoard returns a board covering a width x height viewport.
func NewIntersectionBoard(width, height int) *IntersectionBoard {
	cols := max((width+boardTileSize-1)/boardTileSize, 1)
	rows := max((height+boardTileSize-1)/boardTileSize, 1)
	return &IntersectionBoard{cols: cols, rows: rows, tiles: make([][]boardEntry, cols*rows)}
}

// Add places rect on the board and reserves layers consecutive groups for
// it. It returns the first of them.
func (b *IntersectionBoard) Add(rect geom.IAABB, layers int) int {
	c0, r0, c1, r1 := b.tileRange(rect)
	base := 0
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			for _, e := range b.tiles[r*b.cols+c] {
				if e.top >= base && e.rect.Overlaps(rect) {
					base = e.top + 1
				}
			}
		}
	}
	entry := boardEntry{rect: rect, top: base + max(layers, 1) - 1}
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			i := r*b.cols + c
			b.tiles[i] = append(b.tiles[i], entry)
		}
	}
	return base
}

func (b *IntersectionBoard) tileRange(rect geom.IAABB) (c0, r0, c1, r1 int) {
	clampTile := func(v int32, n int) int {
		return min(max(int(v)/boardTileSize, 0), n-1)
	}
	return clampTile(rect.L, b.cols), clampTile(rect.T, b.rows),
		clampTile(rect.R-1, b.cols), clampTile(rect.B-1, b.rows)
}
