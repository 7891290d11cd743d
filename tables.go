// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package quad

import (
	"honnef.co/go/quad/encoding"
	"honnef.co/go/quad/qmath"
)

// Tables holds the shared per-batch lookup tables. They are read-only for
// the duration of a batch; all vertices of an instance must observe the same
// snapshot.
//
// Packed 7-bit indices can address up to 128 entries, so producers must
// either size the indexed tables accordingly or range-check indices before
// packing them. The accessors assert on out-of-range indices.
type Tables struct {
	TileParams [][4]float32
	ClipRects  [][4]float32
	Offsets    [][2]float32
	Transforms []qmath.Mat4

	// Tile size of the mask atlas, used to normalize mask coordinates.
	AtlasTileSize [2]float32
}

// NewTables borrows the tables accumulated in an encoding. The encoding must
// not be mutated while the batch is in flight.
func NewTables(enc *encoding.Encoding) *Tables {
	return &Tables{
		TileParams:    enc.TileParams,
		ClipRects:     enc.ClipRects,
		Offsets:       enc.Offsets,
		Transforms:    enc.Transforms,
		AtlasTileSize: enc.AtlasTileSize,
	}
}

func assert(b bool) {
	if !b {
		panic("failed assert")
	}
}

func (t *Tables) TileParam(ix int32) [4]float32 {
	assert(ix >= 0 && int(ix) < len(t.TileParams))
	return t.TileParams[ix]
}

func (t *Tables) ClipRect(ix int32) [4]float32 {
	assert(ix >= 0 && int(ix) < len(t.ClipRects))
	return t.ClipRects[ix]
}

func (t *Tables) Offset(ix int32) [2]float32 {
	assert(ix >= 0 && int(ix) < len(t.Offsets))
	return t.Offsets[ix]
}

func (t *Tables) Transform(ix int32) qmath.Mat4 {
	assert(ix >= 0 && int(ix) < len(t.Transforms))
	return t.Transforms[ix]
}
