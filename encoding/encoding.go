// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package encoding owns the packed wire format of the quad pipeline: the
// per-instance record, its bit-packed attribute fields, the sign/magnitude
// rotation encoding, and a builder that assembles upload-ready batches.
package encoding

import (
	"fmt"

	"honnef.co/go/curve"
	"honnef.co/go/quad/gfx"
	"honnef.co/go/quad/mem"
	"honnef.co/go/quad/qmath"
	"honnef.co/go/safeish"
)

// TableLimit is the largest table size a 7-bit packed index can address.
const TableLimit = 128

// Quad describes one rectangle in unpacked form. EncodeQuad converts it to
// the wire format.
type Quad struct {
	Rect   curve.Rect
	Colors gfx.CornerColors

	ColorTexCoordRectTop    [4]float32
	ColorTexCoordRectBottom [4]float32
	MaskTexCoordRectTop     [4]float32
	MaskTexCoordRectBottom  [4]float32

	Rotation Rotation

	// Table indices, as returned by the Encode* table methods.
	Transform int32
	ClipIn    int32
	ClipOut   int32
	Tile      int32

	BorderCorner bool
}

// Encoding accumulates the instances and lookup tables of one batch. The
// tables are immutable for the duration of the batch once transformation
// starts. Create encodings with New; the zero value has no arena to grow
// in.
type Encoding struct {
	Instances  []Instance
	TileParams [][4]float32
	ClipRects  [][4]float32
	Offsets    [][2]float32
	Transforms []qmath.Mat4

	// Tile size of the mask atlas, used to normalize mask coordinates.
	AtlasTileSize [2]float32

	arena *mem.Arena
}

// New returns an encoding whose instance and table storage grows in the
// arena. The arena must outlive the encoding; Reset keeps the storage for
// reuse and the arena owner decides when to reclaim it.
func New(arena *mem.Arena) *Encoding {
	return &Encoding{arena: arena}
}

func (enc *Encoding) Reset() {
	enc.Instances = enc.Instances[:0]
	enc.TileParams = enc.TileParams[:0]
	enc.ClipRects = enc.ClipRects[:0]
	enc.Offsets = enc.Offsets[:0]
	enc.Transforms = enc.Transforms[:0]
}

func (enc *Encoding) IsEmpty() bool {
	return len(enc.Instances) == 0
}

// Reserve grows the instance storage to hold n more quads without
// reallocating.
func (enc *Encoding) Reserve(n int) {
	enc.Instances = mem.Grow(enc.arena, enc.Instances, n)
}

// EncodeTransform appends a transform/offset pair to the palette and returns
// its index. Both tables share the packed 7-bit index.
func (enc *Encoding) EncodeTransform(m qmath.Mat4, offset [2]float32) int32 {
	if len(enc.Transforms) >= TableLimit {
		panic("transform palette exhausted")
	}
	enc.Transforms = mem.Append(enc.arena, enc.Transforms, m)
	enc.Offsets = mem.Append(enc.arena, enc.Offsets, offset)
	return int32(len(enc.Transforms) - 1)
}

// EncodeAffine is EncodeTransform for a 2D affine transform.
func (enc *Encoding) EncodeAffine(t curve.Affine, offset [2]float32) int32 {
	return enc.EncodeTransform(qmath.Mat4FromTransform(qmath.TransformFromCurve(t)), offset)
}

func (enc *Encoding) EncodeClipRect(r curve.Rect) int32 {
	enc.ClipRects = mem.Append(enc.arena, enc.ClipRects, [4]float32{
		float32(r.X0), float32(r.Y0), float32(r.X1), float32(r.Y1),
	})
	return int32(len(enc.ClipRects) - 1)
}

func (enc *Encoding) EncodeTileParams(p [4]float32) int32 {
	if len(enc.TileParams) >= TableLimit {
		panic("tile parameter table exhausted")
	}
	enc.TileParams = mem.Append(enc.arena, enc.TileParams, p)
	return int32(len(enc.TileParams) - 1)
}

// EncodeQuad validates the producer contracts and appends the packed
// instance record. It panics on degenerate rectangles and out-of-range
// table indices; the kernel itself assumes valid input.
func (enc *Encoding) EncodeQuad(q Quad) {
	w := float32(q.Rect.X1 - q.Rect.X0)
	h := float32(q.Rect.Y1 - q.Rect.Y0)
	if w <= 0 || h <= 0 {
		panic(fmt.Sprintf("degenerate quad rectangle %v", q.Rect))
	}
	checkIndex("transform", q.Transform, len(enc.Transforms))
	checkIndex("tile parameter", q.Tile, len(enc.TileParams))
	checkClipIndex("inner clip", q.ClipIn, len(enc.ClipRects))
	checkClipIndex("outer clip", q.ClipOut, len(enc.ClipRects))

	attrs := Attributes{
		TransformIndex: q.Transform,
		ClipInIndex:    q.ClipIn,
		ClipOutIndex:   q.ClipOut,
		TileIndex:      q.Tile,
		BorderCorner:   q.BorderCorner,
	}
	colorBottom := q.ColorTexCoordRectBottom
	colorBottom[2] = q.Rotation.Encode(colorBottom[2])
	enc.Instances = mem.Append(enc.arena, enc.Instances, Instance{
		PositionRect:            [4]float32{float32(q.Rect.X0), float32(q.Rect.Y0), w, h},
		ColorTopLeft:            q.Colors.TopLeft,
		ColorTopRight:           q.Colors.TopRight,
		ColorBottomRight:        q.Colors.BottomRight,
		ColorBottomLeft:         q.Colors.BottomLeft,
		ColorTexCoordRectTop:    q.ColorTexCoordRectTop,
		ColorTexCoordRectBottom: colorBottom,
		MaskTexCoordRectTop:     q.MaskTexCoordRectTop,
		MaskTexCoordRectBottom:  q.MaskTexCoordRectBottom,
		Misc:                    attrs.Encode(),
	})
}

// EncodeRotatedQuad appends q rotated by angle radians counter-clockwise
// about its center.
func (enc *Encoding) EncodeRotatedQuad(q Quad, angle float32) {
	q.Rotation = Rotation{Angle: angle, Rotated: true}
	enc.EncodeQuad(q)
}

// EncodeBorderCorner appends q as border corner geometry, which takes exact
// corner colors instead of interpolating.
func (enc *Encoding) EncodeBorderCorner(q Quad) {
	q.BorderCorner = true
	enc.EncodeQuad(q)
}

func checkIndex(what string, ix int32, size int) {
	if ix < 0 || int(ix) >= size || ix >= TableLimit {
		panic(fmt.Sprintf("%s index %d out of range (table size %d)", what, ix, size))
	}
}

func checkClipIndex(what string, ix int32, size int) {
	if ix < 0 || int(ix) >= size {
		panic(fmt.Sprintf("%s index %d out of range (table size %d)", what, ix, size))
	}
}

// Byte views of the packed streams, for GPU upload. The views alias the
// encoding's storage.

func (enc *Encoding) InstanceData() []byte {
	return safeish.SliceCast[[]byte](enc.Instances)
}

func (enc *Encoding) TileParamData() []byte {
	return safeish.SliceCast[[]byte](enc.TileParams)
}

func (enc *Encoding) ClipRectData() []byte {
	return safeish.SliceCast[[]byte](enc.ClipRects)
}

func (enc *Encoding) OffsetData() []byte {
	return safeish.SliceCast[[]byte](enc.Offsets)
}

func (enc *Encoding) TransformData() []byte {
	return safeish.SliceCast[[]byte](enc.Transforms)
}
