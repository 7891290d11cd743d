// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package encoding

import (
	"structs"
)

// Instance is the packed per-rectangle record shared by the four vertices of
// a quad. It is consumed directly by the vertex kernel and uploaded verbatim
// to the GPU; the field order is part of the wire format.
type Instance struct {
	_ structs.HostLayout

	// Origin (x, y) and size (w, h). Sizes must be positive; a size of zero
	// on an axis makes that axis's interpolation parameter undefined.
	PositionRect [4]float32
	// Corner colors, each channel in [0, 255].
	ColorTopLeft     [4]float32
	ColorTopRight    [4]float32
	ColorBottomRight [4]float32
	ColorBottomLeft  [4]float32
	// Color atlas coordinates for the top corner pair (xy = top left,
	// zw = top right) and the bottom pair (xy = bottom left, zw = bottom
	// right). The third component of the bottom rect doubles as the
	// rotation encoding; see Rotation.
	ColorTexCoordRectTop    [4]float32
	ColorTexCoordRectBottom [4]float32
	// Mask atlas coordinates, same corner layout as the color rects.
	MaskTexCoordRectTop    [4]float32
	MaskTexCoordRectBottom [4]float32
	// Bit-packed table indices and flags; see Attributes.
	Misc [4]float32
}

const indexMask = 0x7f
const borderCornerFlag = 128

// LowIndex extracts the 7-bit table index packed into the low bits of a misc
// field. The encoded value must be non-negative.
func LowIndex(x int32) int32 {
	return x & indexMask
}

// HasHighFlag reports whether bit 7 of a misc field is set.
func HasHighFlag(x int32) bool {
	return x >= borderCornerFlag
}

// Attributes is the decoded form of the Misc field.
type Attributes struct {
	// Index into both the offset table and the transform palette.
	TransformIndex int32
	// Index of the inner clip rectangle.
	ClipInIndex int32
	// Index of the outer clip rectangle.
	ClipOutIndex int32
	// Index into the tile parameter table.
	TileIndex int32
	// Border corner geometry takes exact corner colors instead of
	// interpolating.
	BorderCorner bool
}

func DecodeAttributes(misc [4]float32) Attributes {
	return Attributes{
		TransformIndex: LowIndex(int32(misc[0])),
		ClipInIndex:    int32(misc[1]),
		ClipOutIndex:   int32(misc[2]),
		TileIndex:      LowIndex(int32(misc[3])),
		BorderCorner:   HasHighFlag(int32(misc[3])),
	}
}

func (a Attributes) Encode() [4]float32 {
	m3 := a.TileIndex & indexMask
	if a.BorderCorner {
		m3 |= borderCornerFlag
	}
	return [4]float32{
		float32(a.TransformIndex & indexMask),
		float32(a.ClipInIndex),
		float32(a.ClipOutIndex),
		float32(m3),
	}
}

// Rotation is the decoded form of the angle encoding carried in the third
// component of the bottom color texture rect: a strictly negative value
// stores a rotation by its magnitude in radians, any other value is the
// plain texture coordinate.
type Rotation struct {
	// Angle in radians, counter-clockwise about the rectangle center.
	// Meaningful only when Rotated is set.
	Angle   float32
	Rotated bool
}

func DecodeRotation(z float32) Rotation {
	if z < 0 {
		return Rotation{Angle: -z, Rotated: true}
	}
	return Rotation{}
}

// Encode packs the rotation into the wire component, displacing the texture
// coordinate z when rotated. The kernel restores the coordinate from the top
// rect after decoding. An angle of zero cannot be represented as a rotation;
// it keeps the plain coordinate, which is equivalent.
func (r Rotation) Encode(z float32) float32 {
	if r.Rotated && r.Angle != 0 {
		return -r.Angle
	}
	return z
}
