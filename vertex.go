// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package quad

import (
	"structs"

	"honnef.co/go/quad/encoding"
	"honnef.co/go/quad/qmath"
)

// Output is the attribute set produced for one vertex, consumed by the
// per-pixel stage.
type Output struct {
	_ structs.HostLayout

	// Final clip-space position.
	Position [4]float32
	// Position before the per-instance and projection matrices, used by the
	// per-pixel stage to test against ClipInRect when clipping was deferred.
	LocalPosition [2]float32
	// Color with channels normalized to [0, 1].
	Color [4]float32
	// Color atlas coordinate.
	ColorTexCoord [2]float32
	// Mask atlas coordinate, normalized by the atlas tile size.
	MaskTexCoord [2]float32
	// Outer clip rectangle, always tested downstream.
	ClipOutRect [4]float32
	// Inner clip rectangle for deferred testing, or UnboundedClip when the
	// clip was already applied here.
	ClipInRect [4]float32
	// Tile parameters selected for this instance.
	TileParams [4]float32
}

// UnboundedClip is the inner clip sentinel signaling the per-pixel stage to
// skip inner clip testing.
var UnboundedClip = [4]float32{-1e9, -1e9, 1e9, 1e9}

// TransformVertex runs the kernel for one corner of one instance.
//
// vertexIndex selects the corner: bit 0 is the right edge, bit 1 the bottom
// edge, so 0 = top left, 1 = top right, 2 = bottom left, 3 = bottom right.
// secondTriangle tells border corner geometry which of the quad's two
// triangles the vertex provokes for; TransformBatch documents the default
// derivation.
func TransformVertex(inst *encoding.Instance, vertexIndex uint32, secondTriangle bool, tables *Tables, config *Config) Output {
	attrs := encoding.DecodeAttributes(inst.Misc)
	tile := tables.TileParam(attrs.TileIndex)
	clipIn := tables.ClipRect(attrs.ClipInIndex)
	clipOut := tables.ClipRect(attrs.ClipOutIndex)
	offset := tables.Offset(attrs.TransformIndex)

	origin := [2]float32{
		config.snap(inst.PositionRect[0] + offset[0]),
		config.snap(inst.PositionRect[1] + offset[1]),
	}
	size := [2]float32{inst.PositionRect[2], inst.PositionRect[3]}

	isRight := vertexIndex&1 != 0
	isBottom := vertexIndex&2 != 0
	local := origin
	if isRight {
		local[0] += size[0]
	}
	if isBottom {
		local[1] += size[1]
	}

	var color [4]float32
	if attrs.BorderCorner {
		// Exact corner colors produce a crisp two-color diagonal split; the
		// color interpolator is bypassed entirely.
		switch {
		case isRight && !isBottom:
			color = inst.ColorTopRight
		case !isRight && isBottom:
			color = inst.ColorBottomLeft
		case secondTriangle:
			color = inst.ColorBottomLeft
		default:
			color = inst.ColorTopRight
		}
	}

	colorBottom := inst.ColorTexCoordRectBottom
	rot := encoding.DecodeRotation(colorBottom[2])
	clipInOut := UnboundedClip
	if rot.Rotated {
		// The rotated quad's edges no longer align with the inner clip
		// rectangle's axes, so clipping is deferred to the per-pixel stage.
		cx := origin[0] + size[0]*0.5
		cy := origin[1] + size[1]*0.5
		sin, cos := qmath.Sincos32(rot.Angle)
		dx := local[0] - cx
		dy := local[1] - cy
		local[0] = cx + cos*dx - sin*dy
		local[1] = cy + sin*dx + cos*dy
		// Undo the angle encoding so interpolation sees a valid coordinate.
		colorBottom[2] = inst.ColorTexCoordRectTop[0]
		clipInOut = clipIn
	} else {
		local[0] = qmath.Clamp(local[0], clipIn[0], clipIn[2])
		local[1] = qmath.Clamp(local[1], clipIn[1], clipIn[3])
	}

	// Requires non-zero sizes; degenerate rectangles are rejected by the
	// producer.
	st := [2]float32{
		(local[0] - origin[0]) / size[0],
		(local[1] - origin[1]) / size[1],
	}

	colorTexCoord := bilerp2(inst.ColorTexCoordRectTop, colorBottom, st)
	maskTexCoord := bilerp2(inst.MaskTexCoordRectTop, inst.MaskTexCoordRectBottom, st)
	maskTexCoord[0] /= tables.AtlasTileSize[0]
	maskTexCoord[1] /= tables.AtlasTileSize[1]

	if !attrs.BorderCorner {
		color = qmath.Mix4(
			qmath.Mix4(inst.ColorTopLeft, inst.ColorBottomLeft, st[1]),
			qmath.Mix4(inst.ColorTopRight, inst.ColorBottomRight, st[1]),
			st[0],
		)
	}
	for i := range color {
		color[i] /= 255
	}

	world := tables.Transform(attrs.TransformIndex).MulVec4([4]float32{local[0], local[1], 0, 1})
	position := config.Projection.MulVec4(world)

	return Output{
		Position:      position,
		LocalPosition: local,
		Color:         color,
		ColorTexCoord: colorTexCoord,
		MaskTexCoord:  maskTexCoord,
		ClipOutRect:   clipOut,
		ClipInRect:    clipInOut,
		TileParams:    tile,
	}
}

// bilerp2 blends the corner pairs of a texture rect: top holds (left, right)
// coordinates in xy/zw, bottom likewise.
func bilerp2(top, bottom [4]float32, st [2]float32) [2]float32 {
	left := qmath.Mix2([2]float32{top[0], top[1]}, [2]float32{bottom[0], bottom[1]}, st[1])
	right := qmath.Mix2([2]float32{top[2], top[3]}, [2]float32{bottom[2], bottom[3]}, st[1])
	return qmath.Mix2(left, right, st[0])
}
