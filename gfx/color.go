// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gfx

import (
	"honnef.co/go/color"
)

// CornerColors holds the four corner colors of a quad, each channel in byte
// scale [0, 255]. The vertex kernel normalizes these to [0, 1].
type CornerColors struct {
	TopLeft     [4]float32
	TopRight    [4]float32
	BottomRight [4]float32
	BottomLeft  [4]float32
}

// Bytes converts a color to sRGB channels in byte scale, alpha included.
func Bytes(c *color.Color) [4]float32 {
	cc := c.Convert(color.SRGB)
	return [4]float32{
		float32(cc.Values[0] * 255),
		float32(cc.Values[1] * 255),
		float32(cc.Values[2] * 255),
		float32(cc.Values[3] * 255),
	}
}

// Uniform colors all four corners alike.
func Uniform(c *color.Color) CornerColors {
	b := Bytes(c)
	return CornerColors{b, b, b, b}
}

// Vertical colors the top and bottom edges separately. Interpolation across
// the quad produces a vertical gradient.
func Vertical(top, bottom *color.Color) CornerColors {
	t := Bytes(top)
	b := Bytes(bottom)
	return CornerColors{TopLeft: t, TopRight: t, BottomRight: b, BottomLeft: b}
}

// Horizontal colors the left and right edges separately.
func Horizontal(left, right *color.Color) CornerColors {
	l := Bytes(left)
	r := Bytes(right)
	return CornerColors{TopLeft: l, TopRight: r, BottomRight: r, BottomLeft: l}
}
