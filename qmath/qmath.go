// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package qmath provides the float32 math kit shared by the CPU kernel and
// the GPU-facing data layouts.
package qmath

import (
	"math"
	"structs"

	"golang.org/x/exp/constraints"
	"honnef.co/go/curve"
)

func Abs32(f float32) float32 {
	return float32(math.Abs(float64(f)))
}

func Floor32(f float32) float32 {
	return float32(math.Floor(float64(f)))
}

func Ceil32(f float32) float32 {
	return float32(math.Ceil(float64(f)))
}

// Round32 rounds to the nearest integer, ties away from zero.
func Round32(f float32) float32 {
	return float32(math.Round(float64(f)))
}

func Sincos32(f float32) (float32, float32) {
	sin, cos := math.Sincos(float64(f))
	return float32(sin), float32(cos)
}

func Clamp[T constraints.Ordered](x, lo, hi T) T {
	return min(max(x, lo), hi)
}

// Mix linearly interpolates between a and b.
func Mix(a, b, t float32) float32 {
	return a + (b-a)*t
}

func Mix2(a, b [2]float32, t float32) [2]float32 {
	return [2]float32{
		Mix(a[0], b[0], t),
		Mix(a[1], b[1], t),
	}
}

func Mix4(a, b [4]float32, t float32) [4]float32 {
	return [4]float32{
		Mix(a[0], b[0], t),
		Mix(a[1], b[1], t),
		Mix(a[2], b[2], t),
		Mix(a[3], b[3], t),
	}
}

// Transform is a 2D affine transform in the GPU layout: a 2x2 matrix in
// column-major order followed by a translation.
type Transform struct {
	_ structs.HostLayout

	Matrix      [4]float32
	Translation [2]float32
}

var Identity = Transform{
	Matrix: [4]float32{1, 0, 0, 1},
}

func (t Transform) Mul(other Transform) Transform {
	return Transform{
		Matrix: [4]float32{
			t.Matrix[0]*other.Matrix[0] + t.Matrix[2]*other.Matrix[1],
			t.Matrix[1]*other.Matrix[0] + t.Matrix[3]*other.Matrix[1],
			t.Matrix[0]*other.Matrix[2] + t.Matrix[2]*other.Matrix[3],
			t.Matrix[1]*other.Matrix[2] + t.Matrix[3]*other.Matrix[3],
		},
		Translation: [2]float32{
			t.Matrix[0]*other.Translation[0] +
				t.Matrix[2]*other.Translation[1] +
				t.Translation[0],
			t.Matrix[1]*other.Translation[0] +
				t.Matrix[3]*other.Translation[1] +
				t.Translation[1],
		},
	}
}

func (t Transform) Apply(p [2]float32) [2]float32 {
	return [2]float32{
		t.Matrix[0]*p[0] + t.Matrix[2]*p[1] + t.Translation[0],
		t.Matrix[1]*p[0] + t.Matrix[3]*p[1] + t.Translation[1],
	}
}

func TransformFromCurve(transform curve.Affine) Transform {
	c := transform.Coefficients()
	return Transform{
		Matrix:      [4]float32{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])},
		Translation: [2]float32{float32(c[4]), float32(c[5])},
	}
}

// Mat4 is a 4x4 matrix in column-major order, the layout used by the
// per-instance transform palette and the projection uniform.
type Mat4 [16]float32

var Mat4Identity = Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * other[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

func (m Mat4) MulVec4(v [4]float32) [4]float32 {
	return [4]float32{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2] + m[12]*v[3],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2] + m[13]*v[3],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2] + m[14]*v[3],
		m[3]*v[0] + m[7]*v[1] + m[11]*v[2] + m[15]*v[3],
	}
}

// Mat4FromTransform embeds a 2D affine transform in a 4x4 matrix.
func Mat4FromTransform(t Transform) Mat4 {
	return Mat4{
		t.Matrix[0], t.Matrix[1], 0, 0,
		t.Matrix[2], t.Matrix[3], 0, 0,
		0, 0, 1, 0,
		t.Translation[0], t.Translation[1], 0, 1,
	}
}

// Ortho returns a projection mapping the pixel rectangle [0,width]x[0,height]
// to clip space, with y pointing down as in device coordinates.
func Ortho(width, height float32) Mat4 {
	return Mat4{
		2 / width, 0, 0, 0,
		0, -2 / height, 0, 0,
		0, 0, 1, 0,
		-1, 1, 0, 1,
	}
}
