// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package quad

import (
	"math"
	"testing"

	"honnef.co/go/color"
	"honnef.co/go/curve"
	"honnef.co/go/quad/encoding"
	"honnef.co/go/quad/gfx"
	"honnef.co/go/quad/mem"
	"honnef.co/go/quad/qmath"
)

const tolerance = 1e-5

func near(a, b float32) bool {
	return float32(math.Abs(float64(a-b))) <= tolerance
}

func near2(a, b [2]float32) bool {
	return near(a[0], b[0]) && near(a[1], b[1])
}

func near4(a, b [4]float32) bool {
	return near(a[0], b[0]) && near(a[1], b[1]) && near(a[2], b[2]) && near(a[3], b[3])
}

// testColors are the corner colors used throughout: red, green, blue,
// yellow, converted to byte scale.
var testColors = gfx.CornerColors{
	TopLeft:     gfx.Bytes(&color.Color{Space: color.SRGB, Values: [4]float64{1, 0, 0, 1}}),
	TopRight:    gfx.Bytes(&color.Color{Space: color.SRGB, Values: [4]float64{0, 1, 0, 1}}),
	BottomRight: gfx.Bytes(&color.Color{Space: color.SRGB, Values: [4]float64{0, 0, 1, 1}}),
	BottomLeft:  gfx.Bytes(&color.Color{Space: color.SRGB, Values: [4]float64{1, 1, 0, 1}}),
}

type fixture struct {
	enc    *encoding.Encoding
	base   encoding.Quad
	config *Config
}

// newFixture encodes the tables for a 20x20 quad at (10, 10) with a huge
// inner clip and identity transforms.
func newFixture() *fixture {
	enc := encoding.New(mem.NewArena())
	enc.AtlasTileSize = [2]float32{16, 16}
	transform := enc.EncodeTransform(qmath.Mat4Identity, [2]float32{})
	clip := enc.EncodeClipRect(curve.Rect{X0: -1000, Y0: -1000, X1: 1000, Y1: 1000})
	tile := enc.EncodeTileParams([4]float32{1, 2, 3, 4})
	return &fixture{
		enc: enc,
		base: encoding.Quad{
			Rect:                    curve.Rect{X0: 10, Y0: 10, X1: 30, Y1: 30},
			Colors:                  testColors,
			ColorTexCoordRectTop:    [4]float32{0, 0, 1, 0},
			ColorTexCoordRectBottom: [4]float32{0, 1, 1, 1},
			MaskTexCoordRectTop:     [4]float32{0, 0, 16, 0},
			MaskTexCoordRectBottom:  [4]float32{0, 16, 16, 16},
			Transform:               transform,
			ClipIn:                  clip,
			ClipOut:                 clip,
			Tile:                    tile,
		},
		config: &Config{
			DevicePixelRatio: 1,
			Projection:       qmath.Mat4Identity,
		},
	}
}

func (f *fixture) transform(t *testing.T, q encoding.Quad, vertexIndex uint32) Output {
	t.Helper()
	f.enc.Instances = f.enc.Instances[:0]
	f.enc.EncodeQuad(q)
	return TransformVertex(&f.enc.Instances[0], vertexIndex, vertexIndex == 3, NewTables(f.enc), f.config)
}

func TestSnapIdempotent(t *testing.T) {
	ratios := []float32{1, 1.5, 2, 3}
	values := []float32{0, 0.25, 0.5, 10.3, 123.456, 7.5}
	for _, mode := range []SnapMode{SnapRound, SnapFloor} {
		for _, ratio := range ratios {
			config := &Config{DevicePixelRatio: ratio, Snap: mode}
			for _, v := range values {
				once := config.snap(v)
				twice := config.snap(once)
				if once != twice {
					t.Errorf("mode %d ratio %v: snap(snap(%v)) = %v, want %v", mode, ratio, v, twice, once)
				}
			}
		}
	}
}

func TestSnapModesAgree(t *testing.T) {
	// The floor form is numerically equivalent for non-negative inputs.
	config := &Config{DevicePixelRatio: 2}
	floor := &Config{DevicePixelRatio: 2, Snap: SnapFloor}
	for _, v := range []float32{0, 0.1, 0.25, 10.3, 99.99} {
		if got, want := floor.snap(v), config.snap(v); got != want {
			t.Errorf("snap(%v): floor form %v, round form %v", v, got, want)
		}
	}
}

func TestCornerColorsExact(t *testing.T) {
	// At the four corners bilinear interpolation reduces to the input
	// corner colors.
	f := newFixture()
	tests := []struct {
		name   string
		vertex uint32
		want   [4]float32
	}{
		{"top left", 0, [4]float32{1, 0, 0, 1}},
		{"top right", 1, [4]float32{0, 1, 0, 1}},
		{"bottom left", 2, [4]float32{1, 1, 0, 1}},
		{"bottom right", 3, [4]float32{0, 0, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := f.transform(t, f.base, tt.vertex)
			if !near4(out.Color, tt.want) {
				t.Errorf("color = %v, want %v", out.Color, tt.want)
			}
		})
	}
}

func TestBorderCornerParity(t *testing.T) {
	f := newFixture()
	q := f.base
	q.BorderCorner = true

	tr := [4]float32{0, 1, 0, 1}
	bl := [4]float32{1, 1, 0, 1}
	tests := []struct {
		name           string
		vertex         uint32
		secondTriangle bool
		want           [4]float32
	}{
		{"top left, first", 0, false, tr},
		{"top left, second", 0, true, bl},
		{"top right, first", 1, false, tr},
		{"top right, second", 1, true, tr},
		{"bottom left, first", 2, false, bl},
		{"bottom left, second", 2, true, bl},
		{"bottom right, first", 3, false, tr},
		{"bottom right, second", 3, true, bl},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.enc.Instances = f.enc.Instances[:0]
			f.enc.EncodeQuad(q)
			out := TransformVertex(&f.enc.Instances[0], tt.vertex, tt.secondTriangle, NewTables(f.enc), f.config)
			if !near4(out.Color, tt.want) {
				t.Errorf("color = %v, want %v", out.Color, tt.want)
			}
		})
	}
}

func TestZeroRotationTakesClipPath(t *testing.T) {
	// A rotation by angle zero cannot be encoded (the test is strict
	// negativity) and must behave exactly like the axis-aligned path.
	f := newFixture()
	clip := f.enc.EncodeClipRect(curve.Rect{X0: 12, Y0: 12, X1: 25, Y1: 25})
	q := f.base
	q.ClipIn = clip
	q.Rotation = encoding.Rotation{Rotated: true, Angle: 0}

	out := f.transform(t, q, 3)
	if out.ClipInRect != UnboundedClip {
		t.Errorf("inner clip = %v, want unbounded sentinel", out.ClipInRect)
	}
	if !near2(out.LocalPosition, [2]float32{25, 25}) {
		t.Errorf("local position = %v, want clamped (25, 25)", out.LocalPosition)
	}
}

func TestRotationDefersClip(t *testing.T) {
	// Rotating by pi/2 about the center (20, 20) maps the bottom right
	// corner (30, 30) to (10, 30), and the inner clip must pass through
	// unmodified for the per-pixel stage.
	f := newFixture()
	q := f.base
	q.Rotation = encoding.Rotation{Rotated: true, Angle: math.Pi / 2}

	out := f.transform(t, q, 3)
	if !near2(out.LocalPosition, [2]float32{10, 30}) {
		t.Errorf("local position = %v, want (10, 30)", out.LocalPosition)
	}
	want := [4]float32{-1000, -1000, 1000, 1000}
	if !near4(out.ClipInRect, want) {
		t.Errorf("inner clip = %v, want input clip %v", out.ClipInRect, want)
	}

	// The unrotated path emits the sentinel instead.
	out = f.transform(t, f.base, 3)
	if out.ClipInRect != UnboundedClip {
		t.Errorf("unrotated inner clip = %v, want unbounded sentinel", out.ClipInRect)
	}
}

func TestRotationMatchesRotatedCorners(t *testing.T) {
	f := newFixture()
	angle := float32(0.7)
	q := f.base
	q.Rotation = encoding.Rotation{Rotated: true, Angle: angle}

	sin, cos := qmath.Sincos32(angle)
	for vertex := uint32(0); vertex < 4; vertex++ {
		plain := f.transform(t, f.base, vertex)
		rotated := f.transform(t, q, vertex)
		dx := plain.LocalPosition[0] - 20
		dy := plain.LocalPosition[1] - 20
		want := [2]float32{
			20 + cos*dx - sin*dy,
			20 + sin*dx + cos*dy,
		}
		if !near2(rotated.LocalPosition, want) {
			t.Errorf("vertex %d: local position = %v, want %v", vertex, rotated.LocalPosition, want)
		}
	}
}

func TestEndToEndBottomRight(t *testing.T) {
	f := newFixture()
	out := f.transform(t, f.base, 3)

	if !near2(out.LocalPosition, [2]float32{30, 30}) {
		t.Errorf("local position = %v, want (30, 30)", out.LocalPosition)
	}
	if !near4(out.Position, [4]float32{30, 30, 0, 1}) {
		t.Errorf("position = %v, want (30, 30, 0, 1)", out.Position)
	}
	if !near4(out.Color, [4]float32{0, 0, 1, 1}) {
		t.Errorf("color = %v, want normalized bottom right (0, 0, 1, 1)", out.Color)
	}
	if !near2(out.ColorTexCoord, [2]float32{1, 1}) {
		t.Errorf("color tex coord = %v, want (1, 1)", out.ColorTexCoord)
	}
	// Mask corners span one 16x16 atlas tile; normalized coordinate is 1.
	if !near2(out.MaskTexCoord, [2]float32{1, 1}) {
		t.Errorf("mask tex coord = %v, want (1, 1)", out.MaskTexCoord)
	}
	if !near4(out.TileParams, [4]float32{1, 2, 3, 4}) {
		t.Errorf("tile params = %v, want (1, 2, 3, 4)", out.TileParams)
	}
}

func TestSnappedOrigin(t *testing.T) {
	f := newFixture()
	f.config.DevicePixelRatio = 2
	offset := f.enc.EncodeTransform(qmath.Mat4Identity, [2]float32{0.3, 0.6})
	q := f.base
	q.Transform = offset

	out := f.transform(t, q, 0)
	// snap(10.3 * 2) / 2 = 10.5, snap(10.6 * 2) / 2 = 10.5
	if !near2(out.LocalPosition, [2]float32{10.5, 10.5}) {
		t.Errorf("local position = %v, want (10.5, 10.5)", out.LocalPosition)
	}
}

func TestProjection(t *testing.T) {
	f := newFixture()
	f.config.Projection = qmath.Ortho(100, 100)
	out := f.transform(t, f.base, 3)
	// (30, 30) in a 100x100 viewport.
	if !near4(out.Position, [4]float32{-0.4, 0.4, 0, 1}) {
		t.Errorf("position = %v, want (-0.4, 0.4, 0, 1)", out.Position)
	}
}

func TestPerInstanceTransform(t *testing.T) {
	f := newFixture()
	scale := f.enc.EncodeTransform(qmath.Mat4FromTransform(qmath.Transform{
		Matrix: [4]float32{2, 0, 0, 2},
	}), [2]float32{})
	q := f.base
	q.Transform = scale
	out := f.transform(t, q, 3)
	if !near4(out.Position, [4]float32{60, 60, 0, 1}) {
		t.Errorf("position = %v, want (60, 60, 0, 1)", out.Position)
	}
	// The local position is pre-matrix.
	if !near2(out.LocalPosition, [2]float32{30, 30}) {
		t.Errorf("local position = %v, want (30, 30)", out.LocalPosition)
	}
}

func TestTransformBatch(t *testing.T) {
	f := newFixture()
	f.enc.EncodeQuad(f.base)
	border := f.base
	border.BorderCorner = true
	f.enc.EncodeQuad(border)

	arena := mem.NewArena()
	out := TransformBatch(arena, f.enc.Instances, NewTables(f.enc), f.config)
	if len(out) != 8 {
		t.Fatalf("got %d outputs, want 8", len(out))
	}
	// Instance-major order: vertex v of instance i at 4*i + v.
	if !near2(out[0].LocalPosition, [2]float32{10, 10}) {
		t.Errorf("instance 0 vertex 0 at %v, want (10, 10)", out[0].LocalPosition)
	}
	if !near2(out[3].LocalPosition, [2]float32{30, 30}) {
		t.Errorf("instance 0 vertex 3 at %v, want (30, 30)", out[3].LocalPosition)
	}
	// Border corner parity: vertex 3 provokes for the second triangle.
	if want := [4]float32{0, 1, 0, 1}; !near4(out[4].Color, want) {
		t.Errorf("instance 1 vertex 0 color = %v, want top right %v", out[4].Color, want)
	}
	if want := [4]float32{1, 1, 0, 1}; !near4(out[7].Color, want) {
		t.Errorf("instance 1 vertex 3 color = %v, want bottom left %v", out[7].Color, want)
	}
}

func TestTableAssertions(t *testing.T) {
	f := newFixture()
	tables := NewTables(f.enc)
	tests := []struct {
		name string
		call func()
	}{
		{"tile param", func() { tables.TileParam(5) }},
		{"clip rect", func() { tables.ClipRect(-1) }},
		{"offset", func() { tables.Offset(99) }},
		{"transform", func() { tables.Transform(127) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic on out-of-range index")
				}
			}()
			tt.call()
		})
	}
}
