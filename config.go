// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package quad

import (
	"honnef.co/go/quad/qmath"
)

type SnapMode int

const (
	// SnapRound snaps to the nearest device pixel, rounding ties away from
	// zero.
	SnapRound SnapMode = iota
	// SnapFloor uses floor(0.5 + x) instead, for targets without an exact
	// rounding instruction. Numerically equivalent to SnapRound for
	// non-negative coordinates.
	SnapFloor
)

// Config carries the per-batch constants that are not part of the lookup
// tables.
type Config struct {
	// Ratio of device pixels to layout pixels. Must be positive.
	DevicePixelRatio float32
	Snap             SnapMode
	// Global projection applied after the per-instance transform.
	Projection qmath.Mat4
}

// snap moves a coordinate onto the device pixel grid so that rectangle
// edges land on exact pixel boundaries and downstream bilinear sampling
// does not blend across unintended texels.
func (c *Config) snap(p float32) float32 {
	switch c.Snap {
	case SnapFloor:
		return qmath.Floor32(0.5+p*c.DevicePixelRatio) / c.DevicePixelRatio
	default:
		return qmath.Round32(p*c.DevicePixelRatio) / c.DevicePixelRatio
	}
}
