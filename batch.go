// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package quad

import (
	"honnef.co/go/quad/encoding"
	"honnef.co/go/quad/mem"
)

// TransformBatch runs the kernel for all four vertices of every instance and
// returns the outputs in instance-major order: output 4*i + v is vertex v of
// instance i. The output slice is allocated from the arena.
//
// The triangle parity passed to border corner geometry follows the
// (0, 1, 2)/(2, 1, 3) decomposition of the quad: vertex 3 is the only vertex
// treated as provoking for the second triangle. Callers whose rasterization
// setup uses a different convention should call TransformVertex directly.
//
// Vertices are independent and the tables are read-only, so callers may
// partition instances across goroutines freely as long as the tables stay
// immutable for the batch's duration.
func TransformBatch(arena *mem.Arena, instances []encoding.Instance, tables *Tables, config *Config) []Output {
	out := mem.NewSlice[[]Output](arena, len(instances)*4, len(instances)*4)
	for i := range instances {
		for v := uint32(0); v < 4; v++ {
			out[i*4+int(v)] = TransformVertex(&instances[i], v, v == 3, tables, config)
		}
	}
	return out
}
