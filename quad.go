// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package quad implements the per-vertex transform stage of an instanced
// rectangle pipeline: given a packed instance record and a corner index it
// produces the clip-space position and the interpolated attributes consumed
// by the per-pixel stage.
//
// The kernel runs five stages per vertex: attribute decoding, device-pixel
// snapping, corner selection, rotation/clip resolution, and interpolation
// plus projection. It is pure and stateless; the lookup tables passed in
// must not be mutated for the duration of a batch.
//
// The same stage exists in WGSL form in engine/wgpu_engine. The CPU kernel
// replicates it exactly and doubles as its test bed.
package quad
