// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package wgpu_engine provides the GPU form of the quad vertex stage: a
// render pipeline whose WGSL vertex shader replicates the CPU kernel in
// package quad. Instances and lookup tables are fetched from storage
// buffers, indexed by the instance and vertex builtins.
//
// The WGSL stage uses the floor(0.5 + x) snap form; batches that must match
// it bit for bit on the CPU should configure SnapFloor.
package wgpu_engine

import (
	"structs"

	"honnef.co/go/quad"
	"honnef.co/go/quad/encoding"
	"honnef.co/go/safeish"
	"honnef.co/go/wgpu"
)

const quadShaderSrc = `
struct Globals {
	projection: mat4x4<f32>,
	atlas_tile_size: vec2<f32>,
	device_pixel_ratio: f32,
	pad: f32,
}

struct Instance {
	position_rect: vec4<f32>,
	color_tl: vec4<f32>,
	color_tr: vec4<f32>,
	color_br: vec4<f32>,
	color_bl: vec4<f32>,
	color_tex_coord_rect_top: vec4<f32>,
	color_tex_coord_rect_bottom: vec4<f32>,
	mask_tex_coord_rect_top: vec4<f32>,
	mask_tex_coord_rect_bottom: vec4<f32>,
	misc: vec4<f32>,
}

@group(0) @binding(0) var<uniform> globals: Globals;
@group(0) @binding(1) var<storage, read> instances: array<Instance>;
@group(0) @binding(2) var<storage, read> tile_params: array<vec4<f32>>;
@group(0) @binding(3) var<storage, read> clip_rects: array<vec4<f32>>;
@group(0) @binding(4) var<storage, read> offsets: array<vec2<f32>>;
@group(0) @binding(5) var<storage, read> transforms: array<mat4x4<f32>>;

struct VertexOutput {
	@builtin(position) position: vec4<f32>,
	@location(0) local_pos: vec2<f32>,
	@location(1) color: vec4<f32>,
	@location(2) color_tex_coord: vec2<f32>,
	@location(3) mask_tex_coord: vec2<f32>,
	@location(4) clip_out_rect: vec4<f32>,
	@location(5) clip_in_rect: vec4<f32>,
	@location(6) tile: vec4<f32>,
}

fn snap(p: f32) -> f32 {
	return floor(0.5 + p * globals.device_pixel_ratio) / globals.device_pixel_ratio;
}

@vertex
fn vs_main(
	@builtin(vertex_index) vix: u32,
	@builtin(instance_index) iix: u32,
) -> VertexOutput {
	let inst = instances[iix];
	let misc = vec4<i32>(inst.misc);
	let transform_ix = misc.x & 0x7f;
	let tile_ix = misc.w & 0x7f;
	let border_corner = misc.w >= 128;

	let offset = offsets[transform_ix];
	let origin = vec2(
		snap(inst.position_rect.x + offset.x),
		snap(inst.position_rect.y + offset.y),
	);
	let size = inst.position_rect.zw;
	let right_bottom = vec2<f32>(vec2<u32>(vix & 1u, (vix >> 1u) & 1u));
	var local = origin + size * right_bottom;

	// Drawn as a strip with triangles (0, 1, 2) and (2, 1, 3); vertex 3 is
	// the only one provoking for the second triangle.
	let second_triangle = vix == 3u;
	var color = vec4(0.0);
	if border_corner {
		if vix == 1u {
			color = inst.color_tr;
		} else if vix == 2u {
			color = inst.color_bl;
		} else if second_triangle {
			color = inst.color_bl;
		} else {
			color = inst.color_tr;
		}
	}

	var color_bottom = inst.color_tex_coord_rect_bottom;
	let clip_in = clip_rects[misc.y];
	var clip_in_out = vec4(-1e9, -1e9, 1e9, 1e9);
	if color_bottom.z < 0.0 {
		let angle = -color_bottom.z;
		let center = origin + size * 0.5;
		let s = sin(angle);
		let c = cos(angle);
		let d = local - center;
		local = center + vec2(c * d.x - s * d.y, s * d.x + c * d.y);
		color_bottom.z = inst.color_tex_coord_rect_top.x;
		clip_in_out = clip_in;
	} else {
		local = clamp(local, clip_in.xy, clip_in.zw);
	}

	let st = (local - origin) / size;
	let top = inst.color_tex_coord_rect_top;
	let color_tex_coord = mix(
		mix(top.xy, color_bottom.xy, st.y),
		mix(top.zw, color_bottom.zw, st.y),
		st.x,
	);
	let mask_top = inst.mask_tex_coord_rect_top;
	let mask_bottom = inst.mask_tex_coord_rect_bottom;
	var mask_tex_coord = mix(
		mix(mask_top.xy, mask_bottom.xy, st.y),
		mix(mask_top.zw, mask_bottom.zw, st.y),
		st.x,
	);
	mask_tex_coord = mask_tex_coord / globals.atlas_tile_size;

	if !border_corner {
		color = mix(
			mix(inst.color_tl, inst.color_bl, st.y),
			mix(inst.color_tr, inst.color_br, st.y),
			st.x,
		);
	}
	color = color / 255.0;

	let world = transforms[transform_ix] * vec4(local, 0.0, 1.0);

	var out: VertexOutput;
	out.position = globals.projection * world;
	out.local_pos = local;
	out.color = color;
	out.color_tex_coord = color_tex_coord;
	out.mask_tex_coord = mask_tex_coord;
	out.clip_out_rect = clip_rects[misc.z];
	out.clip_in_rect = clip_in_out;
	out.tile = tile_params[tile_ix];
	return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
	// Stand-in for the per-pixel stage: enforce the clip contract, emit the
	// interpolated color. Atlas sampling lives with the real consumer.
	if any(in.local_pos < in.clip_out_rect.xy) || any(in.local_pos > in.clip_out_rect.zw) {
		discard;
	}
	if any(in.local_pos < in.clip_in_rect.xy) || any(in.local_pos > in.clip_in_rect.zw) {
		discard;
	}
	return in.color;
}
`

// GlobalsUniform mirrors the Globals struct in the WGSL stage.
type GlobalsUniform struct {
	_ structs.HostLayout

	Projection       [16]float32
	AtlasTileSize    [2]float32
	DevicePixelRatio float32
	_                float32 // padding
}

type QuadPipeline struct {
	BindLayout *wgpu.BindGroupLayout
	Pipeline   *wgpu.RenderPipeline
}

func NewQuadPipeline(dev *wgpu.Device, format wgpu.TextureFormat) *QuadPipeline {
	shader := dev.CreateShaderModule(wgpu.ShaderModuleDescriptor{
		Label:  "quad shaders",
		Source: wgpu.ShaderSourceWGSL(quadShaderSrc),
	})
	entries := make([]wgpu.BindGroupLayoutEntry, 6)
	entries[0] = wgpu.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: wgpu.ShaderStageVertex,
		Buffer: &wgpu.BufferBindingLayout{
			Type: wgpu.BufferBindingTypeUniform,
		},
	}
	for i := 1; i < 6; i++ {
		entries[i] = wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: wgpu.ShaderStageVertex,
			Buffer: &wgpu.BufferBindingLayout{
				Type: wgpu.BufferBindingTypeReadOnlyStorage,
			},
		}
	}
	bindLayout := dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Entries: entries,
	})
	pipelineLayout := dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "quad pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindLayout},
	})
	pipeline := dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "quad pipeline",
		Layout: pipelineLayout,
		Vertex: &wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: &wgpu.PrimitiveState{
			Topology:         wgpu.PrimitiveTopologyTriangleStrip,
			StripIndexFormat: ^wgpu.IndexFormat(0),
			FrontFace:        wgpu.FrontFaceCCW,
			CullMode:         wgpu.CullModeNone,
		},
		Multisample: &wgpu.MultisampleState{
			Count:                  1,
			Mask:                   ^uint32(0),
			AlphaToCoverageEnabled: false,
		},
	})
	return &QuadPipeline{
		BindLayout: bindLayout,
		Pipeline:   pipeline,
	}
}

// Batch holds the uploaded buffers and bind group for one encoded batch.
type Batch struct {
	NumInstances uint32

	bindGroup *wgpu.BindGroup
	buffers   []*wgpu.Buffer
}

// Upload writes an encoded batch and its tables to the GPU. The encoding's
// tables must be populated; producers guarantee that every packed index
// resolves (the kernel does not range-check on the GPU).
func (p *QuadPipeline) Upload(
	dev *wgpu.Device,
	queue *wgpu.Queue,
	enc *encoding.Encoding,
	config *quad.Config,
) *Batch {
	if enc.IsEmpty() {
		panic("uploading empty batch")
	}

	globals := GlobalsUniform{
		Projection:       [16]float32(config.Projection),
		AtlasTileSize:    enc.AtlasTileSize,
		DevicePixelRatio: config.DevicePixelRatio,
	}

	b := &Batch{NumInstances: uint32(len(enc.Instances))}
	upload := func(label string, data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
		buf := dev.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label,
			Size:  uint64(len(data)),
			Usage: usage | wgpu.BufferUsageCopyDst,
		})
		queue.WriteBuffer(buf, 0, data)
		b.buffers = append(b.buffers, buf)
		return buf
	}

	bufs := []*wgpu.Buffer{
		upload("quad globals", safeish.SliceCast[[]byte]([]GlobalsUniform{globals}), wgpu.BufferUsageUniform),
		upload("quad instances", enc.InstanceData(), wgpu.BufferUsageStorage),
		upload("quad tile params", enc.TileParamData(), wgpu.BufferUsageStorage),
		upload("quad clip rects", enc.ClipRectData(), wgpu.BufferUsageStorage),
		upload("quad offsets", enc.OffsetData(), wgpu.BufferUsageStorage),
		upload("quad transforms", enc.TransformData(), wgpu.BufferUsageStorage),
	}
	entries := make([]wgpu.BindGroupEntry, len(bufs))
	for i, buf := range bufs {
		entries[i] = wgpu.BindGroupEntry{
			Binding: uint32(i),
			Buffer:  buf,
			Size:    ^uint64(0),
		}
	}
	b.bindGroup = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  p.BindLayout,
		Entries: entries,
	})
	return b
}

func (b *Batch) Release() {
	b.bindGroup.Release()
	for _, buf := range b.buffers {
		buf.Release()
	}
}

// Render draws a batch into the target view, one pass, one strip draw per
// instance set.
func (p *QuadPipeline) Render(
	dev *wgpu.Device,
	queue *wgpu.Queue,
	target *wgpu.TextureView,
	batch *Batch,
) {
	encoder := dev.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "quad batch"})
	defer encoder.Release()

	renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       target,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
	})
	defer renderPass.Release()

	renderPass.SetPipeline(p.Pipeline)
	renderPass.SetBindGroup(0, batch.bindGroup, nil)
	renderPass.Draw(4, batch.NumInstances, 0, 0)
	renderPass.End()

	cmd := encoder.Finish(nil)
	defer cmd.Release()
	queue.Submit(cmd)
}
