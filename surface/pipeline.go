// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Pipeline is the persistent GPU context. It owns a CPU-visible
// presentation buffer in packed RGBA8 (one little-endian u32 per pixel,
// red in the low byte) that each dispatch writes back into; demos fill it
// through a [ComputeProgram].
type Pipeline struct {
	dev    Device
	width  int
	height int
	pixels []byte
	closed bool
}

var _ Context = (*Pipeline)(nil)

func newPipeline(dev Device, width, height int) *Pipeline {
	return &Pipeline{
		dev:    dev,
		width:  width,
		height: height,
		pixels: make([]byte, width*height*4),
	}
}

// Kind returns KindPipeline.
func (p *Pipeline) Kind() Kind { return KindPipeline }

// Width returns the surface width in pixels.
func (p *Pipeline) Width() int { return p.width }

// Height returns the surface height in pixels.
func (p *Pipeline) Height() int { return p.height }

// Device returns the GPU device backing this context.
func (p *Pipeline) Device() Device { return p.dev }

// Pixels returns the presentation buffer, 4 bytes per pixel RGBA, row
// major. The slice is invalidated by resize.
func (p *Pipeline) Pixels() []byte { return p.pixels }

// Clear zeroes the presentation buffer.
func (p *Pipeline) Clear() {
	for i := range p.pixels {
		p.pixels[i] = 0
	}
}

// Image returns a copy of the presentation buffer.
func (p *Pipeline) Image() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.pixels)
	return img
}

func (p *Pipeline) resize(width, height int) error {
	if p.closed {
		return ErrContextClosed
	}
	p.width = width
	p.height = height
	p.pixels = make([]byte, width*height*4)
	return nil
}

func (p *Pipeline) close() {
	// The device is owned by the broker and survives the context; only
	// the presentation buffer dies with the handle.
	p.closed = true
	p.pixels = nil
}

// ComputeProgram is a compiled WGSL compute shader bound to a pipeline
// context. The shader sees two bindings in group 0:
//
//	@binding(0) var<uniform> params            // caller-supplied bytes
//	@binding(1) var<storage, read_write> pixels : array<u32>
//
// The pixel array covers the context's presentation buffer. Dispatch
// uploads the buffer, runs the shader, and reads the result back.
type ComputeProgram struct {
	ctx        *Pipeline
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

// NewComputeProgram compiles WGSL source to SPIR-V and builds a compute
// pipeline with entry point "main". The returned program must be
// destroyed when the demo is deactivated.
func (p *Pipeline) NewComputeProgram(label, wgsl string) (*ComputeProgram, error) {
	if p.closed {
		return nil, ErrContextClosed
	}
	spirv, err := compileWGSL(wgsl)
	if err != nil {
		return nil, fmt.Errorf("surface: compile %s: %w", label, err)
	}

	dev := p.dev.Device()
	shader, err := dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("surface: create shader module %s: %w", label, err)
	}

	prog := &ComputeProgram{ctx: p, shader: shader}

	prog.bindLayout, err = dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: label + "_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		prog.Destroy()
		return nil, fmt.Errorf("surface: create bind group layout %s: %w", label, err)
	}

	prog.pipeLayout, err = dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{prog.bindLayout},
	})
	if err != nil {
		prog.Destroy()
		return nil, fmt.Errorf("surface: create pipeline layout %s: %w", label, err)
	}

	prog.pipeline, err = dev.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   label + "_pipeline",
		Layout:  prog.pipeLayout,
		Compute: hal.ComputeState{Module: prog.shader, EntryPoint: "main"},
	})
	if err != nil {
		prog.Destroy()
		return nil, fmt.Errorf("surface: create compute pipeline %s: %w", label, err)
	}

	slogger().Debug("compute program ready", "label", label)
	return prog, nil
}

// Dispatch runs the program over groupsX x groupsY workgroups with the
// given uniform bytes, then reads the pixel storage back into the
// context's presentation buffer. One submit, one idle wait per call.
func (prog *ComputeProgram) Dispatch(params []byte, groupsX, groupsY uint32) error {
	p := prog.ctx
	if p.closed {
		return ErrContextClosed
	}
	dev := p.dev.Device()
	queue := p.dev.Queue()
	pixelBufSize := uint64(len(p.pixels))

	uniformBuf, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "demo_params", Size: uint64(len(params)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("surface: create uniform buffer: %w", err)
	}
	defer dev.DestroyBuffer(uniformBuf)

	storageBuf, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "demo_pixels", Size: pixelBufSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("surface: create storage buffer: %w", err)
	}
	defer dev.DestroyBuffer(storageBuf)

	stagingBuf, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "demo_staging", Size: pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("surface: create staging buffer: %w", err)
	}
	defer dev.DestroyBuffer(stagingBuf)

	if err := queue.WriteBuffer(uniformBuf, 0, params); err != nil {
		return fmt.Errorf("surface: write uniform buffer: %w", err)
	}
	if err := queue.WriteBuffer(storageBuf, 0, p.pixels); err != nil {
		return fmt.Errorf("surface: write storage buffer: %w", err)
	}

	bindGroup, err := dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "demo_bind", Layout: prog.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uint64(len(params))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: storageBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("surface: create bind group: %w", err)
	}
	defer dev.DestroyBindGroup(bindGroup)

	encoder, err := dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "demo_encoder"})
	if err != nil {
		return fmt.Errorf("surface: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("demo_dispatch"); err != nil {
		return fmt.Errorf("surface: begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "demo_pass"})
	pass.SetPipeline(prog.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Dispatch(groupsX, groupsY, 1)
	pass.End()
	encoder.CopyBufferToBuffer(storageBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: pixelBufSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("surface: end encoding: %w", err)
	}
	defer dev.FreeCommandBuffer(cmdBuf)

	subIdx, err := queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("surface: submit: %w", err)
	}
	if err := dev.WaitIdle(); err != nil {
		return fmt.Errorf("surface: wait for GPU: %w", err)
	}
	if completed := queue.PollCompleted(); completed < subIdx {
		return fmt.Errorf("surface: submission %d not completed (last %d)", subIdx, completed)
	}

	// Readback through a CPU-visible mapping of the staging buffer.
	mapping, err := dev.MapBuffer(stagingBuf, 0, pixelBufSize)
	if err != nil {
		return fmt.Errorf("surface: map staging buffer: %w", err)
	}
	copy(p.pixels, unsafe.Slice((*byte)(mapping.Ptr), pixelBufSize))
	if err := dev.UnmapBuffer(stagingBuf); err != nil {
		return fmt.Errorf("surface: unmap staging buffer: %w", err)
	}
	return nil
}

// Destroy releases the program's GPU objects. Safe to call on a partially
// constructed program.
func (prog *ComputeProgram) Destroy() {
	dev := prog.ctx.dev.Device()
	if prog.pipeline != nil {
		dev.DestroyComputePipeline(prog.pipeline)
		prog.pipeline = nil
	}
	if prog.pipeLayout != nil {
		dev.DestroyPipelineLayout(prog.pipeLayout)
		prog.pipeLayout = nil
	}
	if prog.bindLayout != nil {
		dev.DestroyBindGroupLayout(prog.bindLayout)
		prog.bindLayout = nil
	}
	if prog.shader != nil {
		dev.DestroyShaderModule(prog.shader)
		prog.shader = nil
	}
}

// compileWGSL compiles WGSL source to SPIR-V words.
// SPIR-V is little-endian 32-bit words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}
