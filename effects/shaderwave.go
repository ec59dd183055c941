package effects

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/demoscene"
	"github.com/gogpu/demoscene/surface"
)

// shaderwaveWGSL evaluates the plasma field per pixel on the GPU and
// packs the result as RGBA8 (red in the low byte, matching the
// presentation buffer's little-endian layout).
const shaderwaveWGSL = `
struct Params {
    width : u32,
    height : u32,
    time_s : f32,
    _pad : f32,
}

@group(0) @binding(0) var<uniform> params : Params;
@group(0) @binding(1) var<storage, read_write> pixels : array<u32>;

fn pack_rgba(c : vec3<f32>) -> u32 {
    let r = u32(clamp(c.x, 0.0, 1.0) * 255.0);
    let g = u32(clamp(c.y, 0.0, 1.0) * 255.0);
    let b = u32(clamp(c.z, 0.0, 1.0) * 255.0);
    return r | (g << 8u) | (b << 16u) | (255u << 24u);
}

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
    if (gid.x >= params.width || gid.y >= params.height) {
        return;
    }
    let t = params.time_s;
    let uv = vec2<f32>(f32(gid.x) / f32(params.width), f32(gid.y) / f32(params.height));
    let v = sin(uv.x * 12.0 + t)
          + sin(uv.y * 9.0 - t * 1.3)
          + sin((uv.x + uv.y) * 15.0 + t * 0.7);
    let c = vec3<f32>(
        0.5 + 0.5 * sin(v * 3.14159),
        0.5 + 0.5 * sin(v * 3.14159 + 2.0944),
        0.5 + 0.5 * sin(v * 3.14159 + 4.1888));
    pixels[gid.y * params.width + gid.x] = pack_rgba(c);
}
`

// Shaderwave is the plasma reborn as a compute shader.
type Shaderwave struct {
	surf *surface.Pipeline
	prog *surface.ComputeProgram
}

// NewShaderwave creates the compute plasma demo.
func NewShaderwave() demoscene.Demo { return &Shaderwave{} }

// Meta returns the demo's catalog metadata.
func (s *Shaderwave) Meta() demoscene.Meta {
	return demoscene.Meta{
		ID:          "shaderwave",
		Name:        "Shaderwave",
		Era:         demoscene.EraModern,
		Year:        2020,
		Author:      "gogpu demoscene authors",
		Description: "The eighties plasma, one GPU thread per pixel.",
		Kind:        surface.KindPipeline,
		Tags:        []string{"compute", "wgsl", "plasma"},
	}
}

// Init compiles the WGSL program. Compilation can take a moment; the
// context is honored so a superseded activation stops early.
func (s *Shaderwave) Init(ctx context.Context, surf surface.Context, _, _ int) error {
	p, ok := surf.(*surface.Pipeline)
	if !ok {
		return fmt.Errorf("shaderwave: want pipeline surface, got %s", surf.Kind())
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	prog, err := p.NewComputeProgram("shaderwave", shaderwaveWGSL)
	if err != nil {
		return err
	}
	s.surf = p
	s.prog = prog
	return nil
}

// Render dispatches one workgroup per 8x8 pixel tile.
func (s *Shaderwave) Render(logicalMs, _ float64) {
	w := uint32(s.surf.Width())
	h := uint32(s.surf.Height())
	params := packTimeParams(w, h, logicalMs*0.001)
	if err := s.prog.Dispatch(params, (w+7)/8, (h+7)/8); err != nil {
		demoscene.Logger().Warn("shaderwave dispatch failed", "err", err)
	}
}

// Resize needs no work: the dispatch reads the surface size each frame.
func (s *Shaderwave) Resize(_, _ int) {}

// Destroy releases the GPU program.
func (s *Shaderwave) Destroy() {
	if s.prog != nil {
		s.prog.Destroy()
		s.prog = nil
	}
	s.surf = nil
}

// packTimeParams lays out the 16-byte uniform shared by the pipeline
// demos: width, height, time in seconds, padding.
func packTimeParams(width, height uint32, timeS float64) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:], width)
	binary.LittleEndian.PutUint32(buf[4:], height)
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(float32(timeS)))
	return buf
}
