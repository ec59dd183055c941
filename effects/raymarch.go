package effects

import (
	"context"
	"fmt"

	"github.com/gogpu/demoscene"
	"github.com/gogpu/demoscene/surface"
)

// raymarchWGSL marches a signed-distance scene: a sphere orbiting over a
// checkered plane, one ray per pixel.
const raymarchWGSL = `
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

fn scene(p : vec3<f32>, t : f32) -> f32 {
    let center = vec3<f32>(sin(t) * 1.2, 1.0 + 0.3 * sin(t * 2.0), 4.0 + cos(t) * 1.2);
    let sphere = length(p - center) - 1.0;
    let plane = p.y;
    return min(sphere, plane);
}

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
    if (gid.x >= params.width || gid.y >= params.height) {
        return;
    }
    let t = params.time_s;
    let res = vec2<f32>(f32(params.width), f32(params.height));
    let uv = (vec2<f32>(f32(gid.x), f32(gid.y)) * 2.0 - res) / res.y;

    let ro = vec3<f32>(0.0, 1.2, 0.0);
    let rd = normalize(vec3<f32>(uv.x, -uv.y, 1.5));

    var dist = 0.0;
    var hit = false;
    for (var i = 0; i < 64; i = i + 1) {
        let d = scene(ro + rd * dist, t);
        if (d < 0.001) {
            hit = true;
            break;
        }
        dist = dist + d;
        if (dist > 30.0) {
            break;
        }
    }

    var col = vec3<f32>(0.15, 0.1, 0.25);
    if (hit) {
        let p = ro + rd * dist;
        let fog = exp(-dist * 0.08);
        if (p.y < 0.01) {
            let check = f32((i32(floor(p.x)) + i32(floor(p.z))) & 1);
            col = vec3<f32>(0.2 + check * 0.6) * fog;
        } else {
            let shade = 0.4 + 0.6 * clamp(1.5 - dist * 0.1, 0.0, 1.0);
            col = vec3<f32>(1.0, 0.5, 0.2) * shade * fog;
        }
    }
    pixels[gid.y * params.width + gid.x] = pack_rgba(col);
}
`

// Raymarch is the signed-distance-field marcher.
type Raymarch struct {
	surf *surface.Pipeline
	prog *surface.ComputeProgram
}

// NewRaymarch creates the raymarch demo.
func NewRaymarch() demoscene.Demo { return &Raymarch{} }

// Meta returns the demo's catalog metadata.
func (r *Raymarch) Meta() demoscene.Meta {
	return demoscene.Meta{
		ID:          "raymarch",
		Name:        "Raymarch",
		Era:         demoscene.EraModern,
		Year:        2013,
		Author:      "gogpu demoscene authors",
		Description: "Sphere over a checkered plane, marched per pixel.",
		Kind:        surface.KindPipeline,
		Tags:        []string{"compute", "wgsl", "sdf"},
	}
}

// Init compiles the WGSL program.
func (r *Raymarch) Init(ctx context.Context, surf surface.Context, _, _ int) error {
	p, ok := surf.(*surface.Pipeline)
	if !ok {
		return fmt.Errorf("raymarch: want pipeline surface, got %s", surf.Kind())
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	prog, err := p.NewComputeProgram("raymarch", raymarchWGSL)
	if err != nil {
		return err
	}
	r.surf = p
	r.prog = prog
	return nil
}

// Render dispatches one workgroup per 8x8 pixel tile.
func (r *Raymarch) Render(logicalMs, _ float64) {
	w := uint32(r.surf.Width())
	h := uint32(r.surf.Height())
	params := packTimeParams(w, h, logicalMs*0.001)
	if err := r.prog.Dispatch(params, (w+7)/8, (h+7)/8); err != nil {
		demoscene.Logger().Warn("raymarch dispatch failed", "err", err)
	}
}

// Resize needs no work: the dispatch reads the surface size each frame.
func (r *Raymarch) Resize(_, _ int) {}

// Destroy releases the GPU program.
func (r *Raymarch) Destroy() {
	if r.prog != nil {
		r.prog.Destroy()
		r.prog = nil
	}
	r.surf = nil
}
