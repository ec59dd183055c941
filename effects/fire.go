package effects

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"math/rand"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/demoscene"
	"github.com/gogpu/demoscene/surface"
)

// fireScale is the chunky-pixel factor: the automaton runs at 1/fireScale
// resolution and is upscaled with nearest-neighbour sampling, which is
// both the authentic look and most of the speed.
const fireScale = 2

// Fire is the cellular-automaton flame made famous by a certain 1993
// shooter's title screen.
type Fire struct {
	surf   *surface.Raster
	width  int
	height int

	cols, rows int
	heat       []uint8
	small      *image.RGBA
	full       *image.RGBA
	palette    [256]gg.RGBA
}

// NewFire creates the fire demo.
func NewFire() demoscene.Demo { return &Fire{} }

// Meta returns the demo's catalog metadata.
func (f *Fire) Meta() demoscene.Meta {
	return demoscene.Meta{
		ID:          "fire",
		Name:        "Fire",
		Era:         demoscene.EraNineties,
		Year:        1993,
		Author:      "gogpu demoscene authors",
		Description: "Heat-diffusion cellular automaton with a black-body palette.",
		Kind:        surface.KindRaster,
		Tags:        []string{"fire", "cellular", "palette"},
	}
}

// Init builds the black-body palette and allocates the heat grid.
func (f *Fire) Init(_ context.Context, surf surface.Context, width, height int) error {
	r, ok := surf.(*surface.Raster)
	if !ok {
		return fmt.Errorf("fire: want raster surface, got %s", surf.Kind())
	}
	f.surf = r
	for i := range f.palette {
		f.palette[i] = firePaletteEntry(i)
	}
	f.Resize(width, height)
	return nil
}

// firePaletteEntry maps heat to black -> red -> yellow -> white.
func firePaletteEntry(i int) gg.RGBA {
	t := float64(i) / 255
	switch {
	case t < 0.33:
		return gg.RGB(t*3, 0, 0)
	case t < 0.66:
		return gg.RGB(1, (t-0.33)*3, 0)
	default:
		return gg.RGB(1, 1, (t-0.66)*3)
	}
}

// Render advances the automaton one step and blits the upscaled result.
func (f *Fire) Render(_, _ float64) {
	// Seed the bottom row with fresh heat.
	base := (f.rows - 1) * f.cols
	for x := 0; x < f.cols; x++ {
		f.heat[base+x] = uint8(160 + rand.Intn(96))
	}

	// Each cell cools and drifts upward from the cell below, with a
	// random lateral jitter of one column.
	for y := 0; y < f.rows-1; y++ {
		row := y * f.cols
		below := row + f.cols
		for x := 0; x < f.cols; x++ {
			src := below + x + rand.Intn(3) - 1
			if src < below {
				src = below
			} else if src >= below+f.cols {
				src = below + f.cols - 1
			}
			h := f.heat[src]
			decay := uint8(rand.Intn(4))
			if h > decay {
				f.heat[row+x] = h - decay
			} else {
				f.heat[row+x] = 0
			}
		}
	}

	for i, h := range f.heat {
		c := f.palette[h]
		o := i * 4
		f.small.Pix[o+0] = uint8(c.R * 255)
		f.small.Pix[o+1] = uint8(c.G * 255)
		f.small.Pix[o+2] = uint8(c.B * 255)
		f.small.Pix[o+3] = 255
	}

	xdraw.NearestNeighbor.Scale(f.full, f.full.Bounds(), f.small, f.small.Bounds(), draw.Src, nil)
	f.surf.Canvas().DrawImage(gg.ImageBufFromImage(f.full), 0, 0)
}

// Resize reallocates the grid; accumulated heat is discarded.
func (f *Fire) Resize(width, height int) {
	f.width = width
	f.height = height
	f.cols = max(width/fireScale, 1)
	f.rows = max(height/fireScale, 1)
	f.heat = make([]uint8, f.cols*f.rows)
	f.small = image.NewRGBA(image.Rect(0, 0, f.cols, f.rows))
	f.full = image.NewRGBA(image.Rect(0, 0, width, height))
}

// OnKeyDown douses the flames; they reignite from the seeded bottom row.
func (f *Fire) OnKeyDown(key string) {
	if key == "r" {
		for i := range f.heat {
			f.heat[i] = 0
		}
	}
}

// Destroy releases the grid and drops the borrowed surface reference.
func (f *Fire) Destroy() {
	f.surf = nil
	f.heat = nil
	f.small = nil
	f.full = nil
}
