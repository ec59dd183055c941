package effects

import (
	"context"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gogpu/gg"

	"github.com/gogpu/demoscene"
	"github.com/gogpu/demoscene/surface"
)

// plasmaStep renders the field in 2x2 blocks; the interference pattern is
// low frequency enough that full resolution buys nothing.
const plasmaStep = 2

// Plasma is the classic sine-interference color cycler.
type Plasma struct {
	surf    *surface.Raster
	width   int
	height  int
	palette [256]gg.RGBA
}

// NewPlasma creates the plasma demo.
func NewPlasma() demoscene.Demo { return &Plasma{} }

// Meta returns the demo's catalog metadata.
func (p *Plasma) Meta() demoscene.Meta {
	return demoscene.Meta{
		ID:          "plasma",
		Name:        "Plasma",
		Era:         demoscene.EraEighties,
		Year:        1988,
		Author:      "gogpu demoscene authors",
		Description: "Overlapping sine fields cycled through an HSL palette.",
		Kind:        surface.KindRaster,
		Tags:        []string{"plasma", "oldschool", "palette"},
	}
}

// Init precomputes the palette.
func (p *Plasma) Init(_ context.Context, surf surface.Context, width, height int) error {
	r, ok := surf.(*surface.Raster)
	if !ok {
		return fmt.Errorf("plasma: want raster surface, got %s", surf.Kind())
	}
	p.surf = r
	p.width = width
	p.height = height
	for i := range p.palette {
		p.palette[i] = gg.HSL(float64(i)/256*360, 0.85, 0.55)
	}
	return nil
}

// Render evaluates the sine field and maps it through the palette.
func (p *Plasma) Render(logicalMs, _ float64) {
	dc := p.surf.Canvas()
	t := float32(logicalMs) * 0.001
	cx := float32(p.width) * 0.5
	cy := float32(p.height) * 0.5

	for y := 0; y < p.height; y += plasmaStep {
		fy := float32(y)
		for x := 0; x < p.width; x += plasmaStep {
			fx := float32(x)
			dx := fx - cx
			dy := fy - cy
			v := math32.Sin(fx*0.040+t) +
				math32.Sin(fy*0.031-t*1.3) +
				math32.Sin((fx+fy)*0.022+t*0.7) +
				math32.Sin(math32.Sqrt(dx*dx+dy*dy)*0.050-t)
			// v is in [-4, 4]; fold into the 256-entry palette.
			col := p.palette[int((v+4)*31.875)&255]
			for by := 0; by < plasmaStep && y+by < p.height; by++ {
				for bx := 0; bx < plasmaStep && x+bx < p.width; bx++ {
					dc.SetPixel(x+bx, y+by, col)
				}
			}
		}
	}
}

// Resize adopts the new dimensions on the next frame.
func (p *Plasma) Resize(width, height int) {
	p.width = width
	p.height = height
}

// Destroy drops the borrowed surface reference.
func (p *Plasma) Destroy() {
	p.surf = nil
}
