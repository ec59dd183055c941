package effects

import (
	"context"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gogpu/gg"

	"github.com/gogpu/demoscene"
	"github.com/gogpu/demoscene/surface"
)

const (
	metaballStep = 2
	maxBalls     = 12
)

type ball struct {
	// Orbit parameters; the center follows a Lissajous path.
	ax, ay float32 // amplitudes as a fraction of the surface
	fx, fy float32 // angular frequencies, radians per second
	ph     float32 // phase offset
	r      float32 // radius as a fraction of the smaller dimension
}

// Metaballs is the isosurface blob field. Clicking adds a ball.
type Metaballs struct {
	surf   *surface.Raster
	width  int
	height int
	balls  []ball
}

// NewMetaballs creates the metaballs demo.
func NewMetaballs() demoscene.Demo { return &Metaballs{} }

// Meta returns the demo's catalog metadata.
func (m *Metaballs) Meta() demoscene.Meta {
	return demoscene.Meta{
		ID:          "metaballs",
		Name:        "Metaballs",
		Era:         demoscene.EraTwoThousands,
		Year:        2001,
		Author:      "gogpu demoscene authors",
		Description: "Inverse-square blob field; click to add a ball.",
		Kind:        surface.KindRaster,
		Tags:        []string{"metaballs", "field", "interactive"},
	}
}

// Init seeds three orbiting balls.
func (m *Metaballs) Init(_ context.Context, surf surface.Context, width, height int) error {
	r, ok := surf.(*surface.Raster)
	if !ok {
		return fmt.Errorf("metaballs: want raster surface, got %s", surf.Kind())
	}
	m.surf = r
	m.width = width
	m.height = height
	m.balls = []ball{
		{ax: 0.30, ay: 0.25, fx: 0.9, fy: 1.3, ph: 0.0, r: 0.16},
		{ax: 0.25, ay: 0.32, fx: 1.4, fy: 0.8, ph: 2.1, r: 0.12},
		{ax: 0.35, ay: 0.20, fx: 0.7, fy: 1.1, ph: 4.0, r: 0.14},
	}
	return nil
}

// Render sums the inverse-square field of every ball per block.
func (m *Metaballs) Render(logicalMs, _ float64) {
	dc := m.surf.Canvas()
	t := float32(logicalMs) * 0.001
	w := float32(m.width)
	h := float32(m.height)
	minDim := min(w, h)

	// Current ball centers and squared radii.
	type blob struct{ x, y, r2 float32 }
	blobs := make([]blob, len(m.balls))
	for i, b := range m.balls {
		blobs[i] = blob{
			x:  w*0.5 + math32.Sin(t*b.fx+b.ph)*b.ax*w,
			y:  h*0.5 + math32.Cos(t*b.fy+b.ph)*b.ay*h,
			r2: (b.r * minDim) * (b.r * minDim),
		}
	}

	for y := 0; y < m.height; y += metaballStep {
		fy := float32(y)
		for x := 0; x < m.width; x += metaballStep {
			fx := float32(x)
			var field float32
			for _, b := range blobs {
				dx := fx - b.x
				dy := fy - b.y
				d2 := dx*dx + dy*dy
				if d2 < 1 {
					d2 = 1
				}
				field += b.r2 / d2
			}
			col := metaballColor(field)
			for by := 0; by < metaballStep && y+by < m.height; by++ {
				for bx := 0; bx < metaballStep && x+bx < m.width; bx++ {
					dc.SetPixel(x+bx, y+by, col)
				}
			}
		}
	}
}

// metaballColor shades by field strength with a hard isosurface at 1.
func metaballColor(field float32) gg.RGBA {
	if field >= 1 {
		glow := float64(min(field-1, 1))
		return gg.RGB(0.2+glow*0.8, 0.9, 0.5)
	}
	return gg.RGB(0, float64(field)*0.25, float64(field)*0.45)
}

// Resize adopts the new dimensions on the next frame.
func (m *Metaballs) Resize(width, height int) {
	m.width = width
	m.height = height
}

// OnPointerDown adds a ball whose orbit passes through the click point.
func (m *Metaballs) OnPointerDown(x, y float64, _ int) {
	if len(m.balls) >= maxBalls || m.width == 0 || m.height == 0 {
		return
	}
	m.balls = append(m.balls, ball{
		ax: float32(x)/float32(m.width) - 0.5,
		ay: float32(y)/float32(m.height) - 0.5,
		fx: 1.0,
		fy: 1.0,
		r:  0.10,
	})
}

// Destroy drops the borrowed surface reference.
func (m *Metaballs) Destroy() {
	m.surf = nil
	m.balls = nil
}
