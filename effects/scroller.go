package effects

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/demoscene"
	"github.com/gogpu/demoscene/surface"
)

const (
	scrollerText  = "GOGPU DEMOSCENE GALLERY ... GREETINGS TO ALL GOPHERS ... WRAP AROUND ...     "
	scrollerZoom  = 4     // pixel-doubling factor for the bitmap font
	scrollerSpeed = 0.12  // strip pixels per millisecond
	scrollerWave  = 0.006 // sine frequency along the screen, radians per pixel
)

// Scroller is the sine-wave scrolltext, pixel-doubled from a 7x13 bitmap
// font the way home-computer demos stretched their character ROMs.
type Scroller struct {
	surf   *surface.Raster
	width  int
	height int
	strip  *image.RGBA // the message rendered once at font resolution
}

// NewScroller creates the scrolltext demo.
func NewScroller() demoscene.Demo { return &Scroller{} }

// Meta returns the demo's catalog metadata.
func (s *Scroller) Meta() demoscene.Meta {
	return demoscene.Meta{
		ID:          "scroller",
		Name:        "Sine Scroller",
		Era:         demoscene.EraEighties,
		Year:        1987,
		Author:      "gogpu demoscene authors",
		Description: "Bitmap-font scrolltext riding a sine wave.",
		Kind:        surface.KindRaster,
		Tags:        []string{"scroller", "text", "oldschool"},
	}
}

// Init renders the message once into an offscreen strip.
func (s *Scroller) Init(_ context.Context, surf surface.Context, width, height int) error {
	r, ok := surf.(*surface.Raster)
	if !ok {
		return fmt.Errorf("scroller: want raster surface, got %s", surf.Kind())
	}
	s.surf = r
	s.width = width
	s.height = height

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, scrollerText).Ceil()
	s.strip = image.NewRGBA(image.Rect(0, 0, textWidth, face.Height))
	d := font.Drawer{
		Dst:  s.strip,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(scrollerText)
	return nil
}

// Render copies strip columns onto the canvas with a per-column sine
// offset, wrapping the message horizontally.
func (s *Scroller) Render(logicalMs, _ float64) {
	dc := s.surf.Canvas()
	dc.ClearWithColor(gg.RGB(0.05, 0.02, 0.12))

	stripW := s.strip.Bounds().Dx()
	stripH := s.strip.Bounds().Dy()
	scroll := int(logicalMs * scrollerSpeed)
	baseY := s.height/2 - stripH*scrollerZoom/2
	amp := float64(s.height) * 0.15
	phase := logicalMs * 0.004

	for x := 0; x < s.width; x++ {
		srcX := (scroll + x/scrollerZoom) % stripW
		wave := int(amp * math.Sin(float64(x)*scrollerWave*2*math.Pi+phase))
		for sy := 0; sy < stripH; sy++ {
			c := s.strip.RGBAAt(srcX, sy)
			if c.A == 0 {
				continue
			}
			col := gg.RGB(0.4+0.6*float64(sy)/float64(stripH), 0.8, 1)
			for zy := 0; zy < scrollerZoom; zy++ {
				y := baseY + sy*scrollerZoom + zy + wave
				if y >= 0 && y < s.height {
					dc.SetPixel(x, y, col)
				}
			}
		}
	}
}

// Resize adopts the new dimensions on the next frame.
func (s *Scroller) Resize(width, height int) {
	s.width = width
	s.height = height
}

// Destroy releases the strip and drops the borrowed surface reference.
func (s *Scroller) Destroy() {
	s.surf = nil
	s.strip = nil
}
