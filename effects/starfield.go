package effects

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/gogpu/gg"

	"github.com/gogpu/demoscene"
	"github.com/gogpu/demoscene/surface"
)

const (
	starCount = 400
	starDepth = 1000.0
	starSpeed = 0.35 // depth units per millisecond
)

type star struct {
	x, y, z float64
}

// Starfield is the perspective fly-through, pointer steers the vanishing
// point.
type Starfield struct {
	surf   *surface.Raster
	width  int
	height int
	cx, cy float64
	stars  [starCount]star
}

// NewStarfield creates the starfield demo.
func NewStarfield() demoscene.Demo { return &Starfield{} }

// Meta returns the demo's catalog metadata.
func (s *Starfield) Meta() demoscene.Meta {
	return demoscene.Meta{
		ID:          "starfield",
		Name:        "Starfield",
		Era:         demoscene.EraNineties,
		Year:        1991,
		Author:      "gogpu demoscene authors",
		Description: "Perspective starfield; move the pointer to steer.",
		Kind:        surface.KindRaster,
		Tags:        []string{"starfield", "3d", "interactive"},
	}
}

// Init scatters the stars through the view volume.
func (s *Starfield) Init(_ context.Context, surf surface.Context, width, height int) error {
	r, ok := surf.(*surface.Raster)
	if !ok {
		return fmt.Errorf("starfield: want raster surface, got %s", surf.Kind())
	}
	s.surf = r
	s.Resize(width, height)
	for i := range s.stars {
		s.stars[i] = randomStar()
		s.stars[i].z = rand.Float64() * starDepth
	}
	return nil
}

func randomStar() star {
	return star{
		x: (rand.Float64() - 0.5) * starDepth,
		y: (rand.Float64() - 0.5) * starDepth,
		z: starDepth,
	}
}

// Render advances each star toward the camera and projects it.
func (s *Starfield) Render(_, deltaMs float64) {
	dc := s.surf.Canvas()
	dc.ClearWithColor(gg.RGB(0, 0, 0.02))

	for i := range s.stars {
		st := &s.stars[i]
		st.z -= deltaMs * starSpeed
		if st.z <= 1 {
			*st = randomStar()
		}
		px := s.cx + st.x/st.z*float64(s.width)
		py := s.cy + st.y/st.z*float64(s.height)
		if px < 0 || px >= float64(s.width) || py < 0 || py >= float64(s.height) {
			continue
		}
		// Nearer stars are larger and brighter.
		near := 1 - st.z/starDepth
		dc.SetRGB(near, near, near)
		dc.DrawCircle(px, py, 0.5+near*1.8)
		_ = dc.Fill()
	}
}

// Resize recenters the default vanishing point.
func (s *Starfield) Resize(width, height int) {
	s.width = width
	s.height = height
	s.cx = float64(width) / 2
	s.cy = float64(height) / 2
}

// OnPointerMove steers the vanishing point.
func (s *Starfield) OnPointerMove(x, y float64) {
	s.cx = x
	s.cy = y
}

// Destroy drops the borrowed surface reference.
func (s *Starfield) Destroy() {
	s.surf = nil
}
