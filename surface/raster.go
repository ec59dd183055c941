// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"

	"github.com/gogpu/gg"
)

// Raster is the immediate-mode CPU context. It wraps a gg drawing context;
// demos draw through Canvas with the full gg API (paths, fills, strokes,
// image compositing) and the broker presents the underlying pixmap.
type Raster struct {
	dc     *gg.Context
	closed bool
}

var _ Context = (*Raster)(nil)

func newRaster(width, height int) *Raster {
	return &Raster{dc: gg.NewContext(width, height)}
}

// Kind returns KindRaster.
func (r *Raster) Kind() Kind { return KindRaster }

// Width returns the surface width in pixels.
func (r *Raster) Width() int { return r.dc.Width() }

// Height returns the surface height in pixels.
func (r *Raster) Height() int { return r.dc.Height() }

// Canvas returns the gg drawing context. The returned context is owned by
// the broker; demos must not Close it or retain it past Destroy.
func (r *Raster) Canvas() *gg.Context { return r.dc }

// Clear resets the canvas to transparent black.
func (r *Raster) Clear() {
	if r.closed {
		return
	}
	r.dc.Clear()
}

// Image returns a copy of the current canvas contents.
func (r *Raster) Image() image.Image {
	return r.dc.Image()
}

func (r *Raster) resize(width, height int) error {
	if r.closed {
		return ErrContextClosed
	}
	return r.dc.Resize(width, height)
}

func (r *Raster) close() {
	if r.closed {
		return
	}
	r.closed = true
	if err := r.dc.Close(); err != nil {
		slogger().Warn("raster context close failed", "err", err)
	}
}
