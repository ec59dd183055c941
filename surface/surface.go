// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import "image"

// Kind identifies which of the two mutually exclusive back-ends a context
// draws with. A context's kind is fixed once created.
type Kind uint8

const (
	// KindRaster is the CPU immediate-mode back-end (gg canvas).
	KindRaster Kind = iota

	// KindPipeline is the persistent GPU compute pipeline back-end.
	KindPipeline
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRaster:
		return "raster"
	case KindPipeline:
		return "pipeline"
	default:
		return "unknown"
	}
}

// Context is the drawing handle a broker lends to the active demo.
//
// Exactly two implementations exist, [Raster] and [Pipeline]; demos
// type-switch on the concrete type matching their declared kind. The
// interface is sealed: contexts are created only by a [Broker], and a
// handle is invalidated when the broker rebuilds the native target for a
// kind change.
type Context interface {
	// Kind returns the back-end this context draws with.
	Kind() Kind

	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// Clear resets the surface to a blank (transparent black) frame.
	Clear()

	// Image returns a copy of the current surface contents.
	// For pipeline contexts this reads the presentation buffer filled by
	// the last dispatch; it does not stall the GPU.
	Image() image.Image

	// resize updates the native target's pixel dimensions in place.
	resize(width, height int) error

	// close releases the native target. The handle must not be used
	// afterwards.
	close()
}
