package demoscene

import (
	"context"

	"github.com/gogpu/demoscene/surface"
)

// Meta describes a demo's identity within the catalog.
type Meta struct {
	// ID is the stable identifier, unique across the whole catalog.
	ID string

	// Name is the human-readable title.
	Name string

	// Era is the period the effect belongs to.
	Era Era

	// Year is the approximate year the technique dates from (0 if unknown).
	Year int

	// Author credits the effect implementation.
	Author string

	// Description is free text shown by gallery hosts.
	Description string

	// Kind is the back-end the demo requires. It is immutable for the
	// lifetime of the demo; the runner only hands the demo a surface of
	// this kind.
	Kind surface.Kind

	// Tags are free-form labels ("plasma", "oldschool", "compute").
	Tags []string
}

// Demo is the capability contract every effect implements.
//
// Lifecycle per activation: Init exactly once, then zero or more Resize
// calls and one Render per scheduling tick while active, then Destroy
// exactly once. After Destroy the demo is not touched again until a fresh
// Init; re-activation is a brand-new activation, not a resume.
//
// The surface handed to Init is borrowed for the duration of the
// activation and must not be retained past Destroy.
type Demo interface {
	// Meta returns the demo's catalog metadata.
	Meta() Meta

	// Init performs one-time setup for an activation. It may block (asset
	// loading, shader compilation); ctx is cancelled when the activation
	// is superseded or the runner shuts down. The given width and height
	// are not guaranteed to persist: a Resize may follow immediately.
	Init(ctx context.Context, surf surface.Context, width, height int) error

	// Render draws exactly one frame. Both times are in milliseconds:
	// logicalMs is wall-clock time with all paused intervals subtracted,
	// deltaMs is the time since the previous rendered frame (never
	// negative, never spanning a pause).
	Render(logicalMs, deltaMs float64)

	// Resize adjusts internal buffers to new pixel dimensions.
	Resize(width, height int)

	// Destroy releases demo-owned resources (offscreen buffers, GPU
	// objects). Called only after a successful Init.
	Destroy()
}

// PointerMover is implemented by demos that react to pointer motion.
// Coordinates are device pixels, already corrected for pixel ratio.
type PointerMover interface {
	OnPointerMove(x, y float64)
}

// PointerPresser is implemented by demos that react to pointer presses.
type PointerPresser interface {
	OnPointerDown(x, y float64, button int)
}

// KeyPresser is implemented by demos that react to key presses.
type KeyPresser interface {
	OnKeyDown(key string)
}
