package demoscene

// Era groups demos by the period whose techniques they showcase.
type Era uint8

const (
	// EraEighties covers 8-bit and early 16-bit machine effects
	// (plasmas, copper bars, sine scrollers).
	EraEighties Era = iota

	// EraNineties covers the PC demoscene golden age
	// (fire, starfields, tunnels, rotozoomers).
	EraNineties

	// EraTwoThousands covers the accelerated-2D period
	// (metaballs, particle systems, feedback effects).
	EraTwoThousands

	// EraModern covers shader-driven effects running on the GPU pipeline.
	EraModern
)

// Eras returns all eras in chronological order.
func Eras() []Era {
	return []Era{EraEighties, EraNineties, EraTwoThousands, EraModern}
}

// String returns the era name.
func (e Era) String() string {
	switch e {
	case EraEighties:
		return "eighties"
	case EraNineties:
		return "nineties"
	case EraTwoThousands:
		return "two-thousands"
	case EraModern:
		return "modern"
	default:
		return "unknown"
	}
}
