// Package effects ships the built-in demo units of the gallery, from
// 8-bit sine plasmas to GPU compute raymarchers.
//
// Each effect is an independent type satisfying the demoscene.Demo
// contract. Hosts obtain the full set via [All] and hand it to
// catalog.New; nothing here registers itself through import side effects.
package effects

import "github.com/gogpu/demoscene/catalog"

// All returns the constructors for every built-in effect, ordered by era.
func All() []catalog.Constructor {
	return []catalog.Constructor{
		NewPlasma,
		NewScroller,
		NewFire,
		NewStarfield,
		NewMetaballs,
		NewShaderwave,
		NewRaymarch,
	}
}
