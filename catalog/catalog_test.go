// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/demoscene"
	"github.com/gogpu/demoscene/surface"
)

// stubDemo is the minimal demo unit used to exercise the index.
type stubDemo struct {
	meta demoscene.Meta
}

func (s *stubDemo) Meta() demoscene.Meta { return s.meta }
func (s *stubDemo) Init(context.Context, surface.Context, int, int) error {
	return nil
}
func (s *stubDemo) Render(float64, float64) {}
func (s *stubDemo) Resize(int, int)         {}
func (s *stubDemo) Destroy()                {}

func stub(id string, era demoscene.Era) Constructor {
	return func() demoscene.Demo {
		return &stubDemo{meta: demoscene.Meta{ID: id, Name: id, Era: era}}
	}
}

func TestNew(t *testing.T) {
	c, err := New([]Constructor{
		stub("plasma", demoscene.EraNineties),
		stub("rotozoom", demoscene.EraNineties),
		stub("scroller", demoscene.EraEighties),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	all := c.All()
	wantOrder := []string{"plasma", "rotozoom", "scroller"}
	for i, id := range wantOrder {
		if all[i].Meta().ID != id {
			t.Errorf("All()[%d].ID = %q, want %q", i, all[i].Meta().ID, id)
		}
	}
}

func TestNewDuplicateID(t *testing.T) {
	_, err := New([]Constructor{
		stub("plasma", demoscene.EraNineties),
		stub("plasma", demoscene.EraModern),
	})
	var dup *DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("New() error = %v, want DuplicateIDError", err)
	}
	if dup.ID != "plasma" {
		t.Errorf("duplicate ID = %q, want %q", dup.ID, "plasma")
	}
}

func TestNewEmptyID(t *testing.T) {
	_, err := New([]Constructor{stub("", demoscene.EraNineties)})
	if err == nil {
		t.Fatal("New() error = nil, want empty-id error")
	}
}

func TestByEra(t *testing.T) {
	c, err := New([]Constructor{
		stub("fire", demoscene.EraNineties),
		stub("scroller", demoscene.EraEighties),
		stub("plasma", demoscene.EraNineties),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	nineties := c.ByEra(demoscene.EraNineties)
	if len(nineties) != 2 {
		t.Fatalf("ByEra(nineties) len = %d, want 2", len(nineties))
	}
	if nineties[0].Meta().ID != "fire" || nineties[1].Meta().ID != "plasma" {
		t.Errorf("ByEra(nineties) order = [%s %s], want [fire plasma]",
			nineties[0].Meta().ID, nineties[1].Meta().ID)
	}
	if got := c.ByEra(demoscene.EraModern); got != nil {
		t.Errorf("ByEra(modern) = %v, want nil", got)
	}

	// Returned slices are copies.
	nineties[0] = nil
	if c.ByEra(demoscene.EraNineties)[0] == nil {
		t.Error("ByEra() exposes internal storage")
	}
}

func TestEras(t *testing.T) {
	c, err := New([]Constructor{
		stub("tunnel", demoscene.EraTwoThousands),
		stub("scroller", demoscene.EraEighties),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := c.Eras()
	want := []demoscene.Era{demoscene.EraEighties, demoscene.EraTwoThousands}
	if len(got) != len(want) {
		t.Fatalf("Eras() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Eras()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLookup(t *testing.T) {
	c, err := New([]Constructor{stub("plasma", demoscene.EraNineties)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if d, ok := c.Lookup("plasma"); !ok || d.Meta().ID != "plasma" {
		t.Errorf("Lookup(plasma) = %v, %v", d, ok)
	}
	if _, ok := c.Lookup("missing"); ok {
		t.Error("Lookup(missing) found a demo")
	}
}
