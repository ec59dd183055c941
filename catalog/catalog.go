// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package catalog indexes demos by era and identifier.
//
// The catalog is built once at program start from an explicit ordered
// list of constructors and is immutable afterwards, so any number of
// readers may use it concurrently without locking.
package catalog

import (
	"fmt"

	"github.com/gogpu/demoscene"
)

// Constructor creates one demo unit. Constructors are invoked exactly
// once, at catalog build time.
type Constructor func() demoscene.Demo

// DuplicateIDError indicates two constructors produced the same demo ID.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("catalog: duplicate demo id %q", e.ID)
}

// Catalog is the immutable demo index.
type Catalog struct {
	all   []demoscene.Demo
	byEra map[demoscene.Era][]demoscene.Demo
	byID  map[string]demoscene.Demo
}

// New builds a catalog from constructors, preserving their order within
// each era. It fails on an empty ID or a duplicate ID.
func New(ctors []Constructor) (*Catalog, error) {
	c := &Catalog{
		byEra: make(map[demoscene.Era][]demoscene.Demo),
		byID:  make(map[string]demoscene.Demo),
	}
	for _, ctor := range ctors {
		d := ctor()
		meta := d.Meta()
		if meta.ID == "" {
			return nil, fmt.Errorf("catalog: demo %q has empty id", meta.Name)
		}
		if _, exists := c.byID[meta.ID]; exists {
			return nil, &DuplicateIDError{ID: meta.ID}
		}
		c.byID[meta.ID] = d
		c.byEra[meta.Era] = append(c.byEra[meta.Era], d)
		c.all = append(c.all, d)
	}
	return c, nil
}

// All returns every demo in registration order.
func (c *Catalog) All() []demoscene.Demo {
	out := make([]demoscene.Demo, len(c.all))
	copy(out, c.all)
	return out
}

// ByEra returns the demos of one era in registration order, or nil if the
// era has none.
func (c *Catalog) ByEra(era demoscene.Era) []demoscene.Demo {
	demos := c.byEra[era]
	if demos == nil {
		return nil
	}
	out := make([]demoscene.Demo, len(demos))
	copy(out, demos)
	return out
}

// Eras returns the eras that have at least one demo, in chronological
// order.
func (c *Catalog) Eras() []demoscene.Era {
	var out []demoscene.Era
	for _, era := range demoscene.Eras() {
		if len(c.byEra[era]) > 0 {
			out = append(out, era)
		}
	}
	return out
}

// Lookup returns the demo with the given ID.
func (c *Catalog) Lookup(id string) (demoscene.Demo, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Len returns the number of registered demos.
func (c *Catalog) Len() int {
	return len(c.all)
}
