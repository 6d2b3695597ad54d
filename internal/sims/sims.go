// Package sims assembles the static catalog of simulation units. The reader
// builds its registry from Descriptors once at startup; content may only
// reference ids listed here.
package sims

import (
	"cogcanvas/internal/registry"
	"cogcanvas/internal/sims/blanket"
	"cogcanvas/internal/sims/gradient"
	"cogcanvas/internal/sims/homeostat"
	"cogcanvas/internal/sims/morpho"
)

// Descriptors returns every shipped simulation descriptor.
func Descriptors() []registry.Descriptor {
	return []registry.Descriptor{
		blanket.Descriptor(),
		gradient.Descriptor(),
		homeostat.Descriptor(),
		morpho.Descriptor(),
	}
}

// NewRegistry builds the reader's registry. Duplicate ids are a programming
// error and panic at startup.
func NewRegistry() *registry.Registry {
	return registry.MustNew(Descriptors()...)
}
