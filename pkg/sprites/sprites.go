// Package sprites provides the built-in content generators.
//
// Each archetype implements pipeline.Generator and renders its sprite family
// from the derived random stream and parameter map it is handed. Generators
// never quantize or dither themselves; they draw full-color content and let
// retro enforcement finish the look.
package sprites

import (
	"sort"

	"github.com/pixelmill/pixelmill/pkg/errors"
	"github.com/pixelmill/pixelmill/pkg/pipeline"
)

// factories maps archetype names to generator constructors. Generators are
// stateless between draws, but each request gets a fresh value anyway.
var factories = map[string]func() pipeline.Generator{
	"planet": func() pipeline.Generator { return &Planet{} },
	"badge":  func() pipeline.Generator { return &Badge{} },
}

// New returns a generator for the named archetype.
func New(archetype string) (pipeline.Generator, error) {
	f, ok := factories[archetype]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidArchetype,
			"unknown archetype: %q (available: %v)", archetype, Archetypes())
	}
	return f(), nil
}

// Archetypes lists the registered archetype names in sorted order.
func Archetypes() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
