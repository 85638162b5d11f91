// Package store persists custom palettes across runs. Two backends are
// provided: a JSON file under the user config directory for the CLI, and a
// Redis hash for server deployments that share palettes between instances.
package store

import (
	"context"

	"github.com/pixelmill/pixelmill/pkg/palette"
)

// Store loads and saves the custom palette set. Implementations must treat
// the record map as the full snapshot: Save replaces whatever was persisted
// before.
type Store interface {
	// Load returns all persisted palette records. A missing backing store
	// is not an error; it yields an empty map.
	Load(ctx context.Context) (map[string]palette.Record, error)

	// Save replaces the persisted set with records.
	Save(ctx context.Context, records map[string]palette.Record) error
}

// Hydrate imports every persisted palette into the registry. It returns the
// number of palettes accepted; malformed records are skipped the same way
// registry import skips them.
func Hydrate(ctx context.Context, s Store, reg *palette.Registry) (int, error) {
	records, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	accepted, _ := reg.ImportCustom(records)
	return accepted, nil
}

// Flush persists the registry's current custom palettes.
func Flush(ctx context.Context, s Store, reg *palette.Registry) error {
	records, err := reg.ExportCustom()
	if err != nil {
		return err
	}
	return s.Save(ctx, records)
}
