// Package preset persists generation recipes as TOML files so a sprite can
// be regenerated, tweaked, and shared outside the process that made it.
package preset

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/pixelmill/pixelmill/pkg/errors"
	"github.com/pixelmill/pixelmill/pkg/params"
	"github.com/pixelmill/pixelmill/pkg/pipeline"
	"github.com/pixelmill/pixelmill/pkg/retro"
)

// Version is the current preset file format version.
const Version = 1

// Preset is the on-disk recipe for one sprite.
type Preset struct {
	Version   int    `toml:"version"`
	Name      string `toml:"name,omitempty"`
	Archetype string `toml:"archetype"`
	Seed      uint32 `toml:"seed"`
	Size      int    `toml:"size,omitempty"`
	Palette   string `toml:"palette,omitempty"`

	Dither    string `toml:"dither,omitempty"`
	Quantizer string `toml:"quantizer,omitempty"`
	Outline   int    `toml:"outline,omitempty"`
	Jitter    bool   `toml:"jitter,omitempty"`

	Guard bool `toml:"guard,omitempty"`

	// Params holds the generator's open parameter table. TOML primitives
	// map onto the tagged parameter kinds: floats and ints to numbers,
	// bools to bools, strings to enums.
	Params map[string]any `toml:"params,omitempty"`
}

// FromOptions captures a generation request as a preset.
func FromOptions(name string, opts pipeline.Options) Preset {
	p := Preset{
		Version:   Version,
		Name:      name,
		Archetype: opts.Archetype,
		Seed:      opts.Seed,
		Size:      opts.Size,
		Palette:   opts.PaletteID,
		Dither:    string(opts.Dither),
		Quantizer: string(opts.Quantizer),
		Outline:   opts.Outline,
		Jitter:    opts.Jitter,
		Guard:     opts.UseGuard,
	}
	if len(opts.Params) > 0 {
		p.Params = make(map[string]any, len(opts.Params))
		for _, key := range opts.Params.Keys() {
			v := opts.Params[key]
			switch v.Kind() {
			case params.KindNumber:
				n, _ := v.Num()
				p.Params[key] = n
			case params.KindBool:
				b, _ := v.BoolVal()
				p.Params[key] = b
			case params.KindEnum:
				e, _ := v.EnumVal()
				p.Params[key] = e
			}
		}
	}
	return p
}

// ToOptions converts the preset back into a generation request.
func (p Preset) ToOptions() (pipeline.Options, error) {
	if p.Version != Version {
		return pipeline.Options{}, errors.New(errors.ErrCodeUnsupported,
			"preset version %d not supported (current: %d)", p.Version, Version)
	}
	opts := pipeline.Options{
		Archetype: p.Archetype,
		Seed:      p.Seed,
		Size:      p.Size,
		PaletteID: p.Palette,
		Dither:    retro.DitherMode(p.Dither),
		Quantizer: retro.QuantMode(p.Quantizer),
		Outline:   p.Outline,
		Jitter:    p.Jitter,
		UseGuard:  p.Guard,
	}
	if len(p.Params) > 0 {
		opts.Params = make(params.Map, len(p.Params))
		for key, raw := range p.Params {
			switch v := raw.(type) {
			case float64:
				opts.Params[key] = params.Number(v)
			case int64:
				opts.Params[key] = params.Number(float64(v))
			case bool:
				opts.Params[key] = params.Bool(v)
			case string:
				opts.Params[key] = params.Enum(v)
			default:
				return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput,
					"param %q has unsupported type %T", key, raw)
			}
		}
	}
	return opts, nil
}

// Load reads a preset file.
func Load(path string) (Preset, error) {
	var p Preset
	// Unknown keys are tolerated so files written by newer builds still
	// load; the version gate rejects genuinely incompatible formats.
	if _, err := toml.DecodeFile(path, &p); err != nil {
		if os.IsNotExist(err) {
			return Preset{}, errors.Wrap(errors.ErrCodePresetNotFound, err, "preset not found: %s", path)
		}
		return Preset{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing preset %s", path)
	}
	if p.Version != Version {
		return Preset{}, errors.New(errors.ErrCodeUnsupported,
			"preset version %d not supported (current: %d)", p.Version, Version)
	}
	if p.Archetype == "" {
		return Preset{}, errors.New(errors.ErrCodeInvalidInput, "preset missing archetype")
	}
	return p, nil
}

// Save writes the preset to path, creating parent directories as needed.
func Save(path string, p Preset) error {
	if p.Version == 0 {
		p.Version = Version
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(p); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding preset")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating preset directory")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing preset %s", path)
	}
	return nil
}
