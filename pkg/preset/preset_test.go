package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pixelmill/pixelmill/pkg/errors"
	"github.com/pixelmill/pixelmill/pkg/params"
	"github.com/pixelmill/pixelmill/pkg/pipeline"
	"github.com/pixelmill/pixelmill/pkg/retro"
)

func TestRoundTrip(t *testing.T) {
	opts := pipeline.Options{
		Archetype: "planet",
		Seed:      4242,
		Size:      48,
		PaletteID: "nes",
		Dither:    retro.Dither8x8,
		Quantizer: retro.QuantNearest,
		Outline:   1,
		Jitter:    true,
		UseGuard:  true,
		Params: params.Map{
			"roughness": params.Number(0.8),
			"rings":     params.Bool(true),
			"style":     params.Enum("gas"),
		},
	}

	path := filepath.Join(t.TempDir(), "planet.toml")
	if err := Save(path, FromOptions("gas-giant", opts)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "gas-giant" || p.Version != Version {
		t.Errorf("header mismatch: %+v", p)
	}

	got, err := p.ToOptions()
	if err != nil {
		t.Fatalf("ToOptions: %v", err)
	}
	if got.Archetype != opts.Archetype || got.Seed != opts.Seed ||
		got.Size != opts.Size || got.PaletteID != opts.PaletteID ||
		got.Dither != opts.Dither || got.Outline != opts.Outline ||
		!got.Jitter || !got.UseGuard {
		t.Errorf("options mismatch: %+v", got)
	}
	if got.Params.Num("roughness", -1) != 0.8 {
		t.Errorf("roughness = %v", got.Params.Num("roughness", -1))
	}
	if !got.Params.Bool("rings", false) {
		t.Error("rings lost")
	}
	if got.Params.Enum("style", "") != "gas" {
		t.Errorf("style = %q", got.Params.Enum("style", ""))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodePresetNotFound) {
		t.Errorf("error = %v", err)
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.toml")
	content := "version = 99\narchetype = \"planet\"\nseed = 1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("error = %v, want unsupported version", err)
	}
}

func TestLoadRejectsMissingArchetype(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.toml")
	if err := os.WriteFile(path, []byte("version = 1\nseed = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v", err)
	}
}

func TestToOptionsIntegerParam(t *testing.T) {
	p := Preset{
		Version:   Version,
		Archetype: "badge",
		Params:    map[string]any{"bands": int64(6)},
	}
	opts, err := p.ToOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Params.Num("bands", -1) != 6 {
		t.Errorf("bands = %v", opts.Params.Num("bands", -1))
	}
}

func TestSaveCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "p.toml")
	err := Save(path, Preset{Version: Version, Archetype: "badge", Seed: 3})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file not written: %v", err)
	}
}
