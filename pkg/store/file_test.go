package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixelmill/pixelmill/pkg/errors"
	"github.com/pixelmill/pixelmill/pkg/palette"
)

func TestFileStoreLoadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "palettes.json"))
	records, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("missing file should load empty, got %d records", len(records))
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "palettes.json")
	s := NewFileStore(path)
	ctx := context.Background()

	in := map[string]palette.Record{
		"lava": {
			Name:      "Lava",
			Colors:    json.RawMessage(`[4278716424, 4294901760, 4294944000]`),
			MaxColors: 3,
		},
	}
	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec, ok := out["lava"]
	if !ok {
		t.Fatal("record lost in round trip")
	}
	if rec.Name != "Lava" || rec.MaxColors != 3 {
		t.Errorf("record mangled: %+v", rec)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palettes.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileStore(path).Load(context.Background())
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v", err)
	}
}

func TestHydrateAndFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palettes.json")
	s := NewFileStore(path)
	ctx := context.Background()

	src := palette.NewRegistry()
	src.Add(palette.New("Ocean", []uint32{0xff001040, 0xff0040a0, 0xff40a0ff}, 0))
	if err := Flush(ctx, s, src); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	dst := palette.NewRegistry()
	n, err := Hydrate(ctx, s, dst)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if n != 1 {
		t.Errorf("hydrated %d palettes, want 1", n)
	}
	p, exact := dst.Get("ocean")
	if !exact {
		t.Fatal("ocean palette missing after hydrate")
	}
	if len(p.Colors) != 3 || p.Colors[0] != 0xff001040 {
		t.Errorf("palette mangled: %+v", p)
	}
}

func TestHydrateSkipsMalformedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palettes.json")
	content := `{
  "good": {"name": "Good", "colors": [4278190080, 4294967295], "maxColors": 2},
  "bad": {"name": "Bad", "colors": "not-a-list", "maxColors": 2}
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := palette.NewRegistry()
	n, err := Hydrate(context.Background(), NewFileStore(path), reg)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if n != 1 {
		t.Errorf("accepted %d, want 1 (bad record skipped)", n)
	}
	if _, exact := reg.Get("good"); !exact {
		t.Error("good palette should survive a bad sibling")
	}
}
