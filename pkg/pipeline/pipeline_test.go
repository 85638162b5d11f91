package pipeline

import (
	"context"
	"testing"

	"github.com/pixelmill/pixelmill/pkg/errors"
	"github.com/pixelmill/pixelmill/pkg/guard"
	"github.com/pixelmill/pixelmill/pkg/palette"
	"github.com/pixelmill/pixelmill/pkg/params"
	"github.com/pixelmill/pixelmill/pkg/raster"
	"github.com/pixelmill/pixelmill/pkg/retro"
)

// streamGen draws a pattern that depends on the attempt stream, so distinct
// attempts produce distinct buffers.
type streamGen struct {
	calls int
}

func (g *streamGen) Archetype() string { return "test-stream" }

func (g *streamGen) Draw(gctx *Context, p params.Map) {
	g.calls++
	w := gctx.Buffer.Width()
	h := gctx.Buffer.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := uint8(gctx.Stream.IntN(256))
			gctx.Buffer.Set(x, y, raster.RGB(r, uint8(x*8), uint8(y*8)))
		}
	}
}

// fixedGen ignores both stream and params and always draws the same
// checkerboard: the worst case for the similarity guard.
type fixedGen struct {
	calls int
}

func (g *fixedGen) Archetype() string { return "test-fixed" }

func (g *fixedGen) Draw(gctx *Context, p params.Map) {
	g.calls++
	for y := 0; y < gctx.Buffer.Height(); y++ {
		for x := 0; x < gctx.Buffer.Width(); x++ {
			if (x/2+y/2)%2 == 0 {
				gctx.Buffer.Set(x, y, raster.RGB(240, 240, 240))
			} else {
				gctx.Buffer.Set(x, y, raster.RGB(16, 16, 16))
			}
		}
	}
}

func TestGenerateDeterminism(t *testing.T) {
	opts := Options{
		Archetype: "test-stream",
		Seed:      9001,
		Size:      32,
		Dither:    retro.Dither4x4,
		Jitter:    true,
		Outline:   1,
	}

	run := func() *raster.Buffer {
		r := NewRunner(nil, nil, nil)
		res, err := r.Generate(context.Background(), &streamGen{}, opts)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		return res.Buffer
	}

	a, b := run(), run()
	for i := range a.Pix() {
		if a.Pix()[i] != b.Pix()[i] {
			t.Fatalf("pixel %d differs between identical requests", i)
		}
	}
}

func TestGenerateSeedsDiffer(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	gen := &streamGen{}

	resA, err := r.Generate(context.Background(), gen, Options{Archetype: "t", Seed: 1, Size: 16})
	if err != nil {
		t.Fatal(err)
	}
	resB, err := r.Generate(context.Background(), gen, Options{Archetype: "t", Seed: 2, Size: 16})
	if err != nil {
		t.Fatal(err)
	}

	same := true
	for i := range resA.Buffer.Pix() {
		if resA.Buffer.Pix()[i] != resB.Buffer.Pix()[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical buffers")
	}
}

func TestGuardConvergenceScenario(t *testing.T) {
	// With 3 identical signatures already in history, a generator that
	// always draws the same sprite must be retried at least once before the
	// pipeline gives up and returns.
	g := guard.New()
	r := NewRunner(nil, g, nil)
	opts := Options{Archetype: "test-fixed", Seed: 12345, Size: 32, UseGuard: true}

	seed := &fixedGen{}
	for i := 0; i < 3; i++ {
		if _, err := r.Generate(context.Background(), seed, opts); err != nil {
			t.Fatalf("seeding history: %v", err)
		}
	}

	probe := &fixedGen{}
	res, err := r.Generate(context.Background(), probe, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if probe.calls <= 1 {
		t.Errorf("generator called %d times, want >1 (retry engaged)", probe.calls)
	}
	if res.Attempts != DefaultMaxAttempts {
		t.Errorf("Attempts = %d, want cap %d", res.Attempts, DefaultMaxAttempts)
	}
	if res.Distinct {
		t.Error("Distinct should be false after exhausting retries")
	}
	if res.Buffer == nil {
		t.Fatal("exhausted request must still return a buffer")
	}
}

func TestGuardAcceptsDistinctFirstAttempt(t *testing.T) {
	g := guard.New()
	r := NewRunner(nil, g, nil)

	gen := &streamGen{}
	res, err := r.Generate(context.Background(), gen, Options{Archetype: "t", Seed: 7, Size: 16, UseGuard: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1 against empty history", res.Attempts)
	}
	if !res.Distinct {
		t.Error("first attempt against empty history should be distinct")
	}
	if res.Signature == nil {
		t.Error("guarded generation should carry a signature")
	}
	if g.Len() != 1 {
		t.Errorf("history length = %d, want 1", g.Len())
	}
}

func TestGuardHistoryPersistsAcrossRequests(t *testing.T) {
	// A runner built without an explicit guard still keeps one for its
	// lifetime, so a repeat of an identical guarded request runs into the
	// history recorded by the first.
	r := NewRunner(nil, nil, nil)
	opts := Options{Archetype: "test-fixed", Seed: 4242, Size: 32, UseGuard: true}

	first := &fixedGen{}
	if _, err := r.Generate(context.Background(), first, opts); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if first.calls != 1 {
		t.Errorf("first request generator calls = %d, want 1 against empty history", first.calls)
	}

	repeat := &fixedGen{}
	res, err := r.Generate(context.Background(), repeat, opts)
	if err != nil {
		t.Fatalf("repeat request: %v", err)
	}
	if repeat.calls <= 1 {
		t.Errorf("repeat request generator calls = %d, want >1 (retry engaged)", repeat.calls)
	}
	if res.Distinct {
		t.Error("identical repeat should not be reported distinct")
	}
}

func TestGenerateValidation(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	if _, err := r.Generate(context.Background(), nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil generator error = %v", err)
	}

	_, err := r.Generate(context.Background(), &fixedGen{}, Options{Size: MaxSize + 1})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("oversize error = %v", err)
	}

	_, err = r.Generate(context.Background(), &fixedGen{}, Options{Dither: "floyd"})
	if !errors.Is(err, errors.ErrCodeInvalidDither) {
		t.Errorf("bad dither error = %v", err)
	}
}

func TestUnknownPaletteFallsBack(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Generate(context.Background(), &fixedGen{}, Options{Archetype: "t", Seed: 1, Size: 8, PaletteID: "nope"})
	if err != nil {
		t.Fatalf("unknown palette should not fail: %v", err)
	}

	// Output must be quantized to the default palette.
	def, _ := palette.NewRegistry().Get(palette.DefaultID)
	members := make(map[uint32]bool)
	for _, c := range def.Colors {
		members[c&0x00ffffff] = true
	}
	for i, c := range res.Buffer.Pix() {
		if raster.Alpha(c) == 0 {
			continue
		}
		if !members[c&0x00ffffff] {
			t.Fatalf("pixel %d not quantized to fallback palette: %#06x", i, c&0x00ffffff)
		}
	}
}

func TestOptionsValidateIdempotent(t *testing.T) {
	o := Options{Archetype: "t"}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	size := o.Size
	o.Size = 0 // would be re-defaulted if validation ran again
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Size != 0 {
		t.Errorf("second validation re-applied defaults (size %d -> %d)", size, o.Size)
	}
}
