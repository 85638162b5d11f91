package guard

import (
	"testing"

	"github.com/pixelmill/pixelmill/pkg/params"
	"github.com/pixelmill/pixelmill/pkg/raster"
	"github.com/pixelmill/pixelmill/pkg/rng"
)

// checkerboard fills buf with a two-color pattern that produces strong edges.
func checkerboard(buf *raster.Buffer, a, b uint32) {
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			if (x/2+y/2)%2 == 0 {
				buf.Set(x, y, a)
			} else {
				buf.Set(x, y, b)
			}
		}
	}
}

func TestSignatureDeterministicHistograms(t *testing.T) {
	buf := raster.NewBuffer(16, 16)
	checkerboard(buf, raster.RGB(255, 255, 255), raster.RGB(0, 0, 0))

	a := Compute(buf, nil)
	b := Compute(buf, nil)
	if a.Edges != b.Edges {
		t.Error("edge histograms differ for identical buffers")
	}
	if len(a.Colors) != len(b.Colors) {
		t.Fatalf("color histogram lengths differ: %d vs %d", len(a.Colors), len(b.Colors))
	}
	for i := range a.Colors {
		if a.Colors[i] != b.Colors[i] {
			t.Fatalf("color bin %d differs", i)
		}
	}
	if a.ID == b.ID {
		t.Error("signature IDs should be unique per computation")
	}
}

func TestEdgeHistogramNormalized(t *testing.T) {
	buf := raster.NewBuffer(16, 16)
	checkerboard(buf, raster.RGB(255, 255, 255), raster.RGB(0, 0, 0))

	sig := Compute(buf, nil)
	sum := 0.0
	for _, v := range sig.Edges {
		sum += v
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("edge histogram sums to %v, want 1", sum)
	}
}

func TestEmptyBufferSignature(t *testing.T) {
	empty := raster.NewBuffer(8, 8)
	sig := Compute(empty, nil)

	for i, v := range sig.Edges {
		if v != 0 {
			t.Errorf("edge bin %d = %v, want 0 for empty buffer", i, v)
		}
	}
	if len(sig.Colors) != 0 {
		t.Errorf("color histogram has %d bins for empty buffer", len(sig.Colors))
	}
}

func TestZeroNormNeverSimilar(t *testing.T) {
	full := raster.NewBuffer(8, 8)
	checkerboard(full, raster.RGB(200, 50, 50), raster.RGB(50, 50, 200))
	fullSig := Compute(full, nil)

	emptySig := Compute(raster.NewBuffer(8, 8), nil)

	g := New()
	g.Record(fullSig)
	if g.IsSimilar(emptySig) {
		t.Error("empty sprite flagged similar to a non-empty sprite")
	}

	// Empty versus empty is also never similar, per the zero-norm rule.
	g2 := New()
	g2.Record(emptySig)
	if g2.IsSimilar(Compute(raster.NewBuffer(8, 8), nil)) {
		t.Error("empty sprite flagged similar to another empty sprite")
	}
}

func TestIdenticalBuffersAreSimilar(t *testing.T) {
	buf := raster.NewBuffer(16, 16)
	checkerboard(buf, raster.RGB(255, 255, 255), raster.RGB(20, 20, 20))

	g := New()
	g.Record(Compute(buf, nil))
	if !g.IsSimilar(Compute(buf, nil)) {
		t.Error("identical buffers should be flagged similar")
	}
}

func TestBothAxesMustMatchSameEntry(t *testing.T) {
	// Entry A shares edges with the probe but not colors; entry B shares
	// colors but not edges. Split matches must not flag.
	probe := Signature{
		Edges:  [8]float64{0.5, 0.5},
		Colors: []float64{0.7, 0.3},
	}
	sameEdgesOtherColors := Signature{
		Edges:  [8]float64{0.5, 0.5},
		Colors: []float64{0, 0, 0.7, 0.3}, // orthogonal to probe's colors
	}
	sameColorsOtherEdges := Signature{
		Edges:  [8]float64{0, 0, 0, 0, 0.5, 0.5}, // orthogonal to probe's edges
		Colors: []float64{0.7, 0.3},
	}

	g := New()
	g.Record(sameEdgesOtherColors)
	g.Record(sameColorsOtherEdges)
	if g.IsSimilar(probe) {
		t.Error("similarity declared from matches split across different entries")
	}

	// Control: one entry matching on both axes does flag.
	g.Record(Signature{Edges: probe.Edges, Colors: probe.Colors})
	if !g.IsSimilar(probe) {
		t.Error("entry matching both axes not flagged")
	}
}

func TestHistoryEviction(t *testing.T) {
	g := NewWithConfig(3, DefaultEdgeThreshold, DefaultColorThreshold)

	old := raster.NewBuffer(16, 16)
	checkerboard(old, raster.RGB(255, 255, 255), raster.RGB(0, 0, 0))
	oldSig := Compute(old, nil)

	g.Record(oldSig)
	for i := 0; i < 3; i++ {
		filler := raster.NewBuffer(16, 16)
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				filler.Set(x, y, raster.RGB(uint8(40*i+10), uint8(x*16), uint8(y*16)))
			}
		}
		g.Record(Compute(filler, nil))
	}

	if g.Len() != 3 {
		t.Fatalf("history length = %d, want capacity 3", g.Len())
	}
	// The oldest entry was evicted, so its twin is no longer similar.
	if g.IsSimilar(Compute(old, nil)) {
		t.Error("evicted signature still matched")
	}
}

func TestNudge(t *testing.T) {
	p := params.Map{
		"roughness": params.Number(0.5),
		"craters":   params.Number(0.0),
		"peak":      params.Number(1.0),
		"rings":     params.Bool(true),
		"style":     params.Enum("banded"),
	}
	out := Nudge(p, rng.New(42))

	if v := out.Num("roughness", -1); v < 0.4 || v > 0.6 {
		t.Errorf("roughness nudged outside ±0.1: %v", v)
	}
	if v := out.Num("craters", -1); v < 0 || v > 0.1 {
		t.Errorf("craters nudge not clamped to [0,1]: %v", v)
	}
	if v := out.Num("peak", -1); v < 0.9 || v > 1 {
		t.Errorf("peak nudge not clamped to [0,1]: %v", v)
	}
	if !out.Bool("rings", false) {
		t.Error("bool parameter changed by nudge")
	}
	if out.Enum("style", "") != "banded" {
		t.Error("enum parameter changed by nudge")
	}

	// Original map untouched.
	if v := p.Num("roughness", -1); v != 0.5 {
		t.Errorf("Nudge mutated input map: %v", v)
	}
}

func TestNudgeDeterministic(t *testing.T) {
	p := params.Map{"a": params.Number(0.5), "b": params.Number(0.5)}
	x := Nudge(p, rng.New(7))
	y := Nudge(p, rng.New(7))
	for _, k := range p.Keys() {
		if x.Num(k, -1) != y.Num(k, -2) {
			t.Errorf("nudge of %q not deterministic", k)
		}
	}
}

func TestCosineDegenerate(t *testing.T) {
	if v := cosine(nil, []float64{1, 0}); v != 0 {
		t.Errorf("cosine(nil, x) = %v, want 0", v)
	}
	if v := cosine([]float64{0, 0}, []float64{0, 0}); v != 0 {
		t.Errorf("cosine of zero vectors = %v, want 0", v)
	}
	if v := cosine([]float64{1, 2}, []float64{1, 2}); v < 0.999 || v > 1.001 {
		t.Errorf("cosine of identical vectors = %v, want 1", v)
	}
}
