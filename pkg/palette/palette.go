// Package palette provides the color palettes, nearest-color quantizer, and
// palette registry used by the retro enforcement pipeline.
//
// A Palette is an ordered list of packed ARGB colors. Ordering matters:
// nearest-color lookups break exact distance ties by first occurrence, and
// that tie-break is part of the deterministic output contract (see
// NearestIndex). Palettes are immutable once constructed.
//
// The Registry is an explicit, injectable object rather than process-global
// state; the orchestrator owns one and threads it through every lookup.
package palette

import "github.com/pixelmill/pixelmill/pkg/raster"

// Palette is a named, ordered list of packed ARGB colors. Target colors are
// treated as opaque for quantization; source pixel alpha is carried through
// separately.
type Palette struct {
	Name      string
	Colors    []uint32
	MaxColors int
}

// New constructs a palette. MaxColors defaults to the color count when
// non-positive.
func New(name string, colors []uint32, maxColors int) Palette {
	if maxColors <= 0 {
		maxColors = len(colors)
	}
	cs := make([]uint32, len(colors))
	copy(cs, colors)
	return Palette{Name: name, Colors: cs, MaxColors: maxColors}
}

// Valid reports whether the palette is usable: a non-empty name, at least one
// color, and a positive max color count. Import skips records that fail this.
func (p Palette) Valid() bool {
	return p.Name != "" && len(p.Colors) > 0 && p.MaxColors > 0
}

// NearestIndex returns the index of the palette color closest to c by
// squared Euclidean distance over R, G, B. Alpha is ignored on both sides.
//
// Exact distance ties resolve to the lowest index. First-index-wins is a
// deliberate, documented invariant: reordering a palette's colors may change
// quantized output, and identical palettes always quantize identically.
func (p Palette) NearestIndex(c uint32) int {
	cr := int(raster.Red(c))
	cg := int(raster.Green(c))
	cb := int(raster.Blue(c))

	best := 0
	bestDist := 1 << 30
	for i, pc := range p.Colors {
		dr := cr - int(raster.Red(pc))
		dg := cg - int(raster.Green(pc))
		db := cb - int(raster.Blue(pc))
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Nearest returns the palette color closest to c.
func (p Palette) Nearest(c uint32) uint32 {
	return p.Colors[p.NearestIndex(c)]
}

// NearestTwo returns the nearest and second-nearest palette colors to c.
// For single-color palettes both results are that color. The micro-jitter
// stage interpolates between the pair.
func (p Palette) NearestTwo(c uint32) (uint32, uint32) {
	if len(p.Colors) == 1 {
		return p.Colors[0], p.Colors[0]
	}

	cr := int(raster.Red(c))
	cg := int(raster.Green(c))
	cb := int(raster.Blue(c))

	first, second := 0, 1
	firstDist, secondDist := 1<<30, 1<<30
	for i, pc := range p.Colors {
		dr := cr - int(raster.Red(pc))
		dg := cg - int(raster.Green(pc))
		db := cb - int(raster.Blue(pc))
		d := dr*dr + dg*dg + db*db
		switch {
		case d < firstDist:
			second, secondDist = first, firstDist
			first, firstDist = i, d
		case d < secondDist:
			second, secondDist = i, d
		}
	}
	return p.Colors[first], p.Colors[second]
}

// Quantize maps every pixel with non-zero alpha to its nearest palette
// color's RGB, preserving the pixel's alpha exactly. Fully transparent
// pixels are left untouched. An empty palette is a no-op.
func Quantize(p Palette, buf *raster.Buffer) {
	if len(p.Colors) == 0 {
		return
	}
	pix := buf.Pix()
	for i, c := range pix {
		if raster.Alpha(c) == 0 {
			continue
		}
		n := p.Nearest(c)
		pix[i] = raster.WithRGB(c, raster.Red(n), raster.Green(n), raster.Blue(n))
	}
}
