// Package retro implements the fixed post-processing sequence that turns raw
// procedural output into console-style pixel art.
//
// The stage order is fixed — micro-jitter, quantization, ordered dithering,
// outline — with each stage independently toggleable through a Policy.
// Jitter runs before quantization so gradients pre-bias toward a plausible
// neighboring palette color; dithering perturbs and requantizes, so it
// redistributes quantization error spatially without ever introducing an
// off-palette color; the outline stage reads a snapshot of the buffer so its
// own writes cannot cascade into the solidity test.
//
// Every stage preserves alpha exactly and treats a zero-area buffer as a
// no-op.
package retro

import (
	"github.com/pixelmill/pixelmill/pkg/palette"
	"github.com/pixelmill/pixelmill/pkg/raster"
	"github.com/pixelmill/pixelmill/pkg/rng"
)

// DitherMode selects the ordered dither matrix.
type DitherMode string

// Dither modes.
const (
	DitherNone DitherMode = "none"
	Dither4x4  DitherMode = "bayer4"
	Dither8x8  DitherMode = "bayer8"
)

// QuantMode selects the quantizer.
type QuantMode string

// Quantizer modes.
const (
	QuantNone    QuantMode = "none"
	QuantNearest QuantMode = "nearest"
)

const (
	// ditherStrength scales the normalized Bayer threshold onto the 0–255
	// channel range. Subtle on purpose; stronger values read as noise at
	// sprite scale.
	ditherStrength = 28.0

	// defaultJitterStrength applies when jitter is enabled with no strength
	// set. Content generators may tune the strength before enforcement runs.
	defaultJitterStrength = 0.15

	// OutlineColor is the fixed near-black outline pixel, fully opaque.
	OutlineColor = 0xff101018
)

// Policy configures the enforcement stages. The zero value disables
// everything; ResolveDefaults fills conventional settings for retro output.
type Policy struct {
	Quantizer      QuantMode
	Dither         DitherMode
	Outline        int // outline width: 0 disables, 1 renders; 2 is reserved and treated as 1
	Jitter         bool
	JitterStrength float64 // [0, ~0.5]; 0 means defaultJitterStrength when Jitter is set
}

// ResolveDefaults returns a copy of p with zero-valued fields resolved to
// their documented defaults. This is the single defaults-resolution point;
// stage code never coalesces inline.
func (p Policy) ResolveDefaults() Policy {
	if p.Quantizer == "" {
		p.Quantizer = QuantNearest
	}
	if p.Dither == "" {
		p.Dither = DitherNone
	}
	if p.Jitter && p.JitterStrength == 0 {
		p.JitterStrength = defaultJitterStrength
	}
	return p
}

// ValidDither reports whether mode names a known dither mode.
func ValidDither(mode DitherMode) bool {
	return mode == DitherNone || mode == Dither4x4 || mode == Dither8x8
}

// Enforce runs the enabled stages over buf in fixed order. The stream is
// only consulted by the jitter stage, through a dedicated "microJitter"
// child, so disabling jitter never shifts any other stage's randomness.
func Enforce(buf *raster.Buffer, pal palette.Palette, policy Policy, stream *rng.Stream) {
	if buf.Width() == 0 || buf.Height() == 0 {
		return
	}
	policy = policy.ResolveDefaults()

	if policy.Jitter && policy.JitterStrength > 0 {
		microJitter(buf, pal, policy.JitterStrength, stream.Split("microJitter"))
	}
	if policy.Quantizer == QuantNearest {
		palette.Quantize(pal, buf)
	}
	if policy.Dither == Dither4x4 || policy.Dither == Dither8x8 {
		size := 4
		if policy.Dither == Dither8x8 {
			size = 8
		}
		orderedDither(buf, pal, size)
	}
	if policy.Outline >= 1 {
		outline(buf)
	}
}

// microJitter nudges each opaque pixel's RGB from its nearest palette color
// toward its second-nearest by a random fraction, so the subsequent hard
// quantization lands on either side of gradient boundaries instead of
// banding.
func microJitter(buf *raster.Buffer, pal palette.Palette, strength float64, stream *rng.Stream) {
	if len(pal.Colors) == 0 {
		return
	}
	pix := buf.Pix()
	for i, c := range pix {
		if raster.Alpha(c) == 0 {
			continue
		}
		first, second := pal.NearestTwo(c)
		f := stream.Range(-0.5, 0.5) * strength

		r := float64(raster.Red(first)) + (float64(raster.Red(second))-float64(raster.Red(first)))*f
		g := float64(raster.Green(first)) + (float64(raster.Green(second))-float64(raster.Green(first)))*f
		b := float64(raster.Blue(first)) + (float64(raster.Blue(second))-float64(raster.Blue(first)))*f

		pix[i] = raster.WithRGB(c, raster.ClampChannel(r), raster.ClampChannel(g), raster.ClampChannel(b))
	}
}

// orderedDither perturbs each opaque pixel by the Bayer threshold for its
// position and requantizes. Transparent pixels are skipped entirely.
func orderedDither(buf *raster.Buffer, pal palette.Palette, size int) {
	if len(pal.Colors) == 0 {
		return
	}
	w := buf.Width()
	pix := buf.Pix()
	for i, c := range pix {
		if raster.Alpha(c) == 0 {
			continue
		}
		x := i % w
		y := i / w
		offset := bayerThreshold(x, y, size) * ditherStrength

		perturbed := raster.WithRGB(c,
			raster.ClampChannel(float64(raster.Red(c))+offset),
			raster.ClampChannel(float64(raster.Green(c))+offset),
			raster.ClampChannel(float64(raster.Blue(c))+offset),
		)
		n := pal.Nearest(perturbed)
		pix[i] = raster.WithRGB(c, raster.Red(n), raster.Green(n), raster.Blue(n))
	}
}

// outline sets every transparent pixel with an opaque 4-neighbor to the
// fixed outline color. It works off a snapshot so newly written outline
// pixels do not count as opaque neighbors. Diagonals do not count.
func outline(buf *raster.Buffer) {
	snap := buf.Clone()
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			if raster.Alpha(snap.Get(x, y)) != 0 {
				continue
			}
			if raster.Alpha(snap.Get(x-1, y)) != 0 ||
				raster.Alpha(snap.Get(x+1, y)) != 0 ||
				raster.Alpha(snap.Get(x, y-1)) != 0 ||
				raster.Alpha(snap.Get(x, y+1)) != 0 {
				buf.Set(x, y, OutlineColor)
			}
		}
	}
}
