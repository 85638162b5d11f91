package sprites

import (
	"math"

	"github.com/pixelmill/pixelmill/pkg/noise"
	"github.com/pixelmill/pixelmill/pkg/params"
	"github.com/pixelmill/pixelmill/pkg/pipeline"
	"github.com/pixelmill/pixelmill/pkg/raster"
)

// Planet renders a shaded planetary disc with latitude bands carved by
// fractal noise and craters placed by Worley cells.
//
// Parameters:
//
//	roughness  number [0,1]  band turbulence; also tunes enforcement jitter
//	craters    number [0,1]  crater density
//	bands      number        band count hint (default 4)
//	rings      bool          draw a tilted ring band around the disc
type Planet struct{}

// Archetype implements pipeline.Generator.
func (*Planet) Archetype() string { return "planet" }

// Draw implements pipeline.Generator.
func (*Planet) Draw(gctx *pipeline.Context, p params.Map) {
	w := gctx.Buffer.Width()
	h := gctx.Buffer.Height()
	if w == 0 || h == 0 {
		return
	}

	roughness := clamp01(p.Num("roughness", 0.5))
	craterDensity := clamp01(p.Num("craters", 0.3))
	bands := p.Num("bands", 4)

	// Rough surfaces read better with more enforcement jitter.
	if gctx.Policy != nil && gctx.Policy.Jitter {
		gctx.Policy.JitterStrength = 0.05 + 0.25*roughness
	}

	synth := noise.New(gctx.Stream.Split("surface"))
	craters := craterPoints(gctx, craterDensity)
	shades := rampColors(gctx.Palette.Colors)

	rings := p.Bool("rings", false)

	cx := float64(w-1) / 2
	cy := float64(h-1) / 2
	radius := math.Min(cx, cy) * 0.94
	if rings {
		// Leave room for the band.
		radius *= 0.62
	}
	lightX, lightY := -0.55, -0.45

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := (float64(x) - cx) / radius
			dy := (float64(y) - cy) / radius
			d2 := dx*dx + dy*dy
			if d2 > 1 {
				continue
			}

			// Latitude bands, warped by surface noise.
			warp := synth.FBM(dx*3, dy*3, 4, 2.0, 0.5) * roughness
			lat := dy + warp*0.6
			band := math.Sin(lat * bands * math.Pi / 2)
			shade := (band + 1) / 2

			// Craters darken toward the cell center.
			cd := noise.WorleyDistance(dx, dy, craters)
			if cd < 0.12 {
				shade *= 0.45 + cd/0.12*0.55
			}

			// Simple lambert term off the light direction.
			nz := math.Sqrt(1 - d2)
			lit := dx*lightX + dy*lightY + nz*0.75
			shade *= 0.35 + 0.65*clamp01(lit)

			gctx.Buffer.Set(x, y, pickShade(shades, shade))
		}
	}

	if rings {
		drawRing(gctx, cx, cy, radius, shades)
	}
}

// drawRing adds a tilted elliptical band outside the disc. Pixels in front
// of the planet (lower half) overdraw it; the upper half stays behind.
func drawRing(gctx *pipeline.Context, cx, cy, radius float64, shades []uint32) {
	w := gctx.Buffer.Width()
	h := gctx.Buffer.Height()
	inner := 1.25
	outer := 1.6
	tilt := 0.35

	ringColor := pickShade(shades, 0.75)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := (float64(x) - cx) / radius
			dy := (float64(y) - cy) / (radius * tilt)
			d := math.Sqrt(dx*dx + dy*dy)
			if d < inner || d > outer {
				continue
			}
			// The upper half passes behind the disc.
			pdy := (float64(y) - cy) / radius
			if float64(y) < cy && dx*dx+pdy*pdy <= 1 {
				continue
			}
			gctx.Buffer.Set(x, y, ringColor)
		}
	}
}

// craterPoints scatters crater centers over the unit disc.
func craterPoints(gctx *pipeline.Context, density float64) []noise.Point {
	stream := gctx.Stream.Split("craters")
	n := int(density * 12)
	pts := make([]noise.Point, 0, n)
	for i := 0; i < n; i++ {
		angle := stream.Range(0, 2*math.Pi)
		r := math.Sqrt(stream.Float64()) * 0.85
		pts = append(pts, noise.Point{X: math.Cos(angle) * r, Y: math.Sin(angle) * r})
	}
	return pts
}

// rampColors orders palette entries dark to light by luma so shade values can
// index straight into them.
func rampColors(colors []uint32) []uint32 {
	if len(colors) == 0 {
		return []uint32{raster.RGB(255, 255, 255)}
	}
	ramp := make([]uint32, len(colors))
	copy(ramp, colors)
	for i := 1; i < len(ramp); i++ {
		for j := i; j > 0 && raster.Luma(ramp[j]) < raster.Luma(ramp[j-1]); j-- {
			ramp[j], ramp[j-1] = ramp[j-1], ramp[j]
		}
	}
	return ramp
}

func pickShade(ramp []uint32, shade float64) uint32 {
	idx := int(clamp01(shade) * float64(len(ramp)))
	if idx >= len(ramp) {
		idx = len(ramp) - 1
	}
	return ramp[idx] | 0xff000000
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
