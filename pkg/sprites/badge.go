package sprites

import (
	"github.com/pixelmill/pixelmill/pkg/noise"
	"github.com/pixelmill/pixelmill/pkg/params"
	"github.com/pixelmill/pixelmill/pkg/pipeline"
)

// Badge renders a vertically mirrored silhouette, the classic trick for
// making random blobs read as intentional emblems or creatures. Noise decides
// which cells of the left half are filled; the right half mirrors it.
//
// Parameters:
//
//	density  number [0,1]  fill threshold (default 0.5)
//	depth    number [0,1]  shading contrast (default 0.6)
type Badge struct{}

// Archetype implements pipeline.Generator.
func (*Badge) Archetype() string { return "badge" }

// Draw implements pipeline.Generator.
func (*Badge) Draw(gctx *pipeline.Context, p params.Map) {
	w := gctx.Buffer.Width()
	h := gctx.Buffer.Height()
	if w == 0 || h == 0 {
		return
	}

	density := clamp01(p.Num("density", 0.5))
	depth := clamp01(p.Num("depth", 0.6))

	synth := noise.New(gctx.Stream.Split("silhouette"))
	shades := rampColors(gctx.Palette.Colors)

	// Threshold rises toward the border so the silhouette stays connected
	// to the middle instead of scattering to the edges.
	half := (w + 1) / 2
	freq := 5.0 / float64(h)

	for y := 0; y < h; y++ {
		for x := 0; x < half; x++ {
			n := synth.FBM(float64(x)*freq, float64(y)*freq, 3, 2.0, 0.5)
			edgeX := 1 - float64(x)/float64(half)
			edgeY := abs01(float64(y)/float64(h-1)*2 - 1)
			border := edgeX*edgeX + edgeY*edgeY

			if (n+1)/2 > (1-density)+border*0.45 {
				shade := clamp01(0.5 + n*depth)
				c := pickShade(shades, shade)
				gctx.Buffer.Set(x, y, c)
				gctx.Buffer.Set(w-1-x, y, c)
			}
		}
	}
}

func abs01(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
