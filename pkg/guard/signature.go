// Package guard implements the similarity guard: compact sprite signatures,
// a sliding history of recent generations, and the parameter nudging that
// drives the regenerate-until-distinct retry loop.
//
// A signature is two small histograms — edge orientations and color usage —
// cheap enough to compute on every attempt and stable enough that
// near-duplicate sprites score high on both. Similarity requires both axes
// to exceed their thresholds against the same historical entry; a sprite
// that merely shares a palette, or merely shares a silhouette, is not a
// duplicate.
package guard

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pixelmill/pixelmill/pkg/params"
	"github.com/pixelmill/pixelmill/pkg/raster"
)

const (
	// edgeBins is the number of orientation buckets for gradient votes.
	edgeBins = 8

	// colorBins caps the color-usage histogram at the most frequent colors.
	colorBins = 32

	// edgeMagnitudeThreshold gates gradient votes; pixels with weaker
	// gradients (on the 0–1 luma scale) are treated as flat.
	edgeMagnitudeThreshold = 0.1
)

// Signature is a compact structural fingerprint of a finished buffer.
// Immutable once produced.
type Signature struct {
	ID        uuid.UUID
	Edges     [edgeBins]float64 // orientation histogram, sums to 1 or all-zero
	Colors    []float64         // top color frequencies / total opaque pixels
	Params    params.Map        // originating parameter set
	CreatedAt time.Time
}

// Sobel kernels for the edge histogram's gradient operator.
var (
	sobelX = [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY = [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
)

// Compute produces the signature of a buffer. The parameter map is cloned so
// later nudging cannot mutate a recorded signature.
func Compute(buf *raster.Buffer, p params.Map) Signature {
	return Signature{
		ID:        uuid.New(),
		Edges:     edgeHistogram(buf),
		Colors:    colorHistogram(buf),
		Params:    p.Clone(),
		CreatedAt: time.Now(),
	}
}

// edgeHistogram applies Sobel gradients to the opaque-pixel luma projection
// and buckets surviving pixels into 8 orientation bins by atan2. Normalized
// to sum 1, or left all-zero when no pixel clears the magnitude threshold.
func edgeHistogram(buf *raster.Buffer) [edgeBins]float64 {
	var hist [edgeBins]float64

	// Transparent pixels project to zero luma, so silhouette borders vote.
	luma := func(x, y int) float64 {
		c := buf.Get(x, y)
		if raster.Alpha(c) == 0 {
			return 0
		}
		return raster.Luma(c)
	}

	total := 0.0
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					l := luma(x+kx, y+ky)
					gx += l * sobelX[ky+1][kx+1]
					gy += l * sobelY[ky+1][kx+1]
				}
			}
			mag := math.Hypot(gx, gy)
			if mag < edgeMagnitudeThreshold {
				continue
			}
			angle := math.Atan2(gy, gx) // [-π, π]
			bin := int((angle + math.Pi) / (2 * math.Pi) * edgeBins)
			if bin >= edgeBins {
				bin = edgeBins - 1
			}
			hist[bin]++
			total++
		}
	}

	if total > 0 {
		for i := range hist {
			hist[i] /= total
		}
	}
	return hist
}

// colorHistogram counts opaque pixels by exact RGB, keeps the colorBins most
// frequent, and normalizes by the total opaque count. The result is a
// frequency profile, not a probability simplex: with fewer distinct colors
// it sums to 1, with more it sums to less.
func colorHistogram(buf *raster.Buffer) []float64 {
	counts := make(map[uint32]int)
	total := 0
	for _, c := range buf.Pix() {
		if raster.Alpha(c) == 0 {
			continue
		}
		counts[c&0x00ffffff]++
		total++
	}
	if total == 0 {
		return nil
	}

	type entry struct {
		rgb   uint32
		count int
	}
	entries := make([]entry, 0, len(counts))
	for rgb, n := range counts {
		entries = append(entries, entry{rgb: rgb, count: n})
	}
	// Sort by count descending, RGB ascending for a deterministic order on
	// count ties.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].rgb < entries[j].rgb
	})
	if len(entries) > colorBins {
		entries = entries[:colorBins]
	}

	hist := make([]float64, len(entries))
	for i, e := range entries {
		hist[i] = float64(e.count) / float64(total)
	}
	return hist
}

// cosine returns the cosine similarity of two vectors compared positionally,
// the shorter zero-padded. A zero-norm vector on either side yields 0, so an
// empty sprite never scores as similar to anything — and never trivially
// passes either.
func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		var av, bv float64
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		dot += av * bv
		na += av * av
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// EdgeSimilarity returns the cosine similarity of the two edge histograms.
func EdgeSimilarity(a, b Signature) float64 {
	return cosine(a.Edges[:], b.Edges[:])
}

// ColorSimilarity returns the cosine similarity of the two color histograms.
func ColorSimilarity(a, b Signature) float64 {
	return cosine(a.Colors, b.Colors)
}
