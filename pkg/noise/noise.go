// Package noise provides the lattice noise primitives content generators use
// for shading, bands, and surface masks.
//
// A Synthesizer owns a 256-entry permutation table shuffled once from a
// rng.Stream at construction. After that, every query is pure: the same
// coordinates always yield the same value and no random stream is advanced,
// so generators can sample noise in any order without breaking determinism.
package noise

import (
	"math"

	"github.com/pixelmill/pixelmill/pkg/rng"
)

// Synthesizer produces smooth 2D value noise over a 256-cell lattice.
type Synthesizer struct {
	perm [512]uint8 // doubled permutation table, avoids index wrapping
}

// New builds a Synthesizer whose permutation table is shuffled with a
// Fisher–Yates pass driven by stream. The stream is advanced exactly 255
// times and not retained.
func New(stream *rng.Stream) *Synthesizer {
	var p [256]uint8
	for i := range p {
		p[i] = uint8(i)
	}
	for i := len(p) - 1; i > 0; i-- {
		j := stream.IntN(i + 1)
		p[i], p[j] = p[j], p[i]
	}

	s := &Synthesizer{}
	for i := 0; i < 512; i++ {
		s.perm[i] = p[i&255]
	}
	return s
}

// lattice returns the pseudo-random value in [-1, 1] anchored at integer
// lattice point (xi, yi).
func (s *Synthesizer) lattice(xi, yi int) float64 {
	h := s.perm[int(s.perm[xi&255])+(yi&255)]
	return float64(h)/127.5 - 1
}

// smoothstep eases t in [0,1] so lattice transitions have zero first
// derivative at cell borders.
func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

// Noise2D returns smooth noise at (x, y), approximately in [-1, 1], periodic
// with the 256-cell lattice.
func (s *Synthesizer) Noise2D(x, y float64) float64 {
	xf := math.Floor(x)
	yf := math.Floor(y)
	xi := int(xf)
	yi := int(yf)
	tx := smoothstep(x - xf)
	ty := smoothstep(y - yf)

	v00 := s.lattice(xi, yi)
	v10 := s.lattice(xi+1, yi)
	v01 := s.lattice(xi, yi+1)
	v11 := s.lattice(xi+1, yi+1)

	top := v00 + (v10-v00)*tx
	bottom := v01 + (v11-v01)*tx
	return top + (bottom-top)*ty
}

// FBM sums octaves of Noise2D at geometrically scaled frequency (lacunarity)
// and amplitude (gain), normalized by the total amplitude so the result stays
// roughly in [-1, 1] regardless of octave count. Octaves below 1 are treated
// as 1.
func (s *Synthesizer) FBM(x, y float64, octaves int, lacunarity, gain float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	sum := 0.0
	amp := 1.0
	freq := 1.0
	total := 0.0
	for i := 0; i < octaves; i++ {
		sum += s.Noise2D(x*freq, y*freq) * amp
		total += amp
		freq *= lacunarity
		amp *= gain
	}
	return sum / total
}

// Point is a 2D feature point for Worley distance queries.
type Point struct {
	X, Y float64
}

// WorleyDistance returns the minimum Euclidean distance from (x, y) to any of
// the feature points. An empty point list yields +Inf, which reads as
// "infinitely far from every feature" in mask code.
func WorleyDistance(x, y float64, points []Point) float64 {
	min := math.Inf(1)
	for _, p := range points {
		dx := x - p.X
		dy := y - p.Y
		if d := dx*dx + dy*dy; d < min {
			min = d
		}
	}
	return math.Sqrt(min)
}
