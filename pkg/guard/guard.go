package guard

import (
	"sync"

	"github.com/pixelmill/pixelmill/pkg/params"
	"github.com/pixelmill/pixelmill/pkg/rng"
)

// Default guard configuration. Thresholds are conjunctive: both must be
// exceeded against the same history entry to declare similarity.
const (
	DefaultCapacity       = 32
	DefaultEdgeThreshold  = 0.92
	DefaultColorThreshold = 0.95

	// NudgeScale bounds the uniform perturbation applied to numeric
	// parameters on a rejected attempt, as a fraction of the unit range.
	NudgeScale = 0.1
)

// Guard detects near-duplicate outputs across a batch by comparing each new
// signature against a bounded, insertion-ordered history. Safe for
// concurrent use.
type Guard struct {
	mu             sync.Mutex
	history        []Signature
	capacity       int
	edgeThreshold  float64
	colorThreshold float64
}

// New creates a guard with the default capacity and thresholds.
func New() *Guard {
	return NewWithConfig(DefaultCapacity, DefaultEdgeThreshold, DefaultColorThreshold)
}

// NewWithConfig creates a guard with explicit capacity and thresholds.
// Non-positive capacity falls back to the default.
func NewWithConfig(capacity int, edgeThreshold, colorThreshold float64) *Guard {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Guard{
		capacity:       capacity,
		edgeThreshold:  edgeThreshold,
		colorThreshold: colorThreshold,
	}
}

// IsSimilar reports whether sig is too similar to any recorded signature.
// Both the edge and the color similarity must exceed their thresholds
// against the same entry; high scores split across different entries do not
// count.
func (g *Guard) IsSimilar(sig Signature) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, h := range g.history {
		if EdgeSimilarity(sig, h) > g.edgeThreshold && ColorSimilarity(sig, h) > g.colorThreshold {
			return true
		}
	}
	return false
}

// Record appends sig to the history, evicting the oldest entry once the
// capacity is exceeded. The guard compares only against this sliding window,
// bounding both memory and per-attempt comparison cost.
func (g *Guard) Record(sig Signature) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history = append(g.history, sig)
	if len(g.history) > g.capacity {
		g.history = g.history[len(g.history)-g.capacity:]
	}
}

// Len returns the current history size.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.history)
}

// Reset clears the history.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history = nil
}

// Nudge returns a copy of p with every numeric parameter perturbed by a
// uniform draw in ±NudgeScale, clamped to [0, 1]. Bool and enum parameters
// pass through unchanged. This is a local random walk, not a directed
// search; the retry loop relies on it eventually stepping outside the
// similarity thresholds.
//
// Keys are visited in sorted order so the stream draws are reproducible.
func Nudge(p params.Map, stream *rng.Stream) params.Map {
	out := p.Clone()
	for _, k := range p.Keys() {
		v := p[k]
		n, ok := v.Num()
		if !ok {
			continue
		}
		n += stream.Range(-NudgeScale, NudgeScale)
		if n < 0 {
			n = 0
		}
		if n > 1 {
			n = 1
		}
		out[k] = params.Number(n)
	}
	return out
}
