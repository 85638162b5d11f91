// Package pipeline provides the core generation pipeline for pixelmill.
//
// This package wires a content generator, a parameter set, and a seed
// through buffer creation → content draw → retro enforcement → the optional
// similarity-guard retry loop, and hands back the finished buffer. CLI and
// server components both run generations through a Runner so behavior stays
// identical across entry points.
//
// # Architecture
//
// A generation request flows through three stages:
//
//  1. Draw: the content generator renders into a fresh buffer using a
//     derived random stream
//  2. Enforce: the retro pipeline applies jitter, quantization, dithering,
//     and outlining per the policy
//  3. Guard: when enabled, the result's signature is compared against recent
//     history; near-duplicates trigger a parameter nudge and a fresh attempt
//     on the next derived stream
//
// Every attempt draws from its own sub-stream ("attempt_0", "attempt_1", …)
// of the request's root stream, so the whole request is reproducible from
// its seed regardless of how many retries the guard forces.
//
// # Usage
//
//	runner := pipeline.NewRunner(registry, guard.New(), logger)
//	opts := pipeline.Options{
//	    Archetype: "planet",
//	    Seed:      12345,
//	    Size:      64,
//	    UseGuard:  true,
//	}
//	result, err := runner.Generate(ctx, gen, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result.Buffer.EncodePNG(w)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pixelmill/pixelmill/pkg/errors"
	"github.com/pixelmill/pixelmill/pkg/palette"
	"github.com/pixelmill/pixelmill/pkg/params"
	"github.com/pixelmill/pixelmill/pkg/raster"
	"github.com/pixelmill/pixelmill/pkg/retro"
	"github.com/pixelmill/pixelmill/pkg/rng"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultSize is the default sprite edge length in pixels.
	DefaultSize = 64

	// MaxSize bounds a single generation request. Sprites are small by
	// definition; anything larger belongs in a different tool.
	MaxSize = 1024

	// DefaultMaxAttempts caps the guard retry loop per request.
	DefaultMaxAttempts = 4

	// DefaultTimeBudget is the advisory per-generation budget handed to
	// content generators. The pipeline does not enforce it; generators may
	// scale feature counts by it.
	DefaultTimeBudget = 50 * time.Millisecond
)

// DefaultPaletteID is the palette used when a request names none.
const DefaultPaletteID = palette.DefaultID

// =============================================================================
// Generator Contract
// =============================================================================

// Generator is the contract content generators implement. A generator draws
// directly into the Context's buffer using raster, stream, and noise calls.
// It may tune the Policy's jitter strength based on its own parameters, but
// it never invokes quantize/dither/outline itself — retro enforcement runs
// after Draw returns.
type Generator interface {
	// Archetype names the sprite family, used in logs and presets.
	Archetype() string

	// Draw renders one sprite into gctx.Buffer.
	Draw(gctx *Context, p params.Map)
}

// Context aggregates everything a content generator may touch during a draw.
type Context struct {
	Buffer  *raster.Buffer
	Stream  *rng.Stream
	Palette palette.Palette

	// Policy is mutable so generators can tune jitter strength before
	// enforcement runs.
	Policy *retro.Policy

	// TimeBudget is advisory; see DefaultTimeBudget.
	TimeBudget time.Duration
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a generation request.
// This struct supports JSON serialization for API requests.
type Options struct {
	Archetype string `json:"archetype"`
	Seed      uint32 `json:"seed"`
	Size      int    `json:"size,omitempty"`
	PaletteID string `json:"palette,omitempty"`

	// Retro policy fields
	Dither         retro.DitherMode `json:"dither,omitempty"`
	Quantizer      retro.QuantMode  `json:"quantizer,omitempty"`
	Outline        int              `json:"outline,omitempty"`
	Jitter         bool             `json:"jitter,omitempty"`
	JitterStrength float64          `json:"jitter_strength,omitempty"`

	// Params is the open parameter map handed to the content generator.
	Params params.Map `json:"-"`

	// Guard options
	UseGuard    bool `json:"guard,omitempty"`
	MaxAttempts int  `json:"max_attempts,omitempty"`

	// TimeBudget is the advisory budget passed through to the generator.
	TimeBudget time.Duration `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Size < 0 || o.Size > MaxSize {
		return errors.New(errors.ErrCodeInvalidInput, "size %d out of range (1-%d)", o.Size, MaxSize)
	}
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if o.PaletteID == "" {
		o.PaletteID = DefaultPaletteID
	}
	if o.Dither == "" {
		o.Dither = retro.DitherNone
	}
	if !retro.ValidDither(o.Dither) {
		return errors.New(errors.ErrCodeInvalidDither, "invalid dither mode: %q", o.Dither)
	}
	if o.Quantizer == "" {
		o.Quantizer = retro.QuantNearest
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.TimeBudget <= 0 {
		o.TimeBudget = DefaultTimeBudget
	}
	if o.Params == nil {
		o.Params = params.Map{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Policy assembles the retro policy described by the options.
func (o *Options) Policy() retro.Policy {
	return retro.Policy{
		Quantizer:      o.Quantizer,
		Dither:         o.Dither,
		Outline:        o.Outline,
		Jitter:         o.Jitter,
		JitterStrength: o.JitterStrength,
	}.ResolveDefaults()
}
