package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/pixelmill/pixelmill/pkg/errors"
	"github.com/pixelmill/pixelmill/pkg/guard"
	"github.com/pixelmill/pixelmill/pkg/observability"
	"github.com/pixelmill/pixelmill/pkg/palette"
	"github.com/pixelmill/pixelmill/pkg/params"
	"github.com/pixelmill/pixelmill/pkg/raster"
	"github.com/pixelmill/pixelmill/pkg/retro"
	"github.com/pixelmill/pixelmill/pkg/rng"
)

// Runner executes generation requests against a palette registry and an
// optional similarity guard. The Runner is stateless apart from those two
// collaborators; multiple goroutines can share one Runner with different
// options.
type Runner struct {
	Registry *palette.Registry
	Guard    *guard.Guard
	Logger   *log.Logger
}

// NewRunner creates a runner.
// If registry is nil, a fresh registry with only builtins is used.
// If g is nil, a default guard is created so guarded requests share
// similarity history for the Runner's lifetime.
func NewRunner(registry *palette.Registry, g *guard.Guard, logger *log.Logger) *Runner {
	if registry == nil {
		registry = palette.NewRegistry()
	}
	if g == nil {
		g = guard.New()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Registry: registry, Guard: g, Logger: logger}
}

// Result contains the outputs of a generation request.
type Result struct {
	// RunID uniquely identifies this generation for logs and API responses.
	RunID uuid.UUID

	// Buffer is the finished sprite.
	Buffer *raster.Buffer

	// Signature is the buffer's similarity fingerprint. Computed only when
	// the guard is enabled.
	Signature *guard.Signature

	// Attempts is how many draw+enforce cycles ran (1 when the guard is off
	// or the first attempt was distinct).
	Attempts int

	// Distinct is false only when the retry cap was exhausted and the last
	// attempt was accepted unconditionally.
	Distinct bool

	// Stats contains timing information.
	Stats Stats
}

// Stats contains generation timing statistics.
type Stats struct {
	DrawTime    time.Duration
	EnforceTime time.Duration
	TotalTime   time.Duration
}

// =============================================================================
// Retry State Machine
// =============================================================================

// attemptState makes the guard retry loop an explicit bounded state machine:
// the loop is in Attempting until a signature comparison accepts the attempt
// or the cap runs out. Modeling the states explicitly keeps the cap and the
// degradation path auditable and testable in isolation.
type attemptState int

const (
	stateAttempting attemptState = iota
	stateAccepted
	stateExhausted
)

// Generate runs a complete generation request. When the guard is disabled
// this is a single draw+enforce pass; with the guard enabled it is a bounded
// retry loop over nudged parameters. It never fails after options
// validation: exhausted retries degrade to accepting the final attempt.
func (r *Runner) Generate(ctx context.Context, gen Generator, opts Options) (*Result, error) {
	if gen == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "generator is required")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}

	start := time.Now()
	result := &Result{RunID: uuid.New(), Distinct: true}

	pal, exact := r.Registry.Get(opts.PaletteID)
	if !exact {
		logger.Warn("unknown palette, using default", "palette", opts.PaletteID, "fallback", pal.Name)
	}

	root := rng.New(opts.Seed)
	g := r.Guard

	p := opts.Params.Clone()
	state := stateAttempting
	attempt := 0
	for state == stateAttempting {
		observability.Generation().OnAttemptStart(ctx, gen.Archetype(), attempt)
		attemptStart := time.Now()

		buf, drawTime, enforceTime := r.runAttempt(gen, opts, pal, root.Split("attempt_"+strconv.Itoa(attempt)), p)
		result.Buffer = buf
		result.Stats.DrawTime += drawTime
		result.Stats.EnforceTime += enforceTime
		result.Attempts = attempt + 1

		observability.Generation().OnAttemptComplete(ctx, gen.Archetype(), attempt, time.Since(attemptStart))

		if !opts.UseGuard {
			state = stateAccepted
			break
		}

		sig := guard.Compute(buf, p)
		result.Signature = &sig

		switch {
		case !g.IsSimilar(sig):
			state = stateAccepted
		case attempt == opts.MaxAttempts-1:
			// Cap exhausted: diversity is best-effort, accept the last
			// attempt and still record it.
			state = stateExhausted
		default:
			observability.Generation().OnGuardRetry(ctx, gen.Archetype(), attempt)
			logger.Debug("near-duplicate detected, retrying",
				"archetype", gen.Archetype(),
				"attempt", attempt)
			p = guard.Nudge(p, root.Split("nudge_"+strconv.Itoa(attempt)))
			attempt++
		}
	}

	if opts.UseGuard {
		g.Record(*result.Signature)
		if state == stateExhausted {
			result.Distinct = false
			observability.Generation().OnGuardExhausted(ctx, gen.Archetype(), result.Attempts)
			logger.Warn("similarity guard exhausted retries, accepting last attempt",
				"archetype", gen.Archetype(),
				"attempts", result.Attempts)
		}
	}

	result.Stats.TotalTime = time.Since(start)
	logger.Info("generated sprite",
		"archetype", gen.Archetype(),
		"seed", opts.Seed,
		"size", opts.Size,
		"attempts", result.Attempts,
		"duration", result.Stats.TotalTime)

	return result, nil
}

// runAttempt executes one draw+enforce cycle on a fresh buffer.
func (r *Runner) runAttempt(gen Generator, opts Options, pal palette.Palette, stream *rng.Stream, p params.Map) (*raster.Buffer, time.Duration, time.Duration) {
	buf := raster.NewBuffer(opts.Size, opts.Size)
	policy := opts.Policy()

	gctx := &Context{
		Buffer:     buf,
		Stream:     stream,
		Palette:    pal,
		Policy:     &policy,
		TimeBudget: opts.TimeBudget,
	}

	drawStart := time.Now()
	gen.Draw(gctx, p)
	drawTime := time.Since(drawStart)

	enforceStart := time.Now()
	// Enforcement uses the same attempt stream; jitter isolates itself on a
	// "microJitter" child, so generator draws and jitter draws never overlap.
	// The generator may have tuned the policy through gctx.
	retro.Enforce(buf, pal, policy, stream)
	enforceTime := time.Since(enforceStart)

	return buf, drawTime, enforceTime
}
