// Package observability provides hooks for instrumenting sprite generation.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about generation attempts and guard activity;
// libraries call the accessor functions to emit them.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetGenerationHooks(&myHooks{})
//	    // ... run application
//	}
//
// Libraries emit events:
//
//	observability.Generation().OnAttemptStart(ctx, archetype, attempt)
//	// ... draw + enforce ...
//	observability.Generation().OnAttemptComplete(ctx, archetype, attempt, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// GenerationHooks receives events from the generation pipeline.
type GenerationHooks interface {
	// OnAttemptStart records the beginning of attempt i for an archetype.
	OnAttemptStart(ctx context.Context, archetype string, attempt int)

	// OnAttemptComplete records a finished attempt (drawn and enforced).
	OnAttemptComplete(ctx context.Context, archetype string, attempt int, duration time.Duration)

	// OnGuardRetry records a similarity rejection that triggers regeneration.
	OnGuardRetry(ctx context.Context, archetype string, attempt int)

	// OnGuardExhausted records the retry cap being reached; the last attempt
	// is accepted as-is.
	OnGuardExhausted(ctx context.Context, archetype string, attempts int)
}

// NoopGenerationHooks is a no-op implementation of GenerationHooks.
type NoopGenerationHooks struct{}

func (NoopGenerationHooks) OnAttemptStart(context.Context, string, int)                   {}
func (NoopGenerationHooks) OnAttemptComplete(context.Context, string, int, time.Duration) {}
func (NoopGenerationHooks) OnGuardRetry(context.Context, string, int)                     {}
func (NoopGenerationHooks) OnGuardExhausted(context.Context, string, int)                 {}

var (
	generationHooks GenerationHooks = NoopGenerationHooks{}
	hooksMu         sync.RWMutex
)

// SetGenerationHooks registers custom generation hooks.
// This should be called once at application startup before any generation.
func SetGenerationHooks(h GenerationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		generationHooks = h
	}
}

// Generation returns the registered generation hooks.
func Generation() GenerationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return generationHooks
}

// Reset restores the no-op defaults. Primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	generationHooks = NoopGenerationHooks{}
}
