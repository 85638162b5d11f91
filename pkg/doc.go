// Package pkg provides the core libraries for Pixelmill sprite generation.
//
// # Overview
//
// Pixelmill turns a 32-bit seed into a finished retro sprite, deterministically:
// the same seed and options always produce the same pixels, on every machine.
// The pkg directory is organized into four main areas:
//
//  1. Primitives - [rng], [noise], [raster], [params]
//  2. Retro look - [palette], [retro]
//  3. Orchestration - [pipeline], [guard], [sprites]
//  4. Surfaces - [preset], [store], [server], plus the CLI under internal/cli
//
// # Architecture
//
// The typical data flow through Pixelmill:
//
//	Seed + Options
//	     ↓
//	[rng] package (root stream, labeled sub-streams per attempt)
//	     ↓
//	[sprites] package (archetype draws via [noise] into a [raster] buffer)
//	     ↓
//	[retro] package (jitter → quantize → dither → outline, using [palette])
//	     ↓
//	[guard] package (signature vs recent history, nudge + retry on repeats)
//	     ↓
//	PNG output
//
// # Quick Start
//
// Generate a planet sprite:
//
//	import (
//	    "context"
//	    "github.com/pixelmill/pixelmill/pkg/pipeline"
//	    "github.com/pixelmill/pixelmill/pkg/sprites"
//	)
//
//	gen, _ := sprites.New("planet")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Generate(context.Background(), gen, pipeline.Options{
//	    Archetype: "planet",
//	    Seed:      12345,
//	    Dither:    "bayer4",
//	    Jitter:    true,
//	    Outline:   1,
//	})
//	result.Buffer.EncodePNG(w)
//
// # Main Packages
//
// [rng] - Deterministic random streams. A stream splits into independent
// sub-streams by label without advancing the parent, which is what makes
// retries reproducible.
//
// [noise] - Value noise, fractal Brownian motion, and Worley cell distances,
// seeded from a stream and pure once constructed.
//
// [raster] - Packed ARGB pixel buffers with PNG export and nearest-neighbor
// upscaling.
//
// [palette] - Builtin and custom palettes, nearest-color quantization, and
// the injectable palette registry with tolerant JSON import.
//
// [retro] - Enforcement pipeline that gives arbitrary drawn content its
// pixel-art look: micro-jitter, palette quantization, ordered Bayer
// dithering, and single-pixel outlines.
//
// [guard] - Similarity guard. Sprite signatures (edge-orientation and color
// histograms) are compared against recent history; near-duplicates trigger
// parameter nudges and retries on fresh sub-streams.
//
// [pipeline] - Orchestration shared by the CLI and the HTTP server.
//
// [sprites] - Built-in archetypes (planet, badge).
//
// [preset] - TOML recipes for regenerating and sharing sprites.
//
// [store] - Custom palette persistence: JSON file for the CLI, Redis for
// multi-instance servers.
//
// [server] - HTTP API (chi) exposing generation and palette management.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/guard/...    # Specific package
//	go test -run Example       # Examples only
//
// [rng]: https://pkg.go.dev/github.com/pixelmill/pixelmill/pkg/rng
// [noise]: https://pkg.go.dev/github.com/pixelmill/pixelmill/pkg/noise
// [raster]: https://pkg.go.dev/github.com/pixelmill/pixelmill/pkg/raster
// [params]: https://pkg.go.dev/github.com/pixelmill/pixelmill/pkg/params
// [palette]: https://pkg.go.dev/github.com/pixelmill/pixelmill/pkg/palette
// [retro]: https://pkg.go.dev/github.com/pixelmill/pixelmill/pkg/retro
// [guard]: https://pkg.go.dev/github.com/pixelmill/pixelmill/pkg/guard
// [pipeline]: https://pkg.go.dev/github.com/pixelmill/pixelmill/pkg/pipeline
// [sprites]: https://pkg.go.dev/github.com/pixelmill/pixelmill/pkg/sprites
// [preset]: https://pkg.go.dev/github.com/pixelmill/pixelmill/pkg/preset
// [store]: https://pkg.go.dev/github.com/pixelmill/pixelmill/pkg/store
// [server]: https://pkg.go.dev/github.com/pixelmill/pixelmill/pkg/server
package pkg
