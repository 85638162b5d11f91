// Package cli implements the pixelmill command-line interface.
//
// This package provides commands for generating sprites, batch runs, palette
// management, an interactive terminal preview, and the HTTP server. The CLI
// is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Render a single sprite to PNG
//   - batch: Render a seed range with the similarity guard engaged
//   - palette: List, inspect, import, export, and remove palettes
//   - preview: Interactive terminal sprite browser
//   - serve: Run the HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pixelmill/pixelmill/pkg/buildinfo"
	"github.com/pixelmill/pixelmill/pkg/guard"
	"github.com/pixelmill/pixelmill/pkg/palette"
	"github.com/pixelmill/pixelmill/pkg/params"
	"github.com/pixelmill/pixelmill/pkg/pipeline"
	"github.com/pixelmill/pixelmill/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "pixelmill"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger   *log.Logger
	Registry *palette.Registry
	Guard    *guard.Guard
}

// New creates a new CLI instance with a default logger and a palette
// registry hydrated lazily by commands that need persistence.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		Registry: palette.NewRegistry(),
		Guard:    guard.New(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Pixelmill generates deterministic retro pixel art",
		Long:         `Pixelmill is a CLI tool for generating seed-reproducible pixel-art sprites: the same seed and options always produce the same pixels, across runs and machines.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.paletteCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner sharing the CLI's registry and guard.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Registry, c.Guard, c.Logger)
}

// hydratePalettes loads persisted custom palettes into the registry. Missing
// or unreadable palette files degrade to builtins only.
func (c *CLI) hydratePalettes(cmd *cobra.Command) {
	path, err := palettePath()
	if err != nil {
		c.Logger.Debug("no palette file path", "error", err)
		return
	}
	n, err := store.Hydrate(cmd.Context(), store.NewFileStore(path), c.Registry)
	if err != nil {
		c.Logger.Warn("loading custom palettes", "error", err)
		return
	}
	if n > 0 {
		c.Logger.Debug("loaded custom palettes", "count", n)
	}
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard
// (~/.config/pixelmill/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// palettePath returns the custom palette file location.
func palettePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "palettes.json"), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseParams converts repeated key=value flags into a parameter map.
// Values parse as number first, then bool, then fall back to enum strings.
func parseParams(pairs []string) (params.Map, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(params.Map, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid param %q (want key=value)", pair)
		}
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			m[key] = params.Number(n)
			continue
		}
		if b, err := strconv.ParseBool(value); err == nil {
			m[key] = params.Bool(b)
			continue
		}
		m[key] = params.Enum(value)
	}
	return m, nil
}
