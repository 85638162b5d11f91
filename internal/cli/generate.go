package cli

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pixelmill/pixelmill/pkg/pipeline"
	"github.com/pixelmill/pixelmill/pkg/preset"
	"github.com/pixelmill/pixelmill/pkg/retro"
	"github.com/pixelmill/pixelmill/pkg/sprites"
)

// generateCommand creates the generate command for single-sprite output.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		seed       uint32
		size       int
		paletteID  string
		dither     string
		quantizer  string
		outline    int
		jitter     bool
		useGuard   bool
		scale      int
		output     string
		paramFlags []string
		presetPath string
		savePreset string
	)

	cmd := &cobra.Command{
		Use:   "generate [archetype]",
		Short: "Generate a single sprite as PNG",
		Long: `Generate a single sprite as PNG.

The same seed, archetype, and options always produce the same pixels, so a
seed printed by one run can be replayed anywhere. Pass --preset to load a
saved recipe instead of an archetype argument; flags set explicitly on the
command line still override preset values.

Available archetypes: ` + fmt.Sprintf("%v", sprites.Archetypes()),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.hydratePalettes(cmd)

			opts := pipeline.Options{
				Seed:      seed,
				Size:      size,
				PaletteID: paletteID,
				Dither:    retro.DitherMode(dither),
				Quantizer: retro.QuantMode(quantizer),
				Outline:   outline,
				Jitter:    jitter,
				UseGuard:  useGuard,
			}
			if len(args) == 1 {
				opts.Archetype = args[0]
			}

			if presetPath != "" {
				loaded, err := applyPreset(presetPath, &opts, cmd)
				if err != nil {
					return err
				}
				printDetail("preset: %s", loaded)
			}
			if opts.Archetype == "" {
				return fmt.Errorf("an archetype argument or --preset is required")
			}

			p, err := parseParams(paramFlags)
			if err != nil {
				return err
			}
			if p != nil {
				opts.Params = p
			}

			return c.runGenerate(cmd.Context(), opts, output, scale, savePreset)
		},
	}

	cmd.Flags().Uint32Var(&seed, "seed", 0, "generation seed (same seed, same sprite)")
	cmd.Flags().IntVar(&size, "size", 0, fmt.Sprintf("sprite edge length in pixels (default %d)", pipeline.DefaultSize))
	cmd.Flags().StringVar(&paletteID, "palette", "", "palette id (see 'palette list')")
	cmd.Flags().StringVar(&dither, "dither", "", "dither mode: none (default), bayer4, bayer8")
	cmd.Flags().StringVar(&quantizer, "quantizer", "", "quantizer: nearest (default), none")
	cmd.Flags().IntVar(&outline, "outline", 0, "outline thickness in pixels")
	cmd.Flags().BoolVar(&jitter, "jitter", false, "enable micro-jitter before quantization")
	cmd.Flags().BoolVar(&useGuard, "guard", false, "reject near-duplicates of recent output")
	cmd.Flags().IntVar(&scale, "scale", 1, "integer upscale factor for the written PNG")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <archetype>-<seed>.png)")
	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "generator parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&presetPath, "preset", "", "load options from a preset file")
	cmd.Flags().StringVar(&savePreset, "save-preset", "", "write the effective options to a preset file")

	return cmd
}

// applyPreset loads a preset and fills options fields for every flag the
// command line did not set explicitly. Flags given on the command line always
// win, even at their zero value (--outline 0 overrides a preset outline).
func applyPreset(path string, opts *pipeline.Options, cmd *cobra.Command) (string, error) {
	p, err := preset.Load(path)
	if err != nil {
		return "", err
	}
	loaded, err := p.ToOptions()
	if err != nil {
		return "", err
	}

	if opts.Archetype == "" {
		opts.Archetype = loaded.Archetype
	}
	if !cmd.Flags().Changed("seed") {
		opts.Seed = loaded.Seed
	}
	if !cmd.Flags().Changed("size") {
		opts.Size = loaded.Size
	}
	if !cmd.Flags().Changed("palette") {
		opts.PaletteID = loaded.PaletteID
	}
	if !cmd.Flags().Changed("dither") {
		opts.Dither = loaded.Dither
	}
	if !cmd.Flags().Changed("quantizer") {
		opts.Quantizer = loaded.Quantizer
	}
	if !cmd.Flags().Changed("outline") {
		opts.Outline = loaded.Outline
	}
	if !cmd.Flags().Changed("jitter") {
		opts.Jitter = loaded.Jitter
	}
	if !cmd.Flags().Changed("guard") {
		opts.UseGuard = loaded.UseGuard
	}
	if opts.Params == nil {
		opts.Params = loaded.Params
	}

	name := p.Name
	if name == "" {
		name = filepath.Base(path)
	}
	return name, nil
}

// runGenerate runs one generation and writes the PNG.
func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, output string, scale int, savePreset string) error {
	gen, err := sprites.New(opts.Archetype)
	if err != nil {
		return err
	}

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	result, err := c.newRunner().Generate(ctx, gen, opts)
	if err != nil {
		return err
	}

	if output == "" {
		output = fmt.Sprintf("%s-%d.png", opts.Archetype, opts.Seed)
	}
	if err := writePNG(result, output, scale); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Generated %s (seed %d)", opts.Archetype, opts.Seed))
	printFile(output)
	if result.Attempts > 1 {
		printDetail("%d attempts", result.Attempts)
	}
	if !result.Distinct {
		printWarning("output repeats recent history (retries exhausted)")
	}

	if savePreset != "" {
		if err := preset.Save(savePreset, preset.FromOptions("", opts)); err != nil {
			return err
		}
		printFile(savePreset)
	}
	return nil
}

// writePNG writes the result buffer to path, optionally upscaled with
// nearest-neighbor so the pixels stay crisp.
func writePNG(result *pipeline.Result, path string, scale int) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if scale > 1 {
		if err := png.Encode(f, result.Buffer.Scale(scale)); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		return nil
	}
	if err := result.Buffer.EncodePNG(f); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
