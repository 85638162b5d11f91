package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pixelmill/pixelmill/pkg/pipeline"
	"github.com/pixelmill/pixelmill/pkg/retro"
	"github.com/pixelmill/pixelmill/pkg/sprites"
)

// batchCommand creates the batch command for generating seed ranges.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		seed      uint32
		count     int
		size      int
		paletteID string
		dither    string
		jitter    bool
		noGuard   bool
		scale     int
		outDir    string
	)

	cmd := &cobra.Command{
		Use:   "batch [archetype]",
		Short: "Generate a run of sprites across consecutive seeds",
		Long: `Generate a run of sprites across consecutive seeds.

Seeds start at --seed and increment by one per sprite. The similarity guard
is on unless --no-guard is passed, so near-duplicate outputs within the run
get retried with nudged parameters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			c.hydratePalettes(cmd)

			opts := pipeline.Options{
				Archetype: args[0],
				Size:      size,
				PaletteID: paletteID,
				Dither:    retro.DitherMode(dither),
				Jitter:    jitter,
				UseGuard:  !noGuard,
			}
			return c.runBatch(cmd.Context(), opts, seed, count, outDir, scale)
		},
	}

	cmd.Flags().Uint32Var(&seed, "seed", 0, "first seed of the run")
	cmd.Flags().IntVarP(&count, "count", "n", 16, "number of sprites to generate")
	cmd.Flags().IntVar(&size, "size", 0, "sprite edge length in pixels")
	cmd.Flags().StringVar(&paletteID, "palette", "", "palette id")
	cmd.Flags().StringVar(&dither, "dither", "", "dither mode: none, bayer4, bayer8")
	cmd.Flags().BoolVar(&jitter, "jitter", false, "enable micro-jitter before quantization")
	cmd.Flags().BoolVar(&noGuard, "no-guard", false, "disable the similarity guard")
	cmd.Flags().IntVar(&scale, "scale", 1, "integer upscale factor for written PNGs")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "output directory")

	return cmd
}

// runBatch generates count sprites starting at seed.
func (c *CLI) runBatch(ctx context.Context, opts pipeline.Options, seed uint32, count int, outDir string, scale int) error {
	gen, err := sprites.New(opts.Archetype)
	if err != nil {
		return err
	}

	opts.Logger = c.Logger
	runner := c.newRunner()
	prog := newProgress(c.Logger)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating %d %s sprites...", count, opts.Archetype))
	spinner.Start()

	repeats := 0
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			spinner.Stop()
			return err
		}

		opts.Seed = seed + uint32(i)
		result, err := runner.Generate(ctx, gen, opts)
		if err != nil {
			spinner.StopWithError(fmt.Sprintf("Batch failed at seed %d", opts.Seed))
			return err
		}
		if !result.Distinct {
			repeats++
		}

		path := filepath.Join(outDir, fmt.Sprintf("%s-%d.png", opts.Archetype, opts.Seed))
		if err := writePNG(result, path, scale); err != nil {
			spinner.StopWithError("Batch failed writing output")
			return err
		}
	}

	spinner.StopWithSuccess(fmt.Sprintf("Generated %d sprites in %s", count, outDir))
	if repeats > 0 {
		printWarning("%d of %d outputs repeat recent history", repeats, count)
	}
	prog.done(fmt.Sprintf("Batch %s seeds %d-%d", opts.Archetype, seed, seed+uint32(count-1)))
	return nil
}
