package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pixelmill/pixelmill/pkg/palette"
	"github.com/pixelmill/pixelmill/pkg/store"
)

// paletteCommand creates the palette command group.
func (c *CLI) paletteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Manage color palettes",
		Long: `Manage color palettes.

Builtin palettes are always available. Custom palettes imported here are
stored under the user config directory and picked up by every command.`,
	}

	cmd.AddCommand(c.paletteListCommand())
	cmd.AddCommand(c.paletteShowCommand())
	cmd.AddCommand(c.paletteAddCommand())
	cmd.AddCommand(c.paletteImportCommand())
	cmd.AddCommand(c.paletteExportCommand())
	cmd.AddCommand(c.paletteRemoveCommand())
	return cmd
}

func (c *CLI) paletteListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.hydratePalettes(cmd)

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(StyleDim).
				Headers("ID", "NAME", "COLORS", "SOURCE")

			for _, id := range c.Registry.IDs() {
				p, _ := c.Registry.Get(id)
				source := "custom"
				if c.Registry.IsBuiltin(id) {
					source = "builtin"
				}
				t.Row(id, p.Name, swatchRow(p.Colors), source)
			}
			fmt.Println(t)
			return nil
		},
	}
}

func (c *CLI) paletteShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a palette's colors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.hydratePalettes(cmd)

			p, exact := c.Registry.Get(args[0])
			if !exact {
				printWarning("palette %q not found, showing default", args[0])
			}
			fmt.Println(StyleTitle.Render(p.Name))
			printKeyValue("colors", fmt.Sprintf("%d", len(p.Colors)))
			printKeyValue("max", fmt.Sprintf("%d", p.MaxColors))
			for _, col := range p.Colors {
				fmt.Printf("  %s  #%06x\n", swatch(col), col&0x00ffffff)
			}
			return nil
		},
	}
}

func (c *CLI) paletteAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add [name] [#rrggbb...]",
		Short: "Add a custom palette from hex colors",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.hydratePalettes(cmd)

			colors := make([]uint32, 0, len(args)-1)
			for _, arg := range args[1:] {
				hex := strings.TrimPrefix(arg, "#")
				if len(hex) != 6 {
					return fmt.Errorf("invalid color %q (want rrggbb)", arg)
				}
				rgb, err := strconv.ParseUint(hex, 16, 32)
				if err != nil {
					return fmt.Errorf("invalid color %q: %w", arg, err)
				}
				colors = append(colors, 0xff000000|uint32(rgb))
			}

			id, ok := c.Registry.Add(palette.New(args[0], colors, 0))
			if !ok {
				return fmt.Errorf("palette %q was not accepted", args[0])
			}
			if err := c.flushPalettes(cmd); err != nil {
				return err
			}
			printSuccess("Added %s (%d colors)", id, len(colors))
			return nil
		},
	}
}

func (c *CLI) paletteImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.json]",
		Short: "Import custom palettes from a JSON file",
		Long: `Import custom palettes from a JSON file.

The file maps palette ids to records with a name, a color list, and a
maxColors count. Malformed records are skipped; the import succeeds when at
least one palette is accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.hydratePalettes(cmd)

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var records map[string]palette.Record
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			accepted, ok := c.Registry.ImportCustom(records)
			if !ok {
				return fmt.Errorf("no palette record in %s was accepted", args[0])
			}
			if skipped := len(records) - accepted; skipped > 0 {
				printWarning("skipped %d malformed record(s)", skipped)
			}
			if err := c.flushPalettes(cmd); err != nil {
				return err
			}
			printSuccess("Imported %d palette(s)", accepted)
			return nil
		},
	}
}

func (c *CLI) paletteExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file.json]",
		Short: "Export custom palettes to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.hydratePalettes(cmd)

			records, err := c.Registry.ExportCustom()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printInfo("no custom palettes to export")
				return nil
			}
			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return err
			}
			printSuccess("Exported %d palette(s)", len(records))
			printFile(args[0])
			return nil
		},
	}
}

func (c *CLI) paletteRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [id]",
		Short: "Remove a custom palette",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.hydratePalettes(cmd)

			id := palette.SanitizeID(args[0])
			if c.Registry.IsBuiltin(id) {
				return fmt.Errorf("palette %q is builtin and cannot be removed", id)
			}
			if !c.Registry.Remove(id) {
				return fmt.Errorf("palette %q not found", id)
			}
			if err := c.flushPalettes(cmd); err != nil {
				return err
			}
			printSuccess("Removed %s", id)
			return nil
		},
	}
}

// flushPalettes persists the registry's custom palettes to the config file.
func (c *CLI) flushPalettes(cmd *cobra.Command) error {
	path, err := palettePath()
	if err != nil {
		return err
	}
	return store.Flush(cmd.Context(), store.NewFileStore(path), c.Registry)
}

// swatchRow renders up to eight palette colors as swatches for the table.
func swatchRow(colors []uint32) string {
	var b strings.Builder
	for i, col := range colors {
		if i == 8 {
			b.WriteString(StyleDim.Render(fmt.Sprintf(" +%d", len(colors)-i)))
			break
		}
		b.WriteString(swatch(col))
	}
	return b.String()
}
