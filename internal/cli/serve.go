package cli

import (
	"github.com/spf13/cobra"

	"github.com/pixelmill/pixelmill/pkg/pipeline"
	"github.com/pixelmill/pixelmill/pkg/server"
	"github.com/pixelmill/pixelmill/pkg/store"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		redisURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sprite generation HTTP API",
		Long: `Run the sprite generation HTTP API.

Custom palettes persist to the user config directory by default; pass
--redis to share one palette set between multiple instances instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var st store.Store
			if redisURL != "" {
				rs, err := store.NewRedisStoreURL(redisURL)
				if err != nil {
					return err
				}
				if err := rs.Ping(ctx); err != nil {
					return err
				}
				defer rs.Close()
				st = rs
			} else if path, err := palettePath(); err == nil {
				st = store.NewFileStore(path)
			}

			if st != nil {
				n, err := store.Hydrate(ctx, st, c.Registry)
				if err != nil {
					c.Logger.Warn("loading custom palettes", "error", err)
				} else if n > 0 {
					c.Logger.Info("loaded custom palettes", "count", n)
				}
			}

			srv := server.New(server.Config{
				Addr:     addr,
				Registry: c.Registry,
				Runner:   pipeline.NewRunner(c.Registry, c.Guard, c.Logger),
				Store:    st,
				Logger:   c.Logger,
			})
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "redis url for shared palette storage")
	return cmd
}
