package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/labelpress/pkg/server"
)

// serveCommand creates the serve command, which runs the HTTP API until the
// process is interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the labelpress HTTP API.

Routes include POST /v1/render, POST /v1/fields and the /v1/templates
resource. Templates and instances live in the configured store (MongoDB when
mongo.uri is set, else the file store).`,
		Example: `  labelpress serve
  labelpress serve --listen 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			if cmd.Flags().Changed("listen") {
				c.cfg.Server.Listen = listen
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			runner.Store = st

			c.Logger.Info("serving", "addr", c.cfg.Server.Listen, "store", c.storeLabel(), "font", runner.Renderer.FontSource())
			return server.New(runner, st, c.Logger).ListenAndServe(ctx, c.cfg.Server.Listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default: server.listen from the config)")
	return cmd
}
