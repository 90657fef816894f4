package console

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-resolver/framework/app"
)

func (c *cli) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inspection API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				c.cfg.HTTP.Addr = addr
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.Application) error {
				return a.Serve(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: $RESOLVER_HTTP_ADDR or :8000)")
	return cmd
}
