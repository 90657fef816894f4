package console

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-resolver/framework/app"
	"github.com/km-arc/go-resolver/framework/extensions"
)

func (c *cli) servicesCommand() *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "services",
		Short: "List defined services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(_ context.Context, a *app.Application) error {
				ids := a.Container.ServiceIDs()
				if tag != "" {
					ids = extensions.TaggedIDs(a.Container, tag)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tMODULE\tINIT\tSTATE")
				for _, id := range ids {
					def, _ := a.Container.Definition(id)
					initName := def.Init
					if initName == "" {
						initName = "-"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, def.Module, initName, a.Container.State(id))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "only services carrying this tag")
	return cmd
}
