package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-resolver/framework/app"
)

func (c *cli) getCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Resolve one service and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.Application) error {
				if timeout > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, timeout)
					defer cancel()
				}
				v, err := a.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return printValue(cmd.OutOrStdout(), v)
			})
		},
	}
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 5*time.Second, "give up after this long (0 waits forever)")
	return cmd
}

// printValue writes strings as-is and everything else as indented JSON,
// falling back to Go syntax for values JSON cannot encode.
func printValue(w io.Writer, v any) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		_, err = fmt.Fprintf(w, "%#v\n", v)
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
