package console

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-resolver/framework/app"
	"github.com/km-arc/go-resolver/framework/logging"
	"github.com/km-arc/go-resolver/framework/watcher"
)

func (c *cli) lintCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check every service definition without building anything",
		Long: `Check every service definition without building anything.

Prints one line per problem and exits with status 1 when any is found.
With --watch the definitions file is re-read and checked after every change
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watch {
				return c.watchLint(cmd)
			}
			var problems int
			err := c.withApp(cmd, func(ctx context.Context, a *app.Application) error {
				problems = printLint(cmd.OutOrStdout(), a.Lint(ctx))
				return nil
			})
			if err != nil {
				return err
			}
			if problems > 0 {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-run whenever the definitions file changes")
	return cmd
}

func printLint(w io.Writer, problems []string) int {
	if len(problems) == 0 {
		fmt.Fprintln(w, "No problems found.")
		return 0
	}
	for _, p := range problems {
		fmt.Fprintln(w, p)
	}
	fmt.Fprintf(w, "%d problem(s) found.\n", len(problems))
	return len(problems)
}

func (c *cli) watchLint(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	run := func() {
		err := c.withApp(cmd, func(ctx context.Context, a *app.Application) error {
			printLint(out, a.Lint(ctx))
			return nil
		})
		if err != nil {
			// A half-edited file is expected while watching.
			fmt.Fprintln(out, "Error:", err)
		}
	}

	logger, err := logging.New(cmd.ErrOrStderr(), logging.Options{Level: c.cfg.Log.Level, Format: c.cfg.Log.Format})
	if err != nil {
		return err
	}
	cfg := watcher.DefaultConfig(c.cfg.Services.File)
	cfg.Logger = logger
	w, err := watcher.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return err
	}

	run()
	fmt.Fprintf(out, "Watching %s for changes...\n", c.cfg.Services.File)

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			fmt.Fprintf(out, "\n%s changed\n", c.cfg.Services.File)
			run()
		}
	}
}
