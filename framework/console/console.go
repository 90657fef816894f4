// Package console is the command line front end:
//
//	resolver lint [--watch]
//	resolver get <id> [--timeout 5s]
//	resolver services [--tag name]
//	resolver serve [--addr :8000]
//
// Every command shares --config/-c (the service definitions file) and
// --env (dotenv files, repeatable).
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-resolver/framework/app"
	"github.com/km-arc/go-resolver/framework/config"
	"github.com/km-arc/go-resolver/framework/modules"
)

// Options configures the command tree.
type Options struct {
	Name    string
	Version string

	// Providers register the modules definitions refer to.
	Providers []modules.ServiceProvider

	// Out and Err default to os.Stdout and os.Stderr.
	Out io.Writer
	Err io.Writer
}

// ExitError ends the process with Code. Its message has already been printed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// cli holds state shared by every subcommand.
type cli struct {
	opts     Options
	services string
	envFiles []string
	cfg      *config.Config
}

// NewRootCommand builds the command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Name == "" {
		opts.Name = "resolver"
	}
	if opts.Version == "" {
		opts.Version = app.Version
	}
	c := &cli{opts: opts}

	root := &cobra.Command{
		Use:           opts.Name,
		Short:         "Resolve and inspect declaratively defined services",
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.envFiles...)
			if err != nil {
				return err
			}
			if c.services != "" {
				cfg.Services.File = c.services
			}
			c.cfg = cfg
			return nil
		},
	}
	if opts.Out != nil {
		root.SetOut(opts.Out)
	}
	if opts.Err != nil {
		root.SetErr(opts.Err)
	}

	root.PersistentFlags().StringVarP(&c.services, "config", "c", "",
		"service definitions file (default: services.yaml or $RESOLVER_SERVICES_FILE)")
	root.PersistentFlags().StringArrayVar(&c.envFiles, "env", nil,
		"dotenv file to load before reading configuration (repeatable, default .env)")

	root.AddCommand(
		c.lintCommand(),
		c.getCommand(),
		c.servicesCommand(),
		c.serveCommand(),
	)
	return root
}

// Execute runs the command tree with os.Args and returns the process exit
// code. SIGINT and SIGTERM cancel the running command.
func Execute(opts Options) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(opts)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	return 1
}

// bootstrap builds the application for one command run.
func (c *cli) bootstrap(cmd *cobra.Command) (*app.Application, error) {
	return app.NewWithOptions(c.cfg, app.Options{
		LogOutput: cmd.ErrOrStderr(),
		Providers: c.opts.Providers,
	})
}

// withApp runs fn against a fresh application and shuts it down afterwards.
func (c *cli) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.Application) error) error {
	a, err := c.bootstrap(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	runErr := fn(ctx, a)
	if err := a.Shutdown(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
