package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/km-arc/go-resolver/framework/config"
	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/extensions"
	"github.com/km-arc/go-resolver/framework/inspect"
	"github.com/km-arc/go-resolver/framework/logging"
	"github.com/km-arc/go-resolver/framework/modules"
	"github.com/km-arc/go-resolver/framework/providers"
	"github.com/km-arc/go-resolver/framework/tracing"
)

// Version is the framework release.
const Version = "0.1.0"

// Application ties configuration, modules and the service container together.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Modules   *modules.Registry
	Providers *modules.ProviderRegistry
	Container *container.Container

	closer  *extensions.CloserHandler
	tracing *tracing.Provider

	mu     sync.Mutex
	server *http.Server
}

// Options tunes New. The zero value reads definitions from
// cfg.Services.File and logs to stderr.
type Options struct {
	// Definitions replaces the definitions file when set.
	Definitions *container.Config

	// LogOutput receives the application log. Default: os.Stderr.
	LogOutput io.Writer

	// Providers register the application's modules.
	Providers []modules.ServiceProvider
}

// New bootstraps the application.
//
//	cfg, _ := config.Load()
//	application, err := app.New(cfg, &MailProvider{})
//	defer application.Shutdown(ctx)
//	mailer, err := application.Get(ctx, "mailer")
func New(cfg *config.Config, serviceProviders ...modules.ServiceProvider) (*Application, error) {
	return NewWithOptions(cfg, Options{Providers: serviceProviders})
}

// NewWithOptions is New with explicit Options.
func NewWithOptions(cfg *config.Config, opts Options) (*Application, error) {
	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger, err := logging.New(out, logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}

	tp, err := tracing.NewProvider(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.Endpoint,
		SampleRate:   cfg.Tracing.SampleRate,
		ServiceName:  cfg.Tracing.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	defs := opts.Definitions
	if defs == nil {
		loaded, err := config.LoadDefinitions(cfg.Services.File)
		if err != nil {
			_ = tp.Shutdown(context.Background())
			return nil, err
		}
		defs = &loaded
	}

	reg := modules.NewRegistry()
	registry := modules.NewProviderRegistry(reg)

	// Framework providers first, so application providers may override.
	registry.Register(&providers.ConfigServiceProvider{Config: cfg})
	registry.Register(&providers.LoggingServiceProvider{Logger: logger})
	registry.Register(&providers.TracingServiceProvider{Tracer: tp.Tracer()})
	for _, p := range opts.Providers {
		registry.Register(p)
	}
	registry.Boot()

	closer := extensions.NewCloserHandler()
	c, err := container.New(*defs, append(extensions.Defaults(reg), closer),
		container.WithLogger(logging.For(logger, logging.CatContainer)),
		container.WithTracer(tp.Tracer()),
	)
	if err != nil {
		_ = tp.Shutdown(context.Background())
		return nil, err
	}

	logging.For(logger, logging.CatConfig).Debug("application bootstrapped",
		"services", len(defs.Services), "modules", len(reg.Names()), "env", cfg.App.Env)

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Modules:   reg,
		Providers: registry,
		Container: c,
		closer:    closer,
		tracing:   tp,
	}, nil
}

// ── Container facade ──────────────────────────────────────────────────────────

// Lint checks every definition. See container.Container.Lint.
func (a *Application) Lint(ctx context.Context) []string {
	return a.Container.Lint(ctx)
}

// Get resolves a service and waits for it.
func (a *Application) Get(ctx context.Context, serviceID string) (any, error) {
	return a.Container.Get(ctx, serviceID).Await(ctx)
}

// ── HTTP ──────────────────────────────────────────────────────────────────────

// Handler returns the inspection API.
func (a *Application) Handler() http.Handler {
	return inspect.New(a.Container, logging.For(a.Logger, logging.CatHTTP), 0).Router("/")
}

// Serve listens on cfg.HTTP.Addr and serves the inspection API until ctx
// is done.
func (a *Application) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.HTTP.Addr)
	if err != nil {
		return err
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener serves the inspection API on ln until ctx is done.
func (a *Application) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.mu.Lock()
	a.server = srv
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		if a.server == srv {
			a.server = nil
		}
		a.mu.Unlock()
	}()

	logging.For(a.Logger, logging.CatHTTP).Info("inspection API listening",
		"addr", ln.Addr().String(), "app", a.Config.App.Name, "env", a.Config.App.Env)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	}
}

// Shutdown stops the server if running, closes every "closer" service,
// last built first, and flushes traces.
func (a *Application) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	srv := a.server
	a.server = nil
	a.mu.Unlock()

	var errs []error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.closer.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ── Environment ───────────────────────────────────────────────────────────────

func (a *Application) Environment() string { return a.Config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config.App.Debug }
func (a *Application) Version() string     { return Version }
