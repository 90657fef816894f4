package container

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
)

// ── Definitions ───────────────────────────────────────────────────────────────

// Definition describes how one service is built. Every field is opaque to the
// container; the extension that claims a field gives it meaning.
type Definition struct {
	// Module locates the module the service is built from.
	Module string `yaml:"module" toml:"module" json:"module"`

	// Args are constructor argument descriptors, resolved in order.
	Args []string `yaml:"args,omitempty" toml:"args,omitempty" json:"args,omitempty"`

	// Init selects an initialiser. Empty means "the default one".
	Init string `yaml:"init,omitempty" toml:"init,omitempty" json:"init,omitempty"`

	// Extras are lifecycle annotations, one ExtraHandler each.
	Extras []any `yaml:"extras,omitempty" toml:"extras,omitempty" json:"extras,omitempty"`
}

// Config is the full set of service definitions keyed by service id.
type Config struct {
	Services map[string]*Definition `yaml:"services" toml:"services" json:"services"`
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container resolves services from their definitions.
//
// It supports:
//   - Get: lazy, memoised, asynchronous construction of a service
//   - Lint: a static check of every definition against the extensions
//   - first-match dispatch over four ordered extension lists
//   - circular dependency detection along each resolution path
type Container struct {
	config Config

	moduleLoaders []ModuleLoader
	argResolvers  []ArgResolver
	initialisers  []Initialiser
	extraHandlers []ExtraHandler

	// service id → its one Future
	cache *futureCache

	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracer sets the tracer spans are recorded with. The default is a no-op.
func WithTracer(t trace.Tracer) Option {
	return func(c *Container) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New creates a container over cfg.
//
// Each extension is added, in order, to every capability list whose interface
// it implements. An extension implementing none of ModuleLoader, ArgResolver,
// Initialiser and ExtraHandler is rejected.
//
//	c, err := container.New(cfg, []any{
//	    extensions.NewRegistryModuleLoader("mod:", registry),
//	    &extensions.ServiceArgResolver{},
//	    container.DefaultInitialiser(&extensions.FactoryInitialiser{}),
//	})
func New(cfg Config, extensions []any, opts ...Option) (*Container, error) {
	c := &Container{
		config: Config{Services: make(map[string]*Definition, len(cfg.Services))},
		cache:  newFutureCache(),
		logger: slog.New(slog.DiscardHandler),
		tracer: noop.NewTracerProvider().Tracer("container"),
	}
	for id, def := range cfg.Services {
		if def == nil {
			def = &Definition{}
		}
		c.config.Services[id] = def
	}

	for i, ext := range extensions {
		matched := false
		if l, ok := ext.(ModuleLoader); ok {
			c.moduleLoaders = append(c.moduleLoaders, l)
			matched = true
		}
		if r, ok := ext.(ArgResolver); ok {
			c.argResolvers = append(c.argResolvers, r)
			matched = true
		}
		if in, ok := ext.(Initialiser); ok {
			c.initialisers = append(c.initialisers, in)
			matched = true
		}
		if h, ok := ext.(ExtraHandler); ok {
			c.extraHandlers = append(c.extraHandlers, h)
			matched = true
		}
		if !matched {
			return nil, fmt.Errorf("%w: [%d] %T", ErrUnknownExtension, i, ext)
		}
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// boundExtra pairs an extra descriptor with the handler that claimed it.
type boundExtra struct {
	extra   any
	handler ExtraHandler
}

// plan is the outcome of the dispatch phase of one resolution.
type plan struct {
	extras      []boundExtra
	initialiser Initialiser
	module      *Future
	args        []*Future
}

// Get returns the Future of serviceID, starting its resolution on first use.
//
// Every call for the same id returns the identical Future for the lifetime of
// the container, including a failed one: a failed service is never retried.
// ctx carries the resolution chain; extensions must pass the ctx they were
// given when they resolve other services, or a cycle through them goes
// unnoticed. Cancelling ctx does not cancel the resolution, use it with
// Await to bound the wait.
//
// An undefined id is cached as a failure too, so asking for arbitrary ids
// grows the cache by one entry per distinct id.
//
//	db, err := c.Get(ctx, "db").Await(ctx)
func (c *Container) Get(ctx context.Context, serviceID string) *Future {
	res := c.resolutionFrom(ctx)

	def, ok := c.config.Services[serviceID]
	if !ok {
		err := fmt.Errorf("%w for %s", ErrMissingDefinition, serviceID)
		return c.cache.add(serviceID, Rejected(newServiceError(serviceID, err)))
	}

	if res.contains(serviceID) {
		chain := append(slices.Clone(res.chain), serviceID)
		return Rejected(newServiceError(serviceID, &CircularDependencyError{Chain: chain}))
	}

	if f, ok := c.cache.get(serviceID); ok {
		c.logger.Debug("service cache hit", "service", serviceID)
		return f
	}

	f := newFuture()
	if existing := c.cache.add(serviceID, f); existing != f {
		return existing
	}

	ec := newExtensionContext(c, serviceID, def)
	ctx = withResolution(context.WithoutCancel(ctx), res.push(serviceID))
	extras := c.start(ctx, f, ec)

	for _, b := range extras {
		hook, ok := b.handler.(GetCompleteHook)
		if !ok {
			continue
		}
		if err := hook.OnGetComplete(ctx, b.extra, ec); err != nil {
			c.logger.Warn("get complete hook failed",
				"service", serviceID, "request", ec.RequestID(), "error", err)
		}
	}
	return f
}

// start runs the dispatch phase and hands the rest of the resolution to a new
// goroutine. It returns the matched extras, nil if matching them failed.
func (c *Container) start(ctx context.Context, f *Future, ec *ExtensionContext) []boundExtra {
	ctx, span := c.tracer.Start(ctx, "container.get", trace.WithAttributes(
		attribute.String("service.id", ec.ServiceID()),
		attribute.String("request.id", ec.RequestID()),
	))

	var p *plan
	err := protect(func() (err error) {
		p, err = c.dispatch(ctx, ec)
		return err
	})
	if err != nil {
		c.settle(f, span, ec, nil, err)
		if p == nil {
			return nil
		}
		return p.extras
	}

	c.logger.Debug("service dispatched",
		"service", ec.ServiceID(), "request", ec.RequestID(), "args", len(p.args), "extras", len(p.extras))

	go func() {
		var instance any
		err := protect(func() (err error) {
			instance, err = c.build(ctx, p, ec)
			return err
		})
		c.settle(f, span, ec, instance, err)
	}()
	return p.extras
}

// dispatch selects the extensions for ec and kicks off module and argument
// resolution. A non-nil plan is returned once every extra has been matched.
func (c *Container) dispatch(ctx context.Context, ec *ExtensionContext) (*plan, error) {
	def := ec.Definition()

	extras := make([]boundExtra, 0, len(def.Extras))
	for _, extra := range def.Extras {
		h, ok := c.extraHandlerFor(extra, ec)
		if !ok {
			return nil, fmt.Errorf("%w for %v", ErrNoExtraHandler, extra)
		}
		extras = append(extras, boundExtra{extra: extra, handler: h})
	}
	p := &plan{extras: extras}

	loader, ok := c.moduleLoaderFor(ec)
	if !ok {
		return p, fmt.Errorf("%w for %s", ErrNoModuleLoader, ec.ServiceID())
	}

	initialiser, ok := c.initialiserFor(ec)
	if !ok {
		return p, fmt.Errorf("%w for %s", ErrNoInitialiser, ec.ServiceID())
	}
	p.initialiser = initialiser

	p.module = loader.LoadModule(ctx, ec)
	p.args = ec.ResolveArgs(ctx, def.Args)
	return p, nil
}

// build is the asynchronous phase: wait for module and args, run the
// lifecycle hooks around the initialiser and return the instance.
func (c *Container) build(ctx context.Context, p *plan, ec *ExtensionContext) (any, error) {
	values, err := AwaitAll(ctx, append([]*Future{p.module}, p.args...)...)
	if err != nil {
		return nil, err
	}

	err = runHooks(ctx, p.extras, func(ctx context.Context, b boundExtra) error {
		if hook, ok := b.handler.(BeforeInitialisedHook); ok {
			return hook.BeforeServiceInitialised(ctx, b.extra, ec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created := NewInstanceCreated(func(instance any) {
		for _, b := range p.extras {
			if hook, ok := b.handler.(InstanceCreatedHook); ok {
				hook.OnServiceInstanceCreated(instance, b.extra, ec)
			}
		}
	})
	instance, err := p.initialiser.Initialise(ctx, created, values[0], values[1:]...)
	if err != nil {
		return nil, err
	}

	err = runHooks(ctx, p.extras, func(ctx context.Context, b boundExtra) error {
		if hook, ok := b.handler.(InitialisedHook); ok {
			return hook.OnServiceInitialised(ctx, instance, b.extra, ec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func (c *Container) settle(f *Future, span trace.Span, ec *ExtensionContext, v any, err error) {
	if err != nil {
		err = newServiceError(ec.ServiceID(), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("service failed", "service", ec.ServiceID(), "request", ec.RequestID(), "error", err)
	} else {
		c.logger.Debug("service resolved", "service", ec.ServiceID(), "request", ec.RequestID())
	}
	span.End()
	f.settle(v, err)
}

// runHooks calls fn for every extra concurrently and waits for all of them.
// A panicking hook fails like one returning an error.
func runHooks(ctx context.Context, extras []boundExtra, fn func(context.Context, boundExtra) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, b := range extras {
		g.Go(func() error {
			return protect(func() error { return fn(gctx, b) })
		})
	}
	return g.Wait()
}

// protect turns a panic inside fn into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Has returns true if serviceID has a definition.
func (c *Container) Has(serviceID string) bool {
	_, ok := c.config.Services[serviceID]
	return ok
}

// Resolved returns true once Get has been called for serviceID, whatever the
// state of its Future.
func (c *Container) Resolved(serviceID string) bool {
	_, ok := c.cache.get(serviceID)
	return ok
}

// Peek returns the cached Future of serviceID without starting a resolution.
func (c *Container) Peek(serviceID string) (*Future, bool) {
	return c.cache.get(serviceID)
}

// State is where a service stands in its resolution.
type State string

const (
	StateIdle     State = "idle"     // Get never called
	StatePending  State = "pending"  // resolving
	StateResolved State = "resolved" // instance available
	StateFailed   State = "failed"   // settled with an error, for good
)

// State reports the resolution state of serviceID without starting one.
func (c *Container) State(serviceID string) State {
	f, ok := c.cache.get(serviceID)
	if !ok {
		return StateIdle
	}
	_, err, done := f.Poll()
	switch {
	case !done:
		return StatePending
	case err != nil:
		return StateFailed
	default:
		return StateResolved
	}
}

// Definition returns the definition of serviceID. It must not be modified.
func (c *Container) Definition(serviceID string) (*Definition, bool) {
	def, ok := c.config.Services[serviceID]
	return def, ok
}

// ServiceIDs returns every defined service id, sorted.
func (c *Container) ServiceIDs() []string {
	return slices.Sorted(maps.Keys(c.config.Services))
}

// ── Generics helper ───────────────────────────────────────────────────────────

// GetAs resolves serviceID, waits for it and type-asserts the instance.
//
//	// Instead of: v, err := c.Get(ctx, "db").Await(ctx); db := v.(*sql.DB)
//	// Write:      db, err := container.GetAs[*sql.DB](ctx, c, "db")
func GetAs[T any](ctx context.Context, c *Container, serviceID string) (T, error) {
	var zero T
	instance, err := c.Get(ctx, serviceID).Await(ctx)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: GetAs[%T]: [%s] resolved to %T", zero, serviceID, instance)
	}
	return typed, nil
}
