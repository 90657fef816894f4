// Package container provides the service resolution engine: it turns a
// declarative map of service definitions into lazily built, cached instances.
//
// # Overview
//
// The container knows nothing about module formats, argument syntaxes or how
// objects are constructed. Each piece of a Definition is handed to the first
// registered extension that claims it:
//
//   - ModuleLoader: the Module field
//   - ArgResolver: each entry of Args
//   - Initialiser: builds the instance (selected with the Init field)
//   - ExtraHandler: each entry of Extras, with optional lifecycle hooks
//
// Extensions are tried in registration order and the first match wins.
//
// # Container Lifecycle
//
//  1. Load definitions: cfg, err := config.LoadDefinitions("services.yaml")
//  2. Create:           c, err := container.New(cfg, extensions.Defaults(registry))
//  3. Check:            errs := c.Lint(ctx)
//  4. Resolve:          v, err := c.Get(ctx, "mailer").Await(ctx)
//
// # Resolving
//
//	// Untyped
//	v, err := c.Get(ctx, "cache").Await(ctx)
//
//	// Generic
//	cache, err := container.GetAs[*RedisCache](ctx, c, "cache")
//
// Get returns immediately. The first call for an id selects the extensions,
// starts the module load and argument resolution, and caches a Future that is
// settled on a background goroutine:
//
//	module + args  →  BeforeServiceInitialised  →  Initialise
//	               →  OnServiceInstanceCreated (inside Initialise)
//	               →  OnServiceInitialised     →  Future settled
//
// Every later call for the id returns the same Future, failed or not.
// All failures are reported as *ServiceError; use errors.Is with the
// Err* sentinels to inspect the cause.
//
// # Cycles
//
// The ids being resolved are carried in the context passed to Get. Asking for
// an id already on that chain fails with a *CircularDependencyError naming the
// full chain:
//
//	circular dependency detected: a, b, a
//
// # Writing extensions
//
//	type envArgResolver struct{}
//
//	func (envArgResolver) CanResolveArg(arg string) bool {
//	    return strings.HasPrefix(arg, "env:")
//	}
//
//	func (envArgResolver) ResolveArg(_ context.Context, arg string, _ *container.ExtensionContext) *container.Future {
//	    return container.Resolved(os.Getenv(strings.TrimPrefix(arg, "env:")))
//	}
//
// LoadModule and ResolveArg run inside the caller's Get and should not block;
// return Async(...) for slow work. Pass on the ctx you were given when calling
// Get from an extension, or cycles through it go unnoticed. Initialise and the hooks run on
// the resolution goroutine and may block.
package container
