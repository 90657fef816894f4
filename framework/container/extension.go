package container

import (
	"context"
	"sync"
	"sync/atomic"
)

// ── Capabilities ──────────────────────────────────────────────────────────────

// ModuleLoader produces the module a service is built from.
//
// LoadModule is called during the dispatch phase of Get and must not block:
// start slow work with Async and return the Future.
type ModuleLoader interface {
	CanLoadModule(ec *ExtensionContext) bool
	LoadModule(ctx context.Context, ec *ExtensionContext) *Future
}

// ArgResolver turns one argument descriptor into a value.
//
// Like LoadModule, ResolveArg runs during dispatch and must return without
// waiting on other futures. Resolving another service is done by calling
// ec.Container().Get with the ctx passed in, which keeps cycle detection intact.
type ArgResolver interface {
	CanResolveArg(arg string) bool
	ResolveArg(ctx context.Context, arg string, ec *ExtensionContext) *Future
}

// Initialiser builds the instance from the resolved module and arguments.
// It runs on the resolution goroutine and may block.
//
// The initialiser must call created.Publish exactly once with the instance
// as soon as it exists, before any further set-up.
type Initialiser interface {
	CanInitialise(ec *ExtensionContext) bool
	Initialise(ctx context.Context, created *InstanceCreated, module any, args ...any) (any, error)
}

// ExtraHandler claims extra descriptors of a definition and takes part in the
// service lifecycle through the optional hook interfaces below.
type ExtraHandler interface {
	CanHandleExtra(extra any, ec *ExtensionContext) bool
}

// ── Optional hooks ────────────────────────────────────────────────────────────

// BeforeInitialisedHook runs after module and args are ready, before Initialise.
type BeforeInitialisedHook interface {
	BeforeServiceInitialised(ctx context.Context, extra any, ec *ExtensionContext) error
}

// InstanceCreatedHook observes the instance the moment the initialiser
// publishes it.
type InstanceCreatedHook interface {
	OnServiceInstanceCreated(instance any, extra any, ec *ExtensionContext)
}

// InitialisedHook runs after Initialise has returned.
type InitialisedHook interface {
	OnServiceInitialised(ctx context.Context, instance any, extra any, ec *ExtensionContext) error
}

// GetCompleteHook runs synchronously at the end of the Get call that started
// a resolution, whether or not that resolution later succeeds.
type GetCompleteHook interface {
	OnGetComplete(ctx context.Context, extra any, ec *ExtensionContext) error
}

// ── Optional lint ─────────────────────────────────────────────────────────────

type LoaderLinter interface {
	LintLoader(ec *ExtensionContext) []string
}

type ArgLinter interface {
	LintArg(arg string, ec *ExtensionContext) []string
}

type ExtraLinter interface {
	LintExtra(extra any, ec *ExtensionContext) []string
}

// ── Instance created signal ──────────────────────────────────────────────────

// InstanceCreated is the single-shot signal an Initialiser raises once the
// instance exists. Every subscriber runs synchronously inside Publish.
type InstanceCreated struct {
	once        sync.Once
	subscribers []func(instance any)
	published   atomic.Bool
}

// NewInstanceCreated returns a signal that calls subscribers, in order, on Publish.
func NewInstanceCreated(subscribers ...func(any)) *InstanceCreated {
	return &InstanceCreated{subscribers: subscribers}
}

// Publish delivers instance to every subscriber. Calls after the first are
// ignored.
func (s *InstanceCreated) Publish(instance any) {
	s.once.Do(func() {
		s.published.Store(true)
		for _, fn := range s.subscribers {
			fn(instance)
		}
	})
}

// Published reports whether Publish has been called.
func (s *InstanceCreated) Published() bool { return s.published.Load() }
