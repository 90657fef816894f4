package modules

import "sync"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider contributes modules to a Registry.
//
// Every provider must implement at minimum Register().
// Boot() is called after ALL providers have been registered.
//
//	type MailProvider struct{ modules.BaseProvider }
//
//	func (p *MailProvider) Register(reg *modules.Registry) {
//	    reg.Register("mailer.smtp", smtp.New)
//	}
type ServiceProvider interface {
	// Register adds modules to the registry.
	Register(reg *Registry)

	// Boot is called after all providers are registered.
	Boot(reg *Registry)

	// Provides returns the module names this provider registers.
	// Used for deferred (lazy) provider loading.
	// Return nil / empty slice if the provider is always eager.
	Provides() []string

	// IsDeferred returns true if this provider should be loaded lazily,
	// only when one of its Provides() modules is first looked up.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
// Embed it in your provider and only override what you need.
//
//	type MyProvider struct{ modules.BaseProvider }
//	func (p *MyProvider) Register(reg *modules.Registry) { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Registry)   {}
func (p *BaseProvider) Provides() []string { return nil }
func (p *BaseProvider) IsDeferred() bool   { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	mu         sync.Mutex
	modules    *Registry
	eager      []ServiceProvider
	deferred   map[string]ServiceProvider // module name → provider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a provider registry feeding reg.
func NewProviderRegistry(reg *Registry) *ProviderRegistry {
	r := &ProviderRegistry{
		modules:    reg,
		deferred:   make(map[string]ServiceProvider),
		registered: make(map[ServiceProvider]bool),
	}
	reg.setDeferred(r)
	return r
}

// Register adds a provider and calls its Register() method (unless deferred).
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		for _, name := range provider.Provides() {
			r.deferred[name] = provider
		}
		r.mu.Unlock()
		return
	}

	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	provider.Register(r.modules)

	// If already booted, boot this provider immediately
	if booted {
		provider.Boot(r.modules)
	}
}

// loadDeferred registers the deferred provider of name, if any.
// The first Lookup of any of its modules triggers real registration + boot.
func (r *ProviderRegistry) loadDeferred(name string) bool {
	r.mu.Lock()
	provider, ok := r.deferred[name]
	if !ok {
		r.mu.Unlock()
		return false
	}
	for _, provided := range provider.Provides() {
		delete(r.deferred, provided)
	}
	booted := r.booted
	r.mu.Unlock()

	provider.Register(r.modules)
	if booted {
		provider.Boot(r.modules)
	}
	return true
}

func (r *ProviderRegistry) hasDeferred(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.deferred[name]
	return ok
}

// Boot calls Boot() on all eager providers.
// Must be called after ALL providers have been registered.
func (r *ProviderRegistry) Boot() {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return
	}
	r.booted = true
	eager := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range eager {
		provider.Boot(r.modules)
	}
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}

// Modules returns the registry providers register into.
func (r *ProviderRegistry) Modules() *Registry { return r.modules }
