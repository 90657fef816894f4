// Package modules holds the in-process modules services are built from, and
// the service providers that register them.
//
// Go has no runtime module loading, so a module is any value registered
// under a name: a constructor func, a prototype value or a ready instance.
// The registry module loader in package extensions resolves a definition's
// Module field against a Registry.
package modules

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Registry maps module names to modules.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]any

	// deferred providers, consulted for names not registered yet
	deferred deferredSource
}

type deferredSource interface {
	hasDeferred(name string) bool
	loadDeferred(name string) bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]any)}
}

// Register stores module under name, replacing any previous module.
//
//	reg.Register("mailer.smtp", smtp.New)
func (r *Registry) Register(name string, module any) {
	if name == "" {
		panic("modules: empty module name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[name] = module
}

// Lookup returns the module registered under name. A deferred provider that
// provides name is registered first if needed.
func (r *Registry) Lookup(name string) (any, bool) {
	r.mu.RLock()
	m, ok := r.modules[name]
	deferred := r.deferred
	r.mu.RUnlock()
	if ok {
		return m, true
	}
	if deferred == nil || !deferred.loadDeferred(name) {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok = r.modules[name]
	return m, ok
}

// MustLookup is like Lookup but panics when name is unknown.
func (r *Registry) MustLookup(name string) any {
	m, ok := r.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("modules: no module registered for [%s]", name))
	}
	return m
}

// Has reports whether name is registered or provided by a deferred provider,
// without registering anything.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	_, ok := r.modules[name]
	deferred := r.deferred
	r.mu.RUnlock()
	if ok {
		return true
	}
	return deferred != nil && deferred.hasDeferred(name)
}

// Names returns every registered module name, sorted. Modules of deferred
// providers that have not been loaded yet are not listed.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.modules))
}

func (r *Registry) setDeferred(d deferredSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deferred = d
}
