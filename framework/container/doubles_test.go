package container_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/km-arc/go-resolver/framework/container"
)

// ── stub extensions ───────────────────────────────────────────────────────────

// prefixLoader claims modules starting with prefix and loads them from modules.
type prefixLoader struct {
	prefix  string
	modules map[string]any
	fail    error
	loads   atomic.Int32
	checks  atomic.Int32
	lint    []string
}

func (l *prefixLoader) CanLoadModule(ec *container.ExtensionContext) bool {
	l.checks.Add(1)
	return strings.HasPrefix(ec.Definition().Module, l.prefix)
}

func (l *prefixLoader) LoadModule(_ context.Context, ec *container.ExtensionContext) *container.Future {
	l.loads.Add(1)
	if l.fail != nil {
		return container.Rejected(l.fail)
	}
	name := strings.TrimPrefix(ec.Definition().Module, l.prefix)
	if m, ok := l.modules[name]; ok {
		return container.Resolved(m)
	}
	return container.Resolved(map[string]any{})
}

func (l *prefixLoader) LintLoader(_ *container.ExtensionContext) []string { return l.lint }

// passInitialiser publishes and returns the module unchanged.
type passInitialiser struct{}

func (passInitialiser) CanInitialise(*container.ExtensionContext) bool { return true }

func (passInitialiser) Initialise(_ context.Context, created *container.InstanceCreated, module any, _ ...any) (any, error) {
	created.Publish(module)
	return module, nil
}

// built is what recordingInitialiser produces.
type built struct {
	Module any
	Args   []any
}

// recordingInitialiser builds a *built and records the order services are
// constructed in, by module name.
type recordingInitialiser struct {
	mu    sync.Mutex
	order []any
	fail  error
}

func (r *recordingInitialiser) CanInitialise(*container.ExtensionContext) bool { return true }

func (r *recordingInitialiser) Initialise(_ context.Context, created *container.InstanceCreated, module any, args ...any) (any, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	r.mu.Lock()
	r.order = append(r.order, module)
	r.mu.Unlock()
	b := &built{Module: module, Args: args}
	created.Publish(b)
	return b, nil
}

func (r *recordingInitialiser) constructed() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.order...)
}

// serviceResolver resolves "@id" to the service id.
type serviceResolver struct {
	lint []string
}

func (serviceResolver) CanResolveArg(arg string) bool { return strings.HasPrefix(arg, "@") }

func (serviceResolver) ResolveArg(ctx context.Context, arg string, ec *container.ExtensionContext) *container.Future {
	return ec.Container().Get(ctx, strings.TrimPrefix(arg, "@"))
}

func (s serviceResolver) LintArg(string, *container.ExtensionContext) []string { return s.lint }

// literalResolver resolves "=value" to the string value.
type literalResolver struct{}

func (literalResolver) CanResolveArg(arg string) bool { return strings.HasPrefix(arg, "=") }

func (literalResolver) ResolveArg(_ context.Context, arg string, _ *container.ExtensionContext) *container.Future {
	return container.Resolved(strings.TrimPrefix(arg, "="))
}

// events records hook calls in order.
type events struct {
	mu   sync.Mutex
	list []string
}

func (e *events) add(s string) {
	e.mu.Lock()
	e.list = append(e.list, s)
	e.mu.Unlock()
}

func (e *events) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.list...)
}

func (e *events) index(s string) int {
	for i, v := range e.all() {
		if v == s {
			return i
		}
	}
	return -1
}

// hookHandler claims string extras equal to name and records every hook.
type hookHandler struct {
	name        string
	ev          *events
	beforeErr   error
	afterErr    error
	completeErr error
	lint        []string
}

func (h *hookHandler) CanHandleExtra(extra any, _ *container.ExtensionContext) bool {
	s, ok := extra.(string)
	return ok && s == h.name
}

func (h *hookHandler) BeforeServiceInitialised(_ context.Context, _ any, ec *container.ExtensionContext) error {
	h.ev.add("before:" + ec.ServiceID())
	return h.beforeErr
}

func (h *hookHandler) OnServiceInstanceCreated(_ any, _ any, ec *container.ExtensionContext) {
	h.ev.add("created:" + ec.ServiceID())
}

func (h *hookHandler) OnServiceInitialised(_ context.Context, _ any, _ any, ec *container.ExtensionContext) error {
	h.ev.add("initialised:" + ec.ServiceID())
	return h.afterErr
}

func (h *hookHandler) OnGetComplete(_ context.Context, _ any, ec *container.ExtensionContext) error {
	h.ev.add("complete:" + ec.ServiceID())
	return h.completeErr
}

func (h *hookHandler) LintExtra(any, *container.ExtensionContext) []string { return h.lint }

var errBoom = errors.New("boom")

// ── helpers ───────────────────────────────────────────────────────────────────

func services(defs map[string]*container.Definition) container.Config {
	return container.Config{Services: defs}
}

func errorsAs(err error, target any) bool { return errors.As(err, target) }
