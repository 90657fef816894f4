package extensions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/modules"
)

// ErrMissingModule is returned when a module name is not in the registry.
var ErrMissingModule = errors.New("missing module")

// ── Registry loader ───────────────────────────────────────────────────────────

// RegistryModuleLoader loads modules from a modules.Registry. It claims every
// definition whose Module starts with Prefix; the rest of the Module field is
// the module name.
//
// A name the registry does not know is tried again with its trailing
// ".segments" read as a path into a shorter registered name:
//
//	module: mail.smtp.New    # reg.Lookup("mail.smtp") then field/key "New"
type RegistryModuleLoader struct {
	Prefix   string
	Registry *modules.Registry
}

// NewRegistryModuleLoader creates a loader for names starting with prefix.
// An empty prefix claims every definition with a non-empty Module.
func NewRegistryModuleLoader(prefix string, reg *modules.Registry) *RegistryModuleLoader {
	return &RegistryModuleLoader{Prefix: prefix, Registry: reg}
}

func (l *RegistryModuleLoader) CanLoadModule(ec *container.ExtensionContext) bool {
	m := ec.Definition().Module
	return strings.HasPrefix(m, l.Prefix) && len(m) > len(l.Prefix)
}

func (l *RegistryModuleLoader) LoadModule(_ context.Context, ec *container.ExtensionContext) *container.Future {
	name := l.name(ec)
	if m, ok := l.Registry.Lookup(name); ok {
		return container.Resolved(m)
	}
	for i := strings.LastIndex(name, "."); i > 0; i = strings.LastIndex(name[:i], ".") {
		if m, ok := l.Registry.Lookup(name[:i]); ok {
			v, err := walk(m, splitPath(name[i+1:]))
			if err != nil {
				return container.Rejected(fmt.Errorf("module %s: %w", name, err))
			}
			return container.Resolved(v)
		}
	}
	return container.Rejected(fmt.Errorf("%w %s for %s", ErrMissingModule, name, ec.ServiceID()))
}

func (l *RegistryModuleLoader) LintLoader(ec *container.ExtensionContext) []string {
	name := l.name(ec)
	for i := len(name); i > 0; i = strings.LastIndex(name[:i], ".") {
		if l.Registry.Has(name[:i]) {
			return nil
		}
	}
	return []string{fmt.Sprintf("Missing module %s for %s", name, ec.ServiceID())}
}

func (l *RegistryModuleLoader) name(ec *container.ExtensionContext) string {
	return strings.TrimPrefix(ec.Definition().Module, l.Prefix)
}

// ── Default export ────────────────────────────────────────────────────────────

// DefaultExporter is implemented by modules that bundle several values and
// want one of them used when the bundle itself is asked for.
type DefaultExporter interface {
	DefaultExport() any
}

// DefaultExportDecorator wraps a ModuleLoader and replaces each loaded module
// by its default export, if it has one: the DefaultExport() value, or the
// "default" entry of a map[string]any.
type DefaultExportDecorator struct {
	inner container.ModuleLoader
}

// WithDefaultExport decorates inner.
func WithDefaultExport(inner container.ModuleLoader) *DefaultExportDecorator {
	return &DefaultExportDecorator{inner: inner}
}

func (d *DefaultExportDecorator) CanLoadModule(ec *container.ExtensionContext) bool {
	return d.inner.CanLoadModule(ec)
}

func (d *DefaultExportDecorator) LoadModule(ctx context.Context, ec *container.ExtensionContext) *container.Future {
	return container.Then(d.inner.LoadModule(ctx, ec), func(m any) (any, error) {
		return defaultExport(m), nil
	})
}

// LintLoader defers to the decorated loader, if it lints at all.
func (d *DefaultExportDecorator) LintLoader(ec *container.ExtensionContext) []string {
	if l, ok := d.inner.(container.LoaderLinter); ok {
		return l.LintLoader(ec)
	}
	return nil
}

func defaultExport(m any) any {
	switch v := m.(type) {
	case DefaultExporter:
		return v.DefaultExport()
	case map[string]any:
		if d, ok := v["default"]; ok {
			return d
		}
	}
	return m
}
