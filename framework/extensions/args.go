package extensions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/km-arc/go-resolver/framework/config"
	"github.com/km-arc/go-resolver/framework/container"
)

// ── Service args ──────────────────────────────────────────────────────────────

// ServiceArgResolver resolves "@id" to the service id, and "@id.a.b" to the
// value found at a.b inside it.
//
// Service ids may contain dots themselves; the longest defined id wins.
//
//	args: ["@db", "@config.Mail.From"]
type ServiceArgResolver struct{}

const servicePrefix = "@"

func (ServiceArgResolver) CanResolveArg(arg string) bool {
	return strings.HasPrefix(arg, servicePrefix) && len(arg) > len(servicePrefix)
}

func (ServiceArgResolver) ResolveArg(ctx context.Context, arg string, ec *container.ExtensionContext) *container.Future {
	id, path := splitServiceRef(ec.Container(), strings.TrimPrefix(arg, servicePrefix))
	f := ec.Container().Get(ctx, id)
	if len(path) == 0 {
		return f
	}
	return container.Then(f, func(v any) (any, error) {
		return walk(v, path)
	})
}

func (ServiceArgResolver) LintArg(arg string, ec *container.ExtensionContext) []string {
	id, _ := splitServiceRef(ec.Container(), strings.TrimPrefix(arg, servicePrefix))
	if ec.Container().Has(id) {
		return nil
	}
	return []string{fmt.Sprintf("Missing service %s for arg %s", id, arg)}
}

// splitServiceRef finds the longest defined service id that ref starts with.
// When none is defined the part before the first dot is returned as the id.
func splitServiceRef(c *container.Container, ref string) (string, []string) {
	for i := len(ref); i > 0; i = strings.LastIndex(ref[:i], ".") {
		if c.Has(ref[:i]) {
			return ref[:i], splitPath(strings.TrimPrefix(ref[i:], "."))
		}
	}
	id, rest, _ := strings.Cut(ref, ".")
	return id, splitPath(rest)
}

// ── Common args ───────────────────────────────────────────────────────────────

// CommonArgResolver resolves a handful of fixed names:
//
//	container    the *container.Container itself
//	emptyString  ""
//	true, false  the booleans
//	noop         a func() that does nothing
type CommonArgResolver struct{}

// Noop is the value of the "noop" arg.
func Noop() {}

func (CommonArgResolver) CanResolveArg(arg string) bool {
	switch arg {
	case "container", "emptyString", "true", "false", "noop":
		return true
	}
	return false
}

func (CommonArgResolver) ResolveArg(_ context.Context, arg string, ec *container.ExtensionContext) *container.Future {
	switch arg {
	case "container":
		return container.Resolved(ec.Container())
	case "emptyString":
		return container.Resolved("")
	case "true":
		return container.Resolved(true)
	case "false":
		return container.Resolved(false)
	case "noop":
		return container.Resolved(Noop)
	}
	return container.Rejected(fmt.Errorf("%w for %q", container.ErrNoArgResolver, arg))
}

// ── Env args ──────────────────────────────────────────────────────────────────

// EnvArgResolver resolves "env:NAME" and "env:NAME:default" from the
// environment. Values that parse as an int or a bool are returned as such.
//
//	args: ["env:MAIL_HOST:localhost", "env:MAIL_PORT:587"]
type EnvArgResolver struct{}

const envPrefix = "env:"

func (EnvArgResolver) CanResolveArg(arg string) bool {
	return strings.HasPrefix(arg, envPrefix) && len(arg) > len(envPrefix)
}

func (EnvArgResolver) ResolveArg(_ context.Context, arg string, _ *container.ExtensionContext) *container.Future {
	name, fallback, _ := strings.Cut(strings.TrimPrefix(arg, envPrefix), ":")
	return container.Resolved(typed(config.Get(name, fallback)))
}

func (EnvArgResolver) LintArg(arg string, _ *container.ExtensionContext) []string {
	name, _, _ := strings.Cut(strings.TrimPrefix(arg, envPrefix), ":")
	if name == "" {
		return []string{fmt.Sprintf("Missing variable name in arg %s", arg)}
	}
	return nil
}

func typed(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
