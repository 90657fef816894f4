package container

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ExtensionContext is what an extension sees of a single Get or Lint request:
// the container, the service being handled and its definition.
//
// A new ExtensionContext is created for every request and is never shared.
type ExtensionContext struct {
	container  *Container
	serviceID  string
	definition *Definition
	requestID  string
}

func newExtensionContext(c *Container, serviceID string, def *Definition) *ExtensionContext {
	return &ExtensionContext{
		container:  c,
		serviceID:  serviceID,
		definition: def,
		requestID:  uuid.NewString(),
	}
}

// Container returns the container handling the request.
func (ec *ExtensionContext) Container() *Container { return ec.container }

// ServiceID returns the id of the service being resolved or linted.
func (ec *ExtensionContext) ServiceID() string { return ec.serviceID }

// Definition returns the definition of the service. Never nil.
func (ec *ExtensionContext) Definition() *Definition { return ec.definition }

// RequestID identifies this request in logs and traces.
func (ec *ExtensionContext) RequestID() string { return ec.requestID }

// GetArgResolver returns the first registered ArgResolver accepting arg.
func (ec *ExtensionContext) GetArgResolver(arg string) (ArgResolver, error) {
	resolver, ok := first(ec.container.argResolvers, func(r ArgResolver) bool {
		return r.CanResolveArg(arg)
	})
	if !ok {
		return nil, fmt.Errorf("%w for %q", ErrNoArgResolver, arg)
	}
	return resolver, nil
}

// ResolveArg resolves arg with the first ArgResolver accepting it. When none
// does the returned Future is rejected with ErrNoArgResolver.
func (ec *ExtensionContext) ResolveArg(ctx context.Context, arg string) *Future {
	resolver, err := ec.GetArgResolver(arg)
	if err != nil {
		return Rejected(err)
	}
	return resolver.ResolveArg(ctx, arg, ec)
}

// ResolveArgs resolves every arg in order.
func (ec *ExtensionContext) ResolveArgs(ctx context.Context, args []string) []*Future {
	out := make([]*Future, 0, len(args))
	for _, arg := range args {
		out = append(out, ec.ResolveArg(ctx, arg))
	}
	return out
}
