package container

import (
	"context"
	"slices"
)

type resolutionKey struct{}

// resolution is the per call path state carried through ctx: the container
// that owns the path and the ids being resolved from the root Get down to
// the current one.
type resolution struct {
	owner *Container
	chain []string
}

// resolutionFrom returns the call path of ctx in c. A path started by
// another container is a new root here.
func (c *Container) resolutionFrom(ctx context.Context) resolution {
	r, _ := ctx.Value(resolutionKey{}).(resolution)
	if r.owner != c {
		return resolution{owner: c}
	}
	return r
}

func (r resolution) contains(serviceID string) bool {
	return slices.Contains(r.chain, serviceID)
}

// push returns a copy with serviceID appended. Sibling branches never share
// the backing array.
func (r resolution) push(serviceID string) resolution {
	chain := make([]string, len(r.chain), len(r.chain)+1)
	copy(chain, r.chain)
	return resolution{owner: r.owner, chain: append(chain, serviceID)}
}

func withResolution(ctx context.Context, r resolution) context.Context {
	return context.WithValue(ctx, resolutionKey{}, r)
}

// Chain returns the ids currently being resolved on the call path of ctx,
// outermost first.
func Chain(ctx context.Context) []string {
	r, _ := ctx.Value(resolutionKey{}).(resolution)
	return slices.Clone(r.chain)
}

// Detach drops the resolution chain from ctx. Extensions that resolve
// services later, from a goroutine of their own, pass a detached context so
// the work is treated as a new root request.
func Detach(ctx context.Context) context.Context {
	return context.WithValue(ctx, resolutionKey{}, resolution{})
}
