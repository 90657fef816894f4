package container

import "context"

// DefaultInitialiser makes inner the initialiser of every definition that
// leaves Init empty. Definitions naming an init are still offered to inner
// as usual.
//
//	container.New(cfg, []any{
//	    container.DefaultInitialiser(&extensions.FactoryInitialiser{}),
//	    &extensions.ValueInitialiser{},
//	})
func DefaultInitialiser(inner Initialiser) Initialiser {
	return &defaultInitialiser{inner: inner}
}

type defaultInitialiser struct {
	inner Initialiser
}

func (d *defaultInitialiser) CanInitialise(ec *ExtensionContext) bool {
	if ec.Definition().Init == "" {
		return true
	}
	return d.inner.CanInitialise(ec)
}

func (d *defaultInitialiser) Initialise(ctx context.Context, created *InstanceCreated, module any, args ...any) (any, error) {
	return d.inner.Initialise(ctx, created, module, args...)
}
