package extensions

import (
	"github.com/km-arc/go-resolver/framework/container"
	"github.com/km-arc/go-resolver/framework/modules"
)

// Defaults returns the standard extensions, in dispatch order, loading
// modules from reg. Add a CloserHandler when definitions use "closer".
func Defaults(reg *modules.Registry) []any {
	return []any{
		WithDefaultExport(NewRegistryModuleLoader("", reg)),

		DeferredArgResolver{},
		ServiceArgResolver{},
		EnvArgResolver{},
		CommonArgResolver{},

		ValueInitialiser{},
		container.DefaultInitialiser(FactoryInitialiser{}),

		TagHandler{},
	}
}
