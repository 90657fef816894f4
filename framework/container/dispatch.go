package container

// first returns the first element of list accepted by pred. Registration order
// decides ties: later, more specific extensions never shadow earlier ones.
func first[T any](list []T, pred func(T) bool) (T, bool) {
	for _, ext := range list {
		if pred(ext) {
			return ext, true
		}
	}
	var zero T
	return zero, false
}

func (c *Container) moduleLoaderFor(ec *ExtensionContext) (ModuleLoader, bool) {
	return first(c.moduleLoaders, func(l ModuleLoader) bool { return l.CanLoadModule(ec) })
}

func (c *Container) initialiserFor(ec *ExtensionContext) (Initialiser, bool) {
	return first(c.initialisers, func(i Initialiser) bool { return i.CanInitialise(ec) })
}

func (c *Container) extraHandlerFor(extra any, ec *ExtensionContext) (ExtraHandler, bool) {
	return first(c.extraHandlers, func(h ExtraHandler) bool { return h.CanHandleExtra(extra, ec) })
}
