package container

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Lint checks every definition against the registered extensions without
// building anything. It never touches the cache and may run at any time.
//
// The result lists one message per problem, services in id order:
//
//	Missing module loader for <id>
//	Missing initialiser for <id>
//	Missing argResolver at [<i>] for <id>
//	Missing extraHandler at [<i>] for <id>
//
// plus whatever the matched extensions' own lint methods report.
func (c *Container) Lint(ctx context.Context) []string {
	_, span := c.tracer.Start(ctx, "container.lint")
	defer span.End()

	ids := c.ServiceIDs()
	results := make([][]string, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			results[i] = c.lintService(id)
			return nil
		})
	}
	_ = g.Wait()

	var errs []string
	for _, r := range results {
		for _, msg := range r {
			if msg != "" {
				errs = append(errs, msg)
			}
		}
	}
	span.SetAttributes(
		attribute.Int("lint.services", len(ids)),
		attribute.Int("lint.errors", len(errs)),
	)
	return errs
}

func (c *Container) lintService(serviceID string) (errs []string) {
	defer func() {
		if r := recover(); r != nil {
			errs = append(errs, fmt.Sprintf("Lint failed for %s: %v", serviceID, r))
		}
	}()

	def := c.config.Services[serviceID]
	ec := newExtensionContext(c, serviceID, def)

	if loader, ok := c.moduleLoaderFor(ec); !ok {
		errs = append(errs, fmt.Sprintf("Missing module loader for %s", serviceID))
	} else if linter, ok := loader.(LoaderLinter); ok {
		errs = append(errs, linter.LintLoader(ec)...)
	}

	if _, ok := c.initialiserFor(ec); !ok {
		errs = append(errs, fmt.Sprintf("Missing initialiser for %s", serviceID))
	}

	for i, arg := range def.Args {
		resolver, err := ec.GetArgResolver(arg)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Missing argResolver at [%d] for %s", i, serviceID))
			continue
		}
		if linter, ok := resolver.(ArgLinter); ok {
			errs = append(errs, linter.LintArg(arg, ec)...)
		}
	}

	for i, extra := range def.Extras {
		handler, ok := c.extraHandlerFor(extra, ec)
		if !ok {
			errs = append(errs, fmt.Sprintf("Missing extraHandler at [%d] for %s", i, serviceID))
			continue
		}
		if linter, ok := handler.(ExtraLinter); ok {
			errs = append(errs, linter.LintExtra(extra, ec)...)
		}
	}
	return errs
}
