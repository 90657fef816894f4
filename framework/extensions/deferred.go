package extensions

import (
	"context"
	"strings"

	"github.com/km-arc/go-resolver/framework/container"
)

// Deferred is the value a "defer:" arg resolves to. The wrapped arg starts
// resolving in the background as soon as the service is dispatched; calling
// the Deferred returns its Future.
//
//	func NewWorker(queue extensions.Deferred) *Worker { ... }
//
//	q, err := w.queue().Await(ctx)
type Deferred func() *container.Future

// DeferredArgResolver resolves "defer:<arg>" to a Deferred for <arg>.
//
// The inner arg is resolved as a new root request, outside the resolution
// chain of the service that asked for it. Two services may therefore depend
// on each other as long as one side defers.
type DeferredArgResolver struct{}

const deferPrefix = "defer:"

func (DeferredArgResolver) CanResolveArg(arg string) bool {
	return strings.HasPrefix(arg, deferPrefix)
}

func (DeferredArgResolver) ResolveArg(ctx context.Context, arg string, ec *container.ExtensionContext) *container.Future {
	inner := strings.TrimPrefix(arg, deferPrefix)
	ctx = container.Detach(ctx)
	f := container.Async(func() (any, error) {
		return ec.ResolveArg(ctx, inner).Await(ctx)
	})
	return container.Resolved(Deferred(func() *container.Future { return f }))
}

func (DeferredArgResolver) LintArg(arg string, ec *container.ExtensionContext) []string {
	if _, err := ec.GetArgResolver(strings.TrimPrefix(arg, deferPrefix)); err != nil {
		return []string{"Unable to resolve deferred arg"}
	}
	return nil
}
