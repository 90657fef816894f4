package container

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Future is the shared, settle-once result of an asynchronous operation.
//
// Unlike a plain channel, a Future can be awaited any number of times by any
// number of goroutines; every waiter observes the same value or error. The
// container caches one *Future per service id, so pointer equality is the
// identity of a resolution.
type Future struct {
	done  chan struct{}
	once  sync.Once
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Async runs fn on its own goroutine and returns a Future for its result.
// A panic in fn rejects the Future.
//
//	f := container.Async(func() (any, error) {
//	    return sql.Open("sqlite", path)
//	})
func Async(fn func() (any, error)) *Future {
	f := newFuture()
	go func() {
		var v any
		err := protect(func() (err error) {
			v, err = fn()
			return err
		})
		f.settle(v, err)
	}()
	return f
}

// Resolved returns an already fulfilled Future.
func Resolved(v any) *Future {
	f := newFuture()
	f.settle(v, nil)
	return f
}

// Rejected returns an already failed Future.
func Rejected(err error) *Future {
	f := newFuture()
	f.settle(nil, err)
	return f
}

// Then chains fn onto f. fn runs only if f succeeds; a failure of f is
// propagated unchanged.
func Then(f *Future, fn func(v any) (any, error)) *Future {
	return Async(func() (any, error) {
		<-f.done
		if f.err != nil {
			return nil, f.err
		}
		return fn(f.value)
	})
}

// settle stores the outcome. Only the first call has any effect.
func (f *Future) settle(v any, err error) {
	f.once.Do(func() {
		f.value, f.err = v, err
		close(f.done)
	})
}

// Await blocks until the Future settles or ctx is done.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed once the Future has settled.
func (f *Future) Done() <-chan struct{} { return f.done }

// Poll reports the outcome without blocking. ok is false while pending.
func (f *Future) Poll() (v any, err error, ok bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		return nil, nil, false
	}
}

// AwaitAll waits for every future concurrently and returns their values in
// the same positions. The first failure to arrive cancels the wait and is
// returned.
func AwaitAll(ctx context.Context, futures ...*Future) ([]any, error) {
	values := make([]any, len(futures))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range futures {
		g.Go(func() error {
			v, err := f.Await(gctx)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}
