package extensions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/km-arc/go-resolver/framework/container"
)

// CloserHandler claims the "closer" extra. Every instance built for such a
// definition is kept, and Close closes them all, last built first.
//
//	closer := extensions.NewCloserHandler()
//	c, _ := container.New(cfg, append(extensions.Defaults(reg), closer))
//	defer closer.Close()
type CloserHandler struct {
	mu      sync.Mutex
	closers []closerEntry
	closed  bool
}

type closerEntry struct {
	id    string
	close func() error
}

// ExtraCloser is the extra the CloserHandler claims.
const ExtraCloser = "closer"

// NewCloserHandler creates an empty CloserHandler.
func NewCloserHandler() *CloserHandler {
	return &CloserHandler{}
}

func (h *CloserHandler) CanHandleExtra(extra any, _ *container.ExtensionContext) bool {
	s, ok := extra.(string)
	return ok && s == ExtraCloser
}

// OnServiceInitialised records instance. An instance with no Close method
// fails the service.
func (h *CloserHandler) OnServiceInitialised(_ context.Context, instance any, _ any, ec *container.ExtensionContext) error {
	var fn func() error
	switch v := instance.(type) {
	case io.Closer:
		fn = v.Close
	case interface{ Close() }:
		fn = func() error { v.Close(); return nil }
	default:
		return fmt.Errorf("%s: %T has no Close method", ExtraCloser, instance)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("%s: handler already closed", ExtraCloser)
	}
	h.closers = append(h.closers, closerEntry{id: ec.ServiceID(), close: fn})
	return nil
}

// Len returns the number of instances waiting to be closed.
func (h *CloserHandler) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.closers)
}

// Close closes every recorded instance in reverse order and joins the
// errors. Later calls do nothing.
func (h *CloserHandler) Close() error {
	h.mu.Lock()
	entries := h.closers
	h.closers = nil
	h.closed = true
	h.mu.Unlock()

	var errs []error
	for _, e := range slices.Backward(entries) {
		if err := e.close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", e.id, err))
		}
	}
	return errors.Join(errs...)
}
