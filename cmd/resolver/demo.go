package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/km-arc/go-resolver/framework/extensions"
	"github.com/km-arc/go-resolver/framework/modules"
)

// DemoProvider registers the modules services.yaml refers to.
type DemoProvider struct{ modules.BaseProvider }

func (p *DemoProvider) Register(reg *modules.Registry) {
	reg.Register("demo.settings", map[string]any{
		"greeting": "Hello",
		"zone":     "UTC",
	})
	reg.Register("demo.clock", NewClock)
	reg.Register("demo.greeter", NewGreeter)
	reg.Register("demo.store", NewStore)
	reg.Register("demo.lazy", NewLazyGreeter)
}

// ── Clock ─────────────────────────────────────────────────────────────────────

type Clock struct {
	Zone string `json:"zone"`
	loc  *time.Location
}

func NewClock(zone string) (*Clock, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("clock: %w", err)
	}
	return &Clock{Zone: zone, loc: loc}, nil
}

func (c *Clock) Now() time.Time { return time.Now().In(c.loc) }

// ── Greeter ───────────────────────────────────────────────────────────────────

type Greeter struct {
	Greeting string `json:"greeting"`
	Clock    *Clock `json:"clock"`
}

func NewGreeter(greeting string, clock *Clock) *Greeter {
	return &Greeter{Greeting: greeting, Clock: clock}
}

func (g *Greeter) Greet(name string) string {
	return fmt.Sprintf("%s, %s. It is %s.", g.Greeting, name, g.Clock.Now().Format(time.Kitchen))
}

// LazyGreeter builds its Greeter on first use.
type LazyGreeter struct {
	get extensions.Deferred
}

func NewLazyGreeter(get extensions.Deferred) *LazyGreeter {
	return &LazyGreeter{get: get}
}

func (l *LazyGreeter) Greeter(ctx context.Context) (*Greeter, error) {
	v, err := l.get().Await(ctx)
	if err != nil {
		return nil, err
	}
	g, ok := v.(*Greeter)
	if !ok {
		return nil, fmt.Errorf("lazy greeter: got %T", v)
	}
	return g, nil
}

// ── Store ─────────────────────────────────────────────────────────────────────

var ErrStoreClosed = errors.New("store closed")

// Store is an in-memory key/value store released on shutdown.
type Store struct {
	mu     sync.RWMutex
	items  map[string]string
	closed bool
}

func NewStore() *Store {
	return &Store{items: make(map[string]string)}
}

func (s *Store) Put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.items[key] = value
	return nil
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.items = nil
	return nil
}
