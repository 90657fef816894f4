package container

import (
	gocache "github.com/patrickmn/go-cache"
)

// futureCache maps service ids to their one and only Future.
// Entries never expire and are never replaced.
type futureCache struct {
	store *gocache.Cache
}

func newFutureCache() *futureCache {
	// A zero cleanup interval disables the janitor goroutine.
	return &futureCache{store: gocache.New(gocache.NoExpiration, 0)}
}

func (fc *futureCache) get(serviceID string) (*Future, bool) {
	v, ok := fc.store.Get(serviceID)
	if !ok {
		return nil, false
	}
	f, ok := v.(*Future)
	return f, ok
}

// add stores f unless an entry already exists, in which case the existing
// Future is returned instead.
func (fc *futureCache) add(serviceID string, f *Future) *Future {
	if err := fc.store.Add(serviceID, f, gocache.NoExpiration); err != nil {
		if existing, ok := fc.get(serviceID); ok {
			return existing
		}
	}
	return f
}

func (fc *futureCache) count() int { return fc.store.ItemCount() }
