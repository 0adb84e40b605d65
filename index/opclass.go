package index

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
)

// OpClassCache memoizes the operator class names of a server. The set is
// static for the lifetime of a connection, so it is fetched once and never
// invalidated. Concurrent first callers share a single fetch; a failed fetch
// is retried by the next caller.
type OpClassCache struct {
	fetch func(context.Context) ([]string, error)

	group  singleflight.Group
	mu     sync.RWMutex
	names  []string
	loaded bool
}

// NewOpClassCache creates a cache backed by fetch.
func NewOpClassCache(fetch func(context.Context) ([]string, error)) *OpClassCache {
	return &OpClassCache{fetch: fetch}
}

// Names returns the sorted, de-duplicated operator class names.
func (c *OpClassCache) Names(ctx context.Context) ([]string, error) {
	if names, ok := c.cached(); ok {
		return names, nil
	}

	v, err, _ := c.group.Do("opclasses", func() (any, error) {
		if names, ok := c.cached(); ok {
			return names, nil
		}
		names, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}
		names = slices.Compact(slices.Sorted(slices.Values(names)))

		c.mu.Lock()
		c.names = names
		c.loaded = true
		c.mu.Unlock()
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]string)), nil
}

func (c *OpClassCache) cached() ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, false
	}
	return slices.Clone(c.names), true
}
