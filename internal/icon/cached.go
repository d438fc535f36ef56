package icon

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedResolver memoizes Resolve results. Window enumeration resolves the
// same application ids on every query, so repeated lookups skip the
// filesystem walk.
type CachedResolver struct {
	resolver *Resolver
	cache    *lru.Cache[string, string]
}

// NewCached wraps r with an LRU cache holding up to size lookups.
func NewCached(r *Resolver, size int) (*CachedResolver, error) {
	if r == nil {
		return nil, fmt.Errorf("resolver cannot be nil")
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon cache: %w", err)
	}
	return &CachedResolver{resolver: r, cache: c}, nil
}

// Resolve returns the cached resolution for name, resolving on a miss.
func (c *CachedResolver) Resolve(name string) string {
	if path, ok := c.cache.Get(name); ok {
		return path
	}
	path := c.resolver.Resolve(name)
	c.cache.Add(name, path)
	return path
}

// Len returns the number of memoized lookups.
func (c *CachedResolver) Len() int {
	return c.cache.Len()
}
