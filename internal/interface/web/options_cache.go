package web

import (
	"sort"
	"sync"

	"avias-service/internal/domain/entity"
)

// OptionsCache holds the route options of the latest ingestion run so
// the options form can populate its selects without re-reading the
// snapshot. It is replaced wholesale on every ingestion, never mutated
// in place.
type OptionsCache struct {
	mu      sync.RWMutex
	options entity.RouteOptions
}

// NewOptionsCache creates an empty cache.
func NewOptionsCache() *OptionsCache {
	return &OptionsCache{options: entity.EmptyRouteOptions()}
}

// Set replaces the cached options.
func (c *OptionsCache) Set(options entity.RouteOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = options
}

// Sources returns the cached source values in sorted order.
func (c *OptionsCache) Sources() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.options.Sources)
}

// Destinations returns the cached destination values in sorted order.
func (c *OptionsCache) Destinations() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.options.Destinations)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
