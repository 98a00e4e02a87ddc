package geometry

import (
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/target-creator/backend/internal/models"
)

// DefaultEndpointCacheExpiration is how long a computed endpoint set is kept.
const DefaultEndpointCacheExpiration = 10 * time.Minute

// EndpointCache memoizes GetValidLineEndpoints per (rounded start, grid size).
// A nil *EndpointCache computes without caching.
type EndpointCache struct {
	cache *gocache.Cache
}

// NewEndpointCache creates a cache whose entries expire after expiration.
func NewEndpointCache(expiration time.Duration) *EndpointCache {
	if expiration <= 0 {
		expiration = DefaultEndpointCacheExpiration
	}
	return &EndpointCache{
		cache: gocache.New(expiration, 2*expiration),
	}
}

func endpointKey(start models.Position, gridSize int) string {
	return strconv.Itoa(gridSize) + "|" + RoundPosition(start).Key()
}

// ValidEndpoints returns the valid line endpoints from start. The returned
// slice is a copy and may be modified by the caller.
func (c *EndpointCache) ValidEndpoints(start models.Position, gridSize int) []models.Position {
	if c == nil {
		return GetValidLineEndpoints(start, gridSize)
	}

	key := endpointKey(start, gridSize)
	if v, found := c.cache.Get(key); found {
		if endpoints, ok := v.([]models.Position); ok {
			return append([]models.Position(nil), endpoints...)
		}
	}

	endpoints := GetValidLineEndpoints(start, gridSize)
	c.cache.Set(key, endpoints, gocache.DefaultExpiration)
	return append([]models.Position(nil), endpoints...)
}

// IsValidEndpoint reports whether candidate is one of the valid endpoints from start.
func (c *EndpointCache) IsValidEndpoint(start, candidate models.Position, gridSize int) bool {
	return ContainsPosition(c.ValidEndpoints(start, gridSize), candidate)
}

// Len returns the number of cached entries.
func (c *EndpointCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.ItemCount()
}

// Flush drops every cached entry.
func (c *EndpointCache) Flush() {
	if c != nil {
		c.cache.Flush()
	}
}
