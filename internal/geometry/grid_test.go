package geometry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target-creator/backend/internal/models"
)

func TestGenerateGridPoints(t *testing.T) {
	points := GenerateGridPoints(4)

	require.Len(t, points, 25) // -2..2 on both axes
	assert.Equal(t, models.Position{-2, 0, -2}, points[0])
	assert.Equal(t, models.Position{2, 0, 2}, points[len(points)-1])
	assert.Nil(t, GenerateGridPoints(0))
}

func TestGetValidLineEndpoints(t *testing.T) {
	endpoints := GetValidLineEndpoints(models.Position{0, 0, 0}, 4)

	// 8 directions, 2 steps each before leaving a -2..2 grid.
	assert.Len(t, endpoints, 16)
	assert.True(t, ContainsPosition(endpoints, models.Position{2, 0, 0}))
	assert.True(t, ContainsPosition(endpoints, models.Position{2, 0, 2}))
	assert.True(t, ContainsPosition(endpoints, models.Position{-1, 0, 1}))
	assert.False(t, ContainsPosition(endpoints, models.Position{1, 0, 2}), "knight move is not a line")
	assert.False(t, ContainsPosition(endpoints, models.Position{0, 0, 0}), "start is excluded")
}

func TestGetValidLineEndpointsFromCorner(t *testing.T) {
	endpoints := GetValidLineEndpoints(models.Position{2, 0, 2}, 4)

	// Only west, north and the inward diagonal stay on the grid.
	assert.Len(t, endpoints, 12)
	for _, p := range endpoints {
		assert.True(t, InBounds(p, 4), "endpoint %v out of bounds", p)
	}
}

func TestGetValidLineEndpointsKeepsHeight(t *testing.T) {
	for _, p := range GetValidLineEndpoints(models.Position{0, 3, 0}, 6) {
		assert.Equal(t, 3.0, p.Y())
	}
}

func TestEndpointCache(t *testing.T) {
	c := NewEndpointCache(time.Minute)
	start := models.Position{0.2, 0, -0.1}

	first := c.ValidEndpoints(start, 10)
	assert.Equal(t, 1, c.Len())

	// Same rounded start hits the same entry.
	second := c.ValidEndpoints(models.Position{0, 0, 0}, 10)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, first, second)

	// Mutating a returned slice must not leak into the cache.
	first[0] = models.Position{99, 99, 99}
	assert.NotEqual(t, first[0], c.ValidEndpoints(start, 10)[0])

	assert.True(t, c.IsValidEndpoint(start, models.Position{3, 0, 3}, 10))
	assert.False(t, c.IsValidEndpoint(start, models.Position{1, 0, 2}, 10))

	c.Flush()
	assert.Equal(t, 0, c.Len())
}

func TestNilEndpointCacheComputes(t *testing.T) {
	var c *EndpointCache
	assert.Len(t, c.ValidEndpoints(models.Position{0, 0, 0}, 4), 16)
	assert.Equal(t, 0, c.Len())
}
