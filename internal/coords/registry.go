// Package coords implements the coordinate registry: the canonical table of
// coordinate identity keyed by exact position.
package coords

import (
	"github.com/target-creator/backend/internal/models"
)

// GenerateID returns the deterministic id for a position: coord_{x}_{y}_{z}.
func GenerateID(p models.Position) string {
	return "coord_" + models.FormatComponent(p[0]) + "_" +
		models.FormatComponent(p[1]) + "_" +
		models.FormatComponent(p[2])
}

// Registry is a positional singleton table: a position always resolves to the
// same coordinate. The registry owns the only mutable copy of each record;
// callers receive values and change names through UpdateName.
//
// Registry is not safe for concurrent use.
type Registry struct {
	byID  map[string]*models.Coordinate
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]*models.Coordinate),
	}
}

// GetOrCreate returns the coordinate at position, creating it on first use.
func (r *Registry) GetOrCreate(position models.Position) models.Coordinate {
	id := GenerateID(position)
	if c, ok := r.byID[id]; ok {
		return *c
	}

	c := &models.Coordinate{ID: id, Position: position}
	r.byID[id] = c
	r.order = append(r.order, id)
	return *c
}

// GetByID returns the coordinate with id, if registered.
func (r *Registry) GetByID(id string) (models.Coordinate, bool) {
	c, ok := r.byID[id]
	if !ok {
		return models.Coordinate{}, false
	}
	return *c, true
}

// GetByPosition returns the coordinate at position, if registered.
func (r *Registry) GetByPosition(position models.Position) (models.Coordinate, bool) {
	return r.GetByID(GenerateID(position))
}

// GetByPositions returns the registered coordinates among positions, in input
// order. Unknown positions are skipped.
func (r *Registry) GetByPositions(positions []models.Position) []models.Coordinate {
	out := make([]models.Coordinate, 0, len(positions))
	for _, p := range positions {
		if c, ok := r.GetByPosition(p); ok {
			out = append(out, c)
		}
	}
	return out
}

// GetAll returns a snapshot of every coordinate in insertion order.
func (r *Registry) GetAll() []models.Coordinate {
	out := make([]models.Coordinate, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

// UpdateName renames a coordinate. Unknown ids are ignored.
func (r *Registry) UpdateName(id, name string) {
	if c, ok := r.byID[id]; ok {
		c.Name = name
	}
}

// Remove deletes a coordinate and reports whether it existed.
func (r *Registry) Remove(id string) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of registered coordinates.
func (r *Registry) Len() int {
	return len(r.byID)
}

// Clear removes every coordinate.
func (r *Registry) Clear() {
	r.byID = make(map[string]*models.Coordinate)
	r.order = nil
}
