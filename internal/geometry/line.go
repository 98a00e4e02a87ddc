// Package geometry holds the pure grid helpers used by path creation:
// straight-line interpolation, endpoint validation and grid enumeration.
package geometry

import (
	"math"

	"github.com/target-creator/backend/internal/models"
)

// PositionsEqual reports whether a and b are the same point.
func PositionsEqual(a, b models.Position) bool {
	return a[0] == b[0] && a[1] == b[1] && a[2] == b[2]
}

// RoundPosition snaps every component to the nearest integer, halves rounding up.
func RoundPosition(p models.Position) models.Position {
	var out models.Position
	for i, v := range p {
		out[i] = roundHalfUp(v)
	}
	return out
}

func roundHalfUp(v float64) float64 {
	r := math.Floor(v + 0.5)
	if r == 0 {
		return 0 // normalizes -0
	}
	return r
}

// CalculateLinePoints returns every grid point on the straight line from start
// to end, both included. Interior points are rounded to the grid and duplicates
// are dropped. Equal endpoints give a single point; non-finite input falls back
// to [start, end].
func CalculateLinePoints(start, end models.Position) []models.Position {
	if !start.IsFinite() || !end.IsFinite() {
		return []models.Position{start, end}
	}
	if PositionsEqual(start, end) {
		return []models.Position{start}
	}

	var delta models.Position
	maxAbs := 0.0
	for i := range delta {
		delta[i] = end[i] - start[i]
		maxAbs = math.Max(maxAbs, math.Abs(delta[i]))
	}
	steps := int(math.Ceil(maxAbs))
	if steps < 1 {
		steps = 1
	}

	points := make([]models.Position, 0, steps+1)
	seen := make(map[string]struct{}, steps+1)
	add := func(p models.Position) {
		k := p.Key()
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		points = append(points, p)
	}

	add(start)
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		var p models.Position
		for axis := range p {
			p[axis] = roundHalfUp(start[axis] + delta[axis]*t)
		}
		add(p)
	}
	add(end)

	if len(points) < 2 {
		return []models.Position{start, end}
	}
	return points
}
