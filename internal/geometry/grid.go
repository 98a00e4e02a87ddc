package geometry

import "github.com/target-creator/backend/internal/models"

// DefaultGridSize is the editor's default grid size.
const DefaultGridSize = 20

// lineDirections are the eight straight-line directions on the XZ plane.
var lineDirections = [8][2]float64{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// HalfExtent is the largest absolute X or Z value inside a grid of gridSize.
func HalfExtent(gridSize int) float64 {
	return float64(gridSize / 2)
}

// InBounds reports whether p lies on a grid of gridSize (X and Z within
// -gridSize/2..gridSize/2; Y is unbounded).
func InBounds(p models.Position, gridSize int) bool {
	if gridSize <= 0 {
		return false
	}
	half := HalfExtent(gridSize)
	return p[0] >= -half && p[0] <= half && p[2] >= -half && p[2] <= half
}

// GenerateGridPoints enumerates every integer point of the grid at Y=0.
func GenerateGridPoints(gridSize int) []models.Position {
	if gridSize <= 0 {
		return nil
	}
	half := int(HalfExtent(gridSize))
	side := 2*half + 1
	points := make([]models.Position, 0, side*side)
	for x := -half; x <= half; x++ {
		for z := -half; z <= half; z++ {
			points = append(points, models.Position{float64(x), 0, float64(z)})
		}
	}
	return points
}

// GetValidLineEndpoints lists every grid point reachable from start by a
// horizontal, vertical or diagonal line on the XZ plane, start excluded.
// The start is rounded to the grid first and its Y is kept.
func GetValidLineEndpoints(start models.Position, gridSize int) []models.Position {
	if gridSize <= 0 || !start.IsFinite() {
		return nil
	}
	s := RoundPosition(start)

	var endpoints []models.Position
	for _, dir := range lineDirections {
		for k := 1; ; k++ {
			p := models.Position{s[0] + dir[0]*float64(k), s[1], s[2] + dir[1]*float64(k)}
			if !InBounds(p, gridSize) {
				break
			}
			endpoints = append(endpoints, p)
		}
	}
	return endpoints
}

// ContainsPosition reports whether p is in list.
func ContainsPosition(list []models.Position, p models.Position) bool {
	for _, q := range list {
		if PositionsEqual(q, p) {
			return true
		}
	}
	return false
}
