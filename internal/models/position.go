// Package models contains domain types for the Target Creator editor.
package models

import (
	"math"
	"strconv"
	"strings"
)

// Position is a point on the 3D grid, serialized as [x, y, z].
type Position [3]float64

// X returns the x component.
func (p Position) X() float64 { return p[0] }

// Y returns the y component.
func (p Position) Y() float64 { return p[1] }

// Z returns the z component.
func (p Position) Z() float64 { return p[2] }

// Key returns a stable string key for map lookups ("x,y,z").
func (p Position) Key() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = FormatComponent(v)
	}
	return strings.Join(parts, ",")
}

// IsFinite reports whether every component is a finite number.
func (p Position) IsFinite() bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FormatComponent renders a coordinate component the way the editor prints
// numbers: shortest representation, no trailing zeros, and -0 as 0.
func FormatComponent(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
