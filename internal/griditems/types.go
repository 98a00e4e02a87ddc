package griditems

import (
	"github.com/target-creator/backend/internal/models"
)

// Target is owned by exactly one path.
type Target struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	PathID string `json:"pathId"`
}

// Path carries an ordered coordinate sequence and points back at its target.
// TargetID may name a target that does not exist yet.
type Path struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	TargetID    string       `json:"targetId"`
	Coordinates []Coordinate `json:"coordinates"`
}

// PathSummary is the back-reference form of a path embedded in a Coordinate.
type PathSummary struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	TargetID string `json:"targetId"`
}

// Coordinate is a stored grid point with back-references computed on read.
type Coordinate struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Position models.Position `json:"position"`
	Paths    []PathSummary   `json:"paths"`
	Targets  []Target        `json:"targets"`
}

// CoordinateInput references a coordinate by id, by position, or both.
type CoordinateInput struct {
	ID       string          `json:"id,omitempty"`
	Label    string          `json:"label"`
	Position models.Position `json:"position"`
}

// TargetInput describes a target to create. An empty ID is synthesized.
type TargetInput struct {
	ID     string `json:"id,omitempty"`
	Label  string `json:"label"`
	PathID string `json:"pathId"`
}

// PathInput describes a path to create. An empty ID is synthesized.
type PathInput struct {
	ID          string            `json:"id,omitempty"`
	Label       string            `json:"label"`
	TargetID    string            `json:"targetId"`
	Coordinates []CoordinateInput `json:"coordinates"`
}

// TargetUpdate holds optional target changes; nil fields are left alone.
type TargetUpdate struct {
	Label  *string `json:"label,omitempty"`
	PathID *string `json:"pathId,omitempty"`
}

// PathUpdate holds optional path changes; nil fields are left alone.
type PathUpdate struct {
	Label       *string            `json:"label,omitempty"`
	TargetID    *string            `json:"targetId,omitempty"`
	Coordinates *[]CoordinateInput `json:"coordinates,omitempty"`
}

type pathRecord struct {
	id            string
	label         string
	targetID      string
	coordinateIDs []string
}

type coordinateRecord struct {
	id       string
	label    string
	position models.Position
}
