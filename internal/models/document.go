package models

import "time"

// SceneDocumentVersion is written into every exported document.
const SceneDocumentVersion = "1.0"

// SceneDocument is the denormalized dump of a scene used by import and export.
// It carries no invariants of its own; importing rebuilds coordinates and links.
type SceneDocument struct {
	Version     string             `json:"version" yaml:"version" msgpack:"version"`
	ExportedAt  time.Time          `json:"exportedAt" yaml:"exported_at" msgpack:"exportedAt"`
	GridSize    int                `json:"gridSize,omitempty" yaml:"grid_size,omitempty" msgpack:"gridSize,omitempty"`
	Coordinates []CoordinateRecord `json:"coordinates" yaml:"coordinates" msgpack:"coordinates"`
	Targets     []TargetRecord     `json:"targets" yaml:"targets" msgpack:"targets"`
	Paths       []PathRecord       `json:"paths" yaml:"paths" msgpack:"paths"`
}

// CoordinateRecord is a coordinate as it appears in an exported document.
type CoordinateRecord struct {
	ID       string   `json:"id" yaml:"id" msgpack:"id"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Position Position `json:"position" yaml:"position" msgpack:"position"`
}

// TargetRecord is a target plus the id of the coordinate it is attached to.
type TargetRecord struct {
	ID           string   `json:"id" yaml:"id" msgpack:"id"`
	Label        string   `json:"label" yaml:"label" msgpack:"label"`
	Name         string   `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Position     Position `json:"position" yaml:"position" msgpack:"position"`
	CoordinateID string   `json:"coordinateId,omitempty" yaml:"coordinate_id,omitempty" msgpack:"coordinateId,omitempty"`
}

// PathRecord is a path plus the ids of the coordinates it passes through.
type PathRecord struct {
	ID            string     `json:"id" yaml:"id" msgpack:"id"`
	Label         string     `json:"label" yaml:"label" msgpack:"label"`
	Name          string     `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	PathType      string     `json:"pathType,omitempty" yaml:"path_type,omitempty" msgpack:"pathType,omitempty"`
	Shape         PathShape  `json:"shape,omitempty" yaml:"shape,omitempty" msgpack:"shape,omitempty"`
	LitTiles      []Position `json:"litTiles" yaml:"lit_tiles" msgpack:"litTiles"`
	CoordinateIDs []string   `json:"coordinateIds,omitempty" yaml:"coordinate_ids,omitempty" msgpack:"coordinateIds,omitempty"`
}

// NewSceneDocument returns an empty document stamped with the current version.
func NewSceneDocument() *SceneDocument {
	return &SceneDocument{
		Version:     SceneDocumentVersion,
		ExportedAt:  time.Now().UTC(),
		Coordinates: make([]CoordinateRecord, 0),
		Targets:     make([]TargetRecord, 0),
		Paths:       make([]PathRecord, 0),
	}
}

// ImportSummary reports how many records an import applied.
type ImportSummary struct {
	Coordinates int `json:"coordinates"`
	Targets     int `json:"targets"`
	Paths       int `json:"paths"`
}
