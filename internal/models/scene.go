package models

// Coordinate is the canonical record for a grid position.
// ID is derived from Position, so a position always maps to the same record.
type Coordinate struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Name     string   `json:"name,omitempty"`
}

// Target is a labeled point object placed on the grid.
type Target struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Name     string   `json:"name,omitempty"`
	Position Position `json:"position"`
}

// PathShape is the geometric kind of a path.
type PathShape string

const (
	PathShapeLine  PathShape = "line"
	PathShapeCurve PathShape = "curve"
)

// Path is a straight-line path materialized from a start and an end point.
// LitTiles holds every grid point the line passes through, start and end included.
type Path struct {
	ID       string     `json:"id"`
	Label    string     `json:"label"`
	Name     string     `json:"name,omitempty"`
	PathType string     `json:"pathType,omitempty"`
	Shape    PathShape  `json:"shape"`
	LitTiles []Position `json:"litTiles"`
}

// ItemType identifies which kind of scene item a relationship query is about.
type ItemType string

const (
	ItemTarget     ItemType = "target"
	ItemPath       ItemType = "path"
	ItemCoordinate ItemType = "coordinate"
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTarget, ItemPath, ItemCoordinate:
		return true
	}
	return false
}

// RelatedItem is one entry of the details drawer's "related items" list.
type RelatedItem struct {
	Type ItemType `json:"type"`
	ID   string   `json:"id"`
	Name string   `json:"name"`
}

// Key returns the "{type}:{id}" composite key used for deduplication.
func (r RelatedItem) Key() string {
	return string(r.Type) + ":" + r.ID
}

// RelationshipCounts summarizes how many items of each kind relate to an item.
type RelationshipCounts struct {
	Targets     int `json:"targets"`
	Paths       int `json:"paths"`
	Coordinates int `json:"coordinates"`
}
