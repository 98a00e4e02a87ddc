package exchange

import (
	"fmt"
	"strings"

	"github.com/target-creator/backend/internal/models"
)

// ValidationError lists every problem found in a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid scene document: %s", strings.Join(e.Problems, "; "))
}

// ValidateDocument checks a decoded document for referential consistency:
// ids are unique per kind, positions are finite, target coordinate ids
// resolve, and every path has at least one tile or resolvable coordinate.
func ValidateDocument(doc *models.SceneDocument) error {
	if doc == nil {
		return &ValidationError{Problems: []string{"document is empty"}}
	}

	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	coords := make(map[string]struct{}, len(doc.Coordinates))
	for i, c := range doc.Coordinates {
		if c.ID == "" {
			addf("coordinate %d has no id", i)
		} else if _, dup := coords[c.ID]; dup {
			addf("duplicate coordinate id %s", c.ID)
		}
		coords[c.ID] = struct{}{}
		if !c.Position.IsFinite() {
			addf("coordinate %s has a non-finite position", c.ID)
		}
	}

	targets := make(map[string]struct{}, len(doc.Targets))
	for _, t := range doc.Targets {
		if t.ID != "" {
			if _, dup := targets[t.ID]; dup {
				addf("duplicate target id %s", t.ID)
			}
			targets[t.ID] = struct{}{}
		}
		if !t.Position.IsFinite() {
			addf("target %s has a non-finite position", t.ID)
		}
		if t.CoordinateID != "" {
			if _, ok := coords[t.CoordinateID]; !ok {
				addf("target %s references unknown coordinate %s", t.ID, t.CoordinateID)
			}
		}
	}

	paths := make(map[string]struct{}, len(doc.Paths))
	for _, p := range doc.Paths {
		if p.ID != "" {
			if _, dup := paths[p.ID]; dup {
				addf("duplicate path id %s", p.ID)
			}
			paths[p.ID] = struct{}{}
		}
		if p.Shape != "" && p.Shape != models.PathShapeLine {
			addf("path %s has unsupported shape %s", p.ID, p.Shape)
		}
		for _, tile := range p.LitTiles {
			if !tile.IsFinite() {
				addf("path %s has a non-finite tile", p.ID)
				break
			}
		}
		resolvable := 0
		for _, cid := range p.CoordinateIDs {
			if _, ok := coords[cid]; ok {
				resolvable++
			} else {
				addf("path %s references unknown coordinate %s", p.ID, cid)
			}
		}
		if len(p.LitTiles) == 0 && resolvable == 0 {
			addf("path %s has no tiles", p.ID)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
