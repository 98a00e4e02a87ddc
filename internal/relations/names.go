package relations

import (
	"github.com/target-creator/backend/internal/models"
)

type nameIndex map[string]string

func newNameIndex(s Snapshot) nameIndex {
	idx := make(nameIndex, len(s.Coordinates)+len(s.Targets)+len(s.Paths))
	for _, c := range s.Coordinates {
		idx[key(models.ItemCoordinate, c.ID)] = c.Name
	}
	for _, t := range s.Targets {
		idx[key(models.ItemTarget, t.ID)] = firstNonEmpty(t.Name, t.Label)
	}
	for _, p := range s.Paths {
		idx[key(models.ItemPath, p.ID)] = firstNonEmpty(p.Name, p.Label)
	}
	return idx
}

// lookup falls back to the id for items missing from the snapshot.
func (n nameIndex) lookup(t models.ItemType, id string) string {
	if name, ok := n[key(t, id)]; ok && name != "" {
		return name
	}
	return id
}

func key(t models.ItemType, id string) string {
	return string(t) + ":" + id
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
