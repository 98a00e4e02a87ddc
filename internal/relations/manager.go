// Package relations tracks links between targets, paths and coordinates.
//
// The manager is a pure id index: it holds no entity data. Targets attach to
// exactly one coordinate; paths attach to a set of coordinates. Reverse
// indexes (coordinate to targets, coordinate to paths) are kept in lock-step
// with the forward maps and empty reverse sets are pruned.
package relations

import (
	"github.com/target-creator/backend/internal/models"
)

// Manager is not safe for concurrent use.
type Manager struct {
	targetCoord  map[string]string
	pathCoords   map[string]*idSet
	coordTargets map[string]*idSet
	coordPaths   map[string]*idSet
}

// NewManager creates an empty relationship index.
func NewManager() *Manager {
	m := &Manager{}
	m.Clear()
	return m
}

// Clear drops every relationship.
func (m *Manager) Clear() {
	m.targetCoord = make(map[string]string)
	m.pathCoords = make(map[string]*idSet)
	m.coordTargets = make(map[string]*idSet)
	m.coordPaths = make(map[string]*idSet)
}

// AttachTargetToCoordinate links a target to a coordinate, replacing any
// coordinate the target was previously attached to.
func (m *Manager) AttachTargetToCoordinate(targetID, coordinateID string) {
	if prev, ok := m.targetCoord[targetID]; ok {
		if prev == coordinateID {
			return
		}
		m.DetachTargetFromCoordinate(targetID, prev)
	}

	m.targetCoord[targetID] = coordinateID
	addReverse(m.coordTargets, coordinateID, targetID)
}

// DetachTargetFromCoordinate removes a single target link. It is a no-op if
// the target is not attached to that coordinate.
func (m *Manager) DetachTargetFromCoordinate(targetID, coordinateID string) {
	if m.targetCoord[targetID] != coordinateID {
		return
	}
	delete(m.targetCoord, targetID)
	removeReverse(m.coordTargets, coordinateID, targetID)
}

// AttachPathToCoordinates replaces the path's whole coordinate set.
// Duplicate ids collapse.
func (m *Manager) AttachPathToCoordinates(pathID string, coordinateIDs []string) {
	m.RemovePathRelationships(pathID)

	set := newIDSet()
	for _, cid := range coordinateIDs {
		set.add(cid)
		addReverse(m.coordPaths, cid, pathID)
	}
	m.pathCoords[pathID] = set
}

// DetachPathFromCoordinate removes one coordinate from a path's set.
func (m *Manager) DetachPathFromCoordinate(pathID, coordinateID string) {
	set, ok := m.pathCoords[pathID]
	if !ok || !set.has(coordinateID) {
		return
	}
	set.remove(coordinateID)
	if set.len() == 0 {
		delete(m.pathCoords, pathID)
	}
	removeReverse(m.coordPaths, coordinateID, pathID)
}

// RemoveTargetRelationships detaches a target from its coordinate.
func (m *Manager) RemoveTargetRelationships(targetID string) {
	if cid, ok := m.targetCoord[targetID]; ok {
		m.DetachTargetFromCoordinate(targetID, cid)
	}
}

// RemovePathRelationships detaches a path from every coordinate.
func (m *Manager) RemovePathRelationships(pathID string) {
	set, ok := m.pathCoords[pathID]
	if !ok {
		return
	}
	for _, cid := range set.list() {
		removeReverse(m.coordPaths, cid, pathID)
	}
	delete(m.pathCoords, pathID)
}

// RemoveCoordinateRelationships detaches every target and path from a
// coordinate.
func (m *Manager) RemoveCoordinateRelationships(coordinateID string) {
	for _, tid := range m.GetCoordinateTargets(coordinateID) {
		m.DetachTargetFromCoordinate(tid, coordinateID)
	}
	for _, pid := range m.GetCoordinatePaths(coordinateID) {
		m.DetachPathFromCoordinate(pid, coordinateID)
	}
}

// GetTargetCoordinates returns the target's coordinate as a zero- or
// one-element slice.
func (m *Manager) GetTargetCoordinates(targetID string) []string {
	if cid, ok := m.targetCoord[targetID]; ok {
		return []string{cid}
	}
	return []string{}
}

// GetPathCoordinates returns the path's coordinates in attach order.
func (m *Manager) GetPathCoordinates(pathID string) []string {
	return listOf(m.pathCoords[pathID])
}

// GetCoordinateTargets returns the targets attached to a coordinate.
func (m *Manager) GetCoordinateTargets(coordinateID string) []string {
	return listOf(m.coordTargets[coordinateID])
}

// GetCoordinatePaths returns the paths passing through a coordinate.
func (m *Manager) GetCoordinatePaths(coordinateID string) []string {
	return listOf(m.coordPaths[coordinateID])
}

// Snapshot holds the entity collections GetRelatedItems joins names from.
type Snapshot struct {
	Coordinates []models.Coordinate
	Targets     []models.Target
	Paths       []models.Path
}

// GetRelatedItems projects the relationships of one item into display
// entries, joining names from snapshot. For a target it returns its
// coordinate and the paths through that coordinate; for a path its
// coordinates and the targets on them; for a coordinate its targets and
// paths. Results are deduplicated by type and id.
func (m *Manager) GetRelatedItems(itemType models.ItemType, itemID string, snapshot Snapshot) []models.RelatedItem {
	names := newNameIndex(snapshot)
	var out []models.RelatedItem
	seen := make(map[string]struct{})
	add := func(t models.ItemType, id string) {
		item := models.RelatedItem{Type: t, ID: id, Name: names.lookup(t, id)}
		if _, ok := seen[item.Key()]; ok {
			return
		}
		seen[item.Key()] = struct{}{}
		out = append(out, item)
	}

	switch itemType {
	case models.ItemTarget:
		for _, cid := range m.GetTargetCoordinates(itemID) {
			add(models.ItemCoordinate, cid)
			for _, pid := range m.GetCoordinatePaths(cid) {
				add(models.ItemPath, pid)
			}
		}
	case models.ItemPath:
		for _, cid := range m.GetPathCoordinates(itemID) {
			add(models.ItemCoordinate, cid)
			for _, tid := range m.GetCoordinateTargets(cid) {
				add(models.ItemTarget, tid)
			}
		}
	case models.ItemCoordinate:
		for _, tid := range m.GetCoordinateTargets(itemID) {
			add(models.ItemTarget, tid)
		}
		for _, pid := range m.GetCoordinatePaths(itemID) {
			add(models.ItemPath, pid)
		}
	}

	if out == nil {
		return []models.RelatedItem{}
	}
	return out
}

// GetRelationshipCounts counts an item's relations. For a path, Targets is
// the number of distinct targets found on any of its coordinates.
// Coordinates never relate to other coordinates.
func (m *Manager) GetRelationshipCounts(itemType models.ItemType, itemID string) models.RelationshipCounts {
	var counts models.RelationshipCounts

	switch itemType {
	case models.ItemTarget:
		counts.Coordinates = len(m.GetTargetCoordinates(itemID))
	case models.ItemPath:
		coords := m.GetPathCoordinates(itemID)
		counts.Coordinates = len(coords)
		targets := make(map[string]struct{})
		for _, cid := range coords {
			for _, tid := range m.GetCoordinateTargets(cid) {
				targets[tid] = struct{}{}
			}
		}
		counts.Targets = len(targets)
	case models.ItemCoordinate:
		counts.Targets = len(m.GetCoordinateTargets(itemID))
		counts.Paths = len(m.GetCoordinatePaths(itemID))
	}

	return counts
}

func addReverse(index map[string]*idSet, key, id string) {
	set, ok := index[key]
	if !ok {
		set = newIDSet()
		index[key] = set
	}
	set.add(id)
}

func removeReverse(index map[string]*idSet, key, id string) {
	set, ok := index[key]
	if !ok {
		return
	}
	set.remove(id)
	if set.len() == 0 {
		delete(index, key)
	}
}

func listOf(set *idSet) []string {
	if set == nil {
		return []string{}
	}
	return set.list()
}
