package relations

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/target-creator/backend/internal/models"
)

func TestAttachTargetEnforcesOneCoordinate(t *testing.T) {
	m := NewManager()

	m.AttachTargetToCoordinate("t1", "c1")
	m.AttachTargetToCoordinate("t1", "c2")

	assert.Equal(t, []string{"c2"}, m.GetTargetCoordinates("t1"))
	assert.Empty(t, m.GetCoordinateTargets("c1"))
	assert.Equal(t, []string{"t1"}, m.GetCoordinateTargets("c2"))
	_, exists := m.coordTargets["c1"]
	assert.False(t, exists, "empty reverse set should be pruned")
}

func TestAttachPathReplacesSet(t *testing.T) {
	m := NewManager()

	m.AttachPathToCoordinates("p1", []string{"c1", "c2", "c2"})
	assert.Equal(t, []string{"c1", "c2"}, m.GetPathCoordinates("p1"))

	m.AttachPathToCoordinates("p1", []string{"c3"})
	assert.Equal(t, []string{"c3"}, m.GetPathCoordinates("p1"))
	assert.Empty(t, m.GetCoordinatePaths("c1"))
	assert.Empty(t, m.GetCoordinatePaths("c2"))
	assert.Equal(t, []string{"p1"}, m.GetCoordinatePaths("c3"))
}

func TestDetachAndRemove(t *testing.T) {
	m := NewManager()
	m.AttachPathToCoordinates("p1", []string{"c1", "c2"})
	m.AttachTargetToCoordinate("t1", "c1")

	m.DetachPathFromCoordinate("p1", "c1")
	assert.Equal(t, []string{"c2"}, m.GetPathCoordinates("p1"))
	assert.Empty(t, m.GetCoordinatePaths("c1"))

	// Detaching from a coordinate the target is not on is a no-op.
	m.DetachTargetFromCoordinate("t1", "c9")
	assert.Equal(t, []string{"c1"}, m.GetTargetCoordinates("t1"))

	m.RemoveTargetRelationships("t1")
	m.RemovePathRelationships("p1")
	assert.Empty(t, m.GetTargetCoordinates("t1"))
	assert.Empty(t, m.GetPathCoordinates("p1"))
	assert.Empty(t, m.coordPaths)
	assert.Empty(t, m.coordTargets)
}

func TestRemoveCoordinateRelationships(t *testing.T) {
	m := NewManager()
	m.AttachPathToCoordinates("p1", []string{"c1", "c2"})
	m.AttachTargetToCoordinate("t1", "c1")

	m.RemoveCoordinateRelationships("c1")

	assert.Empty(t, m.GetTargetCoordinates("t1"))
	assert.Equal(t, []string{"c2"}, m.GetPathCoordinates("p1"))
}

func TestLookupsOnUnknownIDs(t *testing.T) {
	m := NewManager()

	assert.NotNil(t, m.GetTargetCoordinates("nope"))
	assert.NotNil(t, m.GetPathCoordinates("nope"))
	assert.NotNil(t, m.GetCoordinateTargets("nope"))
	assert.NotNil(t, m.GetCoordinatePaths("nope"))
	assert.Empty(t, m.GetRelatedItems(models.ItemPath, "nope", Snapshot{}))
	assert.Equal(t, models.RelationshipCounts{}, m.GetRelationshipCounts(models.ItemTarget, "nope"))
}

func TestGetRelatedItems(t *testing.T) {
	m := NewManager()
	m.AttachPathToCoordinates("p1", []string{"c1", "c2"})
	m.AttachPathToCoordinates("p2", []string{"c2"})
	m.AttachTargetToCoordinate("t1", "c2")

	snap := Snapshot{
		Coordinates: []models.Coordinate{{ID: "c1", Name: "Gate"}, {ID: "c2"}},
		Targets:     []models.Target{{ID: "t1", Label: "Crate"}},
		Paths:       []models.Path{{ID: "p1", Label: "Corridor"}, {ID: "p2", Label: "Ramp", Name: "Loading ramp"}},
	}

	t.Run("target", func(t *testing.T) {
		got := m.GetRelatedItems(models.ItemTarget, "t1", snap)
		assert.Equal(t, []models.RelatedItem{
			{Type: models.ItemCoordinate, ID: "c2", Name: "c2"},
			{Type: models.ItemPath, ID: "p1", Name: "Corridor"},
			{Type: models.ItemPath, ID: "p2", Name: "Loading ramp"},
		}, got)
	})

	t.Run("path", func(t *testing.T) {
		got := m.GetRelatedItems(models.ItemPath, "p1", snap)
		assert.Equal(t, []models.RelatedItem{
			{Type: models.ItemCoordinate, ID: "c1", Name: "Gate"},
			{Type: models.ItemCoordinate, ID: "c2", Name: "c2"},
			{Type: models.ItemTarget, ID: "t1", Name: "Crate"},
		}, got)
	})

	t.Run("coordinate", func(t *testing.T) {
		got := m.GetRelatedItems(models.ItemCoordinate, "c2", snap)
		assert.Equal(t, []models.RelatedItem{
			{Type: models.ItemTarget, ID: "t1", Name: "Crate"},
			{Type: models.ItemPath, ID: "p1", Name: "Corridor"},
			{Type: models.ItemPath, ID: "p2", Name: "Loading ramp"},
		}, got)
	})
}

func TestGetRelationshipCounts(t *testing.T) {
	m := NewManager()
	m.AttachPathToCoordinates("p1", []string{"c1", "c2", "c3"})
	m.AttachTargetToCoordinate("t1", "c1")
	m.AttachTargetToCoordinate("t2", "c3")
	m.AttachPathToCoordinates("p2", []string{"c3"})

	assert.Equal(t, models.RelationshipCounts{Coordinates: 1}, m.GetRelationshipCounts(models.ItemTarget, "t1"))
	assert.Equal(t, models.RelationshipCounts{Targets: 2, Coordinates: 3}, m.GetRelationshipCounts(models.ItemPath, "p1"))
	assert.Equal(t, models.RelationshipCounts{Targets: 1, Paths: 2}, m.GetRelationshipCounts(models.ItemCoordinate, "c3"))
}

// The forward and reverse views must agree after any sequence of operations.
func TestReverseIndexSymmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewManager()
		ids := func(prefix string, n int) *rapid.Generator[string] {
			return rapid.Map(rapid.IntRange(0, n-1), func(i int) string {
				return fmt.Sprintf("%s%d", prefix, i)
			})
		}
		targetID := ids("t", 4)
		pathID := ids("p", 3)
		coordID := ids("c", 5)

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 5).Draw(t, "op") {
			case 0:
				m.AttachTargetToCoordinate(targetID.Draw(t, "target"), coordID.Draw(t, "coord"))
			case 1:
				m.AttachPathToCoordinates(pathID.Draw(t, "path"), rapid.SliceOfN(coordID, 0, 6).Draw(t, "coords"))
			case 2:
				m.DetachTargetFromCoordinate(targetID.Draw(t, "target"), coordID.Draw(t, "coord"))
			case 3:
				m.DetachPathFromCoordinate(pathID.Draw(t, "path"), coordID.Draw(t, "coord"))
			case 4:
				m.RemoveTargetRelationships(targetID.Draw(t, "target"))
			case 5:
				m.RemovePathRelationships(pathID.Draw(t, "path"))
			}
			checkSymmetry(t, m)
		}
	})
}

func checkSymmetry(t *rapid.T, m *Manager) {
	for tid, cid := range m.targetCoord {
		if !contains(m.GetCoordinateTargets(cid), tid) {
			t.Fatalf("target %s -> %s missing from reverse index", tid, cid)
		}
	}
	for cid, set := range m.coordTargets {
		if set.len() == 0 {
			t.Fatalf("empty reverse target set for %s", cid)
		}
		for _, tid := range set.list() {
			if m.targetCoord[tid] != cid {
				t.Fatalf("reverse target %s on %s not in forward map", tid, cid)
			}
		}
	}
	for pid, set := range m.pathCoords {
		for _, cid := range set.list() {
			if !contains(m.GetCoordinatePaths(cid), pid) {
				t.Fatalf("path %s -> %s missing from reverse index", pid, cid)
			}
		}
	}
	for cid, set := range m.coordPaths {
		if set.len() == 0 {
			t.Fatalf("empty reverse path set for %s", cid)
		}
		for _, pid := range set.list() {
			if !contains(m.GetPathCoordinates(pid), cid) {
				t.Fatalf("reverse path %s on %s not in forward map", pid, cid)
			}
		}
	}
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
