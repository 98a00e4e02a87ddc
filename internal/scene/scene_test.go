package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target-creator/backend/internal/griditems"
	"github.com/target-creator/backend/internal/idgen"
	"github.com/target-creator/backend/internal/models"
	"github.com/target-creator/backend/internal/pathcreation"
	"github.com/target-creator/backend/internal/testutil"
)

func newTestScene() (*Scene, *testutil.RecordingNotifier) {
	n := testutil.NewRecordingNotifier()
	return New(Options{GridSize: 20, IDs: idgen.NewSequence(), Notifier: n}), n
}

func TestPlaceTargetRegistersCoordinate(t *testing.T) {
	s, _ := newTestScene()

	target, err := s.PlaceTarget(TargetInput{Label: "Crate", Position: models.Position{1, 0, 2}})
	require.NoError(t, err)
	assert.Equal(t, "target-1", target.ID)

	c, ok := s.TargetCoordinate(target.ID)
	require.True(t, ok)
	assert.Equal(t, "coord_1_0_2", c.ID)
	assert.Equal(t, models.RelationshipCounts{Coordinates: 1}, s.RelationshipCounts(models.ItemTarget, target.ID))
}

func TestPlaceTargetRejectsNaN(t *testing.T) {
	s, _ := newTestScene()
	_, err := s.PlaceTarget(TargetInput{Position: models.Position{0, nan(), 0}})
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestMoveTargetRelinks(t *testing.T) {
	s, _ := newTestScene()
	target, _ := s.PlaceTarget(TargetInput{Label: "Crate", Position: models.Position{0, 0, 0}})

	moved, err := s.MoveTarget(target.ID, models.Position{3, 0, 3})
	require.NoError(t, err)
	assert.Equal(t, models.Position{3, 0, 3}, moved.Position)

	c, _ := s.TargetCoordinate(target.ID)
	assert.Equal(t, "coord_3_0_3", c.ID)
	assert.Empty(t, s.RelatedItems(models.ItemCoordinate, "coord_0_0_0"))

	_, err = s.MoveTarget("missing", models.Position{})
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestUpdateAndRemoveTarget(t *testing.T) {
	s, _ := newTestScene()
	target, _ := s.PlaceTarget(TargetInput{Label: "Crate", Position: models.Position{0, 0, 0}})

	name := "Blue crate"
	updated, err := s.UpdateTarget(target.ID, TargetUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Blue crate", updated.Name)
	assert.Equal(t, "Crate", updated.Label)

	require.NoError(t, s.RemoveTarget(target.ID))
	assert.Empty(t, s.Targets())
	assert.Empty(t, s.RelatedItems(models.ItemCoordinate, "coord_0_0_0"))
	assert.ErrorIs(t, s.RemoveTarget(target.ID), ErrTargetNotFound)
}

func TestPathCreationThroughGridClicks(t *testing.T) {
	s, n := newTestScene()
	crate, _ := s.PlaceTarget(TargetInput{Label: "Crate", Position: models.Position{1, 0, 0}})

	require.NoError(t, s.StartPathCreation(pathcreation.StartRequest{Start: models.Position{0, 0, 0}, Label: "Corridor"}))
	assert.True(t, s.PathCreationMode().IsActive)
	assert.NotEmpty(t, s.ValidEndpoints())

	rejected := s.ClickGridPoint(models.Position{1, 0, 2})
	assert.True(t, rejected.Handled)
	assert.Nil(t, rejected.Path)
	assert.True(t, rejected.Mode.IsActive)
	assert.Len(t, n.Errors(), 1)

	result := s.ClickGridPoint(models.Position{2, 0, 0})
	require.True(t, result.Handled)
	require.NotNil(t, result.Path)
	assert.False(t, result.Mode.IsActive)

	paths := s.Paths()
	require.Len(t, paths, 1)
	assert.Equal(t, []models.Position{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}, paths[0].LitTiles)
	assert.Len(t, s.Coordinates(), 3)

	related := s.RelatedItems(models.ItemPath, paths[0].ID)
	assert.Contains(t, related, models.RelatedItem{Type: models.ItemTarget, ID: crate.ID, Name: "Crate"})
	assert.Equal(t, models.RelationshipCounts{Targets: 1, Coordinates: 3}, s.RelationshipCounts(models.ItemPath, paths[0].ID))

	idle := s.ClickGridPoint(models.Position{5, 0, 5})
	assert.False(t, idle.Handled)
}

func TestStartPathFromTarget(t *testing.T) {
	s, _ := newTestScene()
	crate, _ := s.PlaceTarget(TargetInput{Label: "Crate", Position: models.Position{4, 0, 4}})

	require.NoError(t, s.StartPathFromTarget(crate.ID, pathcreation.StartRequest{Label: "Spur"}))
	mode := s.PathCreationMode()
	require.NotNil(t, mode.StartPosition)
	assert.Equal(t, models.Position{4, 0, 4}, *mode.StartPosition)

	assert.ErrorIs(t, s.StartPathFromTarget("missing", pathcreation.StartRequest{}), ErrTargetNotFound)
}

func TestCancelPathCreation(t *testing.T) {
	s, n := newTestScene()
	require.NoError(t, s.StartPathCreation(pathcreation.StartRequest{Label: "Corridor"}))

	assert.True(t, s.CancelPathCreation())
	assert.False(t, s.PathCreationMode().IsActive)
	assert.Contains(t, n.Dismissed(), pathcreation.NotificationID)
	assert.Empty(t, s.Paths())
}

func TestRemovePathKeepsCoordinates(t *testing.T) {
	s, _ := newTestScene()
	require.NoError(t, s.StartPathCreation(pathcreation.StartRequest{Label: "Corridor"}))
	path, ok := s.CompletePathCreation(models.Position{0, 0, 2})
	require.True(t, ok)

	require.NoError(t, s.RemovePath(path.ID))

	assert.Empty(t, s.Paths())
	assert.Len(t, s.Coordinates(), 3)
	assert.Empty(t, s.RelatedItems(models.ItemCoordinate, "coord_0_0_1"))
	assert.ErrorIs(t, s.RemovePath(path.ID), ErrPathNotFound)
}

func TestRenameAndRemoveCoordinate(t *testing.T) {
	s, _ := newTestScene()
	target, _ := s.PlaceTarget(TargetInput{Label: "Crate", Position: models.Position{0, 0, 0}})

	c, err := s.RenameCoordinate("coord_0_0_0", "Origin")
	require.NoError(t, err)
	assert.Equal(t, "Origin", c.Name)

	related := s.RelatedItems(models.ItemTarget, target.ID)
	assert.Equal(t, []models.RelatedItem{{Type: models.ItemCoordinate, ID: "coord_0_0_0", Name: "Origin"}}, related)

	require.NoError(t, s.RemoveCoordinate("coord_0_0_0"))
	_, ok := s.Coordinate("coord_0_0_0")
	assert.False(t, ok)
	_, ok = s.TargetCoordinate(target.ID)
	assert.False(t, ok)

	_, err = s.RenameCoordinate("coord_0_0_0", "Gone")
	assert.ErrorIs(t, err, ErrCoordinateNotFound)
}

func TestWithGridItems(t *testing.T) {
	s, _ := newTestScene()

	err := s.WithGridItems(func(items *griditems.Service) error {
		_, err := items.CreateTarget(griditems.TargetInput{PathID: "missing"})
		return err
	})

	assert.ErrorIs(t, err, griditems.ErrPathNotFound)
}
