package pathcreation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target-creator/backend/internal/coords"
	"github.com/target-creator/backend/internal/geometry"
	"github.com/target-creator/backend/internal/idgen"
	"github.com/target-creator/backend/internal/models"
	"github.com/target-creator/backend/internal/relations"
	"github.com/target-creator/backend/internal/testutil"
)

type pathList struct {
	paths []models.Path
}

func (l *pathList) AddPath(p models.Path) {
	l.paths = append(l.paths, p)
}

type fixture struct {
	registry  *coords.Registry
	relations *relations.Manager
	sink      *pathList
	notifier  *testutil.RecordingNotifier
	ctrl      *Controller
}

func newFixture() *fixture {
	f := &fixture{
		registry:  coords.NewRegistry(),
		relations: relations.NewManager(),
		sink:      &pathList{},
		notifier:  testutil.NewRecordingNotifier(),
	}
	f.ctrl = New(f.registry, f.relations, f.sink, idgen.NewSequence(), f.notifier, Options{
		GridSize:  20,
		Endpoints: geometry.NewEndpointCache(geometry.DefaultEndpointCacheExpiration),
	})
	return f
}

func (f *fixture) start(t *testing.T, at models.Position, label string) {
	t.Helper()
	require.NoError(t, f.ctrl.Start(StartRequest{Start: at, Label: label, PathType: "corridor"}))
}

func TestStartShowsPersistentNotification(t *testing.T) {
	f := newFixture()
	f.start(t, models.Position{0, 0, 0}, "Corridor")

	mode := f.ctrl.Mode()
	assert.True(t, mode.IsActive)
	assert.Equal(t, models.PathShapeLine, mode.Type)
	assert.Equal(t, "Corridor", mode.PathLabel)
	require.NotNil(t, mode.StartPosition)
	assert.Equal(t, models.Position{0, 0, 0}, *mode.StartPosition)

	n, ok := f.notifier.Last()
	require.True(t, ok)
	assert.Equal(t, NotificationID, n.ID)
	assert.True(t, n.Persistent)
	assert.True(t, n.Cancelable)
}

func TestStartRejectsCurve(t *testing.T) {
	f := newFixture()

	err := f.ctrl.Start(StartRequest{Shape: models.PathShapeCurve, Label: "Arc"})

	assert.ErrorIs(t, err, ErrUnsupportedShape)
	assert.False(t, f.ctrl.Active())
	assert.Empty(t, f.notifier.Shown())
}

func TestCompleteEndToEnd(t *testing.T) {
	f := newFixture()
	f.start(t, models.Position{0, 0, 0}, "Corridor")

	path, ok := f.ctrl.Complete(models.Position{2, 0, 0})
	require.True(t, ok)

	assert.Equal(t, []models.Position{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}, path.LitTiles)
	assert.Equal(t, "Corridor", path.Label)
	assert.Equal(t, "corridor", path.PathType)
	assert.Equal(t, 3, f.registry.Len())
	assert.Len(t, f.relations.GetPathCoordinates(path.ID), 3)
	require.Len(t, f.sink.paths, 1)
	assert.Equal(t, path.ID, f.sink.paths[0].ID)

	assert.False(t, f.ctrl.Active())
	assert.Contains(t, f.notifier.Dismissed(), NotificationID)
	last, _ := f.notifier.Last()
	assert.Equal(t, models.NotificationSuccess, last.Level)
}

func TestCompleteDiagonal(t *testing.T) {
	f := newFixture()
	f.start(t, models.Position{0, 0, 0}, "Diagonal")

	path, ok := f.ctrl.Complete(models.Position{2, 0, 2})
	require.True(t, ok)

	assert.Equal(t, []models.Position{{0, 0, 0}, {1, 0, 1}, {2, 0, 2}}, path.LitTiles)
}

func TestCompleteRejectsStartAsEndpoint(t *testing.T) {
	f := newFixture()
	f.start(t, models.Position{0, 0, 0}, "Corridor")

	path, ok := f.ctrl.Complete(models.Position{0, 0, 0})

	assert.False(t, ok)
	assert.Nil(t, path)
	assert.True(t, f.ctrl.Active())
	assert.Equal(t, []string{MsgStartAsEndpoint}, f.notifier.Errors())
	assert.Equal(t, "Cannot select the start point as the endpoint", MsgStartAsEndpoint)
}

func TestCompleteRejectsOffLineEndpoint(t *testing.T) {
	f := newFixture()
	f.start(t, models.Position{0, 0, 0}, "Corridor")

	_, ok := f.ctrl.Complete(models.Position{1, 0, 2})

	assert.False(t, ok)
	assert.True(t, f.ctrl.Active())
	require.Len(t, f.notifier.Errors(), 1)
	assert.Contains(t, f.notifier.Errors()[0], "valid endpoint")
	assert.Empty(t, f.sink.paths)
	assert.Zero(t, f.registry.Len())

	// The user can retry without restarting.
	_, ok = f.ctrl.Complete(models.Position{0, 0, 3})
	assert.True(t, ok)
}

func TestCompleteRejectsOutOfBounds(t *testing.T) {
	f := newFixture()
	f.start(t, models.Position{9, 0, 0}, "Edge")

	_, ok := f.ctrl.Complete(models.Position{11, 0, 0})
	assert.False(t, ok)
	assert.True(t, f.ctrl.Active())
}

func TestCompleteWhenIdle(t *testing.T) {
	f := newFixture()

	_, ok := f.ctrl.Complete(models.Position{1, 0, 0})

	assert.False(t, ok)
	assert.Empty(t, f.notifier.Shown())
}

func TestCancel(t *testing.T) {
	f := newFixture()
	f.start(t, models.Position{0, 0, 0}, "Corridor")

	assert.True(t, f.ctrl.Cancel())

	assert.False(t, f.ctrl.Active())
	assert.Nil(t, f.ctrl.Mode().StartPosition)
	assert.Equal(t, []string{NotificationID}, f.notifier.Dismissed())
	assert.Empty(t, f.sink.paths)
	assert.Zero(t, f.registry.Len())

	assert.False(t, f.ctrl.Cancel())
}

func TestValidEndpoints(t *testing.T) {
	f := newFixture()
	assert.Nil(t, f.ctrl.ValidEndpoints())

	f.start(t, models.Position{0.2, 0, -0.3}, "Corridor")
	endpoints := f.ctrl.ValidEndpoints()
	assert.Len(t, endpoints, 80)
	assert.True(t, geometry.ContainsPosition(endpoints, models.Position{10, 0, 10}))
}

func TestModeReturnsCopy(t *testing.T) {
	f := newFixture()
	f.start(t, models.Position{1, 0, 1}, "Corridor")

	mode := f.ctrl.Mode()
	mode.StartPosition[0] = 99

	assert.Equal(t, models.Position{1, 0, 1}, *f.ctrl.Mode().StartPosition)
}
