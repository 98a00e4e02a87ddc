package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target-creator/backend/internal/models"
	"github.com/target-creator/backend/internal/pathcreation"
	"github.com/target-creator/backend/internal/scene"
	"github.com/target-creator/backend/internal/testutil"
)

func TestSessionManager(t *testing.T) {
	m := NewManager(Options{})

	sess := m.CreateSession("Warehouse")
	if sess.ID == "" {
		t.Fatalf("Expected session ID")
	}

	got, ok := m.GetSession(sess.ID)
	if !ok {
		t.Fatalf("Session not found")
	}
	if got.Name != "Warehouse" {
		t.Errorf("Expected name Warehouse, got %s", got.Name)
	}

	sc, ok := m.GetScene(sess.ID)
	require.True(t, ok)
	_, err := sc.PlaceTarget(scene.TargetInput{Label: "Crate", Position: models.Position{1, 0, 1}})
	require.NoError(t, err)

	got, _ = m.GetSession(sess.ID)
	assert.Equal(t, 1, got.TargetCount)
	assert.Equal(t, 0, got.PathCount)
	assert.Equal(t, 20, sc.GridSize())
}

func TestDefaultName(t *testing.T) {
	m := NewManager(Options{})
	assert.Equal(t, "Untitled scene", m.CreateSession("").Name)
}

func TestSessionsGetOwnNotifier(t *testing.T) {
	notifiers := map[string]*testutil.RecordingNotifier{}
	m := NewManager(Options{
		Notifiers: func(id string) pathcreation.Notifier {
			n := testutil.NewRecordingNotifier()
			notifiers[id] = n
			return n
		},
	})

	sess := m.CreateSession("A")
	sc, _ := m.GetScene(sess.ID)
	require.NoError(t, sc.StartPathCreation(pathcreation.StartRequest{Label: "Corridor"}))

	require.Contains(t, notifiers, sess.ID)
	last, ok := notifiers[sess.ID].Last()
	require.True(t, ok)
	assert.Equal(t, pathcreation.NotificationID, last.ID)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	var closed []string
	m := NewManager(Options{MaxSessions: 2, OnClose: func(id string) { closed = append(closed, id) }})

	first := m.CreateSession("first")
	second := m.CreateSession("second")
	m.mu.Lock()
	m.sessions[first.ID].LastAccessed = time.Now().Add(-time.Hour)
	m.mu.Unlock()

	third := m.CreateSession("third")

	assert.Equal(t, 2, m.Count())
	_, ok := m.GetSession(first.ID)
	assert.False(t, ok)
	_, ok = m.GetSession(second.ID)
	assert.True(t, ok)
	_, ok = m.GetSession(third.ID)
	assert.True(t, ok)
	assert.Equal(t, []string{first.ID}, closed)
}

func TestCleanupOldSessions(t *testing.T) {
	m := NewManager(Options{})
	stale := m.CreateSession("stale")
	idle := m.CreateSession("idle but recent")
	fresh := m.CreateSession("fresh")

	m.mu.Lock()
	m.sessions[stale.ID].LastAccessed = time.Now().Add(-2 * time.Hour)
	m.sessions[idle.ID].LastAccessed = time.Now().Add(-10 * time.Minute)
	m.mu.Unlock()

	removed := m.CleanupOldSessions(time.Hour)

	assert.Equal(t, 1, removed)
	_, ok := m.GetSession(stale.ID)
	assert.False(t, ok)
	_, ok = m.GetSession(idle.ID)
	assert.True(t, ok)
	_, ok = m.GetSession(fresh.ID)
	assert.True(t, ok)
}

func TestTouchKeepsSessionAlive(t *testing.T) {
	m := NewManager(Options{})
	sess := m.CreateSession("busy")
	m.mu.Lock()
	m.sessions[sess.ID].LastAccessed = time.Now().Add(-2 * time.Hour)
	m.mu.Unlock()

	assert.True(t, m.TouchSession(sess.ID))
	assert.Zero(t, m.CleanupOldSessions(time.Hour))
	assert.False(t, m.TouchSession("missing"))
}

func TestListAndDelete(t *testing.T) {
	m := NewManager(Options{})
	a := m.CreateSession("a")
	time.Sleep(2 * time.Millisecond)
	b := m.CreateSession("b")

	list := m.ListSessions()
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)

	assert.True(t, m.DeleteSession(a.ID))
	assert.False(t, m.DeleteSession(a.ID))
	assert.Len(t, m.ListSessions(), 1)
}
