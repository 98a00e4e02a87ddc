package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/target-creator/backend/internal/geometry"
	"github.com/target-creator/backend/internal/idgen"
	"github.com/target-creator/backend/internal/models"
	"github.com/target-creator/backend/internal/pathcreation"
	"github.com/target-creator/backend/internal/scene"
)

// MaxSessions limits concurrent editing sessions to bound memory use
const MaxSessions = 10

// SessionMaxAge is how long an idle session is kept before cleanup
const SessionMaxAge = 30 * time.Minute

// SessionKeepAliveWindow is how long to keep sessions that are actively being used
const SessionKeepAliveWindow = 5 * time.Minute

// NotifierFactory builds the notifier a session's scene reports to.
type NotifierFactory func(sessionID string) pathcreation.Notifier

// Options configures a Manager.
type Options struct {
	MaxSessions int
	GridSize    int
	Endpoints   *geometry.EndpointCache
	IDs         idgen.Generator
	Notifiers   NotifierFactory
	// OnClose runs after a session is deleted or cleaned up.
	OnClose func(sessionID string)
}

// Manager handles active editing sessions.
type Manager struct {
	sessions map[string]*SessionState
	mu       sync.RWMutex
	opts     Options
}

// SessionState holds the session metadata and its scene.
type SessionState struct {
	Session      *models.EditorSession
	Scene        *scene.Scene
	LastAccessed time.Time // Last time the session was accessed (for keep-alive)
}

// NewManager creates a session manager.
func NewManager(opts Options) *Manager {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = MaxSessions
	}
	if opts.GridSize <= 0 {
		opts.GridSize = geometry.DefaultGridSize
	}
	return &Manager{
		sessions: make(map[string]*SessionState),
		opts:     opts,
	}
}

// CreateSession starts a new editing session with an empty scene.
func (m *Manager) CreateSession(name string) *models.EditorSession {
	m.evictIfNeeded()

	sessionID := uuid.New().String()
	if name == "" {
		name = "Untitled scene"
	}

	var notifier pathcreation.Notifier
	if m.opts.Notifiers != nil {
		notifier = m.opts.Notifiers(sessionID)
	}

	now := time.Now()
	state := &SessionState{
		Session: &models.EditorSession{
			ID:           sessionID,
			Name:         name,
			CreatedAt:    now,
			LastAccessed: now,
		},
		Scene: scene.New(scene.Options{
			GridSize:  m.opts.GridSize,
			IDs:       m.opts.IDs,
			Notifier:  notifier,
			Endpoints: m.opts.Endpoints,
		}),
		LastAccessed: now,
	}

	m.mu.Lock()
	m.sessions[sessionID] = state
	m.mu.Unlock()

	fmt.Printf("[Session %s] Created %q (grid size %d)\n", sessionID[:8], name, m.opts.GridSize)
	return snapshot(state)
}

// evictIfNeeded removes the least recently used session when at capacity
func (m *Manager) evictIfNeeded() {
	m.mu.Lock()
	if len(m.sessions) < m.opts.MaxSessions {
		m.mu.Unlock()
		return
	}

	var oldestID string
	var oldest time.Time
	for id, state := range m.sessions {
		if oldestID == "" || state.LastAccessed.Before(oldest) {
			oldestID = id
			oldest = state.LastAccessed
		}
	}
	delete(m.sessions, oldestID)
	m.mu.Unlock()

	fmt.Printf("[Manager] Evicted least recently used session %s to stay under %d sessions\n", shortID(oldestID), m.opts.MaxSessions)
	m.closed(oldestID)
}

// CleanupOldSessions removes sessions idle for longer than maxAge,
// but keeps sessions that have been accessed within SessionKeepAliveWindow.
// It returns the number of sessions removed.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	m.mu.Lock()

	now := time.Now()
	cutoff := now.Add(-maxAge)
	keepAliveCutoff := now.Add(-SessionKeepAliveWindow)

	var removed []string
	for id, state := range m.sessions {
		// Don't clean up sessions that are actively being used
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			delete(m.sessions, id)
			removed = append(removed, id)
			fmt.Printf("[Manager] Cleaned up idle session %s (last accessed: %s ago)\n",
				shortID(id), now.Sub(state.LastAccessed).Round(time.Second))
		}
	}
	m.mu.Unlock()

	for _, id := range removed {
		m.closed(id)
	}
	return len(removed)
}

// GetSession returns a snapshot of a session by ID.
func (m *Manager) GetSession(id string) (*models.EditorSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return snapshot(state), true
}

// GetScene returns a session's scene and marks the session as used.
func (m *Manager) GetScene(id string) (*scene.Scene, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	state.LastAccessed = time.Now()
	return state.Scene, true
}

// ListSessions returns every session, most recently created first.
func (m *Manager) ListSessions() []*models.EditorSession {
	m.mu.RLock()
	out := make([]*models.EditorSession, 0, len(m.sessions))
	for _, state := range m.sessions {
		out = append(out, snapshot(state))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// DeleteSession removes a session.
func (m *Manager) DeleteSession(id string) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		fmt.Printf("[Manager] Deleted session %s\n", shortID(id))
		m.closed(id)
	}
	return ok
}

// TouchSession updates the LastAccessed timestamp for a session.
// This should be called whenever a session is actively being used
// to prevent it from being cleaned up.
func (m *Manager) TouchSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) closed(id string) {
	if m.opts.OnClose != nil {
		m.opts.OnClose(id)
	}
}

func snapshot(state *SessionState) *models.EditorSession {
	s := *state.Session
	s.LastAccessed = state.LastAccessed
	s.TargetCount, s.PathCount = state.Scene.Counts()
	return &s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
