package upload

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/target-creator/backend/internal/exchange"
	"github.com/target-creator/backend/internal/models"
	"github.com/target-creator/backend/internal/scene"
)

// Status represents the import processing status.
type Status string

const (
	StatusReading       Status = "reading"
	StatusDecompressing Status = "decompressing"
	StatusDecoding      Status = "decoding"
	StatusApplying      Status = "applying"
	StatusComplete      Status = "complete"
	StatusError         Status = "error"
)

// ErrSessionNotFound is reported when the job's session no longer exists.
var ErrSessionNotFound = errors.New("session not found")

// Job represents an async import job that loads a stored file into a scene.
type Job struct {
	ID            string                `json:"id"`
	SessionID     string                `json:"sessionId"`
	FileID        string                `json:"fileId"`
	FileName      string                `json:"fileName"`
	Format        string                `json:"format,omitempty"`
	Replace       bool                  `json:"replace"`
	Compressed    bool                  `json:"compressed"`
	Status        Status                `json:"status"`
	Progress      float64               `json:"progress"`
	Stage         string                `json:"stage"`         // Current stage description
	StageProgress float64               `json:"stageProgress"` // Progress within current stage
	Summary       *models.ImportSummary `json:"summary,omitempty"`
	Error         string                `json:"error,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	CompletedAt   *time.Time            `json:"completedAt,omitempty"`
}

// Store defines the interface needed from storage layer.
type Store interface {
	Open(id string) (io.ReadCloser, *models.FileInfo, error)
}

// Scenes resolves a session id to its scene.
type Scenes interface {
	GetScene(id string) (*scene.Scene, bool)
}

// Manager handles async import processing.
type Manager struct {
	jobs   map[string]*Job
	mu     sync.RWMutex
	store  Store
	scenes Scenes
	codecs *exchange.Registry
	wg     sync.WaitGroup
}

// NewManager creates a new import job manager.
func NewManager(store Store, scenes Scenes, codecs *exchange.Registry) *Manager {
	if codecs == nil {
		codecs = exchange.NewRegistry()
	}
	return &Manager{
		jobs:   make(map[string]*Job),
		store:  store,
		scenes: scenes,
		codecs: codecs,
	}
}

// StartJob begins async import of a stored file into a session's scene.
// When replace is true the scene is cleared before the document is applied.
func (m *Manager) StartJob(sessionID, fileID string, replace bool) *Job {
	job := &Job{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		FileID:    fileID,
		Replace:   replace,
		Status:    StatusReading,
		Stage:     "preparing",
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	snapshot := *job
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.processJob(job)
	}()

	return &snapshot
}

// GetJob retrieves a copy of a job by ID.
func (m *Manager) GetJob(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	c := *job
	return &c, true
}

// Wait blocks until every started job has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// processJob handles the actual async processing.
func (m *Manager) processJob(job *Job) {
	fmt.Printf("[ImportJob %s] Starting import of file %s into session %s\n", job.ID[:8], job.FileID, job.SessionID)

	// Stage 1: Open the stored file
	m.updateJobStatus(job, StatusReading, "reading file", 0)

	rc, info, err := m.store.Open(job.FileID)
	if err != nil {
		m.markJobError(job, fmt.Sprintf("failed to open file: %v", err))
		return
	}
	defer rc.Close()

	codec, err := m.codecs.ForFile(info.Name)
	if err != nil && info.Format != "" {
		codec, err = m.codecs.ByName(info.Format)
	}
	if err != nil {
		m.markJobError(job, fmt.Sprintf("unsupported file: %v", err))
		return
	}

	m.mu.Lock()
	job.FileName = info.Name
	job.Format = codec.Name()
	m.mu.Unlock()
	m.updateJobStatus(job, StatusReading, "reading file", 100)

	// Stage 2: Decompress if the payload is gzip
	m.updateJobStatus(job, StatusDecompressing, "checking compression", 0)
	r, compressed, err := exchange.Decompress(rc)
	if err != nil {
		m.markJobError(job, fmt.Sprintf("failed to decompress file: %v", err))
		return
	}
	if compressed {
		fmt.Printf("[ImportJob %s] Decompressing gzip payload %s\n", job.ID[:8], info.Name)
		m.mu.Lock()
		job.Compressed = true
		m.mu.Unlock()
	}
	m.updateJobStatus(job, StatusDecompressing, "checking compression", 100)

	// Stage 3: Decode
	m.updateJobStatus(job, StatusDecoding, "decoding "+codec.Name(), 0)
	doc, err := codec.Decode(r)
	if err != nil {
		m.markJobError(job, fmt.Sprintf("failed to decode %s: %v", codec.Name(), err))
		return
	}
	if err := exchange.ValidateDocument(doc); err != nil {
		m.markJobError(job, err.Error())
		return
	}
	m.updateJobStatus(job, StatusDecoding, "decoding "+codec.Name(), 100)

	// Stage 4: Apply to the session's scene
	m.updateJobStatus(job, StatusApplying, "applying to scene", 0)
	sc, ok := m.scenes.GetScene(job.SessionID)
	if !ok {
		m.markJobError(job, fmt.Sprintf("%v: %s", ErrSessionNotFound, job.SessionID))
		return
	}
	summary, err := sc.Import(doc, job.Replace)
	if err != nil {
		m.markJobError(job, fmt.Sprintf("failed to apply document: %v", err))
		return
	}

	m.mu.Lock()
	job.Summary = &summary
	m.mu.Unlock()
	m.markJobComplete(job)
	fmt.Printf("[ImportJob %s] Import complete: %d coordinates, %d targets, %d paths\n",
		job.ID[:8], summary.Coordinates, summary.Targets, summary.Paths)
}

// updateJobStatus updates job progress (thread-safe).
func (m *Manager) updateJobStatus(job *Job, status Status, stage string, stageProgress float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = status
	job.Stage = stage
	job.StageProgress = stageProgress

	// Reading: 0-20%, Decompressing: 20-40%, Decoding: 40-80%, Applying: 80-100%
	switch status {
	case StatusReading:
		job.Progress = stageProgress * 0.2
	case StatusDecompressing:
		job.Progress = 20 + stageProgress*0.2
	case StatusDecoding:
		job.Progress = 40 + stageProgress*0.4
	case StatusApplying:
		job.Progress = 80 + stageProgress*0.2
	case StatusComplete:
		job.Progress = 100
	}
}

// markJobComplete marks job as complete (thread-safe).
func (m *Manager) markJobComplete(job *Job) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = StatusComplete
	job.Stage = "complete"
	job.StageProgress = 100
	job.Progress = 100
	now := time.Now()
	job.CompletedAt = &now
}

// markJobError marks job as failed (thread-safe).
func (m *Manager) markJobError(job *Job, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = StatusError
	job.Error = errMsg
	now := time.Now()
	job.CompletedAt = &now
	fmt.Printf("[ImportJob %s] Error: %s\n", job.ID[:8], errMsg)
}

// CleanupOldJobs removes finished jobs older than the specified duration.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for id, job := range m.jobs {
		if job.Status == StatusComplete || job.Status == StatusError {
			if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
				delete(m.jobs, id)
				removed++
			}
		}
	}
	return removed
}
