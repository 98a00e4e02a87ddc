package scene

import (
	"fmt"

	"github.com/target-creator/backend/internal/models"
	"github.com/target-creator/backend/internal/pathcreation"
)

// ClickResult describes how a grid click was handled.
type ClickResult struct {
	// Handled is true when path creation consumed the click.
	Handled bool                    `json:"handled"`
	Path    *models.Path            `json:"path,omitempty"`
	Mode    models.PathCreationMode `json:"mode"`
}

// StartPathCreation enters the awaiting-endpoint state.
func (s *Scene) StartPathCreation(req pathcreation.StartRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creation.Start(req)
}

// StartPathFromTarget starts path creation at a target's position ("Add
// Path" on a placed target).
func (s *Scene) StartPathFromTarget(targetID string, req pathcreation.StartRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.targets[targetID]
	if !ok {
		return fmt.Errorf("target %s not found: %w", targetID, ErrTargetNotFound)
	}
	req.Start = t.Position
	return s.creation.Start(req)
}

// ClickGridPoint routes a grid click. While path creation is active the click
// is treated as a candidate endpoint; otherwise it is not handled.
func (s *Scene) ClickGridPoint(position models.Position) ClickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.creation.Active() {
		return ClickResult{Mode: s.creation.Mode()}
	}
	path, _ := s.creation.Complete(position)
	return ClickResult{Handled: true, Path: path, Mode: s.creation.Mode()}
}

// CompletePathCreation tries endpoint as the end of the in-progress path.
func (s *Scene) CompletePathCreation(endpoint models.Position) (*models.Path, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creation.Complete(endpoint)
}

// CancelPathCreation discards the in-progress path.
func (s *Scene) CancelPathCreation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creation.Cancel()
}

// ShowPathCreationError shows a transient error notification.
func (s *Scene) ShowPathCreationError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creation.ShowError(message)
}

// PathCreationMode returns the current path creation state.
func (s *Scene) PathCreationMode() models.PathCreationMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creation.Mode()
}

// ValidEndpoints returns the endpoints to highlight for the in-progress path.
func (s *Scene) ValidEndpoints() []models.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creation.ValidEndpoints()
}
