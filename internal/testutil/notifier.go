package testutil

import (
	"sync"

	"github.com/target-creator/backend/internal/models"
)

// RecordingNotifier records notifications and dismissals for assertions.
type RecordingNotifier struct {
	mu        sync.Mutex
	shown     []models.Notification
	dismissed []string
}

// NewRecordingNotifier creates an empty recorder.
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

// Notify records n.
func (r *RecordingNotifier) Notify(n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, n)
}

// Dismiss records id.
func (r *RecordingNotifier) Dismiss(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dismissed = append(r.dismissed, id)
}

// Shown returns every recorded notification.
func (r *RecordingNotifier) Shown() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.shown...)
}

// Dismissed returns every dismissed id.
func (r *RecordingNotifier) Dismissed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.dismissed...)
}

// Last returns the most recent notification.
func (r *RecordingNotifier) Last() (models.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.shown) == 0 {
		return models.Notification{}, false
	}
	return r.shown[len(r.shown)-1], true
}

// Errors returns the messages of error-level notifications.
func (r *RecordingNotifier) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.shown {
		if n.Level == models.NotificationError {
			out = append(out, n.Message)
		}
	}
	return out
}
