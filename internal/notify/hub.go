// Package notify delivers editor notifications to the browser, one stream per
// editing session.
package notify

import (
	"context"
	"sync"

	"github.com/target-creator/backend/internal/models"
)

// Hub owns one broker per session and remembers each session's persistent
// notifications so late subscribers can catch up.
type Hub struct {
	mu         sync.Mutex
	brokers    map[string]*broker
	persistent map[string][]models.Notification
	bufferSize int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		brokers:    make(map[string]*broker),
		persistent: make(map[string][]models.Notification),
		bufferSize: defaultBufferSize,
	}
}

// Notifier returns a notifier bound to sessionID.
func (h *Hub) Notifier(sessionID string) *SessionNotifier {
	return &SessionNotifier{hub: h, sessionID: sessionID}
}

// Subscribe streams a session's events until ctx ends or the session closes.
func (h *Hub) Subscribe(ctx context.Context, sessionID string) <-chan Event {
	return h.broker(sessionID).subscribe(ctx)
}

// Active returns the persistent notifications currently shown in a session.
func (h *Hub) Active(sessionID string) []models.Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.Notification{}, h.persistent[sessionID]...)
}

// SubscriberCount returns the number of live subscribers for a session.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.Lock()
	b, ok := h.brokers[sessionID]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	return b.subscriberCount()
}

// CloseSession ends every subscription of a session and forgets its state.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	b, ok := h.brokers[sessionID]
	delete(h.brokers, sessionID)
	delete(h.persistent, sessionID)
	h.mu.Unlock()

	if ok {
		b.close()
	}
}

func (h *Hub) show(sessionID string, n models.Notification) {
	h.mu.Lock()
	if n.Persistent {
		list := removeNotification(h.persistent[sessionID], n.ID)
		h.persistent[sessionID] = append(list, n)
	}
	h.mu.Unlock()

	h.broker(sessionID).publish(EventShow, n)
}

func (h *Hub) dismiss(sessionID, id string) {
	h.mu.Lock()
	if list, ok := h.persistent[sessionID]; ok {
		h.persistent[sessionID] = removeNotification(list, id)
	}
	h.mu.Unlock()

	h.broker(sessionID).publish(EventDismiss, models.Notification{ID: id})
}

func (h *Hub) broker(sessionID string) *broker {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := h.brokers[sessionID]
	if !ok {
		b = newBroker(h.bufferSize)
		h.brokers[sessionID] = b
	}
	return b
}

func removeNotification(list []models.Notification, id string) []models.Notification {
	out := list[:0]
	for _, n := range list {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

// SessionNotifier publishes to one session's stream.
type SessionNotifier struct {
	hub       *Hub
	sessionID string
}

// Notify shows n.
func (s *SessionNotifier) Notify(n models.Notification) {
	s.hub.show(s.sessionID, n)
}

// Dismiss hides the notification with id.
func (s *SessionNotifier) Dismiss(id string) {
	s.hub.dismiss(s.sessionID, id)
}
