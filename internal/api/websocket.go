package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/target-creator/backend/internal/notify"
	"github.com/target-creator/backend/internal/pathcreation"
)

// WebSocket message types for the notification stream
const (
	// Client -> Server messages
	MsgTypeDismiss    = "notification:dismiss"
	MsgTypeCancelPath = "path-creation:cancel"
	MsgTypePing       = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeShow      = "notification:show"
	MsgTypeError     = "error"
	MsgTypePong      = "pong"
)

// WSMessage is the envelope for every websocket frame
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WSErrorResponse is the payload of an error frame
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WebSocketHandler streams a session's notifications to the editor
type WebSocketHandler struct {
	hub      *notify.Hub
	sessions SessionManager
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new notification websocket handler
func NewWebSocketHandler(hub *notify.Hub, sessions SessionManager) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
		},
	}
}

// wsConn serializes writes to one connection.
type wsConn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) send(msg WSMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ws.WriteJSON(msg); err != nil {
		fmt.Printf("[WebSocket] Failed to send message: %v\n", err)
	}
}

func (w *wsConn) sendError(message, code string) {
	w.send(WSMessage{
		Type:      MsgTypeError,
		Timestamp: time.Now().UnixMilli(),
		Payload:   mustJSON(WSErrorResponse{Message: message, Code: code}),
	})
}

// HandleWebSocket upgrades the connection and relays notification events
// until the client disconnects or the session closes.
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	sessionID := c.Param("sessionId")
	if _, ok := wsh.sessions.GetSession(sessionID); !ok {
		return NewNotFoundError("session", sessionID)
	}

	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()
	conn := &wsConn{ws: ws}

	fmt.Printf("[WebSocket] Client connected to session %s\n", shortID(sessionID))

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	events := wsh.hub.Subscribe(ctx, sessionID)

	conn.send(WSMessage{
		Type:      MsgTypeConnected,
		ID:        sessionID,
		Timestamp: time.Now().UnixMilli(),
	})
	// Catch up on toasts that are still showing
	for _, n := range wsh.hub.Active(sessionID) {
		conn.send(WSMessage{
			Type:      MsgTypeShow,
			ID:        n.ID,
			Payload:   mustJSON(n),
			Timestamp: time.Now().UnixMilli(),
		})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			conn.send(WSMessage{
				Type:      string(ev.Type),
				ID:        ev.Notification.ID,
				Payload:   mustJSON(ev.Notification),
				Timestamp: ev.Timestamp.UnixMilli(),
			})
		}
		// Session closed or client gone
		ws.Close()
	}()

	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				fmt.Printf("[WebSocket] Connection error: %v\n", err)
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			wsh.sessions.TouchSession(sessionID)
			conn.send(WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		case MsgTypeDismiss:
			wsh.handleDismiss(conn, sessionID, msg.ID)
		case MsgTypeCancelPath:
			wsh.handleDismiss(conn, sessionID, pathcreation.NotificationID)
		default:
			conn.sendError("Unknown message type: "+msg.Type, "INVALID_TYPE")
		}
	}

	cancel()
	<-done
	fmt.Printf("[WebSocket] Client disconnected from session %s\n", shortID(sessionID))
	return nil
}

// handleDismiss hides a notification. Dismissing the path creation toast
// cancels the in-progress path, which dismisses it in turn.
func (wsh *WebSocketHandler) handleDismiss(conn *wsConn, sessionID, id string) {
	if id == "" {
		conn.sendError("notification id is required", "INVALID_PAYLOAD")
		return
	}
	if id == pathcreation.NotificationID {
		if sc, ok := wsh.sessions.GetScene(sessionID); ok && sc.CancelPathCreation() {
			return
		}
	}
	wsh.hub.Notifier(sessionID).Dismiss(id)
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
