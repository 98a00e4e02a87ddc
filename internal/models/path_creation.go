package models

// PathCreationMode is the ephemeral state of an in-progress path creation.
// It is never persisted and resets to inactive on completion or cancellation.
type PathCreationMode struct {
	IsActive      bool      `json:"isActive"`
	Type          PathShape `json:"type,omitempty"`
	StartPosition *Position `json:"startPosition,omitempty"`
	PathType      string    `json:"pathType,omitempty"`
	PathLabel     string    `json:"pathLabel,omitempty"`
	PathName      string    `json:"pathName,omitempty"`
}

// NotificationLevel is the severity of a user-facing notification.
type NotificationLevel string

const (
	NotificationInfo    NotificationLevel = "info"
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// Notification is a toast shown by the editor UI.
// Persistent notifications stay until dismissed; Cancelable ones carry a cancel action.
type Notification struct {
	ID         string            `json:"id"`
	Level      NotificationLevel `json:"level"`
	Message    string            `json:"message"`
	Persistent bool              `json:"persistent,omitempty"`
	Cancelable bool              `json:"cancelable,omitempty"`
}
