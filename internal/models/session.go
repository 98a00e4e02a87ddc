package models

import "time"

// EditorSession describes one editing session and its scene.
type EditorSession struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	LastAccessed time.Time `json:"lastAccessed"`
	TargetCount  int       `json:"targetCount"`
	PathCount    int       `json:"pathCount"`
}
