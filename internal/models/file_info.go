package models

import "time"

// FileInfo represents metadata about a stored scene file.
type FileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	Status     string    `json:"status"`           // "uploaded", "exported"
	Format     string    `json:"format,omitempty"` // codec name, e.g. "json", "geojson"
}
