// Package media manages uploaded images: news covers, product photos, and
// banner slides. Files land on the local filesystem under random names and
// are tracked in the media table; the HTTP layer serves them statically.
package media

import "time"

// Media is one uploaded file.
type Media struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"file_name"`
	Path       string    `json:"path"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}
