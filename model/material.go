// model/material.go
package model

import "time"

// Material is uploaded-study-material metadata. The file bytes themselves live in
// external storage; this service only tracks ownership and download counts.
type Material struct {
	ID            int64     `json:"id"`
	OwnerID       int64     `json:"owner_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Subject       string    `json:"subject"`
	FileName      string    `json:"file_name"`
	FileSize      int64     `json:"file_size"`
	DownloadCount int64     `json:"download_count"`
	UploadedAt    time.Time `json:"uploaded_at"`
}
