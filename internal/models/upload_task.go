package models

import "time"

// UploadState tracks one ingestion's lifecycle.
type UploadState string

const (
	UploadPending   UploadState = "pending"
	UploadUploading UploadState = "uploading"
	UploadSuccess   UploadState = "success"
	UploadError     UploadState = "error"
)

// UploadTask is transient per-ingestion state. It exists only for the
// duration of one ingestion call and is never persisted.
type UploadTask struct {
	ID          string      `json:"id"`
	Filename    string      `json:"filename"`
	ContentType string      `json:"contentType"`
	Size        int64       `json:"size"`
	Locale      Locale      `json:"locale"`
	State       UploadState `json:"state"`
	Progress    float64     `json:"progress"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
