package audio

import (
	"time"

	"github.com/google/uuid"
)

// Transcription status values for an uploaded audio file.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Transcription confidence bands reported by the speech service.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// AudioFile is an uploaded dictation recording and the state of its
// transcription. BlobName points at the stored content.
type AudioFile struct {
	ID                      uuid.UUID `db:"id" json:"id"`
	Filename                string    `db:"filename" json:"filename"`
	OriginalFilename        string    `db:"original_filename" json:"original_filename"`
	FileSize                int64     `db:"file_size" json:"file_size"`
	MimeType                string    `db:"mime_type" json:"mime_type"`
	DurationSeconds         *float64  `db:"duration_seconds" json:"duration_seconds,omitempty"`
	BlobContainer           string    `db:"blob_container" json:"blob_container"`
	BlobName                string    `db:"blob_name" json:"blob_name"`
	BlobURL                 *string   `db:"blob_url" json:"blob_url,omitempty"`
	TranscriptionStatus     string    `db:"transcription_status" json:"transcription_status"`
	TranscriptionConfidence *string   `db:"transcription_confidence" json:"transcription_confidence,omitempty"`
	ErrorMessage            *string   `db:"error_message" json:"error_message,omitempty"`
	ProviderID              uuid.UUID `db:"provider_id" json:"provider_id"`
	CreatedAt               time.Time `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time `db:"updated_at" json:"updated_at"`
}

// allowedTransitions maps a transcription status to the statuses it may
// move to. Completed is terminal; a failed transcription may be retried.
var allowedTransitions = map[string]map[string]bool{
	StatusPending:    {StatusProcessing: true, StatusFailed: true},
	StatusProcessing: {StatusCompleted: true, StatusFailed: true},
	StatusFailed:     {StatusProcessing: true},
	StatusCompleted:  {},
}

// CanTransition reports whether a status change is permitted.
func CanTransition(from, to string) bool {
	next, ok := allowedTransitions[from]
	return ok && next[to]
}
