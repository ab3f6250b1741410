package audit

import (
	"time"

	"github.com/google/uuid"
)

// Log is one recorded access or mutation against the API, kept for
// compliance review.
type Log struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	UserID         *string        `db:"user_id" json:"user_id,omitempty"`
	SessionID      *string        `db:"session_id" json:"session_id,omitempty"`
	IPAddress      *string        `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent      *string        `db:"user_agent" json:"user_agent,omitempty"`
	Action         string         `db:"action" json:"action"`
	ResourceType   *string        `db:"resource_type" json:"resource_type,omitempty"`
	ResourceID     *string        `db:"resource_id" json:"resource_id,omitempty"`
	Success        bool           `db:"success" json:"success"`
	ErrorMessage   *string        `db:"error_message" json:"error_message,omitempty"`
	AdditionalData map[string]any `db:"additional_data" json:"additional_data,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}
