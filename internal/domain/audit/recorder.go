package audit

import (
	"context"
	"time"

	"github.com/soapnote/soapnote/internal/platform/middleware"
)

// Recorder persists middleware audit entries into system_audit_logs.
// It satisfies middleware.AuditRecorder.
type Recorder struct {
	repo    Repository
	timeout time.Duration
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo, timeout: 5 * time.Second}
}

func (r *Recorder) RecordAccess(entry middleware.AuditEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	l := &Log{
		Action:  entry.Action,
		Success: entry.StatusCode < 400,
	}
	if entry.UserID != "" {
		l.UserID = &entry.UserID
	}
	if entry.IPAddress != "" {
		l.IPAddress = &entry.IPAddress
	}
	if entry.UserAgent != "" {
		l.UserAgent = &entry.UserAgent
	}
	if entry.ResourceType != "" {
		l.ResourceType = &entry.ResourceType
	}
	if entry.ResourceID != "" {
		l.ResourceID = &entry.ResourceID
	}

	extra := map[string]any{
		"method":      entry.Method,
		"path":        entry.Path,
		"status_code": entry.StatusCode,
	}
	if entry.RequestID != "" {
		extra["request_id"] = entry.RequestID
	}
	if len(entry.UserRoles) > 0 {
		extra["roles"] = entry.UserRoles
	}
	l.AdditionalData = extra

	return r.repo.Create(ctx, l)
}
