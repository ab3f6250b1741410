package audit

import "context"

// ListFilter narrows audit log listings. Zero values match everything.
type ListFilter struct {
	UserID       string
	Action       string
	ResourceType string
}

type Repository interface {
	Create(ctx context.Context, l *Log) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Log, int, error)
}
