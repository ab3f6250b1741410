package note

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows note listings. Zero values match everything.
type ListFilter struct {
	ProviderEmail string
	PatientMRN    string
	Status        string
}

// DiagnosisCount pairs a primary diagnosis with how often it appears.
type DiagnosisCount struct {
	Diagnosis string `json:"diagnosis"`
	Count     int    `json:"count"`
}

type Repository interface {
	Create(ctx context.Context, n *SOAPNote) error
	GetByID(ctx context.Context, id uuid.UUID) (*SOAPNote, error)
	Update(ctx context.Context, n *SOAPNote) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*SOAPNote, int, error)

	// Analytics queries backing the dashboard.
	CountAll(ctx context.Context) (int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	CountByProvider(ctx context.Context, providerID uuid.UUID) (int, error)
	CountSignedByProvider(ctx context.Context, providerID uuid.UUID) (int, error)
	TopDiagnoses(ctx context.Context, limit int) ([]DiagnosisCount, error)
	AvgProcessingSeconds(ctx context.Context) (float64, error)
}
