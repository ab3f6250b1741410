package suggest

import "context"

type Repository interface {
	Diagnoses(ctx context.Context, query string, limit int) ([]Diagnosis, error)
	Medications(ctx context.Context, query string, limit int) ([]Medication, error)
}
