package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrDuplicateMRN is returned when a create collides with an existing
// medical record number.
var ErrDuplicateMRN = errors.New("MRN already exists")

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByMRN(ctx context.Context, mrn string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Search(ctx context.Context, term string, limit, offset int) ([]*Patient, int, error)
}
