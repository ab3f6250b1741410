package audio

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *AudioFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*AudioFile, error)
	Update(ctx context.Context, a *AudioFile) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*AudioFile, int, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*AudioFile, int, error)
}
