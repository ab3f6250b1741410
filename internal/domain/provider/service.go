package provider

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateProvider(ctx context.Context, p *Provider) error {
	p.Email = NormalizeEmail(p.Email)
	if p.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !ValidEmail(p.Email) {
		return fmt.Errorf("invalid email: %s", p.Email)
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	p.IsActive = true
	return s.repo.Create(ctx, p)
}

func (s *Service) GetProvider(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetProviderByEmail(ctx context.Context, email string) (*Provider, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

// GetOrCreateByEmail returns the provider for the given email, creating
// a minimal active record with a name derived from the address when none
// exists yet. Used by the dictation intake path.
func (s *Service) GetOrCreateByEmail(ctx context.Context, email string) (*Provider, error) {
	email = NormalizeEmail(email)
	if !ValidEmail(email) {
		return nil, fmt.Errorf("invalid email: %s", email)
	}
	if p, err := s.repo.GetByEmail(ctx, email); err == nil {
		return p, nil
	}
	p := &Provider{
		Email:    email,
		Name:     NameFromEmail(email),
		IsActive: true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateProvider(ctx context.Context, p *Provider) error {
	p.Email = NormalizeEmail(p.Email)
	if p.Email != "" && !ValidEmail(p.Email) {
		return fmt.Errorf("invalid email: %s", p.Email)
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) DeleteProvider(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListProviders(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	return s.repo.List(ctx, limit, offset)
}
