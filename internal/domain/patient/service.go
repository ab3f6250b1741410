package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	p.MRN = strings.TrimSpace(p.MRN)
	if p.MRN == "" {
		return fmt.Errorf("mrn is required")
	}
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	p.IsActive = true
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetPatientByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return s.repo.GetByMRN(ctx, strings.TrimSpace(mrn))
}

// GetOrCreateByMRN returns the patient with the given record number,
// creating a minimal record when none exists. The dictation intake path
// uses this so a note can be filed before registration completes.
func (s *Service) GetOrCreateByMRN(ctx context.Context, mrn, firstName, lastName string) (*Patient, error) {
	mrn = strings.TrimSpace(mrn)
	if mrn == "" {
		return nil, fmt.Errorf("mrn is required")
	}
	if p, err := s.repo.GetByMRN(ctx, mrn); err == nil {
		return p, nil
	}
	if firstName == "" {
		firstName = "Unknown"
	}
	if lastName == "" {
		lastName = "Patient"
	}
	p := &Patient{
		MRN:       mrn,
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	p.MRN = strings.TrimSpace(p.MRN)
	if p.MRN == "" {
		return fmt.Errorf("mrn is required")
	}
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	if search = strings.TrimSpace(search); search != "" {
		return s.repo.Search(ctx, search, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}
