package note

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrForbidden is returned when the acting provider neither owns
	// the note nor holds the admin role.
	ErrForbidden = errors.New("not permitted to modify this note")

	// ErrImmutable is returned for edits to signed or archived notes.
	ErrImmutable = errors.New("signed or archived notes cannot be modified")

	// ErrSignedDelete is returned when deleting a signed note.
	ErrSignedDelete = errors.New("Cannot delete signed notes")

	// ErrNotSignable is returned when the note's status does not allow
	// signing.
	ErrNotSignable = errors.New("note cannot be signed in its current status")
)

// Actor identifies who is performing a note operation.
type Actor struct {
	ProviderID uuid.UUID
	Roles      []string
}

func (a Actor) IsAdmin() bool {
	for _, r := range a.Roles {
		if r == "admin" {
			return true
		}
	}
	return false
}

func (a Actor) canModify(n *SOAPNote) bool {
	return a.IsAdmin() || a.ProviderID == n.ProviderID
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateNote(ctx context.Context, n *SOAPNote) error {
	if n.ProviderID == uuid.Nil {
		return fmt.Errorf("provider_id is required")
	}
	if n.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if n.Status == "" {
		n.Status = StatusDraft
	}
	if !validStatuses[n.Status] {
		return fmt.Errorf("invalid status: %s", n.Status)
	}
	if n.VisitDate.IsZero() {
		n.VisitDate = time.Now().UTC()
	}
	n.Version = 1
	n.IsSigned = false
	return s.repo.Create(ctx, n)
}

func (s *Service) GetNote(ctx context.Context, id uuid.UUID) (*SOAPNote, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateNote applies edits to the note's clinical content and bumps the
// version. Provenance fields (provider, patient, audio linkage, AI
// metadata) are never overwritten by an edit.
func (s *Service) UpdateNote(ctx context.Context, upd *SOAPNote, actor Actor) (*SOAPNote, error) {
	existing, err := s.repo.GetByID(ctx, upd.ID)
	if err != nil {
		return nil, err
	}
	if !actor.canModify(existing) {
		return nil, ErrForbidden
	}
	if !existing.Mutable() {
		return nil, ErrImmutable
	}
	if upd.Status != "" {
		if !validStatuses[upd.Status] {
			return nil, fmt.Errorf("invalid status: %s", upd.Status)
		}
		if upd.Status == StatusSigned {
			return nil, fmt.Errorf("use the sign operation to sign a note")
		}
		existing.Status = upd.Status
	}

	if !upd.VisitDate.IsZero() {
		existing.VisitDate = upd.VisitDate
	}
	if upd.VisitType != nil {
		existing.VisitType = upd.VisitType
	}
	if upd.Transcription != nil {
		existing.Transcription = upd.Transcription
	}
	if upd.SubjectiveData != nil {
		existing.SubjectiveData = upd.SubjectiveData
	}
	if upd.ObjectiveData != nil {
		existing.ObjectiveData = upd.ObjectiveData
	}
	if upd.AssessmentData != nil {
		existing.AssessmentData = upd.AssessmentData
	}
	if upd.PlanData != nil {
		existing.PlanData = upd.PlanData
	}
	if upd.ChiefComplaint != nil {
		existing.ChiefComplaint = upd.ChiefComplaint
	}
	if upd.PrimaryDiagnosis != nil {
		existing.PrimaryDiagnosis = upd.PrimaryDiagnosis
	}
	if upd.ICD10Codes != nil {
		existing.ICD10Codes = upd.ICD10Codes
	}

	existing.Version++
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// SignNote finalizes a note. Only the owning provider or an admin may
// sign, and only from draft, review_needed or approved status.
func (s *Service) SignNote(ctx context.Context, id uuid.UUID, actor Actor) (*SOAPNote, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canModify(n) {
		return nil, ErrForbidden
	}
	if !n.Signable() {
		return nil, ErrNotSignable
	}

	now := time.Now().UTC()
	signer := actor.ProviderID
	n.Status = StatusSigned
	n.IsSigned = true
	n.SignedAt = &now
	n.SignedBy = &signer
	n.Version++

	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) DeleteNote(ctx context.Context, id uuid.UUID, actor Actor) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.canModify(n) {
		return ErrForbidden
	}
	if n.IsSigned {
		return ErrSignedDelete
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListNotes(ctx context.Context, filter ListFilter, limit, offset int) ([]*SOAPNote, int, error) {
	if filter.Status != "" && !validStatuses[filter.Status] {
		return nil, 0, fmt.Errorf("invalid status: %s", filter.Status)
	}
	return s.repo.List(ctx, filter, limit, offset)
}
