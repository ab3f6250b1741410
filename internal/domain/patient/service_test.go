package patient

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	byID  map[uuid.UUID]*Patient
	byMRN map[string]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byID:  make(map[uuid.UUID]*Patient),
		byMRN: make(map[string]*Patient),
	}
}

func (m *mockRepo) Create(ctx context.Context, p *Patient) error {
	if _, ok := m.byMRN[p.MRN]; ok {
		return ErrDuplicateMRN
	}
	p.ID = uuid.New()
	m.byID[p.ID] = p
	m.byMRN[p.MRN] = p
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	p, ok := m.byMRN[mrn]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) Update(ctx context.Context, p *Patient) error {
	if _, ok := m.byID[p.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.byID[p.ID] = p
	m.byMRN[p.MRN] = p
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	p, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	delete(m.byMRN, p.MRN)
	delete(m.byID, id)
	return nil
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockRepo) Search(ctx context.Context, term string, limit, offset int) ([]*Patient, int, error) {
	term = strings.ToLower(term)
	var out []*Patient
	for _, p := range m.byID {
		if strings.Contains(strings.ToLower(p.FirstName), term) ||
			strings.Contains(strings.ToLower(p.LastName), term) ||
			strings.Contains(strings.ToLower(p.MRN), term) {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func TestCreatePatient(t *testing.T) {
	svc := NewService(newMockRepo())

	p := &Patient{MRN: " MRN-1001 ", FirstName: "Sarah", LastName: "Connor"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}
	if p.MRN != "MRN-1001" {
		t.Errorf("mrn not trimmed: %q", p.MRN)
	}
	if !p.IsActive {
		t.Error("new patient should be active")
	}
}

func TestCreatePatient_DuplicateMRN(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.CreatePatient(context.Background(), &Patient{MRN: "MRN-1", FirstName: "A", LastName: "B"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := svc.CreatePatient(context.Background(), &Patient{MRN: "MRN-1", FirstName: "C", LastName: "D"})
	if err != ErrDuplicateMRN {
		t.Fatalf("expected ErrDuplicateMRN, got %v", err)
	}
}

func TestCreatePatient_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []struct {
		name string
		p    *Patient
	}{
		{"missing mrn", &Patient{FirstName: "A", LastName: "B"}},
		{"missing names", &Patient{MRN: "MRN-2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.CreatePatient(context.Background(), tc.p); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetOrCreateByMRN(t *testing.T) {
	svc := NewService(newMockRepo())

	p, err := svc.GetOrCreateByMRN(context.Background(), "MRN-42", "", "")
	if err != nil {
		t.Fatalf("GetOrCreateByMRN: %v", err)
	}
	if p.FirstName != "Unknown" || p.LastName != "Patient" {
		t.Errorf("placeholder names = %s %s", p.FirstName, p.LastName)
	}

	again, err := svc.GetOrCreateByMRN(context.Background(), "MRN-42", "Sarah", "Connor")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if again.ID != p.ID {
		t.Error("expected existing patient")
	}
}

func TestListPatients_SearchDispatch(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	seed := []*Patient{
		{MRN: "MRN-1", FirstName: "Sarah", LastName: "Connor"},
		{MRN: "MRN-2", FirstName: "John", LastName: "Connor"},
		{MRN: "MRN-3", FirstName: "Miles", LastName: "Dyson"},
	}
	for _, p := range seed {
		if err := repo.Create(context.Background(), p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, total, err := svc.ListPatients(context.Background(), "connor", 20, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Errorf("search connor: total=%d len=%d", total, len(got))
	}

	_, total, err = svc.ListPatients(context.Background(), "", 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Errorf("list total = %d, want 3", total)
	}
}

func TestPatientAge(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	dob := time.Date(1990, 9, 1, 0, 0, 0, 0, time.UTC)
	p := &Patient{DateOfBirth: &dob}
	if got := p.Age(now); got != 35 {
		t.Errorf("age before birthday = %d, want 35", got)
	}

	dob2 := time.Date(1990, 8, 26, 0, 0, 0, 0, time.UTC)
	p2 := &Patient{DateOfBirth: &dob2}
	if got := p2.Age(now); got != 36 {
		t.Errorf("age on birthday = %d, want 36", got)
	}

	if got := (&Patient{}).Age(now); got != -1 {
		t.Errorf("unknown dob = %d, want -1", got)
	}
}
