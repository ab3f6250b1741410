package note

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBuildDashboard(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	now := time.Now().UTC()
	providerID := uuid.New()

	dx := "Migraine, unspecified"
	secs := 12.0
	for i := 0; i < 3; i++ {
		n := &SOAPNote{
			ProviderID:            providerID,
			PatientID:             uuid.New(),
			Status:                StatusDraft,
			Version:               1,
			PrimaryDiagnosis:      &dx,
			ProcessingTimeSeconds: &secs,
		}
		if err := repo.Create(context.Background(), n); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if i == 0 {
			if _, err := svc.SignNote(context.Background(), n.ID, Actor{ProviderID: providerID}); err != nil {
				t.Fatalf("sign: %v", err)
			}
		}
	}
	// A note from another provider with a different diagnosis.
	other := "Headache"
	if err := repo.Create(context.Background(), &SOAPNote{
		ProviderID:       uuid.New(),
		PatientID:        uuid.New(),
		Status:           StatusDraft,
		Version:          1,
		PrimaryDiagnosis: &other,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	dash, err := svc.BuildDashboard(context.Background(), providerID, now)
	if err != nil {
		t.Fatalf("BuildDashboard: %v", err)
	}

	if dash.TotalNotes != 4 {
		t.Errorf("total_notes = %d, want 4", dash.TotalNotes)
	}
	if dash.NotesToday != 4 || dash.NotesThisWeek != 4 || dash.NotesThisMonth != 4 {
		t.Errorf("window counts = %d/%d/%d, want 4/4/4",
			dash.NotesToday, dash.NotesThisWeek, dash.NotesThisMonth)
	}
	if dash.AverageCompletionTime != 12.0 {
		t.Errorf("average_completion_time = %v", dash.AverageCompletionTime)
	}
	if len(dash.MostCommonDiagnoses) != 2 {
		t.Fatalf("diagnoses = %v", dash.MostCommonDiagnoses)
	}
	if dash.ProviderStats.NotesCreated != 3 {
		t.Errorf("notes_created = %d, want 3", dash.ProviderStats.NotesCreated)
	}
	if dash.ProviderStats.CompletionRate != 0.33 {
		t.Errorf("completion_rate = %v, want 0.33", dash.ProviderStats.CompletionRate)
	}
	if dash.ProviderStats.AverageDaily != 0.1 {
		t.Errorf("average_daily = %v, want 0.1", dash.ProviderStats.AverageDaily)
	}
}

func TestBuildDashboard_Empty(t *testing.T) {
	svc := NewService(newMockRepo())

	dash, err := svc.BuildDashboard(context.Background(), uuid.New(), time.Now().UTC())
	if err != nil {
		t.Fatalf("BuildDashboard: %v", err)
	}
	if dash.TotalNotes != 0 || dash.ProviderStats.CompletionRate != 0 {
		t.Errorf("unexpected dashboard: %+v", dash)
	}
	if dash.MostCommonDiagnoses == nil {
		t.Error("most_common_diagnoses should be an empty slice, not nil")
	}
}
