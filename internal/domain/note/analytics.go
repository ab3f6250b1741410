package note

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
)

// ProviderStats summarizes the acting provider's documentation activity.
type ProviderStats struct {
	NotesCreated   int     `json:"notes_created"`
	AverageDaily   float64 `json:"average_daily"`
	CompletionRate float64 `json:"completion_rate"`
}

// Dashboard is the analytics payload for the documentation overview.
type Dashboard struct {
	TotalNotes            int              `json:"total_notes"`
	NotesToday            int              `json:"notes_today"`
	NotesThisWeek         int              `json:"notes_this_week"`
	NotesThisMonth        int              `json:"notes_this_month"`
	AverageCompletionTime float64          `json:"average_completion_time"`
	MostCommonDiagnoses   []DiagnosisCount `json:"most_common_diagnoses"`
	ProviderStats         ProviderStats    `json:"provider_stats"`
}

// BuildDashboard aggregates note counts, top diagnoses, and per-provider
// stats. The week window is the last 7 days and the month the last 30.
func (s *Service) BuildDashboard(ctx context.Context, providerID uuid.UUID, now time.Time) (*Dashboard, error) {
	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.repo.CountCreatedSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}
	week, err := s.repo.CountCreatedSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	month, err := s.repo.CountCreatedSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	avgSeconds, err := s.repo.AvgProcessingSeconds(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopDiagnoses(ctx, 5)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []DiagnosisCount{}
	}

	created, err := s.repo.CountByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	signed, err := s.repo.CountSignedByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	stats := ProviderStats{NotesCreated: created}
	stats.AverageDaily = round2(float64(created) / 30)
	if created > 0 {
		stats.CompletionRate = round2(float64(signed) / float64(created))
	}

	return &Dashboard{
		TotalNotes:            total,
		NotesToday:            today,
		NotesThisWeek:         week,
		NotesThisMonth:        month,
		AverageCompletionTime: round2(avgSeconds),
		MostCommonDiagnoses:   top,
		ProviderStats:         stats,
	}, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
