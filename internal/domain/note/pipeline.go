package note

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/soapnote/soapnote/internal/domain/audio"
	"github.com/soapnote/soapnote/internal/domain/audit"
	"github.com/soapnote/soapnote/internal/domain/patient"
	"github.com/soapnote/soapnote/internal/domain/provider"
	"github.com/soapnote/soapnote/internal/platform/soapgen"
	"github.com/soapnote/soapnote/internal/platform/speech"
)

// ErrTranscriptionFailed marks pipeline failures caused by the speech
// backend rather than by the caller's input.
var ErrTranscriptionFailed = errors.New("transcription failed")

// Transcriber converts audio bytes into a scored transcription.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (*speech.Result, error)
}

// Generator turns a transcription into a structured SOAP note.
type Generator interface {
	Generate(ctx context.Context, transcription string, pat *soapgen.PatientContext, prov *soapgen.ProviderContext) (*soapgen.Result, error)
}

// Intake is one dictation submission. Provider and patient records are
// created on the fly when they do not exist yet.
type Intake struct {
	ProviderEmail    string
	PatientMRN       string
	PatientFirstName string
	PatientLastName  string
	VisitType        string
	Filename         string
	ContentType      string
	Audio            []byte
}

// PipelineResult is the full outcome of a dictation run. Provider email
// and patient MRN are echoed at the top level so callers can confirm
// which records a get-or-create run resolved to.
type PipelineResult struct {
	SessionID     string                 `json:"session_id"`
	ProviderEmail string                 `json:"provider_email"`
	PatientMRN    string                 `json:"patient_mrn"`
	Note          *SOAPNote              `json:"soap_note"`
	AudioFile     *audio.AudioFile       `json:"audio_file"`
	Transcription *speech.Result         `json:"transcription"`
	Quality       soapgen.QualityMetrics `json:"quality_metrics"`
}

// auditSink is the slice of the audit repository the pipeline needs to
// record its checkpoints. A nil sink disables recording.
type auditSink interface {
	Create(ctx context.Context, l *audit.Log) error
}

// Pipeline orchestrates dictation intake end to end: store the audio,
// transcribe it, generate the structured note, and persist everything.
type Pipeline struct {
	notes       *Service
	providers   *provider.Service
	patients    *patient.Service
	audioFiles  *audio.Service
	transcriber Transcriber
	generator   Generator
	audits      auditSink
	log         zerolog.Logger
}

func NewPipeline(notes *Service, providers *provider.Service, patients *patient.Service,
	audioFiles *audio.Service, transcriber Transcriber, generator Generator,
	audits auditSink, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		notes:       notes,
		providers:   providers,
		patients:    patients,
		audioFiles:  audioFiles,
		transcriber: transcriber,
		generator:   generator,
		audits:      audits,
		log:         log,
	}
}

// audit records one pipeline checkpoint. Failures to write the record
// are logged and never interrupt the run.
func (p *Pipeline) audit(ctx context.Context, sessionID, action string, success bool, errMsg *string, extra map[string]any) {
	if p.audits == nil {
		return
	}
	resourceType := "voice_session"
	l := &audit.Log{
		SessionID:      &sessionID,
		Action:         action,
		ResourceType:   &resourceType,
		Success:        success,
		ErrorMessage:   errMsg,
		AdditionalData: extra,
	}
	if err := p.audits.Create(ctx, l); err != nil {
		p.log.Error().Err(err).Str("action", action).Msg("audit write failed")
	}
}

// cleanup discards the stored recording of a failed session in the
// background. The tracking row stays for audit.
func (p *Pipeline) cleanup(audioFileID uuid.UUID, sessionID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.audioFiles.DiscardContent(ctx, audioFileID); err != nil {
			p.log.Warn().Err(err).Str("session_id", sessionID).Msg("session cleanup failed")
		}
	}()
}

func (p *Pipeline) Run(ctx context.Context, in Intake) (*PipelineResult, error) {
	start := time.Now()
	sessionID := uuid.NewString()

	p.audit(ctx, sessionID, "voice_to_soap_start", true, nil, map[string]any{
		"provider_email": in.ProviderEmail,
		"patient_mrn":    in.PatientMRN,
		"filename":       in.Filename,
	})

	prov, err := p.providers.GetOrCreateByEmail(ctx, in.ProviderEmail)
	if err != nil {
		return nil, fmt.Errorf("resolve provider: %w", err)
	}
	pat, err := p.patients.GetOrCreateByMRN(ctx, in.PatientMRN, in.PatientFirstName, in.PatientLastName)
	if err != nil {
		return nil, fmt.Errorf("resolve patient: %w", err)
	}

	af, err := p.audioFiles.Upload(ctx, prov.ID, in.Filename, in.ContentType, bytes.NewReader(in.Audio))
	if err != nil {
		return nil, fmt.Errorf("store recording: %w", err)
	}

	if _, err := p.audioFiles.UpdateStatus(ctx, af.ID, audio.StatusProcessing, nil, nil); err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}

	tr, err := p.transcriber.Transcribe(ctx, in.Audio, in.ContentType)
	if err != nil {
		msg := err.Error()
		if _, ferr := p.audioFiles.UpdateStatus(ctx, af.ID, audio.StatusFailed, nil, &msg); ferr != nil {
			p.log.Error().Err(ferr).Str("audio_file_id", af.ID.String()).Msg("failed to record transcription failure")
		}
		p.audit(ctx, sessionID, "transcription_failed", false, &msg, map[string]any{
			"audio_file_id": af.ID.String(),
		})
		p.cleanup(af.ID, sessionID)
		return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	af, err = p.audioFiles.UpdateStatus(ctx, af.ID, audio.StatusCompleted, &tr.Confidence, nil)
	if err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}

	patCtx := &soapgen.PatientContext{Age: pat.Age(time.Now().UTC())}
	if pat.Gender != nil {
		patCtx.Gender = *pat.Gender
	}
	var provCtx soapgen.ProviderContext
	if prov.Specialty != nil {
		provCtx.Specialty = *prov.Specialty
	}

	gen, err := p.generator.Generate(ctx, tr.Text, patCtx, &provCtx)
	if err != nil {
		return nil, fmt.Errorf("generate note: %w", err)
	}

	n := buildNote(prov.ID, pat.ID, af.ID, in.VisitType, tr, gen)
	elapsed := time.Since(start).Seconds()
	n.ProcessingTimeSeconds = &elapsed

	if err := p.notes.CreateNote(ctx, n); err != nil {
		return nil, fmt.Errorf("persist note: %w", err)
	}

	p.audit(ctx, sessionID, "soap_note_created", true, nil, map[string]any{
		"soap_note_id": n.ID.String(),
		"status":       n.Status,
	})

	p.log.Info().
		Str("session_id", sessionID).
		Str("note_id", n.ID.String()).
		Str("provider", prov.Email).
		Str("patient_mrn", pat.MRN).
		Str("quality", gen.Quality.QualityLevel).
		Float64("elapsed_seconds", elapsed).
		Msg("dictation processed")

	return &PipelineResult{
		SessionID:     sessionID,
		ProviderEmail: prov.Email,
		PatientMRN:    pat.MRN,
		Note:          n,
		AudioFile:     af,
		Transcription: tr,
		Quality:       gen.Quality,
	}, nil
}

// buildNote maps a generated note onto the persistence model. Low
// quality output is filed as review_needed instead of draft.
func buildNote(providerID, patientID, audioFileID uuid.UUID, visitType string, tr *speech.Result, gen *soapgen.Result) *SOAPNote {
	subj := gen.Note.Subjective
	obj := gen.Note.Objective
	assess := gen.Note.Assessment
	plan := gen.Note.Plan

	n := &SOAPNote{
		ProviderID:              providerID,
		PatientID:               patientID,
		AudioFileID:             &audioFileID,
		VisitDate:               time.Now().UTC(),
		Transcription:           &tr.Text,
		TranscriptionConfidence: &tr.Confidence,
		SubjectiveData:          &subj,
		ObjectiveData:           &obj,
		AssessmentData:          &assess,
		PlanData:                &plan,
		ICD10Codes:              assess.ICD10Codes,
		Status:                  StatusDraft,
	}
	if visitType != "" {
		n.VisitType = &visitType
	}
	if subj.ChiefComplaint != "" {
		cc := subj.ChiefComplaint
		n.ChiefComplaint = &cc
	}
	if assess.PrimaryDiagnosis != "" {
		dx := assess.PrimaryDiagnosis
		n.PrimaryDiagnosis = &dx
	}

	model := gen.Meta.Model
	score := gen.Quality.OverallScore
	tokens := gen.Meta.TokensUsed
	cost := gen.Meta.EstimatedCostUSD
	n.AIModelUsed = &model
	n.AIConfidenceScore = &score
	n.TokensUsed = &tokens
	n.EstimatedCost = &cost

	if gen.Quality.OverallScore < 0.6 {
		n.Status = StatusReviewNeeded
	}
	return n
}
