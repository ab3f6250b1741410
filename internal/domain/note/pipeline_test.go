package note

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/soapnote/soapnote/internal/domain/audio"
	"github.com/soapnote/soapnote/internal/domain/audit"
	"github.com/soapnote/soapnote/internal/domain/patient"
	"github.com/soapnote/soapnote/internal/domain/provider"
	"github.com/soapnote/soapnote/internal/platform/blobstore"
	"github.com/soapnote/soapnote/internal/platform/soapgen"
	"github.com/soapnote/soapnote/internal/platform/speech"
)

type fakeProviderRepo struct {
	byEmail map[string]*provider.Provider
}

func (f *fakeProviderRepo) Create(ctx context.Context, p *provider.Provider) error {
	p.ID = uuid.New()
	f.byEmail[p.Email] = p
	return nil
}

func (f *fakeProviderRepo) GetByID(ctx context.Context, id uuid.UUID) (*provider.Provider, error) {
	for _, p := range f.byEmail {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (f *fakeProviderRepo) GetByEmail(ctx context.Context, email string) (*provider.Provider, error) {
	p, ok := f.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (f *fakeProviderRepo) Update(ctx context.Context, p *provider.Provider) error { return nil }
func (f *fakeProviderRepo) Delete(ctx context.Context, id uuid.UUID) error         { return nil }
func (f *fakeProviderRepo) List(ctx context.Context, limit, offset int) ([]*provider.Provider, int, error) {
	return nil, 0, nil
}

type fakePatientRepo struct {
	byMRN map[string]*patient.Patient
}

func (f *fakePatientRepo) Create(ctx context.Context, p *patient.Patient) error {
	p.ID = uuid.New()
	f.byMRN[p.MRN] = p
	return nil
}

func (f *fakePatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	return nil, fmt.Errorf("not found")
}

func (f *fakePatientRepo) GetByMRN(ctx context.Context, mrn string) (*patient.Patient, error) {
	p, ok := f.byMRN[mrn]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (f *fakePatientRepo) Update(ctx context.Context, p *patient.Patient) error { return nil }
func (f *fakePatientRepo) Delete(ctx context.Context, id uuid.UUID) error       { return nil }
func (f *fakePatientRepo) List(ctx context.Context, limit, offset int) ([]*patient.Patient, int, error) {
	return nil, 0, nil
}
func (f *fakePatientRepo) Search(ctx context.Context, term string, limit, offset int) ([]*patient.Patient, int, error) {
	return nil, 0, nil
}

type fakeAudioRepo struct {
	byID map[uuid.UUID]*audio.AudioFile
}

func (f *fakeAudioRepo) Create(ctx context.Context, a *audio.AudioFile) error {
	a.ID = uuid.New()
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAudioRepo) GetByID(ctx context.Context, id uuid.UUID) (*audio.AudioFile, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAudioRepo) Update(ctx context.Context, a *audio.AudioFile) error {
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAudioRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeAudioRepo) List(ctx context.Context, limit, offset int) ([]*audio.AudioFile, int, error) {
	return nil, 0, nil
}
func (f *fakeAudioRepo) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*audio.AudioFile, int, error) {
	return nil, 0, nil
}

type fakeAuditSink struct {
	logs []*audit.Log
}

func (f *fakeAuditSink) Create(ctx context.Context, l *audit.Log) error {
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeAuditSink) actions() []string {
	out := make([]string, 0, len(f.logs))
	for _, l := range f.logs {
		out = append(out, l.Action)
	}
	return out
}

type fakeTranscriber struct {
	result *speech.Result
	err    error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioBytes []byte, contentType string) (*speech.Result, error) {
	return f.result, f.err
}

type fakeGenerator struct {
	result *soapgen.Result
	err    error
}

func (f *fakeGenerator) Generate(ctx context.Context, transcription string, pat *soapgen.PatientContext, prov *soapgen.ProviderContext) (*soapgen.Result, error) {
	return f.result, f.err
}

func goodGeneration() *soapgen.Result {
	return &soapgen.Result{
		Note: soapgen.Note{
			Subjective: soapgen.Subjective{
				ChiefComplaint:        "Recurrent headaches",
				HistoryPresentIllness: "Three weeks of frontal headaches",
			},
			Assessment: soapgen.Assessment{
				PrimaryDiagnosis: "Migraine, unspecified",
				ICD10Codes:       soapgen.StringList{"G43.909"},
			},
			Plan: soapgen.Plan{
				Medications: soapgen.StringList{"Sumatriptan 50mg as needed"},
				FollowUp:    "Return in 4 weeks",
			},
		},
		Quality: soapgen.QualityMetrics{OverallScore: 0.85, QualityLevel: "excellent"},
		Meta: soapgen.ProcessingMetadata{
			Model:            "gpt-4-turbo-preview",
			TokensUsed:       1800,
			EstimatedCostUSD: 0.072,
		},
	}
}

func newTestPipeline(tr Transcriber, gen Generator) (*Pipeline, *mockRepo, *fakeAudioRepo, *fakeAuditSink) {
	noteRepo := newMockRepo()
	audioRepo := &fakeAudioRepo{byID: make(map[uuid.UUID]*audio.AudioFile)}
	sink := &fakeAuditSink{}

	notes := NewService(noteRepo)
	providers := provider.NewService(&fakeProviderRepo{byEmail: make(map[string]*provider.Provider)})
	patients := patient.NewService(&fakePatientRepo{byMRN: make(map[string]*patient.Patient)})
	audioFiles := audio.NewService(audioRepo, blobstore.NewInMemoryBlobStore())

	p := NewPipeline(notes, providers, patients, audioFiles, tr, gen, sink, zerolog.Nop())
	return p, noteRepo, audioRepo, sink
}

func testIntake() Intake {
	return Intake{
		ProviderEmail: "jane.smith@clinic.org",
		PatientMRN:    "MRN-1001",
		VisitType:     "follow_up",
		Filename:      "visit.wav",
		ContentType:   "audio/wav",
		Audio:         []byte("RIFF fake audio"),
	}
}

func TestPipelineRun(t *testing.T) {
	tr := &fakeTranscriber{result: &speech.Result{
		Text:       "Patient presents with recurrent headaches for three weeks.",
		Confidence: "high",
		WordCount:  8,
	}}
	p, _, audioRepo, sink := newTestPipeline(tr, &fakeGenerator{result: goodGeneration()})

	res, err := p.Run(context.Background(), testIntake())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.SessionID == "" {
		t.Error("session id missing")
	}
	if res.ProviderEmail != "jane.smith@clinic.org" {
		t.Errorf("provider email = %q", res.ProviderEmail)
	}
	if res.PatientMRN != "MRN-1001" {
		t.Errorf("patient mrn = %q", res.PatientMRN)
	}

	actions := sink.actions()
	if len(actions) != 2 || actions[0] != "voice_to_soap_start" || actions[1] != "soap_note_created" {
		t.Errorf("audit actions = %v", actions)
	}

	n := res.Note
	if n.Status != StatusDraft {
		t.Errorf("status = %s, want draft", n.Status)
	}
	if n.Version != 1 {
		t.Errorf("version = %d", n.Version)
	}
	if n.ChiefComplaint == nil || *n.ChiefComplaint != "Recurrent headaches" {
		t.Error("chief complaint not mapped")
	}
	if n.PrimaryDiagnosis == nil || *n.PrimaryDiagnosis != "Migraine, unspecified" {
		t.Error("primary diagnosis not mapped")
	}
	if len(n.ICD10Codes) != 1 || n.ICD10Codes[0] != "G43.909" {
		t.Errorf("icd10_codes = %v", n.ICD10Codes)
	}
	if n.AIModelUsed == nil || *n.AIModelUsed != "gpt-4-turbo-preview" {
		t.Error("model not recorded")
	}
	if n.TokensUsed == nil || *n.TokensUsed != 1800 {
		t.Error("tokens not recorded")
	}
	if n.ProcessingTimeSeconds == nil {
		t.Error("processing time not recorded")
	}
	if n.AudioFileID == nil {
		t.Fatal("audio linkage missing")
	}

	af, err := audioRepo.GetByID(context.Background(), *n.AudioFileID)
	if err != nil {
		t.Fatalf("audio record: %v", err)
	}
	if af.TranscriptionStatus != audio.StatusCompleted {
		t.Errorf("audio status = %s", af.TranscriptionStatus)
	}
	if af.TranscriptionConfidence == nil || *af.TranscriptionConfidence != "high" {
		t.Error("confidence not recorded on audio file")
	}
}

func TestPipelineRun_LowQualityFlagsReview(t *testing.T) {
	gen := goodGeneration()
	gen.Quality.OverallScore = 0.45
	gen.Quality.QualityLevel = "fair"

	tr := &fakeTranscriber{result: &speech.Result{Text: "short dictation here", Confidence: "low"}}
	p, _, _, _ := newTestPipeline(tr, &fakeGenerator{result: gen})

	res, err := p.Run(context.Background(), testIntake())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Note.Status != StatusReviewNeeded {
		t.Errorf("status = %s, want review_needed", res.Note.Status)
	}
}

func TestPipelineRun_TranscriptionFailure(t *testing.T) {
	tr := &fakeTranscriber{err: fmt.Errorf("speech service unavailable")}
	p, noteRepo, audioRepo, sink := newTestPipeline(tr, &fakeGenerator{result: goodGeneration()})

	_, err := p.Run(context.Background(), testIntake())
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Fatalf("expected ErrTranscriptionFailed, got %v", err)
	}
	if len(noteRepo.byID) != 0 {
		t.Error("no note should be persisted on failure")
	}

	actions := sink.actions()
	if len(actions) != 2 || actions[1] != "transcription_failed" {
		t.Errorf("audit actions = %v", actions)
	}

	var failed bool
	for _, af := range audioRepo.byID {
		if af.TranscriptionStatus == audio.StatusFailed &&
			af.ErrorMessage != nil && strings.Contains(*af.ErrorMessage, "unavailable") {
			failed = true
		}
	}
	if !failed {
		t.Error("audio file not marked failed with error message")
	}
}

func TestPipelineRun_BadProviderEmail(t *testing.T) {
	p, _, _, _ := newTestPipeline(&fakeTranscriber{}, &fakeGenerator{})

	in := testIntake()
	in.ProviderEmail = "not-an-email"
	if _, err := p.Run(context.Background(), in); err == nil {
		t.Error("expected provider resolution error")
	}
}
