package note

import (
	"time"

	"github.com/google/uuid"

	"github.com/soapnote/soapnote/internal/platform/soapgen"
)

// Note lifecycle statuses. Signed and archived notes are immutable.
const (
	StatusDraft        = "draft"
	StatusReviewNeeded = "review_needed"
	StatusApproved     = "approved"
	StatusSigned       = "signed"
	StatusArchived     = "archived"
)

var validStatuses = map[string]bool{
	StatusDraft:        true,
	StatusReviewNeeded: true,
	StatusApproved:     true,
	StatusSigned:       true,
	StatusArchived:     true,
}

// signableStatuses are the states a note may be signed from.
var signableStatuses = map[string]bool{
	StatusDraft:        true,
	StatusReviewNeeded: true,
	StatusApproved:     true,
}

// SOAPNote is a structured clinical note generated from a dictation
// transcription. The four section payloads are stored as JSONB.
type SOAPNote struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	ProviderID  uuid.UUID  `db:"provider_id" json:"provider_id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	AudioFileID *uuid.UUID `db:"audio_file_id" json:"audio_file_id,omitempty"`

	VisitDate time.Time `db:"visit_date" json:"visit_date"`
	VisitType *string   `db:"visit_type" json:"visit_type,omitempty"`

	Transcription           *string `db:"transcription" json:"transcription,omitempty"`
	TranscriptionConfidence *string `db:"transcription_confidence" json:"transcription_confidence,omitempty"`

	SubjectiveData *soapgen.Subjective `db:"subjective_data" json:"subjective_data,omitempty"`
	ObjectiveData  *soapgen.Objective  `db:"objective_data" json:"objective_data,omitempty"`
	AssessmentData *soapgen.Assessment `db:"assessment_data" json:"assessment_data,omitempty"`
	PlanData       *soapgen.Plan       `db:"plan_data" json:"plan_data,omitempty"`

	ChiefComplaint   *string            `db:"chief_complaint" json:"chief_complaint,omitempty"`
	PrimaryDiagnosis *string            `db:"primary_diagnosis" json:"primary_diagnosis,omitempty"`
	ICD10Codes       soapgen.StringList `db:"icd10_codes" json:"icd10_codes,omitempty"`

	AIModelUsed           *string  `db:"ai_model_used" json:"ai_model_used,omitempty"`
	AIConfidenceScore     *float64 `db:"ai_confidence_score" json:"ai_confidence_score,omitempty"`
	ProcessingTimeSeconds *float64 `db:"processing_time_seconds" json:"processing_time_seconds,omitempty"`
	TokensUsed            *int     `db:"tokens_used" json:"tokens_used,omitempty"`
	EstimatedCost         *float64 `db:"estimated_cost" json:"estimated_cost,omitempty"`

	Status   string     `db:"status" json:"status"`
	Version  int        `db:"version" json:"version"`
	IsSigned bool       `db:"is_signed" json:"is_signed"`
	SignedAt *time.Time `db:"signed_at" json:"signed_at,omitempty"`
	SignedBy *uuid.UUID `db:"signed_by" json:"signed_by,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Mutable reports whether the note can still be edited.
func (n *SOAPNote) Mutable() bool {
	return n.Status != StatusSigned && n.Status != StatusArchived
}

// Signable reports whether the note can be signed in its current state.
func (n *SOAPNote) Signable() bool {
	return signableStatuses[n.Status]
}
