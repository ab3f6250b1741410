// Package soapgen generates structured SOAP notes from medical transcriptions
// using an OpenAI-compatible chat completions API. Model output is parsed
// tolerantly: markdown fences are stripped, scalar fields are coerced to
// lists, and malformed responses degrade to a minimal note flagged for
// review.
package soapgen

import (
	"encoding/json"
	"strings"
)

// StringList unmarshals from either a JSON array of strings or a single
// string. Models occasionally return a scalar where the schema asks for a
// list.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			*l = []string{single}
		} else {
			*l = []string{}
		}
		return nil
	}
	// Unusable value (number, object): treat as empty rather than failing
	// the whole note.
	*l = []string{}
	return nil
}

// VitalSigns holds the recorded vitals as dictated.
type VitalSigns struct {
	BloodPressure    string `json:"blood_pressure"`
	HeartRate        string `json:"heart_rate"`
	Temperature      string `json:"temperature"`
	RespiratoryRate  string `json:"respiratory_rate"`
	OxygenSaturation string `json:"oxygen_saturation"`
	Weight           string `json:"weight"`
	Height           string `json:"height"`
	BMI              string `json:"bmi"`
}

// Subjective is the patient-reported portion of the note.
type Subjective struct {
	ChiefComplaint        string `json:"chief_complaint"`
	HistoryPresentIllness string `json:"history_present_illness"`
	ReviewOfSystems       string `json:"review_of_systems"`
	PastMedicalHistory    string `json:"past_medical_history"`
	Medications           string `json:"medications"`
	Allergies             string `json:"allergies"`
	SocialHistory         string `json:"social_history"`
	FamilyHistory         string `json:"family_history"`
}

// Objective is the clinician-observed portion of the note.
type Objective struct {
	VitalSigns          VitalSigns `json:"vital_signs"`
	PhysicalExamination string     `json:"physical_examination"`
	LaboratoryResults   string     `json:"laboratory_results"`
	ImagingResults      string     `json:"imaging_results"`
}

// Assessment is the diagnostic portion of the note.
type Assessment struct {
	PrimaryDiagnosis      string     `json:"primary_diagnosis"`
	ICD10Codes            StringList `json:"icd10_codes"`
	DifferentialDiagnoses StringList `json:"differential_diagnoses"`
	ClinicalImpression    string     `json:"clinical_impression"`
}

// Plan is the treatment portion of the note.
type Plan struct {
	Medications      StringList `json:"medications"`
	Procedures       StringList `json:"procedures"`
	LaboratoryTests  StringList `json:"laboratory_tests"`
	ImagingStudies   StringList `json:"imaging_studies"`
	FollowUp         string     `json:"follow_up"`
	PatientEducation string     `json:"patient_education"`
	Referrals        StringList `json:"referrals"`
}

// Metadata carries the model's self-assessment scores.
type Metadata struct {
	ConfidenceScore      float64    `json:"confidence_score"`
	CompletenessScore    float64    `json:"completeness_score"`
	MedicalAccuracyScore float64    `json:"medical_accuracy_score"`
	MissingElements      StringList `json:"missing_elements"`
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw struct {
		ConfidenceScore      *float64   `json:"confidence_score"`
		CompletenessScore    *float64   `json:"completeness_score"`
		MedicalAccuracyScore *float64   `json:"medical_accuracy_score"`
		MissingElements      StringList `json:"missing_elements"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*m = defaultMetadata()
		return nil
	}
	m.ConfidenceScore = normalizeScore(raw.ConfidenceScore)
	m.CompletenessScore = normalizeScore(raw.CompletenessScore)
	m.MedicalAccuracyScore = normalizeScore(raw.MedicalAccuracyScore)
	m.MissingElements = raw.MissingElements
	if m.MissingElements == nil {
		m.MissingElements = StringList{}
	}
	return nil
}

// normalizeScore defaults missing or out-of-range scores to 0.5.
func normalizeScore(s *float64) float64 {
	if s == nil || *s < 0 || *s > 1 {
		return 0.5
	}
	return *s
}

func defaultMetadata() Metadata {
	return Metadata{
		ConfidenceScore:      0.5,
		CompletenessScore:    0.5,
		MedicalAccuracyScore: 0.5,
		MissingElements:      StringList{},
	}
}

// Note is a complete structured SOAP note.
type Note struct {
	Subjective Subjective `json:"subjective"`
	Objective  Objective  `json:"objective"`
	Assessment Assessment `json:"assessment"`
	Plan       Plan       `json:"plan"`
	Metadata   Metadata   `json:"metadata"`
}

// ParseNote parses a model response into a Note. It first tries the raw
// content, then strips markdown code fences and retries, and finally falls
// back to a minimal note flagged for manual review.
func ParseNote(content string) Note {
	var note Note
	if err := json.Unmarshal([]byte(content), &note); err == nil {
		return normalizeNote(note)
	}

	cleaned := stripFences(content)
	if err := json.Unmarshal([]byte(cleaned), &note); err == nil {
		return normalizeNote(note)
	}

	return fallbackNote()
}

// stripFences removes markdown code fences the model may wrap JSON in.
func stripFences(content string) string {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// normalizeNote fills in nil list fields so callers and the JSON encoder see
// empty arrays instead of null.
func normalizeNote(note Note) Note {
	if note.Assessment.ICD10Codes == nil {
		note.Assessment.ICD10Codes = StringList{}
	}
	if note.Assessment.DifferentialDiagnoses == nil {
		note.Assessment.DifferentialDiagnoses = StringList{}
	}
	if note.Plan.Medications == nil {
		note.Plan.Medications = StringList{}
	}
	if note.Plan.Procedures == nil {
		note.Plan.Procedures = StringList{}
	}
	if note.Plan.LaboratoryTests == nil {
		note.Plan.LaboratoryTests = StringList{}
	}
	if note.Plan.ImagingStudies == nil {
		note.Plan.ImagingStudies = StringList{}
	}
	if note.Plan.Referrals == nil {
		note.Plan.Referrals = StringList{}
	}
	if note.Metadata.MissingElements == nil {
		note.Metadata = defaultMetadata()
	}
	return note
}

// fallbackNote is returned when the model response cannot be parsed at all.
func fallbackNote() Note {
	note := Note{
		Subjective: Subjective{
			ChiefComplaint: "Parse error - please review transcription",
		},
		Objective: Objective{
			PhysicalExamination: "Parse error",
		},
		Assessment: Assessment{
			PrimaryDiagnosis: "Unable to process",
		},
		Plan: Plan{
			FollowUp: "Review needed",
		},
		Metadata: Metadata{
			ConfidenceScore:      0.1,
			CompletenessScore:    0.1,
			MedicalAccuracyScore: 0.1,
			MissingElements:      StringList{},
		},
	}
	return normalizeNote(note)
}
