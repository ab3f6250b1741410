package soapgen

import (
	"testing"
)

const validNoteJSON = `{
	"subjective": {
		"chief_complaint": "Severe headache",
		"history_present_illness": "Throbbing pain for three days"
	},
	"objective": {
		"vital_signs": {"blood_pressure": "130/85", "heart_rate": "72"},
		"physical_examination": "Alert and oriented"
	},
	"assessment": {
		"primary_diagnosis": "Tension headache [G44.209]",
		"icd10_codes": ["G44.209"],
		"differential_diagnoses": ["Migraine"],
		"clinical_impression": "Likely tension-type headache"
	},
	"plan": {
		"medications": ["Ibuprofen 400mg every 6 hours"],
		"follow_up": "Return in two weeks"
	},
	"metadata": {
		"confidence_score": 0.92,
		"completeness_score": 0.85,
		"medical_accuracy_score": 0.9
	}
}`

func TestParseNote_Valid(t *testing.T) {
	note := ParseNote(validNoteJSON)

	if note.Subjective.ChiefComplaint != "Severe headache" {
		t.Errorf("unexpected chief complaint: %s", note.Subjective.ChiefComplaint)
	}
	if note.Objective.VitalSigns.BloodPressure != "130/85" {
		t.Errorf("unexpected blood pressure: %s", note.Objective.VitalSigns.BloodPressure)
	}
	if len(note.Assessment.ICD10Codes) != 1 || note.Assessment.ICD10Codes[0] != "G44.209" {
		t.Errorf("unexpected ICD-10 codes: %v", note.Assessment.ICD10Codes)
	}
	if note.Metadata.ConfidenceScore != 0.92 {
		t.Errorf("expected confidence 0.92, got %f", note.Metadata.ConfidenceScore)
	}
	// Lists never come back nil.
	if note.Plan.Procedures == nil {
		t.Error("expected empty procedures slice, got nil")
	}
	if note.Plan.Referrals == nil {
		t.Error("expected empty referrals slice, got nil")
	}
}

func TestParseNote_MarkdownFenced(t *testing.T) {
	fenced := "```json\n" + validNoteJSON + "\n```"
	note := ParseNote(fenced)

	if note.Subjective.ChiefComplaint != "Severe headache" {
		t.Errorf("fenced JSON not parsed: %s", note.Subjective.ChiefComplaint)
	}
}

func TestParseNote_PlainFenced(t *testing.T) {
	fenced := "```\n" + validNoteJSON + "\n```"
	note := ParseNote(fenced)

	if note.Assessment.PrimaryDiagnosis != "Tension headache [G44.209]" {
		t.Errorf("plain-fenced JSON not parsed: %s", note.Assessment.PrimaryDiagnosis)
	}
}

func TestParseNote_Unparseable(t *testing.T) {
	note := ParseNote("I'm sorry, I cannot generate a note for this input.")

	if note.Subjective.ChiefComplaint != "Parse error - please review transcription" {
		t.Errorf("expected fallback chief complaint, got %s", note.Subjective.ChiefComplaint)
	}
	if note.Assessment.PrimaryDiagnosis != "Unable to process" {
		t.Errorf("expected fallback diagnosis, got %s", note.Assessment.PrimaryDiagnosis)
	}
	if note.Metadata.ConfidenceScore != 0.1 {
		t.Errorf("expected fallback confidence 0.1, got %f", note.Metadata.ConfidenceScore)
	}
}

func TestParseNote_ScalarCoercedToList(t *testing.T) {
	input := `{
		"assessment": {"icd10_codes": "G44.209", "differential_diagnoses": ""},
		"plan": {"medications": "Ibuprofen 400mg", "referrals": 42}
	}`
	note := ParseNote(input)

	if len(note.Assessment.ICD10Codes) != 1 || note.Assessment.ICD10Codes[0] != "G44.209" {
		t.Errorf("expected scalar coerced to list, got %v", note.Assessment.ICD10Codes)
	}
	if len(note.Assessment.DifferentialDiagnoses) != 0 {
		t.Errorf("expected empty list for empty string, got %v", note.Assessment.DifferentialDiagnoses)
	}
	if len(note.Plan.Medications) != 1 || note.Plan.Medications[0] != "Ibuprofen 400mg" {
		t.Errorf("expected scalar coerced to list, got %v", note.Plan.Medications)
	}
	if len(note.Plan.Referrals) != 0 {
		t.Errorf("expected unusable value coerced to empty list, got %v", note.Plan.Referrals)
	}
}

func TestParseNote_ScoreClamping(t *testing.T) {
	input := `{
		"metadata": {
			"confidence_score": 1.7,
			"completeness_score": -0.2,
			"medical_accuracy_score": 0.75
		}
	}`
	note := ParseNote(input)

	if note.Metadata.ConfidenceScore != 0.5 {
		t.Errorf("expected out-of-range confidence clamped to 0.5, got %f", note.Metadata.ConfidenceScore)
	}
	if note.Metadata.CompletenessScore != 0.5 {
		t.Errorf("expected negative score clamped to 0.5, got %f", note.Metadata.CompletenessScore)
	}
	if note.Metadata.MedicalAccuracyScore != 0.75 {
		t.Errorf("expected valid score preserved, got %f", note.Metadata.MedicalAccuracyScore)
	}
}

func TestParseNote_MissingMetadataDefaults(t *testing.T) {
	note := ParseNote(`{"subjective": {"chief_complaint": "Cough"}}`)

	if note.Metadata.ConfidenceScore != 0.5 {
		t.Errorf("expected default confidence 0.5, got %f", note.Metadata.ConfidenceScore)
	}
	if note.Metadata.MissingElements == nil {
		t.Error("expected empty missing elements, got nil")
	}
}
