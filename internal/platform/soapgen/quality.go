package soapgen

import (
	"encoding/json"
	"math"
	"strings"
	"unicode"
)

// QualityMetrics scores a generated note for clinical documentation use.
type QualityMetrics struct {
	OverallScore    float64  `json:"overall_score"`
	QualityLevel    string   `json:"quality_level"` // excellent, good, fair, poor
	Completeness    float64  `json:"completeness"`
	Coherence       float64  `json:"clinical_coherence"`
	Fidelity        float64  `json:"transcription_fidelity"`
	Terminology     float64  `json:"medical_terminology"`
	Recommendations []string `json:"recommendations"`
}

// notDocumented is the placeholder the model uses for absent information.
const notDocumented = "Not documented"

// AssessNote scores a note across completeness, coherence with the chief
// complaint, fidelity to the source transcription, and terminology usage.
func AssessNote(note Note, transcription string) QualityMetrics {
	m := QualityMetrics{
		Completeness: assessCompleteness(note),
		Coherence:    assessCoherence(note),
		Fidelity:     assessFidelity(note, transcription),
		Terminology:  assessTerminology(note),
	}

	overall := (m.Completeness + m.Coherence + m.Fidelity + m.Terminology) / 4
	m.OverallScore = math.Round(overall*100) / 100

	switch {
	case overall >= 0.8:
		m.QualityLevel = "excellent"
	case overall >= 0.6:
		m.QualityLevel = "good"
	case overall >= 0.4:
		m.QualityLevel = "fair"
	default:
		m.QualityLevel = "poor"
	}

	m.Recommendations = noteRecommendations(m)
	return m
}

// documented reports whether a field carries real content.
func documented(value string) bool {
	return value != "" && value != notDocumented
}

// assessCompleteness counts how many note fields carry content.
func assessCompleteness(note Note) float64 {
	fields := []string{
		note.Subjective.ChiefComplaint,
		note.Subjective.HistoryPresentIllness,
		note.Subjective.ReviewOfSystems,
		note.Subjective.PastMedicalHistory,
		note.Subjective.Medications,
		note.Subjective.Allergies,
		note.Subjective.SocialHistory,
		note.Subjective.FamilyHistory,
		note.Objective.VitalSigns.BloodPressure,
		note.Objective.VitalSigns.HeartRate,
		note.Objective.VitalSigns.Temperature,
		note.Objective.VitalSigns.RespiratoryRate,
		note.Objective.VitalSigns.OxygenSaturation,
		note.Objective.VitalSigns.Weight,
		note.Objective.VitalSigns.Height,
		note.Objective.VitalSigns.BMI,
		note.Objective.PhysicalExamination,
		note.Objective.LaboratoryResults,
		note.Objective.ImagingResults,
		note.Assessment.PrimaryDiagnosis,
		note.Assessment.ClinicalImpression,
		note.Plan.FollowUp,
		note.Plan.PatientEducation,
	}

	completed := 0
	for _, field := range fields {
		if documented(field) {
			completed++
		}
	}
	return float64(completed) / float64(len(fields))
}

// coherenceSymptoms are symptom keywords checked between the chief complaint
// and the primary diagnosis.
var coherenceSymptoms = []string{"pain", "fever", "cough", "nausea", "headache"}

// assessCoherence checks whether the primary diagnosis relates to the chief
// complaint. A neutral 0.5 is returned when no symptom keyword links them.
func assessCoherence(note Note) float64 {
	chiefComplaint := strings.ToLower(note.Subjective.ChiefComplaint)
	primaryDiagnosis := strings.ToLower(note.Assessment.PrimaryDiagnosis)

	if chiefComplaint == "" || primaryDiagnosis == "" {
		return 0.5
	}
	for _, symptom := range coherenceSymptoms {
		if strings.Contains(chiefComplaint, symptom) && strings.Contains(primaryDiagnosis, symptom) {
			return 0.8
		}
	}
	return 0.5
}

// fidelityStopwords are excluded from the word-overlap comparison.
var fidelityStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
}

// assessFidelity measures what fraction of the transcription's significant
// words appear in the generated note.
func assessFidelity(note Note, transcription string) float64 {
	noteJSON, err := json.Marshal(note)
	if err != nil {
		return 0.5
	}
	noteWords := wordSet(strings.ToLower(string(noteJSON)))
	sourceWords := wordSet(strings.ToLower(transcription))

	if len(sourceWords) == 0 {
		return 0.5
	}

	overlap := 0
	for word := range sourceWords {
		if noteWords[word] {
			overlap++
		}
	}
	return math.Min(float64(overlap)/float64(len(sourceWords)), 1.0)
}

func wordSet(text string) map[string]bool {
	words := make(map[string]bool)
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range fields {
		if !fidelityStopwords[word] {
			words[word] = true
		}
	}
	return words
}

// terminologyTerms are counted across the note to score terminology usage.
var terminologyTerms = []string{
	"diagnosis", "treatment", "medication", "examination", "assessment",
	"chronic", "acute", "bilateral", "unilateral", "anterior", "posterior",
	"cardiovascular", "respiratory", "neurological", "gastrointestinal",
}

// assessTerminology counts distinct medical terms in the note, normalized
// against a cap of 10.
func assessTerminology(note Note) float64 {
	noteJSON, err := json.Marshal(note)
	if err != nil {
		return 0
	}
	lower := strings.ToLower(string(noteJSON))

	found := 0
	for _, term := range terminologyTerms {
		if strings.Contains(lower, term) {
			found++
		}
	}
	return math.Min(float64(found)/10, 1.0)
}

func noteRecommendations(m QualityMetrics) []string {
	var recs []string
	if m.Completeness < 0.6 {
		recs = append(recs, "Include more complete patient history and examination findings")
	}
	if m.Coherence < 0.6 {
		recs = append(recs, "Ensure assessment aligns with subjective complaints and objective findings")
	}
	if m.Fidelity < 0.6 {
		recs = append(recs, "Transcription may need clarification - consider re-recording")
	}
	if m.Terminology < 0.5 {
		recs = append(recs, "Consider using more specific medical terminology")
	}
	if len(recs) == 0 {
		recs = append(recs, "Excellent SOAP note quality - meets clinical documentation standards")
	}
	return recs
}
