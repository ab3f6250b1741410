package speech

import (
	"math"
	"strings"
)

// medicalTerms are terms counted when scoring how clinical a transcription is.
var medicalTerms = []string{
	// Vital signs
	"blood pressure", "heart rate", "respiratory rate", "temperature", "pulse",
	"systolic", "diastolic", "bpm", "mmhg", "celsius", "fahrenheit",

	// Symptoms
	"chest pain", "shortness of breath", "nausea", "vomiting", "dizziness",
	"headache", "abdominal pain", "fever", "fatigue", "cough",

	// Body systems
	"cardiovascular", "respiratory", "neurological", "gastrointestinal",
	"musculoskeletal", "dermatologic", "genitourinary", "endocrine",

	// Common medical words
	"diagnosis", "treatment", "medication", "prescription", "dosage",
	"symptoms", "examination", "assessment", "history", "patient",
	"chronic", "acute", "bilateral", "unilateral", "anterior", "posterior",

	// Common procedures
	"x-ray", "ct scan", "mri", "ultrasound", "ekg", "ecg", "blood test",
	"biopsy", "surgery", "procedure",
}

var structureIndicators = []string{
	"chief complaint", "history", "physical exam", "assessment", "plan",
	"subjective", "objective", "vital signs", "medications", "allergies",
}

var completenessIndicators = []string{
	"patient", "age", "year", "presents", "complain", "history",
	"exam", "normal", "abnormal", "plan", "follow", "return",
}

// CountMedicalTerms counts occurrences of known medical terminology.
func CountMedicalTerms(text string) int {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	count := 0
	for _, term := range medicalTerms {
		count += strings.Count(lower, term)
	}
	return count
}

// Assessment scores a transcription for use as clinical documentation.
type Assessment struct {
	Overall           string   `json:"overall"` // excellent, good, fair, poor
	Score             float64  `json:"score"`
	LengthScore       float64  `json:"length_score"`
	MedicalDensity    float64  `json:"medical_term_density"`
	StructureScore    float64  `json:"structure_score"`
	CompletenessScore float64  `json:"completeness_score"`
	Recommendations   []string `json:"recommendations"`
}

// AssessQuality scores the transcription across length, medical terminology
// density, documentation structure, and completeness.
func AssessQuality(text string) Assessment {
	if text == "" {
		return Assessment{
			Overall:         "poor",
			Recommendations: []string{"Consider speaking for longer duration for better context"},
		}
	}

	lower := strings.ToLower(text)
	wordCount := len(strings.Fields(text))
	if wordCount == 0 {
		wordCount = 1
	}

	a := Assessment{
		LengthScore:       math.Min(float64(len(text))/200, 1.0),
		MedicalDensity:    float64(CountMedicalTerms(text)) / float64(wordCount),
		StructureScore:    indicatorScore(lower, structureIndicators, 5),
		CompletenessScore: indicatorScore(lower, completenessIndicators, 8),
	}

	score := (a.LengthScore + a.MedicalDensity + a.StructureScore + a.CompletenessScore) / 4
	a.Score = math.Round(score*100) / 100

	switch {
	case score >= 0.7:
		a.Overall = "excellent"
	case score >= 0.5:
		a.Overall = "good"
	case score >= 0.3:
		a.Overall = "fair"
	default:
		a.Overall = "poor"
	}

	a.Recommendations = recommendations(a)
	return a
}

// indicatorScore counts how many of the indicators appear in the text,
// normalized against a cap.
func indicatorScore(lower string, indicators []string, limit int) float64 {
	found := 0
	for _, indicator := range indicators {
		if strings.Contains(lower, indicator) {
			found++
		}
	}
	return math.Min(float64(found)/float64(limit), 1.0)
}

func recommendations(a Assessment) []string {
	var recs []string
	if a.LengthScore < 0.3 {
		recs = append(recs, "Consider speaking for longer duration for better context")
	}
	if a.MedicalDensity < 0.1 {
		recs = append(recs, "Include more specific medical terminology")
	}
	if a.StructureScore < 0.4 {
		recs = append(recs, "Follow SOAP note structure: Subjective, Objective, Assessment, Plan")
	}
	if a.CompletenessScore < 0.4 {
		recs = append(recs, "Include patient demographics and complete examination findings")
	}
	if len(recs) == 0 {
		recs = append(recs, "Excellent transcription quality - no improvements needed")
	}
	return recs
}
