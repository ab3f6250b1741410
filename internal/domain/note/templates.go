package note

import "strings"

// Template is a starting structure for a visit type. Templates are
// static for now; providers pick one before dictating.
type Template struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Specialty   string   `json:"specialty"`
	Description string   `json:"description"`
	Sections    []string `json:"sections"`
}

var builtinTemplates = []Template{
	{
		ID:          1,
		Name:        "General Follow-up",
		Specialty:   "General",
		Description: "Routine follow-up visit for an established patient",
		Sections:    []string{"subjective", "objective", "assessment", "plan"},
	},
	{
		ID:          2,
		Name:        "New Patient Intake",
		Specialty:   "General",
		Description: "Comprehensive intake for a new patient including full history",
		Sections:    []string{"subjective", "objective", "assessment", "plan"},
	},
	{
		ID:          3,
		Name:        "Emergency Visit",
		Specialty:   "Emergency",
		Description: "Acute presentation with focused history and examination",
		Sections:    []string{"subjective", "objective", "assessment", "plan"},
	},
	{
		ID:          4,
		Name:        "Pediatric Well-Child",
		Specialty:   "Pediatrics",
		Description: "Well-child check with growth and development milestones",
		Sections:    []string{"subjective", "objective", "assessment", "plan"},
	},
}

// Templates returns the built-in note templates, optionally filtered by
// specialty (case-insensitive).
func Templates(specialty string) []Template {
	if specialty == "" {
		return builtinTemplates
	}
	out := make([]Template, 0, len(builtinTemplates))
	for _, t := range builtinTemplates {
		if strings.EqualFold(t.Specialty, specialty) {
			out = append(out, t)
		}
	}
	return out
}
