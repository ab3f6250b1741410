package suggest

// Diagnosis is an ICD-10 code suggestion.
type Diagnosis struct {
	Code        string `db:"code" json:"code"`
	Description string `db:"description" json:"description"`
}

// Medication is a prescribing suggestion with common dosing.
type Medication struct {
	Name      string `db:"name" json:"name"`
	Dosage    string `db:"dosage" json:"dosage"`
	Frequency string `db:"frequency" json:"frequency"`
	Route     string `db:"route" json:"route"`
}
