package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a person whose visits are documented in SOAP notes. MRN is
// the medical record number and is unique across the system.
type Patient struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	MRN              string         `db:"mrn" json:"mrn"`
	FirstName        string         `db:"first_name" json:"first_name"`
	LastName         string         `db:"last_name" json:"last_name"`
	DateOfBirth      *time.Time     `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender           *string        `db:"gender" json:"gender,omitempty"`
	Phone            *string        `db:"phone" json:"phone,omitempty"`
	Email            *string        `db:"email" json:"email,omitempty"`
	AddressLine1     *string        `db:"address_line1" json:"address_line1,omitempty"`
	AddressLine2     *string        `db:"address_line2" json:"address_line2,omitempty"`
	City             *string        `db:"city" json:"city,omitempty"`
	State            *string        `db:"state" json:"state,omitempty"`
	ZipCode          *string        `db:"zip_code" json:"zip_code,omitempty"`
	InsuranceInfo    map[string]any `db:"insurance_info" json:"insurance_info,omitempty"`
	EmergencyContact map[string]any `db:"emergency_contact" json:"emergency_contact,omitempty"`
	IsActive         bool           `db:"is_active" json:"is_active"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
	CreatedBy        *string        `db:"created_by" json:"created_by,omitempty"`
	ModifiedBy       *string        `db:"modified_by" json:"modified_by,omitempty"`
}

// FullName returns "First Last" for display and audit entries.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Age returns whole years since date of birth, or -1 when unknown.
func (p *Patient) Age(now time.Time) int {
	if p.DateOfBirth == nil {
		return -1
	}
	dob := *p.DateOfBirth
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}
