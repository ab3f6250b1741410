package provider

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider is a clinician who dictates and signs SOAP notes.
type Provider struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	Name          string    `db:"name" json:"name"`
	LicenseNumber *string   `db:"license_number" json:"license_number,omitempty"`
	Specialty     *string   `db:"specialty" json:"specialty,omitempty"`
	Department    *string   `db:"department" json:"department,omitempty"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
	CreatedBy     *string   `db:"created_by" json:"created_by,omitempty"`
	ModifiedBy    *string   `db:"modified_by" json:"modified_by,omitempty"`
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether the address matches the accepted format.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NameFromEmail derives a display name from the local part of an email
// address, used when a provider record is created implicitly during
// dictation intake.
func NameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	words := strings.Fields(local)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return "Dr. Unknown"
	}
	return "Dr. " + strings.Join(words, " ")
}
