package model

import "strings"

// Dentist is a row of the dentists table. Older rows only carry FullName,
// newer ones only first and last name.
type Dentist struct {
	ID             uint64  `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	FullName       *string `json:"full_name,omitempty"`
	Specialization string  `json:"specialization"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
}

// DisplayName prefers FullName and falls back to first and last name.
func (d Dentist) DisplayName() string {
	if d.FullName != nil {
		if n := strings.TrimSpace(*d.FullName); n != "" {
			return n
		}
	}
	return strings.TrimSpace(strings.TrimSpace(d.FirstName) + " " + strings.TrimSpace(d.LastName))
}
