package model

import "time"

// Patient is a row of the patients table.
//
// Fields:
//
//	ID        – primary key identifier.
//	BirthDate – date of birth; nil for records imported without one.
//	AgeGroup  – child, adult or senior, derived at intake.
//	CreatedAt – intake timestamp.
type Patient struct {
	ID        uint64     `json:"id"`         // patients.patient_id
	FirstName string     `json:"first_name"` // patients.first_name
	LastName  string     `json:"last_name"`  // patients.last_name
	BirthDate *time.Time `json:"birth_date"` // patients.birth_date (nullable)
	AgeGroup  string     `json:"age_group"`  // patients.age_group
	Gender    string     `json:"gender"`     // patients.gender
	Phone     string     `json:"phone"`      // patients.phone
	Email     string     `json:"email"`      // patients.email
	Address   string     `json:"address"`    // patients.address
	CreatedAt time.Time  `json:"created_at"` // patients.created_at
}
