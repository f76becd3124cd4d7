package model

import "time"

// HistoryEntry is a clinical note attached to an appointment. Several
// entries may exist for the same appointment.
type HistoryEntry struct {
	ID             uint64     `json:"id"`
	PatientID      uint64     `json:"patient_id"`
	AppointmentID  uint64     `json:"appointment_id"`
	VisitDate      time.Time  `json:"visit_date"`
	Diagnosis      *string    `json:"diagnosis,omitempty"`
	TreatmentGiven *string    `json:"treatment_given,omitempty"`
	Prescription   *string    `json:"prescription,omitempty"`
	FollowUpDate   *time.Time `json:"follow_up_date,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
