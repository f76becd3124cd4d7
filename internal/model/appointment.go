package model

import "time"

// Appointment statuses written by the desk.
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Appointment records a booked visit. Reason holds the booked treatment
// names joined with ", ".
type Appointment struct {
	ID          uint64     `json:"id"`
	PatientID   uint64     `json:"patient_id"`
	DentistID   uint64     `json:"dentist_id"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Status      string     `json:"status"`
	Reason      string     `json:"reason"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
