// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns them into the encounter log.
package queue

// EncounterEvent is published after every commit attempt. Amounts are
// decimal strings with two places so consumers never see binary floats.
type EncounterEvent struct {
	SessionID     string `json:"session_id"`
	Stage         string `json:"stage"` // none, appointment or payment
	AppointmentID uint64 `json:"appointment_id,omitempty"`
	Reference     string `json:"reference,omitempty"`
	PatientID     uint64 `json:"patient_id"`
	DentistID     uint64 `json:"dentist_id"`
	Total         string `json:"total"`
	Tendered      string `json:"tendered"`
	Error         string `json:"error,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

// NeedsReconciliation reports whether the appointment was booked without a
// payment.
func (e EncounterEvent) NeedsReconciliation() bool {
	return e.Stage == "payment" && e.AppointmentID != 0
}
