package encounter

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// HistoryInput is the optional clinical detail for a history entry. Empty
// strings are stored as NULL. TreatmentGiven defaults to the appointment's
// treatments.
type HistoryInput struct {
	Diagnosis      string     `json:"diagnosis"`
	TreatmentGiven string     `json:"treatment_given"`
	Prescription   string     `json:"prescription"`
	FollowUpDate   *time.Time `json:"follow_up_date"`
	Notes          string     `json:"notes"`
}

// RecordHistory attaches a history entry to the appointment this session
// committed. It may be called any number of times.
func (s *Session) RecordHistory(ctx context.Context, in HistoryInput) error {
	if s.state != StateCommitted || s.last == nil {
		return ErrInvalidState
	}
	sched := s.committed.ScheduledAt
	names := make([]string, len(s.last.Receipt.Items))
	for i, it := range s.last.Receipt.Items {
		names[i] = it.Treatment
	}
	appt := AppointmentRef{
		ID:        s.last.AppointmentID,
		PatientID: s.committed.PatientID,
		DentistID: s.committed.DentistID,
		Reason:    strings.Join(names, ", "),
	}
	if !sched.IsZero() {
		appt.ScheduledAt = &sched
	}
	cctx, cancel := s.callContext(ctx)
	defer cancel()
	return writeHistory(cctx, s.gw, appt, in)
}

// RecordHistory attaches a history entry to a stored appointment. The visit
// date is the date part of the appointment's schedule.
func RecordHistory(ctx context.Context, gw Gateway, appointmentID uint64, in HistoryInput) error {
	appt, err := gw.GetAppointment(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("load appointment %d: %w", appointmentID, err)
	}
	return writeHistory(ctx, gw, appt, in)
}

func writeHistory(ctx context.Context, gw Gateway, appt AppointmentRef, in HistoryInput) error {
	if appt.ID == 0 || appt.PatientID == 0 {
		return fmt.Errorf("%w: appointment has no patient", ErrPartyNotSelected)
	}
	if appt.ScheduledAt == nil || appt.ScheduledAt.IsZero() {
		return ErrMissingVisitDate
	}
	y, m, d := appt.ScheduledAt.Date()
	entry := NewHistoryEntry{
		PatientID:      appt.PatientID,
		AppointmentID:  appt.ID,
		VisitDate:      time.Date(y, m, d, 0, 0, 0, 0, appt.ScheduledAt.Location()),
		Diagnosis:      optional(in.Diagnosis),
		TreatmentGiven: optional(in.TreatmentGiven),
		Prescription:   optional(in.Prescription),
		FollowUpDate:   in.FollowUpDate,
		Notes:          optional(in.Notes),
	}
	if entry.TreatmentGiven == nil {
		entry.TreatmentGiven = optional(appt.Reason)
	}
	if err := gw.CreateHistoryEntry(ctx, entry); err != nil {
		return fmt.Errorf("create history entry: %w", err)
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
