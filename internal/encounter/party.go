package encounter

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Party is who the encounter is for and when. All five fields must be set
// before treatments can be added.
type Party struct {
	PatientID   uint64    `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	DentistID   uint64    `json:"dentist_id"`
	DentistName string    `json:"dentist_name"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Complete reports whether every field is set.
func (p Party) Complete() bool {
	return p.PatientID != 0 &&
		strings.TrimSpace(p.PatientName) != "" &&
		p.DentistID != 0 &&
		strings.TrimSpace(p.DentistName) != "" &&
		!p.ScheduledAt.IsZero()
}

var timeLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM"}

// ScheduleFrom combines a YYYY-MM-DD date and a clock time into one
// timestamp in loc.
func ScheduleFrom(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrIncompleteSelection, date)
	}
	clock = strings.TrimSpace(clock)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, clock); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: bad time %q", ErrIncompleteSelection, clock)
}

// LookupParty resolves display names for a patient and dentist through the
// gateway. Unknown ids fail with ErrIncompleteSelection.
func LookupParty(ctx context.Context, gw Gateway, patientID, dentistID uint64, scheduledAt time.Time) (Party, error) {
	patients, err := gw.ListPatients(ctx)
	if err != nil {
		return Party{}, fmt.Errorf("list patients: %w", err)
	}
	dentists, err := gw.ListDentists(ctx)
	if err != nil {
		return Party{}, fmt.Errorf("list dentists: %w", err)
	}
	p := Party{PatientID: patientID, DentistID: dentistID, ScheduledAt: scheduledAt}
	for _, pt := range patients {
		if pt.ID == patientID {
			p.PatientName = pt.DisplayName()
			break
		}
	}
	for _, d := range dentists {
		if d.ID == dentistID {
			p.DentistName = d.DisplayName
			break
		}
	}
	if p.PatientName == "" {
		return Party{}, fmt.Errorf("%w: patient %d not found", ErrIncompleteSelection, patientID)
	}
	if p.DentistName == "" {
		return Party{}, fmt.Errorf("%w: dentist %d not found", ErrIncompleteSelection, dentistID)
	}
	return p, nil
}
