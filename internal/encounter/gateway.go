package encounter

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Gateway is the clinical records store as seen by an encounter. Every call
// either succeeds or returns an error; nothing here assumes a write landed.
// Implementations should wrap connection-level failures with
// ErrGatewayUnavailable.
type Gateway interface {
	ListPatients(ctx context.Context) ([]PatientRef, error)
	ListDentists(ctx context.Context) ([]DentistRef, error)
	ListTreatments(ctx context.Context) ([]CatalogItem, error)
	CreateAppointment(ctx context.Context, a NewAppointment) (uint64, error)
	CreatePayment(ctx context.Context, p NewPayment) error
	CreateHistoryEntry(ctx context.Context, h NewHistoryEntry) error
	GetAppointment(ctx context.Context, id uint64) (AppointmentRef, error)
}

// PatientRef is the slice of a patient row the desk needs to pick a party.
type PatientRef struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName joins first and last name.
func (p PatientRef) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// DentistRef identifies a dentist by id and display name.
type DentistRef struct {
	ID          uint64 `json:"id"`
	DisplayName string `json:"display_name"`
}

// CatalogItem is a billable treatment and its default fee.
type CatalogItem struct {
	Name       string          `json:"name"`
	DefaultFee decimal.Decimal `json:"default_fee"`
}

// NewAppointment is the payload for the first commit write.
type NewAppointment struct {
	PatientID   uint64
	DentistID   uint64
	ScheduledAt time.Time
	Status      string
	Reason      string
	Notes       *string
}

// NewPayment is the payload for the second commit write.
type NewPayment struct {
	AppointmentID uint64
	PatientID     uint64
	Amount        decimal.Decimal
	Method        string
	Status        string
	Reference     string
	Remarks       *string
}

// NewHistoryEntry is a clinical history row attached to an appointment.
type NewHistoryEntry struct {
	PatientID      uint64
	AppointmentID  uint64
	VisitDate      time.Time
	Diagnosis      *string
	TreatmentGiven *string
	Prescription   *string
	FollowUpDate   *time.Time
	Notes          *string
}

// AppointmentRef is a stored appointment. ScheduledAt is nil when the row has
// no usable schedule.
type AppointmentRef struct {
	ID          uint64
	PatientID   uint64
	DentistID   uint64
	ScheduledAt *time.Time
	Status      string
	Reason      string
}
