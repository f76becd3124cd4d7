package encounter

import (
	"errors"
	"fmt"

	"github.com/iliyamo/dental-clinic-desk/internal/billing"
)

// Validation errors. These are returned before any write and leave the
// session untouched.
var (
	ErrIncompleteSelection = errors.New("incomplete party selection")
	ErrPartyNotSelected    = errors.New("party not selected")
	ErrUnknownTreatment    = errors.New("unknown treatment")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrMissingVisitDate    = errors.New("appointment has no visit date")

	// ErrInsufficientPayment is billing.ErrInsufficientPayment.
	ErrInsufficientPayment = billing.ErrInsufficientPayment
	// ErrInvalidTender is billing.ErrInvalidTender.
	ErrInvalidTender = billing.ErrInvalidTender
)

// Store errors.
var (
	// ErrGatewayUnavailable marks connection-level failures from the gateway.
	ErrGatewayUnavailable     = errors.New("records gateway unavailable")
	ErrAppointmentWriteFailed = errors.New("appointment write failed")
	ErrPaymentWriteFailed     = errors.New("payment write failed")
)

// Lifecycle errors.
var (
	ErrSessionClosed   = errors.New("session is closed")
	ErrInvalidState    = errors.New("operation not allowed in current state")
	ErrNotRetryable    = errors.New("session cannot be resumed")
	ErrSessionNotFound = errors.New("session not found")
	ErrNotOwner        = errors.New("session belongs to another operator")
)

// CommitError reports which step of the commit sequence failed. It matches
// both the stage sentinel and the underlying cause with errors.Is.
type CommitError struct {
	Stage         Stage
	AppointmentID uint64
	Err           error
}

func (e *CommitError) Error() string {
	if e.Stage == StagePayment {
		return fmt.Sprintf("appointment %d booked, payment not recorded: %v", e.AppointmentID, e.Err)
	}
	return fmt.Sprintf("appointment not booked: %v", e.Err)
}

func (e *CommitError) Unwrap() []error {
	switch e.Stage {
	case StageAppointment:
		return []error{ErrAppointmentWriteFailed, e.Err}
	case StagePayment:
		return []error{ErrPaymentWriteFailed, e.Err}
	}
	return []error{e.Err}
}
