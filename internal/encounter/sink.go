package encounter

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome describes one commit attempt. Stage is StageNone on success.
type Outcome struct {
	SessionID     string          `json:"session_id"`
	Stage         Stage           `json:"stage"`
	AppointmentID uint64          `json:"appointment_id,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Tendered      decimal.Decimal `json:"tendered"`
	PatientID     uint64          `json:"patient_id"`
	DentistID     uint64          `json:"dentist_id"`
	Error         string          `json:"error,omitempty"`
	At            time.Time       `json:"at"`
}

// Success reports whether both writes landed.
func (o Outcome) Success() bool { return o.Stage == StageNone }

// Sink receives commit outcomes. Errors are logged by the session and never
// change the session's state.
type Sink interface {
	Publish(ctx context.Context, o Outcome) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, o Outcome) error

func (f SinkFunc) Publish(ctx context.Context, o Outcome) error { return f(ctx, o) }

// MultiSink publishes to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Publish(ctx context.Context, o Outcome) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
