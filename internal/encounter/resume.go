package encounter

import (
	"context"

	"github.com/shopspring/decimal"
)

// Resume starts a fresh session from one that failed before the appointment
// was written. Party, cart (with the original fees) and note carry over; the
// catalog is reloaded. Sessions that failed at the payment step already have
// a booked appointment and return ErrNotRetryable.
func Resume(ctx context.Context, gw Gateway, failed *Session, opts ...Option) (*Session, error) {
	if failed == nil || failed.state != StateFailed || failed.failed != StageAppointment {
		return nil, ErrNotRetryable
	}
	s, err := NewSession(ctx, gw, opts...)
	if err != nil {
		return nil, err
	}
	s.party = failed.party
	s.cart = failed.Items()
	s.note = failed.note
	s.tendered = decimal.Zero
	switch {
	case len(s.cart) > 0:
		s.state = StateBuilding
	case s.party.Complete():
		s.state = StatePartySelected
	}
	s.log.Info().Str("resumed_from", failed.id).Int("items", len(s.cart)).Msg("session resumed")
	return s, nil
}
