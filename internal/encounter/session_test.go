package encounter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchedule = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func validParty() Party {
	return Party{
		PatientID:   7,
		PatientName: "Maria Santos",
		DentistID:   3,
		DentistName: "Dr. Reyes",
		ScheduledAt: testSchedule,
	}
}

func newTestSession(t *testing.T, gw *fakeGateway, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{
		WithClock(func() time.Time { return testSchedule }),
		WithReferenceGenerator(func() (string, error) { return "ABC123XYZ9", nil }),
	}, opts...)
	s, err := NewSession(context.Background(), gw, opts...)
	require.NoError(t, err)
	return s
}

func TestNewSessionCatalog(t *testing.T) {
	gw := newFakeGateway()
	gw.ListTreatmentsFunc = func(context.Context) ([]CatalogItem, error) {
		return []CatalogItem{
			{Name: "Cleaning", DefaultFee: dec("500")},
			{Name: "Cleaning", DefaultFee: dec("999")},
			{Name: "Fluoride", DefaultFee: dec("300")},
		}, nil
	}
	s := newTestSession(t, gw)

	cat := s.Catalog()
	require.Len(t, cat, 2)
	assert.Equal(t, "Cleaning", cat[0].Name)
	assert.True(t, cat[0].DefaultFee.Equal(dec("500")), "first occurrence wins")
	assert.Equal(t, StateEmpty, s.State())
	assert.NotEmpty(t, s.ID())
}

func TestNewSessionCatalogError(t *testing.T) {
	gw := newFakeGateway()
	gw.ListTreatmentsFunc = func(context.Context) ([]CatalogItem, error) {
		return nil, ErrGatewayUnavailable
	}
	_, err := NewSession(context.Background(), gw)
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestSelectParty(t *testing.T) {
	s := newTestSession(t, newFakeGateway())

	incomplete := validParty()
	incomplete.DentistName = "   "
	assert.ErrorIs(t, s.SelectParty(incomplete), ErrIncompleteSelection)
	assert.Equal(t, StateEmpty, s.State())

	incomplete = validParty()
	incomplete.ScheduledAt = time.Time{}
	assert.ErrorIs(t, s.SelectParty(incomplete), ErrIncompleteSelection)

	require.NoError(t, s.SelectParty(validParty()))
	assert.Equal(t, StatePartySelected, s.State())

	_, err := s.AddTreatment("Cleaning")
	require.NoError(t, err)

	other := validParty()
	other.DentistID, other.DentistName = 4, "Dr. Cruz"
	require.NoError(t, s.SelectParty(other))
	assert.Equal(t, StateBuilding, s.State(), "reselecting mid-cart keeps the cart")
	assert.Len(t, s.Items(), 1)
	assert.Equal(t, uint64(4), s.Party().DentistID)
}

func TestAddTreatmentBeforePartyFails(t *testing.T) {
	s := newTestSession(t, newFakeGateway())

	_, err := s.AddTreatment("Cleaning")
	assert.ErrorIs(t, err, ErrPartyNotSelected)
	assert.Empty(t, s.Items())
	assert.Equal(t, StateEmpty, s.State())
}

func TestAddTreatmentUnknown(t *testing.T) {
	s := newTestSession(t, newFakeGateway())
	require.NoError(t, s.SelectParty(validParty()))

	_, err := s.AddTreatment("Whitening")
	assert.ErrorIs(t, err, ErrUnknownTreatment)
	assert.Empty(t, s.Items())
	assert.Equal(t, StatePartySelected, s.State())
}

func TestAddTreatmentDuplicatesAllowed(t *testing.T) {
	s := newTestSession(t, newFakeGateway())
	require.NoError(t, s.SelectParty(validParty()))

	_, err := s.AddTreatment("Fluoride")
	require.NoError(t, err)
	_, err = s.AddTreatment("Fluoride")
	require.NoError(t, err)

	assert.Len(t, s.Items(), 2)
	assert.True(t, s.CurrentReceipt().Total.Equal(dec("600")))
}

func TestRemoveLastTreatmentIsLIFO(t *testing.T) {
	s := newTestSession(t, newFakeGateway())
	require.NoError(t, s.SelectParty(validParty()))

	_, err := s.RemoveLastTreatment()
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = s.AddTreatment("Cleaning")
	require.NoError(t, err)
	_, err = s.AddTreatment("Fluoride")
	require.NoError(t, err)

	removed, err := s.RemoveLastTreatment()
	require.NoError(t, err)
	assert.Equal(t, "Fluoride", removed.Treatment)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Cleaning", items[0].Treatment)
	assert.Equal(t, StateBuilding, s.State())

	_, err = s.RemoveLastTreatment()
	require.NoError(t, err)
	assert.Equal(t, StatePartySelected, s.State())
}

func TestAttemptPaymentInsufficientLeavesStateUnchanged(t *testing.T) {
	gw := newFakeGateway()
	s := newTestSession(t, gw)
	require.NoError(t, s.SelectParty(validParty()))
	_, err := s.AddTreatment("Cleaning")
	require.NoError(t, err)
	_, err = s.AddTreatment("Fluoride")
	require.NoError(t, err)

	before := s.Summary()
	_, err = s.AttemptPayment(context.Background(), dec("799.99"))
	assert.ErrorIs(t, err, ErrInsufficientPayment)
	assert.Equal(t, before, s.Summary())
	assert.Empty(t, gw.appointments)

	// retry with enough
	res, err := s.AttemptPayment(context.Background(), dec("800.00"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Receipt.Change.IsZero())
}

func TestAttemptPaymentSubCentTenderLeavesStateUnchanged(t *testing.T) {
	gw := newFakeGateway()
	s := newTestSession(t, gw)
	require.NoError(t, s.SelectParty(validParty()))
	_, err := s.AddTreatment("Cleaning")
	require.NoError(t, err)

	before := s.Summary()
	_, err = s.AttemptPayment(context.Background(), dec("500.004"))
	assert.ErrorIs(t, err, ErrInvalidTender)
	assert.Equal(t, StateBuilding, s.State())
	assert.Equal(t, before, s.Summary())
	assert.Empty(t, gw.appointments)
	assert.Empty(t, gw.payments)
}

func TestAttemptPaymentValidationOrder(t *testing.T) {
	s := newTestSession(t, newFakeGateway())

	_, err := s.AttemptPayment(context.Background(), dec("100"))
	assert.ErrorIs(t, err, ErrEmptyCart)

	require.NoError(t, s.SelectParty(validParty()))
	_, err = s.AttemptPayment(context.Background(), dec("100"))
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StatePartySelected, s.State())
}

func TestEndToEndCommit(t *testing.T) {
	gw := newFakeGateway()
	var outcomes []Outcome
	sink := SinkFunc(func(_ context.Context, o Outcome) error {
		outcomes = append(outcomes, o)
		return nil
	})
	s := newTestSession(t, gw, WithSink(sink), WithPaymentMethod("gcash"), WithRemarks("desk 2"))

	require.NoError(t, s.SelectParty(validParty()))
	_, err := s.AddTreatment("Cleaning")
	require.NoError(t, err)
	_, err = s.AddTreatment("Fluoride")
	require.NoError(t, err)
	require.NoError(t, s.SetNote("sensitive upper left"))

	res, err := s.AttemptPayment(context.Background(), dec("1000"))
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, StageNone, res.Stage)
	assert.Equal(t, uint64(101), res.AppointmentID)
	assert.Equal(t, "ABC123XYZ9", res.Reference)
	assert.Equal(t, "800.00", res.Receipt.Total.StringFixed(2))
	assert.Equal(t, "200.00", res.Receipt.Change.StringFixed(2))

	assert.Equal(t, StateCommitted, s.State())
	assert.Empty(t, s.Items())
	assert.Equal(t, Party{}, s.Party())
	assert.True(t, s.CurrentReceipt().Tendered.IsZero())

	require.Len(t, gw.appointments, 1)
	a := gw.appointments[0]
	assert.Equal(t, "Cleaning, Fluoride", a.Reason)
	assert.Equal(t, "scheduled", a.Status)
	assert.Equal(t, testSchedule, a.ScheduledAt)
	require.NotNil(t, a.Notes)
	assert.Equal(t, "sensitive upper left", *a.Notes)

	require.Len(t, gw.payments, 1)
	p := gw.payments[0]
	assert.Equal(t, uint64(101), p.AppointmentID)
	assert.Equal(t, uint64(7), p.PatientID)
	assert.True(t, p.Amount.Equal(dec("1000")), "payment records the tendered amount")
	assert.Equal(t, "gcash", p.Method)
	assert.Equal(t, "paid", p.Status)
	require.NotNil(t, p.Remarks)
	assert.Equal(t, "desk 2", *p.Remarks)

	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Success())
	assert.Equal(t, uint64(7), outcomes[0].PatientID)
	assert.Equal(t, s.ID(), outcomes[0].SessionID)

	// terminal
	_, err = s.AddTreatment("Cleaning")
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.AttemptPayment(context.Background(), dec("1000"))
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, s.SelectParty(validParty()), ErrSessionClosed)
}

func TestAppointmentWriteFailure(t *testing.T) {
	gw := newFakeGateway()
	cause := errors.New("duplicate entry")
	gw.CreateAppointmentFunc = func(context.Context, NewAppointment) (uint64, error) { return 0, cause }
	s := newTestSession(t, gw)
	require.NoError(t, s.SelectParty(validParty()))
	_, err := s.AddTreatment("Cleaning")
	require.NoError(t, err)

	res, err := s.AttemptPayment(context.Background(), dec("500"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAppointmentWriteFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrPaymentWriteFailed)

	assert.False(t, res.Success)
	assert.Equal(t, StageAppointment, res.Stage)
	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, StageAppointment, s.FailedStage())
	assert.Len(t, s.Items(), 1, "cart preserved for retry")
	assert.Equal(t, validParty(), s.Party())
	assert.Empty(t, gw.payments)
}

func TestPaymentWriteFailureKeepsAppointmentID(t *testing.T) {
	gw := newFakeGateway()
	gw.CreatePaymentFunc = func(context.Context, NewPayment) error {
		return ErrGatewayUnavailable
	}
	var got Outcome
	s := newTestSession(t, gw, WithSink(SinkFunc(func(_ context.Context, o Outcome) error {
		got = o
		return errors.New("broker down")
	})))
	require.NoError(t, s.SelectParty(validParty()))
	_, err := s.AddTreatment("Cleaning")
	require.NoError(t, err)

	res, err := s.AttemptPayment(context.Background(), dec("500"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPaymentWriteFailed)
	assert.ErrorIs(t, err, ErrGatewayUnavailable)

	var ce *CommitError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, StagePayment, ce.Stage)
	assert.Equal(t, uint64(101), ce.AppointmentID)

	assert.Equal(t, StagePayment, res.Stage)
	assert.Equal(t, uint64(101), res.AppointmentID)
	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, StagePayment, s.FailedStage())

	last, ok := s.LastCommit()
	require.True(t, ok)
	assert.Equal(t, uint64(101), last.AppointmentID)

	assert.Equal(t, StagePayment, got.Stage)
	assert.Equal(t, uint64(101), got.AppointmentID)
	assert.NotEmpty(t, got.Error)
}

func TestReferenceGeneratorFailureIsPaymentStage(t *testing.T) {
	gw := newFakeGateway()
	s := newTestSession(t, gw, WithReferenceGenerator(func() (string, error) {
		return "", errors.New("entropy exhausted")
	}))
	require.NoError(t, s.SelectParty(validParty()))
	_, err := s.AddTreatment("Cleaning")
	require.NoError(t, err)

	_, err = s.AttemptPayment(context.Background(), dec("500"))
	assert.ErrorIs(t, err, ErrPaymentWriteFailed)
	assert.Equal(t, StagePayment, s.FailedStage())
	assert.Len(t, gw.appointments, 1)
}

func TestGatewayTimeout(t *testing.T) {
	gw := newFakeGateway()
	gw.CreateAppointmentFunc = func(ctx context.Context, _ NewAppointment) (uint64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	s := newTestSession(t, gw, WithTimeout(10*time.Millisecond))
	require.NoError(t, s.SelectParty(validParty()))
	_, err := s.AddTreatment("Cleaning")
	require.NoError(t, err)

	_, err = s.AttemptPayment(context.Background(), dec("500"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StageAppointment, s.FailedStage())
}

func TestTenderedResetOnCartChange(t *testing.T) {
	s := newTestSession(t, newFakeGateway())
	require.NoError(t, s.SelectParty(validParty()))
	_, err := s.AddTreatment("Cleaning")
	require.NoError(t, err)

	s.tendered = dec("1000")
	require.NoError(t, s.SetNote("x"))
	assert.True(t, s.CurrentReceipt().Tendered.Equal(dec("1000")), "note does not reset tendered")

	_, err = s.AddTreatment("Fluoride")
	require.NoError(t, err)
	assert.True(t, s.CurrentReceipt().Tendered.IsZero())

	s.tendered = dec("1000")
	_, err = s.RemoveLastTreatment()
	require.NoError(t, err)
	assert.True(t, s.CurrentReceipt().Tendered.IsZero())
}
