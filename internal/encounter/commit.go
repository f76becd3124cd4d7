package encounter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/dental-clinic-desk/internal/billing"
)

const (
	appointmentStatus = "scheduled"
	paymentStatus     = "paid"
)

// CommitResult is the outcome of AttemptPayment once the tendered amount
// covered the total. Receipt is a snapshot taken before the cart was cleared.
type CommitResult struct {
	AppointmentID uint64          `json:"appointment_id,omitempty"`
	Reference     string          `json:"payment_reference,omitempty"`
	Success       bool            `json:"success"`
	Stage         Stage           `json:"failure_stage"`
	Receipt       billing.Receipt `json:"receipt"`
	At            time.Time       `json:"at"`
}

// AttemptPayment validates the cart and tendered amount, then writes the
// appointment and the payment in that order. Validation failures leave the
// session as it was. A write failure moves the session to StateFailed and
// returns a *CommitError alongside the result.
//
// There is no rollback: if the payment write fails the appointment stays
// booked and the result carries its id for reconciliation.
func (s *Session) AttemptPayment(ctx context.Context, tendered decimal.Decimal) (CommitResult, error) {
	if s.state.Terminal() {
		return CommitResult{}, ErrSessionClosed
	}
	if s.state == StateAwaitingPayment {
		return CommitResult{}, ErrInvalidState
	}
	if len(s.cart) == 0 {
		return CommitResult{}, ErrEmptyCart
	}
	if !s.party.Complete() {
		return CommitResult{}, ErrPartyNotSelected
	}
	totals := s.calc.Total(s.cart)
	if _, err := billing.Change(totals.Total, tendered); err != nil {
		return CommitResult{}, err
	}

	s.tendered = tendered
	s.state = StateAwaitingPayment
	res := CommitResult{
		Stage:   StageNone,
		Receipt: s.calc.NewReceipt(s.cart, tendered),
	}
	log := s.log.With().
		Uint64("patient_id", s.party.PatientID).
		Uint64("dentist_id", s.party.DentistID).
		Str("total", totals.Total.StringFixed(2)).
		Logger()

	apptID, err := s.createAppointment(ctx)
	if err != nil {
		log.Error().Err(err).Msg("appointment write failed")
		return s.fail(ctx, res, StageAppointment, err)
	}
	res.AppointmentID = apptID
	log = log.With().Uint64("appointment_id", apptID).Logger()

	ref, err := s.newRef()
	if err == nil {
		res.Reference = ref
		err = s.createPayment(ctx, apptID, tendered, ref)
	}
	if err != nil {
		log.Error().Err(err).Msg("payment write failed; appointment needs reconciliation")
		return s.fail(ctx, res, StagePayment, err)
	}

	res.Success = true
	res.At = s.now()
	s.last = &res
	s.committed = s.party
	s.state = StateCommitted
	s.cart = nil
	s.tendered = decimal.Zero
	s.party = Party{}
	s.note = ""
	log.Info().Str("reference", ref).Msg("encounter committed")
	s.publish(ctx, res, nil)
	return res, nil
}

func (s *Session) createAppointment(ctx context.Context) (uint64, error) {
	names := make([]string, len(s.cart))
	for i, it := range s.cart {
		names[i] = it.Treatment
	}
	a := NewAppointment{
		PatientID:   s.party.PatientID,
		DentistID:   s.party.DentistID,
		ScheduledAt: s.party.ScheduledAt,
		Status:      appointmentStatus,
		Reason:      strings.Join(names, ", "),
	}
	if s.note != "" {
		note := s.note
		a.Notes = &note
	}
	cctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.gw.CreateAppointment(cctx, a)
}

func (s *Session) createPayment(ctx context.Context, apptID uint64, amount decimal.Decimal, ref string) error {
	p := NewPayment{
		AppointmentID: apptID,
		PatientID:     s.party.PatientID,
		Amount:        amount,
		Method:        s.method,
		Status:        paymentStatus,
		Reference:     ref,
	}
	if s.remarks != "" {
		remarks := s.remarks
		p.Remarks = &remarks
	}
	cctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.gw.CreatePayment(cctx, p)
}

func (s *Session) fail(ctx context.Context, res CommitResult, stage Stage, cause error) (CommitResult, error) {
	res.Stage = stage
	res.At = s.now()
	s.last = &res
	s.failed = stage
	s.state = StateFailed
	err := &CommitError{Stage: stage, AppointmentID: res.AppointmentID, Err: cause}
	s.publish(ctx, res, err)
	return res, err
}

func (s *Session) publish(ctx context.Context, res CommitResult, cause error) {
	if s.sink == nil {
		return
	}
	party := s.party
	if res.Success {
		party = s.committed
	}
	o := Outcome{
		SessionID:     s.id,
		Stage:         res.Stage,
		AppointmentID: res.AppointmentID,
		Reference:     res.Reference,
		Total:         res.Receipt.Total,
		Tendered:      res.Receipt.Tendered,
		PatientID:     party.PatientID,
		DentistID:     party.DentistID,
		At:            res.At,
	}
	if cause != nil {
		o.Error = cause.Error()
	}
	if err := s.sink.Publish(context.WithoutCancel(ctx), o); err != nil {
		s.log.Warn().Err(err).Str("stage", string(res.Stage)).Msg("publish outcome")
	}
}

// Summary is a JSON-friendly view of a session.
type Summary struct {
	ID          string          `json:"id"`
	State       State           `json:"state"`
	FailedStage Stage           `json:"failed_stage"`
	Party       *Party          `json:"party,omitempty"`
	Note        string          `json:"note,omitempty"`
	Receipt     billing.Receipt `json:"receipt"`
	LastCommit  *CommitResult   `json:"last_commit,omitempty"`
}

// Summary snapshots the session for display.
func (s *Session) Summary() Summary {
	out := Summary{
		ID:          s.id,
		State:       s.state,
		FailedStage: s.failed,
		Note:        s.note,
		Receipt:     s.CurrentReceipt(),
	}
	if s.party != (Party{}) {
		p := s.party
		out.Party = &p
	}
	if s.last != nil {
		lc := *s.last
		out.LastCommit = &lc
	}
	return out
}

func (r CommitResult) String() string {
	if r.Success {
		return fmt.Sprintf("committed appointment %d ref %s", r.AppointmentID, r.Reference)
	}
	return fmt.Sprintf("failed at %s (appointment %d)", r.Stage, r.AppointmentID)
}
