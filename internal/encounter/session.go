// Package encounter implements the front-desk encounter workflow: pick a
// patient and dentist, build a cart of treatments, take payment and commit
// the appointment and payment records through a Gateway.
//
// A Session is not safe for concurrent use. Callers serialize access, for
// example through a Registry.
package encounter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/dental-clinic-desk/internal/billing"
)

const (
	defaultPaymentMethod = "cash"
	defaultRemarks       = "Paid at front desk"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Session) { s.log = l } }

// WithSink sets where commit outcomes are published.
func WithSink(k Sink) Option { return func(s *Session) { s.sink = k } }

// WithPaymentMethod sets the method recorded on payments.
func WithPaymentMethod(m string) Option {
	return func(s *Session) {
		if m = strings.TrimSpace(m); m != "" {
			s.method = m
		}
	}
}

// WithRemarks sets the remarks recorded on payments. Empty means none.
func WithRemarks(r string) Option { return func(s *Session) { s.remarks = r } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// WithReferenceGenerator overrides NewReference.
func WithReferenceGenerator(gen func() (string, error)) Option {
	return func(s *Session) { s.newRef = gen }
}

// WithTimeout bounds each gateway call. Zero means no bound beyond ctx.
func WithTimeout(d time.Duration) Option { return func(s *Session) { s.timeout = d } }

// WithID sets the session id. The default is a random UUID.
func WithID(id string) Option { return func(s *Session) { s.id = id } }

// WithCalculator sets the receipt calculator, e.g. to plug in a discount rule.
func WithCalculator(c billing.Calculator) Option { return func(s *Session) { s.calc = c } }

// Session is one encounter from party selection to commit.
type Session struct {
	id      string
	gw      Gateway
	log     zerolog.Logger
	sink    Sink
	method  string
	remarks string
	now     func() time.Time
	newRef  func() (string, error)
	timeout time.Duration
	calc    billing.Calculator

	catalog []CatalogItem
	fees    map[string]decimal.Decimal

	state    State
	party    Party
	cart     []billing.LineItem
	note     string
	tendered decimal.Decimal
	failed   Stage
	last     *CommitResult
	// committed keeps the party of the last successful commit for history.
	committed Party
}

// NewSession loads the treatment catalog and returns an empty session. The
// catalog is fixed for the session's lifetime.
func NewSession(ctx context.Context, gw Gateway, opts ...Option) (*Session, error) {
	s := &Session{
		id:       uuid.NewString(),
		gw:       gw,
		log:      zerolog.Nop(),
		method:   defaultPaymentMethod,
		remarks:  defaultRemarks,
		now:      time.Now,
		newRef:   NewReference,
		state:    StateEmpty,
		tendered: decimal.Zero,
		failed:   StageNone,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("session_id", s.id).Logger()

	cctx, cancel := s.callContext(ctx)
	items, err := gw.ListTreatments(cctx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("load treatment catalog: %w", err)
	}
	s.fees = make(map[string]decimal.Decimal, len(items))
	for _, it := range items {
		if _, dup := s.fees[it.Name]; dup {
			continue
		}
		s.fees[it.Name] = it.DefaultFee
		s.catalog = append(s.catalog, it)
	}
	s.log.Debug().Int("treatments", len(s.catalog)).Msg("catalog loaded")
	return s, nil
}

func (s *Session) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// State returns the current workflow state.
func (s *Session) State() State { return s.state }

// FailedStage returns the failed commit step, or StageNone.
func (s *Session) FailedStage() Stage { return s.failed }

// Party returns the current selection.
func (s *Session) Party() Party { return s.party }

// Note returns the appointment note.
func (s *Session) Note() string { return s.note }

// LastCommit returns the result of the last commit attempt, if any.
func (s *Session) LastCommit() (CommitResult, bool) {
	if s.last == nil {
		return CommitResult{}, false
	}
	return *s.last, true
}

// Catalog returns the treatments loaded at construction, in load order.
func (s *Session) Catalog() []CatalogItem {
	return append([]CatalogItem(nil), s.catalog...)
}

// Items returns a copy of the cart.
func (s *Session) Items() []billing.LineItem {
	return append([]billing.LineItem(nil), s.cart...)
}

// CurrentReceipt derives the receipt for the cart and any tendered amount.
func (s *Session) CurrentReceipt() billing.Receipt {
	return s.calc.NewReceipt(s.cart, s.tendered)
}

// SelectParty sets the patient, dentist and schedule. Reselecting keeps the
// cart.
func (s *Session) SelectParty(p Party) error {
	if s.state.Terminal() {
		return ErrSessionClosed
	}
	if s.state == StateAwaitingPayment {
		return ErrInvalidState
	}
	p.PatientName = strings.TrimSpace(p.PatientName)
	p.DentistName = strings.TrimSpace(p.DentistName)
	if !p.Complete() {
		return ErrIncompleteSelection
	}
	s.party = p
	if len(s.cart) == 0 {
		s.state = StatePartySelected
	} else {
		s.state = StateBuilding
	}
	return nil
}

// AddTreatment appends a catalog treatment at its current fee. It fails with
// ErrPartyNotSelected until SelectParty succeeded.
func (s *Session) AddTreatment(name string) (billing.LineItem, error) {
	if s.state.Terminal() {
		return billing.LineItem{}, ErrSessionClosed
	}
	if s.state == StateAwaitingPayment {
		return billing.LineItem{}, ErrInvalidState
	}
	if !s.party.Complete() {
		return billing.LineItem{}, ErrPartyNotSelected
	}
	name = strings.TrimSpace(name)
	fee, ok := s.fees[name]
	if !ok {
		return billing.LineItem{}, fmt.Errorf("%w: %q", ErrUnknownTreatment, name)
	}
	item := billing.LineItem{Treatment: name, Fee: fee}
	s.cart = append(s.cart, item)
	s.tendered = decimal.Zero
	s.state = StateBuilding
	return item, nil
}

// RemoveLastTreatment pops the most recently added item.
func (s *Session) RemoveLastTreatment() (billing.LineItem, error) {
	if s.state.Terminal() {
		return billing.LineItem{}, ErrSessionClosed
	}
	if s.state == StateAwaitingPayment {
		return billing.LineItem{}, ErrInvalidState
	}
	if len(s.cart) == 0 {
		return billing.LineItem{}, ErrEmptyCart
	}
	item := s.cart[len(s.cart)-1]
	s.cart = s.cart[:len(s.cart)-1]
	s.tendered = decimal.Zero
	if len(s.cart) == 0 {
		s.state = StatePartySelected
	}
	return item, nil
}

// SetNote sets the optional appointment note.
func (s *Session) SetNote(note string) error {
	if s.state.Terminal() {
		return ErrSessionClosed
	}
	s.note = strings.TrimSpace(note)
	return nil
}
