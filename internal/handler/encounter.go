package handler

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/dental-clinic-desk/internal/billing"
	"github.com/iliyamo/dental-clinic-desk/internal/encounter"
	"github.com/iliyamo/dental-clinic-desk/internal/observability/metrics"
)

// EncounterHandler drives desk sessions over HTTP. Every request on a
// session holds it exclusively through the registry.
type EncounterHandler struct {
	Sessions  *encounter.Registry
	Gateway   encounter.Gateway
	Options   []encounter.Option // applied to every new or resumed session
	Metrics   *metrics.EncounterMetrics
	Location  *time.Location
	MaxTender decimal.Decimal // zero means no ceiling
	Currency  string
}

// NewEncounterHandler panics if the registry or gateway is nil.
func NewEncounterHandler(reg *encounter.Registry, gw encounter.Gateway, opts ...encounter.Option) *EncounterHandler {
	if reg == nil || gw == nil {
		panic("nil dependency passed to NewEncounterHandler")
	}
	return &EncounterHandler{
		Sessions: reg,
		Gateway:  gw,
		Options:  opts,
		Location: time.Local,
	}
}

type sessionView struct {
	encounter.Summary
	Catalog []encounter.CatalogItem `json:"catalog,omitempty"`
}

func view(s *encounter.Session, withCatalog bool) sessionView {
	v := sessionView{Summary: s.Summary()}
	if withCatalog {
		v.Catalog = s.Catalog()
	}
	return v
}

// withSession acquires the :id session for the caller and runs fn while
// holding it.
func (h *EncounterHandler) withSession(c echo.Context, fn func(*encounter.Session) error) error {
	op, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	s, release, err := h.Sessions.Acquire(c.Param("id"), op)
	if err != nil {
		return respondError(c, err)
	}
	defer release()
	return fn(s)
}

// Create handles POST /v1/encounters. The catalog is loaded once here and
// returned with the new session.
func (h *EncounterHandler) Create(c echo.Context) error {
	op, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	s, err := encounter.NewSession(c.Request().Context(), h.Gateway, h.Options...)
	if err != nil {
		return respondError(c, err)
	}
	h.Sessions.Add(op, s)
	h.Metrics.SetOpenSessions(h.Sessions.Len())
	zerolog.Ctx(c.Request().Context()).Info().Str("session_id", s.ID()).Str("operator", op).Msg("session opened")
	return c.JSON(http.StatusCreated, view(s, true))
}

// Get handles GET /v1/encounters/:id.
func (h *EncounterHandler) Get(c echo.Context) error {
	return h.withSession(c, func(s *encounter.Session) error {
		return c.JSON(http.StatusOK, view(s, true))
	})
}

// Delete handles DELETE /v1/encounters/:id. Nothing is written to the store.
func (h *EncounterHandler) Delete(c echo.Context) error {
	op, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Sessions.Remove(c.Param("id"), op); err != nil {
		return respondError(c, err)
	}
	h.Metrics.SetOpenSessions(h.Sessions.Len())
	return c.NoContent(http.StatusNoContent)
}

type partyRequest struct {
	PatientID   uint64 `json:"patient_id"`
	PatientName string `json:"patient_name"`
	DentistID   uint64 `json:"dentist_id"`
	DentistName string `json:"dentist_name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	ScheduledAt string `json:"scheduled_at"`
}

func (h *EncounterHandler) schedule(req partyRequest) (time.Time, error) {
	if at := strings.TrimSpace(req.ScheduledAt); at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return time.Time{}, encounter.ErrIncompleteSelection
		}
		return t, nil
	}
	return encounter.ScheduleFrom(req.Date, req.Time, h.Location)
}

// SetParty handles PUT /v1/encounters/:id/party. When either display name
// is omitted both are looked up by id.
func (h *EncounterHandler) SetParty(c echo.Context) error {
	var req partyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	at, err := h.schedule(req)
	if err != nil {
		return respondError(c, err)
	}
	return h.withSession(c, func(s *encounter.Session) error {
		p := encounter.Party{
			PatientID:   req.PatientID,
			PatientName: req.PatientName,
			DentistID:   req.DentistID,
			DentistName: req.DentistName,
			ScheduledAt: at,
		}
		if strings.TrimSpace(p.PatientName) == "" || strings.TrimSpace(p.DentistName) == "" {
			p, err = encounter.LookupParty(c.Request().Context(), h.Gateway, req.PatientID, req.DentistID, at)
			if err != nil {
				return respondError(c, err)
			}
		}
		if err := s.SelectParty(p); err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, view(s, false))
	})
}

// AddItem handles POST /v1/encounters/:id/items with {"treatment": "..."}.
func (h *EncounterHandler) AddItem(c echo.Context) error {
	var body struct {
		Treatment string `json:"treatment"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	return h.withSession(c, func(s *encounter.Session) error {
		item, err := s.AddTreatment(body.Treatment)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusCreated, echo.Map{"item": item, "receipt": s.CurrentReceipt()})
	})
}

// RemoveLastItem handles DELETE /v1/encounters/:id/items/last.
func (h *EncounterHandler) RemoveLastItem(c echo.Context) error {
	return h.withSession(c, func(s *encounter.Session) error {
		item, err := s.RemoveLastTreatment()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"removed": item, "receipt": s.CurrentReceipt()})
	})
}

// SetNote handles PUT /v1/encounters/:id/note.
func (h *EncounterHandler) SetNote(c echo.Context) error {
	var body struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	return h.withSession(c, func(s *encounter.Session) error {
		if err := s.SetNote(body.Note); err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, view(s, false))
	})
}

// Pay handles POST /v1/encounters/:id/payment with {"tendered": "1000.00"}.
// On success the printed receipt is returned alongside the commit result.
func (h *EncounterHandler) Pay(c echo.Context) error {
	var body struct {
		Tendered string `json:"tendered"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	tendered, err := decimal.NewFromString(strings.TrimSpace(body.Tendered))
	if err != nil || tendered.IsNegative() {
		return badRequest(c, "tendered must be a non-negative amount")
	}
	if !billing.ValidTender(tendered) {
		return badRequest(c, "tendered must have at most two decimal places")
	}
	if h.MaxTender.IsPositive() && tendered.GreaterThan(h.MaxTender) {
		return badRequest(c, "tendered exceeds the desk limit of "+billing.FormatAmount(h.MaxTender))
	}
	return h.withSession(c, func(s *encounter.Session) error {
		res, err := s.AttemptPayment(c.Request().Context(), tendered)
		if err != nil {
			zerolog.Ctx(c.Request().Context()).Warn().Err(err).Str("session_id", s.ID()).Msg("payment attempt failed")
			return respondError(c, err)
		}
		var buf bytes.Buffer
		if err := billing.Render(&buf, res.Receipt, h.Currency); err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"result": res, "printed": buf.String()})
	})
}

// Resume handles POST /v1/encounters/:id/resume. The failed session is
// replaced by a fresh one carrying its party, cart and note.
func (h *EncounterHandler) Resume(c echo.Context) error {
	op, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id := c.Param("id")
	old, release, err := h.Sessions.Acquire(id, op)
	if err != nil {
		return respondError(c, err)
	}
	s, err := encounter.Resume(c.Request().Context(), h.Gateway, old, h.Options...)
	release()
	if err != nil {
		return respondError(c, err)
	}
	h.Sessions.Add(op, s)
	_ = h.Sessions.Remove(id, op)
	h.Metrics.SetOpenSessions(h.Sessions.Len())
	return c.JSON(http.StatusCreated, view(s, true))
}

type historyRequest struct {
	Diagnosis      string `json:"diagnosis"`
	TreatmentGiven string `json:"treatment_given"`
	Prescription   string `json:"prescription"`
	FollowUpDate   string `json:"follow_up_date"`
	Notes          string `json:"notes"`
}

func (r historyRequest) input() (encounter.HistoryInput, bool) {
	in := encounter.HistoryInput{
		Diagnosis:      r.Diagnosis,
		TreatmentGiven: r.TreatmentGiven,
		Prescription:   r.Prescription,
		Notes:          r.Notes,
	}
	if d := strings.TrimSpace(r.FollowUpDate); d != "" {
		t, err := time.Parse(time.DateOnly, d)
		if err != nil {
			return in, false
		}
		in.FollowUpDate = &t
	}
	return in, true
}

// SessionHistory handles POST /v1/encounters/:id/history for the appointment
// the session committed.
func (h *EncounterHandler) SessionHistory(c echo.Context) error {
	var req historyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	in, ok := req.input()
	if !ok {
		return badRequest(c, "follow_up_date must be YYYY-MM-DD")
	}
	return h.withSession(c, func(s *encounter.Session) error {
		if err := s.RecordHistory(c.Request().Context(), in); err != nil {
			return respondError(c, err)
		}
		return c.NoContent(http.StatusCreated)
	})
}

// AppointmentHistory handles POST /v1/appointments/:id/history for
// appointments booked by earlier sessions.
func (h *EncounterHandler) AppointmentHistory(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req historyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	in, ok := req.input()
	if !ok {
		return badRequest(c, "follow_up_date must be YYYY-MM-DD")
	}
	if err := encounter.RecordHistory(c.Request().Context(), h.Gateway, id, in); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

// SweepIdle evicts idle sessions and updates the gauges. serve calls it
// from a ticker.
func (h *EncounterHandler) SweepIdle(now time.Time) int {
	n := h.Sessions.Sweep(now)
	h.Metrics.ObserveEvicted(n)
	h.Metrics.SetOpenSessions(h.Sessions.Len())
	return n
}
