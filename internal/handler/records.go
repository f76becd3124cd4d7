package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dental-clinic-desk/internal/gateway"
	"github.com/iliyamo/dental-clinic-desk/internal/model"
	"github.com/iliyamo/dental-clinic-desk/internal/recommend"
	"github.com/iliyamo/dental-clinic-desk/internal/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// RecordsHandler exposes the clinic's stored records: patient intake and
// the read-only listings the desk shows.
type RecordsHandler struct {
	Patients     *repository.PatientRepo
	Dentists     *repository.DentistRepo
	Treatments   *repository.TreatmentRepo
	Appointments *repository.AppointmentRepo
	Payments     *repository.PaymentRepo
	History      *repository.HistoryRepo
	Now          func() time.Time
	// Timeout bounds each handler's store calls. Zero means no bound.
	Timeout time.Duration
}

// NewRecordsHandler shares the repositories of rec and panics if rec is nil.
func NewRecordsHandler(rec *gateway.Records) *RecordsHandler {
	if rec == nil {
		panic("nil records passed to NewRecordsHandler")
	}
	return &RecordsHandler{
		Patients:     rec.Patients,
		Dentists:     rec.Dentists,
		Treatments:   rec.Treatments,
		Appointments: rec.Appointments,
		Payments:     rec.Payments,
		History:      rec.History,
		Now:          time.Now,
		Timeout:      rec.Timeout,
	}
}

func (h *RecordsHandler) bound(c echo.Context) (context.Context, context.CancelFunc) {
	if h.Timeout > 0 {
		return context.WithTimeout(c.Request().Context(), h.Timeout)
	}
	return c.Request().Context(), func() {}
}

func listLimit(c echo.Context) (int, bool) {
	raw := strings.TrimSpace(c.QueryParam("limit"))
	if raw == "" {
		return defaultListLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, true
}

// ageOn returns the completed years between birth and now.
func ageOn(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

// ListPatients handles GET /v1/patients.
func (h *RecordsHandler) ListPatients(c echo.Context) error {
	ctx, cancel := h.bound(c)
	defer cancel()
	items, err := h.Patients.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreatePatient handles POST /v1/patients. The age group is derived from
// the birth date with the recommendation engine's bands.
func (h *RecordsHandler) CreatePatient(c echo.Context) error {
	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		BirthDate string `json:"birth_date"`
		Gender    string `json:"gender"`
		Phone     string `json:"phone"`
		Email     string `json:"email"`
		Address   string `json:"address"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	first := strings.TrimSpace(body.FirstName)
	last := strings.TrimSpace(body.LastName)
	if first == "" || last == "" {
		return badRequest(c, "first_name and last_name are required")
	}
	birth, err := time.Parse(time.DateOnly, strings.TrimSpace(body.BirthDate))
	if err != nil {
		return badRequest(c, "birth_date must be YYYY-MM-DD")
	}
	now := h.Now()
	if birth.After(now) {
		return badRequest(c, "birth_date is in the future")
	}
	group, err := recommend.GroupForAge(ageOn(birth, now))
	if err != nil {
		return respondError(c, err)
	}
	p := &model.Patient{
		FirstName: first,
		LastName:  last,
		BirthDate: &birth,
		AgeGroup:  string(group),
		Gender:    strings.TrimSpace(body.Gender),
		Phone:     strings.TrimSpace(body.Phone),
		Email:     strings.TrimSpace(body.Email),
		Address:   strings.TrimSpace(body.Address),
	}
	ctx, cancel := h.bound(c)
	defer cancel()
	if err := h.Patients.Create(ctx, p); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// PatientHistory handles GET /v1/patients/:id/history.
func (h *RecordsHandler) PatientHistory(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := h.bound(c)
	defer cancel()
	if _, err := h.Patients.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}
	items, err := h.History.ListByPatient(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type dentistView struct {
	model.Dentist
	DisplayName string `json:"display_name"`
}

// ListDentists handles GET /v1/dentists.
func (h *RecordsHandler) ListDentists(c echo.Context) error {
	ctx, cancel := h.bound(c)
	defer cancel()
	rows, err := h.Dentists.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dentistView, len(rows))
	for i, d := range rows {
		items[i] = dentistView{Dentist: d, DisplayName: d.DisplayName()}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListTreatments handles GET /v1/treatments.
func (h *RecordsHandler) ListTreatments(c echo.Context) error {
	ctx, cancel := h.bound(c)
	defer cancel()
	items, err := h.Treatments.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListAppointments handles GET /v1/appointments?limit=N, newest first.
func (h *RecordsHandler) ListAppointments(c echo.Context) error {
	limit, ok := listLimit(c)
	if !ok {
		return badRequest(c, "invalid limit")
	}
	ctx, cancel := h.bound(c)
	defer cancel()
	items, err := h.Appointments.List(ctx, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListPayments handles GET /v1/payments?limit=N.
func (h *RecordsHandler) ListPayments(c echo.Context) error {
	limit, ok := listLimit(c)
	if !ok {
		return badRequest(c, "invalid limit")
	}
	ctx, cancel := h.bound(c)
	defer cancel()
	items, err := h.Payments.List(ctx, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
