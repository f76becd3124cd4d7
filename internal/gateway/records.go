// Package gateway adapts the MySQL repositories to the encounter.Gateway
// contract.
package gateway

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/dental-clinic-desk/internal/encounter"
	"github.com/iliyamo/dental-clinic-desk/internal/model"
	"github.com/iliyamo/dental-clinic-desk/internal/repository"
)

var _ encounter.Gateway = (*Records)(nil)

// Records is the clinical records store backed by MySQL. Each call is
// bounded by Timeout when it is positive.
type Records struct {
	Patients     *repository.PatientRepo
	Dentists     *repository.DentistRepo
	Treatments   *repository.TreatmentRepo
	Appointments *repository.AppointmentRepo
	Payments     *repository.PaymentRepo
	History      *repository.HistoryRepo
	Timeout      time.Duration
}

// NewRecords wires every repository to db.
func NewRecords(db *sql.DB, timeout time.Duration) *Records {
	return &Records{
		Patients:     repository.NewPatientRepo(db),
		Dentists:     repository.NewDentistRepo(db),
		Treatments:   repository.NewTreatmentRepo(db),
		Appointments: repository.NewAppointmentRepo(db),
		Payments:     repository.NewPaymentRepo(db),
		History:      repository.NewHistoryRepo(db),
		Timeout:      timeout,
	}
}

func (r *Records) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.Timeout > 0 {
		return context.WithTimeout(ctx, r.Timeout)
	}
	return ctx, func() {}
}

// ListPatients implements encounter.Gateway.
func (r *Records) ListPatients(ctx context.Context) ([]encounter.PatientRef, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	rows, err := r.Patients.List(ctx)
	if err != nil {
		return nil, classify("list patients", err)
	}
	out := make([]encounter.PatientRef, len(rows))
	for i, p := range rows {
		out[i] = encounter.PatientRef{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName}
	}
	return out, nil
}

// ListDentists implements encounter.Gateway.
func (r *Records) ListDentists(ctx context.Context) ([]encounter.DentistRef, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	rows, err := r.Dentists.List(ctx)
	if err != nil {
		return nil, classify("list dentists", err)
	}
	out := make([]encounter.DentistRef, len(rows))
	for i, d := range rows {
		out[i] = encounter.DentistRef{ID: d.ID, DisplayName: d.DisplayName()}
	}
	return out, nil
}

// ListTreatments implements encounter.Gateway.
func (r *Records) ListTreatments(ctx context.Context) ([]encounter.CatalogItem, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	rows, err := r.Treatments.List(ctx)
	if err != nil {
		return nil, classify("list treatments", err)
	}
	out := make([]encounter.CatalogItem, len(rows))
	for i, t := range rows {
		out[i] = encounter.CatalogItem{Name: t.Name, DefaultFee: t.DefaultFee}
	}
	return out, nil
}

// CreateAppointment implements encounter.Gateway.
func (r *Records) CreateAppointment(ctx context.Context, a encounter.NewAppointment) (uint64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	row := model.Appointment{
		PatientID: a.PatientID,
		DentistID: a.DentistID,
		Status:    a.Status,
		Reason:    a.Reason,
		Notes:     a.Notes,
	}
	if !a.ScheduledAt.IsZero() {
		sched := a.ScheduledAt
		row.ScheduledAt = &sched
	}
	if err := r.Appointments.Create(ctx, &row); err != nil {
		return 0, classify("create appointment", err)
	}
	return row.ID, nil
}

// CreatePayment implements encounter.Gateway.
func (r *Records) CreatePayment(ctx context.Context, p encounter.NewPayment) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	row := model.Payment{
		AppointmentID: p.AppointmentID,
		PatientID:     p.PatientID,
		Amount:        p.Amount,
		Method:        p.Method,
		Status:        p.Status,
		Reference:     p.Reference,
		Remarks:       p.Remarks,
	}
	if err := r.Payments.Create(ctx, &row); err != nil {
		return classify("create payment", err)
	}
	return nil
}

// CreateHistoryEntry implements encounter.Gateway.
func (r *Records) CreateHistoryEntry(ctx context.Context, h encounter.NewHistoryEntry) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	row := model.HistoryEntry{
		PatientID:      h.PatientID,
		AppointmentID:  h.AppointmentID,
		VisitDate:      h.VisitDate,
		Diagnosis:      h.Diagnosis,
		TreatmentGiven: h.TreatmentGiven,
		Prescription:   h.Prescription,
		FollowUpDate:   h.FollowUpDate,
		Notes:          h.Notes,
	}
	if err := r.History.Create(ctx, &row); err != nil {
		return classify("create history entry", err)
	}
	return nil
}

// GetAppointment implements encounter.Gateway.
func (r *Records) GetAppointment(ctx context.Context, id uint64) (encounter.AppointmentRef, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	a, err := r.Appointments.GetByID(ctx, id)
	if err != nil {
		return encounter.AppointmentRef{}, classify("get appointment", err)
	}
	return encounter.AppointmentRef{
		ID:          a.ID,
		PatientID:   a.PatientID,
		DentistID:   a.DentistID,
		ScheduledAt: a.ScheduledAt,
		Status:      a.Status,
		Reason:      a.Reason,
	}, nil
}

// classify tags connection-level failures with ErrGatewayUnavailable so the
// desk can tell "store down" from "write rejected".
func classify(op string, err error) error {
	if Unavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, encounter.ErrGatewayUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Unavailable reports whether err means the store could not be reached.
func Unavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
