package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/dental-clinic-desk/internal/model"
)

// AppointmentRepo provides access to the appointments table. The desk only
// ever inserts appointments; status changes happen elsewhere.
type AppointmentRepo struct {
	db *sql.DB
}

// NewAppointmentRepo returns a new AppointmentRepo bound to the given database.
func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{db: db} }

const appointmentColumns = `appointment_id, patient_id, dentist_id, scheduled_at, status, reason, notes, created_at`

func scanAppointment(row interface{ Scan(...any) error }) (model.Appointment, error) {
	var (
		a     model.Appointment
		sched sql.NullTime
		notes sql.NullString
	)
	err := row.Scan(&a.ID, &a.PatientID, &a.DentistID, &sched, &a.Status, &a.Reason, &notes, &a.CreatedAt)
	a.ScheduledAt = timePtr(sched)
	a.Notes = stringPtr(notes)
	return a, err
}

// Create inserts a and fills in its generated id. The insert is a single
// statement; there is no surrounding transaction.
func (r *AppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	const q = `INSERT INTO appointments (patient_id, dentist_id, scheduled_at, status, reason, notes)
VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.PatientID, a.DentistID, nullTime(a.ScheduledAt),
		a.Status, a.Reason, nullString(a.Notes))
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID returns one appointment or ErrNotFound.
func (r *AppointmentRepo) GetByID(ctx context.Context, id uint64) (model.Appointment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE appointment_id = ?`, id)
	a, err := scanAppointment(row)
	if err != nil {
		return model.Appointment{}, translate(err)
	}
	return a, nil
}

// List returns up to limit appointments, newest first.
func (r *AppointmentRepo) List(ctx context.Context, limit int) ([]model.Appointment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments ORDER BY created_at DESC, appointment_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
