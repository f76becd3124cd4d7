package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/dental-clinic-desk/internal/model"
)

// HistoryRepo provides access to the patient_history table.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo returns a new HistoryRepo bound to the given database.
func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

// Create appends a history entry. Duplicate entries for one appointment are
// allowed.
func (r *HistoryRepo) Create(ctx context.Context, h *model.HistoryEntry) error {
	const q = `INSERT INTO patient_history
(patient_id, appointment_id, visit_date, diagnosis, treatment_given, prescription, follow_up_date, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, h.PatientID, h.AppointmentID, h.VisitDate,
		nullString(h.Diagnosis), nullString(h.TreatmentGiven), nullString(h.Prescription),
		nullTime(h.FollowUpDate), nullString(h.Notes))
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// ListByPatient returns a patient's history, most recent visit first.
func (r *HistoryRepo) ListByPatient(ctx context.Context, patientID uint64) ([]model.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT history_id, patient_id, appointment_id, visit_date, diagnosis,
treatment_given, prescription, follow_up_date, notes, created_at
FROM patient_history WHERE patient_id = ? ORDER BY visit_date DESC, history_id DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.HistoryEntry
	for rows.Next() {
		var (
			h                      model.HistoryEntry
			diag, given, rx, notes sql.NullString
			followUp               sql.NullTime
		)
		if err := rows.Scan(&h.ID, &h.PatientID, &h.AppointmentID, &h.VisitDate, &diag,
			&given, &rx, &followUp, &notes, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.Diagnosis = stringPtr(diag)
		h.TreatmentGiven = stringPtr(given)
		h.Prescription = stringPtr(rx)
		h.FollowUpDate = timePtr(followUp)
		h.Notes = stringPtr(notes)
		out = append(out, h)
	}
	return out, rows.Err()
}
