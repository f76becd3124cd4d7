package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/dental-clinic-desk/internal/model"
)

// PaymentRepo provides access to the payments table.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Create inserts p. A reference code that already exists fails with
// ErrConflict.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (appointment_id, patient_id, amount, method, status, reference_code, remarks)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.AppointmentID, p.PatientID, p.Amount,
		p.Method, p.Status, p.Reference, nullString(p.Remarks))
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// List returns up to limit payments, newest first.
func (r *PaymentRepo) List(ctx context.Context, limit int) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payment_id, appointment_id, patient_id, amount, method, status, reference_code, remarks, paid_at
FROM payments ORDER BY paid_at DESC, payment_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Payment
	for rows.Next() {
		var (
			p       model.Payment
			remarks sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.AppointmentID, &p.PatientID, &p.Amount, &p.Method,
			&p.Status, &p.Reference, &remarks, &p.PaidAt); err != nil {
			return nil, err
		}
		p.Remarks = stringPtr(remarks)
		out = append(out, p)
	}
	return out, rows.Err()
}
