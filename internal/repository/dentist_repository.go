package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/dental-clinic-desk/internal/model"
)

// DentistRepo provides read access to the dentists table.
type DentistRepo struct {
	db *sql.DB
}

// NewDentistRepo returns a new DentistRepo bound to the given database.
func NewDentistRepo(db *sql.DB) *DentistRepo { return &DentistRepo{db: db} }

// List returns all dentists ordered by id.
func (r *DentistRepo) List(ctx context.Context) ([]model.Dentist, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT dentist_id, first_name, last_name, full_name, specialization, phone, email
FROM dentists ORDER BY dentist_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Dentist
	for rows.Next() {
		var (
			d    model.Dentist
			full sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.FirstName, &d.LastName, &full, &d.Specialization, &d.Phone, &d.Email); err != nil {
			return nil, err
		}
		d.FullName = stringPtr(full)
		out = append(out, d)
	}
	return out, rows.Err()
}
