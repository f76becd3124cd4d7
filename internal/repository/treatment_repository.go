package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/dental-clinic-desk/internal/model"
)

// TreatmentRepo provides read access to the treatment catalog.
type TreatmentRepo struct {
	db *sql.DB
}

// NewTreatmentRepo returns a new TreatmentRepo bound to the given database.
func NewTreatmentRepo(db *sql.DB) *TreatmentRepo { return &TreatmentRepo{db: db} }

// List returns the catalog in insertion order. Names are not unique in the
// table; callers decide which duplicate wins.
func (r *TreatmentRepo) List(ctx context.Context) ([]model.Treatment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT treatment_id, name, description, default_fee FROM treatments ORDER BY treatment_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Treatment
	for rows.Next() {
		var t model.Treatment
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.DefaultFee); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
