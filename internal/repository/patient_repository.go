package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/dental-clinic-desk/internal/model"
)

// PatientRepo provides access to the patients table.
type PatientRepo struct {
	db *sql.DB
}

// NewPatientRepo returns a new PatientRepo bound to the given database.
func NewPatientRepo(db *sql.DB) *PatientRepo { return &PatientRepo{db: db} }

const patientColumns = `patient_id, first_name, last_name, birth_date, age_group, gender, phone, email, address, created_at`

func scanPatient(row interface{ Scan(...any) error }) (model.Patient, error) {
	var (
		p     model.Patient
		birth sql.NullTime
	)
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &birth, &p.AgeGroup,
		&p.Gender, &p.Phone, &p.Email, &p.Address, &p.CreatedAt)
	p.BirthDate = timePtr(birth)
	return p, err
}

// List returns all patients ordered by last then first name.
func (r *PatientRepo) List(ctx context.Context) ([]model.Patient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+patientColumns+` FROM patients ORDER BY last_name, first_name, patient_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID returns one patient or ErrNotFound.
func (r *PatientRepo) GetByID(ctx context.Context, id uint64) (model.Patient, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+patientColumns+` FROM patients WHERE patient_id = ?`, id)
	p, err := scanPatient(row)
	if err != nil {
		return model.Patient{}, translate(err)
	}
	return p, nil
}

// Create inserts p and fills in its generated id. CreatedAt is set by the
// database and left zero here.
func (r *PatientRepo) Create(ctx context.Context, p *model.Patient) error {
	const q = `INSERT INTO patients (first_name, last_name, birth_date, age_group, gender, phone, email, address)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.FirstName, p.LastName, nullTime(p.BirthDate),
		p.AgeGroup, p.Gender, p.Phone, p.Email, p.Address)
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
