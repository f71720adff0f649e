package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"github.com/healthintel/snowbridge/internal/domain/entities"
	"github.com/healthintel/snowbridge/internal/domain/repositories"
	"github.com/healthintel/snowbridge/internal/infrastructure/clients/snowflake"
	apperrors "github.com/healthintel/snowbridge/pkg/errors"
)

// PatientAdapter implements PatientRepository over a warehouse session.
type PatientAdapter struct {
	session *snowflake.Session
	db      *goqu.Database
}

// NewPatientAdapter creates a new patient adapter.
func NewPatientAdapter(session *snowflake.Session) repositories.PatientRepository {
	return &PatientAdapter{
		session: session,
		db:      goqu.New("default", session.DB()),
	}
}

// FindByIdentity looks a patient up by identity; returns nil when the
// patient does not exist yet.
func (a *PatientAdapter) FindByIdentity(ctx context.Context, identity string) (*entities.Patient, error) {
	query, args, err := a.db.Select("PATIENT_ID", "PATIENT_IDENTITY", "DATE_OF_BIRTH", "PATIENT_AGE").
		From("PATIENTS").
		Where(goqu.Ex{"PATIENT_IDENTITY": identity}).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewExecutionError("failed to build patient lookup", err)
	}

	patient := &entities.Patient{}
	var dob sql.NullTime
	var age sql.NullInt64

	err = a.session.DB().QueryRowContext(ctx, query, args...).Scan(
		&patient.ID,
		&patient.Identity,
		&dob,
		&age,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewExecutionError("failed to look up patient", err)
	}

	if dob.Valid {
		d := dob.Time
		patient.DOB = &d
	}
	if age.Valid {
		v := int(age.Int64)
		patient.Age = &v
	}
	return patient, nil
}

// Create inserts a new patient row.
func (a *PatientAdapter) Create(ctx context.Context, patient *entities.Patient) error {
	record := goqu.Record{
		"PATIENT_ID":       patient.ID,
		"PATIENT_IDENTITY": patient.Identity,
		"DATE_OF_BIRTH":    patient.DOB,
		"PATIENT_AGE":      patient.Age,
	}

	query, args, err := a.db.Insert("PATIENTS").Rows(record).Prepared(true).ToSQL()
	if err != nil {
		return apperrors.NewExecutionError("failed to build patient insert", err)
	}

	return a.session.Exec(ctx, query, args...)
}
