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

// Rows per multi-row INSERT statement.
const insertBatchSize = 100

// HealthRecordAdapter implements HealthRecordRepository with batched
// multi-row inserts bound by positional parameters.
type HealthRecordAdapter struct {
	session *snowflake.Session
	db      *goqu.Database
}

// NewHealthRecordAdapter creates a new health record adapter.
func NewHealthRecordAdapter(session *snowflake.Session) repositories.HealthRecordRepository {
	return &HealthRecordAdapter{
		session: session,
		db:      goqu.New("default", session.DB()),
	}
}

// BulkInsert loads all records in insertBatchSize chunks.
func (a *HealthRecordAdapter) BulkInsert(ctx context.Context, records []*entities.HealthRecord) error {
	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := a.insertChunk(ctx, records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (a *HealthRecordAdapter) insertChunk(ctx context.Context, records []*entities.HealthRecord) error {
	rows := make([]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, goqu.Record{
			"RECORD_ID":             r.ID,
			"PATIENT_ID":            r.PatientID,
			"IMPORT_ID":             r.ImportID,
			"RECORD_CATEGORY":       string(r.Category),
			"RECORD_DATE":           r.EventDate,
			"PROVIDER":              nullString(r.Provider),
			"ITEM_DESCRIPTION":      nullString(r.Description),
			"VALUE_TEXT":            nullString(r.ValueText),
			"VALUE_NUMERIC":         r.ValueNumeric,
			"MEASUREMENT_DIMENSION": nullString(r.MeasurementDimension),
			"REFERENCE_RANGE":       nullString(r.ReferenceRange),
			"REF_RANGE_LOW":         r.RefRangeLow,
			"REF_RANGE_HIGH":        r.RefRangeHigh,
			"FLAG":                  nullString(r.Flag),
			"TEST_CATEGORY":         nullString(r.TestCategory),
			"DOSAGE":                nullString(r.Dosage),
			"FORM":                  nullString(r.Form),
			"FOR_CONDITION":         nullString(r.ForCondition),
			"FREQUENCY":             nullString(r.Frequency),
			"MEDICATION_STATUS":     nullString(r.MedicationStatus),
			"VITAL_CATEGORY":        nullString(r.VitalCategory),
			"CONDITION_STATUS":      nullString(r.ConditionStatus),
			"VACCINE_CATEGORY":      nullString(r.VaccineCategory),
			"PROCEDURE_CATEGORY":    nullString(r.ProcedureCategory),
			"ALLERGY_CATEGORY":      nullString(r.AllergyCategory),
			"SOURCE_FILE":           nullString(r.SourceFile),
		})
	}

	query, args, err := a.db.Insert("HEALTH_RECORDS").Rows(rows...).Prepared(true).ToSQL()
	if err != nil {
		return apperrors.NewExecutionError("failed to build record insert", err)
	}

	return a.session.Exec(ctx, query, args...)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
