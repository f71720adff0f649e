package database

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/healthintel/snowbridge/internal/domain/entities"
	"github.com/healthintel/snowbridge/internal/domain/repositories"
	"github.com/healthintel/snowbridge/internal/infrastructure/clients/snowflake"
	apperrors "github.com/healthintel/snowbridge/pkg/errors"
)

// ImportAdapter implements ImportRepository. Source file lists and
// statistics are serialized to JSON here; the warehouse sees only
// opaque text blobs in flat scalar columns.
type ImportAdapter struct {
	session *snowflake.Session
	db      *goqu.Database
}

// NewImportAdapter creates a new import batch adapter.
func NewImportAdapter(session *snowflake.Session) repositories.ImportRepository {
	return &ImportAdapter{
		session: session,
		db:      goqu.New("default", session.DB()),
	}
}

// Create writes the batch row in its IN_PROGRESS state.
func (a *ImportAdapter) Create(ctx context.Context, batch *entities.ImportBatch) error {
	files, err := json.Marshal(batch.SourceFiles)
	if err != nil {
		return apperrors.NewSerializationError("could not serialize source file list", err)
	}

	record := goqu.Record{
		"IMPORT_ID":     batch.ID,
		"PATIENT_ID":    batch.PatientID,
		"SOURCE_FILES":  string(files),
		"IMPORT_STATUS": entities.ImportStatusInProgress,
	}

	query, args, err := a.db.Insert("IMPORTS").Rows(record).Prepared(true).ToSQL()
	if err != nil {
		return apperrors.NewExecutionError("failed to build import insert", err)
	}

	return a.session.Exec(ctx, query, args...)
}

// Finalize writes the statistics payload and marks the batch COMPLETED.
// After this the row is immutable.
func (a *ImportAdapter) Finalize(ctx context.Context, importID string, stats *entities.ImportStatistics) error {
	byCategory, err := json.Marshal(stats.RecordsByCategory)
	if err != nil {
		return apperrors.NewSerializationError("could not serialize category counts", err)
	}
	full, err := json.Marshal(stats)
	if err != nil {
		return apperrors.NewSerializationError("could not serialize import statistics", err)
	}

	query, args, err := a.db.Update("IMPORTS").
		Set(goqu.Record{
			"RECORDS_BY_CATEGORY": string(byCategory),
			"IMPORT_STATISTICS":   string(full),
			"TOTAL_RECORDS":       stats.TotalRecords,
			"IMPORT_STATUS":       entities.ImportStatusCompleted,
		}).
		Where(goqu.Ex{"IMPORT_ID": importID}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return apperrors.NewExecutionError("failed to build import finalize", err)
	}

	return a.session.Exec(ctx, query, args...)
}

// DecodeStatistics restores a statistics payload from its stored blob.
func DecodeStatistics(blob string) (*entities.ImportStatistics, error) {
	stats := &entities.ImportStatistics{}
	if err := json.NewDecoder(strings.NewReader(blob)).Decode(stats); err != nil {
		return nil, apperrors.NewSerializationError("could not decode import statistics", err)
	}
	return stats, nil
}
