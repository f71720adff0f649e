package repositories

import (
	"context"

	"github.com/healthintel/snowbridge/internal/domain/entities"
)

// PatientRepository persists patient identity rows.
type PatientRepository interface {
	// FindByIdentity returns nil without error when no patient matches.
	FindByIdentity(ctx context.Context, identity string) (*entities.Patient, error)
	Create(ctx context.Context, patient *entities.Patient) error
}

// ImportRepository tracks import batches. A batch is created IN_PROGRESS
// before any record insert and finalized exactly once with its
// statistics payload; it is never touched again.
type ImportRepository interface {
	Create(ctx context.Context, batch *entities.ImportBatch) error
	Finalize(ctx context.Context, importID string, stats *entities.ImportStatistics) error
}

// HealthRecordRepository bulk-loads clinical event rows.
type HealthRecordRepository interface {
	BulkInsert(ctx context.Context, records []*entities.HealthRecord) error
}
