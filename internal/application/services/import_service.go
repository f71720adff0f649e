package services

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/healthintel/snowbridge/internal/adapters/database"
	"github.com/healthintel/snowbridge/internal/adapters/healthjson"
	"github.com/healthintel/snowbridge/internal/domain/entities"
	"github.com/healthintel/snowbridge/internal/domain/repositories"
	"github.com/healthintel/snowbridge/internal/infrastructure/clients/snowflake"
)

// WarehouseConnector opens one session per tool call.
type WarehouseConnector interface {
	Connect(ctx context.Context) (*snowflake.Session, error)
}

// Repositories bundles the per-session warehouse adapters.
type Repositories struct {
	Patients repositories.PatientRepository
	Imports  repositories.ImportRepository
	Records  repositories.HealthRecordRepository
}

// RepositoryFactory builds adapters bound to one session.
type RepositoryFactory func(session *snowflake.Session) Repositories

func defaultRepositories(session *snowflake.Session) Repositories {
	return Repositories{
		Patients: database.NewPatientAdapter(session),
		Imports:  database.NewImportAdapter(session),
		Records:  database.NewHealthRecordAdapter(session),
	}
}

// ImportOutcome is the successful result of one import run.
type ImportOutcome struct {
	PatientID       string
	PatientIdentity string
	PatientDOB      string
	ImportID        string
	Statistics      *entities.ImportStatistics
}

// ImportService bulk-loads a directory of exported health JSON into the
// warehouse inside one tracked import batch. Imports are additive by
// design: re-running on the same directory creates a new batch and new
// rows, never a merge.
type ImportService struct {
	warehouse WarehouseConnector
	repos     RepositoryFactory
	now       func() time.Time
}

// NewImportService creates an import service over a warehouse connector.
func NewImportService(warehouse WarehouseConnector) *ImportService {
	return &ImportService{
		warehouse: warehouse,
		repos:     defaultRepositories,
		now:       time.Now,
	}
}

// Run discovers, classifies, and loads every export file under dir.
// A malformed entry is counted and skipped; only a missing directory or
// missing patient header aborts the run.
func (s *ImportService) Run(ctx context.Context, dir string) (*ImportOutcome, error) {
	files, err := healthjson.DiscoverFiles(dir)
	if err != nil {
		return nil, err
	}
	log.Info().Int("files", len(files)).Str("directory", dir).Msg("starting health data import")

	header, err := healthjson.ExtractPatientHeader(files)
	if err != nil {
		return nil, err
	}

	session, err := s.warehouse.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	repos := s.repos(session)

	patient, err := s.ensurePatient(ctx, repos.Patients, header)
	if err != nil {
		return nil, err
	}

	sourceFiles := make([]string, len(files))
	for i, f := range files {
		sourceFiles[i] = filepath.Base(f)
	}

	batch := &entities.ImportBatch{
		ID:          uuid.NewString(),
		PatientID:   patient.ID,
		SourceFiles: sourceFiles,
	}
	if err := repos.Imports.Create(ctx, batch); err != nil {
		return nil, err
	}

	var records []*entities.HealthRecord
	skipped := 0
	for _, path := range files {
		mapped, err := healthjson.MapFile(path, patient.ID, batch.ID)
		if err != nil {
			// Partial-success policy: one unreadable file does not
			// abort the batch.
			log.Error().Err(err).Str("file", filepath.Base(path)).Msg("could not process file")
			skipped++
			continue
		}
		for _, section := range mapped.MetadataSections {
			log.Debug().Str("file", filepath.Base(path)).Str("section", section).Msg("skipping metadata section")
		}
		records = append(records, mapped.Records...)
		skipped += mapped.SkippedEntries
	}

	if len(records) > 0 {
		if err := repos.Records.BulkInsert(ctx, records); err != nil {
			return nil, err
		}
	}

	stats := ComputeImportStatistics(records, sourceFiles, skipped)
	if err := repos.Imports.Finalize(ctx, batch.ID, stats); err != nil {
		return nil, err
	}

	log.Info().
		Int("records", len(records)).
		Str("patient", patient.Identity).
		Str("import_id", batch.ID).
		Msg("import completed")

	outcome := &ImportOutcome{
		PatientID:       patient.ID,
		PatientIdentity: patient.Identity,
		ImportID:        batch.ID,
		Statistics:      stats,
	}
	if patient.DOB != nil {
		outcome.PatientDOB = patient.DOB.Format("2006-01-02")
	}
	return outcome, nil
}

// ensurePatient looks the patient up by identity and creates the row on
// first sight. Patients are never mutated after creation.
func (s *ImportService) ensurePatient(ctx context.Context, patients repositories.PatientRepository, header *healthjson.PatientHeader) (*entities.Patient, error) {
	existing, err := patients.FindByIdentity(ctx, header.Identity)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	patient := &entities.Patient{
		ID:       uuid.NewString(),
		Identity: header.Identity,
		DOB:      header.DOB,
		Age:      header.Age,
	}
	if patient.Age == nil {
		patient.Age = patient.DerivedAge(s.now())
	}
	if err := patients.Create(ctx, patient); err != nil {
		return nil, err
	}
	log.Info().Str("patient_id", patient.ID).Msg("created patient record")
	return patient, nil
}
