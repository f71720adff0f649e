package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/healthintel/snowbridge/internal/domain/entities"
)

func labRecord(i int) *entities.HealthRecord {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	value := 185.5
	return &entities.HealthRecord{
		ID:             uuid.NewString(),
		PatientID:      "patient-1",
		ImportID:       "import-1",
		Category:       entities.CategoryLab,
		EventDate:      &date,
		Provider:       "Quest Diagnostics",
		Description:    fmt.Sprintf("Test %d", i),
		ValueText:      "185.5",
		ValueNumeric:   &value,
		ReferenceRange: "125 - 200",
		SourceFile:     "lab_results_2024.json",
	}
}

func TestHealthRecordAdapter_BulkInsert(t *testing.T) {
	session, mock := setupMockSession(t)
	defer session.Close()
	adapter := NewHealthRecordAdapter(session)

	records := []*entities.HealthRecord{labRecord(1), labRecord(2)}

	mock.ExpectExec(`INSERT INTO "HEALTH_RECORDS"`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := adapter.BulkInsert(context.Background(), records); err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHealthRecordAdapter_BulkInsert_Chunks(t *testing.T) {
	session, mock := setupMockSession(t)
	defer session.Close()
	adapter := NewHealthRecordAdapter(session)

	// 250 records: two full chunks and one remainder.
	records := make([]*entities.HealthRecord, 250)
	for i := range records {
		records[i] = labRecord(i)
	}

	for _, size := range []int64{100, 100, 50} {
		mock.ExpectExec(`INSERT INTO "HEALTH_RECORDS"`).
			WillReturnResult(sqlmock.NewResult(0, size))
	}

	if err := adapter.BulkInsert(context.Background(), records); err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expected three chunked inserts: %v", err)
	}
}

func TestHealthRecordAdapter_BulkInsert_Empty(t *testing.T) {
	session, mock := setupMockSession(t)
	defer session.Close()
	adapter := NewHealthRecordAdapter(session)

	// No expectations registered: zero records must issue zero statements.
	if err := adapter.BulkInsert(context.Background(), nil); err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected statements: %v", err)
	}
}

func TestNullString(t *testing.T) {
	if got := nullString(""); got.Valid {
		t.Error("empty string must map to NULL")
	}
	if got := nullString("x"); !got.Valid || got.String != "x" {
		t.Errorf("nullString(x) = %+v", got)
	}
}
