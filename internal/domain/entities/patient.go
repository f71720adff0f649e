package entities

import "time"

// Patient is created once per identity and never mutated afterwards.
// Age is taken from the export header when present, otherwise derived
// from the date of birth at import time.
type Patient struct {
	ID       string
	Identity string
	DOB      *time.Time
	Age      *int
}

// DerivedAge computes the age from DOB as of now when the header did
// not carry one. Returns nil when DOB is unknown.
func (p *Patient) DerivedAge(now time.Time) *int {
	if p.Age != nil {
		return p.Age
	}
	if p.DOB == nil {
		return nil
	}
	age := now.Year() - p.DOB.Year()
	if now.YearDay() < p.DOB.YearDay() {
		age--
	}
	return &age
}

// ImportBatch is the audit record of one bulk-load operation. The JSON
// payloads are opaque text blobs to the warehouse; this connector owns
// their serialization.
type ImportBatch struct {
	ID          string
	PatientID   string
	SourceFiles []string
	Status      string
	CreatedAt   time.Time
}

// Import batch lifecycle states.
const (
	ImportStatusInProgress = "IN_PROGRESS"
	ImportStatusCompleted  = "COMPLETED"
)
