package mcptools

import (
	"github.com/healthintel/snowbridge/internal/domain/entities"
	apperrors "github.com/healthintel/snowbridge/pkg/errors"
)

// ImportResult is the structured payload returned by the
// import_health_records tool on every path, success or failure.
type ImportResult struct {
	Success         bool                       `json:"success"`
	Message         string                     `json:"message,omitempty"`
	PatientIdentity string                     `json:"patient_identity,omitempty"`
	PatientDOB      string                     `json:"patient_dob,omitempty"`
	PatientID       string                     `json:"patient_id,omitempty"`
	ImportID        string                     `json:"import_id,omitempty"`
	TotalRecords    int                        `json:"total_records"`
	Statistics      *entities.ImportStatistics `json:"statistics,omitempty"`
	ErrorKind       apperrors.ErrorType        `json:"error_kind,omitempty"`
	Error           string                     `json:"error,omitempty"`
}

// QueryResult is the structured payload returned by the
// execute_health_query tool on every path.
type QueryResult struct {
	Query           string                   `json:"query"`
	Interpretation  string                   `json:"interpretation,omitempty"`
	SQL             string                   `json:"sql,omitempty"`
	Results         []map[string]interface{} `json:"results"`
	ResultCount     int                      `json:"result_count"`
	DataMetrics     *entities.QueryMetrics   `json:"data_metrics,omitempty"`
	QuerySuccessful bool                     `json:"query_successful"`
	Warnings        []string                 `json:"warnings"`
	ErrorKind       apperrors.ErrorType      `json:"error_kind,omitempty"`
	Error           string                   `json:"error,omitempty"`
}
