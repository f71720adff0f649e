package healthjson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/healthintel/snowbridge/internal/infrastructure/auth"
	apperrors "github.com/healthintel/snowbridge/pkg/errors"
)

// File name patterns produced by the extraction step: one file per
// clinical category plus one consolidated clinical-data file.
var filePatterns = []string{
	"lab_results_*.json",
	"vitals_*.json",
	"medications_*.json",
	"clinical_data_consolidated.json",
}

// DiscoverFiles expands dir and returns the export files found in it,
// in pattern order.
func DiscoverFiles(dir string) ([]string, error) {
	expanded, err := auth.ExpandHome(dir)
	if err != nil {
		return nil, apperrors.NewDirectoryNotFoundError(fmt.Sprintf("could not resolve directory: %s", dir))
	}

	info, err := os.Stat(expanded)
	if err != nil || !info.IsDir() {
		return nil, apperrors.NewDirectoryNotFoundError(fmt.Sprintf("directory not found: %s", dir))
	}

	var files []string
	for _, pattern := range filePatterns {
		matches, err := filepath.Glob(filepath.Join(expanded, pattern))
		if err != nil {
			return nil, apperrors.NewDirectoryNotFoundError(fmt.Sprintf("invalid pattern %q", pattern))
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, apperrors.NewDirectoryNotFoundError(fmt.Sprintf("no health data JSON files found in directory: %s", dir))
	}

	return files, nil
}

// PatientHeader carries the identity fields extracted from a file's
// header section.
type PatientHeader struct {
	Identity   string
	DOB        *time.Time
	Age        *int
	ReportDate *time.Time
}

type headerFields struct {
	PatientName string          `json:"Patient_Name"`
	DateOfBirth string          `json:"Date_Of_Birth"`
	PatientAge  json.RawMessage `json:"Patient_Age"`
	ReportDate  string          `json:"Report_Date"`
}

// ExtractPatientHeader opens files in discovery order until identity,
// date of birth, and age are all populated. Identity and date of birth
// are mandatory; a missing age is derived from the date of birth later.
func ExtractPatientHeader(files []string) (*PatientHeader, error) {
	header := &PatientHeader{}

	for _, path := range files {
		h, err := readHeader(path)
		if err != nil {
			log.Warn().Err(err).Str("file", filepath.Base(path)).Msg("could not read header fields")
			continue
		}
		if h == nil {
			continue
		}

		if header.Identity == "" {
			header.Identity = h.Identity
		}
		if header.DOB == nil {
			header.DOB = h.DOB
		}
		if header.Age == nil {
			header.Age = h.Age
		}
		if header.ReportDate == nil {
			header.ReportDate = h.ReportDate
		}

		if header.Identity != "" && header.DOB != nil && header.Age != nil {
			break
		}
	}

	if header.Identity == "" || header.DOB == nil {
		return nil, apperrors.NewPatientInfoMissingError("could not extract patient information from header fields in JSON files")
	}

	return header, nil
}

func readHeader(path string) (*PatientHeader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		HeaderFields *headerFields `json:"header_fields"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.HeaderFields == nil {
		return nil, nil
	}

	h := &PatientHeader{
		Identity:   doc.HeaderFields.PatientName,
		DOB:        parseDate(doc.HeaderFields.DateOfBirth),
		ReportDate: parseDate(doc.HeaderFields.ReportDate),
	}

	// Age may arrive as a number or a quoted string.
	if len(doc.HeaderFields.PatientAge) > 0 {
		var asInt int
		var asString string
		if err := json.Unmarshal(doc.HeaderFields.PatientAge, &asInt); err == nil {
			h.Age = &asInt
		} else if err := json.Unmarshal(doc.HeaderFields.PatientAge, &asString); err == nil {
			if n, ok := parseInt(asString); ok {
				h.Age = &n
			}
		}
	}

	return h, nil
}
