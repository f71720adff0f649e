package healthjson

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/healthintel/snowbridge/internal/domain/entities"
)

// FileRecords is the outcome of mapping one export file: the clinical
// records it produced, the metadata sections it skipped, and the count
// of malformed entries that were dropped rather than aborting the run.
type FileRecords struct {
	Records          []*entities.HealthRecord
	MetadataSections []string
	SkippedEntries   int
}

// MapFile parses one export file and maps every clinical entry onto the
// unified record shape. Unknown sections are routed to the metadata
// branch and reported, never imported.
func MapFile(path, patientID, importID string) (*FileRecords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, err
	}

	sourceFile := filepath.Base(path)
	out := &FileRecords{}

	for section, raw := range sections {
		category, clinical := ClassifySection(section)
		if !clinical {
			out.MetadataSections = append(out.MetadataSections, section)
			continue
		}

		records, skipped := mapSection(category, raw, patientID, importID, sourceFile)
		out.Records = append(out.Records, records...)
		out.SkippedEntries += skipped
		if skipped > 0 {
			log.Warn().
				Str("file", sourceFile).
				Str("section", section).
				Int("skipped", skipped).
				Msg("dropped malformed entries")
		}
	}

	return out, nil
}

func mapSection(category entities.RecordCategory, raw json.RawMessage, patientID, importID, sourceFile string) ([]*entities.HealthRecord, int) {
	if category == entities.CategoryLab {
		return mapLabSessions(raw, patientID, importID, sourceFile)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, 1
	}

	var records []*entities.HealthRecord
	skipped := 0
	for _, entry := range entries {
		record := mapEntry(category, entry, patientID, importID, sourceFile)
		if record == nil {
			skipped++
			continue
		}
		records = append(records, record)
	}
	return records, skipped
}

type labSession struct {
	TestDate string    `json:"Test_Date"`
	Provider string    `json:"Provider"`
	Tests    []labTest `json:"Tests"`
}

type labTest struct {
	TestName       string          `json:"Test_Name"`
	TestValue      json.RawMessage `json:"Test_Value"`
	TestUnit       string          `json:"Test_Unit"`
	ReferenceRange string          `json:"Reference_Range"`
	Flag           string          `json:"Flag"`
	TestCategory   string          `json:"Test_Category"`
}

// Lab results nest one level deeper than the other sections: a session
// carries the date and provider, its tests carry the measurements.
func mapLabSessions(raw json.RawMessage, patientID, importID, sourceFile string) ([]*entities.HealthRecord, int) {
	var sessions []json.RawMessage
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return nil, 1
	}

	var records []*entities.HealthRecord
	skipped := 0
	for _, rawSession := range sessions {
		var session labSession
		if err := json.Unmarshal(rawSession, &session); err != nil {
			skipped++
			continue
		}

		testDate := parseDate(session.TestDate)
		provider := defaultProvider(session.Provider)

		for _, test := range session.Tests {
			valueText := rawToText(test.TestValue)
			low, high := parseReferenceRange(test.ReferenceRange)

			record := &entities.HealthRecord{
				ID:                   uuid.NewString(),
				PatientID:            patientID,
				ImportID:             importID,
				Category:             entities.CategoryLab,
				EventDate:            testDate,
				Provider:             provider,
				Description:          test.TestName,
				ValueText:            valueText,
				ValueNumeric:         parseNumeric(valueText),
				MeasurementDimension: test.TestUnit,
				ReferenceRange:       test.ReferenceRange,
				RefRangeLow:          low,
				RefRangeHigh:         high,
				Flag:                 test.Flag,
				TestCategory:         test.TestCategory,
				SourceFile:           sourceFile,
			}
			records = append(records, record)
		}
	}
	return records, skipped
}

func mapEntry(category entities.RecordCategory, raw json.RawMessage, patientID, importID, sourceFile string) *entities.HealthRecord {
	record := &entities.HealthRecord{
		ID:         uuid.NewString(),
		PatientID:  patientID,
		ImportID:   importID,
		Category:   category,
		SourceFile: sourceFile,
	}

	switch category {
	case entities.CategoryMedication:
		var med struct {
			PrescriptionDate string `json:"Prescription_Date"`
			Provider         string `json:"Provider"`
			MedicationName   string `json:"Medication_Name"`
			Dosage           string `json:"Dosage"`
			Form             string `json:"Form"`
			ForCondition     string `json:"For_Condition"`
			Frequency        string `json:"Frequency"`
			Status           string `json:"Status"`
		}
		if err := json.Unmarshal(raw, &med); err != nil || med.MedicationName == "" {
			return nil
		}
		record.EventDate = parseDate(med.PrescriptionDate)
		record.Provider = defaultProvider(med.Provider)
		record.Description = med.MedicationName
		record.Dosage = med.Dosage
		record.Form = med.Form
		record.ForCondition = med.ForCondition
		record.Frequency = med.Frequency
		record.MedicationStatus = med.Status
		if record.MedicationStatus == "" {
			record.MedicationStatus = "PRESCRIBED"
		}

	case entities.CategoryVital:
		var vital struct {
			MeasurementDate string          `json:"Measurement_Date"`
			Provider        string          `json:"Provider"`
			VitalKind       string          `json:"Vital_Type"`
			VitalValue      json.RawMessage `json:"Vital_Value"`
			VitalUnit       string          `json:"Vital_Unit"`
		}
		if err := json.Unmarshal(raw, &vital); err != nil || vital.VitalKind == "" {
			return nil
		}
		record.EventDate = parseDate(vital.MeasurementDate)
		record.Provider = defaultProvider(vital.Provider)
		record.Description = vital.VitalKind
		record.VitalCategory = vital.VitalKind
		record.MeasurementDimension = vital.VitalUnit
		record.ValueText = rawToText(vital.VitalValue)
		record.ValueNumeric = parseNumeric(record.ValueText)

	case entities.CategoryCondition:
		var condition struct {
			DiagnosisDate string `json:"Diagnosis_Date"`
			Provider      string `json:"Provider"`
			ConditionName string `json:"Condition_Name"`
			Status        string `json:"Status"`
		}
		if err := json.Unmarshal(raw, &condition); err != nil || condition.ConditionName == "" {
			return nil
		}
		record.EventDate = parseDate(condition.DiagnosisDate)
		record.Provider = defaultProvider(condition.Provider)
		record.Description = condition.ConditionName
		record.ConditionStatus = condition.Status

	case entities.CategoryProcedure:
		var procedure struct {
			ProcedureDate string `json:"Procedure_Date"`
			Provider      string `json:"Provider"`
			ProcedureName string `json:"Procedure_Name"`
			ProcedureKind string `json:"Procedure_Type"`
		}
		if err := json.Unmarshal(raw, &procedure); err != nil || procedure.ProcedureName == "" {
			return nil
		}
		record.EventDate = parseDate(procedure.ProcedureDate)
		record.Provider = defaultProvider(procedure.Provider)
		record.Description = procedure.ProcedureName
		record.ProcedureCategory = procedure.ProcedureKind

	case entities.CategoryAllergy:
		var allergy struct {
			RecordDate string `json:"Record_Date"`
			Provider   string `json:"Provider"`
			Allergy    string `json:"Allergy"`
		}
		if err := json.Unmarshal(raw, &allergy); err != nil || allergy.Allergy == "" {
			return nil
		}
		record.EventDate = parseDate(allergy.RecordDate)
		record.Provider = defaultProvider(allergy.Provider)
		record.Description = allergy.Allergy
		record.AllergyCategory = string(entities.CategoryAllergy)

	case entities.CategoryImmunization:
		var immunization struct {
			ImmunizationDate string `json:"Immunization_Date"`
			Provider         string `json:"Provider"`
			VaccineName      string `json:"Vaccine_Name"`
			VaccineKind      string `json:"Vaccine_Type"`
		}
		if err := json.Unmarshal(raw, &immunization); err != nil || immunization.VaccineName == "" {
			return nil
		}
		record.EventDate = parseDate(immunization.ImmunizationDate)
		record.Provider = defaultProvider(immunization.Provider)
		record.Description = immunization.VaccineName
		record.VaccineCategory = immunization.VaccineKind

	default:
		return nil
	}

	return record
}

func defaultProvider(provider string) string {
	if provider == "" {
		return "Unknown Provider"
	}
	return provider
}

// rawToText renders a JSON scalar (string or number) as text without
// inventing values for null or absent fields.
func rawToText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String()
	}
	return ""
}

// parseNumeric attempts a float parse of a value's text form. Absence
// or non-numeric text yields nil, never zero.
func parseNumeric(text string) *float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	return &f
}

var rangePattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)\s*$`)

// parseReferenceRange extracts low/high bounds from "low - high" style
// text. Qualitative ranges ("Negative", "< 200") keep their raw text
// and produce no bounds.
func parseReferenceRange(text string) (*float64, *float64) {
	match := rangePattern.FindStringSubmatch(text)
	if match == nil {
		return nil, nil
	}
	low, err1 := strconv.ParseFloat(match[1], 64)
	high, err2 := strconv.ParseFloat(match[2], 64)
	if err1 != nil || err2 != nil {
		return nil, nil
	}
	return &low, &high
}

// parseDate coerces the export's date formats to a date value:
// YYYY-MM-DD, MM/DD/YYYY, or ISO timestamps with an optional trailing Z.
// Unparseable dates yield nil and a warning, never a fabricated date.
func parseDate(text string) *time.Time {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	layouts := []string{"2006-01-02", "01/02/2006", time.RFC3339, "2006-01-02T15:04:05"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return &t
		}
	}

	log.Warn().Str("value", trimmed).Msg("could not parse date")
	return nil
}

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
