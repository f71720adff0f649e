package entities

import "time"

// RecordCategory discriminates the seven clinical event kinds stored in
// HEALTH_RECORDS. Anything outside this enumeration is metadata and is
// never persisted as a record.
type RecordCategory string

const (
	CategoryLab          RecordCategory = "LAB"
	CategoryMedication   RecordCategory = "MEDICATION"
	CategoryVital        RecordCategory = "VITAL"
	CategoryAllergy      RecordCategory = "ALLERGY"
	CategoryCondition    RecordCategory = "CONDITION"
	CategoryProcedure    RecordCategory = "PROCEDURE"
	CategoryImmunization RecordCategory = "IMMUNIZATION"
)

// AllCategories lists every clinical category in a stable order.
func AllCategories() []RecordCategory {
	return []RecordCategory{
		CategoryLab,
		CategoryMedication,
		CategoryVital,
		CategoryAllergy,
		CategoryCondition,
		CategoryProcedure,
		CategoryImmunization,
	}
}

// HealthRecord is the unified representation of one clinical event.
// Numeric and date fields are nil when absent in the source; they are
// never fabricated.
type HealthRecord struct {
	ID        string
	PatientID string
	ImportID  string

	Category    RecordCategory
	EventDate   *time.Time
	Provider    string
	Description string

	ValueText            string
	ValueNumeric         *float64
	MeasurementDimension string
	ReferenceRange       string
	RefRangeLow          *float64
	RefRangeHigh         *float64
	Flag                 string

	// Category-specific extras.
	TestCategory      string
	Dosage            string
	Form              string
	ForCondition      string
	Frequency         string
	MedicationStatus  string
	VitalCategory     string
	ConditionStatus   string
	VaccineCategory   string
	ProcedureCategory string
	AllergyCategory   string

	SourceFile string
}
