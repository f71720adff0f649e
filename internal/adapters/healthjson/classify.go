package healthjson

import "github.com/healthintel/snowbridge/internal/domain/entities"

// clinicalSections is the allow-list of top-level section names that
// hold clinical events. Everything else in an export file — header
// fields, provider directories, extraction notes — is metadata and must
// never become a HealthRecord row.
var clinicalSections = map[string]entities.RecordCategory{
	"Lab_Results":   entities.CategoryLab,
	"Medications":   entities.CategoryMedication,
	"Vitals":        entities.CategoryVital,
	"Conditions":    entities.CategoryCondition,
	"Procedures":    entities.CategoryProcedure,
	"Allergies":     entities.CategoryAllergy,
	"Immunizations": entities.CategoryImmunization,
}

// ClassifySection routes a top-level section name: clinical sections
// return their category, everything else reports metadata. The explicit
// false branch is load-bearing; importing metadata as records would
// corrupt downstream analytics.
func ClassifySection(section string) (entities.RecordCategory, bool) {
	category, ok := clinicalSections[section]
	return category, ok
}
