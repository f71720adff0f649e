package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/healthintel/snowbridge/internal/domain/entities"
)

// Display labels for per-category counts in statistics payloads.
var categoryLabels = map[entities.RecordCategory]string{
	entities.CategoryLab:          "Lab Results",
	entities.CategoryMedication:   "Medications",
	entities.CategoryVital:        "Vitals",
	entities.CategoryAllergy:      "Allergies",
	entities.CategoryCondition:    "Conditions",
	entities.CategoryProcedure:    "Procedures",
	entities.CategoryImmunization: "Immunizations",
}

// ComputeImportStatistics summarizes a set of imported records. It is a
// pure function over its inputs: no clock, no I/O, no mutation.
func ComputeImportStatistics(records []*entities.HealthRecord, sourceFiles []string, skippedEntries int) *entities.ImportStatistics {
	stats := &entities.ImportStatistics{
		TotalRecords:      len(records),
		RecordsByCategory: map[string]int{},
		TimelineCoverage:  map[int]int{},
		DataQuality:       map[string]entities.QualityMetric{},
		SourceFiles:       sourceFiles,
		SkippedEntries:    skippedEntries,
	}

	var labs, medications []*entities.HealthRecord
	labsWithRanges := 0
	medicationsWithStatus := 0
	recordsWithDates := 0

	for _, r := range records {
		stats.RecordsByCategory[categoryLabels[r.Category]]++

		if r.EventDate != nil {
			recordsWithDates++
			stats.TimelineCoverage[r.EventDate.Year()]++
		}

		switch r.Category {
		case entities.CategoryLab:
			labs = append(labs, r)
			if r.ReferenceRange != "" {
				labsWithRanges++
			}
		case entities.CategoryMedication:
			medications = append(medications, r)
			if r.MedicationStatus != "" {
				medicationsWithStatus++
			}
		}
	}

	stats.DataQuality["lab_results_with_ranges"] = qualityMetric(labsWithRanges, len(labs))
	stats.DataQuality["medications_with_status"] = qualityMetric(medicationsWithStatus, len(medications))
	stats.DataQuality["records_with_dates"] = qualityMetric(recordsWithDates, len(records))

	stats.KeyInsights = keyInsights(labs, medications, stats.TimelineCoverage)
	return stats
}

func qualityMetric(count, total int) entities.QualityMetric {
	metric := entities.QualityMetric{Count: count, Total: total}
	if total > 0 {
		metric.Percentage = math.Round(float64(count)/float64(total)*1000) / 10
	}
	return metric
}

func keyInsights(labs, medications []*entities.HealthRecord, timeline map[int]int) []string {
	var insights []string

	var mostRecentLab string
	for _, lab := range labs {
		if lab.EventDate == nil {
			continue
		}
		d := lab.EventDate.Format("2006-01-02")
		if d > mostRecentLab {
			mostRecentLab = d
		}
	}
	if mostRecentLab != "" {
		insights = append(insights, fmt.Sprintf("Most recent lab test: %s", mostRecentLab))
	}

	activeMedications := 0
	for _, med := range medications {
		if strings.EqualFold(med.MedicationStatus, "ACTIVE") {
			activeMedications++
		}
	}
	insights = append(insights, fmt.Sprintf("Currently active medications: %d", activeMedications))

	if top := topYears(timeline, 2); len(top) > 0 {
		insights = append(insights, fmt.Sprintf("Years with most complete data: %s", strings.Join(top, ", ")))
	}

	distinctTests := map[string]struct{}{}
	for _, lab := range labs {
		if lab.Description != "" {
			distinctTests[lab.Description] = struct{}{}
		}
	}
	insights = append(insights, fmt.Sprintf("Total unique lab tests tracked: %d", len(distinctTests)))

	return insights
}

// topYears returns up to n years ordered by record count, most complete
// first; ties break toward the more recent year so output is stable.
func topYears(timeline map[int]int, n int) []string {
	years := make([]int, 0, len(timeline))
	for year := range timeline {
		years = append(years, year)
	}
	sort.Slice(years, func(i, j int) bool {
		if timeline[years[i]] != timeline[years[j]] {
			return timeline[years[i]] > timeline[years[j]]
		}
		return years[i] > years[j]
	})

	if len(years) > n {
		years = years[:n]
	}
	out := make([]string, len(years))
	for i, year := range years {
		out[i] = fmt.Sprintf("%d", year)
	}
	return out
}

// ComputeQueryMetrics describes a query result set and tags it with a
// keyword-derived health focus.
func ComputeQueryMetrics(query string, columns []string, rows []map[string]interface{}) *entities.QueryMetrics {
	metrics := &entities.QueryMetrics{
		RowCount: len(rows),
		Columns:  columns,
	}
	if len(rows) == 0 {
		metrics.Message = "No data to analyze"
	}

	for _, col := range columns {
		if strings.Contains(strings.ToLower(col), "date") {
			metrics.HasDateData = true
			break
		}
	}
	if len(rows) > 0 {
		for _, v := range rows[0] {
			switch v.(type) {
			case float64, float32, int, int32, int64:
				metrics.HasNumericData = true
			}
		}
	}

	metrics.DataCategory, metrics.HealthFocus = classifyQuery(query)
	return metrics
}

func classifyQuery(query string) (string, string) {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "cholesterol"):
		return "lab_results", "cardiovascular"
	case strings.Contains(q, "medication"):
		return "medications", "treatment"
	case strings.Contains(q, "blood pressure"):
		return "vitals", "cardiovascular"
	case strings.Contains(q, "hba1c"), strings.Contains(q, "glucose"):
		return "lab_results", "diabetes"
	default:
		return "general", "general"
	}
}
