package entities

// QualityMetric is one data-quality ratio in the import statistics.
type QualityMetric struct {
	Count      int     `json:"count"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// ImportStatistics summarizes one import batch for the caller and for
// the IMPORTS audit row.
type ImportStatistics struct {
	TotalRecords      int                      `json:"total_records"`
	RecordsByCategory map[string]int           `json:"records_by_category"`
	TimelineCoverage  map[int]int              `json:"timeline_coverage"`
	DataQuality       map[string]QualityMetric `json:"data_quality"`
	KeyInsights       []string                 `json:"key_insights"`
	SourceFiles       []string                 `json:"source_files"`
	SkippedEntries    int                      `json:"skipped_entries,omitempty"`
}

// QueryMetrics describes the shape of a query result set plus a
// keyword-derived health focus.
type QueryMetrics struct {
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	HasDateData    bool     `json:"has_date_data"`
	HasNumericData bool     `json:"has_numeric_data"`
	DataCategory   string   `json:"data_category"`
	HealthFocus    string   `json:"health_focus"`
	Message        string   `json:"message,omitempty"`
}
