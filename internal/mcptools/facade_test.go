package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthintel/snowbridge/internal/application/services"
	"github.com/healthintel/snowbridge/internal/domain/entities"
	apperrors "github.com/healthintel/snowbridge/pkg/errors"
)

type stubImporter struct {
	outcome *services.ImportOutcome
	err     error
	calls   int
}

func (s *stubImporter) Run(ctx context.Context, dir string) (*services.ImportOutcome, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

type stubQuerier struct {
	outcome *services.QueryOutcome
	err     error
	calls   int
}

func (s *stubQuerier) Execute(ctx context.Context, query string) (*services.QueryOutcome, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

func callToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "tool result must be text content")
	return text.Text
}

func TestFacade_HandleImport_Success(t *testing.T) {
	importer := &stubImporter{outcome: &services.ImportOutcome{
		PatientID:       "patient-1",
		PatientIdentity: "Jane Smith",
		PatientDOB:      "1985-04-12",
		ImportID:        "import-1",
		Statistics: &entities.ImportStatistics{
			TotalRecords:      3,
			RecordsByCategory: map[string]int{"Lab Results": 3},
		},
	}}
	facade := NewFacade(importer, &stubQuerier{})

	result, err := facade.handleImport(context.Background(),
		callToolRequest("import_health_records", map[string]interface{}{"file_directory": "/tmp/export"}))
	require.NoError(t, err)

	var payload ImportResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))

	assert.True(t, payload.Success)
	assert.Equal(t, "Jane Smith", payload.PatientIdentity)
	assert.Equal(t, "1985-04-12", payload.PatientDOB)
	assert.Equal(t, "import-1", payload.ImportID)
	assert.Equal(t, 3, payload.TotalRecords)
	assert.Contains(t, payload.Message, "Jane Smith")
	assert.Empty(t, payload.Error)
	assert.Empty(t, payload.ErrorKind)
}

func TestFacade_HandleImport_FailureBecomesResult(t *testing.T) {
	importer := &stubImporter{err: apperrors.NewDirectoryNotFoundError("directory not found: /tmp/export")}
	facade := NewFacade(importer, &stubQuerier{})

	result, err := facade.handleImport(context.Background(),
		callToolRequest("import_health_records", map[string]interface{}{"file_directory": "/tmp/export"}))
	require.NoError(t, err, "failures surface as result payloads, never as handler errors")

	var payload ImportResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))

	assert.False(t, payload.Success)
	assert.Equal(t, apperrors.ErrorTypeDirectoryNotFound, payload.ErrorKind)
	assert.Contains(t, payload.Error, "directory not found")
}

func TestFacade_HandleImport_MissingArgument(t *testing.T) {
	importer := &stubImporter{}
	facade := NewFacade(importer, &stubQuerier{})

	result, err := facade.handleImport(context.Background(),
		callToolRequest("import_health_records", map[string]interface{}{}))
	require.NoError(t, err)

	var payload ImportResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	assert.False(t, payload.Success)
	assert.Equal(t, apperrors.ErrorTypeInvalidArgument, payload.ErrorKind)
	assert.NotEmpty(t, payload.Error)
	assert.Zero(t, importer.calls, "import must not run without a directory")
}

func TestFacade_HandleQuery_MissingArgument(t *testing.T) {
	querier := &stubQuerier{}
	facade := NewFacade(&stubImporter{}, querier)

	result, err := facade.handleQuery(context.Background(),
		callToolRequest("execute_health_query", map[string]interface{}{}))
	require.NoError(t, err)

	var payload QueryResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	assert.False(t, payload.QuerySuccessful)
	assert.Equal(t, apperrors.ErrorTypeInvalidArgument, payload.ErrorKind)
	assert.NotEmpty(t, payload.Error)
	assert.NotNil(t, payload.Warnings)
	assert.Zero(t, querier.calls, "query must not run without a question")
}

func TestFacade_HandleQuery_Success(t *testing.T) {
	querier := &stubQuerier{outcome: &services.QueryOutcome{
		Query:          "show my cholesterol trend",
		Interpretation: "Cholesterol over time",
		SQL:            "SELECT 1",
		Columns:        []string{"VALUE_NUMERIC"},
		Rows:           []map[string]interface{}{{"VALUE_NUMERIC": 185.5}},
		Metrics:        &entities.QueryMetrics{RowCount: 1, DataCategory: "lab_results", HealthFocus: "cardiovascular"},
	}}
	facade := NewFacade(&stubImporter{}, querier)

	result, err := facade.handleQuery(context.Background(),
		callToolRequest("execute_health_query", map[string]interface{}{"query": "show my cholesterol trend"}))
	require.NoError(t, err)

	var payload QueryResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))

	assert.True(t, payload.QuerySuccessful)
	assert.Equal(t, "SELECT 1", payload.SQL)
	assert.Equal(t, 1, payload.ResultCount)
	require.Len(t, payload.Results, 1)
	assert.Equal(t, 185.5, payload.Results[0]["VALUE_NUMERIC"])
	assert.NotNil(t, payload.Warnings, "warnings must serialize as an empty list, not null")
	assert.Empty(t, payload.Warnings)
	require.NotNil(t, payload.DataMetrics)
	assert.Equal(t, "lab_results", payload.DataMetrics.DataCategory)
}

func TestFacade_HandleQuery_EmptyResultIsNotNull(t *testing.T) {
	querier := &stubQuerier{outcome: &services.QueryOutcome{
		Query:   "how many records",
		SQL:     "SELECT COUNT(*) FROM HEALTH_RECORDS WHERE 1=0",
		Columns: []string{"TOTAL"},
		Metrics: &entities.QueryMetrics{Message: "No data to analyze"},
	}}
	facade := NewFacade(&stubImporter{}, querier)

	result, err := facade.handleQuery(context.Background(),
		callToolRequest("execute_health_query", map[string]interface{}{"query": "how many records"}))
	require.NoError(t, err)

	text := resultText(t, result)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(text), &raw))
	assert.Equal(t, "[]", string(raw["results"]), "empty result set must serialize as [], not null")

	var payload QueryResult
	require.NoError(t, json.Unmarshal([]byte(text), &payload))
	assert.True(t, payload.QuerySuccessful)
	assert.Zero(t, payload.ResultCount)
}

func TestFacade_HandleQuery_ErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind apperrors.ErrorType
	}{
		{
			name: "Translation failure",
			err:  apperrors.NewQueryTranslationError("analyst request failed with status 401", 401, nil),
			kind: apperrors.ErrorTypeQueryTranslation,
		},
		{
			name: "No SQL generated",
			err:  apperrors.NewNoSQLGeneratedError("analyst response contained no SQL statement"),
			kind: apperrors.ErrorTypeNoSQLGenerated,
		},
		{
			name: "Execution failure",
			err:  apperrors.NewExecutionError("query failed", nil),
			kind: apperrors.ErrorTypeExecution,
		},
		{
			name: "Untyped error defaults to execution",
			err:  errors.New("boom"),
			kind: apperrors.ErrorTypeExecution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade := NewFacade(&stubImporter{}, &stubQuerier{err: tt.err})

			result, err := facade.handleQuery(context.Background(),
				callToolRequest("execute_health_query", map[string]interface{}{"query": "anything"}))
			require.NoError(t, err)

			var payload QueryResult
			require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
			assert.False(t, payload.QuerySuccessful)
			assert.Equal(t, tt.kind, payload.ErrorKind)
			assert.Equal(t, "anything", payload.Query)
			assert.NotNil(t, payload.Warnings)
		})
	}
}
