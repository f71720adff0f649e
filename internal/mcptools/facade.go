package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/healthintel/snowbridge/internal/application/services"
	apperrors "github.com/healthintel/snowbridge/pkg/errors"
)

// Importer runs the bulk-load path.
type Importer interface {
	Run(ctx context.Context, dir string) (*services.ImportOutcome, error)
}

// Querier runs the translate-then-execute path.
type Querier interface {
	Execute(ctx context.Context, query string) (*services.QueryOutcome, error)
}

// Facade exposes the two public operations to the agent platform. It
// never lets an error escape its boundary: every internal failure is
// translated into a tagged result object.
type Facade struct {
	imports Importer
	queries Querier
	tracer  trace.Tracer
}

// NewFacade creates the tool facade.
func NewFacade(imports Importer, queries Querier) *Facade {
	return &Facade{
		imports: imports,
		queries: queries,
		tracer:  otel.Tracer("github.com/healthintel/snowbridge/mcptools"),
	}
}

// Register adds both tools to the MCP server.
func (f *Facade) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("import_health_records",
		mcp.WithDescription("Import health data from a directory of extracted JSON files into the warehouse and return detailed statistics"),
		mcp.WithString("file_directory",
			mcp.Required(),
			mcp.Description("Directory path containing extracted JSON health data files"),
		),
	), f.handleImport)

	s.AddTool(mcp.NewTool("execute_health_query",
		mcp.WithDescription("Answer a natural-language question about imported health data: translates it to SQL via Cortex Analyst and executes it"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language question about the health data"),
		),
	), f.handleQuery)
}

func (f *Facade) handleImport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := f.tracer.Start(ctx, "import_health_records")
	defer span.End()

	dir, err := request.RequireString("file_directory")
	if err != nil {
		argErr := apperrors.NewInvalidArgumentError("file_directory is required", err)
		return jsonResult(&ImportResult{
			Success:   false,
			ErrorKind: argErr.Type,
			Error:     argErr.Error(),
		})
	}

	outcome, err := f.imports.Run(ctx, dir)
	if err != nil {
		log.Error().Err(err).Str("directory", dir).Msg("import failed")
		return jsonResult(&ImportResult{
			Success:   false,
			ErrorKind: apperrors.Kind(err),
			Error:     err.Error(),
		})
	}

	return jsonResult(&ImportResult{
		Success:         true,
		Message:         fmt.Sprintf("Successfully imported health records for %s", outcome.PatientIdentity),
		PatientIdentity: outcome.PatientIdentity,
		PatientDOB:      outcome.PatientDOB,
		PatientID:       outcome.PatientID,
		ImportID:        outcome.ImportID,
		TotalRecords:    outcome.Statistics.TotalRecords,
		Statistics:      outcome.Statistics,
	})
}

func (f *Facade) handleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := f.tracer.Start(ctx, "execute_health_query")
	defer span.End()

	query, err := request.RequireString("query")
	if err != nil {
		argErr := apperrors.NewInvalidArgumentError("query is required", err)
		return jsonResult(&QueryResult{
			QuerySuccessful: false,
			Warnings:        []string{},
			ErrorKind:       argErr.Type,
			Error:           argErr.Error(),
		})
	}

	outcome, err := f.queries.Execute(ctx, query)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("query failed")
		return jsonResult(&QueryResult{
			Query:           query,
			QuerySuccessful: false,
			Warnings:        []string{},
			ErrorKind:       apperrors.Kind(err),
			Error:           err.Error(),
		})
	}

	results := outcome.Rows
	if results == nil {
		results = []map[string]interface{}{}
	}

	return jsonResult(&QueryResult{
		Query:           outcome.Query,
		Interpretation:  outcome.Interpretation,
		SQL:             outcome.SQL,
		Results:         results,
		ResultCount:     len(results),
		DataMetrics:     outcome.Metrics,
		QuerySuccessful: true,
		Warnings:        []string{},
	})
}

func jsonResult(payload interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not serialize result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
