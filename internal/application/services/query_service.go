package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/healthintel/snowbridge/internal/domain/entities"
	"github.com/healthintel/snowbridge/internal/infrastructure/clients/analyst"
)

// Translator converts a natural-language question into SQL.
type Translator interface {
	Translate(ctx context.Context, query string) (*analyst.Translation, error)
}

// QueryOutcome is the successful result of one query call.
type QueryOutcome struct {
	Query          string
	Interpretation string
	SQL            string
	Columns        []string
	Rows           []map[string]interface{}
	Metrics        *entities.QueryMetrics
}

// QueryService drives the query path: translate first, execute second.
// When translation yields no SQL the warehouse is never touched.
type QueryService struct {
	translator Translator
	warehouse  WarehouseConnector
}

// NewQueryService creates a query service.
func NewQueryService(translator Translator, warehouse WarehouseConnector) *QueryService {
	return &QueryService{
		translator: translator,
		warehouse:  warehouse,
	}
}

// Execute translates query to SQL via the analyst endpoint, runs it in
// the warehouse, and returns transport-safe rows with result metrics.
func (s *QueryService) Execute(ctx context.Context, query string) (*QueryOutcome, error) {
	translation, err := s.translator.Translate(ctx, query)
	if err != nil {
		return nil, err
	}

	log.Info().Str("sql", translation.SQL).Msg("executing generated SQL")

	session, err := s.warehouse.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	result, err := session.Query(ctx, translation.SQL)
	if err != nil {
		return nil, err
	}

	log.Info().Int("rows", len(result.Rows)).Msg("query returned")

	return &QueryOutcome{
		Query:          query,
		Interpretation: translation.Interpretation,
		SQL:            translation.SQL,
		Columns:        result.Columns,
		Rows:           result.Rows,
		Metrics:        ComputeQueryMetrics(query, result.Columns, result.Rows),
	}, nil
}
