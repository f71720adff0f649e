package main

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/healthintel/snowbridge/internal/application/services"
	"github.com/healthintel/snowbridge/internal/infrastructure/auth"
	"github.com/healthintel/snowbridge/internal/infrastructure/clients/analyst"
	"github.com/healthintel/snowbridge/internal/infrastructure/clients/snowflake"
	"github.com/healthintel/snowbridge/internal/infrastructure/observability"
	"github.com/healthintel/snowbridge/internal/mcptools"
	"github.com/healthintel/snowbridge/pkg/config"
)

const serverVersion = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet; fall back to a bare logger.
		observability.InitLogger("snowbridge", "production")
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
		}
	}

	key, err := auth.LoadPrivateKey(cfg.Snowflake.PrivateKeyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load private key")
	}

	connector, err := snowflake.NewConnector(&cfg.Snowflake, key)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure warehouse connector")
	}

	issuer := auth.NewTokenIssuer(cfg.Snowflake.Account, cfg.Snowflake.User, key)
	analystClient := analyst.NewClient(cfg, issuer)

	facade := mcptools.NewFacade(
		services.NewImportService(connector),
		services.NewQueryService(analystClient, connector),
	)

	mcpServer := server.NewMCPServer("health-analysis-mcp-server", serverVersion,
		server.WithToolCapabilities(false),
	)
	facade.Register(mcpServer)

	log.Info().Msg("serving MCP over stdio")
	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
