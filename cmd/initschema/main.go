// Command initschema issues the warehouse DDL once, in dependency
// order. It is the only place that retries: a cold warehouse can take a
// few seconds to resume.
package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/healthintel/snowbridge/internal/adapters/database"
	"github.com/healthintel/snowbridge/internal/infrastructure/auth"
	"github.com/healthintel/snowbridge/internal/infrastructure/clients/snowflake"
	"github.com/healthintel/snowbridge/internal/infrastructure/observability"
	"github.com/healthintel/snowbridge/pkg/config"
	"github.com/healthintel/snowbridge/pkg/retry"
)

func main() {
	observability.InitLogger("snowbridge-initschema", "development")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	key, err := auth.LoadPrivateKey(cfg.Snowflake.PrivateKeyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load private key")
	}

	connector, err := snowflake.NewConnector(&cfg.Snowflake, key)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure warehouse connector")
	}

	ctx := context.Background()

	var session *snowflake.Session
	err = retry.Do(ctx, retry.DefaultConfig(), func() error {
		var connectErr error
		session, connectErr = connector.Connect(ctx)
		return connectErr
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("warehouse connection failed, retrying")
	})
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to warehouse")
	}
	defer session.Close()

	for _, stmt := range database.SchemaStatements() {
		if err := session.Exec(ctx, stmt); err != nil {
			log.Fatal().Err(err).Msg("DDL failed")
		}
	}

	log.Info().Msg("warehouse schema ready")
}
