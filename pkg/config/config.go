package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/healthintel/snowbridge/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Snowflake   SnowflakeConfig
	Analyst     AnalystConfig
	OTEL        OTELConfig
}

// SnowflakeConfig holds the warehouse connection parameters
type SnowflakeConfig struct {
	Account        string
	User           string
	PrivateKeyPath string
	Warehouse      string
	Database       string
	Schema         string
	Role           string
}

// AnalystConfig holds the Cortex Analyst endpoint configuration
type AnalystConfig struct {
	// BaseURL overrides the account-derived endpoint; used in tests.
	BaseURL           string
	SemanticModelFile string
	Stage             string
	RequestTimeout    time.Duration
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables. Missing required
// Snowflake credentials yield a configuration error rather than a partial
// config; no component reads the environment after this point.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("APP_ENV", "production"),
		Snowflake: SnowflakeConfig{
			Account:        os.Getenv("SNOWFLAKE_ACCOUNT"),
			User:           os.Getenv("SNOWFLAKE_USER"),
			PrivateKeyPath: os.Getenv("SNOWFLAKE_PRIVATE_KEY_PATH"),
			Warehouse:      getEnv("SNOWFLAKE_WAREHOUSE", "COMPUTE_WH"),
			Database:       getEnv("SNOWFLAKE_DATABASE", "HEALTH_INTELLIGENCE"),
			Schema:         getEnv("SNOWFLAKE_SCHEMA", "HEALTH_RECORDS"),
			Role:           getEnv("SNOWFLAKE_ROLE", "ACCOUNTADMIN"),
		},
		Analyst: AnalystConfig{
			BaseURL:           getEnv("CORTEX_ANALYST_URL", ""),
			SemanticModelFile: getEnv("SNOWFLAKE_SEMANTIC_MODEL_FILE", "health_intelligence_semantic_model.yaml"),
			Stage:             getEnv("SNOWFLAKE_SEMANTIC_MODEL_STAGE", "RAW_DATA"),
			RequestTimeout:    time.Duration(getEnvAsInt("CORTEX_ANALYST_TIMEOUT_MS", 60000)) * time.Millisecond,
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "snowbridge"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Snowflake.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *SnowflakeConfig) validate() error {
	required := map[string]string{
		"SNOWFLAKE_ACCOUNT":          c.Account,
		"SNOWFLAKE_USER":             c.User,
		"SNOWFLAKE_PRIVATE_KEY_PATH": c.PrivateKeyPath,
	}
	for key, value := range required {
		if value == "" {
			return apperrors.NewConfigurationError(fmt.Sprintf("%s environment variable not set", key), nil)
		}
	}
	return nil
}

// SemanticModelPath returns the fully-qualified stage path consumed by
// the analyst endpoint, e.g. "@DB.SCHEMA.RAW_DATA/model.yaml".
func (c *Config) SemanticModelPath() string {
	return fmt.Sprintf("@%s.%s.%s/%s",
		c.Snowflake.Database, c.Snowflake.Schema, c.Analyst.Stage, c.Analyst.SemanticModelFile)
}

// AnalystBaseURL returns the configured endpoint override or the
// account-derived Cortex Analyst URL.
func (c *Config) AnalystBaseURL() string {
	if c.Analyst.BaseURL != "" {
		return c.Analyst.BaseURL
	}
	return fmt.Sprintf("https://%s.snowflakecomputing.com", strings.ToLower(c.Snowflake.Account))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
