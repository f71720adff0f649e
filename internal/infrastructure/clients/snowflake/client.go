package snowflake

import (
	"context"
	"crypto/rsa"
	"database/sql"
	"fmt"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/healthintel/snowbridge/pkg/config"
	apperrors "github.com/healthintel/snowbridge/pkg/errors"
)

// Connector builds per-call warehouse sessions using key-pair JWT
// authentication. The facade is invoked as discrete, infrequent tool
// calls, so there is no persistent pool: each call opens a session and
// closes it when done.
type Connector struct {
	dsn string
}

// NewConnector derives a DSN from the loaded configuration and signing
// key. The key itself never leaves this process.
func NewConnector(cfg *config.SnowflakeConfig, key *rsa.PrivateKey) (*Connector, error) {
	dsn, err := sf.DSN(&sf.Config{
		Account:       cfg.Account,
		User:          cfg.User,
		PrivateKey:    key,
		Authenticator: sf.AuthTypeJwt,
		Warehouse:     cfg.Warehouse,
		Database:      cfg.Database,
		Schema:        cfg.Schema,
		Role:          cfg.Role,
	})
	if err != nil {
		return nil, apperrors.NewConfigurationError("could not build warehouse DSN", err)
	}
	return &Connector{dsn: dsn}, nil
}

// Connect opens a session scoped to one tool call. Callers must Close
// it on every path.
func (c *Connector) Connect(ctx context.Context) (*Session, error) {
	db, err := sql.Open("snowflake", c.dsn)
	if err != nil {
		return nil, apperrors.NewExecutionError("could not open warehouse connection", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.NewExecutionError("could not reach warehouse", err)
	}
	return NewSession(db), nil
}

// Session wraps one warehouse connection. All result values are coerced
// to transport-safe types before they leave this package.
type Session struct {
	db *sql.DB
}

// NewSession wraps an open database handle. Exposed so tests can drive
// a session over a mock connection.
func NewSession(db *sql.DB) *Session {
	return &Session{db: db}
}

// DB returns the underlying database handle.
func (s *Session) DB() *sql.DB {
	return s.db
}

// Close releases the connection.
func (s *Session) Close() error {
	return s.db.Close()
}

// ResultSet is a query result with column order preserved.
type ResultSet struct {
	Columns []string
	Rows    []map[string]interface{}
}

// Query executes a SELECT-shaped statement and converts every row into
// a field/value mapping: temporal values become ISO-8601 strings,
// decimals become float64, NULLs stay nil.
func (s *Session) Query(ctx context.Context, stmt string, args ...interface{}) (*ResultSet, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, apperrors.NewExecutionError(fmt.Sprintf("query failed: %v", err), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, apperrors.NewExecutionError("could not read result columns", err)
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, apperrors.NewExecutionError("could not read result column metadata", err)
	}

	result := &ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		scanTargets := make([]interface{}, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, apperrors.NewExecutionError("could not scan result row", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			converted, err := coerceValue(values[i], columnTypes[i].DatabaseTypeName())
			if err != nil {
				return nil, err
			}
			row[col] = converted
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExecutionError("error iterating result rows", err)
	}

	return result, nil
}

// Exec executes an administrative or insert statement with positional
// parameters. Values are never string-interpolated into SQL.
func (s *Session) Exec(ctx context.Context, stmt string, args ...interface{}) error {
	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return apperrors.NewExecutionError(fmt.Sprintf("statement failed: %v", err), err)
	}
	return nil
}
