package schema

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/loykin/catalogup/internal/constants"
)

// PostgresDialect implements Dialect for PostgreSQL through the pgx stdlib driver.
type PostgresDialect struct{}

func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (p *PostgresDialect) Name() string       { return DriverPostgres }
func (p *PostgresDialect) DriverName() string { return "pgx" }

// Placeholder returns PostgreSQL-style placeholders ($1, $2, etc.)
func (p *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// Unquoted identifiers are folded to lower case by PostgreSQL.
func (p *PostgresDialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = lower($1)"
}

func (p *PostgresDialect) ColumnExistsQuery() string {
	return "SELECT COUNT(*) FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = lower($1) AND column_name = lower($2)"
}

// ConfigurePool applies the pool limits. Upgrade statements run sequentially, so
// the pool only serves the history recorder next to the statement in flight.
func (p *PostgresDialect) ConfigurePool(db *sql.DB) {
	db.SetMaxOpenConns(constants.DefaultPostgresMaxConnections)
	db.SetMaxIdleConns(constants.DefaultPostgresMaxIdleConns)
	db.SetConnMaxLifetime(constants.DefaultMaxConnLifetime)
	db.SetConnMaxIdleTime(constants.DefaultMaxIdleTime)
}

func (p *PostgresDialect) BoolToStorage(b bool) any {
	return b
}

func (p *PostgresDialect) BoolFromStorage(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}

func (p *PostgresDialect) TimeToStorage(t time.Time) any {
	return t.UTC()
}

// TimeFromStorage converts TIMESTAMPTZ values to RFC3339Nano strings
func (p *PostgresDialect) TimeFromStorage(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t != nil {
			return t.UTC().Format(time.RFC3339Nano)
		}
	case string:
		return t
	}
	return ""
}
