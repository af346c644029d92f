package schema

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

// Dialect hides the SQL differences between supported databases.
type Dialect interface {
	// Name is the canonical dialect name (DriverSqlite or DriverPostgres).
	Name() string
	// DriverName is the database/sql driver registered for this dialect.
	DriverName() string
	// Placeholder returns the bind placeholder for the 1-based argument index.
	Placeholder(index int) string
	// TableExistsQuery counts tables named by its single argument.
	TableExistsQuery() string
	// ColumnExistsQuery counts columns of table (arg 1) named column (arg 2).
	ColumnExistsQuery() string
	// ConfigurePool applies connection pool limits.
	ConfigurePool(db *sql.DB)

	BoolToStorage(b bool) any
	BoolFromStorage(v any) bool
	TimeToStorage(t time.Time) any
	TimeFromStorage(v any) string
}

// DialectFor resolves a configured driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3", "":
		return NewSqliteDialect(), nil
	case "postgres", "pg", "postgresql":
		return NewPostgresDialect(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}
