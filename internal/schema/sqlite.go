package schema

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/loykin/catalogup/internal/constants"
)

// SqliteDialect implements Dialect for SQLite (modernc.org/sqlite).
type SqliteDialect struct{}

func NewSqliteDialect() *SqliteDialect {
	return &SqliteDialect{}
}

func (s *SqliteDialect) Name() string       { return DriverSqlite }
func (s *SqliteDialect) DriverName() string { return "sqlite" }

// Placeholder returns SQLite-style placeholders (?)
func (s *SqliteDialect) Placeholder(int) string {
	return "?"
}

func (s *SqliteDialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
}

func (s *SqliteDialect) ColumnExistsQuery() string {
	return "SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?"
}

// ConfigurePool keeps a single connection: SQLite has one writer, and an
// in-memory database lives only as long as its connection.
func (s *SqliteDialect) ConfigurePool(db *sql.DB) {
	db.SetMaxOpenConns(constants.DefaultSQLiteMaxConnections)
	db.SetMaxIdleConns(constants.DefaultSQLiteMaxIdleConns)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
}

// BoolToStorage converts bool to SQLite storage format (integer 0/1)
func (s *SqliteDialect) BoolToStorage(b bool) any {
	if b {
		return 1
	}
	return 0
}

func (s *SqliteDialect) BoolFromStorage(v any) bool {
	switch i := v.(type) {
	case int64:
		return i != 0
	case int:
		return i != 0
	case bool:
		return i
	}
	return false
}

// TimeToStorage stores times as RFC3339Nano text
func (s *SqliteDialect) TimeToStorage(t time.Time) any {
	return t.UTC().Format(time.RFC3339Nano)
}

func (s *SqliteDialect) TimeFromStorage(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	}
	return ""
}
