package schema

import (
	"context"
	"database/sql"

	"github.com/loykin/catalogup/internal/common"
)

// Accessor is the narrow capability upgrade catalogs have over the database.
// Every failure is reported as a *SchemaAccessError.
type Accessor interface {
	TableExists(ctx context.Context, table string) (bool, error)
	ColumnExists(ctx context.Context, table, column string) (bool, error)
	ExecuteUpdate(ctx context.Context, stmt string, args ...any) (int64, error)
	ExecuteQuery(ctx context.Context, stmt string, args ...any) (*ResultSet, error)
}

// ResultSet is a fully materialized query result.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Int64 returns the integer at (row, col), or 0 when absent or not numeric.
func (r *ResultSet) Int64(row, col int) int64 {
	if r == nil || row >= len(r.Rows) || col >= len(r.Rows[row]) {
		return 0
	}
	switch v := r.Rows[row][col].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// DBAccessor implements Accessor over a database/sql handle.
type DBAccessor struct {
	db      *sql.DB
	dialect Dialect
	logger  *common.Logger
}

// NewDBAccessor binds an accessor to an open connection and its dialect.
func NewDBAccessor(db *sql.DB, dialect Dialect) *DBAccessor {
	return &DBAccessor{
		db:      db,
		dialect: dialect,
		logger:  common.GetLogger().WithComponent("schema").WithStore(dialect.Name()),
	}
}

func (a *DBAccessor) DB() *sql.DB      { return a.db }
func (a *DBAccessor) Dialect() Dialect { return a.dialect }

func (a *DBAccessor) count(ctx context.Context, op, q string, args ...any) (int64, error) {
	var n int64
	if err := a.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		a.logger.Error("schema lookup failed", "op", op, "error", err)
		return 0, accessError(op, q, err)
	}
	return n, nil
}

// TableExists reports whether table exists in the current schema.
func (a *DBAccessor) TableExists(ctx context.Context, table string) (bool, error) {
	n, err := a.count(ctx, "TableExists", a.dialect.TableExistsQuery(), table)
	if err != nil {
		return false, err
	}
	a.logger.Debug("table lookup", "table", table, "exists", n > 0)
	return n > 0, nil
}

// ColumnExists reports whether table has column.
func (a *DBAccessor) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	n, err := a.count(ctx, "ColumnExists", a.dialect.ColumnExistsQuery(), table, column)
	if err != nil {
		return false, err
	}
	a.logger.Debug("column lookup", "table", table, "column", column, "exists", n > 0)
	return n > 0, nil
}

// ExecuteUpdate runs a DDL or DML statement and returns the affected row count.
func (a *DBAccessor) ExecuteUpdate(ctx context.Context, stmt string, args ...any) (int64, error) {
	a.logger.Debug("executing statement", "sql", stmt)
	res, err := a.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		a.logger.Error("statement failed", "sql", stmt, "error", err)
		return 0, accessError("ExecuteUpdate", stmt, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, accessError("ExecuteUpdate", stmt, err)
	}
	return n, nil
}

// ExecuteQuery runs a query and materializes every row.
func (a *DBAccessor) ExecuteQuery(ctx context.Context, stmt string, args ...any) (*ResultSet, error) {
	a.logger.Debug("executing query", "sql", stmt)
	rows, err := a.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, accessError("ExecuteQuery", stmt, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, accessError("ExecuteQuery", stmt, err)
	}
	rs := &ResultSet{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, accessError("ExecuteQuery", stmt, err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, accessError("ExecuteQuery", stmt, err)
	}
	return rs, nil
}
