// Package guard implements idempotent schema changes: a mutation paired with a
// precondition that detects whether the mutation is still needed.
package guard

import (
	"context"
	"fmt"

	"github.com/loykin/catalogup/internal/common"
	"github.com/loykin/catalogup/internal/schema"
)

// Precondition reports whether an action still has work to do.
type Precondition func(ctx context.Context, acc schema.Accessor) (bool, error)

// Effect performs the mutation and returns the number of affected rows.
type Effect func(ctx context.Context, acc schema.Accessor) (int64, error)

// Action is a mutation that runs only while its precondition holds, so re-running it
// against a partially upgraded database is safe.
type Action struct {
	Name         string
	Precondition Precondition
	Effect       Effect
}

// Apply evaluates the precondition and, when it holds, runs the effect.
// A false precondition returns 0 without running the effect. A nil precondition
// always holds. Errors from either step are returned unchanged.
func (a Action) Apply(ctx context.Context, acc schema.Accessor) (int64, error) {
	logger := common.GetLogger().WithComponent("guard")
	if a.Precondition != nil {
		ok, err := a.Precondition(ctx, acc)
		if err != nil {
			return 0, err
		}
		if !ok {
			logger.Debug("precondition not met, skipping", "action", a.Name)
			return 0, nil
		}
	}
	if a.Effect == nil {
		return 0, nil
	}
	n, err := a.Effect(ctx, acc)
	if err != nil {
		return 0, err
	}
	logger.Debug("action applied", "action", a.Name, "affected", n)
	return n, nil
}

// Named returns a copy of a with its name replaced.
func (a Action) Named(name string) Action {
	a.Name = name
	return a
}

// ApplyAll applies actions in order and sums their affected counts. It stops at the
// first error and returns the count accumulated so far.
func ApplyAll(ctx context.Context, acc schema.Accessor, actions ...Action) (int64, error) {
	var total int64
	for _, a := range actions {
		n, err := a.Apply(ctx, acc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Preconditions

func TableExists(table string) Precondition {
	return func(ctx context.Context, acc schema.Accessor) (bool, error) {
		return acc.TableExists(ctx, table)
	}
}

func TableMissing(table string) Precondition {
	return Not(TableExists(table))
}

// ColumnExists holds when table exists and has column.
func ColumnExists(table, column string) Precondition {
	return And(TableExists(table), func(ctx context.Context, acc schema.Accessor) (bool, error) {
		return acc.ColumnExists(ctx, table, column)
	})
}

// ColumnMissing holds when table exists but lacks column.
func ColumnMissing(table, column string) Precondition {
	return And(TableExists(table), func(ctx context.Context, acc schema.Accessor) (bool, error) {
		ok, err := acc.ColumnExists(ctx, table, column)
		return !ok, err
	})
}

// RowsMatch holds when the first column of the first row of query is a positive count.
func RowsMatch(query string, args ...any) Precondition {
	return func(ctx context.Context, acc schema.Accessor) (bool, error) {
		rs, err := acc.ExecuteQuery(ctx, query, args...)
		if err != nil {
			return false, err
		}
		return rs.Int64(0, 0) > 0, nil
	}
}

// And holds when every precondition holds, evaluating left to right and stopping at the
// first that does not.
func And(preds ...Precondition) Precondition {
	return func(ctx context.Context, acc schema.Accessor) (bool, error) {
		for _, p := range preds {
			ok, err := p(ctx, acc)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

func Not(p Precondition) Precondition {
	return func(ctx context.Context, acc schema.Accessor) (bool, error) {
		ok, err := p(ctx, acc)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}

// Effects

// Exec runs a DML statement and returns its affected row count.
func Exec(stmt string, args ...any) Effect {
	return func(ctx context.Context, acc schema.Accessor) (int64, error) {
		return acc.ExecuteUpdate(ctx, stmt, args...)
	}
}

// ExecDDL runs a DDL statement. Drivers report 0 affected rows for DDL, so a
// successful statement counts as one change.
func ExecDDL(stmt string) Effect {
	return func(ctx context.Context, acc schema.Accessor) (int64, error) {
		if _, err := acc.ExecuteUpdate(ctx, stmt); err != nil {
			return 0, err
		}
		return 1, nil
	}
}

// Constructors

// IfTableExists runs a DML statement when table exists.
func IfTableExists(table, stmt string, args ...any) Action {
	return Action{
		Name:         fmt.Sprintf("update %s", table),
		Precondition: TableExists(table),
		Effect:       Exec(stmt, args...),
	}
}

// IfTableMissing creates a table with a DDL statement when it does not exist yet.
func IfTableMissing(table, stmt string) Action {
	return Action{
		Name:         fmt.Sprintf("create table %s", table),
		Precondition: TableMissing(table),
		Effect:       ExecDDL(stmt),
	}
}

// IfColumnMissing adds a column with a DDL statement when the table lacks it.
func IfColumnMissing(table, column, stmt string) Action {
	return Action{
		Name:         fmt.Sprintf("add column %s.%s", table, column),
		Precondition: ColumnMissing(table, column),
		Effect:       ExecDDL(stmt),
	}
}

// IfColumnExists runs a DDL statement, typically a drop or rename, when the column is present.
func IfColumnExists(table, column, stmt string) Action {
	return Action{
		Name:         fmt.Sprintf("alter column %s.%s", table, column),
		Precondition: ColumnExists(table, column),
		Effect:       ExecDDL(stmt),
	}
}

// IfRowsMatch runs a DML statement when the count query returns a positive number.
func IfRowsMatch(query, stmt string) Action {
	return Action{
		Name:         "conditional update",
		Precondition: RowsMatch(query),
		Effect:       Exec(stmt),
	}
}
