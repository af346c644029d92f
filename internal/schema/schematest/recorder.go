// Package schematest provides an in-memory schema.Accessor that records every call.
package schematest

import (
	"context"

	"github.com/loykin/catalogup/internal/schema"
)

// Call is one recorded accessor invocation.
type Call struct {
	Op        string
	Statement string
	Args      []any
}

// Recorder is a scriptable schema.Accessor. Zero values answer "absent" and 0 rows.
type Recorder struct {
	// Tables lists existing tables.
	Tables map[string]bool
	// Columns lists existing columns per table.
	Columns map[string]map[string]bool
	// UpdateResults is the affected count returned per statement.
	UpdateResults map[string]int64
	// QueryResults is the result set returned per statement.
	QueryResults map[string]*schema.ResultSet
	// Errors fails an operation by name ("TableExists", "ExecuteUpdate", ...).
	Errors map[string]error
	// OnUpdate runs after a successful ExecuteUpdate, e.g. to flip table state.
	OnUpdate func(r *Recorder, stmt string)

	Calls []Call
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{
		Tables:        map[string]bool{},
		Columns:       map[string]map[string]bool{},
		UpdateResults: map[string]int64{},
		QueryResults:  map[string]*schema.ResultSet{},
		Errors:        map[string]error{},
	}
}

func (r *Recorder) record(op, stmt string, args []any) error {
	r.Calls = append(r.Calls, Call{Op: op, Statement: stmt, Args: args})
	if err := r.Errors[op]; err != nil {
		return &schema.SchemaAccessError{Op: op, Statement: stmt, Err: err}
	}
	return nil
}

func (r *Recorder) TableExists(_ context.Context, table string) (bool, error) {
	if err := r.record("TableExists", table, nil); err != nil {
		return false, err
	}
	return r.Tables[table], nil
}

func (r *Recorder) ColumnExists(_ context.Context, table, column string) (bool, error) {
	if err := r.record("ColumnExists", table+"."+column, nil); err != nil {
		return false, err
	}
	return r.Columns[table][column], nil
}

func (r *Recorder) ExecuteUpdate(_ context.Context, stmt string, args ...any) (int64, error) {
	if err := r.record("ExecuteUpdate", stmt, args); err != nil {
		return 0, err
	}
	n := r.UpdateResults[stmt]
	if r.OnUpdate != nil {
		r.OnUpdate(r, stmt)
	}
	return n, nil
}

func (r *Recorder) ExecuteQuery(_ context.Context, stmt string, args ...any) (*schema.ResultSet, error) {
	if err := r.record("ExecuteQuery", stmt, args); err != nil {
		return nil, err
	}
	if rs, ok := r.QueryResults[stmt]; ok {
		return rs, nil
	}
	return &schema.ResultSet{}, nil
}

// Count returns how many times op was invoked.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Updates returns every statement passed to ExecuteUpdate, in order.
func (r *Recorder) Updates() []string {
	var out []string
	for _, c := range r.Calls {
		if c.Op == "ExecuteUpdate" {
			out = append(out, c.Statement)
		}
	}
	return out
}

// Reset forgets recorded calls but keeps the scripted state.
func (r *Recorder) Reset() {
	r.Calls = nil
}

var _ schema.Accessor = (*Recorder)(nil)
