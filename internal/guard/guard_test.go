package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/loykin/catalogup/internal/schema"
	"github.com/loykin/catalogup/internal/schema/schematest"
)

func TestApply_FalsePreconditionIssuesNoMutation(t *testing.T) {
	rec := schematest.New()
	a := IfTableExists("ambari_configuration", "UPDATE ambari_configuration SET x = 1")

	n, err := a.Apply(context.Background(), rec)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if n != 0 {
		t.Fatalf("affected = %d, want 0", n)
	}
	if got := rec.Count("ExecuteUpdate"); got != 0 {
		t.Fatalf("ExecuteUpdate called %d times, want 0", got)
	}
	if got := rec.Count("TableExists"); got != 1 {
		t.Fatalf("TableExists called %d times, want 1", got)
	}
}

func TestApply_TruePreconditionReturnsEffectCount(t *testing.T) {
	rec := schematest.New()
	stmt := "UPDATE ambari_configuration SET x = 1"
	rec.Tables["ambari_configuration"] = true
	rec.UpdateResults[stmt] = 3

	n, err := IfTableExists("ambari_configuration", stmt).Apply(context.Background(), rec)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if n != 3 {
		t.Fatalf("affected = %d, want 3", n)
	}
	if u := rec.Updates(); len(u) != 1 || u[0] != stmt {
		t.Fatalf("updates = %v", u)
	}
}

func TestApply_NilPreconditionAlwaysRuns(t *testing.T) {
	rec := schematest.New()
	rec.UpdateResults["DELETE FROM t"] = 2
	a := Action{Name: "purge", Effect: Exec("DELETE FROM t")}

	n, err := a.Apply(context.Background(), rec)
	if err != nil || n != 2 {
		t.Fatalf("Apply = %d, %v; want 2, nil", n, err)
	}
}

func TestApply_ErrorsPropagateUnchanged(t *testing.T) {
	connErr := errors.New("connection refused")

	rec := schematest.New()
	rec.Errors["TableExists"] = connErr
	_, err := IfTableExists("t", "UPDATE t SET x = 1").Apply(context.Background(), rec)
	var sae *schema.SchemaAccessError
	if !errors.As(err, &sae) || !errors.Is(err, connErr) {
		t.Fatalf("precondition error not propagated: %v", err)
	}
	if rec.Count("ExecuteUpdate") != 0 {
		t.Fatal("effect must not run when the precondition fails")
	}

	rec = schematest.New()
	rec.Tables["t"] = true
	rec.Errors["ExecuteUpdate"] = connErr
	_, err = IfTableExists("t", "UPDATE t SET x = 1").Apply(context.Background(), rec)
	if !errors.As(err, &sae) || sae.Op != "ExecuteUpdate" {
		t.Fatalf("effect error not propagated: %v", err)
	}
}

func TestIfTableMissing_IsIdempotent(t *testing.T) {
	rec := schematest.New()
	stmt := "CREATE TABLE ambari_configuration (property_name VARCHAR(100))"
	rec.OnUpdate = func(r *schematest.Recorder, s string) {
		if s == stmt {
			r.Tables["ambari_configuration"] = true
		}
	}
	a := IfTableMissing("ambari_configuration", stmt)

	first, err := a.Apply(context.Background(), rec)
	if err != nil || first != 1 {
		t.Fatalf("first Apply = %d, %v; want 1, nil", first, err)
	}
	second, err := a.Apply(context.Background(), rec)
	if err != nil || second != 0 {
		t.Fatalf("second Apply = %d, %v; want 0, nil", second, err)
	}
	if rec.Count("ExecuteUpdate") != 1 {
		t.Fatalf("CREATE issued %d times", rec.Count("ExecuteUpdate"))
	}
}

func TestColumnPreconditions(t *testing.T) {
	tests := []struct {
		name      string
		table     bool
		column    bool
		action    func() Action
		wantCount int64
	}{
		{"missing column added", true, false, func() Action { return IfColumnMissing("t", "c", "ALTER TABLE t ADD c INT") }, 1},
		{"present column skipped", true, true, func() Action { return IfColumnMissing("t", "c", "ALTER TABLE t ADD c INT") }, 0},
		{"missing table skipped", false, false, func() Action { return IfColumnMissing("t", "c", "ALTER TABLE t ADD c INT") }, 0},
		{"existing column altered", true, true, func() Action { return IfColumnExists("t", "c", "ALTER TABLE t DROP COLUMN c") }, 1},
		{"absent column not altered", true, false, func() Action { return IfColumnExists("t", "c", "ALTER TABLE t DROP COLUMN c") }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := schematest.New()
			rec.Tables["t"] = tt.table
			rec.Columns["t"] = map[string]bool{"c": tt.column}

			n, err := tt.action().Apply(context.Background(), rec)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if n != tt.wantCount {
				t.Fatalf("affected = %d, want %d", n, tt.wantCount)
			}
			if !tt.table && rec.Count("ColumnExists") != 0 {
				t.Fatal("column lookup must be skipped when the table is missing")
			}
		})
	}
}

func TestIfRowsMatch(t *testing.T) {
	query := "SELECT COUNT(*) FROM clusterconfig WHERE type_name = 'x'"
	stmt := "DELETE FROM clusterconfig WHERE type_name = 'x'"

	rec := schematest.New()
	rec.QueryResults[query] = &schema.ResultSet{Columns: []string{"count"}, Rows: [][]any{{int64(0)}}}
	n, err := IfRowsMatch(query, stmt).Apply(context.Background(), rec)
	if err != nil || n != 0 || rec.Count("ExecuteUpdate") != 0 {
		t.Fatalf("zero count should skip: n=%d err=%v", n, err)
	}

	rec.QueryResults[query] = &schema.ResultSet{Columns: []string{"count"}, Rows: [][]any{{int64(4)}}}
	rec.UpdateResults[stmt] = 4
	n, err = IfRowsMatch(query, stmt).Apply(context.Background(), rec)
	if err != nil || n != 4 {
		t.Fatalf("Apply = %d, %v; want 4, nil", n, err)
	}
}

func TestApplyAll_SumsAndStopsOnError(t *testing.T) {
	rec := schematest.New()
	rec.UpdateResults["A"] = 2
	rec.UpdateResults["B"] = 5
	total, err := ApplyAll(context.Background(), rec,
		Action{Effect: Exec("A")},
		Action{Effect: Exec("B")},
	)
	if err != nil || total != 7 {
		t.Fatalf("ApplyAll = %d, %v; want 7, nil", total, err)
	}

	boom := errors.New("boom")
	calls := 0
	total, err = ApplyAll(context.Background(), rec,
		Action{Effect: Exec("A")},
		Action{Effect: func(context.Context, schema.Accessor) (int64, error) { return 0, boom }},
		Action{Effect: func(context.Context, schema.Accessor) (int64, error) { calls++; return 1, nil }},
	)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if total != 2 || calls != 0 {
		t.Fatalf("total=%d calls=%d; want 2, 0", total, calls)
	}
}

func TestNamed(t *testing.T) {
	a := IfTableExists("t", "UPDATE t SET x = 1").Named("rename collision behavior")
	if a.Name != "rename collision behavior" {
		t.Fatalf("Name = %q", a.Name)
	}
}
