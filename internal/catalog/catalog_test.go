package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/loykin/catalogup/internal/schema/schematest"
)

type plainCatalog struct {
	Base
	ddlErr error
	order  *[]Phase
}

func (c *plainCatalog) ExecuteDDLUpdates(context.Context) (int64, error) {
	*c.order = append(*c.order, PhaseDDL)
	return 2, c.ddlErr
}

type preDMLCatalog struct {
	plainCatalog
}

func (c *preDMLCatalog) ExecutePreDMLUpdates(context.Context) (int64, error) {
	*c.order = append(*c.order, PhasePreDML)
	return 1, nil
}

func TestBaseDefaults(t *testing.T) {
	b := NewBase("2.7.2", "ldap fixes", schematest.New())
	c := &b
	if c.TargetVersion().String() != "2.7.2" {
		t.Fatalf("TargetVersion = %s", c.TargetVersion())
	}
	if Describe(c) != "ldap fixes" {
		t.Fatalf("Describe = %q", Describe(c))
	}
	for _, p := range Phases(c) {
		n, err := Run(context.Background(), c, p)
		if err != nil || n != 0 {
			t.Fatalf("default %s phase = %d, %v", p, n, err)
		}
	}
}

func TestPhases(t *testing.T) {
	var order []Phase
	plain := &plainCatalog{Base: NewBase("2.7.0", "", nil), order: &order}
	if got := Phases(plain); !reflect.DeepEqual(got, []Phase{PhaseDDL, PhaseDML}) {
		t.Fatalf("Phases(plain) = %v", got)
	}
	withPre := &preDMLCatalog{plainCatalog{Base: NewBase("2.7.1", "", nil), order: &order}}
	if got := Phases(withPre); !reflect.DeepEqual(got, []Phase{PhaseDDL, PhasePreDML, PhaseDML}) {
		t.Fatalf("Phases(withPre) = %v", got)
	}

	for _, p := range Phases(withPre) {
		if _, err := Run(context.Background(), withPre, p); err != nil {
			t.Fatalf("Run %s: %v", p, err)
		}
	}
	if !reflect.DeepEqual(order, []Phase{PhaseDDL, PhasePreDML}) {
		t.Fatalf("execution order = %v", order)
	}
}

func TestRunWrapsFailures(t *testing.T) {
	var order []Phase
	cause := errors.New("connection reset")
	c := &plainCatalog{Base: NewBase("2.7.1", "", nil), ddlErr: cause, order: &order}

	_, err := Run(context.Background(), c, PhaseDDL)
	var ce *CatalogExecutionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CatalogExecutionError, got %T", err)
	}
	if ce.Phase != PhaseDDL || ce.Version.String() != "2.7.1" {
		t.Fatalf("unexpected error fields: %+v", ce)
	}
	if !errors.Is(err, cause) || !IsExecutionError(err) {
		t.Fatal("cause must stay reachable through Unwrap")
	}
	if err.Error() != "catalog 2.7.1 ddl phase failed: connection reset" {
		t.Fatalf("Error() = %q", err.Error())
	}

	if n, err := Run(context.Background(), c, PhasePreDML); err != nil || n != 0 {
		t.Fatalf("pre-DML on a catalog without it = %d, %v", n, err)
	}
	if _, err := Run(context.Background(), c, Phase("post")); err == nil {
		t.Fatal("expected error for unknown phase")
	}
}
