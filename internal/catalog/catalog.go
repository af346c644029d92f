// Package catalog defines the unit of a release upgrade: a set of DDL and DML changes
// that bring the schema up to one target version.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/loykin/catalogup/internal/schema"
	"github.com/loykin/catalogup/internal/version"
)

// Phase names one execution step of a catalog.
type Phase string

const (
	PhaseDDL    Phase = "ddl"
	PhasePreDML Phase = "predml"
	PhaseDML    Phase = "dml"
)

// Catalog upgrades the schema to TargetVersion. DDL always runs before DML.
// Both phases return the total number of affected rows and must not swallow accessor errors.
type Catalog interface {
	TargetVersion() version.Version
	ExecuteDDLUpdates(ctx context.Context) (int64, error)
	ExecuteDMLUpdates(ctx context.Context) (int64, error)
}

// PreDMLUpdater is implemented by catalogs that need a step between DDL and DML,
// e.g. to populate new columns before data is rewritten.
type PreDMLUpdater interface {
	ExecutePreDMLUpdates(ctx context.Context) (int64, error)
}

// Describer is implemented by catalogs that carry a human readable summary.
type Describer interface {
	Description() string
}

// Phases returns the phases c participates in, in execution order.
func Phases(c Catalog) []Phase {
	if _, ok := c.(PreDMLUpdater); ok {
		return []Phase{PhaseDDL, PhasePreDML, PhaseDML}
	}
	return []Phase{PhaseDDL, PhaseDML}
}

// Run executes one phase of c. Failures are wrapped in a *CatalogExecutionError.
func Run(ctx context.Context, c Catalog, phase Phase) (int64, error) {
	var (
		n   int64
		err error
	)
	switch phase {
	case PhaseDDL:
		n, err = c.ExecuteDDLUpdates(ctx)
	case PhasePreDML:
		p, ok := c.(PreDMLUpdater)
		if !ok {
			return 0, nil
		}
		n, err = p.ExecutePreDMLUpdates(ctx)
	case PhaseDML:
		n, err = c.ExecuteDMLUpdates(ctx)
	default:
		return 0, fmt.Errorf("unknown catalog phase %q", phase)
	}
	if err != nil {
		return n, &CatalogExecutionError{Version: c.TargetVersion(), Phase: phase, Err: err}
	}
	return n, nil
}

// Describe returns the catalog description, or "" when it has none.
func Describe(c Catalog) string {
	if d, ok := c.(Describer); ok {
		return d.Description()
	}
	return ""
}

// Base carries what every concrete catalog needs. Embed it and override the phases
// the release changes.
type Base struct {
	Target   version.Version
	Summary  string
	Accessor schema.Accessor
}

// NewBase binds a target version and an accessor. It panics on an invalid version,
// which is a programming error in a release catalog.
func NewBase(target, summary string, acc schema.Accessor) Base {
	return Base{Target: version.MustParse(target), Summary: summary, Accessor: acc}
}

func (b *Base) TargetVersion() version.Version { return b.Target }

func (b *Base) Description() string { return b.Summary }

func (b *Base) ExecuteDDLUpdates(context.Context) (int64, error) { return 0, nil }

func (b *Base) ExecuteDMLUpdates(context.Context) (int64, error) { return 0, nil }

// CatalogExecutionError reports that a catalog phase failed.
type CatalogExecutionError struct {
	Version version.Version
	Phase   Phase
	Err     error
}

func (e *CatalogExecutionError) Error() string {
	return fmt.Sprintf("catalog %s %s phase failed: %v", e.Version, e.Phase, e.Err)
}

func (e *CatalogExecutionError) Unwrap() error {
	return e.Err
}

// IsExecutionError reports whether err came from a failed catalog phase.
func IsExecutionError(err error) bool {
	var ce *CatalogExecutionError
	return errors.As(err, &ce)
}
