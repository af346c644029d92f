// Package registry keeps the known upgrade catalogs and selects the ones a given
// installed -> target transition needs.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/loykin/catalogup/internal/catalog"
	"github.com/loykin/catalogup/internal/version"
)

// ErrDuplicateCatalog is returned when two catalogs share a target version.
var ErrDuplicateCatalog = errors.New("duplicate catalog target version")

// NoUpgradePathError reports that no sequence of catalogs leads from Installed to Target.
type NoUpgradePathError struct {
	Installed version.Version
	Target    version.Version
	Reason    string
}

func (e *NoUpgradePathError) Error() string {
	return fmt.Sprintf("no upgrade path from %s to %s: %s", e.Installed, e.Target, e.Reason)
}

// Plan is the ordered list of catalogs for one upgrade run. Catalogs are strictly
// ascending by target version and each lies in (Installed, Target].
type Plan struct {
	Installed version.Version
	Target    version.Version
	Catalogs  []catalog.Catalog
}

// Empty reports whether the plan has nothing to execute.
func (p Plan) Empty() bool {
	return len(p.Catalogs) == 0
}

// Versions returns the target versions of the planned catalogs, in order.
func (p Plan) Versions() []string {
	out := make([]string, 0, len(p.Catalogs))
	for _, c := range p.Catalogs {
		out = append(out, c.TargetVersion().String())
	}
	return out
}

// Registry holds catalogs sorted by target version. It is built once at startup and
// read-only afterwards; it is not safe for concurrent Register calls.
type Registry struct {
	catalogs []catalog.Catalog
}

func New() *Registry {
	return &Registry{}
}

// Register adds c. Registering a second catalog with an equal target version fails
// with ErrDuplicateCatalog.
func (r *Registry) Register(c catalog.Catalog) error {
	if c == nil {
		return fmt.Errorf("cannot register nil catalog")
	}
	tv := c.TargetVersion()
	if tv.IsZero() {
		return fmt.Errorf("catalog has no target version")
	}
	i := sort.Search(len(r.catalogs), func(i int) bool {
		return !r.catalogs[i].TargetVersion().LessThan(tv)
	})
	if i < len(r.catalogs) && r.catalogs[i].TargetVersion().Equal(tv) {
		return fmt.Errorf("%w: %s", ErrDuplicateCatalog, tv)
	}
	r.catalogs = append(r.catalogs, nil)
	copy(r.catalogs[i+1:], r.catalogs[i:])
	r.catalogs[i] = c
	return nil
}

// MustRegister is Register for static catalog lists; it panics on error.
func (r *Registry) MustRegister(cs ...catalog.Catalog) *Registry {
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// All returns every registered catalog in ascending order.
func (r *Registry) All() []catalog.Catalog {
	out := make([]catalog.Catalog, len(r.catalogs))
	copy(out, r.catalogs)
	return out
}

// Latest returns the catalog with the highest target version.
func (r *Registry) Latest() (catalog.Catalog, bool) {
	if len(r.catalogs) == 0 {
		return nil, false
	}
	return r.catalogs[len(r.catalogs)-1], true
}

// CatalogsFor selects the catalogs needed to move from installed to target.
// installed == target yields an empty plan. A target that no catalog produces, or
// one below installed, yields *NoUpgradePathError.
func (r *Registry) CatalogsFor(installed, target version.Version) (Plan, error) {
	plan := Plan{Installed: installed, Target: target}
	if installed.Equal(target) {
		return plan, nil
	}
	if target.LessThan(installed) {
		return plan, &NoUpgradePathError{Installed: installed, Target: target, Reason: "downgrade is not supported"}
	}
	if !r.has(target) {
		return plan, &NoUpgradePathError{Installed: installed, Target: target, Reason: "no catalog targets this version"}
	}
	for _, c := range r.catalogs {
		v := c.TargetVersion()
		if v.GreaterThan(installed) && !v.GreaterThan(target) {
			plan.Catalogs = append(plan.Catalogs, c)
		}
	}
	return plan, nil
}

func (r *Registry) has(v version.Version) bool {
	for _, c := range r.catalogs {
		if c.TargetVersion().Equal(v) {
			return true
		}
	}
	return false
}
