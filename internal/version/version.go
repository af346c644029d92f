package version

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// ErrInvalidVersion is returned when a string is not a dotted numeric schema version.
var ErrInvalidVersion = errors.New("invalid schema version")

var dottedNumeric = regexp.MustCompile(`^\d+(\.\d+)*$`)

// Version is a dotted numeric schema version such as 2.7.2.
// Trailing zero segments are insignificant: 2.7 and 2.7.0 compare equal.
type Version struct {
	v   *goversion.Version
	raw string
}

// Parse parses s as a dotted numeric version. Pre-release and build metadata are rejected.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if !dottedNumeric.MatchString(trimmed) {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	v, err := goversion.NewVersion(trimmed)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, s, err)
	}
	return Version{v: v, raw: trimmed}, nil
}

// MustParse is like Parse but panics on error. Intended for version constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v is the zero Version.
func (v Version) IsZero() bool {
	return v.v == nil
}

func (v Version) String() string {
	return v.raw
}

// Compare returns -1, 0 or 1. The zero Version sorts before every parsed version.
func (v Version) Compare(o Version) int {
	switch {
	case v.v == nil && o.v == nil:
		return 0
	case v.v == nil:
		return -1
	case o.v == nil:
		return 1
	}
	return v.v.Compare(o.v)
}

func (v Version) Equal(o Version) bool       { return v.Compare(o) == 0 }
func (v Version) LessThan(o Version) bool    { return v.Compare(o) < 0 }
func (v Version) GreaterThan(o Version) bool { return v.Compare(o) > 0 }

// Sort orders versions ascending in place.
func Sort(vs []Version) {
	sort.SliceStable(vs, func(i, j int) bool { return vs[i].LessThan(vs[j]) })
}
