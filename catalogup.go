// Package catalogup upgrades a database schema through versioned upgrade catalogs.
//
// A Catalog targets one release version and runs its DDL changes before its DML
// changes. An Engine reads the installed version stamp, selects the catalogs between
// the installed and the target version and runs them in ascending order. The stamp
// moves only after every selected catalog succeeded.
package catalogup

import (
	"context"

	"github.com/loykin/catalogup/internal/catalog"
	"github.com/loykin/catalogup/internal/catalogs"
	"github.com/loykin/catalogup/internal/common"
	"github.com/loykin/catalogup/internal/engine"
	"github.com/loykin/catalogup/internal/guard"
	"github.com/loykin/catalogup/internal/registry"
	"github.com/loykin/catalogup/internal/schema"
	"github.com/loykin/catalogup/internal/store"
	"github.com/loykin/catalogup/internal/version"
)

// Re-export commonly used types for public API

type Version = version.Version

// ParseVersion parses a dotted numeric version such as 2.7.2.
func ParseVersion(s string) (Version, error) { return version.Parse(s) }

type (
	Accessor          = schema.Accessor
	DBAccessor        = schema.DBAccessor
	DatabaseConfig    = schema.Config
	SchemaAccessError = schema.SchemaAccessError
)

type (
	Catalog               = catalog.Catalog
	CatalogBase           = catalog.Base
	CatalogExecutionError = catalog.CatalogExecutionError
	GuardedAction         = guard.Action
)

type (
	Registry           = registry.Registry
	Plan               = registry.Plan
	NoUpgradePathError = registry.NoUpgradePathError
)

type (
	Engine       = engine.Engine
	EngineOption = engine.Option
	Result       = engine.Result
	State        = engine.State
	Observer     = engine.Observer
	Store        = store.Store
	RunRecord    = store.RunRecord
)

const (
	StateIdle         = engine.StateIdle
	StatePlanSelected = engine.StatePlanSelected
	StateDDLPhase     = engine.StateDDLPhase
	StateDMLPhase     = engine.StateDMLPhase
	StateCommitted    = engine.StateCommitted
	StateFailed       = engine.StateFailed
)

var (
	ErrDuplicateCatalog = registry.ErrDuplicateCatalog
	ErrNoVersionStamp   = engine.ErrNoVersionStamp
	ErrInvalidVersion   = version.ErrInvalidVersion
)

// Engine options
var (
	WithObserver       = engine.WithObserver
	WithAssumedVersion = engine.WithAssumedVersion
)

// Logging
type (
	Logger   = common.Logger
	LogLevel = common.LogLevel
)

const (
	LogLevelError = common.LogLevelError
	LogLevelWarn  = common.LogLevelWarn
	LogLevelInfo  = common.LogLevelInfo
	LogLevelDebug = common.LogLevelDebug
)

func NewLogger(level LogLevel) *Logger     { return common.NewLogger(level) }
func NewJSONLogger(level LogLevel) *Logger { return common.NewJSONLogger(level) }
func SetDefaultLogger(l *Logger)           { common.SetDefaultLogger(l) }
func EnableMasking(enabled bool)           { common.EnableMasking(enabled) }

// MaskDSN hides the password of a connection string for display.
func MaskDSN(dsn string) string { return common.MaskDSN(dsn) }

// NewRegistry returns an empty catalog registry.
func NewRegistry() *Registry { return registry.New() }

// DefaultRegistry returns a registry holding the shipped release catalogs bound to acc.
func DefaultRegistry(acc Accessor) *Registry { return catalogs.Default(acc) }

// Session is an open managed database with its bookkeeping store.
type Session struct {
	Accessor *DBAccessor
	Store    *Store
}

// Open connects to the managed database and ensures the bookkeeping tables exist.
func Open(ctx context.Context, cfg DatabaseConfig) (*Session, error) {
	acc, err := schema.OpenAccessor(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st := store.FromAccessor(acc)
	if err := st.Ensure(); err != nil {
		_ = acc.DB().Close()
		return nil, err
	}
	return &Session{Accessor: acc, Store: st}, nil
}

func (s *Session) Close() error {
	return s.Accessor.DB().Close()
}

// NewEngine builds an engine over reg that records history in the session store.
func (s *Session) NewEngine(reg *Registry, opts ...EngineOption) *Engine {
	opts = append([]EngineOption{engine.WithObserver(store.NewHistoryObserver(s.Store))}, opts...)
	return engine.New(reg, s.Store, opts...)
}

// Upgrade runs the shipped catalogs up to target.
func (s *Session) Upgrade(ctx context.Context, target Version, opts ...EngineOption) (*Result, error) {
	return s.NewEngine(DefaultRegistry(s.Accessor), opts...).Upgrade(ctx, target)
}
