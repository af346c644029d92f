package constants

import "time"

// Database Constants
const (
	// PostgreSQL defaults
	DefaultPostgresPort    = 5432
	DefaultPostgresSSLMode = "disable"

	// Connection pool settings
	DefaultPostgresMaxConnections = 4
	DefaultPostgresMaxIdleConns   = 2
	DefaultSQLiteMaxConnections   = 1 // SQLite allows only one writer
	DefaultSQLiteMaxIdleConns     = 1

	// SQLite busy timeout in milliseconds
	DefaultSQLiteBusyTimeoutMS = 5000
)

// Time and Duration Constants
const (
	DefaultMaxConnLifetime = 5 * time.Minute
	DefaultMaxIdleTime     = 1 * time.Minute
	DefaultConnectTimeout  = 30 * time.Second
)

// Bookkeeping tables
const (
	MetainfoTable       = "metainfo"
	VersionMetainfoKey  = "version"
	UpgradeHistoryTable = "upgrade_history"
	GooseVersionTable   = "catalogup_goose_version"
	DefaultHistoryLimit = 50
	DefaultConfigPath   = "./config/catalogup.yaml"
	DefaultSQLiteDBFile = "catalogup.db"
	EnvPrefix           = "CATALOGUP"
)
