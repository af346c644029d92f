package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/loykin/catalogup/internal/common"
	"github.com/loykin/catalogup/internal/constants"
	"github.com/loykin/catalogup/internal/retry"
	"github.com/loykin/catalogup/internal/util"
)

// Config describes the managed database connection.
type Config struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`

	// SQLite
	Path string `mapstructure:"path"`

	// PostgreSQL, used when DSN is empty
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	Retry          *retry.Config `mapstructure:"-"`
}

// DecodeConfig decodes a loosely typed config section (YAML or viper) into a Config.
func DecodeConfig(raw map[string]any) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid database config: %w", err)
	}
	util.TrimStructFields(&cfg)
	return cfg, nil
}

// BuildDSN returns the connection string for the configured driver.
func (c Config) BuildDSN() (string, error) {
	if dsn := strings.TrimSpace(c.DSN); dsn != "" {
		return dsn, nil
	}
	d, err := DialectFor(c.Driver)
	if err != nil {
		return "", err
	}
	switch d.Name() {
	case DriverPostgres:
		host := strings.TrimSpace(c.Host)
		if host == "" {
			return "", fmt.Errorf("postgres config requires dsn or host")
		}
		port := c.Port
		if port == 0 {
			port = constants.DefaultPostgresPort
		}
		ssl := strings.TrimSpace(c.SSLMode)
		if ssl == "" {
			ssl = constants.DefaultPostgresSSLMode
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			strings.TrimSpace(c.User), strings.TrimSpace(c.Password), host, port, strings.TrimSpace(c.DBName), ssl), nil
	default:
		path := strings.TrimSpace(c.Path)
		if path == "" {
			return ":memory:", nil
		}
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", path, constants.DefaultSQLiteBusyTimeoutMS), nil
	}
}

// Open connects to the managed database and waits until it accepts connections.
// The returned handle is exclusively owned by the caller for the duration of a run.
func Open(ctx context.Context, cfg Config) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, nil, err
	}
	dsn, err := cfg.BuildDSN()
	if err != nil {
		return nil, nil, err
	}
	logger := common.GetLogger().WithComponent("schema").WithStore(dialect.Name())
	logger.Debug("opening database", "dsn", dsn)

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, nil, accessError("Open", "", err)
	}
	dialect.ConfigurePool(db)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = constants.DefaultConnectTimeout
	}
	readyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := retry.WaitReady(readyCtx, cfg.Retry, db.PingContext); err != nil {
		_ = db.Close()
		return nil, nil, accessError("Ping", "", err)
	}

	logger.Info("database connection established")
	return db, dialect, nil
}

// OpenAccessor is Open followed by NewDBAccessor.
func OpenAccessor(ctx context.Context, cfg Config) (*DBAccessor, error) {
	db, dialect, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewDBAccessor(db, dialect), nil
}
