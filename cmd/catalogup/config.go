package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/loykin/catalogup/internal/common"
	"github.com/loykin/catalogup/internal/constants"
	"github.com/loykin/catalogup/internal/retry"
	"github.com/loykin/catalogup/internal/schema"
	"github.com/loykin/catalogup/internal/util"
)

type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`                   // error, warn, info, debug
	Format        string `mapstructure:"format" yaml:"format"`                 // text, json
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive"` // enable/disable DSN masking
}

type RetryConfig struct {
	MaxRetries   uint64 `mapstructure:"max_retries" yaml:"max_retries"`
	InitialDelay string `mapstructure:"initial_delay" yaml:"initial_delay"`
	MaxDelay     string `mapstructure:"max_delay" yaml:"max_delay"`
}

type UpgradeConfig struct {
	// Target version; empty means the latest shipped catalog.
	Target string `mapstructure:"target" yaml:"target"`
	// AssumeVersion is used as the installed version when the database has no stamp.
	AssumeVersion string `mapstructure:"assume_version" yaml:"assume_version"`
}

type ConfigDoc struct {
	// Database is decoded into schema.Config; keys: driver, dsn, path, host, port, user,
	// password, dbname, sslmode, connect_timeout.
	Database map[string]any `mapstructure:"database" yaml:"database"`
	Retry    RetryConfig    `mapstructure:"retry" yaml:"retry"`
	Upgrade  UpgradeConfig  `mapstructure:"upgrade" yaml:"upgrade"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

func (c *ConfigDoc) Load(path string) error {
	clean := filepath.Clean(path)
	// Ensure path points to a regular file to avoid opening directories/special files
	info, err := os.Stat(clean)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- config path is provided intentionally by the operator
	f, err := os.Open(clean)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := yaml.NewDecoder(f).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", clean, err)
	}
	return nil
}

// LoadConfig reads path. A missing file at the default location yields an empty
// document; a missing file named explicitly is an error.
func LoadConfig(path string) (*ConfigDoc, error) {
	doc := &ConfigDoc{}
	p, ok := util.TrimEmptyCheck(path)
	if !ok {
		return doc, nil
	}
	if err := doc.Load(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) && p == constants.DefaultConfigPath {
			return doc, nil
		}
		return nil, err
	}
	return doc, nil
}

// DatabaseConfig resolves the connection settings. dsn and driver override the file.
func (c *ConfigDoc) DatabaseConfig(driver, dsn string) (schema.Config, error) {
	raw := c.Database
	if raw == nil {
		raw = map[string]any{}
	}
	cfg, err := schema.DecodeConfig(raw)
	if err != nil {
		return schema.Config{}, err
	}
	if d, ok := util.TrimEmptyCheck(driver); ok {
		cfg.Driver = d
	}
	if d, ok := util.TrimEmptyCheck(dsn); ok {
		cfg.DSN = d
	}
	if cfg.DSN == "" && cfg.Path == "" && cfg.Host == "" {
		cfg.Path = constants.DefaultSQLiteDBFile
	}
	rc, err := c.Retry.toRetryConfig()
	if err != nil {
		return schema.Config{}, err
	}
	cfg.Retry = rc
	return cfg, nil
}

func (r RetryConfig) toRetryConfig() (*retry.Config, error) {
	rc := retry.DefaultConfig()
	if r.MaxRetries > 0 {
		rc.MaxRetries = r.MaxRetries
	}
	for _, f := range []struct {
		raw string
		dst *time.Duration
		key string
	}{
		{r.InitialDelay, &rc.InitialDelay, "retry.initial_delay"},
		{r.MaxDelay, &rc.MaxDelay, "retry.max_delay"},
	} {
		s, ok := util.TrimEmptyCheck(f.raw)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", f.key, s, err)
		}
		*f.dst = d
	}
	return rc, nil
}

// SetupLogging configures the global logger based on config settings
func (c *ConfigDoc) SetupLogging(w io.Writer) error {
	level, err := common.ParseLogLevel(c.Logging.Level)
	if err != nil {
		return err
	}

	format := util.TrimAndLower(c.Logging.Format)
	var logger *common.Logger
	switch format {
	case "json":
		logger = common.NewLoggerWithWriter(w, level, true)
	case "text", "":
		logger = common.NewLoggerWithWriter(w, level, false)
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json)", c.Logging.Format)
	}

	maskingEnabled := true
	if c.Logging.MaskSensitive != nil {
		maskingEnabled = *c.Logging.MaskSensitive
	}
	common.EnableMasking(maskingEnabled)
	common.SetDefaultLogger(logger)

	logger.Debug("logging configured",
		"level", level.String(),
		"format", util.TrimWithDefault(format, "text"),
		"mask_sensitive", maskingEnabled)
	return nil
}
