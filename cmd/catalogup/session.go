package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loykin/catalogup/internal/catalogs"
	"github.com/loykin/catalogup/internal/engine"
	"github.com/loykin/catalogup/internal/registry"
	"github.com/loykin/catalogup/internal/schema"
	"github.com/loykin/catalogup/internal/store"
	"github.com/loykin/catalogup/internal/util"
	"github.com/loykin/catalogup/internal/version"
)

// session is one open connection to the managed database with everything a command needs.
type session struct {
	doc      *ConfigDoc
	acc      *schema.DBAccessor
	store    *store.Store
	registry *registry.Registry
}

// openSession loads the config, configures logging and connects.
func openSession(ctx context.Context, cmd *cobra.Command, v *viper.Viper) (*session, error) {
	doc, err := LoadConfig(v.GetString("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if lvl, ok := util.TrimEmptyCheck(v.GetString("log_level")); ok {
		doc.Logging.Level = lvl
	}
	if err := doc.SetupLogging(cmd.ErrOrStderr()); err != nil {
		return nil, err
	}

	dbCfg, err := doc.DatabaseConfig(v.GetString("driver"), v.GetString("dsn"))
	if err != nil {
		return nil, err
	}
	acc, err := schema.OpenAccessor(ctx, dbCfg)
	if err != nil {
		return nil, err
	}
	st := store.FromAccessor(acc)
	if err := st.Ensure(); err != nil {
		_ = acc.DB().Close()
		return nil, err
	}
	return &session{
		doc:      doc,
		acc:      acc,
		store:    st,
		registry: catalogs.Default(acc),
	}, nil
}

func (s *session) Close() error {
	return s.acc.DB().Close()
}

// engine builds an upgrade engine recording history into the store.
func (s *session) engine(assume string) (*engine.Engine, error) {
	opts := []engine.Option{engine.WithObserver(store.NewHistoryObserver(s.store))}
	if a, ok := util.TrimEmptyCheck(util.TrimWithDefault(assume, s.doc.Upgrade.AssumeVersion)); ok {
		av, err := version.Parse(a)
		if err != nil {
			return nil, fmt.Errorf("invalid assumed version: %w", err)
		}
		opts = append(opts, engine.WithAssumedVersion(av))
	}
	return engine.New(s.registry, s.store, opts...), nil
}

// target resolves the requested version, falling back to the config and then to the
// latest shipped catalog.
func (s *session) target(requested string) (version.Version, error) {
	raw := util.TrimWithDefault(requested, s.doc.Upgrade.Target)
	if raw != "" {
		return version.Parse(raw)
	}
	latest, ok := s.registry.Latest()
	if !ok {
		return version.Version{}, fmt.Errorf("no catalogs registered")
	}
	return latest.TargetVersion(), nil
}
