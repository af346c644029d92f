package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loykin/catalogup/internal/constants"
)

// newRootCmd builds the command tree over its own viper instance.
func newRootCmd() *cobra.Command {
	v := viper.New()
	// Defaults
	v.SetDefault("config", constants.DefaultConfigPath)
	v.SetDefault("driver", "")
	v.SetDefault("dsn", "")
	v.SetDefault("log_level", "")

	// Environment variables support: CATALOGUP_CONFIG, CATALOGUP_DSN, ...
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "catalogup",
		Short:         "Upgrade a database schema through versioned upgrade catalogs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", v.GetString("config"), "path to a config yaml")
	root.PersistentFlags().String("driver", v.GetString("driver"), "database driver (sqlite, postgres); overrides config")
	root.PersistentFlags().String("dsn", v.GetString("dsn"), "database connection string; overrides config")
	root.PersistentFlags().String("log-level", v.GetString("log_level"), "log level (error, warn, info, debug); overrides config")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("driver", root.PersistentFlags().Lookup("driver"))
	_ = v.BindPFlag("dsn", root.PersistentFlags().Lookup("dsn"))
	_ = v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newUpgradeCmd(v))
	root.AddCommand(newStatusCmd(v))
	root.AddCommand(newCatalogsCmd(v))
	root.AddCommand(newHistoryCmd(v))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		exitHandler.LogFatalError(err, "command execution failed")
	}
}
