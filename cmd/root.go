package cmd

import (
	"fmt"
	"os"

	"ganeti-netbox-sync/core/config"
	"ganeti-netbox-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	verbose    bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "ganeti-netbox-sync",
	Short: "Synchronize Ganeti instances into NetBox",
	Long: `ganeti-netbox-sync keeps the virtual machines of a NetBox cluster in line
with the instances of a Ganeti cluster, and dumps NetBox tables for backup.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format and debug level give ISO8601 timestamps for CLI users
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultFile, "Config file to load (INI, YAML or TOML)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// setup loads the configuration and builds the application logger.
// The default config file may be absent; an explicit --config must exist.
func setup(cmd *cobra.Command, debug bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configFile, !cmd.Flags().Changed("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if verbose || debug {
		cfg.Log.Level = "debug"
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	l.Debug("Loaded configuration", zap.String("file", configFile))

	return cfg, l, nil
}
