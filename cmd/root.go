package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/sessionplanner/config"
	"github.com/kilianp07/sessionplanner/infra/logger"
)

const defaultConfig = "config.yaml"

var (
	cfgPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:          "planner",
	Short:        "Clinician schedule planner",
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultConfig, "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log_level from the configuration")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration and applies the log level. A missing
// default config file is not an error: defaults and environment apply.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cfgPath
	if !cmd.Flags().Changed("config") && path == defaultConfig {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if !logger.SetLevel(level) {
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return cfg, nil
}
