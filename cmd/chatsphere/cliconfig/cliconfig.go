// Package cliconfig holds the persistent flags shared by the chatsphere
// sub-commands and resolves them into a config.Config.
package cliconfig

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatsphere/pkg/config"
)

const (
	FlagConfig  = "config"
	FlagEnvFile = "env-file"
	FlagDebug   = "debug"
	FlagBackend = "backend"
	FlagModel   = "model"
)

// AddPersistentFlags registers the shared flags on cmd.
func AddPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringP(FlagConfig, "c", "", "Path to TOML config file (default: ./"+config.DefaultPath+" if present)")
	flags.String(FlagEnvFile, "", "Path to .env file (default: ./"+config.DefaultEnvFile+" if present)")
	flags.Bool(FlagDebug, false, "Enable debug logging")
	flags.String(FlagBackend, "", "Model backend: hosted or local")
	flags.String(FlagModel, "", "Model identifier for the selected backend")
}

// Load reads the configuration and applies any flags set on the command
// line, which take precedence over files and environment.
func Load(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString(FlagConfig)
	envFile, _ := flags.GetString(FlagEnvFile)

	cfg, err := config.Load(config.LoadOptions{Path: path, EnvFile: envFile})
	if err != nil {
		return config.Config{}, fmt.Errorf("could not load configuration: %w", err)
	}

	if flags.Changed(FlagDebug) {
		cfg.Log.Debug, _ = flags.GetBool(FlagDebug)
	}
	if flags.Changed(FlagBackend) {
		cfg.Backend.Kind, _ = flags.GetString(FlagBackend)
	}
	if flags.Changed(FlagModel) {
		cfg.Backend.Model, _ = flags.GetString(FlagModel)
	}

	return cfg, nil
}
