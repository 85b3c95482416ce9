/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/actfast/pkg/config"
	"github.com/ssargent/actfast/pkg/di"
	"github.com/ssargent/actfast/pkg/logging"
)

var container *di.Container

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

type contextKey struct{}

// appState is shared by every subcommand once the root pre-run completes
type appState struct {
	config     *config.Config
	configPath string
	logger     *zap.Logger
}

func stateFrom(cmd *cobra.Command) *appState {
	if s, ok := cmd.Context().Value(contextKey{}).(*appState); ok {
		return s
	}
	return &appState{config: config.DefaultConfig(), logger: zap.NewNop()}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "actfast",
	Short: "actfast - accelerometer recording decoder",
	Long: `actfast decodes raw wearable accelerometer recordings (Actigraph GT3X and
GENEActiv BIN) into columnar sensor tables, and can serve the decoder over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		level, _ := cmd.Flags().GetString("log-level")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		cfg := config.DefaultConfig()
		if config.ConfigExists(configPath) {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = level
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger, err := logging.New(cfg.Logging.Level)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(context.WithValue(ctx, contextKey{}, &appState{
			config:     cfg,
			configPath: configPath,
			logger:     logger,
		}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = stateFrom(cmd).logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().String("log-level", logging.DefaultLevel, "Log level (debug, info, warn, error)")
}
