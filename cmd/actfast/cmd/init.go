/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/actfast/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with a generated API key",
	Long: `Create the actfast configuration file and a secure API key for the REST API.

Examples:
  actfast init
  actfast init --data-dir /var/lib/actfast --print-key
  actfast init --config ./actfast.yaml --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state := stateFrom(cmd)
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")
		printKey, _ := cmd.Flags().GetBool("print-key")

		if config.ConfigExists(state.configPath) && !force {
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration already exists at %s. Use --force to overwrite.\n", state.configPath)
			return nil
		}

		cfg, err := config.BootstrapConfig(state.configPath, dataDir)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ Configuration created at %s\n", state.configPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Data directory: %s\n", cfg.DataDir)
		if printKey {
			fmt.Fprintf(cmd.OutOrStdout(), "API key: %s\n", cfg.Security.APIKey)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringP("data-dir", "d", "./data", "Data directory for the result store")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
	initCmd.Flags().Bool("print-key", false, "Print the generated API key")
}
