/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/ssargent/actfast/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the actfast REST API server. Recordings posted to /api/v1/decode are
decoded concurrently and can be kept in the result store under the data directory.

The API key comes from the config file (see 'actfast init') unless --api-key is given.

Examples:
  actfast serve
  actfast serve --port 9000 --bind 0.0.0.0
  actfast serve --api-key=mysecretkey --data-dir ./data`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		state := stateFrom(cmd)
		cfg := state.config

		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.Security.APIKey, _ = cmd.Flags().GetString("api-key")
		}

		if cfg.Security.APIKey == "" || cfg.Security.APIKey == "auto" {
			return fmt.Errorf("no API key configured (run 'actfast init' or pass --api-key)")
		}

		store, err := openStore(state)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, store.Close())
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		starter := container.GetServerFactory().CreateServerStarter()
		return starter.StartServer(ctx, store, api.ServerConfig{
			Bind:          cfg.Bind,
			Port:          cfg.Port,
			APIKey:        cfg.Security.APIKey,
			MaxUploadSize: cfg.Security.MaxUploadSize,
			Strict:        cfg.Decode.Strict,
			HexPages:      cfg.Decode.HexPages,
		}, state.logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().StringP("data-dir", "d", "./data", "Data directory for the result store")
	serveCmd.Flags().String("api-key", "", "API key for client authentication")
}
