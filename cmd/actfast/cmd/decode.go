/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ssargent/actfast/pkg/api"
	"github.com/ssargent/actfast/pkg/reader"
	"github.com/ssargent/actfast/pkg/sensors"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Decode a recording into sensor tables",
	Long: `Decode an Actigraph GT3X or GENEActiv BIN recording. The format is detected
from the file contents.

Examples:
  actfast decode subject.gt3x
  actfast decode subject.bin --format table
  actfast decode subject.gt3x --from 1700000000000000000 --to 1700000060000000000 -o window.json
  actfast decode subject.gt3x --store`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state := stateFrom(cmd)
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		store, _ := cmd.Flags().GetBool("store")

		if format != "json" && format != "table" {
			return fmt.Errorf("unknown output format %q (json or table)", format)
		}

		opts := decodeOptions(cmd, state)
		res, err := reader.DecodeFile(args[0], opts)
		if err != nil {
			return err
		}
		state.logger.Debug("decoded", zap.String("file", args[0]), zap.Strings("tables", res.TableNames()))

		if res, err = applyWindow(cmd, res); err != nil {
			return err
		}

		if store {
			if err := storeResult(cmd, state, filepath.Base(args[0]), res); err != nil {
				return err
			}
		}

		return writeResult(cmd, res, format, output)
	},
}

func decodeOptions(cmd *cobra.Command, state *appState) reader.Options {
	opts := reader.Options{
		Logger:   state.logger,
		Strict:   state.config.Decode.Strict,
		HexPages: state.config.Decode.HexPages,
	}
	if cmd.Flags().Changed("strict") {
		opts.Strict, _ = cmd.Flags().GetBool("strict")
	}
	if cmd.Flags().Changed("hex-pages") {
		opts.HexPages, _ = cmd.Flags().GetBool("hex-pages")
	}
	return opts
}

// applyWindow restricts res to [--from, --to) when either flag is set
func applyWindow(cmd *cobra.Command, res *sensors.Result) (*sensors.Result, error) {
	if !cmd.Flags().Changed("from") && !cmd.Flags().Changed("to") {
		return res, nil
	}
	from, to := int64(math.MinInt64), int64(math.MaxInt64)
	if cmd.Flags().Changed("from") {
		from, _ = cmd.Flags().GetInt64("from")
	}
	if cmd.Flags().Changed("to") {
		to, _ = cmd.Flags().GetInt64("to")
	}
	return sensors.WindowResult(res, from, to)
}

func openStore(state *appState) (api.ClosableResultStore, error) {
	if container == nil {
		return nil, fmt.Errorf("dependency container not initialized")
	}
	if err := os.MkdirAll(state.config.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return container.GetStoreOpener().OpenStore(state.config.DataDir)
}

func storeResult(cmd *cobra.Command, state *appState, name string, res *sensors.Result) (err error) {
	s, err := openStore(state)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, s.Close())
	}()

	info, err := s.Save(name, res)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Stored result %s\n", info.ID)
	return nil
}

func writeResult(cmd *cobra.Command, res *sensors.Result, format, output string) (err error) {
	w := cmd.OutOrStdout()
	if output != "" {
		var f *os.File
		if f, err = os.Create(output); err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, f.Close())
		}()
		w = f
	}

	if format == "table" {
		return writeSummary(w, res)
	}
	return writeJSON(w, res)
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().StringP("format", "f", "json", "Output format (json or table)")
	decodeCmd.Flags().StringP("output", "o", "", "Write output to a file instead of stdout")
	decodeCmd.Flags().Bool("strict", false, "Fail on records or pages with an unusable sample rate")
	decodeCmd.Flags().Bool("hex-pages", false, "GENEActiv sample lines are hex encoded")
	decodeCmd.Flags().Int64("from", 0, "Keep rows at or after this Unix time in nanoseconds")
	decodeCmd.Flags().Int64("to", 0, "Keep rows before this Unix time in nanoseconds")
	decodeCmd.Flags().Bool("store", false, "Save the result in the result store")
}
