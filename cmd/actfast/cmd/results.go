/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/ssargent/actfast/pkg/api"
)

// resultsCmd represents the results command
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Manage stored results",
	Long: `List, show and delete decoded results kept in the result store
(see 'actfast decode --store').`,
}

// withStore runs fn against the result store and closes it afterwards
func withStore(cmd *cobra.Command, fn func(api.ClosableResultStore) error) (err error) {
	state := stateFrom(cmd)
	if cmd.Flags().Changed("data-dir") {
		state.config.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	s, err := openStore(state)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, s.Close())
	}()
	return fn(s)
}

var listResultsCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s api.ClosableResultStore) error {
			list, err := s.List()
			if err != nil {
				return err
			}
			writeResultList(cmd.OutOrStdout(), list)
			return nil
		})
	},
}

var showResultCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		if format != "json" && format != "table" {
			return fmt.Errorf("unknown output format %q (json or table)", format)
		}

		return withStore(cmd, func(s api.ClosableResultStore) error {
			res, err := s.Get(args[0])
			if err != nil {
				return err
			}
			if res, err = applyWindow(cmd, res); err != nil {
				return err
			}
			return writeResult(cmd, res, format, output)
		})
	},
}

var deleteResultCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s api.ClosableResultStore) error {
			if err := s.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted result %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)
	resultsCmd.AddCommand(listResultsCmd, showResultCmd, deleteResultCmd)

	resultsCmd.PersistentFlags().StringP("data-dir", "d", "./data", "Data directory for the result store")

	showResultCmd.Flags().StringP("format", "f", "json", "Output format (json or table)")
	showResultCmd.Flags().StringP("output", "o", "", "Write output to a file instead of stdout")
	showResultCmd.Flags().Int64("from", 0, "Keep rows at or after this Unix time in nanoseconds")
	showResultCmd.Flags().Int64("to", 0, "Keep rows before this Unix time in nanoseconds")
}
