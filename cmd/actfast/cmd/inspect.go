/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/klauspost/compress/zip"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/ssargent/actfast/pkg/actigraph"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file.gt3x>",
	Short: "Show the record structure of a GT3X archive",
	Long: `Frame every record of a GT3X log without decoding payloads and print a
histogram of record types, separator errors and checksum mismatches.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		zr, err := zip.OpenReader(args[0])
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, zr.Close())
		}()

		report, err := actigraph.InspectArchive(&zr.Reader)
		if err != nil {
			return err
		}
		writeInspect(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
