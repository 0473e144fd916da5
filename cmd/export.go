package cmd

import (
	"github.com/spf13/cobra"
)

// exportCmd is the explicit form of running sdeexport without a subcommand
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Build the export document (default command)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runExport(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
