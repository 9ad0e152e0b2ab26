package main

import (
	"github.com/spf13/cobra"

	"github.com/spherical/book2md/internal/ui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	// No config is needed to print the version.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		ui.Message("book2md version %s", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
