package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/9endu/Dealicious/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.Service, version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
