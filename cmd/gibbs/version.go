package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/gibbs"
	"github.com/aretw0/gibbs/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gibbs",
	Run: func(cmd *cobra.Command, args []string) {
		if isTerminal(cmd.OutOrStdout()) {
			tui.PrintBanner(cmd.OutOrStdout())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "gibbs version %s\n", strings.TrimSpace(gibbs.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
