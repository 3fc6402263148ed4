package main

import (
	"fmt"

	"github.com/aretw0/gibbs/pkg/thermo"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the available thermodynamic models",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range thermo.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
