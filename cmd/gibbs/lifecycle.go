package main

import (
	"fmt"

	"github.com/aretw0/gibbs/internal/presentation/graph"
	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/spf13/cobra"
)

var lifecycleCmd = &cobra.Command{
	Use:   "lifecycle",
	Short: "Print the reactor lifecycle as a Mermaid state diagram",
	RunE: func(cmd *cobra.Command, args []string) error {
		phase, _ := cmd.Flags().GetString("phase")

		var overlay *graph.Overlay
		if phase != "" {
			p := domain.Phase(phase)
			switch p {
			case domain.PhaseUninitialized, domain.PhaseReady, domain.PhaseCalculated:
			default:
				return fmt.Errorf("unknown phase %q", phase)
			}
			overlay = &graph.Overlay{Current: p}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lifecycleCmd)
	lifecycleCmd.Flags().String("phase", "", "Highlight a phase: uninitialized, ready, calculated")
}
