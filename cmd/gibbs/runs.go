package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded runs",
	Long:  `List, show and remove runs recorded in the run store.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded run IDs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		ids, err := store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(ids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		record, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, domain.ErrRunNotFound) {
				return fmt.Errorf("run %q not found", args[0])
			}
			return err
		}
		return printRecord(cmd, record)
	},
}

var runsRmCmd = &cobra.Command{
	Use:   "rm <run-id>",
	Short: "Remove a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		return store.Delete(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsRmCmd)

	runsShowCmd.Flags().Bool("json", false, "Print the run record as JSON")
	runsShowCmd.Flags().Bool("plain", false, "Print the report as raw markdown")
}
