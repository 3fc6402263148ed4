package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/gibbs"
	"github.com/aretw0/gibbs/internal/config"
	"github.com/aretw0/gibbs/internal/presentation/tui"
	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/aretw0/gibbs/pkg/equilibrium"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run <case>",
	Short: "Calculate the equilibrium product of a case file",
	Long: `Loads a case file (YAML or JSON), runs Initialize and Calculate on a fresh
reactor and records the result in the run store.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}

		c, err := config.Load(args[0])
		if err != nil {
			return err
		}

		opts := append(c.Options(), gibbs.WithLogger(logger))
		if cmd.Flags().Changed("iterations") {
			n, _ := cmd.Flags().GetInt("iterations")
			opts = append(opts, gibbs.WithSolverOptions(equilibrium.WithIterations(n)))
		}

		r := gibbs.New(opts...)
		if err := c.Apply(r); err != nil {
			return err
		}
		if err := r.Initialize(); err != nil {
			return err
		}
		defer r.Terminate()

		if err := r.Calculate(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), tui.Failure("calculation failed"))
			return err
		}

		record, err := r.Record()
		if err != nil {
			return err
		}

		if noSave, _ := cmd.Flags().GetBool("no-save"); !noSave {
			store, _, closer, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer closer.Close()
			if err := store.Save(cmd.Context(), record); err != nil {
				return fmt.Errorf("failed to save run: %w", err)
			}
		}

		return printRecord(cmd, record)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("json", false, "Print the run record as JSON")
	runCmd.Flags().Bool("plain", false, "Print the report as raw markdown")
	runCmd.Flags().Bool("no-save", false, "Do not record the run in the store")
	runCmd.Flags().Int("iterations", equilibrium.Iterations, "Number of relaxation steps")
}

// printRecord writes a record as JSON or as a rendered report.
func printRecord(cmd *cobra.Command, record domain.RunRecord) error {
	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	plain, _ := cmd.Flags().GetBool("plain")
	if !plain && !isTerminal(out) {
		plain = true
	}
	text, err := tui.NewRenderer(plain)(tui.Report(record))
	if err != nil {
		return err
	}
	fmt.Fprint(out, text)
	return nil
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
