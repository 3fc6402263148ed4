package main

import (
	"fmt"

	"github.com/aretw0/gibbs"
	"github.com/aretw0/gibbs/internal/config"
	"github.com/aretw0/gibbs/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <case>",
	Short: "Check a case file without calculating",
	Long:  `Loads a case file, attaches its model and runs Initialize and Validate.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}

		c, err := config.Load(args[0])
		if err != nil {
			return err
		}

		r := gibbs.New(append(c.Options(), gibbs.WithLogger(logger))...)
		if err := c.Apply(r); err != nil {
			return err
		}
		if err := r.Initialize(); err != nil {
			return err
		}
		defer r.Terminate()

		if err := r.Validate(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), tui.Failure("case is invalid"))
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), tui.Success(fmt.Sprintf("%s is valid (%d species, model %s)",
			c.Name, len(c.Feed.Composition), c.Model.Name)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
