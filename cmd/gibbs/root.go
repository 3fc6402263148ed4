package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/gibbs/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gibbs",
	Short: "gibbs relaxes feed streams towards chemical equilibrium",
	Long: `gibbs runs a Gibbs-minimization reactor unit operation: a feed stream is
relaxed towards equilibrium at a temperature and pressure setpoint using a
pluggable thermodynamic model. Runs are recorded in a run store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (env GIBBS_LOG_LEVEL, default warn)")
	rootCmd.PersistentFlags().String("env-file", "", "Load environment variables from this file (default .env when present)")
	rootCmd.PersistentFlags().String("store", "", "Run store: memory, file, redis, sqlite (env GIBBS_STORE, default file)")
	rootCmd.PersistentFlags().String("store-path", "", "Path for file/sqlite stores (default .gibbs/runs, .gibbs/runs.db)")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address for the redis store (env GIBBS_REDIS_ADDR, default localhost:6379)")
}

// loadEnvFile loads .env style files before any flag falls back to the environment.
// A missing default .env is not an error; a missing explicit file is.
func loadEnvFile(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// flagOrEnv returns the flag value, then the environment variable, then def.
func flagOrEnv(cmd *cobra.Command, flag, env, def string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

// newLogger builds the stderr logger for a command.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := logging.ParseLevel(flagOrEnv(cmd, "log-level", "GIBBS_LOG_LEVEL", "warn"))
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(cmd.ErrOrStderr(), level), nil
}
