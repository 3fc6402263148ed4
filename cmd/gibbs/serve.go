package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/gibbs"
	httpAdapter "github.com/aretw0/gibbs/pkg/adapters/http"
	"github.com/aretw0/gibbs/pkg/observability"
	"github.com/aretw0/gibbs/pkg/unit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Hosts named reactor units behind a JSON API. Every successful calculation
is recorded in the run store. With the redis store, unit access is also
serialized across replicas.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		withMetrics, _ := cmd.Flags().GetBool("metrics")

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}

		store, locker, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		mgrOpts := []unit.Option{unit.WithLogger(logger)}
		if locker != nil {
			mgrOpts = append(mgrOpts, unit.WithLocker(locker))
		}

		var handlerOpts []httpAdapter.Option
		handlerOpts = append(handlerOpts, httpAdapter.WithLogger(logger))
		if withMetrics {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := observability.NewMetrics(reg)
			mgrOpts = append(mgrOpts, unit.WithUnitOptions(gibbs.WithLifecycleHooks(metrics.Hooks())))
			handlerOpts = append(handlerOpts, httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
		}

		mgr := unit.NewManager(store, mgrOpts...)
		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           httpAdapter.NewHandler(mgr, handlerOpts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("Starting gibbs server", "addr", srv.Addr, "metrics", withMetrics)
			fmt.Fprintf(cmd.ErrOrStderr(), "Starting gibbs server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				return srv.Close()
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "gibbs server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics at /metrics")
}
