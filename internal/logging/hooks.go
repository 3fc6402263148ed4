package logging

import (
	"context"
	"log/slog"

	"github.com/aretw0/gibbs/pkg/domain"
)

// Hooks returns lifecycle hooks that write every event to logger.
// Lifecycle transitions log at Info (Warn on failure), iterations at Debug.
func Hooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLifecycle: func(ctx context.Context, e *domain.LifecycleEvent) {
			attrs := []any{
				"unit", e.Unit,
				"phase", e.Phase,
				"duration", e.Duration,
			}
			if e.Err != nil {
				logger.WarnContext(ctx, string(e.Type)+" failed", append(attrs, "kind", domain.KindOf(e.Err), "err", e.Err)...)
				return
			}
			logger.InfoContext(ctx, string(e.Type), attrs...)
		},
		OnIteration: func(ctx context.Context, e *domain.IterationEvent) {
			logger.DebugContext(ctx, "iteration",
				"n", e.Iteration,
				"lambda", e.Lambda,
				"total", e.Total,
			)
		},
		OnMinimized: func(ctx context.Context, e *domain.MinimizedEvent) {
			logger.InfoContext(ctx, "minimization finished",
				"iterations", e.Iterations,
				"gibbs", e.GibbsEnergy,
				"total_moles", e.TotalMoles,
			)
		},
	}
}
