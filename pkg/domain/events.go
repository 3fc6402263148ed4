package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventInitialize EventType = "initialize"
	EventValidate   EventType = "validate"
	EventCalculate  EventType = "calculate"
	EventTerminate  EventType = "terminate"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Unit      string    `json:"unit"`
}

// LifecycleEvent is emitted after every lifecycle call, successful or not.
type LifecycleEvent struct {
	EventBase
	Phase    Phase         `json:"phase"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration,omitempty"`
}

// IterationEvent is emitted after each solver iteration.
type IterationEvent struct {
	Unit      string      `json:"unit,omitempty"`
	Iteration int         `json:"iteration"`
	Lambda    float64     `json:"lambda"`
	Total     float64     `json:"total"`
	Amounts   Composition `json:"amounts"`
}

// MinimizedEvent is emitted once the iteration loop finished.
type MinimizedEvent struct {
	Unit        string  `json:"unit,omitempty"`
	Iterations  int     `json:"iterations"`
	GibbsEnergy float64 `json:"gibbs_energy"`
	TotalMoles  float64 `json:"total_moles"`
}

// LifecycleHooks defines callbacks for unit operation observability.
// Hooks are purely observational; any of them may be nil.
type LifecycleHooks struct {
	OnLifecycle func(context.Context, *LifecycleEvent)
	OnIteration func(context.Context, *IterationEvent)
	OnMinimized func(context.Context, *MinimizedEvent)
}

// MergeHooks chains several hook sets; each callback runs in argument order.
func MergeHooks(all ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range all {
		h := h
		if h.OnLifecycle != nil {
			prev := merged.OnLifecycle
			merged.OnLifecycle = func(ctx context.Context, e *LifecycleEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnLifecycle(ctx, e)
			}
		}
		if h.OnIteration != nil {
			prev := merged.OnIteration
			merged.OnIteration = func(ctx context.Context, e *IterationEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnIteration(ctx, e)
			}
		}
		if h.OnMinimized != nil {
			prev := merged.OnMinimized
			merged.OnMinimized = func(ctx context.Context, e *MinimizedEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnMinimized(ctx, e)
			}
		}
	}
	return merged
}
