package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposition_Total(t *testing.T) {
	c := Composition{"B": 2, "A": 1}
	assert.Equal(t, []string{"A", "B"}, c.Species())
	assert.InDelta(t, 3.0, c.Total(), 1e-12)

	x := c.MoleFractions()
	assert.InDelta(t, 1.0/3.0, x["A"], 1e-12)
	assert.InDelta(t, 2.0/3.0, x["B"], 1e-12)
}

func TestComposition_MoleFractions_ZeroTotal(t *testing.T) {
	x := Composition{"A": 0}.MoleFractions()
	assert.Equal(t, 0.0, x["A"])
}

func TestMaterialState_CloneIsIndependent(t *testing.T) {
	s := MaterialState{Name: "Feed", Composition: Composition{"A": 1}}
	c := s.Clone()
	c.Composition["A"] = 42
	c.Composition["B"] = 1

	assert.Equal(t, 1.0, s.Composition["A"])
	assert.NotContains(t, s.Composition, "B")
}

func TestNewMaterialState_Defaults(t *testing.T) {
	s := NewMaterialState("Feed")
	assert.Equal(t, DefaultTemperature, s.Temperature)
	assert.Equal(t, DefaultPressure, s.Pressure)
	assert.NotNil(t, s.Composition)
}

func TestPhaseOf(t *testing.T) {
	assert.Equal(t, PhaseUninitialized, PhaseOf(false, false))
	assert.Equal(t, PhaseUninitialized, PhaseOf(false, true))
	assert.Equal(t, PhaseReady, PhaseOf(true, false))
	assert.Equal(t, PhaseCalculated, PhaseOf(true, true))
}

func TestError_KindMatching(t *testing.T) {
	err := NewError(KindInvalidArgument, "feed composition is empty")

	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NotErrorIs(t, err, ErrInvalidOperation)
	assert.Equal(t, KindInvalidArgument, KindOf(err))
	assert.Contains(t, err.Error(), "feed composition is empty")

	wrapped := fmt.Errorf("unit r1: %w", err)
	assert.ErrorIs(t, wrapped, ErrInvalidArgument)
	assert.True(t, IsDomain(wrapped))
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := errors.New("model exploded")
	err := Wrap(KindCalculationFailed, cause)

	assert.ErrorIs(t, err, ErrCalculationFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "model exploded", err.Message)
}

func TestKindOf_Foreign(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.False(t, IsDomain(nil))
}

func TestMergeHooks(t *testing.T) {
	var calls []string
	a := LifecycleHooks{
		OnLifecycle: func(ctx context.Context, e *LifecycleEvent) { calls = append(calls, "a") },
	}
	b := LifecycleHooks{
		OnLifecycle: func(ctx context.Context, e *LifecycleEvent) { calls = append(calls, "b") },
		OnMinimized: func(ctx context.Context, e *MinimizedEvent) { calls = append(calls, "b-min") },
	}

	merged := MergeHooks(a, LifecycleHooks{}, b)
	require.NotNil(t, merged.OnLifecycle)
	require.NotNil(t, merged.OnMinimized)
	assert.Nil(t, merged.OnIteration)

	merged.OnLifecycle(context.Background(), &LifecycleEvent{})
	merged.OnMinimized(context.Background(), &MinimizedEvent{})
	assert.Equal(t, []string{"a", "b", "b-min"}, calls)
}
