package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRunStoreContract runs a suite of tests to verify that a RunStore implementation
// adheres to the defined interface contract.
func RunRunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	newRecord := func(id string) domain.RunRecord {
		return domain.RunRecord{
			ID:   id,
			Unit: "R-101",
			Feed: domain.MaterialState{
				Name:        "Feed",
				Composition: domain.Composition{"A": 1, "B": 2},
				Temperature: 300,
				Pressure:    101325,
			},
			Product: domain.MaterialState{
				Name:        "Feed",
				Composition: domain.Composition{"A": 1.25, "B": 1.75},
				Temperature: 500,
				Pressure:    200000,
			},
			GibbsEnergy: 3000,
			Fingerprint: "abc123",
			CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		record := newRecord(runID)

		err := store.Save(ctx, record)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, record.Unit, loaded.Unit)
		assert.Equal(t, record.Fingerprint, loaded.Fingerprint)
		assert.InDelta(t, 1.25, loaded.Product.Composition["A"], 1e-12)
		assert.InDelta(t, 500.0, loaded.Product.Temperature, 1e-12)
		assert.InDelta(t, 2.0, loaded.Feed.Composition["B"], 1e-12)
		assert.True(t, record.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		loaded.Product.Composition["A"] = 99

		again, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.InDelta(t, 1.25, again.Product.Composition["A"], 1e-12)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, newRecord(runID))
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, newRecord(id1))
		_ = store.Save(ctx, newRecord(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
