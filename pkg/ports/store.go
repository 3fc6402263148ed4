package ports

import (
	"context"

	"github.com/aretw0/gibbs/pkg/domain"
)

// RunStore defines the interface for persisting calculation outcomes.
// This lets hosts audit and replay past runs.
type RunStore interface {
	// Save persists the record under record.ID, overwriting any previous value.
	Save(ctx context.Context, record domain.RunRecord) error

	// Load retrieves a record.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (domain.RunRecord, error)

	// Delete removes a record. Deleting a missing run is not an error.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of all stored runs.
	List(ctx context.Context) ([]string, error)
}
