package ports

import (
	"context"

	"github.com/driftml/lattice/pkg/domain"
)

// RunStore defines the interface for persisting recorded search runs.
type RunStore interface {
	// Save persists a run under its ID, overwriting any previous record.
	Save(ctx context.Context, run *domain.Run) error

	// Load retrieves a run by ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, id string) (*domain.Run, error)

	// List returns the IDs of all stored runs, oldest first.
	List(ctx context.Context) ([]string, error)

	// Delete removes a run by ID. Deleting a missing run is not an error.
	Delete(ctx context.Context, id string) error
}
