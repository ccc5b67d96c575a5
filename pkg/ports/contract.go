package ports

import (
	"context"
	"testing"
	"time"

	"github.com/driftml/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRunStoreContract runs a suite of tests to verify that a RunStore
// implementation adheres to the defined interface contract.
func RunRunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()

	newRun := func(id string, offset time.Duration) *domain.Run {
		return &domain.Run{
			ID:        id,
			Table:     "contract",
			CreatedAt: time.Now().UTC().Add(offset).Truncate(time.Second),
			NumSteps:  5,
			BeamSize:  2,
			BatchSize: 1,
			Results: map[int][]domain.Hypothesis{
				0: {{Score: -0.75, Actions: []int{1, 2}}},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		run := newRun("contract-run-1", 0)
		require.NoError(t, store.Save(ctx, run), "Save should not return error")

		loaded, err := store.Load(ctx, run.ID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, run.ID, loaded.ID)
		assert.Equal(t, run.Table, loaded.Table)
		require.Len(t, loaded.Results[0], 1)
		assert.Equal(t, []int{1, 2}, loaded.Results[0][0].Actions)
		assert.InDelta(t, -0.75, loaded.Results[0][0].Score, 1e-12)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "no-such-run")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("List Oldest First", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newRun("contract-run-2", time.Second)))
		require.NoError(t, store.Save(ctx, newRun("contract-run-3", 2*time.Second)))

		ids, err := store.List(ctx)
		require.NoError(t, err)

		positions := make(map[string]int, len(ids))
		for i, id := range ids {
			positions[id] = i
		}
		require.Contains(t, positions, "contract-run-1")
		require.Contains(t, positions, "contract-run-2")
		require.Contains(t, positions, "contract-run-3")
		assert.Less(t, positions["contract-run-1"], positions["contract-run-2"])
		assert.Less(t, positions["contract-run-2"], positions["contract-run-3"])
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "contract-run-1"))

		_, err := store.Load(ctx, "contract-run-1")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)

		// Deleting again is a no-op.
		assert.NoError(t, store.Delete(ctx, "contract-run-1"))
	})
}
