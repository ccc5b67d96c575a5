package domain_test

import (
	"context"
	"testing"

	"github.com/driftml/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitialState(t *testing.T) {
	table := newTestTable(t)
	state := domain.NewInitialState(table, 3)

	assert.Equal(t, 3, state.GroupSize())
	assert.Equal(t, []int{0, 1, 2}, state.BatchIndices())
	assert.Equal(t, []float64{0, 0, 0}, state.Scores())
	for _, history := range state.ActionHistories() {
		assert.Empty(t, history)
	}
}

func TestCombinePreservesOrder(t *testing.T) {
	table := newTestTable(t)
	initial := domain.NewInitialState(table, 2)

	candidates, err := table.TakeStep(context.Background(), initial, 10, nil)
	require.NoError(t, err)
	require.Len(t, candidates, 4)

	combined := candidates[0].Combine(candidates)
	assert.Equal(t, 4, combined.GroupSize())
	for i, c := range candidates {
		assert.Equal(t, c.BatchIndices()[0], combined.BatchIndices()[i])
		assert.Equal(t, c.Scores()[0], combined.Scores()[i])
		assert.Equal(t, c.ActionHistories()[0], combined.ActionHistories()[i])
	}
}

func TestIsFinished(t *testing.T) {
	table := newTestTable(t)

	t.Run("initial state is unfinished", func(t *testing.T) {
		assert.False(t, domain.NewInitialState(table, 1).IsFinished())
	})

	t.Run("terminal action finishes", func(t *testing.T) {
		initial := domain.NewInitialState(table, 1)
		first, err := table.TakeStep(context.Background(), initial, 10, []int{2})
		require.NoError(t, err)
		require.Len(t, first, 1)
		assert.False(t, first[0].IsFinished())

		second, err := table.TakeStep(context.Background(), first[0], 10, nil)
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.True(t, second[0].IsFinished())
	})

	t.Run("panics on groups", func(t *testing.T) {
		assert.Panics(t, func() {
			domain.NewInitialState(table, 2).IsFinished()
		})
	})
}
