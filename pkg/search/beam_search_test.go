package search_test

import (
	"context"
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/driftml/lattice/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testState is a minimal grouped hypothesis for exercising the engine.
type testState struct {
	indices   []int
	scores    []float64
	histories [][]int
	done      bool
}

func (s *testState) BatchIndices() []int      { return s.indices }
func (s *testState) Scores() []float64        { return s.scores }
func (s *testState) ActionHistories() [][]int { return s.histories }

func (s *testState) IsFinished() bool {
	if len(s.indices) != 1 {
		panic("IsFinished called on a state with group size != 1")
	}
	return s.done
}

func (s *testState) Combine(states []*testState) *testState {
	combined := &testState{}
	for _, st := range states {
		combined.indices = append(combined.indices, st.indices...)
		combined.scores = append(combined.scores, st.scores...)
		combined.histories = append(combined.histories, st.histories...)
	}
	return combined
}

func initialState(batchSize int) *testState {
	s := &testState{}
	for i := 0; i < batchSize; i++ {
		s.indices = append(s.indices, i)
		s.scores = append(s.scores, 0)
		s.histories = append(s.histories, nil)
	}
	return s
}

// fanoutPolicy expands every group member into childCount children, one
// per action id, scored by scoreFor. Children are emitted in action
// order per member and then stably sorted by non-increasing score, as
// the engine contract requires.
type fanoutPolicy struct {
	childCount int
	scoreFor   func(parent float64, action int) float64
	finishedAt func(history []int) bool

	maxActionsSeen []int
	allowedSeen    [][]int
	err            error
}

func (p *fanoutPolicy) TakeStep(_ context.Context, state *testState, maxActions int, allowedActions []int) ([]*testState, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.maxActionsSeen = append(p.maxActionsSeen, maxActions)
	p.allowedSeen = append(p.allowedSeen, allowedActions)

	var out []*testState
	for i := range state.indices {
		taken := 0
		for action := 0; action < p.childCount; action++ {
			if allowedActions != nil && !containsAction(allowedActions, action) {
				continue
			}
			if taken == maxActions {
				break
			}
			history := make([]int, 0, len(state.histories[i])+1)
			history = append(history, state.histories[i]...)
			history = append(history, action)

			child := &testState{
				indices:   []int{state.indices[i]},
				scores:    []float64{p.scoreFor(state.scores[i], action)},
				histories: [][]int{history},
			}
			if p.finishedAt != nil {
				child.done = p.finishedAt(history)
			}
			out = append(out, child)
			taken++
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].scores[0] > out[j].scores[0]
	})
	return out, nil
}

func containsAction(actions []int, action int) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

func uniformScore(parent float64, _ int) float64 {
	return parent + math.Log(0.5)
}

// binaryPolicy doubles every hypothesis by appending bit 0 or 1, each
// child costing log(0.5). No state ever finishes on its own.
func binaryPolicy() *fanoutPolicy {
	return &fanoutPolicy{childCount: 2, scoreFor: uniformScore}
}

func TestSearchBinaryTree(t *testing.T) {
	engine, err := search.New[*testState](2, search.WithPerNodeBeamSize(2))
	require.NoError(t, err)

	best, err := engine.Search(context.Background(), 3, initialState(1), binaryPolicy())
	require.NoError(t, err)

	require.Len(t, best, 1)
	require.Len(t, best[0], 2)

	wantScore := 3 * math.Log(0.5)
	assert.InDelta(t, wantScore, best[0][0].Scores()[0], 1e-12)
	assert.InDelta(t, wantScore, best[0][1].Scores()[0], 1e-12)

	// The policy prefers the 0-branch, and ties keep discovery order.
	assert.Equal(t, []int{0, 0, 0}, best[0][0].ActionHistories()[0])
	assert.Equal(t, []int{0, 0, 1}, best[0][1].ActionHistories()[0])
}

func TestSearchResultsBoundedAndSorted(t *testing.T) {
	policy := &fanoutPolicy{
		childCount: 5,
		scoreFor:   func(parent float64, action int) float64 { return parent - 0.1*float64(action) },
		finishedAt: func(history []int) bool { return len(history) == 3 },
	}

	engine, err := search.New[*testState](2, search.WithPerNodeBeamSize(5))
	require.NoError(t, err)

	best, err := engine.Search(context.Background(), 4, initialState(3), policy)
	require.NoError(t, err)

	require.Len(t, best, 3)
	for batchIndex, states := range best {
		assert.LessOrEqual(t, len(states), 2, "batch %d exceeds beam size", batchIndex)
		for i := 1; i < len(states); i++ {
			assert.GreaterOrEqual(t, states[i-1].Scores()[0], states[i].Scores()[0],
				"batch %d results not sorted", batchIndex)
		}
		for _, state := range states {
			assert.Equal(t, batchIndex, state.BatchIndices()[0])
		}
	}
}

func TestSearchPerNodeBeamSize(t *testing.T) {
	policy := &fanoutPolicy{
		childCount: 6,
		scoreFor:   func(parent float64, action int) float64 { return parent - 0.1*float64(action) },
	}

	engine, err := search.New[*testState](4, search.WithPerNodeBeamSize(2))
	require.NoError(t, err)

	best, err := engine.Search(context.Background(), 2, initialState(1), policy)
	require.NoError(t, err)

	for _, maxActions := range policy.maxActionsSeen {
		assert.Equal(t, 2, maxActions)
	}

	// Only the top 2 of 6 children per node are ever considered, so no
	// history may contain an action beyond 1.
	for _, state := range best[0] {
		for _, action := range state.ActionHistories()[0] {
			assert.LessOrEqual(t, action, 1)
		}
	}
}

func TestSearchKeepFinalUnfinishedStates(t *testing.T) {
	t.Run("irrelevant when every path terminates in time", func(t *testing.T) {
		newPolicy := func() *fanoutPolicy {
			return &fanoutPolicy{
				childCount: 2,
				scoreFor:   uniformScore,
				finishedAt: func(history []int) bool { return len(history) == 2 },
			}
		}

		engine, err := search.New[*testState](2)
		require.NoError(t, err)

		kept, err := engine.Search(context.Background(), 5, initialState(1), newPolicy())
		require.NoError(t, err)

		dropped, err := engine.Search(context.Background(), 5, initialState(1), newPolicy(),
			search.WithoutFinalUnfinishedStates())
		require.NoError(t, err)

		require.Len(t, kept[0], len(dropped[0]))
		for i := range kept[0] {
			assert.Equal(t, kept[0][i].ActionHistories()[0], dropped[0][i].ActionHistories()[0])
			assert.Equal(t, kept[0][i].Scores()[0], dropped[0][i].Scores()[0])
		}
	})

	t.Run("dropping leaves nothing when no path terminates", func(t *testing.T) {
		engine, err := search.New[*testState](2)
		require.NoError(t, err)

		best, err := engine.Search(context.Background(), 3, initialState(1), binaryPolicy(),
			search.WithoutFinalUnfinishedStates())
		require.NoError(t, err)
		assert.Empty(t, best)
	})
}

func TestSearchConstrained(t *testing.T) {
	engine, err := search.New[*testState](2)
	require.NoError(t, err)

	constrained := engine.ConstrainedTo([]int{1, 0})
	policy := binaryPolicy()

	best, err := constrained.Search(context.Background(), 4, initialState(1), policy)
	require.NoError(t, err)

	// Forced for the first two steps, free afterwards.
	require.Len(t, policy.allowedSeen, 4)
	assert.Equal(t, []int{1}, policy.allowedSeen[0])
	assert.Equal(t, []int{0}, policy.allowedSeen[1])
	assert.Nil(t, policy.allowedSeen[2])
	assert.Nil(t, policy.allowedSeen[3])

	// While constrained, exactly the one-action continuation is explored.
	beams := constrained.Beams()
	require.Len(t, beams, 4)
	require.Len(t, beams[0], 1)
	assert.Equal(t, []int{1}, beams[0][0].ActionHistory)
	require.Len(t, beams[1], 1)
	assert.Equal(t, []int{1, 0}, beams[1][0].ActionHistory)
	assert.Len(t, beams[2], 2)

	for _, state := range best[0] {
		assert.Equal(t, []int{1, 0}, state.ActionHistories()[0][:2])
	}
}

func TestSearchBeamDetailsBackfill(t *testing.T) {
	newPolicy := func() *fanoutPolicy {
		return &fanoutPolicy{
			childCount: 2,
			scoreFor:   uniformScore,
			finishedAt: func(history []int) bool { return len(history) == 2 },
		}
	}

	engine, err := search.New[*testState](2, search.WithBeamDetails())
	require.NoError(t, err)

	_, err = engine.Search(context.Background(), 5, initialState(1), newPolicy())
	require.NoError(t, err)

	// Finished states are back-filled at depth = history length - 1.
	beams := engine.Beams()
	require.Len(t, beams, 2)
	for _, entry := range beams[1] {
		assert.Len(t, entry.ActionHistory, 2)
	}

	// The log is rewritten from scratch on every call.
	_, err = engine.Search(context.Background(), 5, initialState(1), newPolicy())
	require.NoError(t, err)
	assert.Len(t, engine.Beams(), 2)
}

func TestSearchMultiBatch(t *testing.T) {
	policy := &fanoutPolicy{
		childCount: 2,
		scoreFor:   uniformScore,
		finishedAt: func(history []int) bool { return len(history) == 2 },
	}

	engine, err := search.New[*testState](1)
	require.NoError(t, err)

	best, err := engine.Search(context.Background(), 3, initialState(2), policy)
	require.NoError(t, err)

	require.Len(t, best, 2)
	for batchIndex, states := range best {
		require.Len(t, states, 1)
		assert.Equal(t, batchIndex, states[0].BatchIndices()[0])
	}
}

func TestSearchIdempotent(t *testing.T) {
	engine, err := search.New[*testState](3, search.WithPerNodeBeamSize(2))
	require.NoError(t, err)

	run := func() map[int][]*testState {
		policy := &fanoutPolicy{
			childCount: 4,
			scoreFor:   func(parent float64, action int) float64 { return parent - 0.25*float64(action%2) },
			finishedAt: func(history []int) bool { return len(history) == 3 },
		}
		best, err := engine.Search(context.Background(), 4, initialState(2), policy)
		require.NoError(t, err)
		return best
	}

	first := run()
	second := run()

	require.Len(t, second, len(first))
	for batchIndex, states := range first {
		require.Len(t, second[batchIndex], len(states))
		for i := range states {
			assert.Equal(t, states[i].ActionHistories()[0], second[batchIndex][i].ActionHistories()[0])
			assert.Equal(t, states[i].Scores()[0], second[batchIndex][i].Scores()[0])
		}
	}
}

func TestSearchErrorAbortsWithNoResult(t *testing.T) {
	policyErr := errors.New("scoring backend unavailable")
	policy := &fanoutPolicy{childCount: 2, scoreFor: uniformScore, err: policyErr}

	engine, err := search.New[*testState](2)
	require.NoError(t, err)

	best, err := engine.Search(context.Background(), 3, initialState(1), policy)
	require.ErrorIs(t, err, policyErr)
	assert.Nil(t, best)
}

func TestNewValidation(t *testing.T) {
	_, err := search.New[*testState](0)
	assert.Error(t, err)

	_, err = search.New[*testState](-1)
	assert.Error(t, err)

	_, err = search.New[*testState](2, search.WithPerNodeBeamSize(0))
	assert.Error(t, err)
}

func TestSearchValidation(t *testing.T) {
	engine, err := search.New[*testState](2)
	require.NoError(t, err)

	_, err = engine.Search(context.Background(), 0, initialState(1), binaryPolicy())
	assert.Error(t, err)

	_, err = engine.Search(context.Background(), -5, initialState(1), binaryPolicy())
	assert.Error(t, err)
}

func TestIsFinishedPanicsOnGroups(t *testing.T) {
	grouped := initialState(2)
	assert.Panics(t, func() { grouped.IsFinished() })
}
