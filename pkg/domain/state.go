package domain

import "github.com/driftml/lattice/pkg/search"

// State is a grouped hypothesis over a Table. Group members share the
// table but carry independent batch indices, cumulative scores, and
// action histories.
type State struct {
	table     *Table
	indices   []int
	scores    []float64
	histories [][]int
}

var _ search.State[*State] = (*State)(nil)

// NewInitialState creates the grouped start state for a search over
// batchSize instances: batch indices 0..batchSize-1, zero scores, empty
// histories.
func NewInitialState(table *Table, batchSize int) *State {
	s := &State{table: table}
	for i := 0; i < batchSize; i++ {
		s.indices = append(s.indices, i)
		s.scores = append(s.scores, 0)
		s.histories = append(s.histories, nil)
	}
	return s
}

// GroupSize returns the number of hypotheses in the group.
func (s *State) GroupSize() int { return len(s.indices) }

// BatchIndices returns the origin batch index of each group member.
func (s *State) BatchIndices() []int { return s.indices }

// Scores returns the cumulative log-probability of each group member.
func (s *State) Scores() []float64 { return s.scores }

// ActionHistories returns the actions taken so far per group member.
func (s *State) ActionHistories() [][]int { return s.histories }

// IsFinished reports whether the single hypothesis in this state ended
// on a terminal action. It panics on group sizes other than 1: only the
// transition function produces multi-member states, and it must never
// hand one to a finished check.
func (s *State) IsFinished() bool {
	if len(s.indices) != 1 {
		panic("IsFinished called on a state with group size != 1")
	}
	history := s.histories[0]
	if len(history) == 0 {
		return false
	}
	return s.table.IsTerminal(history[len(history)-1])
}

// Combine merges the given states into one group, preserving member
// order. The receiver is states[0]. Slices are shared, not copied;
// states are treated as immutable once created.
func (s *State) Combine(states []*State) *State {
	combined := &State{table: s.table}
	for _, st := range states {
		combined.indices = append(combined.indices, st.indices...)
		combined.scores = append(combined.scores, st.scores...)
		combined.histories = append(combined.histories, st.histories...)
	}
	return combined
}

// child creates the singleton successor of one group member, extending
// its history with action and its score with logProb.
func (s *State) child(member, action int, logProb float64) *State {
	history := make([]int, 0, len(s.histories[member])+1)
	history = append(history, s.histories[member]...)
	history = append(history, action)

	return &State{
		table:     s.table,
		indices:   []int{s.indices[member]},
		scores:    []float64{s.scores[member] + logProb},
		histories: [][]int{history},
	}
}
