package domain

import (
	"context"
	"fmt"
	"sort"

	"github.com/driftml/lattice/pkg/search"
)

// ScoredAction is one candidate continuation with its log-probability.
type ScoredAction struct {
	Action  int     `json:"action" yaml:"action"`
	LogProb float64 `json:"log_prob" yaml:"log_prob"`
}

// Table is an enumerated transition policy. Continuation lists are kept
// sorted by non-increasing log-probability so that TakeStep can satisfy
// the search engine's ranking contract without re-sorting per call.
type Table struct {
	name        string
	start       []ScoredAction
	transitions map[int][]ScoredAction
	terminal    map[int]struct{}
}

// Compile-time check: a Table is a transition function over *State.
var _ search.TransitionFunction[*State] = (*Table)(nil)

// NewTable builds and validates a transition table. The start list must
// be non-empty. Continuation lists are sorted (stably) on construction.
func NewTable(name string, start []ScoredAction, transitions map[int][]ScoredAction, terminal []int) (*Table, error) {
	if len(start) == 0 {
		return nil, ErrNoStartActions
	}

	t := &Table{
		name:        name,
		start:       sortedByLogProb(start),
		transitions: make(map[int][]ScoredAction, len(transitions)),
		terminal:    make(map[int]struct{}, len(terminal)),
	}
	for action, continuations := range transitions {
		t.transitions[action] = sortedByLogProb(continuations)
	}
	for _, action := range terminal {
		t.terminal[action] = struct{}{}
	}
	return t, nil
}

func sortedByLogProb(actions []ScoredAction) []ScoredAction {
	sorted := make([]ScoredAction, len(actions))
	copy(sorted, actions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LogProb > sorted[j].LogProb
	})
	return sorted
}

// Name returns the table's display name.
func (t *Table) Name() string { return t.name }

// NumActions returns the number of actions with outgoing continuations,
// including the implicit start node.
func (t *Table) NumActions() int { return len(t.transitions) + 1 }

// TerminalActions returns the terminal action set in ascending order.
func (t *Table) TerminalActions() []int {
	actions := make([]int, 0, len(t.terminal))
	for action := range t.terminal {
		actions = append(actions, action)
	}
	sort.Ints(actions)
	return actions
}

// IsTerminal reports whether the action ends a hypothesis.
func (t *Table) IsTerminal(action int) bool {
	_, ok := t.terminal[action]
	return ok
}

// continuations returns the ranked continuations for a history: the
// start list for an empty history, otherwise the transitions out of the
// last action taken. A nil result means the path dies here.
func (t *Table) continuations(history []int) []ScoredAction {
	if len(history) == 0 {
		return t.start
	}
	return t.transitions[history[len(history)-1]]
}

// TakeStep expands every member of the grouped state, keeping at most
// maxActions continuations per member (after applying the allowed-action
// restriction, if any), and returns all candidates as singleton states
// sorted by non-increasing cumulative score.
func (t *Table) TakeStep(_ context.Context, state *State, maxActions int, allowedActions []int) ([]*State, error) {
	if maxActions <= 0 {
		return nil, fmt.Errorf("max actions must be positive, got %d", maxActions)
	}

	var candidates []*State
	for member := 0; member < state.GroupSize(); member++ {
		taken := 0
		for _, continuation := range t.continuations(state.histories[member]) {
			if allowedActions != nil && !allowed(allowedActions, continuation.Action) {
				continue
			}
			if taken == maxActions {
				break
			}
			candidates = append(candidates, state.child(member, continuation.Action, continuation.LogProb))
			taken++
		}
	}

	// Per-member lists are already ranked; the stable sort merges them
	// into a single globally ranked list with deterministic tie-breaks.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].scores[0] > candidates[j].scores[0]
	})
	return candidates, nil
}

func allowed(actions []int, action int) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
