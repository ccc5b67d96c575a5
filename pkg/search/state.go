package search

import "context"

// State represents one or more partial hypotheses grouped together for a
// single call to the transition function. The three group-aligned slices
// (batch indices, scores, action histories) must always have the same
// length: the group size.
//
// The type parameter S is the implementing type itself, so that Combine
// can accept and return concrete states rather than interface values.
type State[S any] interface {
	// BatchIndices returns the origin batch index of each group member.
	BatchIndices() []int

	// Scores returns the cumulative score of each group member.
	Scores() []float64

	// ActionHistories returns the actions taken so far by each group member.
	ActionHistories() [][]int

	// IsFinished reports whether the hypothesis is complete. It is only
	// defined for states with group size 1; implementations must panic
	// otherwise, as a multi-member finished check signals a bug in the
	// transition function.
	IsFinished() bool

	// Combine merges the given states (the receiver is states[0] and is
	// included in the list) into a single grouped state, preserving the
	// relative order of group members.
	Combine(states []S) S
}

// TransitionFunction scores and expands grouped states.
//
// TakeStep returns the candidate next states for every member of the
// group, each with group size 1, sorted by non-increasing score, with at
// most maxActions candidates per originating group member. When
// allowedActions is non-nil, only those actions may be taken; the cap on
// maxActions applies after the restriction.
type TransitionFunction[S State[S]] interface {
	TakeStep(ctx context.Context, state S, maxActions int, allowedActions []int) ([]S, error)
}
