package search

import (
	"context"
	"fmt"
	"sort"
)

// BeamEntry is one candidate snapshot in the beam trajectory log.
type BeamEntry struct {
	Score         float64
	ActionHistory []int
}

// StepStats summarizes one completed search step for observers.
type StepStats struct {
	// Step is the 1-based step number.
	Step int
	// Candidates is the number of states the transition function produced.
	Candidates int
	// Finished is the number of candidates that finished at this step.
	Finished int
	// Active is the number of states surviving onto the beam.
	Active int
}

// BeamSearch explores a transition system breadth-first, keeping the
// beamSize best hypotheses per batch instance at every step.
//
// A BeamSearch instance is not safe for concurrent use when beam details
// are enabled, since the trajectory log is owned by the instance and
// rewritten on every Search call.
type BeamSearch[S State[S]] struct {
	beamSize        int
	perNodeBeamSize int

	// allowedTransitions is non-nil when decoding is constrained to an
	// initial sequence. Keys are encoded action prefixes.
	allowedTransitions map[string]int

	keepBeamDetails bool
	beams           [][]BeamEntry

	observer func(StepStats)
}

// Option configures a BeamSearch.
type Option func(*options)

type options struct {
	perNodeBeamSize int
	initialSequence []int
	keepBeamDetails bool
	observer        func(StepStats)
}

// WithPerNodeBeamSize caps the number of candidates considered per group
// member at each step. Defaults to the beam size. Values smaller than the
// beam size can add diversity to the search (Freitag and Al-Onaizan 2017).
func WithPerNodeBeamSize(n int) Option {
	return func(o *options) {
		o.perNodeBeamSize = n
	}
}

// WithInitialSequence constrains the search to follow the given action
// sequence for as long as the current history is one of its prefixes.
func WithInitialSequence(sequence []int) Option {
	return func(o *options) {
		o.initialSequence = sequence
	}
}

// WithBeamDetails enables the beam trajectory log, readable via Beams.
func WithBeamDetails() Option {
	return func(o *options) {
		o.keepBeamDetails = true
	}
}

// WithStepObserver registers a callback invoked after every completed
// step. Used for metrics; it must not retain the stats beyond the call.
func WithStepObserver(fn func(StepStats)) Option {
	return func(o *options) {
		o.observer = fn
	}
}

// New creates a beam search engine. beamSize and the per-node beam size
// must be positive; invalid sizes are rejected outright rather than
// clamped.
func New[S State[S]](beamSize int, opts ...Option) (*BeamSearch[S], error) {
	o := options{perNodeBeamSize: beamSize}
	for _, opt := range opts {
		opt(&o)
	}

	if beamSize <= 0 {
		return nil, fmt.Errorf("beam size must be positive, got %d", beamSize)
	}
	if o.perNodeBeamSize <= 0 {
		return nil, fmt.Errorf("per-node beam size must be positive, got %d", o.perNodeBeamSize)
	}

	b := &BeamSearch[S]{
		beamSize:        beamSize,
		perNodeBeamSize: o.perNodeBeamSize,
		keepBeamDetails: o.keepBeamDetails,
		observer:        o.observer,
	}
	if o.initialSequence != nil {
		// The prefix tree builder is batched; the constraint here is a
		// single target sequence, so wrap it as a batch of one group of
		// one sequence and take the only tree.
		b.allowedTransitions = ConstructPrefixTree([][][]int{{o.initialSequence}})[0]
	}
	return b, nil
}

// ConstrainedTo returns a new engine with the same beam sizes,
// constrained to the given initial sequence and with beam details
// enabled. Useful for checking whether a known-good derivation survives
// on the beam.
func (b *BeamSearch[S]) ConstrainedTo(initialSequence []int) *BeamSearch[S] {
	constrained, err := New[S](b.beamSize,
		WithPerNodeBeamSize(b.perNodeBeamSize),
		WithInitialSequence(initialSequence),
		WithBeamDetails(),
		WithStepObserver(b.observer),
	)
	if err != nil {
		// The receiver already validated both sizes.
		panic(err)
	}
	return constrained
}

// Beams returns the trajectory log of the most recent Search call: one
// entry per completed step, holding (score, action history) pairs for
// every candidate considered at that step, plus the finished states of
// batch index 0 back-filled by depth. Empty unless beam details are
// enabled. The returned slices are owned by the engine; callers must not
// modify them.
func (b *BeamSearch[S]) Beams() [][]BeamEntry {
	return b.beams
}

// SearchOption configures a single Search call.
type SearchOption func(*searchOptions)

type searchOptions struct {
	keepFinalUnfinishedStates bool
}

// WithoutFinalUnfinishedStates drops hypotheses that are still unfinished
// when the step budget runs out. By default they are retained, so the
// caller always gets a result even if nothing reaches a terminal state.
func WithoutFinalUnfinishedStates() SearchOption {
	return func(o *searchOptions) {
		o.keepFinalUnfinishedStates = false
	}
}

// Search runs the beam search for at most numSteps steps from
// initialState and returns, per batch index, the finished states ranked
// by non-increasing score and truncated to the beam size. Ties keep
// their discovery order.
//
// numSteps is the only bound on the loop; the search also stops early
// when no active hypotheses remain. Any error from the transition
// function aborts the search with no partial result.
func (b *BeamSearch[S]) Search(
	ctx context.Context,
	numSteps int,
	initialState S,
	transitionFunction TransitionFunction[S],
	opts ...SearchOption,
) (map[int][]S, error) {
	if numSteps <= 0 {
		return nil, fmt.Errorf("num steps must be positive, got %d", numSteps)
	}
	o := searchOptions{keepFinalUnfinishedStates: true}
	for _, opt := range opts {
		opt(&o)
	}

	finished := make(map[int][]S)
	states := []S{initialState}

	if b.keepBeamDetails {
		b.beams = b.beams[:0]
	}

	for step := 1; len(states) > 0 && step <= numSteps; step++ {
		grouped := states[0].Combine(states)

		// The only possible restriction on actions is that we're still
		// following the constrained initial sequence, checked against the
		// first group member's history (the constraint is meant for
		// single-instance forced decoding).
		var allowedActions []int
		if b.allowedTransitions != nil {
			if next, ok := b.allowedTransitions[prefixKey(grouped.ActionHistories()[0])]; ok {
				allowedActions = []int{next}
			}
		}

		candidates, err := transitionFunction.TakeStep(ctx, grouped, b.perNodeBeamSize, allowedActions)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}

		nextStates := make(map[int][]S)
		var batchOrder []int
		finishedThisStep := 0

		for _, candidate := range candidates {
			// Candidates have group size 1; IsFinished below enforces it.
			batchIndex := candidate.BatchIndices()[0]
			if candidate.IsFinished() {
				finished[batchIndex] = append(finished[batchIndex], candidate)
				finishedThisStep++
				continue
			}
			if step == numSteps && o.keepFinalUnfinishedStates {
				finished[batchIndex] = append(finished[batchIndex], candidate)
			}
			if _, seen := nextStates[batchIndex]; !seen {
				batchOrder = append(batchOrder, batchIndex)
			}
			nextStates[batchIndex] = append(nextStates[batchIndex], candidate)
		}

		states = nil
		var stepLog []BeamEntry
		for _, batchIndex := range batchOrder {
			batchStates := nextStates[batchIndex]

			// The transition function already ranked these, so the
			// surviving beam is simply the head of the list.
			surviving := batchStates
			if len(surviving) > b.beamSize {
				surviving = surviving[:b.beamSize]
			}
			states = append(states, surviving...)

			if b.keepBeamDetails {
				for _, s := range batchStates {
					stepLog = append(stepLog, BeamEntry{
						Score:         s.Scores()[0],
						ActionHistory: s.ActionHistories()[0],
					})
				}
			}
		}
		if b.keepBeamDetails {
			b.beams = append(b.beams, stepLog)
		}

		if b.observer != nil {
			b.observer(StepStats{
				Step:       step,
				Candidates: len(candidates),
				Finished:   finishedThisStep,
				Active:     len(states),
			})
		}
	}

	// Back-fill finished states into the trajectory log by depth. Like the
	// constraint above, the log is a single-instance diagnostic and only
	// covers batch index 0.
	if b.keepBeamDetails {
		for _, state := range finished[0] {
			history := state.ActionHistories()[0]
			for len(b.beams) < len(history) {
				b.beams = append(b.beams, nil)
			}
			b.beams[len(history)-1] = append(b.beams[len(history)-1], BeamEntry{
				Score:         state.Scores()[0],
				ActionHistory: history,
			})
		}
	}

	best := make(map[int][]S, len(finished))
	for batchIndex, batchStates := range finished {
		ranked := make([]S, len(batchStates))
		copy(ranked, batchStates)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Scores()[0] > ranked[j].Scores()[0]
		})
		if len(ranked) > b.beamSize {
			ranked = ranked[:b.beamSize]
		}
		best[batchIndex] = ranked
	}
	return best, nil
}
