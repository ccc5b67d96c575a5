package domain

import "time"

// Hypothesis is one ranked search result: an action sequence and its
// cumulative log-probability.
type Hypothesis struct {
	Score   float64 `json:"score"`
	Actions []int   `json:"actions"`
}

// Run records one completed search so it can be persisted, listed, and
// rendered later.
type Run struct {
	ID              string    `json:"id"`
	Table           string    `json:"table,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	NumSteps        int       `json:"num_steps"`
	BeamSize        int       `json:"beam_size"`
	PerNodeBeamSize int       `json:"per_node_beam_size"`
	BatchSize       int       `json:"batch_size"`

	// Constraint is the forced initial sequence, if the run was
	// constrained.
	Constraint []int `json:"constraint,omitempty"`

	// Results holds the ranked finished hypotheses per batch index.
	Results map[int][]Hypothesis `json:"results"`

	// Beams is the per-step trajectory log, present when beam details
	// were enabled.
	Beams [][]Hypothesis `json:"beams,omitempty"`
}

// Best returns the top hypothesis for a batch index, or false when the
// search produced nothing for it.
func (r *Run) Best(batchIndex int) (Hypothesis, bool) {
	results := r.Results[batchIndex]
	if len(results) == 0 {
		return Hypothesis{}, false
	}
	return results[0], true
}
