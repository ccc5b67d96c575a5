package presentation_test

import (
	"testing"
	"time"

	"github.com/driftml/lattice/internal/presentation"
	"github.com/driftml/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	run := &domain.Run{
		ID:              "run-1",
		Table:           "sample",
		CreatedAt:       time.Now().UTC(),
		NumSteps:        5,
		BeamSize:        2,
		PerNodeBeamSize: 2,
		BatchSize:       1,
		Constraint:      []int{1, 2},
		Results: map[int][]domain.Hypothesis{
			0: {
				{Score: -0.75, Actions: []int{1, 2, 3}},
				{Score: -1.5, Actions: []int{1, 2, 4}},
			},
		},
		Beams: [][]domain.Hypothesis{
			{{Score: -0.5, Actions: []int{1}}},
		},
	}

	report := presentation.Markdown(run)
	assert.Contains(t, report, "run-1")
	assert.Contains(t, report, "## Batch 0")
	assert.Contains(t, report, "| 1 | -0.7500 | 1 2 3 |")
	assert.Contains(t, report, "Constrained to initial sequence `1 2`")
	assert.Contains(t, report, "step 1: 1 candidates")
}

func TestMarkdownEmpty(t *testing.T) {
	report := presentation.Markdown(&domain.Run{ID: "empty", Results: map[int][]domain.Hypothesis{}})
	assert.Contains(t, report, "No finished hypotheses")
}
