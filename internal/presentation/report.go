package presentation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/driftml/lattice/pkg/domain"
)

// Markdown renders a recorded run as a markdown report, suitable for
// terminals (via the glamour renderer) or plain output.
func Markdown(run *domain.Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Search run `%s`\n\n", run.ID)
	fmt.Fprintf(&b, "Table **%s** — %d steps, beam size %d, per-node beam size %d, batch size %d.\n\n",
		run.Table, run.NumSteps, run.BeamSize, run.PerNodeBeamSize, run.BatchSize)
	if len(run.Constraint) > 0 {
		fmt.Fprintf(&b, "Constrained to initial sequence `%s`.\n\n", joinActions(run.Constraint))
	}

	batchIndices := make([]int, 0, len(run.Results))
	for batchIndex := range run.Results {
		batchIndices = append(batchIndices, batchIndex)
	}
	sort.Ints(batchIndices)

	if len(batchIndices) == 0 {
		b.WriteString("No finished hypotheses.\n")
		return b.String()
	}

	for _, batchIndex := range batchIndices {
		fmt.Fprintf(&b, "## Batch %d\n\n", batchIndex)
		b.WriteString("| Rank | Score | Actions |\n")
		b.WriteString("|------|-------|---------|\n")
		for rank, hypothesis := range run.Results[batchIndex] {
			fmt.Fprintf(&b, "| %d | %.4f | %s |\n", rank+1, hypothesis.Score, joinActions(hypothesis.Actions))
		}
		b.WriteString("\n")
	}

	if len(run.Beams) > 0 {
		b.WriteString("## Beam trajectory\n\n")
		for step, entries := range run.Beams {
			fmt.Fprintf(&b, "- step %d: %d candidates\n", step+1, len(entries))
		}
	}
	return b.String()
}

func joinActions(actions []int) string {
	parts := make([]string, len(actions))
	for i, action := range actions {
		parts[i] = fmt.Sprintf("%d", action)
	}
	return strings.Join(parts, " ")
}
