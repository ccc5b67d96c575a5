package lattice_test

import (
	"context"
	"fmt"
	"log"

	"github.com/driftml/lattice"
	"github.com/driftml/lattice/pkg/domain"
)

// ExampleNew demonstrates searching a small hand-built transition table.
func ExampleNew() {
	// 1. Define the transition system: action 1 is the likely start,
	// action 3 ends a hypothesis.
	table, err := domain.NewTable("greeting",
		[]domain.ScoredAction{
			{Action: 1, LogProb: -0.5},
			{Action: 2, LogProb: -2.0},
		},
		map[int][]domain.ScoredAction{
			1: {{Action: 3, LogProb: -0.25}},
			2: {{Action: 3, LogProb: -0.25}},
		},
		[]int{3},
	)
	if err != nil {
		log.Fatal(err)
	}

	// 2. Initialize the engine.
	engine, err := lattice.New(table, lattice.WithBeamSize(2))
	if err != nil {
		log.Fatal(err)
	}

	// 3. Search for the best terminal sequences.
	run, err := engine.Decode(context.Background(), 10)
	if err != nil {
		log.Fatal(err)
	}

	for _, hypothesis := range run.Results[0] {
		fmt.Printf("%v %.2f\n", hypothesis.Actions, hypothesis.Score)
	}
	// Output:
	// [1 3] -0.75
	// [2 3] -2.25
}
