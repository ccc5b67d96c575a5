/*
Package lattice is a batched beam search engine for structured
prediction: given a scored state-transition system, it finds the
highest-scoring terminal action sequences, keeping a bounded beam of
hypotheses per batch instance at every step.

The generic search core (pkg/search) works over any state type and any
transition policy; this root package wires it to a concrete, serializable
transition table (pkg/domain) and adds run recording, so search results
can be persisted, served over HTTP, and rendered from the CLI.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/driftml/lattice"
	)

	func main() {
		engine, err := lattice.Open("table.yaml", lattice.WithBeamSize(5))
		if err != nil {
			log.Fatal(err)
		}

		run, err := engine.Decode(context.Background(), 20)
		if err != nil {
			log.Fatal(err)
		}

		if best, ok := run.Best(0); ok {
			fmt.Println(best.Actions, best.Score)
		}
	}

Constrained decoding forces the search along a known action sequence and
records the full beam trajectory, which tells you whether a gold
derivation survives on the beam:

	run, err := engine.DecodeConstrained(ctx, 20, []int{3, 1, 4})
*/
package lattice
