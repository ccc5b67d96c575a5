package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/driftml/lattice"
	"github.com/driftml/lattice/internal/presentation"
	"github.com/driftml/lattice/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a beam search and print the ranked hypotheses",
	Long:  `Decodes the transition table with beam search and prints the surviving hypotheses per batch instance, best first.`,
	Run: func(cmd *cobra.Command, args []string) {
		steps, _ := cmd.Flags().GetInt("steps")
		beamSize, _ := cmd.Flags().GetInt("beam-size")
		perNode, _ := cmd.Flags().GetInt("per-node-beam-size")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		constrain, _ := cmd.Flags().GetString("constrain")
		details, _ := cmd.Flags().GetBool("details")
		jsonMode, _ := cmd.Flags().GetBool("json")

		opts := []lattice.Option{
			lattice.WithLogger(newLogger(cmd)),
			lattice.WithBeamSize(beamSize),
			lattice.WithBatchSize(batchSize),
		}
		if perNode > 0 {
			opts = append(opts, lattice.WithPerNodeBeamSize(perNode))
		}
		if details {
			opts = append(opts, lattice.WithBeamDetails())
		}

		engine, err := lattice.Open(tablePath(cmd, args), opts...)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		var run *domain.Run
		if constrain != "" {
			constraint, err := parseConstraint(constrain)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			run, err = engine.DecodeConstrained(ctx, steps, constraint)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
		} else {
			run, err = engine.Decode(ctx, steps)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
		}

		if jsonMode {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(run); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		report := presentation.Markdown(run)
		if term.IsTerminal(int(os.Stdout.Fd())) {
			render := presentation.NewRenderer()
			if pretty, err := render(report); err == nil {
				report = pretty
			}
		}
		fmt.Print(report)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntP("steps", "s", 10, "Maximum number of search steps")
	runCmd.Flags().IntP("beam-size", "b", lattice.DefaultBeamSize, "Hypotheses kept per batch instance at each step")
	runCmd.Flags().Int("per-node-beam-size", 0, "Candidates considered per hypothesis per step (0 = beam size)")
	runCmd.Flags().Int("batch-size", 1, "Number of independent instances to decode")
	runCmd.Flags().StringP("constrain", "c", "", "Comma-separated action prefix to force, e.g. '1,4,2'")
	runCmd.Flags().Bool("details", false, "Record and print the full beam trajectory")
	runCmd.Flags().Bool("json", false, "Print the run as JSON instead of a report")

	// Make 'run' the default if no command is provided.
	rootCmd.Run = runCmd.Run
}

func parseConstraint(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	actions := make([]int, 0, len(parts))
	for _, part := range parts {
		action, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid constraint action %q: %w", part, err)
		}
		actions = append(actions, action)
	}
	return actions, nil
}
