package main

import (
	"fmt"
	"os"

	"github.com/driftml/lattice/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a transition table for consistency",
	Long:  `Parses the transition table and reports problems such as missing start actions or empty continuation lists.`,
	Run: func(cmd *cobra.Command, args []string) {
		table, err := domain.LoadTable(tablePath(cmd, args))
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Table %q is valid: %d actions, %d terminal\n",
			table.Name(), table.NumActions(), len(table.TerminalActions()))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
