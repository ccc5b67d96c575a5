package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/driftml/lattice/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "Lattice is a batched beam search engine over scored transition tables",
	Long: `Lattice decodes the highest scoring action sequences from a transition
table using beam search. Tables are plain YAML files; runs can be
rendered, stored, or served over HTTP and MCP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("table", "table.yaml", "Path to the transition table file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON instead of text")
}

// newLogger builds the logger configured by the persistent flags. Logs
// always go to stderr so command output stays clean.
func newLogger(cmd *cobra.Command) *slog.Logger {
	levelName, _ := cmd.Flags().GetString("log-level")
	jsonMode, _ := cmd.Flags().GetBool("log-json")

	level := slog.LevelInfo
	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if jsonMode {
		return logging.NewJSON(level)
	}
	return logging.New(level)
}

// tablePath resolves the table file, letting a positional argument
// override the flag default.
func tablePath(cmd *cobra.Command, args []string) string {
	path, _ := cmd.Flags().GetString("table")
	if !cmd.Flags().Changed("table") && len(args) > 0 {
		path = args[0]
	}
	return path
}
