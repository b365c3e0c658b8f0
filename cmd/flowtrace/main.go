package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"flowtrace/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "flowtrace",
	Short: "Flow script runner with call tracing",
	Long:  `Flowtrace runs Flow scripts, optionally instrumenting every call site to report callees, resolved argument bindings, and return values.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().Bool("verbose", false, "log pipeline internals")
	rootCmd.PersistentFlags().String("trace", "-", "trace output path (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "calls", "trace verbosity (off|calls|args|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace output format (auto|text|ndjson|binary)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring", 4096, "ring buffer capacity for ring mode")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
