package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowtrace/internal/driver"
	"flowtrace/internal/prof"
)

var (
	traceWrap    bool
	traceJobs    int
	traceSummary bool
	traceHandle  string
	cpuProfile   string
	memProfile   string
)

func init() {
	traceCmd.Flags().BoolVar(&traceWrap, "wrap", false, "use the coarse single-wrapper strategy")
	traceCmd.Flags().IntVar(&traceJobs, "jobs", 0, "max parallel files for directory runs (0 = GOMAXPROCS)")
	traceCmd.Flags().BoolVar(&traceSummary, "summary", false, "print a run summary (needs ring or both mode)")
	traceCmd.Flags().StringVar(&traceHandle, "handle", "", "tracer handle identifier planted at call sites")
	traceCmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "write a CPU profile of the run to this file")
	traceCmd.Flags().StringVar(&memProfile, "memprofile", "", "write a heap profile after the run to this file")
}

var traceCmd = &cobra.Command{
	Use:   "trace [script|dir]",
	Short: "Run a Flow script with every call site instrumented",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		if err := applyManifestTrace(cmd); err != nil {
			return err
		}

		sink, cleanup, err := setupSink(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		profiling, err := prof.Start(cpuProfile, memProfile)
		if err != nil {
			return err
		}
		defer func() {
			if err := profiling.Stop(); err != nil {
				fmt.Fprintf(os.Stderr, "profile: %v\n", err)
			}
		}()

		strategy := driver.StrategyTrace
		if traceWrap {
			strategy = driver.StrategyWrap
		}
		opts := driver.Options{
			Strategy: strategy,
			Handle:   traceHandle,
			Sink:     sink,
			Stdout:   os.Stdout,
		}

		script, err := resolveScript(args)
		if err != nil {
			return err
		}

		info, statErr := os.Stat(script)
		if statErr != nil {
			return statErr
		}
		if info.IsDir() {
			results, err := driver.RunDir(cmd.Context(), script, opts, traceJobs)
			if err != nil {
				return err
			}
			failed := 0
			for _, r := range results {
				fmt.Print(r.Output)
				if r.Err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "%s: %v\n", r.Path, r.Err)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
		} else if err := driver.RunFile(cmd.Context(), script, opts); err != nil {
			return err
		}

		if traceSummary {
			printSummary(cmd, sink)
		}
		return nil
	},
}
