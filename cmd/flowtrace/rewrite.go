package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowtrace/internal/driver"
)

var (
	rewriteWrap   bool
	rewriteHandle string
)

func init() {
	rewriteCmd.Flags().BoolVar(&rewriteWrap, "wrap", false, "use the coarse single-wrapper strategy")
	rewriteCmd.Flags().StringVar(&rewriteHandle, "handle", "", "tracer handle identifier planted at call sites")
}

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <script>",
	Short: "Print the instrumented form of a script without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}

		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		strategy := driver.StrategyTrace
		if rewriteWrap {
			strategy = driver.StrategyWrap
		}
		out, err := driver.Rewrite(args[0], string(src), driver.Options{
			Strategy: strategy,
			Handle:   rewriteHandle,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}
