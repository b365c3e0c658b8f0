package main

import (
	"os"

	"github.com/spf13/cobra"

	"flowtrace/internal/driver"
)

var runCmd = &cobra.Command{
	Use:   "run [script]",
	Short: "Run a Flow script without instrumentation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		script, err := resolveScript(args)
		if err != nil {
			return err
		}
		return driver.RunFile(cmd.Context(), script, driver.Options{
			Strategy: driver.StrategyOff,
			Stdout:   os.Stdout,
		})
	},
}
