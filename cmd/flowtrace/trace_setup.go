package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flowtrace/internal/driver"
	"flowtrace/internal/trace"
)

// setupLogging installs a development logger on the driver when --verbose
// is set.
func setupLogging(cmd *cobra.Command) error {
	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return err
	}
	if !verbose {
		return nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	driver.SetLogger(logger)
	return nil
}

// setupSink reads the trace flags and builds the event sink. The returned
// cleanup closes the sink.
func setupSink(cmd *cobra.Command) (trace.Sink, func(), error) {
	flags := cmd.Root().PersistentFlags()

	output, err := flags.GetString("trace")
	if err != nil {
		return nil, nil, err
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, nil, err
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return nil, nil, err
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, nil, err
	}
	ringSize, err := flags.GetInt("trace-ring")
	if err != nil {
		return nil, nil, err
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, nil, err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, nil, err
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, nil, err
	}

	sink, err := trace.NewSink(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: output,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		// Best-effort close: the trace output must not fail the run.
		_ = sink.Close()
	}
	return sink, cleanup, nil
}

// ringOf returns the ring sink behind s, when one is present.
func ringOf(s trace.Sink) *trace.RingSink {
	switch v := s.(type) {
	case *trace.RingSink:
		return v
	case *trace.MultiSink:
		for _, ev := range v.Sinks() {
			if ring, ok := ev.(*trace.RingSink); ok {
				return ring
			}
		}
	}
	return nil
}
