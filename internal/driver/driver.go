// Package driver runs the parse, rewrite, and execute pipeline over Flow
// sources.
package driver

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"flowtrace/internal/ast"
	"flowtrace/internal/interp"
	"flowtrace/internal/parser"
	"flowtrace/internal/rewrite"
	"flowtrace/internal/source"
	"flowtrace/internal/trace"
)

// Strategy selects the call-instrumentation rewrite applied before a unit
// runs.
type Strategy uint8

const (
	// StrategyOff runs the unit as parsed.
	StrategyOff Strategy = iota
	// StrategyTrace applies the fine-grained per-argument rewrite.
	StrategyTrace
	// StrategyWrap routes every call through the single wrapper.
	StrategyWrap
)

// String returns the string representation of Strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyOff:
		return "off"
	case StrategyTrace:
		return "trace"
	case StrategyWrap:
		return "wrap"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "off", "":
		return StrategyOff, nil
	case "trace":
		return StrategyTrace, nil
	case "wrap":
		return StrategyWrap, nil
	default:
		return StrategyOff, fmt.Errorf("invalid strategy: %q (expected: off|trace|wrap)", s)
	}
}

// Options configures one pipeline run.
type Options struct {
	Strategy Strategy
	// Handle overrides the tracer handle identifier planted at rewritten
	// call sites. Empty means rewrite.DefaultHandle.
	Handle string
	// Sink receives trace events. Nil means trace.Nop.
	Sink trace.Sink
	// Stdout receives the program's print output. Nil means os.Stdout.
	Stdout io.Writer
}

func (o *Options) handle() string {
	if o.Handle == "" {
		return rewrite.DefaultHandle
	}
	return o.Handle
}

func (o *Options) sink() trace.Sink {
	if o.Sink == nil {
		return trace.Nop
	}
	return o.Sink
}

func (o *Options) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}

// RunFile loads, parses, rewrites, and executes one source file.
func RunFile(ctx context.Context, path string, opts Options) error {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return err
	}
	Logger().Debug("loaded source file",
		zap.String("path", path),
		zap.Stringer("strategy", opts.Strategy))
	return runParsed(ctx, fs, parser.ParseFile(fs, id), opts)
}

// RunSource parses, rewrites, and executes src under the given name.
func RunSource(ctx context.Context, name, src string, opts Options) error {
	fs := source.NewFileSet()
	return runParsed(ctx, fs, parser.ParseSource(fs, name, src), opts)
}

func runParsed(ctx context.Context, fs *source.FileSet, res parser.Result, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return err
	}
	sink := opts.sink()

	unit, err := applyStrategy(res.Unit, opts, sink)
	if err != nil {
		return err
	}

	span := trace.BeginPhase(sink, "exec")
	defer span.End()

	ip := interp.New(fs, opts.stdout())
	traced := opts.Strategy != StrategyOff
	if traced {
		tracer := trace.New(sink)
		ip.Globals.Define(opts.handle(), tracer.Handle(opts.handle()))
	}
	if err := ip.RunUnit(unit, traced); err != nil {
		return formatRunErr(fs, err)
	}
	return nil
}

// applyStrategy rewrites the unit per the selected strategy.
func applyStrategy(unit *ast.Unit, opts Options, sink trace.Sink) (*ast.Unit, error) {
	if opts.Strategy == StrategyOff {
		return unit, nil
	}

	span := trace.BeginPhase(sink, "rewrite")
	defer span.End()

	Logger().Debug("rewriting unit", zap.Stringer("strategy", opts.Strategy))

	var rw rewrite.Rewriter
	switch opts.Strategy {
	case StrategyTrace:
		rw = &rewrite.TraceCalls{Handle: opts.handle()}
	case StrategyWrap:
		rw = rewrite.NewWrapCalls(opts.handle() + ".wrap_call")
	default:
		return nil, fmt.Errorf("unknown strategy: %v", opts.Strategy)
	}
	return rw.Rewrite(unit)
}

// Rewrite parses src and returns the instrumented unit rendered back to
// source form, without executing it.
func Rewrite(name, src string, opts Options) (string, error) {
	fs := source.NewFileSet()
	res := parser.ParseSource(fs, name, src)
	if err := res.Err(); err != nil {
		return "", err
	}
	unit, err := applyStrategy(res.Unit, opts, opts.sink())
	if err != nil {
		return "", err
	}
	return ast.Print(unit), nil
}

// formatRunErr renders traps with file positions.
func formatRunErr(fs *source.FileSet, err error) error {
	if trap, ok := err.(*interp.Trap); ok {
		return fmt.Errorf("%s", trap.FormatWithFiles(fs))
	}
	return err
}
