package rewrite

import (
	"flowtrace/internal/ast"
	"flowtrace/internal/source"
)

// DefaultHandle is the identifier rewritten units use to reach the tracer.
// The evaluator injects a namespace value under this name before running a
// rewritten unit.
const DefaultHandle = "__trace__"

// Probe names resolved on the tracer handle at every rewritten site.
const (
	probeFunction = "trace_function"
	probeArgument = "trace_argument"
	probeReturn   = "trace_return"
)

// TraceCalls is the fine-grained strategy: every call site is rebuilt as
//
//	H.trace_return(H.trace_function(callee, nargs)(H.trace_argument(a), ...))
//
// where H is the tracer handle. Each probe forwards its value unchanged, so
// the rewritten program computes exactly what the original did; the probes
// only report what flows through them.
type TraceCalls struct {
	// Handle overrides the tracer handle identifier. Empty means
	// DefaultHandle.
	Handle string
}

// NewTraceCalls returns the strategy with the default handle.
func NewTraceCalls() *TraceCalls {
	return &TraceCalls{Handle: DefaultHandle}
}

func (tc *TraceCalls) Rewrite(unit *ast.Unit) (*ast.Unit, error) {
	handle := tc.Handle
	if handle == "" {
		handle = DefaultHandle
	}
	w := &traceWrap{b: unit.Builder, handle: handle}
	t := &transformer{b: unit.Builder, wrapCall: w.wrap}
	return t.rewriteUnit(unit)
}

type traceWrap struct {
	b      *ast.Builder
	handle string
}

// probe builds H.name for the given probe name.
func (w *traceWrap) probe(sp source.Span, name string) ast.ExprID {
	return toAttr(w.b, sp, toName(w.b, sp, w.handle), name)
}

// traceArg wraps one argument value in H.trace_argument(value, "name",
// nstars=n). The name is attached only for named keyword arguments, the
// nstars tag only for spread slots.
func (w *traceWrap) traceArg(value ast.ExprID, name string, nstars int64) ast.ExprID {
	sp := w.b.Exprs.Span(value)
	args := []ast.ExprID{value}
	if name != "" {
		args = append(args, toStrLit(w.b, sp, name))
	}
	if nstars != 0 {
		return toCall(w.b, sp, w.probe(sp, probeArgument), args,
			ast.CallKeyword{Name: "nstars", Value: toIntLit(w.b, sp, nstars)})
	}
	return toCall(w.b, sp, w.probe(sp, probeArgument), args)
}

// wrap instruments one call whose callee and arguments are already
// rewritten. Slot count, names, order, and spread markers carry over to the
// rebuilt call untouched; only the probe wrappers are added.
func (w *traceWrap) wrap(sp source.Span, data ast.ExprCallData) (ast.ExprID, error) {
	b := w.b

	inline := false
	for _, arg := range data.Args {
		if b.Exprs.Kind(arg) == ast.ExprSpread {
			inline = true
		}
	}
	for _, kw := range data.Keywords {
		if kw.Name == "" {
			inline = true
		}
	}
	if inline && data.HasLegacySpread() {
		return ast.NoExprID, &StructuralError{
			Span:   sp,
			Reason: "call mixes inline spread markers with explicit spread slots",
		}
	}

	nargs := int64(len(data.Args) + len(data.Keywords))
	if data.StarArgs.IsValid() {
		nargs++
	}
	if data.KwSpread.IsValid() {
		nargs++
	}

	out := ast.ExprCallData{
		Target: toCall(b, sp, w.probe(sp, probeFunction),
			[]ast.ExprID{data.Target, toIntLit(b, sp, nargs)}),
	}
	for _, arg := range data.Args {
		if b.Exprs.Kind(arg) == ast.ExprSpread {
			// Unwrap the marker, probe the inner value with an
			// unpack-depth tag, re-star the probe's result.
			sd, _ := b.Exprs.Spread(arg)
			wrapped := w.traceArg(sd.Value, "", 1)
			out.Args = append(out.Args, b.Exprs.NewSpread(b.Exprs.Span(arg), wrapped))
			continue
		}
		out.Args = append(out.Args, w.traceArg(arg, "", 0))
	}
	for _, kw := range data.Keywords {
		var wrapped ast.ExprID
		if kw.Name == "" {
			wrapped = w.traceArg(kw.Value, "", 2)
		} else {
			wrapped = w.traceArg(kw.Value, kw.Name, 0)
		}
		out.Keywords = append(out.Keywords, ast.CallKeyword{Name: kw.Name, Value: wrapped})
	}
	if data.StarArgs.IsValid() {
		out.StarArgs = w.traceArg(data.StarArgs, "", 1)
	}
	if data.KwSpread.IsValid() {
		out.KwSpread = w.traceArg(data.KwSpread, "", 2)
	}

	inner := b.Exprs.NewCall(sp, out)
	return toCall(b, sp, w.probe(sp, probeReturn), []ast.ExprID{inner}), nil
}
