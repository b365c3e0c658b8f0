package trace

import (
	"errors"
	"time"

	"flowtrace/internal/bind"
	"flowtrace/internal/interp"
)

// Tracer is the observer behind the tracer handle. Rewritten units reach it
// through three probes resolved on one injected namespace value:
//
//	trace_function(callee, nargs) -> call-compatible wrapper
//	trace_argument(value, name?, nstars=n) -> value, unchanged
//	trace_return(value) -> value, unchanged
//
// trace_function pushes a pending frame; trace_argument probes attach their
// observations to the topmost pending frame; invoking the wrapper pops the
// frame, resolves the parameter bindings, emits a call event, performs the
// real call, and lets any callee failure propagate unmodified. The probes
// are a pure side channel: every one of them forwards its value untouched.
//
// Execution of a rewritten unit is single-threaded, so the frame stack
// needs no locking; only sinks must be goroutine-safe.
type Tracer struct {
	sink    Sink
	pending []*frame
	depth   int

	// last remembers the most recently completed call so the
	// trace_return probe that immediately follows it can attribute the
	// result.
	last *completed
}

// frame is one pending call: trace_function has run, the wrapper has not
// fired yet.
type frame struct {
	callee interp.Value
	arity  int
	args   []Arg
}

type completed struct {
	callee string
	depth  int
}

// New creates a Tracer emitting to sink. A nil sink means Nop.
func New(sink Sink) *Tracer {
	if sink == nil {
		sink = Nop
	}
	return &Tracer{sink: sink}
}

// Sink returns the sink this tracer emits to.
func (t *Tracer) Sink() Sink {
	return t.sink
}

// Handle returns the namespace value rewritten units resolve probes on.
// Install it in the evaluator's globals under the rewriter's handle name.
func (t *Tracer) Handle(name string) interp.Value {
	mod := interp.NewModule(name)
	self := interp.ModuleVal(mod)
	def := func(probe string, fn interp.BuiltinFunc) {
		mod.Set(probe, interp.BuiltinVal(&interp.Builtin{
			Name:         probe,
			Fn:           fn,
			Recv:         &self,
			RecvIsModule: true,
		}))
	}
	def("trace_function", t.traceFunction)
	def("trace_argument", t.traceArgument)
	def("trace_return", t.traceReturn)
	def("wrap_call", t.wrapCall)
	return self
}

// emit stamps and sends one event.
func (t *Tracer) emit(ev Event) {
	ev.Time = time.Now()
	ev.Seq = NextSeq()
	t.sink.Emit(&ev)
}

// traceFunction pushes a pending frame for callee and returns the wrapper
// that will perform the real call.
func (t *Tracer) traceFunction(_ *interp.Interp, args []interp.Value, kwargs []interp.Keyword) (interp.Value, error) {
	if len(args) != 2 || len(kwargs) != 0 || args[1].Kind != interp.VKInt {
		return interp.None(), errors.New("trace_function takes a callable and an argument count")
	}
	callee := args[0]
	fr := &frame{callee: callee, arity: int(args[1].Int)}
	t.pending = append(t.pending, fr)

	wrapper := &interp.Builtin{
		Name: callee.CalleeName(),
		Fn: func(ip *interp.Interp, args []interp.Value, kwargs []interp.Keyword) (interp.Value, error) {
			return t.invoke(ip, fr, args, kwargs)
		},
	}
	return interp.BuiltinVal(wrapper), nil
}

// traceArgument records one observed argument and forwards it unchanged.
// The optional second positional is the keyword name; the nstars keyword
// tags spread slots with their unpack depth.
func (t *Tracer) traceArgument(_ *interp.Interp, args []interp.Value, kwargs []interp.Keyword) (interp.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return interp.None(), errors.New("trace_argument takes a value and an optional name")
	}
	value := args[0]

	obs := Arg{Repr: value.Repr()}
	if len(args) == 2 {
		if args[1].Kind != interp.VKString {
			return interp.None(), errors.New("trace_argument name must be a string")
		}
		obs.Name = args[1].Str
	}
	for _, kw := range kwargs {
		if kw.Name != "nstars" || kw.Value.Kind != interp.VKInt {
			return interp.None(), errors.New("trace_argument accepts only the nstars keyword")
		}
		obs.NStars = int(kw.Value.Int)
	}

	if n := len(t.pending); n > 0 {
		t.pending[n-1].args = append(t.pending[n-1].args, obs)
	}
	t.emit(Event{Kind: KindArg, Depth: t.depth, Args: []Arg{obs}})
	return value, nil
}

// traceReturn reports the completed call's result and forwards it
// unchanged.
func (t *Tracer) traceReturn(_ *interp.Interp, args []interp.Value, kwargs []interp.Keyword) (interp.Value, error) {
	if len(args) != 1 || len(kwargs) != 0 {
		return interp.None(), errors.New("trace_return takes exactly one value")
	}
	ev := Event{Kind: KindReturn, Depth: t.depth, Value: args[0].Repr()}
	if t.last != nil {
		ev.Callee = t.last.callee
		ev.Depth = t.last.depth
		t.last = nil
	}
	t.emit(ev)
	return args[0], nil
}

// invoke is the wrapper body: it settles the pending frame, reports the
// call, and performs it. Callee failures pass through unmodified.
func (t *Tracer) invoke(ip *interp.Interp, fr *frame, args []interp.Value, kwargs []interp.Keyword) (interp.Value, error) {
	t.settle(fr)

	bindings, err := bind.Bind(fr.callee, args, kwargs)
	if err != nil {
		var be *bind.Error
		if !errors.As(err, &be) {
			return interp.None(), err
		}
		// Arguments that do not fit the signature still get reported;
		// the call itself will fail on its own terms below.
		bindings = bind.Opaque(args, kwargs)
	}

	name := fr.callee.CalleeName()
	t.emit(Event{
		Kind:     KindCall,
		Depth:    t.depth,
		Callee:   name,
		Arity:    fr.arity,
		Atomic:   !isTraced(fr.callee),
		Args:     fr.args,
		Bindings: renderBindings(bindings),
	})

	depth := t.depth
	t.depth++
	result, err := ip.Call(ip.CallSpan(), fr.callee, args, kwargs)
	t.depth = depth

	if err != nil {
		t.emit(Event{Kind: KindFail, Depth: depth, Callee: name, Value: err.Error()})
		return interp.None(), err
	}

	t.last = &completed{callee: name, depth: depth}
	return result, nil
}

// wrapCall is the coarse single-wrapper probe: the original callee arrives
// as the first positional argument, everything else passes through, and
// binding, invocation, and reporting all happen here.
func (t *Tracer) wrapCall(ip *interp.Interp, args []interp.Value, kwargs []interp.Keyword) (interp.Value, error) {
	if len(args) < 1 {
		return interp.None(), errors.New("wrap_call takes the callee as its first argument")
	}
	callee := args[0]
	rest := args[1:]

	bindings, err := bind.Bind(callee, rest, kwargs)
	if err != nil {
		var be *bind.Error
		if !errors.As(err, &be) {
			return interp.None(), err
		}
		bindings = bind.Opaque(rest, kwargs)
	}

	name := callee.CalleeName()
	t.emit(Event{
		Kind:     KindCall,
		Depth:    t.depth,
		Callee:   name,
		Arity:    len(rest) + len(kwargs),
		Atomic:   !isTraced(callee),
		Bindings: renderBindings(bindings),
	})

	depth := t.depth
	t.depth++
	result, err := ip.Call(ip.CallSpan(), callee, rest, kwargs)
	t.depth = depth

	if err != nil {
		t.emit(Event{Kind: KindFail, Depth: depth, Callee: name, Value: err.Error()})
		return interp.None(), err
	}

	t.emit(Event{Kind: KindReturn, Depth: depth, Callee: name, Value: result.Repr()})
	return result, nil
}

// settle removes fr from the pending stack. The wrapper normally fires for
// the topmost frame, but a wrapper value stored and called later may not be
// on top anymore.
func (t *Tracer) settle(fr *frame) {
	for i := len(t.pending) - 1; i >= 0; i-- {
		if t.pending[i] == fr {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return
		}
	}
}

// renderBindings converts resolved bindings to their event form.
func renderBindings(bindings []interp.Binding) []Binding {
	out := make([]Binding, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, Binding{Name: b.Name, Repr: b.Value.Repr()})
	}
	return out
}

// isTraced reports whether calls into the callee's body will themselves hit
// probes. Builtins and closures from unrewritten units are atomic.
func isTraced(callee interp.Value) bool {
	switch callee.Kind {
	case interp.VKClosure:
		return callee.Obj.(*interp.Closure).Traced
	case interp.VKBoundMethod:
		return callee.Obj.(*interp.BoundMethod).Fn.Traced
	case interp.VKClass:
		cls := callee.Obj.(*interp.Class)
		if init, ok := cls.Method("init"); ok {
			return init.Traced
		}
		return false
	default:
		return false
	}
}
