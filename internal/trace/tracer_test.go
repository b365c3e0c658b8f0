package trace_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"flowtrace/internal/driver"
	"flowtrace/internal/trace"
)

// traceSource runs src with the fine-grained strategy and returns the
// captured events and program output.
func traceSource(t *testing.T, src string, level trace.Level) ([]trace.Event, string) {
	t.Helper()
	ring := trace.NewRingSink(1024, level)
	var out bytes.Buffer
	err := driver.RunSource(context.Background(), "test.flow", src, driver.Options{
		Strategy: driver.StrategyTrace,
		Sink:     ring,
		Stdout:   &out,
	})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	return ring.Snapshot(), out.String()
}

func kinds(events []trace.Event) []trace.Kind {
	out := make([]trace.Kind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestTracer_CallEventSequence(t *testing.T) {
	// f(1, y=2) reports both arguments, the entered call with resolved
	// bindings, and the result.
	src := "def f(x, y) { return x + y }\nprint(f(1, y=2))\n"
	events, out := traceSource(t, src, trace.LevelArgs)

	if out != "3\n" {
		t.Errorf("program output = %q, want %q", out, "3\n")
	}

	var argReprs []string
	var calls, returns []trace.Event
	for _, ev := range events {
		switch ev.Kind {
		case trace.KindArg:
			argReprs = append(argReprs, ev.Args[0].Repr)
		case trace.KindCall:
			calls = append(calls, ev)
		case trace.KindReturn:
			returns = append(returns, ev)
		}
	}

	// Two traced calls: f and print.
	if len(calls) != 2 {
		t.Fatalf("got %d call events, want 2", len(calls))
	}
	f := calls[0]
	if f.Callee != "f" || f.Arity != 2 {
		t.Errorf("first call = %s arity %d, want f arity 2", f.Callee, f.Arity)
	}
	if f.Atomic {
		t.Error("f is a traced closure, must not be atomic")
	}
	if len(f.Bindings) != 2 ||
		f.Bindings[0].Name != "x" || f.Bindings[0].Repr != "1" ||
		f.Bindings[1].Name != "y" || f.Bindings[1].Repr != "2" {
		t.Errorf("bindings = %v, want x=1, y=2", f.Bindings)
	}

	// Arguments observed before their call, in source order.
	if len(argReprs) < 2 || argReprs[0] != "1" || argReprs[1] != "2" {
		t.Errorf("argument reprs = %v, want [1 2 ...]", argReprs)
	}

	if len(returns) == 0 || returns[0].Value != "3" {
		t.Errorf("first return = %v, want value 3", returns)
	}
}

func TestTracer_ArgumentNames(t *testing.T) {
	src := "def f(x, y) { return x }\nf(1, y=2)\n"
	events, _ := traceSource(t, src, trace.LevelArgs)

	var named []trace.Arg
	for _, ev := range events {
		if ev.Kind == trace.KindArg {
			named = append(named, ev.Args[0])
		}
	}
	if len(named) != 2 {
		t.Fatalf("got %d argument events, want 2", len(named))
	}
	if named[0].Name != "" {
		t.Errorf("positional argument carries name %q", named[0].Name)
	}
	if named[1].Name != "y" {
		t.Errorf("keyword argument name = %q, want y", named[1].Name)
	}
}

func TestTracer_SpreadArity(t *testing.T) {
	// g(*xs, **kw) reports arity 2 and tagged spread observations, and
	// the spreads still unpack correctly.
	src := `def g(a, b, z) { return a + b + z }
xs = [1, 2]
kw = {"z": 3}
print(g(*xs, **kw))
`
	events, out := traceSource(t, src, trace.LevelArgs)

	if out != "6\n" {
		t.Errorf("program output = %q, want %q", out, "6\n")
	}

	var g *trace.Event
	for i, ev := range events {
		if ev.Kind == trace.KindCall && ev.Callee == "g" {
			g = &events[i]
			break
		}
	}
	if g == nil {
		t.Fatal("no call event for g")
	}
	if g.Arity != 2 {
		t.Errorf("arity = %d, want 2", g.Arity)
	}
	if len(g.Args) != 2 || g.Args[0].NStars != 1 || g.Args[1].NStars != 2 {
		t.Errorf("observed args = %v, want nstars 1 and 2", g.Args)
	}
	if len(g.Bindings) != 3 {
		t.Errorf("bindings = %v, want a, b, z", g.Bindings)
	}
}

func TestTracer_AtomicCallees(t *testing.T) {
	src := "def f(x) { return len(x) }\nf([1, 2])\n"
	events, _ := traceSource(t, src, trace.LevelCalls)

	seen := map[string]bool{}
	for _, ev := range events {
		if ev.Kind == trace.KindCall {
			seen[ev.Callee] = ev.Atomic
		}
	}
	if atomic, ok := seen["f"]; !ok || atomic {
		t.Errorf("f atomic = %v, want traced and non-atomic", atomic)
	}
	if atomic, ok := seen["len"]; !ok || !atomic {
		t.Errorf("len atomic = %v, want atomic", atomic)
	}
}

func TestTracer_OpaqueFallbackOnBindError(t *testing.T) {
	// Arguments that do not fit the signature are still reported, with
	// synthetic keys; the call then fails on its own terms.
	src := "def f(a) { return a }\nf(1, 2, 3)\n"
	ring := trace.NewRingSink(256, trace.LevelCalls)
	err := driver.RunSource(context.Background(), "test.flow", src, driver.Options{
		Strategy: driver.StrategyTrace,
		Sink:     ring,
		Stdout:   &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("expected the call to fail")
	}
	if !strings.Contains(err.Error(), "positional") {
		t.Errorf("err = %v, want a binding failure", err)
	}

	events := ring.Snapshot()
	var call, fail *trace.Event
	for i, ev := range events {
		switch ev.Kind {
		case trace.KindCall:
			if ev.Callee == "f" {
				call = &events[i]
			}
		case trace.KindFail:
			fail = &events[i]
		}
	}
	if call == nil {
		t.Fatal("no call event despite binding failure")
	}
	if len(call.Bindings) != 3 || call.Bindings[0].Name != "0" {
		t.Errorf("bindings = %v, want synthetic keys 0, 1, 2", call.Bindings)
	}
	if fail == nil || fail.Callee != "f" {
		t.Errorf("fail event = %v, want one for f", fail)
	}
}

func TestTracer_FailurePropagatesUnmodified(t *testing.T) {
	src := "def boom() { return nope }\nboom()\n"

	plain := driver.RunSource(context.Background(), "plain.flow", src, driver.Options{
		Strategy: driver.StrategyOff,
		Stdout:   &bytes.Buffer{},
	})
	traced := driver.RunSource(context.Background(), "traced.flow", src, driver.Options{
		Strategy: driver.StrategyTrace,
		Sink:     trace.NewRingSink(64, trace.LevelCalls),
		Stdout:   &bytes.Buffer{},
	})

	if plain == nil || traced == nil {
		t.Fatal("both runs must fail")
	}
	// Same failure text, modulo the file name in the position prefix.
	plainMsg := strings.TrimPrefix(plain.Error(), "plain.flow")
	tracedMsg := strings.TrimPrefix(traced.Error(), "traced.flow")
	if plainMsg != tracedMsg {
		t.Errorf("failure changed under tracing:\nplain:  %v\ntraced: %v", plain, traced)
	}
}

func TestTracer_BindingFailureKeepsCallSitePosition(t *testing.T) {
	// A rule-2 binding failure must carry the same position traced as
	// untraced: the call site, not wherever the wrapper fired.
	src := "x = 1\ndef f(a) { return a }\nf(1, 2, 3)\n"
	run := func(strategy driver.Strategy) error {
		return driver.RunSource(context.Background(), "p.flow", src, driver.Options{
			Strategy: strategy,
			Sink:     trace.NewRingSink(64, trace.LevelCalls),
			Stdout:   &bytes.Buffer{},
		})
	}

	plain := run(driver.StrategyOff)
	if plain == nil {
		t.Fatal("expected the plain run to fail")
	}
	if !strings.HasPrefix(plain.Error(), "p.flow:3:") {
		t.Fatalf("plain failure = %v, want a p.flow:3:<col> prefix", plain)
	}

	if traced := run(driver.StrategyTrace); traced == nil || traced.Error() != plain.Error() {
		t.Errorf("traced failure = %v, want %v", traced, plain)
	}
	if wrapped := run(driver.StrategyWrap); wrapped == nil || wrapped.Error() != plain.Error() {
		t.Errorf("wrapped failure = %v, want %v", wrapped, plain)
	}
}

func TestTracer_SemanticTransparency(t *testing.T) {
	// Identical output with tracing off, fine-grained, and wrapped.
	src := `def fib(n) { if n < 2 { return n } else { return fib(n - 1) + fib(n - 2) } }
class Acc {
    def init(self) { self.total = 0 }
    def add(self, v) { self.total = self.total + v }
}
acc = Acc()
i = 0
while i < 7 { acc.add(fib(i))
 i = i + 1 }
print(acc.total)
`
	outputs := map[string]driver.Strategy{
		"off":   driver.StrategyOff,
		"trace": driver.StrategyTrace,
		"wrap":  driver.StrategyWrap,
	}
	var want string
	for name, strategy := range outputs {
		var out bytes.Buffer
		err := driver.RunSource(context.Background(), "test.flow", src, driver.Options{
			Strategy: strategy,
			Sink:     trace.NewRingSink(4096, trace.LevelCalls),
			Stdout:   &out,
		})
		if err != nil {
			t.Fatalf("%s run error: %v", name, err)
		}
		if want == "" {
			want = out.String()
		} else if out.String() != want {
			t.Errorf("%s output = %q, want %q", name, out.String(), want)
		}
	}
	if want != "20\n" {
		t.Errorf("program output = %q, want 20", want)
	}
}

func TestTracer_WrapStrategyEvents(t *testing.T) {
	src := "def add(x, y) { return x + y }\nprint(add(3, 4))\n"
	ring := trace.NewRingSink(256, trace.LevelCalls)
	var out bytes.Buffer
	err := driver.RunSource(context.Background(), "test.flow", src, driver.Options{
		Strategy: driver.StrategyWrap,
		Sink:     ring,
		Stdout:   &out,
	})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if out.String() != "7\n" {
		t.Errorf("output = %q, want 7", out.String())
	}

	var call *trace.Event
	events := ring.Snapshot()
	for i, ev := range events {
		if ev.Kind == trace.KindCall && ev.Callee == "add" {
			call = &events[i]
			break
		}
	}
	if call == nil {
		t.Fatal("no call event for add")
	}
	if len(call.Bindings) != 2 || call.Bindings[0].Name != "x" || call.Bindings[1].Name != "y" {
		t.Errorf("bindings = %v, want x and y", call.Bindings)
	}
}

func TestTracer_NestedDepth(t *testing.T) {
	src := "def inner() { return 1 }\ndef outer() { return inner() }\nouter()\n"
	events, _ := traceSource(t, src, trace.LevelCalls)

	depth := map[string]int{}
	for _, ev := range events {
		if ev.Kind == trace.KindCall {
			depth[ev.Callee] = ev.Depth
		}
	}
	if depth["inner"] != depth["outer"]+1 {
		t.Errorf("depths = %v, inner must nest one under outer", depth)
	}
}
