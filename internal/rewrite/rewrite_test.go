package rewrite_test

import (
	"errors"
	"strings"
	"testing"

	"flowtrace/internal/ast"
	"flowtrace/internal/parser"
	"flowtrace/internal/rewrite"
	"flowtrace/internal/source"
)

func parse(t *testing.T, src string) *ast.Unit {
	t.Helper()
	fs := source.NewFileSet()
	res := parser.ParseSource(fs, "test.flow", src)
	if err := res.Err(); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return res.Unit
}

func rewriteTrace(t *testing.T, src string) string {
	t.Helper()
	unit := parse(t, src)
	out, err := rewrite.NewTraceCalls().Rewrite(unit)
	if err != nil {
		t.Fatalf("rewrite error: %v", err)
	}
	return ast.Print(out)
}

func TestTraceCalls_Golden(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "positional and keyword",
			src:  "f(1, y=2)\n",
			want: `__trace__.trace_return(__trace__.trace_function(f, 2)(__trace__.trace_argument(1), y=__trace__.trace_argument(2, "y")))` + "\n",
		},
		{
			name: "zero arguments",
			src:  "h()\n",
			want: "__trace__.trace_return(__trace__.trace_function(h, 0)())\n",
		},
		{
			name: "inline spreads keep their markers",
			src:  "g(*xs, **kw)\n",
			want: "__trace__.trace_return(__trace__.trace_function(g, 2)(*__trace__.trace_argument(xs, nstars=1), **__trace__.trace_argument(kw, nstars=2)))\n",
		},
		{
			name: "attribute callee",
			src:  "obj.method(a)\n",
			want: "__trace__.trace_return(__trace__.trace_function(obj.method, 1)(__trace__.trace_argument(a)))\n",
		},
		{
			name: "nested call instrumented first",
			src:  "f(g(1))\n",
			want: "__trace__.trace_return(__trace__.trace_function(f, 1)(__trace__.trace_argument(__trace__.trace_return(__trace__.trace_function(g, 1)(__trace__.trace_argument(1))))))\n",
		},
		{
			name: "call inside function body",
			src:  "def f(x) { return g(x) }\n",
			want: "def f(x) {\n    return __trace__.trace_return(__trace__.trace_function(g, 1)(__trace__.trace_argument(x)))\n}\n",
		},
		{
			name: "call in condition and branches",
			src:  "if p() { q() }\n",
			want: "if __trace__.trace_return(__trace__.trace_function(p, 0)()) {\n    __trace__.trace_return(__trace__.trace_function(q, 0)())\n}\n",
		},
		{
			name: "non-call expressions untouched",
			src:  "x = a + b\n",
			want: "x = a + b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewriteTrace(t, tt.src); got != tt.want {
				t.Errorf("rewritten:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestTraceCalls_CustomHandle(t *testing.T) {
	unit := parse(t, "f(1)\n")
	out, err := (&rewrite.TraceCalls{Handle: "T"}).Rewrite(unit)
	if err != nil {
		t.Fatalf("rewrite error: %v", err)
	}
	got := ast.Print(out)
	want := "T.trace_return(T.trace_function(f, 1)(T.trace_argument(1)))\n"
	if got != want {
		t.Errorf("rewritten = %q, want %q", got, want)
	}
}

func TestTraceCalls_InputUnchanged(t *testing.T) {
	src := "f(g(1), y=2)\n"
	unit := parse(t, src)
	before := ast.Print(unit)

	if _, err := rewrite.NewTraceCalls().Rewrite(unit); err != nil {
		t.Fatalf("rewrite error: %v", err)
	}

	if after := ast.Print(unit); after != before {
		t.Errorf("input unit changed:\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestTraceCalls_Deterministic(t *testing.T) {
	src := "f(a, g(b), k=c)\n"
	first := rewriteTrace(t, src)
	second := rewriteTrace(t, src)
	if first != second {
		t.Errorf("outputs differ:\n%s\n%s", first, second)
	}
}

func TestTraceCalls_ArityCountsEverySlot(t *testing.T) {
	// p positional + k keyword + one per spread marker.
	tests := []struct {
		src  string
		want string
	}{
		{"f()\n", "trace_function(f, 0)"},
		{"f(1, 2)\n", "trace_function(f, 2)"},
		{"f(1, y=2, z=3)\n", "trace_function(f, 3)"},
		{"f(1, *xs)\n", "trace_function(f, 2)"},
		{"f(1, *xs, y=2, **kw)\n", "trace_function(f, 4)"},
	}
	for _, tt := range tests {
		got := rewriteTrace(t, tt.src)
		if !strings.Contains(got, tt.want) {
			t.Errorf("rewrite(%q) = %q, missing %q", tt.src, got, tt.want)
		}
	}
}

func TestTraceCalls_ArgumentOrderPreserved(t *testing.T) {
	got := rewriteTrace(t, "f(a, b, k=c, m=d)\n")

	// trace_argument wrappers appear in source order: positionals first,
	// then keywords in declaration order.
	order := []string{
		"__trace__.trace_argument(a)",
		"__trace__.trace_argument(b)",
		`k=__trace__.trace_argument(c, "k")`,
		`m=__trace__.trace_argument(d, "m")`,
	}
	pos := -1
	for _, part := range order {
		idx := strings.Index(got, part)
		if idx < 0 {
			t.Fatalf("missing %q in %q", part, got)
		}
		if idx < pos {
			t.Errorf("%q appears out of order in %q", part, got)
		}
		pos = idx
	}
}

func TestTraceCalls_LegacySpreadSlots(t *testing.T) {
	// Dialects with explicit call-level spread slots wrap the slot value
	// and keep it in the slot.
	b := ast.NewBuilder(ast.Hints{})
	sp := source.Span{}
	call := b.Exprs.NewCall(sp, ast.ExprCallData{
		Target:   b.Exprs.NewIdent(sp, "g"),
		StarArgs: b.Exprs.NewIdent(sp, "xs"),
		KwSpread: b.Exprs.NewIdent(sp, "kw"),
	})
	unit := &ast.Unit{Builder: b, Body: []ast.StmtID{b.Stmts.NewExpr(sp, call)}}

	out, err := rewrite.NewTraceCalls().Rewrite(unit)
	if err != nil {
		t.Fatalf("rewrite error: %v", err)
	}
	got := ast.Print(out)
	want := "__trace__.trace_return(__trace__.trace_function(g, 2)(*__trace__.trace_argument(xs, nstars=1), **__trace__.trace_argument(kw, nstars=2)))\n"
	if got != want {
		t.Errorf("rewritten = %q, want %q", got, want)
	}
}

func TestTraceCalls_MixedDialectsFatal(t *testing.T) {
	b := ast.NewBuilder(ast.Hints{})
	sp := source.Span{}
	inline := b.Exprs.NewSpread(sp, b.Exprs.NewIdent(sp, "ys"))
	call := b.Exprs.NewCall(sp, ast.ExprCallData{
		Target:   b.Exprs.NewIdent(sp, "g"),
		Args:     []ast.ExprID{inline},
		StarArgs: b.Exprs.NewIdent(sp, "xs"),
	})
	unit := &ast.Unit{Builder: b, Body: []ast.StmtID{b.Stmts.NewExpr(sp, call)}}

	_, err := rewrite.NewTraceCalls().Rewrite(unit)
	var serr *rewrite.StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want a structural error", err)
	}
}

func TestWrapCalls_Golden(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "callee becomes first argument",
			src:  "f(1, y=2)\n",
			want: "w(f, 1, y=2)\n",
		},
		{
			name: "spreads pass through unwrapped",
			src:  "g(*xs, **kw)\n",
			want: "w(g, *xs, **kw)\n",
		},
		{
			name: "nested calls wrapped inside out",
			src:  "f(g(x))\n",
			want: "w(f, w(g, x))\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := parse(t, tt.src)
			out, err := rewrite.NewWrapCalls("w").Rewrite(unit)
			if err != nil {
				t.Fatalf("rewrite error: %v", err)
			}
			if got := ast.Print(out); got != tt.want {
				t.Errorf("rewritten = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapCalls_DottedWrapper(t *testing.T) {
	unit := parse(t, "f(x)\n")
	out, err := rewrite.NewWrapCalls("__trace__.wrap_call").Rewrite(unit)
	if err != nil {
		t.Fatalf("rewrite error: %v", err)
	}
	got := ast.Print(out)
	want := "__trace__.wrap_call(f, x)\n"
	if got != want {
		t.Errorf("rewritten = %q, want %q", got, want)
	}
}
