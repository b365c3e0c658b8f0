package parser_test

import (
	"strings"
	"testing"

	"flowtrace/internal/ast"
	"flowtrace/internal/parser"
	"flowtrace/internal/source"
	"flowtrace/internal/testkit"
)

// parse parses src and fails the test on any error.
func parse(t *testing.T, src string) *ast.Unit {
	t.Helper()
	fs := source.NewFileSet()
	res := parser.ParseSource(fs, "test.flow", src)
	if err := res.Err(); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return res.Unit
}

// parseErr parses src and returns the combined error, failing if there is
// none.
func parseErr(t *testing.T, src string) error {
	t.Helper()
	fs := source.NewFileSet()
	res := parser.ParseSource(fs, "test.flow", src)
	err := res.Err()
	if err == nil {
		t.Fatalf("expected a parse error for %q", src)
	}
	return err
}

func TestParse_RoundTrip(t *testing.T) {
	// Printed form is normalized source; a second parse of it must print
	// identically.
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "call with keyword",
			src:  "f(1, y=2)\n",
			want: "f(1, y=2)\n",
		},
		{
			name: "spread call",
			src:  "g(*xs, **kw)\n",
			want: "g(*xs, **kw)\n",
		},
		{
			name: "attribute call",
			src:  "obj.method(a)\n",
			want: "obj.method(a)\n",
		},
		{
			name: "function with defaults and variadics",
			src:  "def f(a, b=1, *rest, **extra) { return a + b }\n",
			want: "def f(a, b=1, *rest, **extra) {\n    return a + b\n}\n",
		},
		{
			name: "class with methods",
			src:  "class Point {\n    def init(self, x) { self.x = x }\n    def get(self) { return self.x }\n}\n",
			want: "class Point {\n    def init(self, x) {\n        self.x = x\n    }\n    def get(self) {\n        return self.x\n    }\n}\n",
		},
		{
			name: "if else chain",
			src:  "if a < b { f() } else { g() }\n",
			want: "if a < b {\n    f()\n} else {\n    g()\n}\n",
		},
		{
			name: "while with index assign",
			src:  "while i < 10 { xs[i] = i\n i = i + 1 }\n",
			want: "while i < 10 {\n    xs[i] = i\n    i = i + 1\n}\n",
		},
		{
			name: "nested calls",
			src:  "f(g(1), h(x=2))\n",
			want: "f(g(1), h(x=2))\n",
		},
		{
			name: "list and map literals",
			src:  `xs = [1, 2, 3]` + "\n" + `m = {"a": 1}` + "\n",
			want: "xs = [1, 2, 3]\nm = {\"a\": 1}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := parse(t, tt.src)
			got := ast.Print(unit)
			if got != tt.want {
				t.Errorf("printed form:\n%s\nwant:\n%s", got, tt.want)
			}

			again := parse(t, got)
			if second := ast.Print(again); second != got {
				t.Errorf("reparse changed output:\n%s\nwas:\n%s", second, got)
			}
		})
	}
}

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"a + b * c\n", "a + b * c\n"},
		{"(a + b) * c\n", "(a + b) * c\n"},
		{"not a and b\n", "not a and b\n"},
		{"a == b or c < d\n", "a == b or c < d\n"},
		{"-x + y\n", "-x + y\n"},
	}
	for _, tt := range tests {
		unit := parse(t, tt.src)
		if got := ast.Print(unit); got != tt.want {
			t.Errorf("Print(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantSub string
	}{
		{
			name:    "positional after keyword",
			src:     "f(x=1, 2)\n",
			wantSub: "positional",
		},
		{
			name:    "default before plain parameter",
			src:     "def f(a=1, b) { return a }\n",
			wantSub: "default",
		},
		{
			name:    "assignment to call",
			src:     "f() = 1\n",
			wantSub: "cannot assign",
		},
		{
			name:    "class body with non-method",
			src:     "class C { x = 1 }\n",
			wantSub: "method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseErr(t, tt.src)
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestParse_SpanInvariants(t *testing.T) {
	src := "def f(a) { return a }\nf(1)\n"
	fs := source.NewFileSet()
	id := fs.Add("test.flow", []byte(src), source.FileVirtual)
	res := parser.ParseFile(fs, id)
	if err := res.Err(); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if err := testkit.CheckSpanInvariants(res.Unit, fs.Get(id)); err != nil {
		t.Errorf("span invariants: %v", err)
	}
}

func TestParse_InlineSpreadShape(t *testing.T) {
	unit := parse(t, "g(*xs, y=1, **kw)\n")
	b := unit.Builder

	d, ok := b.Stmts.Expr(unit.Body[0])
	if !ok {
		t.Fatal("expected an expression statement")
	}
	call, ok := b.Exprs.Call(d.X)
	if !ok {
		t.Fatal("expected a call expression")
	}

	if len(call.Args) != 1 || b.Exprs.Kind(call.Args[0]) != ast.ExprSpread {
		t.Errorf("want one spread positional, got %d args", len(call.Args))
	}
	if len(call.Keywords) != 2 {
		t.Fatalf("want two keyword slots, got %d", len(call.Keywords))
	}
	if call.Keywords[0].Name != "y" {
		t.Errorf("first keyword = %q, want y", call.Keywords[0].Name)
	}
	if call.Keywords[1].Name != "" {
		t.Errorf("mapping-merge keyword should have empty name, got %q", call.Keywords[1].Name)
	}
	if call.HasLegacySpread() {
		t.Error("parser output should not use the explicit spread slots")
	}
}
