package bind_test

import (
	"errors"
	"testing"

	"flowtrace/internal/ast"
	"flowtrace/internal/bind"
	"flowtrace/internal/interp"
)

// closure builds an introspectable callable with the given plain parameter
// names.
func closure(name string, params ...string) *interp.Closure {
	fn := &interp.Closure{Name: name}
	for _, p := range params {
		fn.Params = append(fn.Params, interp.FormalParam{Name: p, Kind: ast.ParamPositional})
	}
	return fn
}

func names(bindings []interp.Binding) []string {
	out := make([]string, len(bindings))
	for i, b := range bindings {
		out[i] = b.Name
	}
	return out
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBind_IntrospectableSignature(t *testing.T) {
	fn := closure("add", "x", "y")
	got, err := bind.Bind(interp.ClosureVal(fn),
		[]interp.Value{interp.IntVal(1)},
		[]interp.Keyword{{Name: "y", Value: interp.IntVal(2)}})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !sameNames(names(got), []string{"x", "y"}) {
		t.Errorf("names = %v, want [x y]", names(got))
	}
	if got[0].Value.Int != 1 || got[1].Value.Int != 2 {
		t.Errorf("values = %v, %v, want 1, 2", got[0].Value, got[1].Value)
	}
}

func TestBind_DefaultsFillOmitted(t *testing.T) {
	fn := closure("greet", "name")
	fn.Params = append(fn.Params, interp.FormalParam{
		Name:       "greeting",
		Kind:       ast.ParamPositional,
		HasDefault: true,
		Default:    interp.StringVal("hi"),
	})

	got, err := bind.Bind(interp.ClosureVal(fn),
		[]interp.Value{interp.StringVal("ada")}, nil)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !sameNames(names(got), []string{"name", "greeting"}) {
		t.Fatalf("names = %v", names(got))
	}
	if got[1].Value.Str != "hi" {
		t.Errorf("default = %q, want %q", got[1].Value.Str, "hi")
	}
}

func TestBind_BoundMethodPrependsReceiver(t *testing.T) {
	// obj.method(a) with method(self, a) binds {self: obj, a: a}.
	method := closure("method", "self", "a")
	recv := interp.StringVal("obj")
	bm := interp.BoundVal(&interp.BoundMethod{Recv: recv, Fn: method})

	got, err := bind.Bind(bm, []interp.Value{interp.IntVal(7)}, nil)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !sameNames(names(got), []string{"self", "a"}) {
		t.Fatalf("names = %v, want [self a]", names(got))
	}
	if got[0].Value.Str != "obj" {
		t.Errorf("self = %v, want the receiver", got[0].Value)
	}
	if got[1].Value.Int != 7 {
		t.Errorf("a = %v, want 7", got[1].Value)
	}
}

func TestBind_OpaqueBuiltin(t *testing.T) {
	// bind(len, ([1,2,3],), {}) -> {"0": [1,2,3]}.
	lenFn := interp.BuiltinVal(&interp.Builtin{Name: "len"})
	list := interp.ListVal(&interp.List{Elems: []interp.Value{
		interp.IntVal(1), interp.IntVal(2), interp.IntVal(3),
	}})

	got, err := bind.Bind(lenFn, []interp.Value{list}, nil)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if len(got) != 1 || got[0].Name != "0" {
		t.Fatalf("bindings = %v, want one entry keyed 0", got)
	}
	if got[0].Value.Kind != interp.VKList {
		t.Errorf("value kind = %v, want list", got[0].Value.Kind)
	}
}

func TestBind_BuiltinMethodPrependsReceiver(t *testing.T) {
	recv := interp.StringVal("text")
	upper := interp.BuiltinVal(&interp.Builtin{Name: "upper", Recv: &recv})

	got, err := bind.Bind(upper, nil, nil)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if len(got) != 1 || got[0].Name != "0" || got[0].Value.Str != "text" {
		t.Errorf("bindings = %v, want the receiver keyed 0", got)
	}
}

func TestBind_ModuleBuiltinKeepsNamespaceOut(t *testing.T) {
	mod := interp.NewModule("math")
	self := interp.ModuleVal(mod)
	sqrt := interp.BuiltinVal(&interp.Builtin{Name: "sqrt", Recv: &self, RecvIsModule: true})

	got, err := bind.Bind(sqrt, []interp.Value{interp.FloatVal(4)}, nil)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if len(got) != 1 || got[0].Name != "0" {
		t.Errorf("bindings = %v, want only the argument", got)
	}
}

func TestBind_OpaqueNeverFails(t *testing.T) {
	got := bind.Opaque(
		[]interp.Value{interp.IntVal(1), interp.IntVal(2)},
		[]interp.Keyword{{Name: "z", Value: interp.IntVal(3)}})
	if !sameNames(names(got), []string{"0", "1", "z"}) {
		t.Errorf("names = %v, want [0 1 z]", names(got))
	}
}

func TestBind_Errors(t *testing.T) {
	fn := interp.ClosureVal(closure("f", "a", "b"))

	tests := []struct {
		name   string
		args   []interp.Value
		kwargs []interp.Keyword
	}{
		{name: "missing required", args: []interp.Value{interp.IntVal(1)}},
		{name: "excess positional", args: []interp.Value{
			interp.IntVal(1), interp.IntVal(2), interp.IntVal(3)}},
		{name: "unknown keyword", args: []interp.Value{interp.IntVal(1), interp.IntVal(2)},
			kwargs: []interp.Keyword{{Name: "z", Value: interp.IntVal(3)}}},
		{name: "multiple values", args: []interp.Value{interp.IntVal(1), interp.IntVal(2)},
			kwargs: []interp.Keyword{{Name: "a", Value: interp.IntVal(3)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bind.Bind(fn, tt.args, tt.kwargs)
			var be *bind.Error
			if !errors.As(err, &be) {
				t.Fatalf("err = %v, want a binding error", err)
			}
		})
	}
}

func TestBind_VariadicCollectors(t *testing.T) {
	fn := closure("f", "a")
	fn.Params = append(fn.Params,
		interp.FormalParam{Name: "rest", Kind: ast.ParamVariadic},
		interp.FormalParam{Name: "extra", Kind: ast.ParamKeywordVariadic})

	got, err := bind.Bind(interp.ClosureVal(fn),
		[]interp.Value{interp.IntVal(1), interp.IntVal(2), interp.IntVal(3)},
		[]interp.Keyword{{Name: "z", Value: interp.IntVal(4)}})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !sameNames(names(got), []string{"a", "rest", "extra"}) {
		t.Fatalf("names = %v", names(got))
	}
	rest := got[1].Value.Obj.(*interp.List)
	if len(rest.Elems) != 2 {
		t.Errorf("rest has %d elements, want 2", len(rest.Elems))
	}
	extra := got[2].Value.Obj.(*interp.Map)
	if len(extra.Keys) != 1 {
		t.Errorf("extra has %d entries, want 1", len(extra.Keys))
	}
}
