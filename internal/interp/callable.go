package interp

import (
	"fmt"

	"flowtrace/internal/ast"
)

// FormalParam is one parameter of an introspectable callable. Defaults are
// evaluated once, when the declaration runs.
type FormalParam struct {
	Name       string
	Kind       ast.ParamKind
	HasDefault bool
	Default    Value
}

// Closure is a Flow-implemented function: its formal parameter list is
// introspectable.
type Closure struct {
	Name   string
	Params []FormalParam
	Body   ast.StmtID
	B      *ast.Builder
	Env    *Env
	// Traced marks closures compiled from a rewritten unit. Calls to
	// untraced callees are reported as atomic.
	Traced bool
}

// BuiltinFunc is the Go implementation behind a Builtin.
type BuiltinFunc func(ip *Interp, args []Value, kwargs []Keyword) (Value, error)

// Builtin is a Go-implemented callable. Its parameters cannot be
// introspected. Recv is non-nil for builtin methods; RecvIsModule marks
// receivers that are namespaces rather than instances.
type Builtin struct {
	Name         string
	Fn           BuiltinFunc
	Recv         *Value
	RecvIsModule bool
}

// BoundMethod is a Flow-implemented method bound to an instance.
type BoundMethod struct {
	Recv Value
	Fn   *Closure
}

// Class is a Flow class declaration. Instantiation calls the init method
// when present.
type Class struct {
	Name    string
	Methods map[string]*Closure
	Order   []string
}

// Method returns the named method, if declared.
func (c *Class) Method(name string) (*Closure, bool) {
	m, ok := c.Methods[name]
	return m, ok
}

// Instance is one object of a class.
type Instance struct {
	Class  *Class
	Fields *Map
}

// Binding is one entry of an ordered parameter-name to value mapping.
type Binding struct {
	Name  string
	Value Value
}

// BindError reports a rule-2 binding failure: the supplied arguments do not
// fit the formal parameter list.
type BindError struct {
	Callee string
	Reason string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("cannot bind arguments of %s: %s", e.Callee, e.Reason)
}

// BindParams binds call-time arguments against a formal parameter list:
// left-to-right positional matching, keyword matching by name, default fill
// for omitted optionals. The result is in declaration order. Declared
// variadic collectors always appear in the result, holding possibly empty
// collections.
func BindParams(callee string, params []FormalParam, args []Value, kwargs []Keyword) ([]Binding, error) {
	fail := func(format string, a ...any) ([]Binding, error) {
		return nil, &BindError{Callee: callee, Reason: fmt.Sprintf(format, a...)}
	}

	bindings := make([]Binding, 0, len(params))
	used := make(map[string]bool, len(kwargs))
	argIdx := 0

	kwLookup := func(name string) (Value, bool) {
		for _, kw := range kwargs {
			if kw.Name == name {
				return kw.Value, true
			}
		}
		return None(), false
	}

	var variadic *FormalParam
	var kwVariadic *FormalParam
	for i := range params {
		param := &params[i]
		switch param.Kind {
		case ast.ParamVariadic:
			variadic = param
			rest := &List{}
			for argIdx < len(args) {
				rest.Elems = append(rest.Elems, args[argIdx])
				argIdx++
			}
			bindings = append(bindings, Binding{Name: param.Name, Value: ListVal(rest)})
		case ast.ParamKeywordVariadic:
			kwVariadic = param
			// Filled after named parameters are resolved.
			bindings = append(bindings, Binding{Name: param.Name})
		default:
			if argIdx < len(args) {
				if _, dup := kwLookup(param.Name); dup {
					return fail("got multiple values for parameter %q", param.Name)
				}
				bindings = append(bindings, Binding{Name: param.Name, Value: args[argIdx]})
				argIdx++
				continue
			}
			if v, ok := kwLookup(param.Name); ok {
				used[param.Name] = true
				bindings = append(bindings, Binding{Name: param.Name, Value: v})
				continue
			}
			if param.HasDefault {
				bindings = append(bindings, Binding{Name: param.Name, Value: param.Default})
				continue
			}
			return fail("missing required parameter %q", param.Name)
		}
	}

	if argIdx < len(args) && variadic == nil {
		return fail("takes %d positional arguments but %d were given",
			countPositional(params), len(args))
	}

	rest := &Map{}
	for _, kw := range kwargs {
		if used[kw.Name] {
			continue
		}
		if kwVariadic == nil {
			return fail("got an unexpected keyword argument %q", kw.Name)
		}
		rest.Set(StringVal(kw.Name), kw.Value)
	}
	if kwVariadic != nil {
		for i := range bindings {
			if bindings[i].Name == kwVariadic.Name {
				bindings[i].Value = MapVal(rest)
			}
		}
	}

	return bindings, nil
}

func countPositional(params []FormalParam) int {
	n := 0
	for _, p := range params {
		if p.Kind == ast.ParamPositional {
			n++
		}
	}
	return n
}
