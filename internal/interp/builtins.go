package interp

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"flowtrace/internal/ast"
	"flowtrace/internal/source"
)

func argError(name, reason string) error {
	return &Trap{Message: fmt.Sprintf("%s: %s", name, reason)}
}

// rejectKwargs is used by builtins that take no keyword arguments.
func rejectKwargs(name string, kwargs []Keyword) error {
	if len(kwargs) > 0 {
		return argError(name, fmt.Sprintf("unexpected keyword argument %q", kwargs[0].Name))
	}
	return nil
}

func globalBuiltin(name string, fn BuiltinFunc) Value {
	return BuiltinVal(&Builtin{Name: name, Fn: fn})
}

func installBuiltins(globals *Env) {
	globals.Define("print", globalBuiltin("print", builtinPrint))
	globals.Define("len", globalBuiltin("len", builtinLen))
	globals.Define("str", globalBuiltin("str", builtinStr))
	globals.Define("repr", globalBuiltin("repr", builtinRepr))
	globals.Define("abs", globalBuiltin("abs", builtinAbs))
	globals.Define("range", globalBuiltin("range", builtinRange))
	globals.Define("sum", globalBuiltin("sum", builtinSum))
	globals.Define("math", ModuleVal(mathModule()))
	globals.Define("text", ModuleVal(textModule()))
}

func builtinPrint(ip *Interp, args []Value, kwargs []Keyword) (Value, error) {
	sep := " "
	end := "\n"
	for _, kw := range kwargs {
		switch kw.Name {
		case "sep":
			if kw.Value.Kind != VKString {
				return None(), argError("print", "sep must be a string")
			}
			sep = kw.Value.Str
		case "end":
			if kw.Value.Kind != VKString {
				return None(), argError("print", "end must be a string")
			}
			end = kw.Value.Str
		default:
			return None(), argError("print", fmt.Sprintf("unexpected keyword argument %q", kw.Name))
		}
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Display()
	}
	fmt.Fprint(ip.Stdout, strings.Join(parts, sep)+end)
	return None(), nil
}

func builtinLen(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
	if err := rejectKwargs("len", kwargs); err != nil {
		return None(), err
	}
	if len(args) != 1 {
		return None(), argError("len", "takes exactly one argument")
	}
	switch args[0].Kind {
	case VKString:
		return IntVal(int64(len(args[0].Str))), nil
	case VKList:
		return IntVal(int64(len(args[0].Obj.(*List).Elems))), nil
	case VKMap:
		return IntVal(int64(len(args[0].Obj.(*Map).Keys))), nil
	default:
		return None(), argError("len", fmt.Sprintf("%s value has no length", args[0].Kind))
	}
}

func builtinStr(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
	if err := rejectKwargs("str", kwargs); err != nil {
		return None(), err
	}
	if len(args) != 1 {
		return None(), argError("str", "takes exactly one argument")
	}
	return StringVal(args[0].Display()), nil
}

func builtinRepr(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
	if err := rejectKwargs("repr", kwargs); err != nil {
		return None(), err
	}
	if len(args) != 1 {
		return None(), argError("repr", "takes exactly one argument")
	}
	return StringVal(args[0].Repr()), nil
}

func builtinAbs(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
	if err := rejectKwargs("abs", kwargs); err != nil {
		return None(), err
	}
	if len(args) != 1 {
		return None(), argError("abs", "takes exactly one argument")
	}
	switch args[0].Kind {
	case VKInt:
		if args[0].Int < 0 {
			return IntVal(-args[0].Int), nil
		}
		return args[0], nil
	case VKFloat:
		return FloatVal(math.Abs(args[0].Float)), nil
	default:
		return None(), argError("abs", fmt.Sprintf("expected a number, got %s", args[0].Kind))
	}
}

func builtinRange(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
	if err := rejectKwargs("range", kwargs); err != nil {
		return None(), err
	}
	var start, stop int64
	switch len(args) {
	case 1:
		stop = args[0].Int
	case 2:
		start, stop = args[0].Int, args[1].Int
	default:
		return None(), argError("range", "takes one or two arguments")
	}
	for _, a := range args {
		if a.Kind != VKInt {
			return None(), argError("range", fmt.Sprintf("expected ints, got %s", a.Kind))
		}
	}
	l := &List{}
	for i := start; i < stop; i++ {
		l.Elems = append(l.Elems, IntVal(i))
	}
	return ListVal(l), nil
}

func builtinSum(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
	if err := rejectKwargs("sum", kwargs); err != nil {
		return None(), err
	}
	if len(args) != 1 || args[0].Kind != VKList {
		return None(), argError("sum", "takes exactly one list argument")
	}
	total := IntVal(0)
	for _, e := range args[0].Obj.(*List).Elems {
		v, err := evalBinaryOp(source.Span{}, ast.BinaryAdd, total, e)
		if err != nil {
			return None(), argError("sum", "list elements must be numbers")
		}
		total = v
	}
	return total, nil
}

// mathModule builds the math namespace. Its functions carry the module as a
// receiver, which argument binding treats as non-prependable.
func mathModule() *Module {
	mod := NewModule("math")
	self := ModuleVal(mod)
	def := func(name string, fn BuiltinFunc) {
		mod.Set(name, BuiltinVal(&Builtin{Name: name, Fn: fn, Recv: &self, RecvIsModule: true}))
	}
	def("sqrt", func(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
		if err := rejectKwargs("sqrt", kwargs); err != nil {
			return None(), err
		}
		if len(args) != 1 || !isNumeric(args[0]) {
			return None(), argError("sqrt", "takes exactly one number")
		}
		return FloatVal(math.Sqrt(asFloat(args[0]))), nil
	})
	def("floor", func(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
		if err := rejectKwargs("floor", kwargs); err != nil {
			return None(), err
		}
		if len(args) != 1 || !isNumeric(args[0]) {
			return None(), argError("floor", "takes exactly one number")
		}
		return IntVal(int64(math.Floor(asFloat(args[0])))), nil
	})
	def("pow", func(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
		if err := rejectKwargs("pow", kwargs); err != nil {
			return None(), err
		}
		if len(args) != 2 || !isNumeric(args[0]) || !isNumeric(args[1]) {
			return None(), argError("pow", "takes exactly two numbers")
		}
		return FloatVal(math.Pow(asFloat(args[0]), asFloat(args[1]))), nil
	})
	mod.Set("pi", FloatVal(math.Pi))
	return mod
}

// textModule builds the text namespace.
func textModule() *Module {
	mod := NewModule("text")
	self := ModuleVal(mod)
	def := func(name string, fn BuiltinFunc) {
		mod.Set(name, BuiltinVal(&Builtin{Name: name, Fn: fn, Recv: &self, RecvIsModule: true}))
	}
	def("join", func(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
		if err := rejectKwargs("join", kwargs); err != nil {
			return None(), err
		}
		if len(args) != 2 || args[0].Kind != VKString || args[1].Kind != VKList {
			return None(), argError("join", "takes a separator string and a list")
		}
		parts := make([]string, 0, len(args[1].Obj.(*List).Elems))
		for _, e := range args[1].Obj.(*List).Elems {
			if e.Kind != VKString {
				return None(), argError("join", "list elements must be strings")
			}
			parts = append(parts, e.Str)
		}
		return StringVal(strings.Join(parts, args[0].Str)), nil
	})
	def("normalize", func(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
		if err := rejectKwargs("normalize", kwargs); err != nil {
			return None(), err
		}
		if len(args) != 1 || args[0].Kind != VKString {
			return None(), argError("normalize", "takes exactly one string")
		}
		return StringVal(norm.NFC.String(args[0].Str)), nil
	})
	return mod
}

// lookupBuiltinMethod resolves methods on primitive receivers. The returned
// builtin carries the receiver, so binding prepends it like any instance
// receiver.
func lookupBuiltinMethod(recv Value, name string) (Value, bool) {
	fn, ok := builtinMethods[recv.Kind][name]
	if !ok {
		return None(), false
	}
	r := recv
	return BuiltinVal(&Builtin{Name: name, Fn: fn, Recv: &r}), true
}

var builtinMethods = map[ValueKind]map[string]BuiltinFunc{
	VKString: {
		"upper": func(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
			if err := rejectKwargs("upper", kwargs); err != nil {
				return None(), err
			}
			if len(args) != 1 {
				return None(), argError("upper", "takes no arguments")
			}
			return StringVal(strings.ToUpper(args[0].Str)), nil
		},
		"lower": func(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
			if err := rejectKwargs("lower", kwargs); err != nil {
				return None(), err
			}
			if len(args) != 1 {
				return None(), argError("lower", "takes no arguments")
			}
			return StringVal(strings.ToLower(args[0].Str)), nil
		},
		"split": func(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
			if err := rejectKwargs("split", kwargs); err != nil {
				return None(), err
			}
			if len(args) != 2 || args[1].Kind != VKString {
				return None(), argError("split", "takes one string separator")
			}
			l := &List{}
			for _, part := range strings.Split(args[0].Str, args[1].Str) {
				l.Elems = append(l.Elems, StringVal(part))
			}
			return ListVal(l), nil
		},
	},
	VKList: {
		"append": func(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
			if err := rejectKwargs("append", kwargs); err != nil {
				return None(), err
			}
			if len(args) != 2 {
				return None(), argError("append", "takes exactly one argument")
			}
			l := args[0].Obj.(*List)
			l.Elems = append(l.Elems, args[1])
			return None(), nil
		},
		"pop": func(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
			if err := rejectKwargs("pop", kwargs); err != nil {
				return None(), err
			}
			if len(args) != 1 {
				return None(), argError("pop", "takes no arguments")
			}
			l := args[0].Obj.(*List)
			if len(l.Elems) == 0 {
				return None(), argError("pop", "pop from empty list")
			}
			last := l.Elems[len(l.Elems)-1]
			l.Elems = l.Elems[:len(l.Elems)-1]
			return last, nil
		},
	},
	VKMap: {
		"keys": func(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
			if err := rejectKwargs("keys", kwargs); err != nil {
				return None(), err
			}
			if len(args) != 1 {
				return None(), argError("keys", "takes no arguments")
			}
			m := args[0].Obj.(*Map)
			return ListVal(&List{Elems: append([]Value(nil), m.Keys...)}), nil
		},
		"get": func(_ *Interp, args []Value, kwargs []Keyword) (Value, error) {
			if err := rejectKwargs("get", kwargs); err != nil {
				return None(), err
			}
			if len(args) < 2 || len(args) > 3 {
				return None(), argError("get", "takes a key and an optional default")
			}
			m := args[0].Obj.(*Map)
			if v, ok := m.Get(args[1]); ok {
				return v, nil
			}
			if len(args) == 3 {
				return args[2], nil
			}
			return None(), nil
		},
	},
}
