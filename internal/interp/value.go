// Package interp implements a tree-walking evaluator for Flow units.
package interp

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind identifies the runtime type of a Value.
type ValueKind uint8

const (
	// VKNone represents the none value.
	VKNone ValueKind = iota
	// VKBool represents a boolean value.
	VKBool
	// VKInt represents a signed integer value.
	VKInt
	// VKFloat represents a floating-point value.
	VKFloat
	// VKString represents a string value.
	VKString
	// VKList represents a list value.
	VKList
	// VKMap represents a map value.
	VKMap
	// VKClosure represents a Flow-implemented function.
	VKClosure
	// VKBuiltin represents a Go-implemented callable.
	VKBuiltin
	// VKBoundMethod represents a Flow method bound to an instance.
	VKBoundMethod
	// VKClass represents a class value.
	VKClass
	// VKInstance represents a class instance.
	VKInstance
	// VKModule represents a builtin namespace value.
	VKModule
)

// String returns a human-readable name for the value kind.
func (k ValueKind) String() string {
	switch k {
	case VKNone:
		return "none"
	case VKBool:
		return "bool"
	case VKInt:
		return "int"
	case VKFloat:
		return "float"
	case VKString:
		return "string"
	case VKList:
		return "list"
	case VKMap:
		return "map"
	case VKClosure:
		return "function"
	case VKBuiltin:
		return "builtin"
	case VKBoundMethod:
		return "bound method"
	case VKClass:
		return "class"
	case VKInstance:
		return "instance"
	case VKModule:
		return "module"
	default:
		return fmt.Sprintf("ValueKind(%d)", k)
	}
}

// Value represents a runtime value. Scalar kinds use the inline fields;
// composite kinds store their payload in Obj.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
	Obj   any // *List, *Map, *Closure, *Builtin, *BoundMethod, *Class, *Instance, *Module
}

// Keyword is one keyword argument supplied at a call.
type Keyword struct {
	Name  string
	Value Value
}

// List is the backing store for VKList values.
type List struct {
	Elems []Value
}

// Map is the backing store for VKMap values. Entries preserve insertion
// order; lookup is linear, which is fine for the small maps Flow programs
// build.
type Map struct {
	Keys   []Value
	Values []Value
}

// Get returns the value for key and whether it was present.
func (m *Map) Get(key Value) (Value, bool) {
	for i, k := range m.Keys {
		if Equal(k, key) {
			return m.Values[i], true
		}
	}
	return None(), false
}

// Set inserts or replaces the entry for key.
func (m *Map) Set(key, value Value) {
	for i, k := range m.Keys {
		if Equal(k, key) {
			m.Values[i] = value
			return
		}
	}
	m.Keys = append(m.Keys, key)
	m.Values = append(m.Values, value)
}

// Constructors.

func None() Value                { return Value{Kind: VKNone} }
func BoolVal(b bool) Value       { return Value{Kind: VKBool, Bool: b} }
func IntVal(i int64) Value       { return Value{Kind: VKInt, Int: i} }
func FloatVal(f float64) Value   { return Value{Kind: VKFloat, Float: f} }
func StringVal(s string) Value   { return Value{Kind: VKString, Str: s} }
func ListVal(l *List) Value      { return Value{Kind: VKList, Obj: l} }
func MapVal(m *Map) Value        { return Value{Kind: VKMap, Obj: m} }
func ClosureVal(c *Closure) Value {
	return Value{Kind: VKClosure, Obj: c}
}
func BuiltinVal(b *Builtin) Value {
	return Value{Kind: VKBuiltin, Obj: b}
}
func BoundVal(m *BoundMethod) Value {
	return Value{Kind: VKBoundMethod, Obj: m}
}
func ClassVal(c *Class) Value    { return Value{Kind: VKClass, Obj: c} }
func InstanceVal(i *Instance) Value {
	return Value{Kind: VKInstance, Obj: i}
}
func ModuleVal(m *Module) Value  { return Value{Kind: VKModule, Obj: m} }

// Truthy reports Python-like truthiness.
func (v Value) Truthy() bool {
	switch v.Kind {
	case VKNone:
		return false
	case VKBool:
		return v.Bool
	case VKInt:
		return v.Int != 0
	case VKFloat:
		return v.Float != 0
	case VKString:
		return v.Str != ""
	case VKList:
		return len(v.Obj.(*List).Elems) > 0
	case VKMap:
		return len(v.Obj.(*Map).Keys) > 0
	default:
		return true
	}
}

// IsCallable reports whether the value can appear as a call target.
func (v Value) IsCallable() bool {
	switch v.Kind {
	case VKClosure, VKBuiltin, VKBoundMethod, VKClass:
		return true
	default:
		return false
	}
}

// Equal reports deep structural equality. Int and float compare numerically.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		if isNumeric(a) && isNumeric(b) {
			return asFloat(a) == asFloat(b)
		}
		return false
	}
	switch a.Kind {
	case VKNone:
		return true
	case VKBool:
		return a.Bool == b.Bool
	case VKInt:
		return a.Int == b.Int
	case VKFloat:
		return a.Float == b.Float
	case VKString:
		return a.Str == b.Str
	case VKList:
		la, lb := a.Obj.(*List), b.Obj.(*List)
		if len(la.Elems) != len(lb.Elems) {
			return false
		}
		for i := range la.Elems {
			if !Equal(la.Elems[i], lb.Elems[i]) {
				return false
			}
		}
		return true
	case VKMap:
		ma, mb := a.Obj.(*Map), b.Obj.(*Map)
		if len(ma.Keys) != len(mb.Keys) {
			return false
		}
		for i, k := range ma.Keys {
			bv, ok := mb.Get(k)
			if !ok || !Equal(ma.Values[i], bv) {
				return false
			}
		}
		return true
	default:
		return a.Obj == b.Obj
	}
}

func isNumeric(v Value) bool {
	return v.Kind == VKInt || v.Kind == VKFloat
}

func asFloat(v Value) float64 {
	if v.Kind == VKInt {
		return float64(v.Int)
	}
	return v.Float
}

// Repr renders a value for tracing and diagnostics.
func (v Value) Repr() string {
	switch v.Kind {
	case VKNone:
		return "none"
	case VKBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case VKInt:
		return strconv.FormatInt(v.Int, 10)
	case VKFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case VKString:
		return strconv.Quote(v.Str)
	case VKList:
		l := v.Obj.(*List)
		parts := make([]string, len(l.Elems))
		for i, e := range l.Elems {
			parts[i] = e.Repr()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case VKMap:
		m := v.Obj.(*Map)
		parts := make([]string, len(m.Keys))
		for i := range m.Keys {
			parts[i] = m.Keys[i].Repr() + ": " + m.Values[i].Repr()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case VKClosure:
		return "<function " + v.Obj.(*Closure).Name + ">"
	case VKBuiltin:
		return "<builtin " + v.Obj.(*Builtin).Name + ">"
	case VKBoundMethod:
		m := v.Obj.(*BoundMethod)
		return "<bound method " + m.Fn.Name + ">"
	case VKClass:
		return "<class " + v.Obj.(*Class).Name + ">"
	case VKInstance:
		return "<" + v.Obj.(*Instance).Class.Name + " instance>"
	case VKModule:
		return "<module " + v.Obj.(*Module).Name + ">"
	default:
		return "<invalid>"
	}
}

// Display renders a value the way print shows it: strings are unquoted,
// everything else matches Repr.
func (v Value) Display() string {
	if v.Kind == VKString {
		return v.Str
	}
	return v.Repr()
}

// CalleeName returns the best available name for a callable, for trace
// events.
func (v Value) CalleeName() string {
	switch v.Kind {
	case VKClosure:
		return v.Obj.(*Closure).Name
	case VKBuiltin:
		return v.Obj.(*Builtin).Name
	case VKBoundMethod:
		return v.Obj.(*BoundMethod).Fn.Name
	case VKClass:
		return v.Obj.(*Class).Name
	default:
		return v.Repr()
	}
}

// Module is a builtin namespace value.
type Module struct {
	Name  string
	attrs map[string]Value
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name, attrs: make(map[string]Value)}
}

// Set defines or replaces an attribute.
func (m *Module) Set(name string, v Value) {
	m.attrs[name] = v
}

// Get returns the attribute for name.
func (m *Module) Get(name string) (Value, bool) {
	v, ok := m.attrs[name]
	return v, ok
}
