// Package bind maps a callable plus the concrete arguments of one call to
// an ordered parameter-name to value mapping.
//
// Parameter names are not always discoverable: Go-implemented callables
// expose no formal parameter list. Rather than aborting, resolution
// degrades to synthetic positional keys ("0", "1", ...), since tracing is
// best-effort and must never crash the traced program.
package bind

import (
	"strconv"

	"flowtrace/internal/interp"
)

// Error is the recoverable failure of signature binding: the supplied
// arguments do not fit an introspectable callable's parameter list. Callers
// may fall back to Opaque.
type Error = interp.BindError

// Bind resolves callable kinds in fixed priority order:
//
//  1. A Flow-implemented bound method rebinds as its underlying function
//     with the receiver prepended.
//  2. An introspectable callable binds against its formal parameter list;
//     this is the only rule that can fail.
//  3. A Go-implemented method carrying a non-namespace receiver prepends
//     the receiver, then falls through to rule 4.
//  4. Anything else binds opaquely with synthetic positional keys.
func Bind(callable interp.Value, args []interp.Value, kwargs []interp.Keyword) ([]interp.Binding, error) {
	switch callable.Kind {
	case interp.VKBoundMethod:
		m := callable.Obj.(*interp.BoundMethod)
		withRecv := append([]interp.Value{m.Recv}, args...)
		return interp.BindParams(m.Fn.Name, m.Fn.Params, withRecv, kwargs)

	case interp.VKClosure:
		fn := callable.Obj.(*interp.Closure)
		return interp.BindParams(fn.Name, fn.Params, args, kwargs)

	case interp.VKClass:
		// Instantiation binds against init without the not-yet-existing
		// receiver slot.
		class := callable.Obj.(*interp.Class)
		if init, ok := class.Method("init"); ok && len(init.Params) > 0 {
			return interp.BindParams(class.Name, init.Params[1:], args, kwargs)
		}
		return Opaque(args, kwargs), nil

	case interp.VKBuiltin:
		b := callable.Obj.(*interp.Builtin)
		if b.Recv != nil && !b.RecvIsModule {
			args = append([]interp.Value{*b.Recv}, args...)
		}
		return Opaque(args, kwargs), nil

	default:
		return Opaque(args, kwargs), nil
	}
}

// Opaque builds the fallback mapping for callables without discoverable
// parameter names: positional values keyed "0", "1", ... in call order,
// followed by keyword arguments under their true names in supplied order.
// Opaque never fails.
func Opaque(args []interp.Value, kwargs []interp.Keyword) []interp.Binding {
	bindings := make([]interp.Binding, 0, len(args)+len(kwargs))
	for i, v := range args {
		bindings = append(bindings, interp.Binding{Name: strconv.Itoa(i), Value: v})
	}
	for _, kw := range kwargs {
		bindings = append(bindings, interp.Binding{Name: kw.Name, Value: kw.Value})
	}
	return bindings
}
