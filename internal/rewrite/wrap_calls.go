package rewrite

import (
	"strings"

	"flowtrace/internal/ast"
	"flowtrace/internal/source"
)

// WrapCalls is the coarse strategy: F(args...) becomes W(F, args...), with
// the original callee demoted to the wrapper's first positional argument and
// every other argument passed through untouched. Binding, invocation, and
// observation are entirely the wrapper's job, so there is no per-argument
// interception here.
type WrapCalls struct {
	// Wrapper names the wrapper callable, optionally dotted
	// ("__trace__.wrap_call" resolves the attribute on the handle).
	Wrapper string
}

// NewWrapCalls returns the strategy routing calls through wrapper.
func NewWrapCalls(wrapper string) *WrapCalls {
	return &WrapCalls{Wrapper: wrapper}
}

func (wc *WrapCalls) Rewrite(unit *ast.Unit) (*ast.Unit, error) {
	b := unit.Builder
	wrap := func(sp source.Span, data ast.ExprCallData) (ast.ExprID, error) {
		out := ast.ExprCallData{
			Target:   wrapperRef(b, sp, wc.Wrapper),
			Args:     append([]ast.ExprID{data.Target}, data.Args...),
			Keywords: data.Keywords,
			StarArgs: data.StarArgs,
			KwSpread: data.KwSpread,
		}
		return b.Exprs.NewCall(sp, out), nil
	}
	t := &transformer{b: b, wrapCall: wrap}
	return t.rewriteUnit(unit)
}

// wrapperRef builds the node naming the wrapper, resolving dotted paths as
// attribute chains.
func wrapperRef(b *ast.Builder, sp source.Span, path string) ast.ExprID {
	parts := strings.Split(path, ".")
	ref := toName(b, sp, parts[0])
	for _, part := range parts[1:] {
		ref = toAttr(b, sp, ref, part)
	}
	return ref
}
