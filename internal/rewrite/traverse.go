package rewrite

import (
	"fmt"

	"flowtrace/internal/ast"
	"flowtrace/internal/source"
)

// StructuralError reports a node shape the rewriter does not recognize.
// Rewriting stops rather than skipping the site: a silently skipped call
// would yield a partial, misleading trace.
type StructuralError struct {
	Span   source.Span
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("cannot rewrite %s: %s", e.Span, e.Reason)
}

// transformer walks a unit bottom-up and rebuilds changed nodes. Call
// expressions, after their callee and arguments have been rewritten, are
// handed to wrapCall. Nodes are never mutated; a visit either returns the
// original id or allocates a new node.
type transformer struct {
	b        *ast.Builder
	wrapCall func(sp source.Span, data ast.ExprCallData) (ast.ExprID, error)
}

func (t *transformer) rewriteUnit(unit *ast.Unit) (*ast.Unit, error) {
	out := &ast.Unit{Builder: unit.Builder, Body: make([]ast.StmtID, 0, len(unit.Body))}
	for _, id := range unit.Body {
		ns, err := t.rewriteStmt(id)
		if err != nil {
			return nil, err
		}
		out.Body = append(out.Body, ns)
	}
	return out, nil
}

func (t *transformer) rewriteStmt(id ast.StmtID) (ast.StmtID, error) {
	stmt := t.b.Stmts.Get(id)
	if stmt == nil {
		return id, nil
	}
	switch stmt.Kind {
	case ast.StmtExpr:
		d, _ := t.b.Stmts.Expr(id)
		x, err := t.rewriteExpr(d.X)
		if err != nil || x == d.X {
			return id, err
		}
		return t.b.Stmts.NewExpr(stmt.Span, x), nil
	case ast.StmtAssign:
		d, _ := t.b.Stmts.Assign(id)
		target, err := t.rewriteExpr(d.Target)
		if err != nil {
			return id, err
		}
		value, err := t.rewriteExpr(d.Value)
		if err != nil {
			return id, err
		}
		if target == d.Target && value == d.Value {
			return id, nil
		}
		return t.b.Stmts.NewAssign(stmt.Span, target, value), nil
	case ast.StmtReturn:
		d, _ := t.b.Stmts.Return(id)
		if !d.X.IsValid() {
			return id, nil
		}
		x, err := t.rewriteExpr(d.X)
		if err != nil || x == d.X {
			return id, err
		}
		return t.b.Stmts.NewReturn(stmt.Span, x), nil
	case ast.StmtIf:
		d, _ := t.b.Stmts.If(id)
		cond, err := t.rewriteExpr(d.Cond)
		if err != nil {
			return id, err
		}
		then, err := t.rewriteStmt(d.Then)
		if err != nil {
			return id, err
		}
		els := d.Else
		if els.IsValid() {
			els, err = t.rewriteStmt(d.Else)
			if err != nil {
				return id, err
			}
		}
		if cond == d.Cond && then == d.Then && els == d.Else {
			return id, nil
		}
		return t.b.Stmts.NewIf(stmt.Span, cond, then, els), nil
	case ast.StmtWhile:
		d, _ := t.b.Stmts.While(id)
		cond, err := t.rewriteExpr(d.Cond)
		if err != nil {
			return id, err
		}
		body, err := t.rewriteStmt(d.Body)
		if err != nil {
			return id, err
		}
		if cond == d.Cond && body == d.Body {
			return id, nil
		}
		return t.b.Stmts.NewWhile(stmt.Span, cond, body), nil
	case ast.StmtBlock:
		d, _ := t.b.Stmts.Block(id)
		changed := false
		list := make([]ast.StmtID, 0, len(d.List))
		for _, s := range d.List {
			ns, err := t.rewriteStmt(s)
			if err != nil {
				return id, err
			}
			changed = changed || ns != s
			list = append(list, ns)
		}
		if !changed {
			return id, nil
		}
		return t.b.Stmts.NewBlock(stmt.Span, list), nil
	case ast.StmtFunc:
		d, _ := t.b.Stmts.Func(id)
		changed := false
		params := make([]ast.Param, 0, len(d.Params))
		for _, p := range d.Params {
			if p.Default.IsValid() {
				def, err := t.rewriteExpr(p.Default)
				if err != nil {
					return id, err
				}
				changed = changed || def != p.Default
				p.Default = def
			}
			params = append(params, p)
		}
		body, err := t.rewriteStmt(d.Body)
		if err != nil {
			return id, err
		}
		if !changed && body == d.Body {
			return id, nil
		}
		return t.b.Stmts.NewFunc(stmt.Span, d.Name, params, body), nil
	case ast.StmtClass:
		d, _ := t.b.Stmts.Class(id)
		changed := false
		methods := make([]ast.StmtID, 0, len(d.Methods))
		for _, m := range d.Methods {
			nm, err := t.rewriteStmt(m)
			if err != nil {
				return id, err
			}
			changed = changed || nm != m
			methods = append(methods, nm)
		}
		if !changed {
			return id, nil
		}
		return t.b.Stmts.NewClass(stmt.Span, d.Name, methods), nil
	default:
		return id, &StructuralError{Span: stmt.Span, Reason: fmt.Sprintf("unknown statement kind %d", stmt.Kind)}
	}
}

func (t *transformer) rewriteExpr(id ast.ExprID) (ast.ExprID, error) {
	expr := t.b.Exprs.Get(id)
	if expr == nil {
		return id, nil
	}
	switch expr.Kind {
	case ast.ExprIdent, ast.ExprLit:
		return id, nil
	case ast.ExprAttr:
		d, _ := t.b.Exprs.Attr(id)
		target, err := t.rewriteExpr(d.Target)
		if err != nil || target == d.Target {
			return id, err
		}
		return t.b.Exprs.NewAttr(expr.Span, target, d.Name), nil
	case ast.ExprSpread:
		d, _ := t.b.Exprs.Spread(id)
		value, err := t.rewriteExpr(d.Value)
		if err != nil || value == d.Value {
			return id, err
		}
		return t.b.Exprs.NewSpread(expr.Span, value), nil
	case ast.ExprCall:
		return t.rewriteCall(id)
	case ast.ExprUnary:
		d, _ := t.b.Exprs.Unary(id)
		operand, err := t.rewriteExpr(d.Operand)
		if err != nil || operand == d.Operand {
			return id, err
		}
		return t.b.Exprs.NewUnary(expr.Span, d.Op, operand), nil
	case ast.ExprBinary:
		d, _ := t.b.Exprs.Binary(id)
		left, err := t.rewriteExpr(d.Left)
		if err != nil {
			return id, err
		}
		right, err := t.rewriteExpr(d.Right)
		if err != nil {
			return id, err
		}
		if left == d.Left && right == d.Right {
			return id, nil
		}
		return t.b.Exprs.NewBinary(expr.Span, d.Op, left, right), nil
	case ast.ExprIndex:
		d, _ := t.b.Exprs.Index(id)
		target, err := t.rewriteExpr(d.Target)
		if err != nil {
			return id, err
		}
		index, err := t.rewriteExpr(d.Index)
		if err != nil {
			return id, err
		}
		if target == d.Target && index == d.Index {
			return id, nil
		}
		return t.b.Exprs.NewIndex(expr.Span, target, index), nil
	case ast.ExprList:
		d, _ := t.b.Exprs.List(id)
		changed := false
		elems := make([]ast.ExprID, 0, len(d.Elems))
		for _, e := range d.Elems {
			ne, err := t.rewriteExpr(e)
			if err != nil {
				return id, err
			}
			changed = changed || ne != e
			elems = append(elems, ne)
		}
		if !changed {
			return id, nil
		}
		return t.b.Exprs.NewList(expr.Span, elems), nil
	case ast.ExprMap:
		d, _ := t.b.Exprs.Map(id)
		changed := false
		keys := make([]ast.ExprID, 0, len(d.Keys))
		values := make([]ast.ExprID, 0, len(d.Values))
		for i := range d.Keys {
			nk, err := t.rewriteExpr(d.Keys[i])
			if err != nil {
				return id, err
			}
			nv, err := t.rewriteExpr(d.Values[i])
			if err != nil {
				return id, err
			}
			changed = changed || nk != d.Keys[i] || nv != d.Values[i]
			keys = append(keys, nk)
			values = append(values, nv)
		}
		if !changed {
			return id, nil
		}
		return t.b.Exprs.NewMap(expr.Span, keys, values), nil
	case ast.ExprGroup:
		d, _ := t.b.Exprs.Group(id)
		inner, err := t.rewriteExpr(d.Inner)
		if err != nil || inner == d.Inner {
			return id, err
		}
		return t.b.Exprs.NewGroup(expr.Span, inner), nil
	default:
		return id, &StructuralError{Span: expr.Span, Reason: fmt.Sprintf("unknown expression kind %d", expr.Kind)}
	}
}

// rewriteCall rewrites the callee and every argument sub-expression first,
// so calls nested inside arguments are instrumented before the outer call
// is wrapped, then hands the rebuilt call data to wrapCall.
func (t *transformer) rewriteCall(id ast.ExprID) (ast.ExprID, error) {
	expr := t.b.Exprs.Get(id)
	d, _ := t.b.Exprs.Call(id)

	data := ast.ExprCallData{StarArgs: d.StarArgs, KwSpread: d.KwSpread}
	var err error
	data.Target, err = t.rewriteExpr(d.Target)
	if err != nil {
		return id, err
	}
	data.Args = make([]ast.ExprID, 0, len(d.Args))
	for _, arg := range d.Args {
		na, err := t.rewriteExpr(arg)
		if err != nil {
			return id, err
		}
		data.Args = append(data.Args, na)
	}
	data.Keywords = make([]ast.CallKeyword, 0, len(d.Keywords))
	for _, kw := range d.Keywords {
		nv, err := t.rewriteExpr(kw.Value)
		if err != nil {
			return id, err
		}
		data.Keywords = append(data.Keywords, ast.CallKeyword{Name: kw.Name, Value: nv})
	}
	if d.StarArgs.IsValid() {
		data.StarArgs, err = t.rewriteExpr(d.StarArgs)
		if err != nil {
			return id, err
		}
	}
	if d.KwSpread.IsValid() {
		data.KwSpread, err = t.rewriteExpr(d.KwSpread)
		if err != nil {
			return id, err
		}
	}

	return t.wrapCall(expr.Span, data)
}
