package interp

import (
	"io"
	"math"

	"fortio.org/safecast"

	"flowtrace/internal/ast"
	"flowtrace/internal/source"
)

// Interp evaluates Flow units. It is single-threaded: one Interp runs one
// program at a time.
type Interp struct {
	fs      *source.FileSet
	Globals *Env
	Stdout  io.Writer

	// tracedUnit marks closures created while running a rewritten unit, so
	// the tracer can tell atomic callees apart.
	tracedUnit bool

	// callSpan is the span of the innermost active call. Builtins that
	// perform calls of their own (the tracer's wrappers) read it so their
	// failures land at the original call site.
	callSpan source.Span
}

// New creates an interpreter with the standard builtins installed.
func New(fs *source.FileSet, stdout io.Writer) *Interp {
	ip := &Interp{fs: fs, Globals: NewEnv(nil), Stdout: stdout}
	installBuiltins(ip.Globals)
	return ip
}

// FileSet returns the interpreter's file set, for error formatting.
func (ip *Interp) FileSet() *source.FileSet {
	return ip.fs
}

// returnSignal unwinds from a return statement to the enclosing call.
type returnSignal struct {
	value Value
}

func (returnSignal) Error() string { return "return outside function" }

// RunUnit executes a unit's top-level statements in the global scope.
// traced marks units whose calls were rewritten for tracing; closures they
// define are reported as non-atomic callees.
func (ip *Interp) RunUnit(unit *ast.Unit, traced bool) error {
	prev := ip.tracedUnit
	ip.tracedUnit = traced
	defer func() { ip.tracedUnit = prev }()

	for _, id := range unit.Body {
		if err := ip.execStmt(unit.Builder, id, ip.Globals); err != nil {
			return err
		}
	}
	return nil
}

func (ip *Interp) execStmt(b *ast.Builder, id ast.StmtID, env *Env) error {
	stmt := b.Stmts.Get(id)
	if stmt == nil {
		return nil
	}
	switch stmt.Kind {
	case ast.StmtExpr:
		d, _ := b.Stmts.Expr(id)
		_, err := ip.evalExpr(b, d.X, env)
		return err
	case ast.StmtAssign:
		d, _ := b.Stmts.Assign(id)
		value, err := ip.evalExpr(b, d.Value, env)
		if err != nil {
			return err
		}
		return ip.assign(b, d.Target, value, env)
	case ast.StmtReturn:
		d, _ := b.Stmts.Return(id)
		value := None()
		if d.X.IsValid() {
			var err error
			value, err = ip.evalExpr(b, d.X, env)
			if err != nil {
				return err
			}
		}
		return returnSignal{value: value}
	case ast.StmtIf:
		d, _ := b.Stmts.If(id)
		cond, err := ip.evalExpr(b, d.Cond, env)
		if err != nil {
			return err
		}
		if cond.Truthy() {
			return ip.execStmt(b, d.Then, env)
		}
		if d.Else.IsValid() {
			return ip.execStmt(b, d.Else, env)
		}
		return nil
	case ast.StmtWhile:
		d, _ := b.Stmts.While(id)
		for {
			cond, err := ip.evalExpr(b, d.Cond, env)
			if err != nil {
				return err
			}
			if !cond.Truthy() {
				return nil
			}
			if err := ip.execStmt(b, d.Body, env); err != nil {
				return err
			}
		}
	case ast.StmtBlock:
		d, _ := b.Stmts.Block(id)
		for _, s := range d.List {
			if err := ip.execStmt(b, s, env); err != nil {
				return err
			}
		}
		return nil
	case ast.StmtFunc:
		closure, err := ip.makeClosure(b, id, env)
		if err != nil {
			return err
		}
		env.Define(closure.Name, ClosureVal(closure))
		return nil
	case ast.StmtClass:
		d, _ := b.Stmts.Class(id)
		class := &Class{Name: d.Name, Methods: make(map[string]*Closure)}
		for _, m := range d.Methods {
			method, err := ip.makeClosure(b, m, env)
			if err != nil {
				return err
			}
			class.Methods[method.Name] = method
			class.Order = append(class.Order, method.Name)
		}
		env.Define(class.Name, ClassVal(class))
		return nil
	default:
		return Trapf(stmt.Span, "unsupported statement kind %d", stmt.Kind)
	}
}

// makeClosure evaluates parameter defaults and captures the defining scope.
func (ip *Interp) makeClosure(b *ast.Builder, id ast.StmtID, env *Env) (*Closure, error) {
	d, ok := b.Stmts.Func(id)
	if !ok {
		return nil, Trapf(b.Stmts.Get(id).Span, "not a function declaration")
	}
	params := make([]FormalParam, 0, len(d.Params))
	for _, p := range d.Params {
		fp := FormalParam{Name: p.Name, Kind: p.Kind}
		if p.Default.IsValid() {
			def, err := ip.evalExpr(b, p.Default, env)
			if err != nil {
				return nil, err
			}
			fp.HasDefault = true
			fp.Default = def
		}
		params = append(params, fp)
	}
	return &Closure{
		Name:   d.Name,
		Params: params,
		Body:   d.Body,
		B:      b,
		Env:    env,
		Traced: ip.tracedUnit,
	}, nil
}

func (ip *Interp) assign(b *ast.Builder, target ast.ExprID, value Value, env *Env) error {
	expr := b.Exprs.Get(target)
	switch expr.Kind {
	case ast.ExprIdent:
		d, _ := b.Exprs.Ident(target)
		env.Assign(d.Name, value)
		return nil
	case ast.ExprAttr:
		d, _ := b.Exprs.Attr(target)
		recv, err := ip.evalExpr(b, d.Target, env)
		if err != nil {
			return err
		}
		switch recv.Kind {
		case VKInstance:
			recv.Obj.(*Instance).Fields.Set(StringVal(d.Name), value)
			return nil
		case VKModule:
			recv.Obj.(*Module).Set(d.Name, value)
			return nil
		default:
			return Trapf(expr.Span, "%s value has no assignable attribute %q", recv.Kind, d.Name)
		}
	case ast.ExprIndex:
		d, _ := b.Exprs.Index(target)
		recv, err := ip.evalExpr(b, d.Target, env)
		if err != nil {
			return err
		}
		index, err := ip.evalExpr(b, d.Index, env)
		if err != nil {
			return err
		}
		switch recv.Kind {
		case VKList:
			l := recv.Obj.(*List)
			i, err := listIndex(expr.Span, index, len(l.Elems))
			if err != nil {
				return err
			}
			l.Elems[i] = value
			return nil
		case VKMap:
			recv.Obj.(*Map).Set(index, value)
			return nil
		default:
			return Trapf(expr.Span, "%s value is not index-assignable", recv.Kind)
		}
	default:
		return Trapf(expr.Span, "invalid assignment target")
	}
}

func (ip *Interp) evalExpr(b *ast.Builder, id ast.ExprID, env *Env) (Value, error) {
	expr := b.Exprs.Get(id)
	if expr == nil {
		return None(), Trapf(source.Span{}, "missing expression")
	}
	switch expr.Kind {
	case ast.ExprIdent:
		d, _ := b.Exprs.Ident(id)
		if v, ok := env.Get(d.Name); ok {
			return v, nil
		}
		return None(), Trapf(expr.Span, "name %q is not defined", d.Name)
	case ast.ExprLit:
		d, _ := b.Exprs.Lit(id)
		return litValue(d), nil
	case ast.ExprAttr:
		d, _ := b.Exprs.Attr(id)
		recv, err := ip.evalExpr(b, d.Target, env)
		if err != nil {
			return None(), err
		}
		return ip.getAttr(expr.Span, recv, d.Name)
	case ast.ExprCall:
		return ip.evalCall(b, id, env)
	case ast.ExprSpread:
		return None(), Trapf(expr.Span, "star argument outside call")
	case ast.ExprUnary:
		d, _ := b.Exprs.Unary(id)
		operand, err := ip.evalExpr(b, d.Operand, env)
		if err != nil {
			return None(), err
		}
		return evalUnary(expr.Span, d.Op, operand)
	case ast.ExprBinary:
		return ip.evalBinary(b, id, env)
	case ast.ExprIndex:
		d, _ := b.Exprs.Index(id)
		recv, err := ip.evalExpr(b, d.Target, env)
		if err != nil {
			return None(), err
		}
		index, err := ip.evalExpr(b, d.Index, env)
		if err != nil {
			return None(), err
		}
		return ip.getIndex(expr.Span, recv, index)
	case ast.ExprList:
		d, _ := b.Exprs.List(id)
		l := &List{Elems: make([]Value, 0, len(d.Elems))}
		for _, e := range d.Elems {
			v, err := ip.evalExpr(b, e, env)
			if err != nil {
				return None(), err
			}
			l.Elems = append(l.Elems, v)
		}
		return ListVal(l), nil
	case ast.ExprMap:
		d, _ := b.Exprs.Map(id)
		m := &Map{}
		for i := range d.Keys {
			k, err := ip.evalExpr(b, d.Keys[i], env)
			if err != nil {
				return None(), err
			}
			v, err := ip.evalExpr(b, d.Values[i], env)
			if err != nil {
				return None(), err
			}
			m.Set(k, v)
		}
		return MapVal(m), nil
	case ast.ExprGroup:
		d, _ := b.Exprs.Group(id)
		return ip.evalExpr(b, d.Inner, env)
	default:
		return None(), Trapf(expr.Span, "unsupported expression kind %d", expr.Kind)
	}
}

func litValue(d *ast.ExprLitData) Value {
	switch d.Kind {
	case ast.LitInt:
		return IntVal(d.Int)
	case ast.LitFloat:
		return FloatVal(d.Float)
	case ast.LitString:
		return StringVal(d.Str)
	case ast.LitBool:
		return BoolVal(d.Bool)
	default:
		return None()
	}
}

// evalCall evaluates callee and arguments in source order, expanding spread
// slots, then dispatches through Call.
func (ip *Interp) evalCall(b *ast.Builder, id ast.ExprID, env *Env) (Value, error) {
	expr := b.Exprs.Get(id)
	d, _ := b.Exprs.Call(id)

	callee, err := ip.evalExpr(b, d.Target, env)
	if err != nil {
		return None(), err
	}

	var args []Value
	var kwargs []Keyword
	for _, arg := range d.Args {
		if spread, ok := b.Exprs.Spread(arg); ok {
			seq, err := ip.evalExpr(b, spread.Value, env)
			if err != nil {
				return None(), err
			}
			if seq.Kind != VKList {
				return None(), Trapf(b.Exprs.Span(arg), "* argument must be a list, got %s", seq.Kind)
			}
			args = append(args, seq.Obj.(*List).Elems...)
			continue
		}
		v, err := ip.evalExpr(b, arg, env)
		if err != nil {
			return None(), err
		}
		args = append(args, v)
	}
	for _, kw := range d.Keywords {
		v, err := ip.evalExpr(b, kw.Value, env)
		if err != nil {
			return None(), err
		}
		if kw.Name == "" {
			merged, err := mergeKeywordSpread(b.Exprs.Span(kw.Value), v, kwargs)
			if err != nil {
				return None(), err
			}
			kwargs = merged
			continue
		}
		for _, prev := range kwargs {
			if prev.Name == kw.Name {
				return None(), Trapf(expr.Span, "duplicate keyword argument %q", kw.Name)
			}
		}
		kwargs = append(kwargs, Keyword{Name: kw.Name, Value: v})
	}
	if d.StarArgs.IsValid() {
		seq, err := ip.evalExpr(b, d.StarArgs, env)
		if err != nil {
			return None(), err
		}
		if seq.Kind != VKList {
			return None(), Trapf(b.Exprs.Span(d.StarArgs), "* argument must be a list, got %s", seq.Kind)
		}
		args = append(args, seq.Obj.(*List).Elems...)
	}
	if d.KwSpread.IsValid() {
		v, err := ip.evalExpr(b, d.KwSpread, env)
		if err != nil {
			return None(), err
		}
		merged, err := mergeKeywordSpread(b.Exprs.Span(d.KwSpread), v, kwargs)
		if err != nil {
			return None(), err
		}
		kwargs = merged
	}

	return ip.Call(expr.Span, callee, args, kwargs)
}

func mergeKeywordSpread(sp source.Span, v Value, kwargs []Keyword) ([]Keyword, error) {
	if v.Kind != VKMap {
		return nil, Trapf(sp, "** argument must be a map, got %s", v.Kind)
	}
	m := v.Obj.(*Map)
	for i, k := range m.Keys {
		if k.Kind != VKString {
			return nil, Trapf(sp, "** argument keys must be strings, got %s", k.Kind)
		}
		for _, prev := range kwargs {
			if prev.Name == k.Str {
				return nil, Trapf(sp, "duplicate keyword argument %q", k.Str)
			}
		}
		kwargs = append(kwargs, Keyword{Name: k.Str, Value: m.Values[i]})
	}
	return kwargs, nil
}

// CallSpan returns the span of the innermost active call.
func (ip *Interp) CallSpan() source.Span {
	return ip.callSpan
}

// Call invokes callee with already-evaluated arguments. Failures from the
// callee propagate unmodified.
func (ip *Interp) Call(sp source.Span, callee Value, args []Value, kwargs []Keyword) (Value, error) {
	prev := ip.callSpan
	ip.callSpan = sp
	defer func() { ip.callSpan = prev }()

	switch callee.Kind {
	case VKClosure:
		return ip.callClosure(sp, callee.Obj.(*Closure), args, kwargs)
	case VKBuiltin:
		b := callee.Obj.(*Builtin)
		if b.Recv != nil && !b.RecvIsModule {
			args = append([]Value{*b.Recv}, args...)
		}
		return b.Fn(ip, args, kwargs)
	case VKBoundMethod:
		m := callee.Obj.(*BoundMethod)
		return ip.callClosure(sp, m.Fn, append([]Value{m.Recv}, args...), kwargs)
	case VKClass:
		return ip.instantiate(sp, callee.Obj.(*Class), args, kwargs)
	default:
		return None(), Trapf(sp, "%s value is not callable", callee.Kind)
	}
}

func (ip *Interp) callClosure(sp source.Span, fn *Closure, args []Value, kwargs []Keyword) (Value, error) {
	bindings, err := BindParams(fn.Name, fn.Params, args, kwargs)
	if err != nil {
		if bindErr, ok := err.(*BindError); ok {
			return None(), Trapf(sp, "%s", bindErr.Error())
		}
		return None(), err
	}
	local := NewEnv(fn.Env)
	for _, binding := range bindings {
		local.Define(binding.Name, binding.Value)
	}
	err = ip.execStmt(fn.B, fn.Body, local)
	if ret, ok := err.(returnSignal); ok {
		return ret.value, nil
	}
	if err != nil {
		return None(), err
	}
	return None(), nil
}

func (ip *Interp) instantiate(sp source.Span, class *Class, args []Value, kwargs []Keyword) (Value, error) {
	inst := &Instance{Class: class, Fields: &Map{}}
	self := InstanceVal(inst)
	if init, ok := class.Method("init"); ok {
		if _, err := ip.callClosure(sp, init, append([]Value{self}, args...), kwargs); err != nil {
			return None(), err
		}
	} else if len(args) > 0 || len(kwargs) > 0 {
		return None(), Trapf(sp, "class %s takes no arguments", class.Name)
	}
	return self, nil
}

func (ip *Interp) getAttr(sp source.Span, recv Value, name string) (Value, error) {
	switch recv.Kind {
	case VKInstance:
		inst := recv.Obj.(*Instance)
		if v, ok := inst.Fields.Get(StringVal(name)); ok {
			return v, nil
		}
		if m, ok := inst.Class.Method(name); ok {
			return BoundVal(&BoundMethod{Recv: recv, Fn: m}), nil
		}
		return None(), Trapf(sp, "%s instance has no attribute %q", inst.Class.Name, name)
	case VKClass:
		class := recv.Obj.(*Class)
		if m, ok := class.Method(name); ok {
			return ClosureVal(m), nil
		}
		return None(), Trapf(sp, "class %s has no attribute %q", class.Name, name)
	case VKModule:
		mod := recv.Obj.(*Module)
		if v, ok := mod.Get(name); ok {
			return v, nil
		}
		return None(), Trapf(sp, "module %s has no attribute %q", mod.Name, name)
	case VKString, VKList, VKMap:
		if method, ok := lookupBuiltinMethod(recv, name); ok {
			return method, nil
		}
		return None(), Trapf(sp, "%s value has no method %q", recv.Kind, name)
	default:
		return None(), Trapf(sp, "%s value has no attribute %q", recv.Kind, name)
	}
}

func (ip *Interp) getIndex(sp source.Span, recv, index Value) (Value, error) {
	switch recv.Kind {
	case VKList:
		l := recv.Obj.(*List)
		i, err := listIndex(sp, index, len(l.Elems))
		if err != nil {
			return None(), err
		}
		return l.Elems[i], nil
	case VKString:
		i, err := listIndex(sp, index, len(recv.Str))
		if err != nil {
			return None(), err
		}
		return StringVal(recv.Str[i : i+1]), nil
	case VKMap:
		if v, ok := recv.Obj.(*Map).Get(index); ok {
			return v, nil
		}
		return None(), Trapf(sp, "key %s not found", index.Repr())
	default:
		return None(), Trapf(sp, "%s value is not indexable", recv.Kind)
	}
}

// listIndex converts a Flow index to a bounds-checked Go index. Negative
// indices count from the end.
func listIndex(sp source.Span, index Value, length int) (int, error) {
	if index.Kind != VKInt {
		return 0, Trapf(sp, "index must be an int, got %s", index.Kind)
	}
	raw := index.Int
	if raw < 0 {
		raw += int64(length)
	}
	i, err := safecast.Conv[int](raw)
	if err != nil || i < 0 || i >= length {
		return 0, Trapf(sp, "index %d out of range for length %d", index.Int, length)
	}
	return i, nil
}

func evalUnary(sp source.Span, op ast.UnaryOp, operand Value) (Value, error) {
	switch op {
	case ast.UnaryNeg:
		switch operand.Kind {
		case VKInt:
			return IntVal(-operand.Int), nil
		case VKFloat:
			return FloatVal(-operand.Float), nil
		default:
			return None(), Trapf(sp, "cannot negate %s value", operand.Kind)
		}
	case ast.UnaryNot:
		return BoolVal(!operand.Truthy()), nil
	default:
		return None(), Trapf(sp, "unsupported unary operator")
	}
}

func (ip *Interp) evalBinary(b *ast.Builder, id ast.ExprID, env *Env) (Value, error) {
	expr := b.Exprs.Get(id)
	d, _ := b.Exprs.Binary(id)

	// and/or short-circuit before the right operand is evaluated.
	if d.Op == ast.BinaryAnd || d.Op == ast.BinaryOr {
		left, err := ip.evalExpr(b, d.Left, env)
		if err != nil {
			return None(), err
		}
		if d.Op == ast.BinaryAnd && !left.Truthy() {
			return left, nil
		}
		if d.Op == ast.BinaryOr && left.Truthy() {
			return left, nil
		}
		return ip.evalExpr(b, d.Right, env)
	}

	left, err := ip.evalExpr(b, d.Left, env)
	if err != nil {
		return None(), err
	}
	right, err := ip.evalExpr(b, d.Right, env)
	if err != nil {
		return None(), err
	}
	return evalBinaryOp(expr.Span, d.Op, left, right)
}

func evalBinaryOp(sp source.Span, op ast.BinaryOp, left, right Value) (Value, error) {
	switch op {
	case ast.BinaryEq:
		return BoolVal(Equal(left, right)), nil
	case ast.BinaryNotEq:
		return BoolVal(!Equal(left, right)), nil
	}

	if left.Kind == VKString && right.Kind == VKString {
		switch op {
		case ast.BinaryAdd:
			return StringVal(left.Str + right.Str), nil
		case ast.BinaryLt:
			return BoolVal(left.Str < right.Str), nil
		case ast.BinaryGt:
			return BoolVal(left.Str > right.Str), nil
		case ast.BinaryLtEq:
			return BoolVal(left.Str <= right.Str), nil
		case ast.BinaryGtEq:
			return BoolVal(left.Str >= right.Str), nil
		}
	}
	if left.Kind == VKList && right.Kind == VKList && op == ast.BinaryAdd {
		la, lb := left.Obj.(*List), right.Obj.(*List)
		merged := &List{Elems: make([]Value, 0, len(la.Elems)+len(lb.Elems))}
		merged.Elems = append(merged.Elems, la.Elems...)
		merged.Elems = append(merged.Elems, lb.Elems...)
		return ListVal(merged), nil
	}

	if !isNumeric(left) || !isNumeric(right) {
		return None(), Trapf(sp, "unsupported operand types %s and %s", left.Kind, right.Kind)
	}

	if left.Kind == VKInt && right.Kind == VKInt {
		a, c := left.Int, right.Int
		switch op {
		case ast.BinaryAdd:
			return IntVal(a + c), nil
		case ast.BinarySub:
			return IntVal(a - c), nil
		case ast.BinaryMul:
			return IntVal(a * c), nil
		case ast.BinaryDiv:
			if c == 0 {
				return None(), Trapf(sp, "division by zero")
			}
			return FloatVal(float64(a) / float64(c)), nil
		case ast.BinaryMod:
			if c == 0 {
				return None(), Trapf(sp, "modulo by zero")
			}
			return IntVal(a % c), nil
		case ast.BinaryLt:
			return BoolVal(a < c), nil
		case ast.BinaryGt:
			return BoolVal(a > c), nil
		case ast.BinaryLtEq:
			return BoolVal(a <= c), nil
		case ast.BinaryGtEq:
			return BoolVal(a >= c), nil
		}
	}

	a, c := asFloat(left), asFloat(right)
	switch op {
	case ast.BinaryAdd:
		return FloatVal(a + c), nil
	case ast.BinarySub:
		return FloatVal(a - c), nil
	case ast.BinaryMul:
		return FloatVal(a * c), nil
	case ast.BinaryDiv:
		if c == 0 {
			return None(), Trapf(sp, "division by zero")
		}
		return FloatVal(a / c), nil
	case ast.BinaryMod:
		return FloatVal(math.Mod(a, c)), nil
	case ast.BinaryLt:
		return BoolVal(a < c), nil
	case ast.BinaryGt:
		return BoolVal(a > c), nil
	case ast.BinaryLtEq:
		return BoolVal(a <= c), nil
	case ast.BinaryGtEq:
		return BoolVal(a >= c), nil
	default:
		return None(), Trapf(sp, "unsupported binary operator")
	}
}
