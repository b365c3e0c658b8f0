package ast

import "flowtrace/internal/source"

// Exprs manages allocation of expressions. Nodes are append-only: rewrites
// allocate new nodes and never mutate existing ones.
type Exprs struct {
	Arena    *Arena[Expr]
	Idents   *Arena[ExprIdentData]
	Literals *Arena[ExprLitData]
	Attrs    *Arena[ExprAttrData]
	Calls    *Arena[ExprCallData]
	Spreads  *Arena[ExprSpreadData]
	Unaries  *Arena[ExprUnaryData]
	Binaries *Arena[ExprBinaryData]
	Indices  *Arena[ExprIndexData]
	Lists    *Arena[ExprListData]
	Maps     *Arena[ExprMapData]
	Groups   *Arena[ExprGroupData]
}

// NewExprs creates an Exprs with per-kind arenas preallocated to capHint.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:    NewArena[Expr](capHint),
		Idents:   NewArena[ExprIdentData](capHint),
		Literals: NewArena[ExprLitData](capHint),
		Attrs:    NewArena[ExprAttrData](capHint),
		Calls:    NewArena[ExprCallData](capHint),
		Spreads:  NewArena[ExprSpreadData](capHint),
		Unaries:  NewArena[ExprUnaryData](capHint),
		Binaries: NewArena[ExprBinaryData](capHint),
		Indices:  NewArena[ExprIndexData](capHint),
		Lists:    NewArena[ExprListData](capHint),
		Maps:     NewArena[ExprMapData](capHint),
		Groups:   NewArena[ExprGroupData](capHint),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: span, Payload: payload}))
}

// Get returns the expression node for id, or nil for NoExprID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// Kind returns the kind of id. NoExprID reports ExprIdent; callers must
// check validity first when it matters.
func (e *Exprs) Kind(id ExprID) ExprKind {
	if expr := e.Get(id); expr != nil {
		return expr.Kind
	}
	return ExprIdent
}

// Span returns the source span of id.
func (e *Exprs) Span(id ExprID) source.Span {
	if expr := e.Get(id); expr != nil {
		return expr.Span
	}
	return source.Span{}
}

// NewIdent creates an identifier expression.
func (e *Exprs) NewIdent(span source.Span, name string) ExprID {
	payload := e.Idents.Allocate(ExprIdentData{Name: name})
	return e.new(ExprIdent, span, PayloadID(payload))
}

// Ident returns identifier data for id.
func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIdent {
		return nil, false
	}
	return e.Idents.Get(uint32(expr.Payload)), true
}

// NewLit creates a literal expression.
func (e *Exprs) NewLit(span source.Span, data ExprLitData) ExprID {
	payload := e.Literals.Allocate(data)
	return e.new(ExprLit, span, PayloadID(payload))
}

// Lit returns literal data for id.
func (e *Exprs) Lit(id ExprID) (*ExprLitData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprLit {
		return nil, false
	}
	return e.Literals.Get(uint32(expr.Payload)), true
}

// NewAttr creates an attribute access expression.
func (e *Exprs) NewAttr(span source.Span, target ExprID, name string) ExprID {
	payload := e.Attrs.Allocate(ExprAttrData{Target: target, Name: name})
	return e.new(ExprAttr, span, PayloadID(payload))
}

// Attr returns attribute data for id.
func (e *Exprs) Attr(id ExprID) (*ExprAttrData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprAttr {
		return nil, false
	}
	return e.Attrs.Get(uint32(expr.Payload)), true
}

// NewCall creates a call expression. Argument slices are copied.
func (e *Exprs) NewCall(span source.Span, data ExprCallData) ExprID {
	data.Args = append([]ExprID(nil), data.Args...)
	data.Keywords = append([]CallKeyword(nil), data.Keywords...)
	payload := e.Calls.Allocate(data)
	return e.new(ExprCall, span, PayloadID(payload))
}

// Call returns call data for id.
func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprCall {
		return nil, false
	}
	return e.Calls.Get(uint32(expr.Payload)), true
}

// NewSpread creates an inline star marker around value.
func (e *Exprs) NewSpread(span source.Span, value ExprID) ExprID {
	payload := e.Spreads.Allocate(ExprSpreadData{Value: value})
	return e.new(ExprSpread, span, PayloadID(payload))
}

// Spread returns spread data for id.
func (e *Exprs) Spread(id ExprID) (*ExprSpreadData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprSpread {
		return nil, false
	}
	return e.Spreads.Get(uint32(expr.Payload)), true
}

// NewUnary creates a unary expression.
func (e *Exprs) NewUnary(span source.Span, op UnaryOp, operand ExprID) ExprID {
	payload := e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand})
	return e.new(ExprUnary, span, PayloadID(payload))
}

// Unary returns unary data for id.
func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprUnary {
		return nil, false
	}
	return e.Unaries.Get(uint32(expr.Payload)), true
}

// NewBinary creates a binary expression.
func (e *Exprs) NewBinary(span source.Span, op BinaryOp, left, right ExprID) ExprID {
	payload := e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right})
	return e.new(ExprBinary, span, PayloadID(payload))
}

// Binary returns binary data for id.
func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBinary {
		return nil, false
	}
	return e.Binaries.Get(uint32(expr.Payload)), true
}

// NewIndex creates an index expression.
func (e *Exprs) NewIndex(span source.Span, target, index ExprID) ExprID {
	payload := e.Indices.Allocate(ExprIndexData{Target: target, Index: index})
	return e.new(ExprIndex, span, PayloadID(payload))
}

// Index returns index data for id.
func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIndex {
		return nil, false
	}
	return e.Indices.Get(uint32(expr.Payload)), true
}

// NewList creates a list literal.
func (e *Exprs) NewList(span source.Span, elems []ExprID) ExprID {
	payload := e.Lists.Allocate(ExprListData{Elems: append([]ExprID(nil), elems...)})
	return e.new(ExprList, span, PayloadID(payload))
}

// List returns list data for id.
func (e *Exprs) List(id ExprID) (*ExprListData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprList {
		return nil, false
	}
	return e.Lists.Get(uint32(expr.Payload)), true
}

// NewMap creates a map literal. keys and values must be the same length.
func (e *Exprs) NewMap(span source.Span, keys, values []ExprID) ExprID {
	payload := e.Maps.Allocate(ExprMapData{
		Keys:   append([]ExprID(nil), keys...),
		Values: append([]ExprID(nil), values...),
	})
	return e.new(ExprMap, span, PayloadID(payload))
}

// Map returns map data for id.
func (e *Exprs) Map(id ExprID) (*ExprMapData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprMap {
		return nil, false
	}
	return e.Maps.Get(uint32(expr.Payload)), true
}

// NewGroup creates a parenthesized group.
func (e *Exprs) NewGroup(span source.Span, inner ExprID) ExprID {
	payload := e.Groups.Allocate(ExprGroupData{Inner: inner})
	return e.new(ExprGroup, span, PayloadID(payload))
}

// Group returns group data for id.
func (e *Exprs) Group(id ExprID) (*ExprGroupData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprGroup {
		return nil, false
	}
	return e.Groups.Get(uint32(expr.Payload)), true
}
