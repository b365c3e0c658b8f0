package ast

import "flowtrace/internal/source"

// ExprKind enumerates the different kinds of expressions.
type ExprKind uint8

const (
	// ExprIdent represents an identifier expression.
	ExprIdent ExprKind = iota
	// ExprLit represents a literal expression.
	ExprLit
	// ExprAttr represents an attribute access expression.
	ExprAttr
	// ExprCall represents a call expression.
	ExprCall
	// ExprSpread represents an inline star marker around an argument.
	ExprSpread
	// ExprUnary represents a unary expression.
	ExprUnary
	// ExprBinary represents a binary expression.
	ExprBinary
	// ExprIndex represents an index expression.
	ExprIndex
	// ExprList represents a list literal.
	ExprList
	// ExprMap represents a map literal.
	ExprMap
	// ExprGroup represents a parenthesized expression.
	ExprGroup
)

// Expr represents an expression node.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

// LitKind enumerates literal variants.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitBool
	LitNone
)

// ExprIdentData holds identifier details.
type ExprIdentData struct {
	Name string
}

// ExprLitData holds literal details. Only the field matching Kind is
// meaningful.
type ExprLitData struct {
	Kind  LitKind
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

// ExprAttrData holds attribute access details (target.name).
type ExprAttrData struct {
	Target ExprID
	Name   string
}

// CallKeyword is one keyword argument slot. An empty Name marks a
// mapping-merge slot (the inline ** dialect).
type CallKeyword struct {
	Name  string
	Value ExprID
}

// ExprCallData holds call expression details.
//
// Two spread dialects are representable. In the inline dialect a positional
// argument may be an ExprSpread node and a keyword slot may carry an empty
// name. In the explicit-slot dialect StarArgs and KwSpread hold the spread
// sub-expressions directly and never appear in Args or Keywords.
type ExprCallData struct {
	Target   ExprID
	Args     []ExprID
	Keywords []CallKeyword
	StarArgs ExprID // NoExprID when absent
	KwSpread ExprID // NoExprID when absent
}

// HasLegacySpread reports whether the call uses the explicit-slot dialect.
func (d *ExprCallData) HasLegacySpread() bool {
	return d.StarArgs.IsValid() || d.KwSpread.IsValid()
}

// ExprSpreadData holds the expression under an inline star marker.
type ExprSpreadData struct {
	Value ExprID
}

// UnaryOp enumerates unary operator kinds.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota // -
	UnaryNot                // not
)

// ExprUnaryData holds unary expression details.
type ExprUnaryData struct {
	Op      UnaryOp
	Operand ExprID
}

// BinaryOp enumerates binary operator kinds.
type BinaryOp uint8

const (
	BinaryAdd BinaryOp = iota // +
	BinarySub                 // -
	BinaryMul                 // *
	BinaryDiv                 // /
	BinaryMod                 // %
	BinaryEq                  // ==
	BinaryNotEq               // !=
	BinaryLt                  // <
	BinaryGt                  // >
	BinaryLtEq                // <=
	BinaryGtEq                // >=
	BinaryAnd                 // and
	BinaryOr                  // or
)

// ExprBinaryData holds binary expression details.
type ExprBinaryData struct {
	Op    BinaryOp
	Left  ExprID
	Right ExprID
}

// ExprIndexData holds index expression details (target[index]).
type ExprIndexData struct {
	Target ExprID
	Index  ExprID
}

// ExprListData holds list literal elements.
type ExprListData struct {
	Elems []ExprID
}

// ExprMapData holds map literal entries as parallel key/value slices.
type ExprMapData struct {
	Keys   []ExprID
	Values []ExprID
}

// ExprGroupData holds the inner expression of a parenthesized group.
type ExprGroupData struct {
	Inner ExprID
}
