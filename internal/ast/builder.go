package ast

// Builder bundles the expression and statement arenas for one parse unit
// and any rewrites derived from it.
type Builder struct {
	Exprs *Exprs
	Stmts *Stmts
}

// Hints sets initial arena capacities.
type Hints struct{ Stmts, Exprs uint }

// NewBuilder creates a builder with the given capacity hints.
func NewBuilder(hints Hints) *Builder {
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	return &Builder{
		Exprs: NewExprs(hints.Exprs),
		Stmts: NewStmts(hints.Stmts),
	}
}

// Unit is one parsed program unit: an ordered top-level statement list over
// a shared builder.
type Unit struct {
	Builder *Builder
	Body    []StmtID
}
