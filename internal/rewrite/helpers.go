// Package rewrite transforms Flow units so every call expression reports
// its callee, arguments, and return value to an external observer, without
// changing what the program computes.
package rewrite

import (
	"flowtrace/internal/ast"
	"flowtrace/internal/source"
)

// Rewriter is one call-instrumentation strategy over parsed units.
type Rewriter interface {
	// Rewrite returns a new unit with calls instrumented. The input unit
	// and its nodes are never mutated.
	Rewrite(unit *ast.Unit) (*ast.Unit, error)
}

// toName builds an identifier node.
func toName(b *ast.Builder, sp source.Span, name string) ast.ExprID {
	return b.Exprs.NewIdent(sp, name)
}

// toAttr builds a target.name attribute node.
func toAttr(b *ast.Builder, sp source.Span, target ast.ExprID, name string) ast.ExprID {
	return b.Exprs.NewAttr(sp, target, name)
}

// toCall builds a plain positional-and-keyword call node.
func toCall(b *ast.Builder, sp source.Span, target ast.ExprID, args []ast.ExprID, keywords ...ast.CallKeyword) ast.ExprID {
	return b.Exprs.NewCall(sp, ast.ExprCallData{
		Target:   target,
		Args:     args,
		Keywords: keywords,
	})
}

// toIntLit builds an integer literal node.
func toIntLit(b *ast.Builder, sp source.Span, v int64) ast.ExprID {
	return b.Exprs.NewLit(sp, ast.ExprLitData{Kind: ast.LitInt, Int: v})
}

// toStrLit builds a string literal node.
func toStrLit(b *ast.Builder, sp source.Span, s string) ast.ExprID {
	return b.Exprs.NewLit(sp, ast.ExprLitData{Kind: ast.LitString, Str: s})
}
