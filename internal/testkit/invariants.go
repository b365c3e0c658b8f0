package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"flowtrace/internal/ast"
	"flowtrace/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed
// unit:
// 1) every top-level statement span is non-empty and within content bounds
// 2) every span points at the parsed file
func CheckSpanInvariants(unit *ast.Unit, sf *source.File) error {
	if unit == nil || sf == nil {
		return fmt.Errorf("nil unit or file")
	}

	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	for _, id := range unit.Body {
		stmt := unit.Builder.Stmts.Get(id)
		if stmt == nil {
			return fmt.Errorf("nil statement for id=%d", id)
		}
		sp := stmt.Span
		if sp.End <= sp.Start {
			return fmt.Errorf("empty statement span: %v", sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("statement span file mismatch: got=%d want=%d", sp.File, sf.ID)
		}
		if sp.End > lenContent {
			return fmt.Errorf("statement span end beyond content: %d > %d", sp.End, lenContent)
		}
	}
	return nil
}
