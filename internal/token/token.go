package token

import "flowtrace/internal/source"

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsLiteral reports whether the token is a numeric, boolean, string, or none
// literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit, KwTrue, KwFalse, KwNone:
		return true
	default:
		return false
	}
}

// EndsStatement reports whether a newline after this token terminates a
// statement.
func (t Token) EndsStatement() bool {
	switch t.Kind {
	case Ident, IntLit, FloatLit, StringLit, KwTrue, KwFalse, KwNone,
		KwReturn, RParen, RBracket, RBrace:
		return true
	default:
		return false
	}
}
