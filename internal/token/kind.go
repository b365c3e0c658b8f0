package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// Semi is an explicit ';' or a newline acting as a statement break.
	Semi

	// Ident represents an identifier token.
	Ident
	// IntLit represents an integer literal.
	IntLit
	// FloatLit represents a floating-point literal.
	FloatLit
	// StringLit represents a string literal.
	StringLit

	// KwDef represents the 'def' keyword.
	KwDef // def
	// KwClass represents the 'class' keyword.
	KwClass // class
	// KwReturn represents the 'return' keyword.
	KwReturn // return
	// KwIf represents the 'if' keyword.
	KwIf // if
	// KwElse represents the 'else' keyword.
	KwElse // else
	// KwWhile represents the 'while' keyword.
	KwWhile // while
	// KwTrue represents the 'true' keyword.
	KwTrue // true
	// KwFalse represents the 'false' keyword.
	KwFalse // false
	// KwNone represents the 'none' keyword.
	KwNone // none
	// KwAnd represents the 'and' keyword.
	KwAnd // and
	// KwOr represents the 'or' keyword.
	KwOr // or
	// KwNot represents the 'not' keyword.
	KwNot // not

	// LParen represents '('.
	LParen
	// RParen represents ')'.
	RParen
	// LBracket represents '['.
	LBracket
	// RBracket represents ']'.
	RBracket
	// LBrace represents '{'.
	LBrace
	// RBrace represents '}'.
	RBrace
	// Comma represents ','.
	Comma
	// Colon represents ':'.
	Colon
	// Dot represents '.'.
	Dot
	// Assign represents '='.
	Assign
	// EqEq represents '=='.
	EqEq
	// BangEq represents '!='.
	BangEq
	// Lt represents '<'.
	Lt
	// Gt represents '>'.
	Gt
	// LtEq represents '<='.
	LtEq
	// GtEq represents '>='.
	GtEq
	// Plus represents '+'.
	Plus
	// Minus represents '-'.
	Minus
	// Star represents '*'.
	Star
	// StarStar represents '**'.
	StarStar
	// Slash represents '/'.
	Slash
	// Percent represents '%'.
	Percent
)

var kindNames = [...]string{
	Invalid:   "invalid",
	EOF:       "eof",
	Semi:      ";",
	Ident:     "identifier",
	IntLit:    "int literal",
	FloatLit:  "float literal",
	StringLit: "string literal",
	KwDef:     "def",
	KwClass:   "class",
	KwReturn:  "return",
	KwIf:      "if",
	KwElse:    "else",
	KwWhile:   "while",
	KwTrue:    "true",
	KwFalse:   "false",
	KwNone:    "none",
	KwAnd:     "and",
	KwOr:      "or",
	KwNot:     "not",
	LParen:    "(",
	RParen:    ")",
	LBracket:  "[",
	RBracket:  "]",
	LBrace:    "{",
	RBrace:    "}",
	Comma:     ",",
	Colon:     ":",
	Dot:       ".",
	Assign:    "=",
	EqEq:      "==",
	BangEq:    "!=",
	Lt:        "<",
	Gt:        ">",
	LtEq:      "<=",
	GtEq:      ">=",
	Plus:      "+",
	Minus:     "-",
	Star:      "*",
	StarStar:  "**",
	Slash:     "/",
	Percent:   "%",
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}
