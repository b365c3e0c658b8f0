package token

var keywords = map[string]Kind{
	"def":    KwDef,
	"class":  KwClass,
	"return": KwReturn,
	"if":     KwIf,
	"else":   KwElse,
	"while":  KwWhile,
	"true":   KwTrue,
	"false":  KwFalse,
	"none":   KwNone,
	"and":    KwAnd,
	"or":     KwOr,
	"not":    KwNot,
}

// LookupKeyword returns the keyword kind for ident, or Ident if it is not a
// keyword.
func LookupKeyword(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return Ident
}
