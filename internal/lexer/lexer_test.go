package lexer_test

import (
	"testing"

	"flowtrace/internal/lexer"
	"flowtrace/internal/source"
	"flowtrace/internal/token"
)

// makeLexer builds a lexer over an in-memory source string.
func makeLexer(t *testing.T, src string) *lexer.Lexer {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Add("test.flow", []byte(src), source.FileVirtual)
	return lexer.New(fs.Get(id))
}

// collectKinds drains the lexer and returns every token kind before EOF.
func collectKinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	lx := makeLexer(t, src)
	var kinds []token.Kind
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			return kinds
		}
		kinds = append(kinds, tok.Kind)
	}
}

func kindsEqual(a, b []token.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLexer_Kinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{
			name: "call with keyword argument",
			src:  "f(1, y=2)",
			want: []token.Kind{
				token.Ident, token.LParen, token.IntLit, token.Comma,
				token.Ident, token.Assign, token.IntLit, token.RParen,
				token.Semi,
			},
		},
		{
			name: "star and double star",
			src:  "g(*xs, **kw)",
			want: []token.Kind{
				token.Ident, token.LParen, token.Star, token.Ident, token.Comma,
				token.StarStar, token.Ident, token.RParen, token.Semi,
			},
		},
		{
			name: "keywords",
			src:  "def class return if else while and or not true false none",
			want: []token.Kind{
				token.KwDef, token.KwClass, token.KwReturn, token.KwIf,
				token.KwElse, token.KwWhile, token.KwAnd, token.KwOr,
				token.KwNot, token.KwTrue, token.KwFalse, token.KwNone,
				token.Semi,
			},
		},
		{
			name: "comparison operators",
			src:  "a == b != c <= d >= e < f > g",
			want: []token.Kind{
				token.Ident, token.EqEq, token.Ident, token.BangEq, token.Ident,
				token.LtEq, token.Ident, token.GtEq, token.Ident,
				token.Lt, token.Ident, token.Gt, token.Ident, token.Semi,
			},
		},
		{
			name: "literals",
			src:  `42 3.5 "hi"`,
			want: []token.Kind{token.IntLit, token.FloatLit, token.StringLit, token.Semi},
		},
		{
			name: "comment skipped",
			src:  "x # trailing words\n",
			want: []token.Kind{token.Ident, token.Semi},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectKinds(t, tt.src)
			if !kindsEqual(got, tt.want) {
				t.Errorf("kinds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLexer_NewlineBecomesSemi(t *testing.T) {
	got := collectKinds(t, "x = 1\ny = 2\n")
	want := []token.Kind{
		token.Ident, token.Assign, token.IntLit, token.Semi,
		token.Ident, token.Assign, token.IntLit, token.Semi,
	}
	if !kindsEqual(got, want) {
		t.Errorf("kinds = %v, want %v", got, want)
	}
}

func TestLexer_NoSemiInsideParens(t *testing.T) {
	// A newline inside an argument list must not break the statement.
	got := collectKinds(t, "f(1,\n  2)\n")
	want := []token.Kind{
		token.Ident, token.LParen, token.IntLit, token.Comma,
		token.IntLit, token.RParen, token.Semi,
	}
	if !kindsEqual(got, want) {
		t.Errorf("kinds = %v, want %v", got, want)
	}
}

func TestLexer_StringEscapes(t *testing.T) {
	lx := makeLexer(t, `"a\n\t\"b\\"`)
	tok := lx.Next()
	if tok.Kind != token.StringLit {
		t.Fatalf("kind = %v, want StringLit", tok.Kind)
	}
	if tok.Text != "a\n\t\"b\\" {
		t.Errorf("text = %q, want %q", tok.Text, "a\n\t\"b\\")
	}
}

func TestLexer_PeekDoesNotConsume(t *testing.T) {
	lx := makeLexer(t, "a b")
	if lx.Peek().Text != "a" || lx.Peek().Text != "a" {
		t.Fatal("Peek consumed a token")
	}
	if lx.PeekSecond().Text != "b" {
		t.Fatal("PeekSecond did not see the second token")
	}
	if lx.Next().Text != "a" {
		t.Fatal("Next did not return the peeked token")
	}
}

func TestLexer_UnterminatedString(t *testing.T) {
	lx := makeLexer(t, `"abc`)
	for lx.Next().Kind != token.EOF {
	}
	if len(lx.Errors()) == 0 {
		t.Error("expected an error for unterminated string")
	}
}
