// Package lexer turns Flow source bytes into a token stream.
//
// Newlines act as statement breaks: after a token that can end a statement
// the lexer emits a synthetic Semi, so the parser never has to look at
// whitespace.
package lexer

import (
	"fmt"

	"flowtrace/internal/source"
	"flowtrace/internal/token"
)

// Lexer scans one source file. It keeps a two-token lookahead buffer so the
// parser can distinguish `name = value` arguments without consuming.
type Lexer struct {
	file *source.File
	cur  Cursor
	look  []token.Token
	prev  token.Kind // last significant token, for newline -> Semi insertion
	depth int        // paren/bracket nesting; newlines inside are not breaks
	errs  []error
}

// New creates a lexer over file.
func New(file *source.File) *Lexer {
	return &Lexer{file: file, cur: NewCursor(file)}
}

// Errors returns scan errors accumulated so far.
func (lx *Lexer) Errors() []error {
	return lx.errs
}

// Peek returns the next significant token without consuming it.
func (lx *Lexer) Peek() token.Token {
	lx.fill(1)
	return lx.look[0]
}

// PeekSecond returns the token after the next one without consuming either.
func (lx *Lexer) PeekSecond() token.Token {
	lx.fill(2)
	return lx.look[1]
}

// Next consumes and returns the next significant token. After EOF it always
// returns EOF.
func (lx *Lexer) Next() token.Token {
	lx.fill(1)
	tok := lx.look[0]
	lx.look = lx.look[1:]
	return tok
}

func (lx *Lexer) fill(n int) {
	for len(lx.look) < n {
		tok := lx.scan()
		lx.prev = tok.Kind
		switch tok.Kind {
		case token.LParen, token.LBracket:
			lx.depth++
		case token.RParen, token.RBracket:
			if lx.depth > 0 {
				lx.depth--
			}
		}
		lx.look = append(lx.look, tok)
	}
}

func (lx *Lexer) scan() token.Token {
	for {
		lx.skipSpacesAndComments()

		if lx.cur.EOF() {
			if lx.pendingSemi() {
				return lx.newlineSemi()
			}
			return token.Token{Kind: token.EOF, Span: lx.cur.SpanHere()}
		}

		ch := lx.cur.Peek()
		if ch == '\n' {
			lx.cur.Bump()
			if lx.pendingSemi() {
				return lx.newlineSemi()
			}
			continue
		}

		switch {
		case isIdentStart(ch):
			return lx.scanIdentOrKeyword()
		case isDigit(ch):
			return lx.scanNumber()
		case ch == '"':
			return lx.scanString()
		default:
			return lx.scanOperatorOrPunct()
		}
	}
}

// pendingSemi reports whether a newline at the current position should become
// a statement break. Newlines inside parentheses or brackets never are.
func (lx *Lexer) pendingSemi() bool {
	return lx.depth == 0 && (token.Token{Kind: lx.prev}).EndsStatement()
}

func (lx *Lexer) newlineSemi() token.Token {
	return token.Token{Kind: token.Semi, Span: lx.cur.SpanHere(), Text: "\n"}
}

func (lx *Lexer) skipSpacesAndComments() {
	for !lx.cur.EOF() {
		switch lx.cur.Peek() {
		case ' ', '\t', '\r':
			lx.cur.Bump()
		case '#':
			for !lx.cur.EOF() && lx.cur.Peek() != '\n' {
				lx.cur.Bump()
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cur.Off
	for !lx.cur.EOF() && isIdentContinue(lx.cur.Peek()) {
		lx.cur.Bump()
	}
	text := lx.cur.Text(start)
	return token.Token{
		Kind: token.LookupKeyword(text),
		Span: lx.cur.SpanFrom(start),
		Text: text,
	}
}

func (lx *Lexer) scanNumber() token.Token {
	start := lx.cur.Off
	kind := token.IntLit
	for !lx.cur.EOF() && isDigit(lx.cur.Peek()) {
		lx.cur.Bump()
	}
	if !lx.cur.EOF() && lx.cur.Peek() == '.' && isDigit(lx.cur.PeekAt(1)) {
		kind = token.FloatLit
		lx.cur.Bump()
		for !lx.cur.EOF() && isDigit(lx.cur.Peek()) {
			lx.cur.Bump()
		}
	}
	return token.Token{Kind: kind, Span: lx.cur.SpanFrom(start), Text: lx.cur.Text(start)}
}

func (lx *Lexer) scanString() token.Token {
	start := lx.cur.Off
	lx.cur.Bump() // opening quote
	var buf []byte
	for {
		if lx.cur.EOF() || lx.cur.Peek() == '\n' {
			lx.errs = append(lx.errs, fmt.Errorf("unterminated string at offset %d", start))
			return token.Token{Kind: token.Invalid, Span: lx.cur.SpanFrom(start), Text: string(buf)}
		}
		ch := lx.cur.Peek()
		lx.cur.Bump()
		if ch == '"' {
			break
		}
		if ch == '\\' && !lx.cur.EOF() {
			esc := lx.cur.Peek()
			lx.cur.Bump()
			switch esc {
			case 'n':
				ch = '\n'
			case 't':
				ch = '\t'
			case '\\', '"':
				ch = esc
			default:
				lx.errs = append(lx.errs, fmt.Errorf("unknown escape \\%c at offset %d", esc, lx.cur.Off))
				ch = esc
			}
		}
		buf = append(buf, ch)
	}
	return token.Token{Kind: token.StringLit, Span: lx.cur.SpanFrom(start), Text: string(buf)}
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cur.Off
	ch := lx.cur.Peek()
	lx.cur.Bump()

	two := func(next byte, withKind, withoutKind token.Kind) token.Kind {
		if !lx.cur.EOF() && lx.cur.Peek() == next {
			lx.cur.Bump()
			return withKind
		}
		return withoutKind
	}

	var kind token.Kind
	switch ch {
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case ',':
		kind = token.Comma
	case ':':
		kind = token.Colon
	case '.':
		kind = token.Dot
	case ';':
		kind = token.Semi
	case '=':
		kind = two('=', token.EqEq, token.Assign)
	case '!':
		kind = two('=', token.BangEq, token.Invalid)
	case '<':
		kind = two('=', token.LtEq, token.Lt)
	case '>':
		kind = two('=', token.GtEq, token.Gt)
	case '+':
		kind = token.Plus
	case '-':
		kind = token.Minus
	case '*':
		kind = two('*', token.StarStar, token.Star)
	case '/':
		kind = token.Slash
	case '%':
		kind = token.Percent
	default:
		kind = token.Invalid
		lx.errs = append(lx.errs, fmt.Errorf("unexpected character %q at offset %d", ch, start))
	}
	return token.Token{Kind: kind, Span: lx.cur.SpanFrom(start), Text: lx.cur.Text(start)}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
