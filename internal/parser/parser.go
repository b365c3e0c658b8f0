// Package parser builds Flow AST units from a token stream.
package parser

import (
	"errors"
	"fmt"

	"flowtrace/internal/ast"
	"flowtrace/internal/lexer"
	"flowtrace/internal/source"
	"flowtrace/internal/token"
)

// Result is the outcome of parsing one unit.
type Result struct {
	Unit *ast.Unit
	Errs []error
}

// Err folds all parse and scan errors into one error, or nil.
func (r Result) Err() error {
	return errors.Join(r.Errs...)
}

// Parser holds per-unit parsing state.
type Parser struct {
	lx   *lexer.Lexer
	b    *ast.Builder
	fs   *source.FileSet
	errs []error
}

// ParseFile parses one source file into a unit.
func ParseFile(fs *source.FileSet, id source.FileID) Result {
	file := fs.Get(id)
	if file == nil {
		return Result{Errs: []error{fmt.Errorf("unknown file id %d", id)}}
	}
	p := Parser{
		lx: lexer.New(file),
		b:  ast.NewBuilder(ast.Hints{}),
		fs: fs,
	}
	unit := &ast.Unit{Builder: p.b}
	for !p.at(token.EOF) {
		if p.at(token.Semi) {
			p.next()
			continue
		}
		unit.Body = append(unit.Body, p.parseStmt())
	}
	p.errs = append(p.errs, p.lx.Errors()...)
	return Result{Unit: unit, Errs: p.errs}
}

// ParseSource parses in-memory source, registering it in fs under path.
func ParseSource(fs *source.FileSet, path, src string) Result {
	id := fs.Add(path, []byte(src), source.FileVirtual)
	return ParseFile(fs, id)
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) next() token.Token {
	return p.lx.Next()
}

func (p *Parser) expect(k token.Kind) token.Token {
	tok := p.lx.Peek()
	if tok.Kind != k {
		p.errorf(tok.Span, "expected %s, found %s", k, tok.Kind)
		return token.Token{Kind: k, Span: tok.Span}
	}
	return p.next()
}

func (p *Parser) errorf(sp source.Span, format string, args ...any) {
	path, pos := p.fs.Position(sp)
	p.errs = append(p.errs,
		fmt.Errorf("%s:%d:%d: %s", path, pos.Line, pos.Col, fmt.Sprintf(format, args...)))
}

// skipSemis consumes statement breaks between statements.
func (p *Parser) skipSemis() {
	for p.at(token.Semi) {
		p.next()
	}
}

func (p *Parser) endStatement() {
	if p.at(token.Semi) {
		p.next()
		return
	}
	if p.at(token.EOF) || p.at(token.RBrace) {
		return
	}
	p.errorf(p.lx.Peek().Span, "expected end of statement, found %s", p.lx.Peek().Kind)
	p.next()
}

func (p *Parser) parseStmt() ast.StmtID {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.KwDef:
		return p.parseFunc()
	case token.KwClass:
		return p.parseClass()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwReturn:
		return p.parseReturn()
	default:
		return p.parseSimpleStmt()
	}
}

func (p *Parser) parseBlock() ast.StmtID {
	open := p.expect(token.LBrace)
	var list []ast.StmtID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.Semi) {
			p.next()
			continue
		}
		list = append(list, p.parseStmt())
	}
	closing := p.expect(token.RBrace)
	return p.b.Stmts.NewBlock(open.Span.Cover(closing.Span), list)
}

func (p *Parser) parseFunc() ast.StmtID {
	kw := p.expect(token.KwDef)
	name := p.expect(token.Ident)
	p.expect(token.LParen)
	params := p.parseParams()
	p.expect(token.RParen)
	body := p.parseBlock()
	span := kw.Span.Cover(p.b.Stmts.Get(body).Span)
	return p.b.Stmts.NewFunc(span, name.Text, params, body)
}

func (p *Parser) parseParams() []ast.Param {
	var params []ast.Param
	seenDefault := false
	seenVariadic := false
	seenKwVariadic := false
	for !p.at(token.RParen) && !p.at(token.EOF) {
		tok := p.lx.Peek()
		switch tok.Kind {
		case token.Star:
			p.next()
			name := p.expect(token.Ident)
			if seenVariadic || seenKwVariadic {
				p.errorf(tok.Span, "misplaced *%s parameter", name.Text)
			}
			seenVariadic = true
			params = append(params, ast.Param{Name: name.Text, Kind: ast.ParamVariadic})
		case token.StarStar:
			p.next()
			name := p.expect(token.Ident)
			if seenKwVariadic {
				p.errorf(tok.Span, "duplicate **%s parameter", name.Text)
			}
			seenKwVariadic = true
			params = append(params, ast.Param{Name: name.Text, Kind: ast.ParamKeywordVariadic})
		case token.Ident:
			name := p.next()
			if seenVariadic || seenKwVariadic {
				p.errorf(name.Span, "parameter %s after variadic parameter", name.Text)
			}
			param := ast.Param{Name: name.Text, Kind: ast.ParamPositional}
			if p.at(token.Assign) {
				p.next()
				param.Default = p.parseExpr()
				seenDefault = true
			} else if seenDefault {
				p.errorf(name.Span, "parameter %s without default follows defaulted parameter", name.Text)
			}
			params = append(params, param)
		default:
			p.errorf(tok.Span, "expected parameter, found %s", tok.Kind)
			p.next()
		}
		if !p.at(token.Comma) {
			break
		}
		p.next()
	}
	return params
}

func (p *Parser) parseClass() ast.StmtID {
	kw := p.expect(token.KwClass)
	name := p.expect(token.Ident)
	p.expect(token.LBrace)
	var methods []ast.StmtID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.Semi) {
			p.next()
			continue
		}
		if !p.at(token.KwDef) {
			tok := p.lx.Peek()
			p.errorf(tok.Span, "expected method, found %s", tok.Kind)
			p.next()
			continue
		}
		methods = append(methods, p.parseFunc())
	}
	closing := p.expect(token.RBrace)
	return p.b.Stmts.NewClass(kw.Span.Cover(closing.Span), name.Text, methods)
}

func (p *Parser) parseIf() ast.StmtID {
	kw := p.expect(token.KwIf)
	cond := p.parseExpr()
	then := p.parseBlock()
	els := ast.NoStmtID
	span := kw.Span.Cover(p.b.Stmts.Get(then).Span)
	if p.at(token.KwElse) {
		p.next()
		if p.at(token.KwIf) {
			els = p.parseIf()
		} else {
			els = p.parseBlock()
		}
		span = span.Cover(p.b.Stmts.Get(els).Span)
	}
	return p.b.Stmts.NewIf(span, cond, then, els)
}

func (p *Parser) parseWhile() ast.StmtID {
	kw := p.expect(token.KwWhile)
	cond := p.parseExpr()
	body := p.parseBlock()
	return p.b.Stmts.NewWhile(kw.Span.Cover(p.b.Stmts.Get(body).Span), cond, body)
}

func (p *Parser) parseReturn() ast.StmtID {
	kw := p.expect(token.KwReturn)
	x := ast.NoExprID
	if !p.at(token.Semi) && !p.at(token.RBrace) && !p.at(token.EOF) {
		x = p.parseExpr()
	}
	p.endStatement()
	return p.b.Stmts.NewReturn(kw.Span, x)
}

func (p *Parser) parseSimpleStmt() ast.StmtID {
	x := p.parseExpr()
	if p.at(token.Assign) {
		p.next()
		if !p.assignable(x) {
			p.errorf(p.b.Exprs.Span(x), "cannot assign to this expression")
		}
		value := p.parseExpr()
		p.endStatement()
		span := p.b.Exprs.Span(x).Cover(p.b.Exprs.Span(value))
		return p.b.Stmts.NewAssign(span, x, value)
	}
	p.endStatement()
	return p.b.Stmts.NewExpr(p.b.Exprs.Span(x), x)
}

func (p *Parser) assignable(id ast.ExprID) bool {
	switch p.b.Exprs.Kind(id) {
	case ast.ExprIdent, ast.ExprAttr, ast.ExprIndex:
		return id.IsValid()
	default:
		return false
	}
}
