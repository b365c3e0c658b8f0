package parser

import (
	"strconv"

	"flowtrace/internal/ast"
	"flowtrace/internal/token"
)

// Binding powers, lowest first. Comparison operators do not chain.
const (
	precNone = iota
	precOr
	precAnd
	precNot
	precCompare
	precAdd
	precMul
	precUnary
)

func binaryPrec(k token.Kind) (ast.BinaryOp, int) {
	switch k {
	case token.KwOr:
		return ast.BinaryOr, precOr
	case token.KwAnd:
		return ast.BinaryAnd, precAnd
	case token.EqEq:
		return ast.BinaryEq, precCompare
	case token.BangEq:
		return ast.BinaryNotEq, precCompare
	case token.Lt:
		return ast.BinaryLt, precCompare
	case token.Gt:
		return ast.BinaryGt, precCompare
	case token.LtEq:
		return ast.BinaryLtEq, precCompare
	case token.GtEq:
		return ast.BinaryGtEq, precCompare
	case token.Plus:
		return ast.BinaryAdd, precAdd
	case token.Minus:
		return ast.BinarySub, precAdd
	case token.Star:
		return ast.BinaryMul, precMul
	case token.Slash:
		return ast.BinaryDiv, precMul
	case token.Percent:
		return ast.BinaryMod, precMul
	default:
		return 0, precNone
	}
}

func (p *Parser) parseExpr() ast.ExprID {
	return p.parseBinary(precNone)
}

func (p *Parser) parseBinary(minPrec int) ast.ExprID {
	left := p.parseUnary()
	for {
		op, prec := binaryPrec(p.lx.Peek().Kind)
		if prec == precNone || prec <= minPrec {
			return left
		}
		p.next()
		right := p.parseBinary(prec)
		span := p.b.Exprs.Span(left).Cover(p.b.Exprs.Span(right))
		left = p.b.Exprs.NewBinary(span, op, left, right)
	}
}

func (p *Parser) parseUnary() ast.ExprID {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Minus:
		p.next()
		operand := p.parseUnary()
		return p.b.Exprs.NewUnary(tok.Span.Cover(p.b.Exprs.Span(operand)), ast.UnaryNeg, operand)
	case token.KwNot:
		p.next()
		operand := p.parseBinary(precNot)
		return p.b.Exprs.NewUnary(tok.Span.Cover(p.b.Exprs.Span(operand)), ast.UnaryNot, operand)
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.ExprID {
	x := p.parsePrimary()
	for {
		tok := p.lx.Peek()
		switch tok.Kind {
		case token.Dot:
			p.next()
			name := p.expect(token.Ident)
			x = p.b.Exprs.NewAttr(p.b.Exprs.Span(x).Cover(name.Span), x, name.Text)
		case token.LParen:
			x = p.parseCall(x)
		case token.LBracket:
			p.next()
			index := p.parseExpr()
			closing := p.expect(token.RBracket)
			x = p.b.Exprs.NewIndex(p.b.Exprs.Span(x).Cover(closing.Span), x, index)
		default:
			return x
		}
	}
}

// parseCall parses the argument list of a call on target. Spreads use the
// inline dialect: *expr becomes a spread-marked positional slot, **expr a
// keyword slot with an empty name.
func (p *Parser) parseCall(target ast.ExprID) ast.ExprID {
	p.expect(token.LParen)
	data := ast.ExprCallData{Target: target}
	for !p.at(token.RParen) && !p.at(token.EOF) {
		tok := p.lx.Peek()
		switch {
		case tok.Kind == token.Star:
			p.next()
			value := p.parseExpr()
			spread := p.b.Exprs.NewSpread(tok.Span.Cover(p.b.Exprs.Span(value)), value)
			data.Args = append(data.Args, spread)
		case tok.Kind == token.StarStar:
			p.next()
			value := p.parseExpr()
			data.Keywords = append(data.Keywords, ast.CallKeyword{Value: value})
		case tok.Kind == token.Ident && p.peekIsKeywordArg():
			name := p.next()
			p.expect(token.Assign)
			value := p.parseExpr()
			data.Keywords = append(data.Keywords, ast.CallKeyword{Name: name.Text, Value: value})
		default:
			value := p.parseExpr()
			if len(data.Keywords) > 0 {
				p.errorf(p.b.Exprs.Span(value), "positional argument after keyword argument")
			}
			data.Args = append(data.Args, value)
		}
		if !p.at(token.Comma) {
			break
		}
		p.next()
	}
	closing := p.expect(token.RParen)
	return p.b.Exprs.NewCall(p.b.Exprs.Span(target).Cover(closing.Span), data)
}

// peekIsKeywordArg reports whether the upcoming Ident starts a name=value
// argument.
func (p *Parser) peekIsKeywordArg() bool {
	return p.lx.PeekSecond().Kind == token.Assign
}

func (p *Parser) parsePrimary() ast.ExprID {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Ident:
		p.next()
		return p.b.Exprs.NewIdent(tok.Span, tok.Text)
	case token.IntLit:
		p.next()
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			p.errorf(tok.Span, "invalid integer literal %q", tok.Text)
		}
		return p.b.Exprs.NewLit(tok.Span, ast.ExprLitData{Kind: ast.LitInt, Int: v})
	case token.FloatLit:
		p.next()
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			p.errorf(tok.Span, "invalid float literal %q", tok.Text)
		}
		return p.b.Exprs.NewLit(tok.Span, ast.ExprLitData{Kind: ast.LitFloat, Float: v})
	case token.StringLit:
		p.next()
		return p.b.Exprs.NewLit(tok.Span, ast.ExprLitData{Kind: ast.LitString, Str: tok.Text})
	case token.KwTrue, token.KwFalse:
		p.next()
		return p.b.Exprs.NewLit(tok.Span, ast.ExprLitData{Kind: ast.LitBool, Bool: tok.Kind == token.KwTrue})
	case token.KwNone:
		p.next()
		return p.b.Exprs.NewLit(tok.Span, ast.ExprLitData{Kind: ast.LitNone})
	case token.LParen:
		p.next()
		inner := p.parseExpr()
		closing := p.expect(token.RParen)
		return p.b.Exprs.NewGroup(tok.Span.Cover(closing.Span), inner)
	case token.LBracket:
		return p.parseList()
	case token.LBrace:
		return p.parseMap()
	default:
		p.errorf(tok.Span, "expected expression, found %s", tok.Kind)
		p.next()
		return ast.NoExprID
	}
}

func (p *Parser) parseList() ast.ExprID {
	open := p.expect(token.LBracket)
	var elems []ast.ExprID
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		elems = append(elems, p.parseExpr())
		if !p.at(token.Comma) {
			break
		}
		p.next()
	}
	closing := p.expect(token.RBracket)
	return p.b.Exprs.NewList(open.Span.Cover(closing.Span), elems)
}

func (p *Parser) parseMap() ast.ExprID {
	open := p.expect(token.LBrace)
	var keys, values []ast.ExprID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		keys = append(keys, p.parseExpr())
		p.expect(token.Colon)
		values = append(values, p.parseExpr())
		if !p.at(token.Comma) {
			break
		}
		p.next()
	}
	closing := p.expect(token.RBrace)
	return p.b.Exprs.NewMap(open.Span.Cover(closing.Span), keys, values)
}
