package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a unit back to Flow source form. The output is normalized
// (one statement per line, canonical spacing), not a byte-faithful copy of
// the input.
func Print(unit *Unit) string {
	p := printer{b: unit.Builder}
	for _, id := range unit.Body {
		p.stmt(id, 0)
	}
	return p.sb.String()
}

type printer struct {
	b  *Builder
	sb strings.Builder
}

func (p *printer) line(indent int, text string) {
	p.sb.WriteString(strings.Repeat("    ", indent))
	p.sb.WriteString(text)
	p.sb.WriteByte('\n')
}

func (p *printer) stmt(id StmtID, indent int) {
	stmt := p.b.Stmts.Get(id)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case StmtExpr:
		d, _ := p.b.Stmts.Expr(id)
		p.line(indent, p.expr(d.X))
	case StmtAssign:
		d, _ := p.b.Stmts.Assign(id)
		p.line(indent, p.expr(d.Target)+" = "+p.expr(d.Value))
	case StmtReturn:
		d, _ := p.b.Stmts.Return(id)
		if d.X.IsValid() {
			p.line(indent, "return "+p.expr(d.X))
		} else {
			p.line(indent, "return")
		}
	case StmtIf:
		d, _ := p.b.Stmts.If(id)
		p.line(indent, "if "+p.expr(d.Cond)+" {")
		p.blockBody(d.Then, indent+1)
		if d.Else.IsValid() {
			p.line(indent, "} else {")
			p.blockBody(d.Else, indent+1)
		}
		p.line(indent, "}")
	case StmtWhile:
		d, _ := p.b.Stmts.While(id)
		p.line(indent, "while "+p.expr(d.Cond)+" {")
		p.blockBody(d.Body, indent+1)
		p.line(indent, "}")
	case StmtBlock:
		d, _ := p.b.Stmts.Block(id)
		p.line(indent, "{")
		for _, s := range d.List {
			p.stmt(s, indent+1)
		}
		p.line(indent, "}")
	case StmtFunc:
		d, _ := p.b.Stmts.Func(id)
		p.line(indent, "def "+d.Name+"("+p.params(d.Params)+") {")
		p.blockBody(d.Body, indent+1)
		p.line(indent, "}")
	case StmtClass:
		d, _ := p.b.Stmts.Class(id)
		p.line(indent, "class "+d.Name+" {")
		for _, m := range d.Methods {
			p.stmt(m, indent+1)
		}
		p.line(indent, "}")
	}
}

// blockBody prints the statements of a block without the surrounding braces.
func (p *printer) blockBody(id StmtID, indent int) {
	if d, ok := p.b.Stmts.Block(id); ok {
		for _, s := range d.List {
			p.stmt(s, indent)
		}
		return
	}
	p.stmt(id, indent)
}

func (p *printer) params(params []Param) string {
	parts := make([]string, 0, len(params))
	for _, param := range params {
		switch param.Kind {
		case ParamVariadic:
			parts = append(parts, "*"+param.Name)
		case ParamKeywordVariadic:
			parts = append(parts, "**"+param.Name)
		default:
			if param.Default.IsValid() {
				parts = append(parts, param.Name+"="+p.expr(param.Default))
			} else {
				parts = append(parts, param.Name)
			}
		}
	}
	return strings.Join(parts, ", ")
}

func (p *printer) expr(id ExprID) string {
	expr := p.b.Exprs.Get(id)
	if expr == nil {
		return ""
	}
	switch expr.Kind {
	case ExprIdent:
		d, _ := p.b.Exprs.Ident(id)
		return d.Name
	case ExprLit:
		d, _ := p.b.Exprs.Lit(id)
		return p.lit(d)
	case ExprAttr:
		d, _ := p.b.Exprs.Attr(id)
		return p.expr(d.Target) + "." + d.Name
	case ExprCall:
		d, _ := p.b.Exprs.Call(id)
		return p.call(d)
	case ExprSpread:
		d, _ := p.b.Exprs.Spread(id)
		return "*" + p.expr(d.Value)
	case ExprUnary:
		d, _ := p.b.Exprs.Unary(id)
		if d.Op == UnaryNot {
			return "not " + p.expr(d.Operand)
		}
		return "-" + p.expr(d.Operand)
	case ExprBinary:
		d, _ := p.b.Exprs.Binary(id)
		return p.expr(d.Left) + " " + binaryOpText(d.Op) + " " + p.expr(d.Right)
	case ExprIndex:
		d, _ := p.b.Exprs.Index(id)
		return p.expr(d.Target) + "[" + p.expr(d.Index) + "]"
	case ExprList:
		d, _ := p.b.Exprs.List(id)
		parts := make([]string, len(d.Elems))
		for i, e := range d.Elems {
			parts[i] = p.expr(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ExprMap:
		d, _ := p.b.Exprs.Map(id)
		parts := make([]string, len(d.Keys))
		for i := range d.Keys {
			parts[i] = p.expr(d.Keys[i]) + ": " + p.expr(d.Values[i])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case ExprGroup:
		d, _ := p.b.Exprs.Group(id)
		return "(" + p.expr(d.Inner) + ")"
	default:
		return fmt.Sprintf("<expr %d>", id)
	}
}

func (p *printer) call(d *ExprCallData) string {
	parts := make([]string, 0, len(d.Args)+len(d.Keywords)+2)
	for _, arg := range d.Args {
		parts = append(parts, p.expr(arg))
	}
	for _, kw := range d.Keywords {
		if kw.Name == "" {
			parts = append(parts, "**"+p.expr(kw.Value))
		} else {
			parts = append(parts, kw.Name+"="+p.expr(kw.Value))
		}
	}
	if d.StarArgs.IsValid() {
		parts = append(parts, "*"+p.expr(d.StarArgs))
	}
	if d.KwSpread.IsValid() {
		parts = append(parts, "**"+p.expr(d.KwSpread))
	}
	return p.expr(d.Target) + "(" + strings.Join(parts, ", ") + ")"
}

func (p *printer) lit(d *ExprLitData) string {
	switch d.Kind {
	case LitInt:
		return strconv.FormatInt(d.Int, 10)
	case LitFloat:
		return strconv.FormatFloat(d.Float, 'g', -1, 64)
	case LitString:
		return strconv.Quote(d.Str)
	case LitBool:
		if d.Bool {
			return "true"
		}
		return "false"
	default:
		return "none"
	}
}

func binaryOpText(op BinaryOp) string {
	switch op {
	case BinaryAdd:
		return "+"
	case BinarySub:
		return "-"
	case BinaryMul:
		return "*"
	case BinaryDiv:
		return "/"
	case BinaryMod:
		return "%"
	case BinaryEq:
		return "=="
	case BinaryNotEq:
		return "!="
	case BinaryLt:
		return "<"
	case BinaryGt:
		return ">"
	case BinaryLtEq:
		return "<="
	case BinaryGtEq:
		return ">="
	case BinaryAnd:
		return "and"
	case BinaryOr:
		return "or"
	default:
		return "?"
	}
}
