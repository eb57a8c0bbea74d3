package ast

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pontaoski/pyco/types"
)

// Precedence is the binding strength of a binary operator. Higher binds tighter.
func Precedence(op types.TokenKind) int {
	switch op {
	case types.STAR, types.SLASH, types.PERCENT:
		return 3
	case types.PLUS, types.MINUS:
		return 2
	case types.EQEQ, types.NOTEQ, types.LT, types.LTEQ, types.GT, types.GTEQ:
		return 1
	}
	return 0
}

type printer struct {
	b      strings.Builder
	indent int

	// comments not yet printed, in source order.
	comments []types.Comment
}

// Format renders a node as canonical pyco source. Formatting a Program
// also prints its comments: each one either on its own line ahead of the
// statement that follows it, or after the statement it trails.
func Format(n Node) string {
	p := &printer{}
	switch v := n.(type) {
	case *Program:
		p.comments = v.Comments
		for _, s := range v.Stmts {
			p.stmt(s)
		}
		p.flush(math.MaxInt32)
	case *Block:
		p.block(v)
	case Stmt:
		p.stmt(v)
	case Expr:
		p.expr(v)
	case *TypeName:
		p.b.WriteString(v.Name)
	default:
		panic(fmt.Sprintf("ast.Format: unhandled node %T", n))
	}
	return p.b.String()
}

func (p *printer) line(format string, args ...interface{}) {
	p.b.WriteString(strings.Repeat("    ", p.indent))
	fmt.Fprintf(&p.b, format, args...)
}

// flush prints the pending comments that start before line.
func (p *printer) flush(line int) {
	for len(p.comments) > 0 && p.comments[0].Location.From.Line < line {
		p.line("%s\n", p.comments[0].Text)
		p.comments = p.comments[1:]
	}
}

// trailing appends a comment that shares line with the statement just
// printed.
func (p *printer) trailing(line int) {
	if len(p.comments) > 0 && p.comments[0].Trailing && p.comments[0].Location.From.Line == line {
		p.b.WriteString(" " + p.comments[0].Text)
		p.comments = p.comments[1:]
	}
}

func (p *printer) block(b *Block) {
	p.b.WriteString("{\n")
	p.indent++
	for _, s := range b.Stmts {
		p.stmt(s)
	}
	p.flush(b.Pos.To.Line)
	p.indent--
	p.line("}")
}

func (p *printer) stmt(s Stmt) {
	p.flush(s.Span().From.Line)

	switch v := s.(type) {
	case *FuncDecl:
		var params []string
		for _, param := range v.Params {
			params = append(params, param.Name.Name+": "+param.Type.Name)
		}
		p.line("def %s(%s) -> %s ", v.Name.Name, strings.Join(params, ", "), v.Result.Name)
		p.block(v.Body)
	case *VarDecl:
		var names []string
		for _, name := range v.Names {
			names = append(names, name.Name)
		}
		p.line("%s: %s", strings.Join(names, ", "), v.Type.Name)
		if v.Value != nil {
			p.b.WriteString(" = ")
			p.expr(v.Value)
		}
	case *Assignment:
		p.line("%s = ", v.Target.Name)
		p.expr(v.Value)
	case *ForLoop:
		p.line("for %s in ", v.Var.Name)
		p.expr(v.Iterable)
		p.b.WriteString(" ")
		p.block(v.Body)
	case *IfStmt:
		p.line("")
		p.ifChain(v)
	case *Return:
		p.line("return")
		if v.Value != nil {
			p.b.WriteString(" ")
			p.expr(v.Value)
		}
	case *ExprStmt:
		p.line("")
		p.expr(v.X)
	default:
		panic(fmt.Sprintf("ast.Format: unhandled statement %T", s))
	}

	p.trailing(s.Span().To.Line)
	p.b.WriteString("\n")
}

func (p *printer) ifChain(v *IfStmt) {
	p.b.WriteString("if ")
	p.expr(v.Cond)
	p.b.WriteString(" ")
	p.block(v.Then)
	if v.Else == nil {
		return
	}
	p.b.WriteString(" else ")
	if len(v.Else.Stmts) == 1 {
		if nested, ok := v.Else.Stmts[0].(*IfStmt); ok {
			p.ifChain(nested)
			return
		}
	}
	p.block(v.Else)
}

func (p *printer) expr(e Expr) {
	switch v := e.(type) {
	case *Identifier:
		p.b.WriteString(v.Name)
	case *IntLiteral:
		p.b.WriteString(strconv.FormatInt(v.Value, 10))
	case *BoolLiteral:
		p.b.WriteString(strconv.FormatBool(v.Value))
	case *Call:
		p.b.WriteString(v.Callee.Name)
		p.b.WriteString("(")
		for i, arg := range v.Args {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.expr(arg)
		}
		p.b.WriteString(")")
	case *BinaryExpr:
		prec := Precedence(v.Op)
		p.operand(v.Left, prec, false)
		fmt.Fprintf(&p.b, " %s ", v.Op.Symbol())
		p.operand(v.Right, prec, true)
	default:
		panic(fmt.Sprintf("ast.Format: unhandled expression %T", e))
	}
}

// operand parenthesizes a child whose operator binds looser than its
// parent's, or equally on the right since operators associate left.
func (p *printer) operand(e Expr, parent int, right bool) {
	bin, ok := e.(*BinaryExpr)
	if !ok {
		p.expr(e)
		return
	}
	child := Precedence(bin.Op)
	if child < parent || (right && child == parent) {
		p.b.WriteString("(")
		p.expr(e)
		p.b.WriteString(")")
		return
	}
	p.expr(e)
}
