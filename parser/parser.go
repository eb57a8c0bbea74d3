package parser

import (
	"strconv"

	"github.com/pontaoski/pyco/ast"
	"github.com/pontaoski/pyco/errors"
	"github.com/pontaoski/pyco/lexer"
	"github.com/pontaoski/pyco/types"
	"github.com/ztrue/tracerr"
)

type Parser struct {
	l *lexer.Lexer
}

func NewParser(l *lexer.Lexer) *Parser {
	return &Parser{l: l}
}

// ParseSource lexes and parses a whole program.
func ParseSource(source, filename string) (*ast.Program, error) {
	return NewParser(lexer.NewLexer(source, filename)).Parse()
}

// Parse reads statements until EOF. The first lexical or syntax error
// stops parsing.
func (p *Parser) Parse() (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch rerr := r.(type) {
			case errors.LexError, errors.ParseError:
				prog = nil
				err = tracerr.Wrap(rerr.(error))
			default:
				panic(r)
			}
		}
	}()

	prog = &ast.Program{}
	start := p.l.Peek().Location
	for {
		p.skipTerminators()
		if p.l.PeekIs(types.EOF) {
			break
		}
		prog.Stmts = append(prog.Stmts, p.parseStatement())
		p.expectTerminator(types.EOF)
	}
	end := p.l.LexExpecting(types.EOF).Location
	prog.Pos = types.Join(start, end)
	prog.Comments = p.l.Comments()

	return prog, nil
}

func (p *Parser) skipTerminators() {
	for p.l.PeekIs(types.EOS) {
		p.l.Lex()
	}
}

// expectTerminator accepts EOS, or leaves closer in place when it ends the
// enclosing construct.
func (p *Parser) expectTerminator(closer types.TokenKind) {
	if p.l.PeekIs(closer) {
		return
	}
	p.l.LexExpecting(types.EOS, closer)
}

// parseBlock consumes a brace-delimited statement list.
func (p *Parser) parseBlock() *ast.Block {
	open := p.l.LexExpecting(types.LBRACE)
	block := &ast.Block{}

	for {
		p.skipTerminators()
		if p.l.PeekIs(types.RBRACE) {
			break
		}
		if p.l.PeekIs(types.EOF) {
			p.l.LexExpecting(types.RBRACE)
		}
		block.Stmts = append(block.Stmts, p.parseStatement())
		p.expectTerminator(types.RBRACE)
	}
	closing := p.l.LexExpecting(types.RBRACE)
	block.Pos = types.Join(open.Location, closing.Location)

	return block
}

func (p *Parser) parseStatement() ast.Stmt {
	tok := p.l.Peek()

	switch tok.Kind {
	case types.DEF:
		return p.parseFuncDecl()
	case types.FOR:
		return p.parseFor()
	case types.IF:
		return p.parseIf()
	case types.RETURN:
		p.l.Lex()
		ret := &ast.Return{Pos: tok.Location}
		if !p.l.PeekIs(types.EOS, types.RBRACE, types.EOF) {
			ret.Value = p.parseExpression()
			ret.Pos = types.Join(tok.Location, ret.Value.Span())
		}
		return ret
	case types.IDENT:
		return p.parseSimple()
	}

	x := p.parseExpression()
	return &ast.ExprStmt{X: x, Pos: x.Span()}
}

func (p *Parser) ident(tok types.Token) *ast.Identifier {
	return &ast.Identifier{Name: tok.Text, Pos: tok.Location}
}

func (p *Parser) parseType() *ast.TypeName {
	tok := p.l.LexExpecting(types.IDENT)
	return &ast.TypeName{Name: tok.Text, Pos: tok.Location}
}

func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	def := p.l.LexExpecting(types.DEF)
	fn := &ast.FuncDecl{Name: p.ident(p.l.LexExpecting(types.IDENT))}

	p.l.LexExpecting(types.LPAREN)
	if !p.l.PeekIs(types.RPAREN) {
		for {
			name := p.ident(p.l.LexExpecting(types.IDENT))
			p.l.LexExpecting(types.COLON)
			fn.Params = append(fn.Params, &ast.Param{Name: name, Type: p.parseType()})

			if p.l.PeekIs(types.RPAREN) {
				break
			}
			p.l.LexExpecting(types.COMMA, types.RPAREN)
		}
	}
	p.l.LexExpecting(types.RPAREN)
	p.l.LexExpecting(types.ARROW)
	fn.Result = p.parseType()
	fn.Body = p.parseBlock()
	fn.Pos = types.Join(def.Location, fn.Body.Pos)

	return fn
}

func (p *Parser) parseFor() *ast.ForLoop {
	tok := p.l.LexExpecting(types.FOR)
	loop := &ast.ForLoop{Var: p.ident(p.l.LexExpecting(types.IDENT))}
	p.l.LexExpecting(types.IN)
	loop.Iterable = p.parseExpression()
	loop.Body = p.parseBlock()
	loop.Pos = types.Join(tok.Location, loop.Body.Pos)

	return loop
}

func (p *Parser) parseIf() *ast.IfStmt {
	tok := p.l.LexExpecting(types.IF)
	stmt := &ast.IfStmt{Cond: p.parseExpression()}
	stmt.Then = p.parseBlock()
	stmt.Pos = types.Join(tok.Location, stmt.Then.Pos)

	if !p.l.PeekIs(types.ELSE) {
		return stmt
	}
	p.l.Lex()

	if p.l.PeekIs(types.IF) {
		nested := p.parseIf()
		stmt.Else = &ast.Block{Stmts: []ast.Stmt{nested}, Pos: nested.Pos}
	} else {
		stmt.Else = p.parseBlock()
	}
	stmt.Pos = types.Join(tok.Location, stmt.Else.Pos)

	return stmt
}

// parseSimple handles statements that open with an identifier:
// declarations, assignments and expression statements.
func (p *Parser) parseSimple() ast.Stmt {
	first := p.ident(p.l.LexExpecting(types.IDENT))

	switch {
	case p.l.PeekIs(types.COMMA, types.COLON):
		decl := &ast.VarDecl{Names: []*ast.Identifier{first}}
		for p.l.PeekIs(types.COMMA) {
			p.l.Lex()
			decl.Names = append(decl.Names, p.ident(p.l.LexExpecting(types.IDENT)))
		}
		p.l.LexExpecting(types.COLON)
		decl.Type = p.parseType()
		decl.Pos = types.Join(first.Pos, decl.Type.Pos)
		if p.l.PeekIs(types.EQUALS) {
			p.l.Lex()
			decl.Value = p.parseExpression()
			decl.Pos = types.Join(first.Pos, decl.Value.Span())
		}
		return decl
	case p.l.PeekIs(types.EQUALS):
		p.l.Lex()
		value := p.parseExpression()
		return &ast.Assignment{
			Target: first,
			Value:  value,
			Pos:    types.Join(first.Pos, value.Span()),
		}
	}

	x := p.parseBinary(p.parseCallOrName(first), 1)
	return &ast.ExprStmt{X: x, Pos: x.Span()}
}

func (p *Parser) parseExpression() ast.Expr {
	return p.parseBinary(p.parsePrimary(), 1)
}

var binaryOps = []types.TokenKind{
	types.PLUS, types.MINUS, types.STAR, types.SLASH, types.PERCENT,
	types.EQEQ, types.NOTEQ, types.LT, types.LTEQ, types.GT, types.GTEQ,
}

// parseBinary climbs precedence levels starting from an already parsed
// left operand.
func (p *Parser) parseBinary(left ast.Expr, minPrec int) ast.Expr {
	for p.l.PeekIs(binaryOps...) {
		op := p.l.Peek().Kind
		prec := ast.Precedence(op)
		if prec < minPrec {
			break
		}
		p.l.Lex()

		right := p.parsePrimary()
		for p.l.PeekIs(binaryOps...) && ast.Precedence(p.l.Peek().Kind) > prec {
			right = p.parseBinary(right, prec+1)
		}

		left = &ast.BinaryExpr{
			Op:    op,
			Left:  left,
			Right: right,
			Pos:   types.Join(left.Span(), right.Span()),
		}
	}
	return left
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.l.LexExpecting(types.INT, types.TRUE, types.FALSE, types.IDENT, types.LPAREN)

	switch tok.Kind {
	case types.INT:
		parsed, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			panic(errors.ParseError{
				Kind:     errors.InvalidInteger,
				Got:      tok.Kind,
				Text:     tok.Text,
				Location: tok.Location,
			})
		}
		return &ast.IntLiteral{Value: parsed, Text: tok.Text, Pos: tok.Location}
	case types.TRUE, types.FALSE:
		return &ast.BoolLiteral{Value: tok.Kind == types.TRUE, Pos: tok.Location}
	case types.LPAREN:
		inner := p.parseExpression()
		p.l.LexExpecting(types.RPAREN)
		return inner
	}

	return p.parseCallOrName(p.ident(tok))
}

func (p *Parser) parseCallOrName(name *ast.Identifier) ast.Expr {
	if !p.l.PeekIs(types.LPAREN) {
		return name
	}
	p.l.Lex()

	call := &ast.Call{Callee: name}
	if !p.l.PeekIs(types.RPAREN) {
		for {
			call.Args = append(call.Args, p.parseExpression())

			if p.l.PeekIs(types.RPAREN) {
				break
			}
			p.l.LexExpecting(types.COMMA, types.RPAREN)
		}
	}
	closing := p.l.LexExpecting(types.RPAREN)
	call.Pos = types.Join(name.Pos, closing.Location)

	return call
}
