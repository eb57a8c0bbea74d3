// Package ast declares the syntax tree produced by the parser.
//
// Stmt and Expr are closed: their marker methods live in nodes_gen.go,
// generated from ast.adt.
package ast

//go:generate sh -c "cd ../tool && go run . ../ast/ast.adt ../ast/nodes_gen.go ast"

import "github.com/pontaoski/pyco/types"

// Node is any syntax tree element with a source location.
type Node interface {
	Span() types.Span
}

type Program struct {
	Stmts    []Stmt
	Pos      types.Span
	// Comments are kept apart from the tree. Only Format reads them.
	Comments []types.Comment
}

func (p *Program) Span() types.Span { return p.Pos }

type Block struct {
	Stmts []Stmt
	Pos   types.Span
}

func (b *Block) Span() types.Span { return b.Pos }

// TypeName is a written type such as int, bool or void.
type TypeName struct {
	Name string
	Pos  types.Span
}

func (t *TypeName) Span() types.Span { return t.Pos }

type Param struct {
	Name *Identifier
	Type *TypeName
}

type FuncDecl struct {
	Name   *Identifier
	Params []*Param
	Result *TypeName
	Body   *Block
	Pos    types.Span
}

// VarDecl binds every name in Names to Type. Value may be nil.
type VarDecl struct {
	Names []*Identifier
	Type  *TypeName
	Value Expr
	Pos   types.Span
}

type Assignment struct {
	Target *Identifier
	Value  Expr
	Pos    types.Span
}

type ForLoop struct {
	Var      *Identifier
	Iterable Expr
	Body     *Block
	Pos      types.Span
}

// IfStmt with Else holding a single IfStmt is an else-if chain.
type IfStmt struct {
	Cond Expr
	Then *Block
	Else *Block
	Pos  types.Span
}

type Return struct {
	Value Expr
	Pos   types.Span
}

type ExprStmt struct {
	X   Expr
	Pos types.Span
}

type Call struct {
	Callee *Identifier
	Args   []Expr
	Pos    types.Span
}

type BinaryExpr struct {
	Op    types.TokenKind
	Left  Expr
	Right Expr
	Pos   types.Span
}

type Identifier struct {
	Name string
	Pos  types.Span
}

type IntLiteral struct {
	Value int64
	Text  string
	Pos   types.Span
}

type BoolLiteral struct {
	Value bool
	Pos   types.Span
}
