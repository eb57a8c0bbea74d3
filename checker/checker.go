// Package checker validates a parsed program before it runs.
//
// Checking is a single pass that mirrors the evaluator's scope chain: the
// program scope, one scope per function call, one per loop iteration and
// one per if branch. Every name use is recorded together with the number
// of scopes between the use and its binding, which the evaluator follows
// instead of searching by name.
package checker

import (
	"fmt"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/pyco/ast"
	"github.com/pontaoski/pyco/errors"
	"github.com/pontaoski/pyco/types"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/pyco", "checker")

// Info is everything the checker learned about a program. The AST itself
// is left untouched.
type Info struct {
	// Types holds the type of every checked expression.
	Types map[ast.Expr]Type
	// Decls holds the resolved declared type of each variable declaration.
	Decls map[*ast.VarDecl]Type
	Funcs map[*ast.FuncDecl]*Func
	// Uses maps identifiers that read or write a binding (variables,
	// assignment targets, callees) to the scope distance of that binding.
	Uses map[*ast.Identifier]int
}

func newInfo() *Info {
	return &Info{
		Types: map[ast.Expr]Type{},
		Decls: map[*ast.VarDecl]Type{},
		Funcs: map[*ast.FuncDecl]*Func{},
		Uses:  map[*ast.Identifier]int{},
	}
}

func (i *Info) merge(from *Info) {
	for k, v := range from.Types {
		i.Types[k] = v
	}
	for k, v := range from.Decls {
		i.Decls[k] = v
	}
	for k, v := range from.Funcs {
		i.Funcs[k] = v
	}
	for k, v := range from.Uses {
		i.Uses[k] = v
	}
}

// Checker owns a program scope that survives between Check calls, so a
// REPL can check one chunk at a time.
type Checker struct {
	info   *Info
	global *scope

	// chunk collects what the current Check learns until it succeeds.
	chunk *Info

	scope  *scope
	result Type
}

func New() *Checker {
	global := newScope(nil)
	for _, name := range BuiltinOrder {
		global.define(name, Builtins[name])
	}
	return &Checker{info: newInfo(), global: global}
}

// Check type checks a whole program with a fresh program scope.
func Check(prog *ast.Program) (*Info, error) {
	return New().Check(prog)
}

// Check validates prog against the checker's program scope. On failure the
// declarations prog made at top level and everything recorded about it are
// discarded.
func (c *Checker) Check(prog *ast.Program) (info *Info, err error) {
	saved := c.global.snapshot()

	defer func() {
		if r := recover(); r != nil {
			terr, ok := r.(errors.TypeError)
			if !ok {
				panic(r)
			}
			c.global.names = saved
			c.chunk = nil
			plog.Debugf("rejected: %v", terr)
			info = nil
			err = tracerr.Wrap(terr)
		}
	}()

	c.scope = c.global
	c.result = Void
	c.chunk = newInfo()
	for _, stmt := range prog.Stmts {
		c.checkStmt(stmt)
	}

	c.info.merge(c.chunk)
	c.chunk = nil
	return c.info, nil
}

// Retain drops top-level names for which keep returns false. Builtins are
// always kept.
func (c *Checker) Retain(keep func(name string) bool) {
	for name := range c.global.names {
		if _, builtin := Builtins[name]; builtin {
			continue
		}
		if !keep(name) {
			delete(c.global.names, name)
		}
	}
}

// Info is the information gathered by every successful Check so far.
func (c *Checker) Info() *Info {
	return c.info
}

// Lookup reports the type of a top-level name.
func (c *Checker) Lookup(name string) (Type, bool) {
	t, ok := c.global.names[name]
	return t, ok
}

func fail(kind errors.TypeErrorKind, at types.Span, format string, args ...interface{}) {
	panic(errors.TypeError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Location: at,
	})
}

func (c *Checker) push() {
	c.scope = newScope(c.scope)
}

func (c *Checker) pop() {
	c.scope = c.scope.parent
}

func (c *Checker) define(id *ast.Identifier, t Type) {
	if !c.scope.define(id.Name, t) {
		fail(errors.Redeclaration, id.Pos, "%s is already declared in this scope", id.Name)
	}
}

func (c *Checker) resolve(id *ast.Identifier) Type {
	t, hops, ok := c.scope.lookup(id.Name)
	if !ok {
		fail(errors.UndeclaredName, id.Pos, "undeclared name %s", id.Name)
	}
	c.chunk.Uses[id] = hops
	return t
}

func (c *Checker) typeName(tn *ast.TypeName) Type {
	t, ok := lookupTypeName(tn.Name)
	if !ok {
		fail(errors.UndeclaredName, tn.Pos, "unknown type %s", tn.Name)
	}
	return t
}

// valueType resolves a type written for a variable or parameter.
func (c *Checker) valueType(tn *ast.TypeName) Type {
	t := c.typeName(tn)
	if Identical(t, Void) {
		fail(errors.TypeMismatch, tn.Pos, "void is only valid as a function result")
	}
	return t
}

func (c *Checker) checkStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		c.checkStmt(s)
	}
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.FuncDecl:
		c.checkFunc(s)
	case *ast.VarDecl:
		t := c.valueType(s.Type)
		if s.Value != nil {
			if vt := c.expr(s.Value); !Identical(vt, t) {
				fail(errors.TypeMismatch, s.Value.Span(), "cannot initialize %s with a %s value", t, vt)
			}
		}
		for _, name := range s.Names {
			c.define(name, t)
		}
		c.chunk.Decls[s] = t
	case *ast.Assignment:
		target := c.resolve(s.Target)
		if _, isFunc := target.(*Func); isFunc {
			fail(errors.TypeMismatch, s.Target.Pos, "cannot assign to function %s", s.Target.Name)
		}
		if vt := c.expr(s.Value); !Identical(vt, target) {
			fail(errors.TypeMismatch, s.Value.Span(), "cannot assign a %s value to %s of type %s", vt, s.Target.Name, target)
		}
	case *ast.ForLoop:
		if it := c.expr(s.Iterable); !Identical(it, Range{}) {
			fail(errors.TypeMismatch, s.Iterable.Span(), "cannot iterate over a %s value", it)
		}
		c.push()
		c.define(s.Var, Int)
		c.checkStmts(s.Body.Stmts)
		c.pop()
	case *ast.IfStmt:
		if ct := c.expr(s.Cond); !Identical(ct, Bool) {
			fail(errors.TypeMismatch, s.Cond.Span(), "if condition is %s, not bool", ct)
		}
		c.push()
		c.checkStmts(s.Then.Stmts)
		c.pop()
		if s.Else != nil {
			c.push()
			c.checkStmts(s.Else.Stmts)
			c.pop()
		}
	case *ast.Return:
		if s.Value == nil {
			if !Identical(c.result, Void) {
				fail(errors.TypeMismatch, s.Pos, "missing return value of type %s", c.result)
			}
			return
		}
		vt := c.expr(s.Value)
		if Identical(c.result, Void) {
			fail(errors.TypeMismatch, s.Value.Span(), "unexpected return value in void context")
		}
		if !Identical(vt, c.result) {
			fail(errors.TypeMismatch, s.Value.Span(), "cannot return a %s value from a function returning %s", vt, c.result)
		}
	case *ast.ExprStmt:
		c.expr(s.X)
	default:
		panic(fmt.Sprintf("checker: unhandled statement %T", s))
	}
}

func (c *Checker) checkFunc(fn *ast.FuncDecl) {
	sig := &Func{Result: c.typeName(fn.Result)}
	for _, p := range fn.Params {
		sig.Params = append(sig.Params, c.valueType(p.Type))
	}

	// Bound before the body so the function can call itself.
	c.define(fn.Name, sig)
	c.chunk.Funcs[fn] = sig

	outerScope, outerResult := c.scope, c.result
	c.scope = newScope(c.scope)
	c.result = sig.Result
	defer func() {
		c.scope, c.result = outerScope, outerResult
	}()

	for i, p := range fn.Params {
		c.define(p.Name, sig.Params[i])
	}
	c.checkStmts(fn.Body.Stmts)

	if !Identical(sig.Result, Void) && !terminates(fn.Body.Stmts) {
		fail(errors.MissingReturn, fn.Pos, "function %s may end without returning a %s", fn.Name.Name, sig.Result)
	}
}

func (c *Checker) expr(e ast.Expr) Type {
	t := c.exprType(e)
	c.chunk.Types[e] = t
	return t
}

func (c *Checker) exprType(e ast.Expr) Type {
	switch e := e.(type) {
	case *ast.IntLiteral:
		return Int
	case *ast.BoolLiteral:
		return Bool
	case *ast.Identifier:
		return c.resolve(e)
	case *ast.BinaryExpr:
		left := c.expr(e.Left)
		right := c.expr(e.Right)
		if !Identical(left, right) {
			fail(errors.TypeMismatch, e.Pos, "mismatched operands %s %s %s", left, e.Op.Symbol(), right)
		}
		switch e.Op {
		case types.EQEQ, types.NOTEQ:
			if !Identical(left, Int) && !Identical(left, Bool) {
				fail(errors.TypeMismatch, e.Pos, "cannot compare %s values", left)
			}
			return Bool
		case types.LT, types.LTEQ, types.GT, types.GTEQ:
			if !Identical(left, Int) {
				fail(errors.TypeMismatch, e.Pos, "operator %s needs int operands, got %s", e.Op.Symbol(), left)
			}
			return Bool
		}
		if !Identical(left, Int) {
			fail(errors.TypeMismatch, e.Pos, "operator %s needs int operands, got %s", e.Op.Symbol(), left)
		}
		return Int
	case *ast.Call:
		callee := c.resolve(e.Callee)
		fn, ok := callee.(*Func)
		if !ok {
			fail(errors.TypeMismatch, e.Callee.Pos, "%s is a %s, not a function", e.Callee.Name, callee)
		}
		if len(e.Args) != len(fn.Params) {
			fail(errors.ArityMismatch, e.Pos, "%s takes %d argument(s), got %d", e.Callee.Name, len(fn.Params), len(e.Args))
		}
		for i, arg := range e.Args {
			if at := c.expr(arg); !assignable(fn.Params[i], at) {
				fail(errors.TypeMismatch, arg.Span(), "argument %d of %s is %s, want %s", i+1, e.Callee.Name, at, fn.Params[i])
			}
		}
		return fn.Result
	}
	panic(fmt.Sprintf("checker: unhandled expression %T", e))
}
