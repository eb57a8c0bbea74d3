// Package interp runs checked programs by walking the syntax tree.
package interp

import (
	"context"
	"io"
	"os"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/pyco/ast"
	"github.com/pontaoski/pyco/checker"
	"github.com/pontaoski/pyco/errors"
	"github.com/pontaoski/pyco/types"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/pyco", "interp")

const DefaultMaxDepth = 10000

type Options struct {
	// Stdout receives print output. Defaults to os.Stdout.
	Stdout io.Writer
	// MaxSteps bounds the number of executed statements. Zero means no
	// limit.
	MaxSteps int64
	// MaxDepth bounds nested calls. Zero means DefaultMaxDepth.
	MaxDepth int
}

type Interpreter struct {
	info   *checker.Info
	opts   Options
	global *Env

	ctx   context.Context
	steps int64
	depth int
}

// New prepares an interpreter for programs checked into info. The program
// environment starts with the builtins and persists across Run calls.
func New(info *checker.Info, opts Options) *Interpreter {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	global := NewEnv(nil)
	addBuiltins(global)
	return &Interpreter{info: info, opts: opts, global: global}
}

// Global is the program environment.
func (in *Interpreter) Global() *Env {
	return in.global
}

// Steps is the number of statements the last Run executed.
func (in *Interpreter) Steps() int64 {
	return in.steps
}

type outcome struct {
	returned bool
	value    Value
}

// Run executes prog's top-level statements in the program environment.
// A top-level return ends the run early.
func (in *Interpreter) Run(ctx context.Context, prog *ast.Program) error {
	in.ctx = ctx
	in.steps = 0
	in.depth = 0
	plog.Debugf("running %d top-level statements", len(prog.Stmts))

	if _, err := in.execStmts(in.global, prog.Stmts); err != nil {
		return tracerr.Wrap(err)
	}
	plog.Debugf("finished after %d steps", in.steps)
	return nil
}

func (in *Interpreter) step(s ast.Stmt) error {
	in.steps++
	if in.opts.MaxSteps > 0 && in.steps > in.opts.MaxSteps {
		return errors.RuntimeError{
			Kind:     errors.StepLimitExceeded,
			Message:  "execution exceeded the step limit",
			Location: s.Span(),
		}
	}
	if err := in.ctx.Err(); err != nil {
		return errors.RuntimeError{
			Kind:     errors.Canceled,
			Message:  err.Error(),
			Location: s.Span(),
		}
	}
	return nil
}

func (in *Interpreter) execStmts(env *Env, stmts []ast.Stmt) (outcome, error) {
	for _, s := range stmts {
		out, err := in.exec(env, s)
		if err != nil || out.returned {
			return out, err
		}
	}
	return outcome{}, nil
}

func (in *Interpreter) exec(env *Env, s ast.Stmt) (outcome, error) {
	if err := in.step(s); err != nil {
		return outcome{}, err
	}

	switch s := s.(type) {
	case *ast.FuncDecl:
		env.Define(s.Name.Name, &Closure{Decl: s, Env: env})
	case *ast.VarDecl:
		var v Value
		if s.Value != nil {
			val, err := in.eval(env, s.Value)
			if err != nil {
				return outcome{}, err
			}
			v = val
		} else {
			zero, ok := Zero(in.info.Decls[s])
			if !ok {
				return outcome{}, errors.Internalf(s.Pos, "no zero value for declaration of %s", s.Names[0].Name)
			}
			v = zero
		}
		for _, name := range s.Names {
			env.Define(name.Name, v)
		}
	case *ast.Assignment:
		v, err := in.eval(env, s.Value)
		if err != nil {
			return outcome{}, err
		}
		hops, ok := in.info.Uses[s.Target]
		if !ok || !env.set(s.Target.Name, hops, v) {
			return outcome{}, errors.Internalf(s.Target.Pos, "assignment to unbound %s", s.Target.Name)
		}
	case *ast.ForLoop:
		it, err := in.eval(env, s.Iterable)
		if err != nil {
			return outcome{}, err
		}
		r, ok := it.(Range)
		if !ok {
			return outcome{}, errors.Internalf(s.Iterable.Span(), "for loop over %s", it)
		}
		for i := int64(0); i < r.Len(); i++ {
			iter := NewEnv(env)
			iter.Define(s.Var.Name, Int(i))
			out, err := in.execStmts(iter, s.Body.Stmts)
			if err != nil || out.returned {
				return out, err
			}
		}
	case *ast.IfStmt:
		cond, err := in.eval(env, s.Cond)
		if err != nil {
			return outcome{}, err
		}
		b, ok := cond.(Bool)
		if !ok {
			return outcome{}, errors.Internalf(s.Cond.Span(), "if condition is %s", cond)
		}
		if b {
			return in.execStmts(NewEnv(env), s.Then.Stmts)
		} else if s.Else != nil {
			return in.execStmts(NewEnv(env), s.Else.Stmts)
		}
	case *ast.Return:
		if s.Value == nil {
			return outcome{returned: true, value: Void}, nil
		}
		v, err := in.eval(env, s.Value)
		if err != nil {
			return outcome{}, err
		}
		return outcome{returned: true, value: v}, nil
	case *ast.ExprStmt:
		if _, err := in.eval(env, s.X); err != nil {
			return outcome{}, err
		}
	default:
		return outcome{}, errors.Internalf(s.Span(), "unhandled statement %T", s)
	}

	return outcome{}, nil
}

func (in *Interpreter) lookup(env *Env, id *ast.Identifier) (Value, error) {
	hops, ok := in.info.Uses[id]
	if !ok {
		return nil, errors.Internalf(id.Pos, "%s was never resolved", id.Name)
	}
	v, ok := env.get(id.Name, hops)
	if !ok {
		return nil, errors.Internalf(id.Pos, "%s is not bound %d scopes out", id.Name, hops)
	}
	return v, nil
}

func (in *Interpreter) eval(env *Env, e ast.Expr) (Value, error) {
	switch e := e.(type) {
	case *ast.IntLiteral:
		return Int(e.Value), nil
	case *ast.BoolLiteral:
		return Bool(e.Value), nil
	case *ast.Identifier:
		return in.lookup(env, e)
	case *ast.BinaryExpr:
		return in.binary(env, e)
	case *ast.Call:
		return in.call(env, e)
	}
	return nil, errors.Internalf(e.Span(), "unhandled expression %T", e)
}

func (in *Interpreter) binary(env *Env, e *ast.BinaryExpr) (Value, error) {
	lv, err := in.eval(env, e.Left)
	if err != nil {
		return nil, err
	}
	rv, err := in.eval(env, e.Right)
	if err != nil {
		return nil, err
	}

	if e.Op == types.EQEQ || e.Op == types.NOTEQ {
		if !sameKind(lv, rv) {
			return nil, errors.Internalf(e.Pos, "operator %s applied to %s and %s", e.Op.Symbol(), lv, rv)
		}
		return Bool((lv == rv) == (e.Op == types.EQEQ)), nil
	}

	l, lok := lv.(Int)
	r, rok := rv.(Int)
	if !lok || !rok {
		return nil, errors.Internalf(e.Pos, "operator %s applied to %s and %s", e.Op.Symbol(), lv, rv)
	}

	switch e.Op {
	case types.LT:
		return Bool(l < r), nil
	case types.LTEQ:
		return Bool(l <= r), nil
	case types.GT:
		return Bool(l > r), nil
	case types.GTEQ:
		return Bool(l >= r), nil
	case types.PLUS:
		return l + r, nil
	case types.MINUS:
		return l - r, nil
	case types.STAR:
		return l * r, nil
	case types.SLASH, types.PERCENT:
		if r == 0 {
			return nil, errors.RuntimeError{
				Kind:     errors.DivisionByZero,
				Message:  "integer " + e.Op.Symbol() + " by zero",
				Location: e.Pos,
			}
		}
		if e.Op == types.SLASH {
			return l / r, nil
		}
		return l % r, nil
	}
	return nil, errors.Internalf(e.Pos, "unknown operator %s", e.Op)
}

// sameKind reports whether a and b are both ints or both bools.
func sameKind(a, b Value) bool {
	switch a.(type) {
	case Int:
		_, ok := b.(Int)
		return ok
	case Bool:
		_, ok := b.(Bool)
		return ok
	}
	return false
}

func (in *Interpreter) call(env *Env, e *ast.Call) (Value, error) {
	callee, err := in.lookup(env, e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, 0, len(e.Args))
	for _, arg := range e.Args {
		v, err := in.eval(env, arg)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	switch fn := callee.(type) {
	case *Builtin:
		return fn.Fn(in, e.Pos, args)
	case *Closure:
		return in.callClosure(fn, e, args)
	}
	return nil, errors.Internalf(e.Callee.Pos, "%s is %s, not a function", e.Callee.Name, callee)
}

func (in *Interpreter) callClosure(fn *Closure, e *ast.Call, args []Value) (Value, error) {
	decl := fn.Decl
	if len(args) != len(decl.Params) {
		return nil, errors.Internalf(e.Pos, "%s called with %d arguments, wants %d", decl.Name.Name, len(args), len(decl.Params))
	}

	in.depth++
	defer func() { in.depth-- }()
	if in.depth > in.opts.MaxDepth {
		return nil, errors.RuntimeError{
			Kind:     errors.StackOverflow,
			Message:  "call depth exceeded while calling " + decl.Name.Name,
			Location: e.Pos,
		}
	}
	plog.Tracef("call %s at depth %d", decl.Name.Name, in.depth)

	frame := NewEnv(fn.Env)
	for i, p := range decl.Params {
		frame.Define(p.Name.Name, args[i])
	}

	out, err := in.execStmts(frame, decl.Body.Stmts)
	if err != nil {
		return nil, err
	}
	if out.returned {
		return out.value, nil
	}

	sig, ok := in.info.Funcs[decl]
	if !ok || !checker.Identical(sig.Result, checker.Void) {
		return nil, errors.Internalf(decl.Pos, "%s ended without returning a value", decl.Name.Name)
	}
	return Void, nil
}
