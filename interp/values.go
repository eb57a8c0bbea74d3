package interp

import (
	"fmt"
	"strconv"

	"github.com/pontaoski/pyco/ast"
	"github.com/pontaoski/pyco/checker"
	"github.com/pontaoski/pyco/types"
)

// Value is a runtime value. The set mirrors checker.Type.
type Value interface {
	fmt.Stringer
	isValue()
}

// Int wraps around on overflow like int64.
type Int int64

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (Int) isValue()         {}

type Bool bool

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }
func (Bool) isValue()         {}

type voidValue struct{}

func (voidValue) String() string { return "void" }
func (voidValue) isValue()       {}

// Void is what calls to void functions produce.
var Void Value = voidValue{}

// Range is each(N): the integers 0 through N-1 in ascending order.
type Range struct {
	N int64
}

func (r Range) String() string { return fmt.Sprintf("each(%d)", r.N) }
func (Range) isValue()         {}

// Len is how many integers the range yields. Negative bounds yield none.
func (r Range) Len() int64 {
	if r.N < 0 {
		return 0
	}
	return r.N
}

// Closure is a user function together with the environment it was
// declared in.
type Closure struct {
	Decl *ast.FuncDecl
	Env  *Env
}

func (c *Closure) String() string { return "<function " + c.Decl.Name.Name + ">" }
func (*Closure) isValue()         {}

type BuiltinFunc func(in *Interpreter, at types.Span, args []Value) (Value, error)

type Builtin struct {
	Name string
	Fn   BuiltinFunc
}

func (b *Builtin) String() string { return "<builtin " + b.Name + ">" }
func (*Builtin) isValue()         {}

// Zero is the value a declaration without an initializer starts with.
func Zero(t checker.Type) (Value, bool) {
	switch {
	case checker.Identical(t, checker.Int):
		return Int(0), true
	case checker.Identical(t, checker.Bool):
		return Bool(false), true
	}
	return nil, false
}
