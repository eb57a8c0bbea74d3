package checker

import (
	"fmt"
	"strings"
)

// Type is a pyco static type. Types compare structurally with Identical.
type Type interface {
	fmt.Stringer
	isType()
}

type Basic struct {
	name string
}

func (b *Basic) String() string { return b.name }
func (*Basic) isType()          {}

var (
	Int  = &Basic{"int"}
	Bool = &Basic{"bool"}
	Void = &Basic{"void"}

	// Primitive only appears as a built-in parameter type and accepts any
	// of int or bool.
	Primitive = &Basic{"primitive"}
)

// Range is what each(n) produces. Only a for loop can consume it.
type Range struct{}

func (Range) String() string { return "range" }
func (Range) isType()        {}

type Func struct {
	Params []Type
	Result Type
}

func (f *Func) String() string {
	var params []string
	for _, p := range f.Params {
		params = append(params, p.String())
	}
	return fmt.Sprintf("func(%s) %s", strings.Join(params, ", "), f.Result)
}

func (*Func) isType() {}

func Identical(a, b Type) bool {
	switch a := a.(type) {
	case *Basic:
		b, ok := b.(*Basic)
		return ok && a.name == b.name
	case Range:
		_, ok := b.(Range)
		return ok
	case *Func:
		b, ok := b.(*Func)
		if !ok || len(a.Params) != len(b.Params) || !Identical(a.Result, b.Result) {
			return false
		}
		for i := range a.Params {
			if !Identical(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// assignable reports whether an argument of type arg may be passed for a
// parameter of type param.
func assignable(param, arg Type) bool {
	if Identical(param, Primitive) {
		return Identical(arg, Int) || Identical(arg, Bool)
	}
	return Identical(param, arg)
}

// Builtins lists the names pre-declared in the program scope.
var Builtins = map[string]*Func{
	"print": {Params: []Type{Primitive}, Result: Void},
	"each":  {Params: []Type{Int}, Result: Range{}},
}

// BuiltinOrder is the fixed order builtins are declared in.
var BuiltinOrder = []string{"print", "each"}

func lookupTypeName(name string) (Type, bool) {
	switch name {
	case "int":
		return Int, true
	case "bool":
		return Bool, true
	case "void":
		return Void, true
	}
	return nil, false
}
