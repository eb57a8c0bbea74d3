package interp

import (
	"fmt"

	"github.com/pontaoski/pyco/checker"
	"github.com/pontaoski/pyco/errors"
	"github.com/pontaoski/pyco/types"
)

func addBuiltins(env *Env) {
	funcs := map[string]BuiltinFunc{
		"print": builtinPrint,
		"each":  builtinEach,
	}
	for _, name := range checker.BuiltinOrder {
		env.Define(name, &Builtin{Name: name, Fn: funcs[name]})
	}
}

func builtinPrint(in *Interpreter, at types.Span, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, errors.Internalf(at, "print called with %d arguments", len(args))
	}
	switch args[0].(type) {
	case Int, Bool:
	default:
		return nil, errors.Internalf(at, "print called with %s", args[0])
	}
	if _, err := fmt.Fprintln(in.opts.Stdout, args[0].String()); err != nil {
		return nil, err
	}
	return Void, nil
}

func builtinEach(in *Interpreter, at types.Span, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, errors.Internalf(at, "each called with %d arguments", len(args))
	}
	n, ok := args[0].(Int)
	if !ok {
		return nil, errors.Internalf(at, "each called with %s", args[0])
	}
	return Range{N: int64(n)}, nil
}
