package interp

import (
	"bytes"
	"context"
	"testing"

	"github.com/pontaoski/pyco/ast"
	"github.com/pontaoski/pyco/checker"
	"github.com/pontaoski/pyco/errors"
	"github.com/pontaoski/pyco/parser"
	"github.com/pontaoski/pyco/types"
)

func run(t *testing.T, src string, opts Options) (string, error) {
	t.Helper()
	return runContext(t, context.Background(), src, opts)
}

func runContext(t *testing.T, ctx context.Context, src string, opts Options) (string, error) {
	t.Helper()
	prog, err := parser.ParseSource(src, "test.pyco")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	info, err := checker.Check(prog)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	var out bytes.Buffer
	opts.Stdout = &out
	err = New(info, opts).Run(ctx, prog)
	return out.String(), err
}

func expectOutput(t *testing.T, src, want string) {
	t.Helper()
	got, err := run(t, src, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("output %q, want %q", got, want)
	}
}

func expectRuntime(t *testing.T, err error, kind errors.RuntimeErrorKind) errors.RuntimeError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s", kind)
	}
	var rerr errors.RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RuntimeError, got %T: %v", err, err)
	}
	if rerr.Kind != kind {
		t.Fatalf("got %s, want %s", rerr.Kind, kind)
	}
	return rerr
}

func TestFib(t *testing.T) {
	expectOutput(t, `def fib(n: int) -> int {
    a, b: int
    b = 1
    for i in each(n) {
        swap: int = a
        a = b
        b = b + swap
    }
    return a
}
print(fib(5))
`, "5\n")
}

func TestPrograms(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"print literal", "print(42)", "42\n"},
		{"print bool", "print(true)\nprint(false)", "true\nfalse\n"},
		{"zero values", "x: int\nb: bool\nprint(x)\nprint(b)", "0\nfalse\n"},
		{"each zero", "for i in each(0) { print(i) }\nprint(7)", "7\n"},
		{"each negative", "for i in each(0 - 3) { print(i) }", ""},
		{"each counts up", "for i in each(3) { print(i) }", "0\n1\n2\n"},
		{"precedence", "print(1 + 2 * 3)\nprint((1 + 2) * 3)\nprint(10 - 4 - 3)", "7\n9\n3\n"},
		{"truncating division", "print(7 / 2)\nprint((0 - 7) / 2)\nprint((0 - 7) % 2)", "3\n-3\n-1\n"},
		{"wrap around", "x: int = 9223372036854775807\nprint(x + 1)", "-9223372036854775808\n"},
		{"multi-name initializer", "a, b: int = 4\nb = b + 1\nprint(a)\nprint(b)", "4\n5\n"},
		{"comparisons", "print(1 < 2)\nprint(2 <= 1)\nprint(3 > 3)\nprint(3 >= 3)\nprint(4 == 4)\nprint(4 != 4)", "true\nfalse\nfalse\ntrue\ntrue\nfalse\n"},
		{"bool equality", "print(true == (1 < 2))\nprint(false != false)", "true\nfalse\n"},
		{"comparison binds loosest", "print(1 + 2 * 3 == 7)", "true\n"},
		{"branch on a comparison", `def evens(n: int) -> void {
    for i in each(n) {
        if i % 2 == 0 { print(i) }
    }
}
evens(5)`, "0\n2\n4\n"},
		{"if else", "if false { print(1) } else if true { print(2) } else { print(3) }", "2\n"},
		{"loop variable is fresh", "t: int\nfor i in each(3) { x: int = i * 10\nt = t + x }\nprint(t)", "30\n"},
		{"early return from loop", `def first(n: int) -> int {
    for i in each(n) { return i + 100 }
    return 0 - 1
}
print(first(5))
print(first(0))`, "100\n-1\n"},
		{"void function", "def hello(n: int) -> void {\n print(n)\n return\n print(0)\n}\nhello(3)", "3\n"},
		{"top-level return", "print(1)\nreturn\nprint(2)", "1\n"},
		{"closure sees outer variable", `x: int = 1
def get() -> int { return x }
x = 5
print(get())`, "5\n"},
		{"nested closure", `def adder(base: int) -> int {
    def add(n: int) -> int { return base + n }
    return add(10)
}
print(adder(5))`, "15\n"},
		{"arguments evaluated left to right", `def show(n: int) -> int {
    print(n)
    return n
}
print(show(1) + show(2))`, "1\n2\n3\n"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			expectOutput(t, c.src, c.want)
		})
	}
}

func TestRecursion(t *testing.T) {
	expectOutput(t, `def countdown(n: int) -> void {
    for i in each(n) {
        print(n)
        countdown(n - 1)
        return
    }
}
countdown(3)
`, "3\n2\n1\n")
}

func TestRecursionWithBaseCase(t *testing.T) {
	expectOutput(t, `def fact(n: int) -> int {
    if n <= 1 { return 1 }
    return n * fact(n - 1)
}
print(fact(10))
`, "3628800\n")
}

func TestStaticResolution(t *testing.T) {
	// h reads the program-level x even though g declares its own x before
	// calling h.
	expectOutput(t, `x: int = 1
def g() -> int {
    def h() -> int { return x }
    x: bool = true
    return h()
}
print(g())
`, "1\n")
}

func TestDivisionByZero(t *testing.T) {
	out, err := run(t, "print(1)\nx: int = 0\nprint(5 / x)\nprint(2)", Options{})
	rerr := expectRuntime(t, err, errors.DivisionByZero)
	if out != "1\n" {
		t.Fatalf("output before the failure %q", out)
	}
	if rerr.Location.From.Line != 3 || rerr.Location.From.Column != 7 {
		t.Fatalf("error at %s, want 3:7", rerr.Location.From)
	}

	_, err = run(t, "x: int = 0\nprint(5 % x)", Options{})
	expectRuntime(t, err, errors.DivisionByZero)
}

func TestStepLimit(t *testing.T) {
	_, err := run(t, "x: int\nfor i in each(1000000) { x = x + i }", Options{MaxSteps: 100})
	expectRuntime(t, err, errors.StepLimitExceeded)

	if _, err := run(t, "x: int\nfor i in each(10) { x = x + i }", Options{MaxSteps: 100}); err != nil {
		t.Fatalf("small loop hit the limit: %v", err)
	}
}

func TestStackOverflow(t *testing.T) {
	_, err := run(t, "def f(n: int) -> int { return f(n + 1) }\nprint(f(0))", Options{MaxDepth: 50})
	rerr := expectRuntime(t, err, errors.StackOverflow)
	if rerr.Location.From.Line != 1 {
		t.Fatalf("error at %s", rerr.Location.From)
	}
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := runContext(t, ctx, "print(1)", Options{})
	expectRuntime(t, err, errors.Canceled)
	if out != "" {
		t.Fatalf("canceled run printed %q", out)
	}
}

func TestUncheckedStateIsInternal(t *testing.T) {
	pos := types.SingleCharSpan(types.Position{Line: 1, Column: 1, Filename: "test.pyco"})
	id := &ast.Identifier{Name: "ghost", Pos: pos}
	prog := &ast.Program{Stmts: []ast.Stmt{&ast.ExprStmt{X: id, Pos: pos}}, Pos: pos}

	// No checker information for ghost at all.
	info, err := checker.Check(&ast.Program{Pos: pos})
	if err != nil {
		t.Fatal(err)
	}
	err = New(info, Options{Stdout: &bytes.Buffer{}}).Run(context.Background(), prog)
	if !errors.IsInternal(err) {
		t.Fatalf("expected an internal error, got %v", err)
	}
	if errors.ExitCode(err) != errors.ExitInternal {
		t.Fatalf("exit code %d", errors.ExitCode(err))
	}
}

func TestEnv(t *testing.T) {
	outer := NewEnv(nil)
	outer.Define("x", Int(1))
	inner := NewEnv(outer)
	inner.Define("x", Bool(true))

	if v, ok := inner.get("x", 1); !ok || v != Int(1) {
		t.Fatalf("x one scope out is %v", v)
	}
	if v, ok := inner.get("x", 0); !ok || v != Bool(true) {
		t.Fatalf("x in scope is %v", v)
	}
	if inner.set("y", 0, Int(2)) {
		t.Fatal("set created a binding")
	}
	if !inner.set("x", 1, Int(9)) {
		t.Fatal("set failed on an existing binding")
	}
	if v, _ := outer.get("x", 0); v != Int(9) {
		t.Fatalf("outer x is %v after set", v)
	}
	if _, ok := inner.get("x", 5); ok {
		t.Fatal("lookup past the root succeeded")
	}
}
