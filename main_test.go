package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pontaoski/pyco/driver"
	"github.com/pontaoski/pyco/errors"
	"github.com/pontaoski/pyco/interp"
	"github.com/pontaoski/pyco/project"
	"github.com/urfave/cli/v2"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.pyco")
	if err := ioutil.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runApp(t *testing.T, args ...string) (string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"pyco"}, args...))
	if err == nil {
		return out.String(), errors.ExitOK
	}
	if coder, ok := err.(cli.ExitCoder); ok {
		return out.String(), coder.ExitCode()
	}
	t.Fatalf("unexpected error: %v", err)
	return "", 0
}

const fib = `def fib(n: int) -> int {
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
`

func TestRunCommand(t *testing.T) {
	cases := []struct {
		name string
		src  string
		args []string
		out  string
		code int
	}{
		{"fib", fib, nil, "5\n", errors.ExitOK},
		{"static error", "print(1)\ndef f() -> int {}", nil, "", errors.ExitStatic},
		{"division by zero", "print(1)\nx: int\nprint(1 / x)", nil, "1\n", errors.ExitRuntime},
		{"step limit", "x: int\nfor i in each(100000) { x = x + 1 }", []string{"--max-steps", "50"}, "", errors.ExitRuntime},
		{"depth limit", "def f() -> int { return f() }\nprint(f())", []string{"--max-depth", "20"}, "", errors.ExitRuntime},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			args := append([]string{"run"}, c.args...)
			out, code := runApp(t, append(args, writeSource(t, c.src))...)
			if code != c.code {
				t.Fatalf("exit code %d, want %d", code, c.code)
			}
			if out != c.out {
				t.Fatalf("output %q, want %q", out, c.out)
			}
		})
	}
}

func TestMissingFile(t *testing.T) {
	if _, code := runApp(t, "run", filepath.Join(t.TempDir(), "nope.pyco")); code != errors.ExitFailure {
		t.Fatalf("exit code %d", code)
	}
}

func TestCheckCommand(t *testing.T) {
	if _, code := runApp(t, "check", writeSource(t, fib)); code != errors.ExitOK {
		t.Fatalf("exit code %d", code)
	}
	if _, code := runApp(t, "check", writeSource(t, fib+"print(a)\n")); code != errors.ExitStatic {
		t.Fatalf("exit code %d", code)
	}
}

func TestTokensCommand(t *testing.T) {
	out, code := runApp(t, "tokens", writeSource(t, "print(42)"))
	if code != errors.ExitOK {
		t.Fatalf("exit code %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d tokens:\n%s", len(lines), out)
	}
	if lines[0] != `1:1 IDENT "print"` {
		t.Fatalf("first token %s", lines[0])
	}
}

func TestFmtCommand(t *testing.T) {
	path := writeSource(t, "x:int=1+2*3\nprint( x )")
	out, code := runApp(t, "fmt", path)
	if code != errors.ExitOK {
		t.Fatalf("exit code %d", code)
	}
	want := "x: int = 1 + 2 * 3\nprint(x)\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}

	if _, code := runApp(t, "fmt", "-w", path); code != errors.ExitOK {
		t.Fatalf("exit code %d", code)
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != want {
		t.Fatalf("file holds %q", data)
	}
}

func TestFmtKeepsComments(t *testing.T) {
	path := writeSource(t, "# answer\nx:int=42 # keep me\ndef f()->void{\n  # inside\n  print(x)\n}\n# end\n")
	if _, code := runApp(t, "fmt", "-w", path); code != errors.ExitOK {
		t.Fatalf("exit code %d", code)
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "# answer\nx: int = 42 # keep me\ndef f() -> void {\n    # inside\n    print(x)\n}\n# end\n"
	if string(data) != want {
		t.Fatalf("file holds %q, want %q", data, want)
	}
}

func TestTypeinfoCommand(t *testing.T) {
	out, code := runApp(t, "typeinfo", writeSource(t, fib))
	if code != errors.ExitOK {
		t.Fatalf("exit code %d", code)
	}
	info, err := driver.UnmarshalTypeInfo([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if info.Functions["fib"] != "func(int) int" {
		t.Fatalf("fib is %q", info.Functions["fib"])
	}
}

func TestInitAndRunEntry(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	if _, code := runApp(t, "init", "demo"); code != errors.ExitOK {
		t.Fatalf("init exit code %d", code)
	}
	m, err := project.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Package != "demo" {
		t.Fatalf("package %q", m.Package)
	}

	out, code := runApp(t, "run")
	if code != errors.ExitOK || out != "42\n" {
		t.Fatalf("run printed %q with exit code %d", out, code)
	}

	if _, code := runApp(t, "init", "again"); code != errors.ExitFailure {
		t.Fatalf("second init exit code %d", code)
	}
}

func TestShell(t *testing.T) {
	var out, errOut bytes.Buffer
	sh := &shell{
		session: driver.NewSession(interp.Options{Stdout: &out}),
		out:     &out,
		errOut:  &errOut,
		newCtx: func() (context.Context, context.CancelFunc) {
			return context.WithCancel(context.Background())
		},
	}

	for _, chunk := range []string{"x: int = 4", "def sq(n: int) -> int {\n    return n * n\n}", "print(sq(x))"} {
		if sh.handle(chunk) {
			t.Fatalf("%q ended the session", chunk)
		}
	}
	if out.String() != "16\n" {
		t.Fatalf("output %q, errors %q", out.String(), errOut.String())
	}

	sh.handle("print(y)")
	if !strings.Contains(errOut.String(), "UndeclaredName") {
		t.Fatalf("errors %q", errOut.String())
	}

	sh.handle(":reset")
	errOut.Reset()
	sh.handle("print(x)")
	if errOut.Len() == 0 {
		t.Fatal("x survived :reset")
	}

	out.Reset()
	sh.handle(":load " + writeSource(t, fib))
	if out.String() != "5\n" {
		t.Fatalf("load printed %q", out.String())
	}

	if !sh.handle(":quit") {
		t.Fatal(":quit did not end the session")
	}
}

type scriptedInput struct {
	lines   []string
	err     error
	prompts []string
}

func (s *scriptedInput) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", s.err
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestReadChunk(t *testing.T) {
	in := &scriptedInput{lines: []string{"def f() -> int {", "    return 1", "}"}, err: io.EOF}
	code, ok := readChunk(in)
	if !ok || code != "def f() -> int {\n    return 1\n}" {
		t.Fatalf("got %q, %v", code, ok)
	}
	if strings.Join(in.prompts, "|") != promptMain+"|"+promptCont+"|"+promptCont {
		t.Fatalf("prompts %q", in.prompts)
	}

	if _, ok := readChunk(in); ok {
		t.Fatal("end of input did not end the session")
	}

	broken := &scriptedInput{err: stderrors.New("terminal went away")}
	if _, ok := readChunk(broken); ok {
		t.Fatal("a read failure did not end the session")
	}
	if len(broken.prompts) != 1 {
		t.Fatalf("prompted %d times after a read failure", len(broken.prompts))
	}
}
