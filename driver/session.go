package driver

import (
	"context"
	"fmt"
	"io/ioutil"

	"github.com/pontaoski/pyco/checker"
	"github.com/pontaoski/pyco/errors"
	"github.com/pontaoski/pyco/interp"
)

// Session evaluates a program one chunk at a time. Top-level declarations
// from earlier chunks stay visible to later ones.
type Session struct {
	opts    interp.Options
	checker *checker.Checker
	interp  *interp.Interpreter
	chunks  int
}

func NewSession(opts interp.Options) *Session {
	s := &Session{opts: opts}
	s.Reset()
	return s
}

// Reset forgets every declaration made so far.
func (s *Session) Reset() {
	s.checker = checker.New()
	s.interp = interp.New(s.checker.Info(), s.opts)
	s.chunks = 0
}

// Eval runs one chunk. A chunk that fails to parse or check leaves the
// session as it was. A chunk that fails at run time keeps the declarations
// it completed before the failure.
func (s *Session) Eval(ctx context.Context, source string) error {
	s.chunks++
	return s.eval(ctx, source, fmt.Sprintf("<repl:%d>", s.chunks))
}

// Load evaluates a whole file as one chunk.
func (s *Session) Load(ctx context.Context, path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	return s.eval(ctx, string(data), path)
}

func (s *Session) eval(ctx context.Context, source, filename string) error {
	file, err := Parse(source, filename)
	if err != nil {
		return err
	}
	if _, err := s.checker.Check(file); err != nil {
		return err
	}

	// A run can stop early through a failure or a top-level return. Either
	// way the checker may know names the environment never bound.
	err = s.interp.Run(ctx, file)
	if err != nil {
		plog.Debugf("%s failed at run time", filename)
	}
	s.checker.Retain(s.interp.Global().Has)
	return err
}

// Incomplete reports whether err means the source ended in the middle of a
// statement, so more input could still make it valid.
func Incomplete(err error) bool {
	var perr errors.ParseError
	return errors.As(err, &perr) && perr.AtEOF()
}
