package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/pontaoski/pyco/types"
	"github.com/ztrue/tracerr"
)

type LexErrorKind string

const (
	UnexpectedCharacter LexErrorKind = "UnexpectedCharacter"
)

type LexError struct {
	Kind     LexErrorKind
	Char     rune
	Location types.Span
}

func (e LexError) Error() string {
	return fmt.Sprintf("%s: lex error %s: unexpected character %q", e.Location.From, e.Kind, e.Char)
}

type ParseErrorKind string

const (
	UnexpectedToken ParseErrorKind = "UnexpectedToken"
	InvalidInteger  ParseErrorKind = "InvalidInteger"
)

type ParseError struct {
	Kind     ParseErrorKind
	Expected []types.TokenKind
	Got      types.TokenKind
	Text     string
	Location types.Span
}

func (e ParseError) Error() string {
	if e.Kind == InvalidInteger {
		return fmt.Sprintf("%s: parse error %s: integer literal %s does not fit in 64 bits", e.Location.From, e.Kind, e.Text)
	}
	var want []string
	for _, k := range e.Expected {
		want = append(want, k.String())
	}
	return fmt.Sprintf("%s: parse error %s: got %s %q, expected one of %s", e.Location.From, e.Kind, e.Got, e.Text, strings.Join(want, ", "))
}

// AtEOF reports whether the parser ran out of input, i.e. the source was
// incomplete rather than malformed.
func (e ParseError) AtEOF() bool {
	return e.Kind == UnexpectedToken && e.Got == types.EOF
}

type TypeErrorKind string

const (
	TypeMismatch   TypeErrorKind = "TypeMismatch"
	UndeclaredName TypeErrorKind = "UndeclaredName"
	Redeclaration  TypeErrorKind = "Redeclaration"
	ArityMismatch  TypeErrorKind = "ArityMismatch"
	MissingReturn  TypeErrorKind = "MissingReturn"
)

type TypeError struct {
	Kind     TypeErrorKind
	Message  string
	Location types.Span
}

func (e TypeError) Error() string {
	return fmt.Sprintf("%s: type error %s: %s", e.Location.From, e.Kind, e.Message)
}

type RuntimeErrorKind string

const (
	DivisionByZero    RuntimeErrorKind = "DivisionByZero"
	StepLimitExceeded RuntimeErrorKind = "StepLimitExceeded"
	StackOverflow     RuntimeErrorKind = "StackOverflow"
	Canceled          RuntimeErrorKind = "Canceled"
)

// RuntimeError is a dynamic failure of a well-typed program, such as
// dividing by zero or running past an execution limit.
type RuntimeError struct {
	Kind     RuntimeErrorKind
	Message  string
	Location types.Span
}

func (e RuntimeError) Error() string {
	return fmt.Sprintf("%s: runtime error %s: %s", e.Location.From, e.Kind, e.Message)
}

// InternalError means the evaluator met a state the type checker should
// have ruled out. It is a bug in pyco, not in the program.
type InternalError struct {
	Message  string
	Location types.Span
}

func (e InternalError) Error() string {
	return fmt.Sprintf("%s: internal error: %s", e.Location.From, e.Message)
}

// Internalf builds an InternalError at the given span.
func Internalf(at types.Span, format string, args ...interface{}) InternalError {
	return InternalError{Message: fmt.Sprintf(format, args...), Location: at}
}

// Cause strips tracerr wrapping.
func Cause(err error) error {
	return tracerr.Unwrap(err)
}

func As(err error, target interface{}) bool {
	return stderrors.As(Cause(err), target)
}

// IsStatic reports whether err rejects the program before execution.
func IsStatic(err error) bool {
	var (
		le LexError
		pe ParseError
		te TypeError
	)
	return As(err, &le) || As(err, &pe) || As(err, &te)
}

func IsInternal(err error) bool {
	var ie InternalError
	return As(err, &ie)
}

const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitStatic   = 2
	ExitRuntime  = 3
	ExitInternal = 4
)

// ExitCode maps an error returned by the pipeline to a process exit code.
func ExitCode(err error) int {
	var re RuntimeError
	switch {
	case err == nil:
		return ExitOK
	case IsStatic(err):
		return ExitStatic
	case As(err, &re):
		return ExitRuntime
	case IsInternal(err):
		return ExitInternal
	}
	return ExitFailure
}
