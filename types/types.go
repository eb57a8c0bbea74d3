package types

import (
	"fmt"
)

type Position struct {
	Line     int
	Column   int
	Filename string
}

type Span struct {
	From Position
	To   Position
}

type TokenKind int

const (
	EOF TokenKind = iota

	COLON
	COMMA
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	EQUALS
	ARROW

	PLUS
	MINUS
	STAR
	SLASH
	PERCENT

	EQEQ
	NOTEQ
	LT
	LTEQ
	GT
	GTEQ

	EOS

	INT
	IDENT

	DEF
	RETURN
	FOR
	IN
	IF
	ELSE
	TRUE
	FALSE
)

var kindNames = map[TokenKind]string{
	EOF:     "EOF",
	COLON:   "COLON",
	COMMA:   "COMMA",
	LPAREN:  "LPAREN",
	RPAREN:  "RPAREN",
	LBRACE:  "LBRACE",
	RBRACE:  "RBRACE",
	EQUALS:  "EQUALS",
	ARROW:   "ARROW",
	PLUS:    "PLUS",
	MINUS:   "MINUS",
	STAR:    "STAR",
	SLASH:   "SLASH",
	PERCENT: "PERCENT",
	EQEQ:    "EQEQ",
	NOTEQ:   "NOTEQ",
	LT:      "LT",
	LTEQ:    "LTEQ",
	GT:      "GT",
	GTEQ:    "GTEQ",
	EOS:     "EOS",
	INT:     "INT",
	IDENT:   "IDENT",
	DEF:     "DEF",
	RETURN:  "RETURN",
	FOR:     "FOR",
	IN:      "IN",
	IF:      "IF",
	ELSE:    "ELSE",
	TRUE:    "TRUE",
	FALSE:   "FALSE",
}

func (t TokenKind) String() string {
	if name, ok := kindNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(t))
}

// Symbol is the source spelling of operator and punctuation kinds.
func (t TokenKind) Symbol() string {
	switch t {
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case STAR:
		return "*"
	case SLASH:
		return "/"
	case PERCENT:
		return "%"
	case EQEQ:
		return "=="
	case NOTEQ:
		return "!="
	case LT:
		return "<"
	case LTEQ:
		return "<="
	case GT:
		return ">"
	case GTEQ:
		return ">="
	case COLON:
		return ":"
	case COMMA:
		return ","
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case LBRACE:
		return "{"
	case RBRACE:
		return "}"
	case EQUALS:
		return "="
	case ARROW:
		return "->"
	}
	return t.String()
}

// Keywords maps reserved words to their token kinds.
var Keywords = map[string]TokenKind{
	"def":    DEF,
	"return": RETURN,
	"for":    FOR,
	"in":     IN,
	"if":     IF,
	"else":   ELSE,
	"true":   TRUE,
	"false":  FALSE,
}

func (p Position) String() string {
	if p.Filename == "" {
		p.Filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.From, s.To.Line, s.To.Column)
}

func SingleCharSpan(p Position) Span {
	return Span{p, p}
}

// Join returns the span covering both a and b.
func Join(a, b Span) Span {
	return Span{From: a.From, To: b.To}
}

type Token struct {
	Kind     TokenKind
	Text     string
	Location Span
}

// Comment is a '#' comment. The lexer keeps comments out of the token
// stream and hands them over separately for the formatter.
type Comment struct {
	// Text includes the leading '#'.
	Text     string
	Location Span
	// Trailing is set when the comment follows a token on its line.
	Trailing bool
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d %s %q", t.Location.From.Line, t.Location.From.Column, t.Kind, t.Text)
}
