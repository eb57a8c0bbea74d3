package lexer

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/pontaoski/pyco/errors"
	"github.com/pontaoski/pyco/types"
	"github.com/ztrue/tracerr"
)

// Lexer turns pyco source into tokens one at a time. Lex panics with an
// errors.LexError on bad input; Next is the error-returning form.
type Lexer struct {
	source   string
	filename string

	pos    types.Position
	reader *bufio.Reader
	peeked *types.Token
	last   types.TokenKind
	done   bool

	comments  []types.Comment
	// tokenLine is the line of the last token returned, for telling
	// trailing comments apart.
	tokenLine int
}

func NewLexer(source, filename string) *Lexer {
	l := &Lexer{source: source, filename: filename}
	l.Reset()
	return l
}

// Reset rewinds the lexer to the start of its source.
func (l *Lexer) Reset() {
	l.pos = types.Position{Line: 1, Column: 0, Filename: l.filename}
	l.reader = bufio.NewReader(strings.NewReader(l.source))
	l.peeked = nil
	l.last = types.EOS
	l.done = false
	l.comments = nil
	l.tokenLine = 0
}

// Comments are the comments lexed so far, in source order.
func (l *Lexer) Comments() []types.Comment {
	return l.comments
}

// Position is where the most recently consumed rune sits.
func (l *Lexer) Position() types.Position {
	return l.pos
}

func (l *Lexer) newline() {
	l.pos.Line++
	l.pos.Column = 0
}

func (l *Lexer) read() (rune, bool) {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		if err == io.EOF {
			return 0, false
		}
		panic(err)
	}
	l.pos.Column++
	return r, true
}

func (l *Lexer) backup() {
	if err := l.reader.UnreadRune(); err != nil {
		panic(err)
	}

	l.pos.Column--
}

func (l *Lexer) eof() types.Token {
	at := l.pos
	if at.Column == 0 {
		at.Column = 1
	}
	return types.Token{Kind: types.EOF, Location: types.SingleCharSpan(at)}
}

func (l *Lexer) kinded(t types.TokenKind, text string) types.Token {
	return types.Token{
		Kind:     t,
		Text:     text,
		Location: types.SingleCharSpan(l.pos),
	}
}

func firstChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func otherChar(r rune) bool {
	return firstChar(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// endsStatement lists the kinds after which a newline terminates a statement.
func endsStatement(k types.TokenKind) bool {
	switch k {
	case types.IDENT, types.INT, types.RPAREN, types.RBRACE, types.RETURN, types.TRUE, types.FALSE:
		return true
	}
	return false
}

func (l *Lexer) lexWhile(first rune, ok func(rune) bool) (types.Span, string) {
	var lit strings.Builder
	lit.WriteRune(first)
	from := l.pos
	to := l.pos

	for {
		r, more := l.read()
		if !more {
			return types.Span{From: from, To: to}, lit.String()
		}
		if !ok(r) {
			l.backup()
			return types.Span{From: from, To: to}, lit.String()
		}
		lit.WriteRune(r)
		to = l.pos
	}
}

func (l *Lexer) lexComment() {
	c := types.Comment{Trailing: l.tokenLine == l.pos.Line}
	span, text := l.lexWhile('#', func(r rune) bool { return r != '\n' })
	c.Text = strings.TrimRightFunc(text, unicode.IsSpace)
	c.Location = span
	l.comments = append(l.comments, c)
}

var punctuation = map[rune]types.TokenKind{
	':': types.COLON,
	',': types.COMMA,
	'(': types.LPAREN,
	')': types.RPAREN,
	'{': types.LBRACE,
	'}': types.RBRACE,
	'+': types.PLUS,
	'*': types.STAR,
	'/': types.SLASH,
	'%': types.PERCENT,
	';': types.EOS,
}

// pairs are the operators that change meaning when followed by '='.
var pairs = map[rune]struct{ alone, withEquals types.TokenKind }{
	'=': {types.EQUALS, types.EQEQ},
	'<': {types.LT, types.LTEQ},
	'>': {types.GT, types.GTEQ},
	'!': {types.EOF, types.NOTEQ},
}

func (l *Lexer) Peek() types.Token {
	if l.peeked != nil {
		return *l.peeked
	}

	tok := l.Lex()
	l.peeked = &tok

	return tok
}

func (l *Lexer) PeekIs(k ...types.TokenKind) bool {
	token := l.Peek()
	for _, kind := range k {
		if token.Kind == kind {
			return true
		}
	}

	return false
}

func (l *Lexer) LexExpecting(k ...types.TokenKind) types.Token {
	token := l.Lex()
	for _, kind := range k {
		if token.Kind == kind {
			return token
		}
	}

	panic(errors.ParseError{
		Kind:     errors.UnexpectedToken,
		Expected: k,
		Got:      token.Kind,
		Text:     token.Text,
		Location: token.Location,
	})
}

// Lex returns the next token. After the end of input it keeps returning EOF.
func (l *Lexer) Lex() (tok types.Token) {
	if l.peeked != nil {
		defer func() { l.peeked = nil }()
		return *l.peeked
	}
	if l.done {
		return l.eof()
	}

	defer func() {
		l.last = tok.Kind
		l.tokenLine = tok.Location.From.Line
		if tok.Kind == types.EOF {
			l.done = true
		}
	}()

	for {
		r, more := l.read()
		if !more {
			return l.eof()
		}

		switch {
		case r == '\n':
			tok = l.kinded(types.EOS, "\n")
			l.newline()
			if endsStatement(l.last) {
				return tok
			}
			continue
		case r == '#':
			l.lexComment()
			continue
		case r == '-':
			from := l.pos
			if next, ok := l.read(); ok {
				if next == '>' {
					return types.Token{Kind: types.ARROW, Text: "->", Location: types.Span{From: from, To: l.pos}}
				}
				l.backup()
			}
			return types.Token{Kind: types.MINUS, Text: "-", Location: types.SingleCharSpan(from)}
		case unicode.IsSpace(r):
			continue
		case isDigit(r):
			span, lit := l.lexWhile(r, isDigit)
			return types.Token{Kind: types.INT, Text: lit, Location: span}
		case firstChar(r):
			span, lit := l.lexWhile(r, otherChar)
			if kind, ok := types.Keywords[lit]; ok {
				return types.Token{Kind: kind, Text: lit, Location: span}
			}
			return types.Token{Kind: types.IDENT, Text: lit, Location: span}
		}

		if pair, ok := pairs[r]; ok {
			from := l.pos
			if next, ok := l.read(); ok {
				if next == '=' {
					return types.Token{Kind: pair.withEquals, Text: string(r) + "=", Location: types.Span{From: from, To: l.pos}}
				}
				l.backup()
			}
			if pair.alone != types.EOF {
				return types.Token{Kind: pair.alone, Text: string(r), Location: types.SingleCharSpan(from)}
			}
		}

		if kind, ok := punctuation[r]; ok {
			return l.kinded(kind, string(r))
		}

		panic(errors.LexError{
			Kind:     errors.UnexpectedCharacter,
			Char:     r,
			Location: types.SingleCharSpan(l.pos),
		})
	}
}

// Next is Lex with lexical errors returned instead of raised.
func (l *Lexer) Next() (tok types.Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			lerr, ok := r.(errors.LexError)
			if !ok {
				panic(r)
			}
			err = tracerr.Wrap(lerr)
		}
	}()
	return l.Lex(), nil
}

// Tokenize lexes the whole source, including the trailing EOF token.
func Tokenize(source, filename string) ([]types.Token, error) {
	l := NewLexer(source, filename)
	var ret []types.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return ret, err
		}
		ret = append(ret, tok)
		if tok.Kind == types.EOF {
			return ret, nil
		}
	}
}
