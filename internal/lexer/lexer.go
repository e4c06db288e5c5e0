// Package lexer turns Hades source bytes into a token stream.
package lexer

import (
	"fmt"
	"strconv"

	"github.com/hades-lang/hades/internal/span"
	"github.com/hades-lang/hades/internal/token"
)

// Error is a LexError: invalid number, unterminated string, or unexpected
// character, each rendered through the shared diagnostic shape. An unknown
// escape inside a string is not an error; the escaped byte is kept as is.
type Error struct {
	span.Diagnostic
}

func (e *Error) Error() string { return e.Diagnostic.Error() }

func newError(msg string, sp span.Span, help string) *Error {
	return &Error{span.NewDiagnostic(msg, sp).WithHelp(help)}
}

// Lexer tokenizes one file's worth of source bytes.
type Lexer struct {
	file string
	src  []byte
	pos  int
}

// New returns a Lexer over src, attributing every span to file.
func New(file string, src []byte) *Lexer {
	return &Lexer{file: file, src: src}
}

// Tokenize runs the lexer to completion, returning every token (including a
// trailing EOF) or the first LexError encountered.
func Tokenize(file string, src []byte) ([]token.Token, error) {
	l := New(file, src)
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	return c
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool  { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isAlnum(c byte) bool  { return isAlpha(c) || isDigit(c) }
func isSpace(c byte) bool  { return c == ' ' || c == '\t' || c == '\r' }

func (l *Lexer) mk(kind token.Kind, start int) token.Token {
	return token.Token{Kind: kind, Span: span.New(l.file, start, l.pos)}
}

// Next returns the next token, or an EOF token once the input is exhausted.
func (l *Lexer) Next() (token.Token, error) {
	for l.pos < len(l.src) && isSpace(l.peek()) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token.Token{Kind: token.EOF, Span: span.New(l.file, l.pos, l.pos)}, nil
	}

	start := l.pos
	c := l.peek()

	switch {
	case c == '\n':
		l.advance()
		return l.mk(token.Newline, start), nil
	case isDigit(c):
		return l.lexNumber(start)
	case isAlpha(c):
		return l.lexIdent(start)
	case c == '"':
		return l.lexString(start)
	default:
		return l.lexOperator(start)
	}
}

func (l *Lexer) lexNumber(start int) (token.Token, error) {
	sawDot := false
	for l.pos < len(l.src) {
		c := l.peek()
		if isDigit(c) {
			l.advance()
			continue
		}
		if c == '.' && !sawDot && isDigit(l.peekAt(1)) {
			sawDot = true
			l.advance()
			continue
		}
		break
	}
	text := string(l.src[start:l.pos])
	sp := span.New(l.file, start, l.pos)
	if sawDot {
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return token.Token{}, newError(fmt.Sprintf("invalid number literal %q", text), sp,
				"floating-point literals must look like 3.14")
		}
		return token.Token{Kind: token.Float, Span: sp, Text: text}, nil
	}
	if _, err := strconv.ParseInt(text, 10, 64); err != nil {
		return token.Token{}, newError(fmt.Sprintf("invalid number literal %q", text), sp,
			"integer literals must fit in a signed 64-bit value")
	}
	return token.Token{Kind: token.Number, Span: sp, Text: text}, nil
}

func (l *Lexer) lexIdent(start int) (token.Token, error) {
	for l.pos < len(l.src) && isAlnum(l.peek()) {
		l.advance()
	}
	text := string(l.src[start:l.pos])
	sp := span.New(l.file, start, l.pos)
	if kw, ok := token.Keywords[text]; ok {
		return token.Token{Kind: kw, Span: sp, Text: text}, nil
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: text}, nil
}

func (l *Lexer) lexString(start int) (token.Token, error) {
	l.advance() // opening quote
	var decoded []byte
	for {
		if l.pos >= len(l.src) {
			sp := span.New(l.file, start, l.pos)
			return token.Token{}, newError("unterminated string literal", sp,
				"add a closing \" before the end of the file")
		}
		c := l.advance()
		if c == '"' {
			sp := span.New(l.file, start, l.pos)
			return token.Token{Kind: token.String, Span: sp, Text: string(l.src[start:l.pos]), Value: string(decoded)}, nil
		}
		if c == '\\' {
			if l.pos >= len(l.src) {
				sp := span.New(l.file, start, l.pos)
				return token.Token{}, newError("unterminated string literal", sp,
					"add a closing \" before the end of the file")
			}
			esc := l.advance()
			switch esc {
			case 'n':
				decoded = append(decoded, '\n')
			case 't':
				decoded = append(decoded, '\t')
			case '"':
				decoded = append(decoded, '"')
			case '\\':
				decoded = append(decoded, '\\')
			default:
				decoded = append(decoded, esc)
			}
			continue
		}
		decoded = append(decoded, c)
	}
}

// lexOperator maps a lead byte plus an optional second byte to a token kind.
func (l *Lexer) lexOperator(start int) (token.Token, error) {
	c := l.advance()
	two := func(next byte, withNext, without token.Kind) token.Token {
		if l.peek() == next {
			l.advance()
			return l.mk(withNext, start)
		}
		return l.mk(without, start)
	}

	switch c {
	case '(':
		return l.mk(token.LParen, start), nil
	case ')':
		return l.mk(token.RParen, start), nil
	case '{':
		return l.mk(token.LBrace, start), nil
	case '}':
		return l.mk(token.RBrace, start), nil
	case '[':
		return l.mk(token.LBracket, start), nil
	case ']':
		return l.mk(token.RBracket, start), nil
	case ',':
		return l.mk(token.Comma, start), nil
	case ':':
		return l.mk(token.Colon, start), nil
	case ';':
		return l.mk(token.Semicolon, start), nil
	case '+':
		return two('=', token.PlusAssign, token.Plus), nil
	case '-':
		return two('=', token.MinusAssign, token.Minus), nil
	case '*':
		return l.mk(token.Star, start), nil
	case '/':
		return l.mk(token.Slash, start), nil
	case '%':
		return l.mk(token.Percent, start), nil
	case '=':
		return two('=', token.Eq, token.Assign), nil
	case '!':
		return two('=', token.Ne, token.Bang), nil
	case '<':
		if l.peek() == '<' {
			l.advance()
			return l.mk(token.Shl, start), nil
		}
		return two('=', token.Le, token.Lt), nil
	case '>':
		if l.peek() == '>' {
			l.advance()
			return l.mk(token.Shr, start), nil
		}
		return two('=', token.Ge, token.Gt), nil
	case '&':
		return two('&', token.AndAnd, token.And), nil
	case '|':
		return two('|', token.OrOr, token.Or), nil
	case '^':
		return l.mk(token.Caret, start), nil
	case '~':
		return l.mk(token.Tilde, start), nil
	case '.':
		return two('.', token.DotDot, token.Dot), nil
	default:
		sp := span.New(l.file, start, l.pos)
		return token.Token{}, newError(fmt.Sprintf("unexpected character %q", c), sp, "")
	}
}
