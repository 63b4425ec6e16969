// Package lexer turns PSF source text into a flat sequence of tokens.
//
// It is a single left to right pass over the runes of the input with one
// pending buffer (number, symbol or string being accumulated) and no
// backtracking.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"fortio.org/log"
	"psf.sh/psf/token"
)

type mode uint8

const (
	modeNone mode = iota
	modeNumber
	modeSymbol
	modeString
)

// Error is a lexical error, fatal for the whole input.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lexical error at %s: %s", e.Pos, e.Msg)
}

type Lexer struct {
	input       string
	tokens      []token.Token
	buf         strings.Builder
	mode        mode
	start       token.Pos // where the pending buffer started
	pos         token.Pos // current character
	lastNewline bool
}

func New(input string) *Lexer {
	return &Lexer{input: input, pos: token.Pos{Line: 1}}
}

// Tokenize is the one shot version of New(input).Tokens().
func Tokenize(input string) ([]token.Token, error) {
	return New(input).Tokens()
}

// Tokens runs the lexer over the whole input. On error no partial result is returned.
func (l *Lexer) Tokens() ([]token.Token, error) {
	for _, ch := range l.input {
		l.advance(ch)
		if err := l.step(ch); err != nil {
			return nil, err
		}
	}
	if err := l.finish(); err != nil {
		return nil, err
	}
	log.LogVf("Tokenize: %d tokens", len(l.tokens))
	return l.tokens, nil
}

func (l *Lexer) advance(ch rune) {
	if l.lastNewline {
		l.pos.Line++
		l.pos.Col = 0
	}
	l.pos.Col++
	l.lastNewline = (ch == '\n')
}

func (l *Lexer) step(ch rune) error {
	switch l.mode {
	case modeString:
		if ch == '"' {
			l.flush(token.STRING)
			return nil
		}
		l.buf.WriteRune(ch)
		return nil
	case modeNumber:
		if isDigit(ch) {
			l.buf.WriteRune(ch)
			return nil
		}
		if isLetter(ch) {
			return l.errorf(l.pos, "no letter may directly follow a number: %q after %s", ch, l.buf.String())
		}
		if err := l.flushNumber(); err != nil {
			return err
		}
	case modeSymbol:
		if isLetter(ch) || isDigit(ch) {
			l.buf.WriteRune(ch)
			return nil
		}
		l.flush(token.IDENT)
	case modeNone:
	}
	return l.dispatch(ch)
}

// dispatch handles a character outside of any accumulation mode.
func (l *Lexer) dispatch(ch rune) error {
	if t, ok := token.Operator(ch); ok {
		l.tokens = append(l.tokens, token.Token{Type: t, Literal: string(ch), Pos: l.pos})
		return nil
	}
	switch {
	case unicode.IsSpace(ch):
	case ch == '"':
		l.enter(modeString)
	case isDigit(ch):
		l.enter(modeNumber)
		l.buf.WriteRune(ch)
	case isLetter(ch):
		l.enter(modeSymbol)
		l.buf.WriteRune(ch)
	default:
		return l.errorf(l.pos, "unexpected character %q", ch)
	}
	return nil
}

func (l *Lexer) finish() error {
	switch l.mode {
	case modeNumber:
		return l.flushNumber()
	case modeSymbol:
		l.flush(token.IDENT)
	case modeString:
		return l.errorf(l.start, "unterminated string %q", l.buf.String())
	case modeNone:
	}
	return nil
}

func (l *Lexer) enter(m mode) {
	l.mode = m
	l.start = l.pos
	l.buf.Reset()
}

func (l *Lexer) flush(t token.Type) {
	l.tokens = append(l.tokens, token.Token{Type: t, Literal: l.buf.String(), Pos: l.start})
	l.mode = modeNone
	l.buf.Reset()
}

func (l *Lexer) flushNumber() error {
	lit := l.buf.String()
	if _, err := strconv.ParseInt(lit, 10, 32); err != nil {
		return l.errorf(l.start, "invalid integer literal %s (32 bits signed)", lit)
	}
	l.flush(token.INT)
	return nil
}

func (l *Lexer) errorf(pos token.Pos, format string, args ...any) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
