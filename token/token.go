package token

import (
	"fmt"

	"fortio.org/log"
)

type Type uint8

// Pos is a 1-based line and column (in runes) in the source.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

type Token struct {
	Type    Type
	Literal string
	Pos     Pos
}

const (
	ILLEGAL Type = iota
	EOF

	// Identifiers + literals.
	IDENT  // main, foo2, ...
	INT    // 1343456
	STRING // "foo bar"

	// Single character operators.
	ASSIGN // =
	LPAREN // (
	RPAREN // )
	QUOTE  // ? marks the start of a quotation
	INVOKE // ! calls the function on top of the stack
	PLUS
	GT
	LT

	// Keywords, only recognized by the parser (the lexer emits IDENT).
	TRUE
	FALSE
	PRINT
	INPUT
	POP
	DUP
	SWAP
	SWAPN
	SSIZE
	IF
	DEBUGS
)

//go:generate stringer -type=Type
var _ = DEBUGS.String() // force compile error if go generate is missing.

var operators = map[rune]Type{
	'=': ASSIGN,
	'(': LPAREN,
	')': RPAREN,
	'?': QUOTE,
	'!': INVOKE,
	'+': PLUS,
	'>': GT,
	'<': LT,
}

var keywords = map[string]Type{
	"true":   TRUE,
	"false":  FALSE,
	"print":  PRINT,
	"input":  INPUT,
	"pop":    POP,
	"dup":    DUP,
	"swap":   SWAP,
	"swapn":  SWAPN,
	"ssize":  SSIZE,
	"if":     IF,
	"debugs": DEBUGS,
}

// Operator returns the token type for a single character operator.
func Operator(ch rune) (Type, bool) {
	t, ok := operators[ch]
	return t, ok
}

// LookupKeyword resolves a symbol to its keyword type, or IDENT for
// anything else (a named function call).
func LookupKeyword(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		log.Debugf("LookupKeyword(%s) found %s", ident, tok.String())
		return tok
	}
	return IDENT
}

func IsKeyword(t Type) bool {
	return t >= TRUE && t <= DEBUGS
}

func (t *Token) String() string {
	return t.DebugString()
}

func (t *Token) DebugString() string {
	return fmt.Sprintf("%s:%q", t.Type.String(), t.Literal)
}

var literals = map[Type]string{}

func init() {
	for ch, t := range operators {
		literals[t] = string(ch)
	}
	for k, t := range keywords {
		literals[t] = k
	}
}

// Literal returns the source spelling of an operator or keyword type.
func Literal(t Type) string {
	return literals[t]
}
