// Package ast is the parsed form of PSF source: function bodies made of items.
package ast

import (
	"strconv"
	"strings"

	"psf.sh/psf/token"
)

// Item is one element of a function body. The set of implementations is closed.
type Item interface {
	String() string // canonical source form of the item.
	item()
}

// Body is the ordered items of a named function or of a quotation.
// Bodies are never mutated once built, so they can be shared freely.
type Body []Item

func (b Body) String() string {
	buf := strings.Builder{}
	for i, it := range b {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(it.String())
	}
	return buf.String()
}

type IntegerLiteral struct {
	Val int32
}

func (i IntegerLiteral) String() string {
	return strconv.FormatInt(int64(i.Val), 10)
}

type StringLiteral struct {
	Val string
}

// No escaping: strings can't contain a double quote.
func (s StringLiteral) String() string {
	return `"` + s.Val + `"`
}

type BooleanLiteral struct {
	Val bool
}

func (b BooleanLiteral) String() string {
	return strconv.FormatBool(b.Val)
}

// Operator is one of + > <.
type Operator struct {
	Type token.Type
}

func (o Operator) String() string {
	return token.Literal(o.Type)
}

// Invoke (!) calls the function on top of the stack.
type Invoke struct{}

func (Invoke) String() string {
	return token.Literal(token.INVOKE)
}

// NamedCall is resolved against the function table at run time.
type NamedCall struct {
	Name string
}

func (n NamedCall) String() string {
	return n.Name
}

// FunctionLiteral is a quotation: ?( body ).
type FunctionLiteral struct {
	Body Body
}

func (f FunctionLiteral) String() string {
	return "?(" + f.Body.String() + ")"
}

// Builtin is one of the reserved operations (print, input, pop, dup, swap,
// swapn, ssize, if, debugs).
type Builtin struct {
	Type token.Type
}

func (b Builtin) String() string {
	return token.Literal(b.Type)
}

func (IntegerLiteral) item()  {}
func (StringLiteral) item()   {}
func (BooleanLiteral) item()  {}
func (Operator) item()        {}
func (Invoke) item()          {}
func (NamedCall) item()       {}
func (FunctionLiteral) item() {}
func (Builtin) item()         {}

// Definition is a top level `name = ( body )`.
type Definition struct {
	Name string
	Body Body
}

func (d Definition) String() string {
	if len(d.Body) == 0 {
		return d.Name + " = ()"
	}
	return d.Name + " = ( " + d.Body.String() + " )"
}

// Program is the definitions in source order, later ones with the same name
// win when loaded.
type Program struct {
	Definitions []Definition
}

func (p *Program) String() string {
	buf := strings.Builder{}
	for _, d := range p.Definitions {
		buf.WriteString(d.String())
		buf.WriteByte('\n')
	}
	return buf.String()
}

// Names returns the defined names in source order (duplicates included).
func (p *Program) Names() []string {
	names := make([]string, 0, len(p.Definitions))
	for _, d := range p.Definitions {
		names = append(names, d.Name)
	}
	return names
}
