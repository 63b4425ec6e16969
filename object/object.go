package object

import (
	"strconv"
	"strings"

	"github.com/rivo/uniseg"
	"psf.sh/psf/ast"
)

type Type uint8

// Object is a runtime value living on the evaluation stack.
type Object interface {
	Type() Type
	Inspect() string // textual form, as print shows it.
}

const (
	UNKNOWN Type = iota
	BOOLEAN
	INTEGER
	STRING
	FUNC
	LAST
)

//go:generate stringer -type=Type
var _ = LAST.String() // force compile error if go generate is missing.

var (
	TRUE  = Boolean{Value: true}
	FALSE = Boolean{Value: false}
)

func NativeBoolToBooleanObject(input bool) Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// Equals compares by value, functions are equal when their bodies print the same.
func Equals(left, right Object) bool {
	if left.Type() != right.Type() {
		return false
	}
	switch left := left.(type) {
	case Integer:
		return left.Value == right.(Integer).Value
	case String:
		return left.Value == right.(String).Value
	case Boolean:
		return left.Value == right.(Boolean).Value
	case Function:
		return left.Body.String() == right.(Function).Body.String()
	default:
		return false
	}
}

type Integer struct {
	Value int32
}

func (i Integer) Inspect() string {
	return strconv.FormatInt(int64(i.Value), 10)
}

func (i Integer) Type() Type {
	return INTEGER
}

type Boolean struct {
	Value bool
}

func (b Boolean) Type() Type {
	return BOOLEAN
}

func (b Boolean) Inspect() string {
	return strconv.FormatBool(b.Value)
}

type String struct {
	Value string
}

func (s String) Type() Type {
	return STRING
}

func (s String) Inspect() string {
	return s.Value
}

// Function is a quotation pushed on the stack. It captures only its body.
type Function struct {
	Body ast.Body
}

func (f Function) Type() Type {
	return FUNC
}

func (f Function) Inspect() string {
	return ast.FunctionLiteral{Body: f.Body}.String()
}

// MaxDebugWidth is the display width past which Short truncates values.
const MaxDebugWidth = 40

// Debug is the form used by debugs: Inspect with strings quoted.
func Debug(o Object) string {
	s := o.Inspect()
	if o.Type() == STRING {
		s = `"` + s + `"`
	}
	return s
}

// Short is Debug truncated on grapheme boundaries, for error messages.
func Short(o Object) string {
	return Truncate(Debug(o), MaxDebugWidth)
}

// Truncate shortens s to at most width display columns, ending with an ellipsis
// when something was cut.
func Truncate(s string, width int) string {
	if uniseg.StringWidth(s) <= width {
		return s
	}
	buf := strings.Builder{}
	w := 0
	state := -1
	rest := s
	var cluster string
	var cw int
	for len(rest) > 0 {
		cluster, rest, cw, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if w+cw > width-1 {
			break
		}
		buf.WriteString(cluster)
		w += cw
	}
	buf.WriteString("…")
	return buf.String()
}
