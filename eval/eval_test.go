package eval_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"psf.sh/psf/ast"
	"psf.sh/psf/eval"
	"psf.sh/psf/object"
)

func newState() (*eval.State, *strings.Builder) {
	s := eval.NewBlankState()
	out := &strings.Builder{}
	s.Out = out
	return s, out
}

func testEval(t *testing.T, code string) (*eval.State, string, error) {
	t.Helper()
	s, out := newState()
	err := s.RunSnippet(context.Background(), code)
	return s, out.String(), err
}

func ints(vals ...int32) []object.Object {
	res := make([]object.Object, 0, len(vals))
	for _, v := range vals {
		res = append(res, object.Integer{Value: v})
	}
	return res
}

func TestStackArithmetic(t *testing.T) {
	tests := []struct{ a, b int32 }{
		{0, 0}, {1, 2}, {40, 2}, {2147483646, 1}, {1000000, 2000000},
	}
	for _, tt := range tests {
		s, _, err := testEval(t, fmt.Sprintf("%d %d +", tt.a, tt.b))
		require.NoError(t, err)
		assert.Equal(t, ints(tt.a+tt.b), s.Stack())
	}
}

func TestAddOverflow(t *testing.T) {
	s, _, err := testEval(t, "2147483647 1 +")
	require.Error(t, err)
	assert.ErrorIs(t, err, eval.ErrOverflow)
	assert.Equal(t, "runtime error: 2147483647 + 1 overflows 32 bits", err.Error())
	assert.Equal(t, ints(2147483647, 1), s.Stack(), "no partial mutation")
}

func TestMaxInt32(t *testing.T) {
	s, _, err := testEval(t, "2147483647")
	require.NoError(t, err)
	assert.Equal(t, ints(2147483647), s.Stack())
	s, _, err = testEval(t, "2147483646 1 +")
	require.NoError(t, err)
	assert.Equal(t, ints(2147483647), s.Stack())
	s, _, err = testEval(t, "2147483000 647 +")
	require.NoError(t, err)
	assert.Equal(t, ints(2147483647), s.Stack())
	_, _, err = testEval(t, "2147483648")
	require.Error(t, err)
}

func TestComparisonKeepsOperands(t *testing.T) {
	tests := []struct{ a, b int32 }{{1, 2}, {2, 1}, {5, 5}, {0, 100}}
	for _, tt := range tests {
		s, _, err := testEval(t, fmt.Sprintf("%d %d >", tt.a, tt.b))
		require.NoError(t, err)
		expected := append(ints(tt.a, tt.b), object.NativeBoolToBooleanObject(tt.a > tt.b))
		assert.Equal(t, expected, s.Stack(), "%d %d >", tt.a, tt.b)

		s, _, err = testEval(t, fmt.Sprintf("%d %d <", tt.a, tt.b))
		require.NoError(t, err)
		expected = append(ints(tt.a, tt.b), object.NativeBoolToBooleanObject(tt.a < tt.b))
		assert.Equal(t, expected, s.Stack(), "%d %d <", tt.a, tt.b)
	}
}

func TestDupSwapLaws(t *testing.T) {
	for _, prefix := range []string{`1`, `"x"`, `true`, `?(1 +)`, `7 8 9`} {
		s1, _, err := testEval(t, prefix)
		require.NoError(t, err)
		s2, _, err := testEval(t, prefix+" dup pop")
		require.NoError(t, err)
		assert.Equal(t, s1.Stack(), s2.Stack(), "dup pop on %s", prefix)
	}
	for _, prefix := range []string{`1 2`, `"a" true`, `?() 3`, `1 2 3`} {
		s1, _, err := testEval(t, prefix)
		require.NoError(t, err)
		s2, _, err := testEval(t, prefix+" swap swap")
		require.NoError(t, err)
		assert.Equal(t, s1.Stack(), s2.Stack(), "swap swap on %s", prefix)
	}
	s, _, err := testEval(t, `1 2 swap`)
	require.NoError(t, err)
	assert.Equal(t, ints(2, 1), s.Stack())
}

func TestIfSelection(t *testing.T) {
	s, out, err := testEval(t, `true ?("then" print) ?("else" print) if`)
	require.NoError(t, err)
	assert.Equal(t, "then\n", out)
	assert.Equal(t, []object.Object{object.String{Value: "then"}}, s.Stack())

	_, out, err = testEval(t, `false ?("then" print) ?("else" print) if`)
	require.NoError(t, err)
	assert.Equal(t, "else\n", out)

	// if followed by more items: the branch runs before them.
	_, out, err = testEval(t, `1 2 > ?("gt" print pop) ?("le" print pop) if pop pop "after" print`)
	require.NoError(t, err)
	assert.Equal(t, "le\nafter\n", out)
}

func TestUnderflow(t *testing.T) {
	tests := []struct {
		code  string
		stack int // left untouched by the failing operation.
	}{
		{"+", 0}, {"1 +", 1}, {"1 >", 1}, {"<", 0}, {"pop", 0}, {"dup", 0},
		{"swap", 0}, {"1 swap", 1}, {"print", 0}, {"!", 0}, {"swapn", 0},
		{"if", 0}, {"?() ?() if", 2}, {"input", 0},
	}
	for _, tt := range tests {
		s, _, err := testEval(t, tt.code)
		require.Error(t, err, tt.code)
		assert.ErrorIs(t, err, eval.ErrUnderflow, tt.code)
		assert.Len(t, s.Stack(), tt.stack, tt.code)
	}
	_, _, err := testEval(t, "5 +")
	assert.Equal(t, "runtime error: + needs 2 value(s) on the stack, found 1", err.Error())
}

func TestTypeErrors(t *testing.T) {
	tests := []struct {
		code     string
		expected string
		stack    int
	}{
		{`"a" 1 +`, `runtime error: + expects INTEGER at stack position 1, got STRING "a"`, 2},
		{`1 true +`, `runtime error: + expects INTEGER at stack position 0, got BOOLEAN true`, 2},
		{`1 !`, `runtime error: ! expects FUNC at stack position 0, got INTEGER 1`, 1},
		{`1 ?() ?() if`, `runtime error: if expects BOOLEAN at stack position 2, got INTEGER 1`, 3},
		{`true ?() 2 if`, `runtime error: if expects FUNC at stack position 0, got INTEGER 2`, 3},
		{`true 1 ?() if`, `runtime error: if expects FUNC at stack position 1, got INTEGER 1`, 3},
		{`1 input`, `runtime error: input expects STRING at stack position 0, got INTEGER 1`, 1},
		{`1 "x" swapn`, `runtime error: swapn expects INTEGER at stack position 0, got STRING "x"`, 2},
	}
	for _, tt := range tests {
		s, _, err := testEval(t, tt.code)
		require.Error(t, err, tt.code)
		assert.ErrorIs(t, err, eval.ErrTypeError)
		assert.Equal(t, tt.expected, err.Error())
		assert.Len(t, s.Stack(), tt.stack, tt.code)
	}
}

func TestSwapN(t *testing.T) {
	s, _, err := testEval(t, `1 2 3 4 2 swapn`)
	require.NoError(t, err)
	assert.Equal(t, ints(1, 4, 3, 2), s.Stack())

	s, _, err = testEval(t, `1 2 1 swapn`)
	require.NoError(t, err)
	assert.Equal(t, ints(2, 1), s.Stack())

	// 0 is a no-op and evaluation carries on after it.
	s, out, err := testEval(t, `1 2 0 swapn 3 print`)
	require.NoError(t, err)
	assert.Equal(t, ints(1, 2, 3), s.Stack())
	assert.Equal(t, "3\n", out)

	s, _, err = testEval(t, `1 2 2 swapn`)
	require.Error(t, err)
	assert.ErrorIs(t, err, eval.ErrBadIndex)
	assert.Equal(t, "runtime error: swapn index 2 out of range for 2 value(s)", err.Error())
	assert.Equal(t, ints(1, 2, 2), s.Stack())

	_, _, err = testEval(t, `0 swapn`)
	assert.ErrorIs(t, err, eval.ErrBadIndex)
}

func TestSSize(t *testing.T) {
	s, _, err := testEval(t, `ssize`)
	require.NoError(t, err)
	assert.Equal(t, ints(0), s.Stack())
	s, _, err = testEval(t, `"a" 5 ssize ssize`)
	require.NoError(t, err)
	assert.Equal(t, []object.Object{object.String{Value: "a"}, object.Integer{Value: 5}, object.Integer{Value: 2}, object.Integer{Value: 3}}, s.Stack())
}

func TestPrint(t *testing.T) {
	s, out, err := testEval(t, `42 print "hello world" print true print ?(1) print`)
	require.NoError(t, err, "printing a function isn't fatal")
	assert.Equal(t, "42\nhello world\ntrue\n", out)
	assert.Len(t, s.Stack(), 4, "print doesn't pop")
}

func TestDebugs(t *testing.T) {
	s, out, err := testEval(t, `debugs 1 "ab" true ?(1 +) debugs`)
	require.NoError(t, err)
	assert.Equal(t, "stack[0]:\nstack[4]: 1 \"ab\" true ?(1 +)\n", out)
	assert.Len(t, s.Stack(), 4)
}

func TestDebugsFullValues(t *testing.T) {
	long := strings.Repeat("0123456789", 6)
	_, out, err := testEval(t, `"`+long+`" debugs`)
	require.NoError(t, err)
	assert.Equal(t, "stack[1]: \""+long+"\"\n", out)
	// Error messages keep values short.
	_, _, err = testEval(t, `"`+long+`" 1 +`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `got STRING "01234567890123456789012345678901234567…`)
}

func TestInput(t *testing.T) {
	s, out := newState()
	s.SetInput(strings.NewReader("hello\nworld"))
	err := s.RunSnippet(context.Background(), `"name? " input print "again: " input "eof: " input`)
	require.NoError(t, err)
	assert.Equal(t, "name? hello\n\nagain: eof: ", out.String())
	assert.Equal(t, []object.Object{
		object.String{Value: "hello\n"},
		object.String{Value: "world"},
		object.String{Value: ""},
	}, s.Stack())
}

// Terminal in raw mode: Enter sends \r, what is typed is echoed.
func TestInputRawTerminal(t *testing.T) {
	s, out := newState()
	echo := &strings.Builder{}
	s.In = strings.NewReader("ab\rcd\r1 2 +\n")
	s.Echo = echo
	err := s.RunSnippet(context.Background(), `"> " input "> " input`)
	require.NoError(t, err)
	assert.Equal(t, "> > ", out.String())
	assert.Equal(t, "ab\rcd\r", echo.String())
	assert.Equal(t, []object.Object{
		object.String{Value: "ab\n"},
		object.String{Value: "cd\n"},
	}, s.Stack())
	// The rest is left for the next reader.
	rest, err := io.ReadAll(s.In)
	require.NoError(t, err)
	assert.Equal(t, "1 2 +\n", string(rest))
}

func TestFunctionValues(t *testing.T) {
	s, _, err := testEval(t, `1 ?(2 +) ! ?(?(3)) ! !`)
	require.NoError(t, err)
	assert.Equal(t, ints(3, 3), s.Stack())

	s, _, err = testEval(t, `?(1 +) dup`)
	require.NoError(t, err)
	st := s.Stack()
	require.Len(t, st, 2)
	assert.True(t, object.Equals(st[0], st[1]))
	assert.Equal(t, "?(1 +)", st[0].Inspect())
}

func TestEndToEnd(t *testing.T) {
	tests := []struct {
		program  string
		expected string
	}{
		{`main = ( 1 2 + print )`, "3\n"},
		{`main = ( true ?(1) ?(2) if print )`, "1\n"},
		{`main = ( false ?(1) ?(2) if print )`, "2\n"},
		{"two = ( 2 )\nmain = ( two two + print )", "4\n"},
		{"main = ( later print )\nlater = ( \"forward\" )", "forward\n"},
	}
	for _, tt := range tests {
		s, out := newState()
		require.NoError(t, s.LoadProgram(tt.program))
		require.NoError(t, s.RunFunction(context.Background(), "main"))
		assert.Equal(t, tt.expected, out.String(), tt.program)
	}
}

// loop adds i to acc while i < 4: stack is [acc i].
const sumProgram = `
loop = ( 4 < ?( pop dup 2 swapn + swap 1 + loop ) ?( pop pop ) if )
main = ( 0 1 loop )
`

func TestNamedRecursion(t *testing.T) {
	s, _ := newState()
	require.NoError(t, s.LoadProgram(sumProgram))
	require.NoError(t, s.RunFunction(context.Background(), "main"))
	assert.Equal(t, ints(1+2+3), s.Stack())
}

func TestMutualRecursion(t *testing.T) {
	s, out := newState()
	prog := `
ping = ( "ping" print pop 1 + dup 5 > ?( pop pop ) ?( pop pop pong ) if )
pong = ( "pong" print pop ping )
main = ( 0 ping )
`
	require.NoError(t, s.LoadProgram(prog))
	require.NoError(t, s.RunFunction(context.Background(), "main"))
	assert.Equal(t, strings.Repeat("ping\npong\n", 5)+"ping\n", out.String())
	assert.Equal(t, ints(6), s.Stack())
}

func TestUnknownFunction(t *testing.T) {
	s, _, err := testEval(t, `1 nope 2`)
	require.Error(t, err)
	assert.ErrorIs(t, err, eval.ErrUnknownFunction)
	assert.Equal(t, `runtime error: function "nope" doesn't exist`, err.Error())
	assert.Equal(t, ints(1), s.Stack())

	err = s.RunFunction(context.Background(), "main")
	assert.ErrorIs(t, err, eval.ErrUnknownFunction)
}

func TestStackCeiling(t *testing.T) {
	s, _ := newState()
	require.NoError(t, s.LoadProgram(`grow = ( 1 grow )`))
	err := s.RunFunction(context.Background(), "grow")
	require.Error(t, err)
	assert.ErrorIs(t, err, eval.ErrStackOverflow)
	assert.Equal(t, eval.DefaultMaxStack, s.Len())

	s.ClearStack()
	s.MaxStack = 3
	err = s.RunSnippet(context.Background(), `1 2 3 dup`)
	assert.ErrorIs(t, err, eval.ErrStackOverflow)
	assert.Equal(t, 3, s.Len())
}

func TestPendingBound(t *testing.T) {
	s, _ := newState()
	s.MaxPending = 100
	require.NoError(t, s.LoadProgram(`grow = ( grow grow )`))
	err := s.RunFunction(context.Background(), "grow")
	require.Error(t, err)
	assert.ErrorIs(t, err, eval.ErrPendingOverflow)
	assert.Equal(t, 0, s.Len(), "value stack stays flat")
}

// Tail calls don't grow the pending queue.
func TestTailCallsStayFlat(t *testing.T) {
	s, _ := newState()
	s.MaxPending = 10
	prog := `count = ( 1 + dup 5000 < ?( pop pop count ) ?( pop pop ) if )`
	require.NoError(t, s.LoadProgram(prog))
	require.NoError(t, s.RunSnippet(context.Background(), `0 count`))
	assert.Equal(t, ints(5000), s.Stack())
}

func TestContextInterrupt(t *testing.T) {
	s, _ := newState()
	require.NoError(t, s.LoadProgram(`spin = ( spin )`))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := s.RunFunction(ctx, "spin")
	require.Error(t, err)
	assert.ErrorIs(t, err, eval.ErrInterrupted)
	assert.True(t, errors.Is(err, eval.ErrInterrupted))
	assert.False(t, errors.Is(err, eval.ErrUnderflow))
}

func TestLoadAndClear(t *testing.T) {
	s, out := newState()
	require.NoError(t, s.LoadProgram("f = ( 1 )\nf = ( 2 )"))
	require.NoError(t, s.RunSnippet(context.Background(), `f f +`))
	assert.Equal(t, ints(4), s.Stack())
	s.ClearStack()
	assert.Empty(t, s.Stack())
	require.NoError(t, s.RunSnippet(context.Background(), `f print`), "functions survive ClearStack")
	assert.Equal(t, "2\n", out.String())
	assert.Equal(t, []string{"f"}, s.FunctionNames())

	err := s.LoadProgram("g = ( 1 )\nh = ( 2")
	require.Error(t, err)
	_, ok := s.Function("g")
	assert.False(t, ok, "nothing loaded on error")
}

func TestReservedNeverCalled(t *testing.T) {
	s, _ := newState()
	// Can't be parsed as a definition, so load it directly.
	s.Load(&ast.Program{Definitions: []ast.Definition{
		{Name: "dup", Body: ast.Body{ast.StringLiteral{Val: "user dup"}}},
	}})
	require.NoError(t, s.RunSnippet(context.Background(), `1 dup`))
	assert.Equal(t, ints(1, 1), s.Stack())
}
