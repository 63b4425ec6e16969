package eval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"fortio.org/log"
	"fortio.org/safecast"
	"github.com/gammazero/deque"
	"psf.sh/psf/ast"
	"psf.sh/psf/object"
	"psf.sh/psf/token"
)

// How many items are executed between two checks of the context.
const checkContextEvery = 1024

// Run executes body against the state's stack and function table.
//
// Calls never recurse: the callee's items are spliced (reversed) on top of the
// same pending LIFO, so they execute in place before whatever remained of the
// caller. Results are observed on the stack.
func (s *State) Run(ctx context.Context, body ast.Body) error {
	pending := deque.New[ast.Item]()
	if err := s.splice(pending, body); err != nil {
		return err
	}
	steps := 0
	for pending.Len() > 0 {
		steps++
		if steps%checkContextEvery == 0 {
			if err := ctx.Err(); err != nil {
				return s.Errorf(Interrupted, "run interrupted after %d steps: %v", steps, err)
			}
		}
		item := pending.PopBack()
		if log.LogDebug() {
			log.Debugf("step %d: %s (stack %d, pending %d)", steps, item, len(s.stack), pending.Len())
		}
		if err := s.step(pending, item); err != nil {
			return err
		}
	}
	log.LogVf("Run done in %d steps, stack depth %d", steps, len(s.stack))
	return nil
}

func (s *State) splice(pending *deque.Deque[ast.Item], body ast.Body) error {
	if s.MaxPending > 0 && pending.Len()+len(body) > s.MaxPending {
		return s.Errorf(PendingOverflow, "pending queue would exceed %d items", s.MaxPending)
	}
	for i := len(body) - 1; i >= 0; i-- {
		pending.PushBack(body[i])
	}
	return nil
}

func (s *State) step(pending *deque.Deque[ast.Item], item ast.Item) error {
	switch item := item.(type) {
	case ast.IntegerLiteral:
		return s.push(object.Integer{Value: item.Val})
	case ast.StringLiteral:
		return s.push(object.String{Value: item.Val})
	case ast.BooleanLiteral:
		return s.push(object.NativeBoolToBooleanObject(item.Val))
	case ast.FunctionLiteral:
		return s.push(object.Function{Body: item.Body})
	case ast.Operator:
		return s.evalOperator(item.Type)
	case ast.Invoke:
		if err := s.need("!", 1); err != nil {
			return err
		}
		f, err := s.peekFunction("!", 0)
		if err != nil {
			return err
		}
		s.pop()
		return s.splice(pending, f.Body)
	case ast.NamedCall:
		body, ok := s.functions.Get(item.Name)
		if !ok {
			return s.Errorf(UnknownFunction, "function %q doesn't exist", item.Name)
		}
		return s.splice(pending, body)
	case ast.Builtin:
		return s.evalBuiltin(pending, item.Type)
	}
	return s.Errorf(UnknownKind, "unexpected item %T", item)
}

func (s *State) evalOperator(op token.Type) error {
	lit := token.Literal(op)
	if err := s.need(lit, 2); err != nil {
		return err
	}
	n1, err := s.peekInteger(lit, 0)
	if err != nil {
		return err
	}
	n2, err := s.peekInteger(lit, 1)
	if err != nil {
		return err
	}
	switch op { //nolint:exhaustive // only the 3 operators.
	case token.PLUS:
		sum, err := safecast.Conv[int32](int64(n2) + int64(n1))
		if err != nil {
			return s.Errorf(Overflow, "%d + %d overflows 32 bits", n2, n1)
		}
		s.drop(2)
		return s.push(object.Integer{Value: sum})
	// Comparisons leave both operands and push the result on top.
	case token.GT:
		return s.push(object.NativeBoolToBooleanObject(n2 > n1))
	case token.LT:
		return s.push(object.NativeBoolToBooleanObject(n2 < n1))
	}
	return s.Errorf(UnknownKind, "unexpected operator %s", op)
}

func (s *State) evalBuiltin(pending *deque.Deque[ast.Item], b token.Type) error {
	name := token.Literal(b)
	switch b { //nolint:exhaustive // literals and operators aren't builtins.
	case token.PRINT:
		if err := s.need(name, 1); err != nil {
			return err
		}
		top := s.peek(0)
		if top.Type() == object.FUNC {
			log.Warnf("print: can't print function value %s", top.Inspect())
			return nil
		}
		fmt.Fprintln(s.Out, top.Inspect())
		return nil
	case token.INPUT:
		return s.evalInput()
	case token.POP:
		if err := s.need(name, 1); err != nil {
			return err
		}
		s.pop()
		return nil
	case token.DUP:
		if err := s.need(name, 1); err != nil {
			return err
		}
		return s.push(s.peek(0))
	case token.SWAP:
		if err := s.need(name, 2); err != nil {
			return err
		}
		s.swapDepth(1)
		return nil
	case token.SWAPN:
		return s.evalSwapN()
	case token.SSIZE:
		n, err := safecast.Conv[int32](len(s.stack))
		if err != nil {
			return s.Errorf(Overflow, "stack size %d doesn't fit in an integer", len(s.stack))
		}
		return s.push(object.Integer{Value: n})
	case token.IF:
		return s.evalIf(pending)
	case token.DEBUGS:
		s.debugStack()
		return nil
	}
	return s.Errorf(UnknownKind, "unexpected builtin %s", b)
}

// swapn: pops the index, then exchanges the new top with the value that many
// positions below it. 0 is a no-op.
func (s *State) evalSwapN() error {
	const name = "swapn"
	if err := s.need(name, 1); err != nil {
		return err
	}
	pos, err := s.peekInteger(name, 0)
	if err != nil {
		return err
	}
	remaining := len(s.stack) - 1
	if pos < 0 || int(pos) >= remaining {
		return s.Errorf(BadIndex, "swapn index %d out of range for %d value(s)", pos, remaining)
	}
	s.pop()
	if pos > 0 {
		s.swapDepth(int(pos))
	}
	return nil
}

// if: else-function on top, then-function below, condition below that.
// The chosen function is pushed and an invocation of it is queued next.
func (s *State) evalIf(pending *deque.Deque[ast.Item]) error {
	const name = "if"
	if err := s.need(name, 3); err != nil {
		return err
	}
	elseFn, err := s.peekFunction(name, 0)
	if err != nil {
		return err
	}
	thenFn, err := s.peekFunction(name, 1)
	if err != nil {
		return err
	}
	cond, ok := s.peek(2).(object.Boolean)
	if !ok {
		return s.typeError(name, 2, object.BOOLEAN)
	}
	if s.MaxPending > 0 && pending.Len()+1 > s.MaxPending {
		return s.Errorf(PendingOverflow, "pending queue would exceed %d items", s.MaxPending)
	}
	s.drop(3)
	chosen := elseFn
	if cond.Value {
		chosen = thenFn
	}
	if err := s.push(chosen); err != nil {
		return err
	}
	pending.PushBack(ast.Invoke{})
	return nil
}

func (s *State) evalInput() error {
	const name = "input"
	if err := s.need(name, 1); err != nil {
		return err
	}
	prompt, ok := s.peek(0).(object.String)
	if !ok {
		return s.typeError(name, 0, object.STRING)
	}
	s.pop()
	fmt.Fprint(s.Out, prompt.Value)
	line, err := s.readLine()
	if err != nil {
		return s.Errorf(IOError, "input: %v", err)
	}
	return s.push(object.String{Value: line})
}

// readLine reads up to and including the next newline (a raw mode \r is
// turned into one). End of input returns what was read so far.
func (s *State) readLine() (string, error) {
	var line strings.Builder
	b := make([]byte, 1)
	for {
		n, err := s.In.Read(b)
		if n > 0 {
			if s.Echo != nil {
				_, _ = s.Echo.Write(b) // the terminal's Out turns \r into \r\n.
			}
			if b[0] == '\n' || (b[0] == '\r' && s.Echo != nil) {
				line.WriteByte('\n')
				return line.String(), nil
			}
			line.WriteByte(b[0])
		}
		if errors.Is(err, io.EOF) {
			return line.String(), nil
		}
		if err != nil {
			return line.String(), err
		}
	}
}

func (s *State) debugStack() {
	fmt.Fprintf(s.Out, "stack[%d]:", len(s.stack))
	for _, o := range s.stack {
		fmt.Fprint(s.Out, " ", object.Debug(o))
	}
	fmt.Fprintln(s.Out)
}
