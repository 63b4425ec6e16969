package eval

import (
	"fmt"

	"fortio.org/log"
	"psf.sh/psf/object"
)

type Kind uint8

const (
	UnknownKind Kind = iota
	TypeError
	Underflow
	UnknownFunction
	BadIndex
	StackOverflow
	PendingOverflow
	Overflow
	IOError
	Interrupted
)

var kindNames = [...]string{
	UnknownKind:     "unknown",
	TypeError:       "type error",
	Underflow:       "stack underflow",
	UnknownFunction: "unknown function",
	BadIndex:        "bad index",
	StackOverflow:   "stack overflow",
	PendingOverflow: "pending overflow",
	Overflow:        "integer overflow",
	IOError:         "io error",
	Interrupted:     "interrupted",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Error is a runtime error. It ends the current run, there is no recovery
// inside evaluation.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return "runtime error: " + e.Msg
}

// Is matches sentinels of the same Kind (and empty Msg), so
// errors.Is(err, eval.ErrUnderflow) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.Kind == e.Kind
}

var (
	ErrTypeError       = &Error{Kind: TypeError}
	ErrUnderflow       = &Error{Kind: Underflow}
	ErrUnknownFunction = &Error{Kind: UnknownFunction}
	ErrBadIndex        = &Error{Kind: BadIndex}
	ErrStackOverflow   = &Error{Kind: StackOverflow}
	ErrPendingOverflow = &Error{Kind: PendingOverflow}
	ErrOverflow        = &Error{Kind: Overflow}
	ErrIO              = &Error{Kind: IOError}
	ErrInterrupted     = &Error{Kind: Interrupted}
)

// Errorf creates a new runtime error of the given kind.
func (s *State) Errorf(kind Kind, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	log.LogVf("%s: %s (stack depth %d)", kind, msg, len(s.stack))
	return &Error{Kind: kind, Msg: msg}
}

// Value stack helpers. None of them mutate the stack when they fail.

func (s *State) push(o object.Object) error {
	if len(s.stack) >= s.MaxStack {
		return s.Errorf(StackOverflow, "stack depth would exceed %d", s.MaxStack)
	}
	s.stack = append(s.stack, o)
	return nil
}

// need checks there are at least n values for op.
func (s *State) need(op string, n int) error {
	if len(s.stack) < n {
		return s.Errorf(Underflow, "%s needs %d value(s) on the stack, found %d", op, n, len(s.stack))
	}
	return nil
}

// peek returns the value i positions below the top (0 is the top).
func (s *State) peek(i int) object.Object {
	return s.stack[len(s.stack)-1-i]
}

func (s *State) pop() object.Object {
	n := len(s.stack) - 1
	o := s.stack[n]
	s.stack[n] = nil
	s.stack = s.stack[:n]
	return o
}

func (s *State) drop(n int) {
	for range n {
		s.pop()
	}
}

// swapDepth exchanges the top with the value depth positions below it.
func (s *State) swapDepth(depth int) {
	top := len(s.stack) - 1
	s.stack[top], s.stack[top-depth] = s.stack[top-depth], s.stack[top]
}

func (s *State) peekInteger(op string, i int) (int32, error) {
	v, ok := s.peek(i).(object.Integer)
	if !ok {
		return 0, s.typeError(op, i, object.INTEGER)
	}
	return v.Value, nil
}

func (s *State) peekFunction(op string, i int) (object.Function, error) {
	v, ok := s.peek(i).(object.Function)
	if !ok {
		return object.Function{}, s.typeError(op, i, object.FUNC)
	}
	return v, nil
}

func (s *State) typeError(op string, i int, expected object.Type) *Error {
	o := s.peek(i)
	return s.Errorf(TypeError, "%s expects %s at stack position %d, got %s %s",
		op, expected, i, o.Type(), object.Short(o))
}
