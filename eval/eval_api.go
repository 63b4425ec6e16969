package eval

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"fortio.org/log"
	"psf.sh/psf/ast"
	"psf.sh/psf/object"
	"psf.sh/psf/parser"
)

// Exported part of the eval package.

const (
	// DefaultMaxStack is the value stack depth ceiling.
	DefaultMaxStack = 1000
	// DefaultMaxPending bounds the pending items queue, which self splicing
	// functions can grow while the value stack stays flat.
	DefaultMaxPending = 1_000_000
	// DefaultEntry is the function run when executing a program file.
	DefaultEntry = "main"
)

// State is the runtime state: the value stack and the function table.
// It is not safe for concurrent use.
type State struct {
	Out io.Writer // print, debugs and input prompts.
	// In is where input reads lines from, one byte at a time so it can be
	// shared with whoever reads the next submission (the terminal).
	In io.Reader
	// Echo gets a copy of what input reads and makes \r end lines too,
	// for terminals in raw mode. Nil otherwise.
	Echo       io.Writer
	MaxStack   int
	MaxPending int // <= 0 for unlimited.
	stack      []object.Object
	functions  *object.Functions
}

func NewState() *State {
	return &State{
		Out:        os.Stdout,
		In:         bufio.NewReader(os.Stdin),
		MaxStack:   DefaultMaxStack,
		MaxPending: DefaultMaxPending,
		functions:  object.NewFunctions(),
	}
}

// NewBlankState has no output nor input, for tests and format only uses.
func NewBlankState() *State {
	st := NewState()
	st.Out = io.Discard
	st.In = bufio.NewReader(strings.NewReader(""))
	return st
}

// SetInput replaces where input reads lines from.
func (s *State) SetInput(r io.Reader) {
	s.In = bufio.NewReader(r)
}

// PreloadBuiltins adds the registered sugar functions (see AddSugar) to the
// function table and returns how many were added.
func (s *State) PreloadBuiltins() int {
	n := s.functions.LoadSugar()
	log.LogVf("Preloaded %d sugar functions", n)
	return n
}

// Load inserts the program definitions in the function table, later ones
// overwriting earlier ones.
func (s *State) Load(program *ast.Program) {
	for _, d := range program.Definitions {
		s.functions.Set(d.Name, d.Body)
	}
}

// LoadProgram parses code as `name = ( body )` definitions and loads them.
// Nothing is loaded if there is an error.
func (s *State) LoadProgram(code string) error {
	program, err := parser.ParseProgram(code)
	if err != nil {
		return err
	}
	s.Load(program)
	return nil
}

// RunFunction runs the named function.
func (s *State) RunFunction(ctx context.Context, name string) error {
	body, ok := s.functions.Get(name)
	if !ok {
		return s.Errorf(UnknownFunction, "function %q doesn't exist", name)
	}
	log.LogVf("Running %s", name)
	return s.Run(ctx, body)
}

// RunSnippet parses code as a single bare body and runs it.
func (s *State) RunSnippet(ctx context.Context, code string) error {
	body, err := parser.ParseSnippet(code)
	if err != nil {
		return err
	}
	return s.Run(ctx, body)
}

// ClearStack empties the value stack, the function table is kept.
func (s *State) ClearStack() {
	clear(s.stack)
	s.stack = s.stack[:0]
}

// Stack returns a copy of the value stack, bottom first.
func (s *State) Stack() []object.Object {
	res := make([]object.Object, len(s.stack))
	copy(res, s.stack)
	return res
}

// Len is the current value stack depth.
func (s *State) Len() int {
	return len(s.stack)
}

// FunctionNames returns the sorted names in the function table.
func (s *State) FunctionNames() []string {
	return s.functions.Names()
}

func (s *State) Function(name string) (ast.Body, bool) {
	return s.functions.Get(name)
}

// AddSugar registers a function written in the language itself, to be
// preloaded by PreloadBuiltins in every state (e.g printp = print pop).
func AddSugar(name, code string) error {
	body, err := parser.ParseSnippet(code)
	if err != nil {
		return err
	}
	return object.AddSugar(name, body)
}
