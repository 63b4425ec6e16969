package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"fortio.org/log"
	"fortio.org/terminal"
	"fortio.org/version"
	"psf.sh/psf/ast"
	"psf.sh/psf/eval"
	"psf.sh/psf/extensions"
	"psf.sh/psf/lexer"
	"psf.sh/psf/parser"
)

const PROMPT = "$ "

type Options struct {
	ShowParse   bool
	FormatOnly  bool
	All         bool   // whole input is a program (file mode), not a single submission.
	Entry       string // function run after loading a program, none when empty.
	HistoryFile string
	MaxHistory  int
	MaxStack    int
	MaxPending  int // <= 0 for unlimited.
	MaxDuration time.Duration
}

func DefaultOptions() Options {
	return Options{
		Entry:      eval.DefaultEntry,
		MaxHistory: terminal.DefaultHistoryCapacity,
		MaxStack:   eval.DefaultMaxStack,
		MaxPending: eval.DefaultMaxPending,
	}
}

// NewState returns a state with the options limits and the sugar functions preloaded.
func NewState(options Options) *eval.State {
	s := eval.NewState()
	if options.MaxStack > 0 {
		s.MaxStack = options.MaxStack
	}
	s.MaxPending = options.MaxPending
	s.PreloadBuiltins()
	return s
}

// EvalString runs code the way -c does: definitions are loaded then the entry
// function runs, anything else runs as a snippet. Returns the output, the
// errors and the formatted input.
func EvalString(what string) (res string, errs []string, formatted string) {
	return EvalStringWithOption(context.Background(), DefaultOptions(), what)
}

func EvalStringWithOption(ctx context.Context, o Options, what string) (res string, errs []string, formatted string) {
	s := NewState(o)
	s.SetInput(strings.NewReader(""))
	out := &strings.Builder{}
	s.Out = out
	formatted, err := EvalOne(ctx, s, what, out, o)
	if err != nil {
		errs = append(errs, err.Error())
	}
	return out.String(), errs, formatted
}

// EvalAll reads the whole stream as a program, loads it and runs the entry
// function (or just reformats it when FormatOnly is set).
func EvalAll(ctx context.Context, s *eval.State, in io.Reader, out io.Writer, options Options) []string {
	b, err := io.ReadAll(in)
	if err != nil {
		log.Errf("Error reading input: %v", err)
		return []string{err.Error()}
	}
	options.All = true
	_, err = EvalOne(ctx, s, string(b), out, options)
	if err != nil {
		return []string{err.Error()}
	}
	return nil
}

// EvalOne evaluates one unit of work: a program when the input is definitions
// (or options.All is set), loaded then run from options.Entry when not empty;
// otherwise a snippet run against the current stack. An error is printed as
// a single "erro: " line to out and returned.
func EvalOne(ctx context.Context, s *eval.State, what string, out io.Writer, options Options) (string, error) {
	formatted, err := evalOne(ctx, s, what, out, options)
	if err != nil {
		printError(out, err)
	}
	return formatted, err
}

func evalOne(ctx context.Context, s *eval.State, what string, out io.Writer, options Options) (string, error) {
	tokens, err := lexer.Tokenize(what)
	if err != nil {
		return what, err
	}
	if options.All || parser.IsDefinition(tokens) {
		program, err := parser.New(tokens).ParseProgram()
		if err != nil {
			return what, err
		}
		return evalProgram(ctx, s, program, out, options)
	}
	body, err := parser.New(tokens).ParseSnippet()
	if err != nil {
		return what, err
	}
	formatted := body.String() + "\n"
	if showParse(out, formatted, options) {
		return formatted, nil
	}
	ctx, cancel := runContext(ctx, options)
	defer cancel()
	return formatted, s.Run(ctx, body)
}

func evalProgram(ctx context.Context, s *eval.State, program *ast.Program, out io.Writer, options Options) (string, error) {
	formatted := program.String()
	if showParse(out, formatted, options) {
		return formatted, nil
	}
	s.Load(program)
	log.LogVf("Loaded %d definition(s), %d functions defined", len(program.Definitions), len(s.FunctionNames()))
	if options.Entry == "" {
		return formatted, nil
	}
	ctx, cancel := runContext(ctx, options)
	defer cancel()
	return formatted, s.RunFunction(ctx, options.Entry)
}

// showParse prints the formatted input when asked and returns true when
// evaluation should be skipped (format only).
func showParse(out io.Writer, formatted string, options Options) bool {
	if options.FormatOnly {
		fmt.Fprint(out, formatted)
		return true
	}
	if options.ShowParse {
		fmt.Fprint(out, "== Parse ==> ", formatted)
	}
	return false
}

func runContext(ctx context.Context, options Options) (context.Context, context.CancelFunc) {
	if options.MaxDuration > 0 {
		return context.WithTimeout(ctx, options.MaxDuration)
	}
	return context.WithCancel(ctx)
}

func printError(out io.Writer, err error) {
	fmt.Fprintf(out, "%serro%s: %v\n", log.Colors.Red, log.Colors.Reset, err)
}

// LineSource is what the interactive loop reads submissions from: the
// terminal, or any line reader in tests.
type LineSource interface {
	ReadLine() (string, error)
	// Context for running one submission, canceled on interrupt (control-c).
	Context() context.Context
	// Reset is called after each submission, to restart interrupt handling
	// when the run was interrupted.
	Reset()
}

type termSource struct {
	t *terminal.Terminal
}

func (ts termSource) ReadLine() (string, error) {
	return ts.t.ReadLine()
}

func (ts termSource) Context() context.Context {
	return ts.t.Context
}

func (ts termSource) Reset() {
	if ts.t.Context.Err() != nil {
		log.Infof("Run interrupted, resetting")
		ts.t.ResetInterrupts(context.Background())
	}
}

// Interactive runs the read-eval loop on the terminal until :exit, end of
// input or interrupt at the prompt.
func Interactive(options Options) int {
	t, err := terminal.Open(context.Background())
	if err != nil {
		return log.FErrf("Error creating terminal: %v", err)
	}
	defer t.Close()
	t.SetPrompt(PROMPT)
	if options.MaxHistory > 0 {
		t.NewHistory(options.MaxHistory)
		if options.HistoryFile != "" {
			if err := t.SetHistoryFile(options.HistoryFile); err != nil {
				log.Warnf("Couldn't use history file %q: %v", options.HistoryFile, err)
			}
		}
	}
	s := NewState(options)
	// input shares the terminal's reader, in raw mode it echoes and \r ends lines.
	s.Out = t.Out
	s.In = t.IntrReader
	if t.IsTerminal() {
		s.Echo = t.Out
	}
	completion := NewCompletion()
	t.SetAutoCompleteCallback(completion.AutoComplete())
	_, psfVersion, _ := version.FromBuildInfoPath("psf.sh/psf")
	fmt.Fprintf(t.Out, "psf %s - welcome! :help for help, :e to exit\n", psfVersion)
	return Session(s, termSource{t}, t.Out, options, completion)
}

// Session evaluates the submissions from in until :exit or end of input.
// Definitions persist, the stack is cleared after each submission and errors
// only end the current one. completion can be nil.
func Session(s *eval.State, in LineSource, out io.Writer, options Options, completion *AutoComplete) int {
	options.Entry = ""
	for {
		if completion != nil {
			completion.Refresh(s)
		}
		rd, err := in.ReadLine()
		if errors.Is(err, io.EOF) {
			log.Infof("EOF, exiting")
			return 0
		}
		if errors.Is(err, terminal.ErrUserInterrupt) {
			log.Infof("Interrupted, exiting")
			return 0
		}
		if err != nil {
			return log.FErrf("Error reading line: %v", err)
		}
		l := strings.TrimSpace(rd)
		if l == "" {
			continue
		}
		if handled, exit := MetaCommand(s, l, out); handled {
			if exit {
				return 0
			}
			continue
		}
		_, _ = EvalOne(in.Context(), s, l, out, options)
		s.ClearStack()
		in.Reset()
	}
}

const helpText = `Enter definitions like  name = ( body )  to add functions for the session,
or any other code to run it right away (the stack is cleared after each line).
Commands:
  :funcs     list the defined functions
  :help      this help
  :e, :exit  exit
Builtin helpers:
`

// MetaCommand handles the ':' commands of the interactive loop.
func MetaCommand(s *eval.State, line string, out io.Writer) (handled, exit bool) {
	if !strings.HasPrefix(line, ":") {
		return false, false
	}
	switch line {
	case ":e", ":exit":
		return true, true
	case ":help":
		fmt.Fprint(out, helpText)
		for _, sugar := range extensions.List() {
			if body, ok := s.Function(sugar.Name); ok {
				fmt.Fprintf(out, "  %s: %s\n", ast.Definition{Name: sugar.Name, Body: body}, sugar.Help)
			}
		}
	case ":funcs":
		for _, name := range s.FunctionNames() {
			body, _ := s.Function(name)
			fmt.Fprintln(out, ast.Definition{Name: name, Body: body}.String())
		}
	default:
		fmt.Fprintf(out, "%serro%s: unknown command %q, try :help\n", log.Colors.Red, log.Colors.Reset, line)
	}
	return true, false
}
