// Package parser builds function bodies from tokens.
//
// Nested quotations are matched without recursion: the body being built is
// suspended on an explicit stack when a ?( opens and resumed when the matching
// ) closes it.
package parser

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"fortio.org/log"
	"fortio.org/safecast"
	"psf.sh/psf/ast"
	"psf.sh/psf/lexer"
	"psf.sh/psf/token"
)

// Error is a syntax error, fatal for the whole input.
type Error struct {
	Pos      token.Pos
	Function string // definition being parsed, if any.
	Msg      string
}

func (e *Error) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("syntax error at %s in function %s: %s", e.Pos, e.Function, e.Msg)
	}
	return fmt.Sprintf("syntax error at %s: %s", e.Pos, e.Msg)
}

type Parser struct {
	tokens   []token.Token
	pos      int
	function string
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Pos is the index of the next token to be consumed.
func (p *Parser) Pos() int {
	return p.pos
}

// ParseProgram tokenizes and parses a whole program of `name = ( body )` definitions.
func ParseProgram(code string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(code)
	if err != nil {
		return nil, err
	}
	return New(tokens).ParseProgram()
}

// ParseSnippet tokenizes and parses a single bare body (REPL line, -c argument).
func ParseSnippet(code string) (ast.Body, error) {
	tokens, err := lexer.Tokenize(code)
	if err != nil {
		return nil, err
	}
	return New(tokens).ParseSnippet()
}

// IsDefinition tells if the tokens start like a `name = ...` definition.
func IsDefinition(tokens []token.Token) bool {
	return len(tokens) >= 2 && tokens[0].Type == token.IDENT && tokens[1].Type == token.ASSIGN
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{}
	for p.pos < len(p.tokens) {
		p.function = ""
		nameTok := p.tokens[p.pos]
		if nameTok.Type != token.IDENT {
			return nil, p.errorf(nameTok.Pos, "missing function name, got %q", nameTok.Literal)
		}
		if token.IsReserved(nameTok.Literal) {
			return nil, p.errorf(nameTok.Pos, "%q is reserved and can't name a function", nameTok.Literal)
		}
		p.pos++
		p.function = nameTok.Literal
		if !p.expect(token.ASSIGN) {
			return nil, p.errorf(p.curPos(), "missing = after function name")
		}
		if !p.expect(token.LPAREN) {
			return nil, p.errorf(p.curPos(), "missing ( at start of function")
		}
		body, err := p.ParseBody()
		if err != nil {
			return nil, err
		}
		if !p.expect(token.RPAREN) {
			return nil, p.errorf(p.curPos(), "missing ) at end of function")
		}
		log.Debugf("Parsed function %s: %s", nameTok.Literal, body)
		program.Definitions = append(program.Definitions, ast.Definition{Name: nameTok.Literal, Body: body})
	}
	p.function = ""
	log.LogVf("ParseProgram: %d definitions", len(program.Definitions))
	return program, nil
}

// ParseSnippet parses all the tokens as one body.
func (p *Parser) ParseSnippet() (ast.Body, error) {
	body, err := p.ParseBody()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, p.errorf(p.tokens[p.pos].Pos, "unexpected ) without matching ?(")
	}
	return body, nil
}

// ParseBody accumulates items until the end of input or a ) that doesn't
// close a quotation opened within this body. In the latter case the cursor
// is left on that ) for the caller to consume.
func (p *Parser) ParseBody() (ast.Body, error) {
	current := ast.Body{}
	var suspended []ast.Body
	var opened []token.Pos
	expectOpen := false
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.pos++
		if expectOpen && tok.Type != token.LPAREN {
			return nil, p.errorf(tok.Pos, "expected ( after ?, got %q", tok.Literal)
		}
		switch tok.Type { //nolint:exhaustive // items handled in p.item().
		case token.QUOTE:
			expectOpen = true
		case token.LPAREN:
			if !expectOpen {
				return nil, p.errorf(tok.Pos, "( must be preceded by ?")
			}
			expectOpen = false
			suspended = append(suspended, current)
			opened = append(opened, tok.Pos)
			current = ast.Body{}
		case token.RPAREN:
			n := len(suspended)
			if n == 0 {
				p.pos-- // belongs to the caller.
				return current, nil
			}
			parent := suspended[n-1]
			suspended = suspended[:n-1]
			opened = opened[:n-1]
			current = append(parent, ast.FunctionLiteral{Body: current})
		case token.ASSIGN:
			return nil, p.errorf(tok.Pos, "= is only allowed at top level after a function name")
		default:
			item, err := p.item(tok)
			if err != nil {
				return nil, err
			}
			current = append(current, item)
		}
	}
	if expectOpen {
		return nil, p.errorf(p.curPos(), "? at end of input")
	}
	if n := len(suspended); n > 0 {
		return nil, p.errorf(opened[n-1], "unterminated quotation, missing )")
	}
	return current, nil
}

func (p *Parser) item(tok token.Token) (ast.Item, error) {
	switch tok.Type { //nolint:exhaustive // structural tokens handled by ParseBody.
	case token.INT:
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, p.errorf(tok.Pos, "could not parse %q as integer", tok.Literal)
		}
		i, err := safecast.Conv[int32](v)
		if err != nil {
			return nil, p.errorf(tok.Pos, "integer %s out of range", tok.Literal)
		}
		return ast.IntegerLiteral{Val: i}, nil
	case token.STRING:
		return ast.StringLiteral{Val: tok.Literal}, nil
	case token.PLUS, token.GT, token.LT:
		return ast.Operator{Type: tok.Type}, nil
	case token.INVOKE:
		return ast.Invoke{}, nil
	case token.IDENT:
		switch kw := token.LookupKeyword(tok.Literal); kw { //nolint:exhaustive // all other keywords are builtins.
		case token.IDENT:
			return ast.NamedCall{Name: tok.Literal}, nil
		case token.TRUE:
			return ast.BooleanLiteral{Val: true}, nil
		case token.FALSE:
			return ast.BooleanLiteral{Val: false}, nil
		default:
			return ast.Builtin{Type: kw}, nil
		}
	}
	return nil, p.errorf(tok.Pos, "unexpected token %s", tok.DebugString())
}

func (p *Parser) expect(t token.Type) bool {
	if p.pos < len(p.tokens) && p.tokens[p.pos].Type == t {
		p.pos++
		return true
	}
	return false
}

// Position of the current token, or just past the last one at end of input.
func (p *Parser) curPos() token.Pos {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos].Pos
	}
	if len(p.tokens) == 0 {
		return token.Pos{Line: 1, Col: 1}
	}
	lastTok := p.tokens[len(p.tokens)-1]
	last := lastTok.Pos
	last.Col += utf8.RuneCountInString(lastTok.Literal)
	if lastTok.Type == token.STRING {
		last.Col += 2 // quotes.
	}
	return last
}

func (p *Parser) errorf(pos token.Pos, format string, args ...any) *Error {
	return &Error{Pos: pos, Function: p.function, Msg: fmt.Sprintf(format, args...)}
}
