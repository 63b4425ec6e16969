package object

import (
	"errors"

	"psf.sh/psf/ast"
	"psf.sh/psf/token"
)

var (
	sugarFunctions map[string]ast.Body
	initDone       bool
)

// Init resets the table of sugar functions to empty.
// Optional, will be called on demand the first time through AddSugar.
func Init() {
	sugarFunctions = make(map[string]ast.Body)
	initDone = true
}

// AddSugar registers a function to be preloaded in every new function table
// (e.g. "printp" -> print pop).
func AddSugar(name string, body ast.Body) error {
	if !initDone {
		Init()
	}
	if name == "" {
		return errors.New("empty function name")
	}
	if token.IsReserved(name) {
		return errors.New(name + ": reserved word")
	}
	if _, ok := sugarFunctions[name]; ok {
		return errors.New(name + ": already defined")
	}
	sugarFunctions[name] = body
	return nil
}

// This makes a copy of the sugar map to load in a function table without mutating the original.
func initialFunctionsCopy() map[string]ast.Body {
	if !initDone {
		Init()
	}
	copied := make(map[string]ast.Body, len(sugarFunctions))
	for k, v := range sugarFunctions {
		copied[k] = v
	}
	return copied
}
