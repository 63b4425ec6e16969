package object

import (
	"sort"

	"fortio.org/log"
	"psf.sh/psf/ast"
)

// Functions is the named function table: exact, case sensitive names, no overloading.
type Functions struct {
	store map[string]ast.Body
}

func NewFunctions() *Functions {
	return &Functions{store: make(map[string]ast.Body)}
}

// LoadSugar adds the registered sugar functions to the table and returns how many.
func (f *Functions) LoadSugar() int {
	sugar := initialFunctionsCopy()
	for k, v := range sugar {
		f.store[k] = v
	}
	return len(sugar)
}

func (f *Functions) Len() int {
	return len(f.store)
}

func (f *Functions) Get(name string) (ast.Body, bool) {
	body, ok := f.store[name]
	return body, ok
}

// Set adds or silently replaces a definition.
func (f *Functions) Set(name string, body ast.Body) {
	if _, ok := f.store[name]; ok {
		log.LogVf("Redefining function %s", name)
	}
	f.store[name] = body
}

// Names returns the defined names, sorted.
func (f *Functions) Names() []string {
	names := make([]string, 0, len(f.store))
	for k := range f.store {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
