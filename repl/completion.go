package repl

import (
	"fmt"
	"strings"

	"fortio.org/sets"
	"fortio.org/terminal"
	"psf.sh/psf/eval"
	"psf.sh/psf/token"
	"psf.sh/psf/trie"
)

var metaCommands = []string{":e", ":exit", ":funcs", ":help"}

type AutoComplete struct {
	Trie *trie.Trie
}

// NewCompletion knows the reserved words and the meta commands, function names
// are added by Refresh.
func NewCompletion() *AutoComplete {
	a := &AutoComplete{trie.NewTrie()}
	for _, k := range sets.Sort(token.Info().Keywords) {
		a.Trie.Insert(k)
	}
	for _, c := range metaCommands {
		a.Trie.Insert(c)
	}
	return a
}

// Refresh adds the state's function names. Functions are never removed.
func (a *AutoComplete) Refresh(s *eval.State) {
	for _, name := range s.FunctionNames() {
		a.Trie.Insert(name)
	}
}

func (a *AutoComplete) AutoComplete() terminal.AutoCompleteCallback {
	return func(t *terminal.Terminal, line string, pos int, key rune) (newLine string, newPos int, ok bool) {
		if key != '\t' {
			return // only tab for now
		}
		newLine, newPos, candidates := a.Complete(line, pos)
		if len(candidates) > 1 {
			fmt.Fprintln(t.Out, "One of:", strings.Join(candidates, " "))
		}
		return newLine, newPos, len(candidates) > 0
	}
}

// Complete extends the word ending at pos as far as all candidates agree.
func (a *AutoComplete) Complete(line string, pos int) (newLine string, newPos int, candidates []string) {
	start := strings.LastIndexAny(line[:pos], " \t()") + 1
	word := line[start:pos]
	if word == "" {
		return line, pos, nil
	}
	l, candidates := a.Trie.PrefixAll(word)
	if len(candidates) == 0 {
		return line, pos, nil
	}
	completed := candidates[0][:l]
	return line[:start] + completed + line[pos:], start + l, candidates
}
