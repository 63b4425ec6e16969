package token

import "fortio.org/sets"

// LangInfo enables introspection of known keywords and operators.
type LangInfo struct {
	// Keywords is the set of reserved words, they never resolve to a named call.
	Keywords  sets.Set[string]
	Operators sets.Set[string]
}

var info LangInfo

func init() {
	info = LangInfo{
		Keywords:  sets.New[string](),
		Operators: sets.New[string](),
	}
	for k := range keywords {
		info.Keywords.Add(k)
	}
	for op := range operators {
		info.Operators.Add(string(op))
	}
}

func Info() LangInfo {
	return info
}

// IsReserved is true for words that can't be used as function names.
func IsReserved(word string) bool {
	return info.Keywords.Has(word)
}
