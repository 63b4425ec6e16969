// Package extensions registers the builtin sugar functions: small helpers
// written in the language itself, preloaded in the function table of states
// that call PreloadBuiltins.
package extensions

import (
	"fortio.org/log"
	"psf.sh/psf/eval"
)

var (
	initDone  = false
	errInInit error
)

// Configure which helpers get registered.
type Config struct {
	NoSugar bool // register nothing, states only have the user's functions.
}

// Sugar is one helper function, as name and body source.
type Sugar struct {
	Name string
	Code string
	Help string
}

var sugar = []Sugar{
	{"printp", "print pop", "print the top value and drop it"},
	{"nip", "swap pop", "drop the value below the top"},
	{"over", "swap dup 2 swapn swap", "copy the value below the top on top: a b -> a b a"},
	{"not", "?(false) ?(true) if", "negate the boolean on top"},
	{"greater", "> swap pop swap pop", "a b -> a>b, consuming a and b"},
	{"less", "< swap pop swap pop", "a b -> a<b, consuming a and b"},
}

// List returns the helpers, registered or not.
func List() []Sugar {
	return sugar
}

// Init registers the sugar functions, can be called multiple time safely but should
// really be called only once before creating states. If the passed [Config] pointer
// is nil, default values are used.
func Init(c *Config) error {
	if initDone {
		return errInInit
	}
	if c == nil {
		c = &Config{}
	}
	errInInit = initInternal(c)
	initDone = true
	return errInInit
}

func initInternal(c *Config) error {
	if c.NoSugar {
		log.LogVf("Sugar functions disabled")
		return nil
	}
	for _, s := range sugar {
		if err := eval.AddSugar(s.Name, s.Code); err != nil {
			return err
		}
	}
	log.LogVf("Registered %d sugar functions", len(sugar))
	return nil
}
