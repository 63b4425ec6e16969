// Psf runs programs written in PSF, a small stack based language.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fortio.org/cli"
	"fortio.org/duration"
	"fortio.org/log"
	"fortio.org/struct2env"
	"fortio.org/terminal"
	"psf.sh/psf/eval"
	"psf.sh/psf/extensions"
	"psf.sh/psf/repl"
)

func main() {
	os.Exit(Main())
}

type Config struct {
	HistoryFile string
	MaxStack    int
	MaxPending  int
}

var config = Config{
	MaxStack:   eval.DefaultMaxStack,
	MaxPending: eval.DefaultMaxPending,
}

func EnvHelp(w io.Writer) {
	res, _ := struct2env.StructToEnvVars(config)
	str := struct2env.ToShellWithPrefix("PSF_", res, true)
	fmt.Fprintln(w, "# Psf environment variables:")
	fmt.Fprint(w, str)
}

// Profiling hooks, around the run of what (file name, -c or repl).
var (
	hookBefore func(what string) int
	hookAfter  func() int
)

func Main() int {
	commandFlag := flag.String("c", "", "command/inline script to run instead of interactive mode")
	entry := flag.String("entry", eval.DefaultEntry, "`function` to run after loading a program")
	showParse := flag.Bool("parse", false, "show parse tree")
	format := flag.Bool("format", false, "don't execute, just parse and re format the input")
	noSugar := flag.Bool("no-sugar", false, "don't preload the builtin sugar functions (printp, nip, over...)")
	maxDuration := duration.Flag("max-duration", 0, "maximum `duration` of one run, 0 for unlimited")
	const historyDefault = "~/.psf_history" // virtual/token filename, will be replaced by actual home dir if not changed.
	cli.EnvHelpFuncs = append(cli.EnvHelpFuncs, EnvHelp)
	defaultHistoryFile := historyDefault
	errs := struct2env.SetFromEnv("PSF_", &config)
	if len(errs) > 0 {
		log.Errf("Error setting config from env: %v", errs)
	}
	if config.HistoryFile != "" {
		defaultHistoryFile = config.HistoryFile
	}
	historyFile := flag.String("history", defaultHistoryFile, "history `file` to use")
	maxHistory := flag.Int("max-history", terminal.DefaultHistoryCapacity, "max history `size`, use 0 to disable.")
	maxStack := flag.Int("max-stack", config.MaxStack, "maximum value stack `depth`")
	maxPending := flag.Int("max-pending", config.MaxPending, "maximum pending items `queue` length, 0 for unlimited")

	cli.ArgsHelp = "*.psf file to run or `-` for stdin without prompt or no arguments for stdin repl..."
	cli.MaxArgs = 1
	cli.Main()
	histFile := *historyFile
	if histFile == historyDefault {
		homeDir, err := os.UserHomeDir()
		histFile = filepath.Join(homeDir, ".psf_history")
		if err != nil {
			log.Warnf("Couldn't get user home dir: %v", err)
			histFile = ""
		}
	}
	log.Infof("psf %s - welcome!", cli.LongVersion)
	options := repl.Options{
		ShowParse:   *showParse,
		FormatOnly:  *format,
		Entry:       *entry,
		HistoryFile: histFile,
		MaxHistory:  *maxHistory,
		MaxStack:    *maxStack,
		MaxPending:  *maxPending,
		MaxDuration: *maxDuration,
	}
	err := extensions.Init(&extensions.Config{NoSugar: *noSugar})
	if err != nil {
		return log.FErrf("Error initializing extensions: %v", err)
	}
	if hookBefore != nil {
		ret := hookBefore(runName(*commandFlag))
		if ret != 0 {
			return ret
		}
	}
	ret := run(*commandFlag, options)
	if hookAfter != nil {
		if hret := hookAfter(); ret == 0 {
			ret = hret
		}
	}
	if ret == 0 {
		log.Infof("All done")
	}
	return ret
}

func runName(command string) string {
	switch {
	case command != "":
		return "-c"
	case len(flag.Args()) == 0:
		return "repl"
	default:
		return flag.Arg(0)
	}
}

func run(command string, options repl.Options) int {
	if command != "" {
		s := repl.NewState(options)
		_, err := repl.EvalOne(context.Background(), s, command, os.Stdout, options)
		if err != nil {
			return 1
		}
		return 0
	}
	if len(flag.Args()) == 0 {
		return repl.Interactive(options)
	}
	return processOneFile(flag.Arg(0), repl.NewState(options), options)
}

func processOneStream(s *eval.State, in io.Reader, options repl.Options) int {
	errs := repl.EvalAll(context.Background(), s, in, os.Stdout, options)
	if len(errs) > 0 {
		log.LogVf("Errors: %v", errs)
		return 1
	}
	return 0
}

func processOneFile(file string, s *eval.State, options repl.Options) int {
	if file == "-" {
		if options.FormatOnly {
			log.Infof("Formatting stdin")
		} else {
			log.Infof("Running on stdin")
		}
		return processOneStream(s, os.Stdin, options)
	}
	f, err := os.Open(file)
	if err != nil {
		return log.FErrf("%v", err)
	}
	defer f.Close()
	verb := "Running"
	if options.FormatOnly {
		verb = "Formatting"
	}
	log.Infof("%s %s", verb, file)
	return processOneStream(s, f, options)
}
