//go:build !no_pprof

package main

import (
	"flag"
	"os"
	"runtime"
	"runtime/pprof"

	"fortio.org/log"
)

var (
	cpuprofile  = flag.String("profile-cpu", "", "write cpu profile of the run to `file`")
	memprofile  = flag.String("profile-mem", "", "write memory profile to `file` once the run is done")
	memprofRate = flag.Int("profile-mem-rate", 0, "memory profiling `rate` in bytes, 0 keeps the runtime default")
)

func init() {
	hookBefore = startProfiles
	hookAfter = stopProfiles
}

// profiled is what is being run (file name, -c or repl), for the messages.
var profiled string

func startProfiles(what string) int {
	profiled = what
	if *memprofile != "" && *memprofRate > 0 {
		runtime.MemProfileRate = *memprofRate
	}
	if *cpuprofile == "" {
		return 0
	}
	f, err := os.Create(*cpuprofile)
	if err != nil {
		return log.FErrf("can't open file for cpu profile of %s: %v", what, err)
	}
	if err = pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return log.FErrf("can't start cpu profile of %s: %v", what, err)
	}
	log.Infof("Profiling cpu of %s to %s", what, *cpuprofile)
	return 0
}

func stopProfiles() int {
	if *cpuprofile != "" {
		pprof.StopCPUProfile()
		log.Infof("Wrote cpu profile of %s to %s", profiled, *cpuprofile)
	}
	if *memprofile == "" {
		return 0
	}
	f, err := os.Create(*memprofile)
	if err != nil {
		return log.FErrf("can't open file for mem profile of %s: %v", profiled, err)
	}
	defer f.Close()
	runtime.GC() // up-to-date heap statistics.
	if err = pprof.WriteHeapProfile(f); err != nil {
		return log.FErrf("can't write mem profile of %s: %v", profiled, err)
	}
	log.Infof("Wrote memory profile of %s to %s", profiled, *memprofile)
	return 0
}
