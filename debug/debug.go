// Package debug provides the scheduler's selector-gated logging, in the
// style of sigmaos's debug package: output is controlled by an
// environment variable listing the selectors of interest, rather than a
// single global verbosity level.
package debug

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
)

const envVar = "SCHEDDEBUG"

func init() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
}

// debugLabels re-reads SCHEDDEBUG on every call, same as the teacher's
// debugLabels() does, so tests (and long-running processes) can toggle it
// at runtime via os.Setenv.
func debugLabels() map[Tselector]bool {
	m := make(map[Tselector]bool)
	s := os.Getenv(envVar)
	if s == "" {
		return m
	}
	for _, l := range strings.Split(s, ";") {
		m[Tselector(l)] = true
	}
	return m
}

// WillBePrinted reports whether a DPrintf with this selector would
// actually produce output, so that callers can skip building an
// expensive log line (the way schedsrv/schedd.go's stats loop checks
// db.WillBePrinted before starting a per-second reporting goroutine).
func WillBePrinted(selector Tselector) bool {
	if selector == ALWAYS {
		return true
	}
	return debugLabels()[selector]
}

func DPrintf(selector Tselector, format string, v ...interface{}) {
	if !WillBePrinted(selector) {
		return
	}
	log.Printf("%v %v", selector, fmt.Sprintf(format, v...))
}

// DFatalf logs the caller's location and the formatted message, then
// terminates the process. Used at the boundary where a scheduler
// invariant violation (see sched.ErrInvalidSchedulerState) is judged
// unrecoverable by the caller.
func DFatalf(format string, v ...interface{}) {
	pc, file, line, ok := runtime.Caller(1)
	if fn := runtime.FuncForPC(pc); ok && fn != nil {
		log.Fatalf("FATAL %v %v:%v %v", fn.Name(), file, line, fmt.Sprintf(format, v...))
	} else {
		log.Fatalf("FATAL (missing caller details) %v", fmt.Sprintf(format, v...))
	}
}
