package debug

// Tselector names a class of debug output. Output is enabled per-selector
// via the SCHEDDEBUG environment variable (a ';'-separated list).
type Tselector string

const (
	ALWAYS Tselector = "ALWAYS"
	ERROR  Tselector = "ERROR"

	// Scheduler components (see sched package).
	INSERT   Tselector = "INSERT"
	ROTATE   Tselector = "ROTATE"
	WAIT     Tselector = "WAIT"
	LOADBAL  Tselector = "LOADBAL"
	PARK     Tselector = "PARK"
	SIGNAL   Tselector = "SIGNAL"
	PRIORITY Tselector = "PRIORITY"
	REMOVE   Tselector = "REMOVE"

	// Benchmarking / simulation.
	PERF Tselector = "PERF"
	TEST Tselector = "TEST"
)
