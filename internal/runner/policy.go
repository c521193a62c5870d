package runner

// Policy decides how a failed invocation affects the process.
type Policy int

const (
	// Fatal failures terminate with a non-zero status (bootstrap, apply).
	Fatal Policy = iota
	// LogOnly failures are logged and the process still exits 0
	// (introspection and ad hoc scripts).
	LogOnly
)

func (p Policy) String() string {
	if p == LogOnly {
		return "log-only"
	}
	return "fatal"
}

// ExitCode maps an invocation error onto a process exit status.
func (p Policy) ExitCode(err error) int {
	if err == nil || p == LogOnly {
		return 0
	}
	return 1
}
