package engine

import (
	"fmt"
	"strings"
)

// Error describes a failed engine invocation. It matches the apperror sentinel
// in Kind with errors.Is and keeps the process output for diagnosis.
type Error struct {
	Kind       error
	Subcommand string
	ExitCode   int
	Stdout     string
	Stderr     string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "engine %s: %v", e.Subcommand, e.Kind)
	if e.ExitCode != 0 {
		fmt.Fprintf(&b, " (exit code %d)", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if tail := lastLine(e.Stderr); tail != "" {
		fmt.Fprintf(&b, " (stderr: %s)", tail)
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
