package main

// Exit codes for the cohortlens CLI.
const (
	ExitOK          = 0 // Success.
	ExitError       = 1 // Bad arguments, config or dataset.
	ExitRulesFailed = 2 // check: at least one critical rule fired.
)

// exitCodeError carries a non-zero exit code through cobra's error handling.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

// ExitCode returns the process exit code.
func (e *exitCodeError) ExitCode() int { return e.code }
