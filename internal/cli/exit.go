package cli

import (
	"errors"
	"fmt"
)

// Exit codes of the timer hook. burp starts a backup only on 0, so
// every failure mode maps to a non-zero code.
const (
	ExitProceed  = 0  // a timer line matched; run the backup
	ExitNoBackup = 1  // nothing matched, or a matching line said --stop
	ExitUsage    = 64 // bad invocation or bad timer ruleset (EX_USAGE)
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int    // exit code (ExitNoBackup or ExitUsage)
	Message string // human-readable message; empty for silent exits
	Err     error  // underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that reach
// the top without a code are invocation problems, so they map to
// ExitUsage rather than to a backup decision.
func GetExitCode(err error) int {
	if err == nil {
		return ExitProceed
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsage
}
