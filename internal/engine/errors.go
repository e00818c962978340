package engine

import (
	"errors"
	"fmt"
)

// IncompatibleOptionsError reports a line that sets both --after and
// --time. Both shift the anchor date, so their combination on one line
// is ambiguous and rejected regardless of argument order.
type IncompatibleOptionsError struct {
	Line string
}

func (e *IncompatibleOptionsError) Error() string {
	return fmt.Sprintf("options --after and --time are not compatible in line %q", e.Line)
}

// NoConditionsError reports a line with no recognized condition and no
// environment option. An empty line is a configuration mistake, not an
// always-matching rule.
type NoConditionsError struct {
	Line string
}

func (e *NoConditionsError) Error() string {
	return fmt.Sprintf("no conditions found in line %q", e.Line)
}

// LineError wraps a tokenization or option parse failure with the line
// it occurred on.
type LineError struct {
	Line string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("bad timer line %q: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is a ruleset configuration problem,
// as opposed to an environmental failure such as unreadable backup
// metadata. Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	var incompatible *IncompatibleOptionsError
	var noConditions *NoConditionsError
	var line *LineError
	return errors.As(err, &incompatible) || errors.As(err, &noConditions) || errors.As(err, &line)
}
