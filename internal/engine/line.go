package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/pflag"
)

// parsedLine is one timer line after comment stripping, shell
// tokenization, and option parsing.
type parsedLine struct {
	raw string

	scalars map[string]*string
	lists   map[string]*[]string

	stop      bool
	verbose   bool
	utcOffset string

	fs *pflag.FlagSet
}

// parseLine strips the trailing #-comment, tokenizes shell-style, and
// parses the tokens against the full condition option set. Unknown
// options and stray positionals are errors: a malformed line must halt
// scheduling, not be skipped.
func parseLine(raw string) (*parsedLine, error) {
	line := &parsedLine{
		raw:     raw,
		scalars: make(map[string]*string),
		lists:   make(map[string]*[]string),
	}
	fs := pflag.NewFlagSet("timer_arg", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	for i := range conditions {
		c := &conditions[i]
		for _, name := range c.variantNames() {
			option := dashed(name)
			switch c.kind {
			case kindBool:
				fs.Bool(option, false, c.help)
			case kindScalar:
				line.scalars[name] = fs.String(option, "", c.help)
			case kindList:
				line.lists[name] = fs.StringSlice(option, nil, c.help)
			}
		}
	}
	fs.BoolVar(&line.stop, "stop", false, "cancel the backup and stop processing timer lines")
	fs.BoolVar(&line.verbose, "verbose", false, "trace condition evaluation on stdout")
	fs.StringVar(&line.utcOffset, "utc-offset", "", "override the active time zone")

	tokens, err := shlex.Split(stripComment(raw))
	if err != nil {
		return nil, &LineError{Line: raw, Err: err}
	}
	if err := fs.Parse(tokens); err != nil {
		return nil, &LineError{Line: raw, Err: err}
	}
	if fs.NArg() > 0 {
		return nil, &LineError{Line: raw, Err: fmt.Errorf("unexpected arguments: %v", fs.Args())}
	}
	line.fs = fs

	// Reject malformed arguments up front, before any condition is
	// evaluated: a bad value on a line is a configuration error even
	// when evaluation would never reach it.
	for i := range conditions {
		c := &conditions[i]
		if c.validate == nil {
			continue
		}
		for _, name := range c.variantNames() {
			if !line.set(name) {
				continue
			}
			switch c.kind {
			case kindScalar:
				if err := c.validate(*line.scalars[name]); err != nil {
					return nil, &LineError{Line: raw, Err: err}
				}
			case kindList:
				for _, item := range *line.lists[name] {
					if err := c.validate(item); err != nil {
						return nil, &LineError{Line: raw, Err: err}
					}
				}
			}
		}
	}
	return line, nil
}

// set reports whether the option for a registry name appeared on the
// line.
func (l *parsedLine) set(name string) bool {
	return l.fs.Changed(dashed(name))
}

// hasCondition reports whether any scheduling condition appeared on the
// line (as opposed to environment options only).
func (l *parsedLine) hasCondition() bool {
	for i := range conditions {
		for _, name := range conditions[i].variantNames() {
			if l.set(name) {
				return true
			}
		}
	}
	return false
}

// hasEnvironment reports whether the line carried an environment option
// (verbosity or zone override).
func (l *parsedLine) hasEnvironment() bool {
	return l.fs.Changed("verbose") || l.fs.Changed("utc-offset")
}

// stripComment removes a trailing #-comment, honoring shell quoting so
// a '#' inside quotes survives tokenization.
func stripComment(s string) string {
	var quote rune
	escaped := false
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '#':
			return strings.TrimRight(s[:i], " \t")
		}
	}
	return s
}
