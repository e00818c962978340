package engine

import (
	"fmt"
	"io"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"github.com/burptools/burp-timer/internal/backup"
	"github.com/burptools/burp-timer/internal/timespec"
)

// Options configures an Evaluator.
type Options struct {
	// Now is the evaluation instant; its zone is the initial active
	// zone (overridable per ruleset with --utc-offset).
	Now time.Time

	// RemoteAddr is the requesting client's textual address, from the
	// REMOTE_ADDR environment variable. Parsed lazily: it may be
	// absent as long as no lan/subnet condition needs it.
	RemoteAddr string

	// Verbose enables trace output from the start; rulesets can also
	// switch it on mid-evaluation with --verbose.
	Verbose bool

	// Out receives trace output. Defaults to io.Discard.
	Out io.Writer

	Logger *slog.Logger
}

// Evaluator decides whether a backup should run by matching timer rule
// lines against the prior backup's state. One Evaluator serves one
// invocation; evaluating the same ruleset twice against the same state
// yields the same decision.
type Evaluator struct {
	record  *backup.Record
	remote  string
	now     time.Time
	baseLoc *time.Location
	loc     *time.Location
	verbose bool
	out     io.Writer
	logger  *slog.Logger

	addr   netip.Addr
	hasAdr bool
}

// New builds an Evaluator over the given prior-backup record.
func New(record *backup.Record, opts Options) *Evaluator {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	loc := opts.Now.Location()
	return &Evaluator{
		record:  record,
		remote:  opts.RemoteAddr,
		now:     opts.Now,
		baseLoc: loc,
		loc:     loc,
		verbose: opts.Verbose,
		out:     out,
		logger:  logger.With("component", "engine"),
	}
}

// Check evaluates the ruleset lines in order and reports whether the
// backup should proceed. A matching line ends evaluation: with --stop
// the answer is false, otherwise true. Parse and configuration errors
// halt the whole evaluation; they are never skipped over.
//
// Environment options scope by line shape: on a line with no
// conditions they update the evaluator for all later lines; on a line
// that also carries conditions they apply to that line only.
func (e *Evaluator) Check(lines []string) (bool, error) {
	for _, raw := range lines {
		line, err := parseLine(raw)
		if err != nil {
			return false, err
		}
		savedVerbose, savedLoc := e.verbose, e.loc
		if line.fs.Changed("verbose") {
			e.verbose = true
		}
		if line.fs.Changed("utc-offset") {
			if err := e.setUTCOffset(line.utcOffset); err != nil {
				return false, &LineError{Line: raw, Err: err}
			}
		}
		matched, err := e.evalLine(line)
		if err != nil {
			return false, err
		}
		if matched {
			e.tracef("Matched: %s", raw)
			if line.stop {
				return false, nil
			}
			return true, nil
		}
		if line.hasCondition() {
			e.verbose, e.loc = savedVerbose, savedLoc
		}
	}
	e.tracef("Nothing matched.")
	return false, nil
}

// evalLine applies AND semantics across the line's conditions in
// registry order, abandoning the line on the first failure. Lines with
// only environment options are non-matching but legal; lines with
// nothing recognized are a configuration error.
func (e *Evaluator) evalLine(line *parsedLine) (bool, error) {
	if line.set("after") && line.set("time") {
		return false, &IncompatibleOptionsError{Line: line.raw}
	}
	if !line.hasCondition() {
		if line.hasEnvironment() {
			return false, nil
		}
		return false, &NoConditionsError{Line: line.raw}
	}
	ctx := newContext(e.now.In(e.loc))
	for i := range conditions {
		c := &conditions[i]
		for _, name := range c.variantNames() {
			if !line.set(name) {
				continue
			}
			ok, err := e.applyCondition(ctx, c, line, name)
			if err != nil {
				return false, err
			}
			if !ok {
				e.traceFailed(line, c, name)
				return false, nil
			}
		}
	}
	return true, nil
}

// applyCondition evaluates one present option, negating the result for
// not_ variants. List conditions go through the disjunction driver.
func (e *Evaluator) applyCondition(ctx *Context, c *condition, line *parsedLine, name string) (bool, error) {
	var ok bool
	var err error
	switch c.kind {
	case kindBool:
		ok, err = c.eval(e, ctx, "")
	case kindScalar:
		ok, err = c.eval(e, ctx, *line.scalars[name])
	case kindList:
		ok, err = e.disjunction(ctx, c, *line.lists[name])
	}
	if err != nil {
		return false, err
	}
	if strings.HasPrefix(name, "not_") {
		ok = !ok
	}
	return ok, nil
}

// disjunction feeds each listed item to the condition and succeeds on
// the first hit. Items that fail to parse propagate their error; they
// are never skipped.
func (e *Evaluator) disjunction(ctx *Context, c *condition, items []string) (bool, error) {
	for _, item := range items {
		ok, err := c.eval(e, ctx, item)
		if err != nil {
			return false, err
		}
		if ok {
			if len(items) > 1 {
				e.tracef("Matched item: %s", item)
			}
			return true, nil
		}
	}
	return false, nil
}

// clientAddr parses the requester address on first use.
func (e *Evaluator) clientAddr() (netip.Addr, error) {
	if e.hasAdr {
		return e.addr, nil
	}
	if e.remote == "" {
		return netip.Addr{}, fmt.Errorf("REMOTE_ADDR is not set")
	}
	addr, err := netip.ParseAddr(e.remote)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("bad client address %q: %w", e.remote, err)
	}
	e.addr = addr
	e.hasAdr = true
	return addr, nil
}

// setUTCOffset switches the active zone; "-" restores the initial one.
func (e *Evaluator) setUTCOffset(text string) error {
	if text == "-" {
		e.loc = e.baseLoc
		return nil
	}
	loc, err := timespec.ParseUTCOffset(text)
	if err != nil {
		return err
	}
	e.loc = loc
	e.logger.Debug("active zone overridden", "offset", text)
	return nil
}

func (e *Evaluator) traceFailed(line *parsedLine, c *condition, name string) {
	switch c.kind {
	case kindBool:
		e.tracef("Failed condition: --%s", dashed(name))
	case kindScalar:
		e.tracef("Failed condition: --%s %s", dashed(name), *line.scalars[name])
	case kindList:
		e.tracef("Failed condition: --%s %s", dashed(name), strings.Join(*line.lists[name], ","))
	}
}

func (e *Evaluator) tracef(format string, args ...any) {
	if !e.verbose {
		return
	}
	fmt.Fprintf(e.out, format+"\n", args...)
}
