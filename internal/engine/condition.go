package engine

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/burptools/burp-timer/internal/timespec"
)

// kind describes a condition's argument arity.
type kind int

const (
	kindBool   kind = iota // no argument
	kindScalar             // one argument
	kindList               // repeatable, comma-joined arguments
)

// condition is one entry of the fixed registry. eval receives the
// evaluator, the per-line context, and a single raw argument: empty for
// bool conditions, the option value for scalars, and one comma-separated
// item at a time for lists (the disjunction driver feeds them).
type condition struct {
	name       string
	kind       kind
	invertible bool
	metavar    string
	help       string
	// validate rejects a malformed argument at line-parse time, so a
	// bad value is an error even when an earlier condition on the
	// line already failed.
	validate func(arg string) error
	eval     func(e *Evaluator, ctx *Context, arg string) (bool, error)
}

// variantNames returns the option names a condition answers to: the base
// name plus its not_ form when invertible.
func (c *condition) variantNames() []string {
	if c.invertible {
		return []string{c.name, "not_" + c.name}
	}
	return []string{c.name}
}

// dashed converts a registry name to its option spelling.
func dashed(name string) string { return strings.ReplaceAll(name, "_", "-") }

// conditions is the registry, in evaluation order. after and time stay
// ahead of every day-relative condition because they move the anchor
// date. not_time reads the anchor without moving it: only time shifts
// the anchor, an asymmetry operators rely on.
var conditions = []condition{
	{
		name: "new", kind: kindBool, invertible: true,
		help: "there is no prior backup",
		eval: func(e *Evaluator, _ *Context, _ string) (bool, error) {
			return e.record.IsNew(), nil
		},
	},
	{
		name: "continued", kind: kindBool, invertible: true,
		help: "prior backup was interrupted and continued",
		eval: func(e *Evaluator, _ *Context, _ string) (bool, error) {
			return e.record.IsContinued(), nil
		},
	},
	{
		name: "lan", kind: kindBool, invertible: true,
		help: "client address is private",
		eval: evalLAN,
	},
	{
		name: "subnet", kind: kindList, invertible: true, metavar: "IP-NETWORK",
		help:     "client address belongs to any of the specified subnets",
		validate: validPrefix,
		eval:     evalSubnet,
	},
	{
		name: "after", kind: kindScalar, invertible: false, metavar: "TIME-OF-DAY",
		help: "current day starts after the specified time-of-day; " +
			"moves the date seen by --(not-)weekday, --(not-)prior-before and --not-time; " +
			"incompatible with --time",
		validate: validTimeOfDay,
		eval:     evalAfter,
	},
	{
		name: "time", kind: kindList, invertible: false, metavar: "TIME-OF-DAY..TIME-OF-DAY",
		help: "current time belongs to any of the specified intervals; " +
			"moves the date seen by --(not-)weekday, --(not-)prior-before and --not-time " +
			"for intervals outside 0..24; incompatible with --after",
		validate: validInterval,
		eval:     evalTime,
	},
	{
		name: "not_time", kind: kindList, invertible: false, metavar: "TIME-OF-DAY..TIME-OF-DAY",
		help: "current time belongs to none of the specified intervals; " +
			"does not move the anchor date; compatible with --after and --time",
		validate: validInterval,
		eval:     evalTimeMember,
	},
	{
		name: "weekday", kind: kindList, invertible: true, metavar: "WEEKDAY",
		help:     "anchor date's day of week is one of the specified values",
		validate: validWeekday,
		eval:     evalWeekday,
	},
	{
		name: "init_exceeds", kind: kindScalar, invertible: true, metavar: "DURATION",
		help:     "attempts to create an initial backup took longer than the specified duration",
		validate: validDuration,
		eval:     evalInitExceeds,
	},
	{
		name: "age_exceeds", kind: kindScalar, invertible: true, metavar: "DURATION",
		help:     "prior backup is older than the specified duration (or there is no prior backup)",
		validate: validDuration,
		eval:     evalAgeExceeds,
	},
	{
		name: "prior_before", kind: kindScalar, invertible: true, metavar: "TIME-OF-DAY",
		help:     "prior backup was created before the specified time-of-day on the anchor date",
		validate: validTimeOfDay,
		eval:     evalPriorBefore,
	},
}

func validTimeOfDay(arg string) error {
	_, err := timespec.ParseTimeOfDay(arg)
	return err
}

func validInterval(arg string) error {
	_, err := timespec.ParseInterval(arg)
	return err
}

func validWeekday(arg string) error {
	_, err := timespec.ParseWeekday(arg)
	return err
}

func validDuration(arg string) error {
	_, err := timespec.ParseBurpDuration(arg)
	return err
}

func validPrefix(arg string) error {
	_, err := parsePrefix(arg)
	return err
}

func evalLAN(e *Evaluator, _ *Context, _ string) (bool, error) {
	addr, err := e.clientAddr()
	if err != nil {
		return false, err
	}
	a := addr.Unmap()
	return a.IsPrivate() || a.IsLoopback() || a.IsLinkLocalUnicast(), nil
}

func evalSubnet(e *Evaluator, _ *Context, arg string) (bool, error) {
	prefix, err := parsePrefix(arg)
	if err != nil {
		return false, err
	}
	addr, err := e.clientAddr()
	if err != nil {
		return false, err
	}
	return prefix.Contains(addr.Unmap()), nil
}

// parsePrefix accepts a CIDR prefix with no host bits set, or a bare
// address standing for its single-address prefix.
func parsePrefix(text string) (netip.Prefix, error) {
	if !strings.Contains(text, "/") {
		addr, err := netip.ParseAddr(text)
		if err != nil {
			return netip.Prefix{}, &timespec.FormatError{Text: text, Pattern: "IP address or CIDR prefix"}
		}
		return netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()), nil
	}
	prefix, err := netip.ParsePrefix(text)
	if err != nil {
		return netip.Prefix{}, &timespec.FormatError{Text: text, Pattern: "IP address or CIDR prefix"}
	}
	if prefix != prefix.Masked() {
		return netip.Prefix{}, fmt.Errorf("subnet %q has host bits set", text)
	}
	return prefix, nil
}

func evalAfter(_ *Evaluator, ctx *Context, arg string) (bool, error) {
	offset, err := timespec.ParseTimeOfDay(arg)
	if err != nil {
		return false, err
	}
	// after always succeeds; its job is to move the anchor date.
	ctx.setAnchor(ctx.now.Add(-offset))
	return true, nil
}

func evalTime(_ *Evaluator, ctx *Context, arg string) (bool, error) {
	interval, err := timespec.ParseInterval(arg)
	if err != nil {
		return false, err
	}
	ctx.setAnchor(ctx.now.Add(-interval.Start))
	return ctx.now.Before(ctx.at(interval.End)), nil
}

// evalTimeMember tests [start, end) membership against the current
// anchor without moving it. Registered as not_time, so the driver's
// generic not_ negation turns it into "belongs to none".
func evalTimeMember(_ *Evaluator, ctx *Context, arg string) (bool, error) {
	interval, err := timespec.ParseInterval(arg)
	if err != nil {
		return false, err
	}
	return !ctx.now.Before(ctx.at(interval.Start)) && ctx.now.Before(ctx.at(interval.End)), nil
}

func evalWeekday(_ *Evaluator, ctx *Context, arg string) (bool, error) {
	day, err := timespec.ParseWeekday(arg)
	if err != nil {
		return false, err
	}
	return ctx.weekday() == day, nil
}

func evalInitExceeds(e *Evaluator, _ *Context, arg string) (bool, error) {
	maxAge, err := timespec.ParseBurpDuration(arg)
	if err != nil {
		return false, err
	}
	return e.record.InitExceeds(maxAge)
}

func evalAgeExceeds(e *Evaluator, _ *Context, arg string) (bool, error) {
	maxAge, err := timespec.ParseBurpDuration(arg)
	if err != nil {
		return false, err
	}
	return e.record.AgeExceeds(maxAge)
}

func evalPriorBefore(e *Evaluator, ctx *Context, arg string) (bool, error) {
	offset, err := timespec.ParseTimeOfDay(arg)
	if err != nil {
		return false, err
	}
	prior, err := e.record.Timestamp()
	if err != nil {
		return false, err
	}
	return ctx.at(offset).After(prior), nil
}

// OptionHelp renders the condition vocabulary and argument formats for
// the hook's usage text.
func OptionHelp() string {
	var b strings.Builder
	b.WriteString("conditions (per timer line):\n")
	for i := range conditions {
		c := &conditions[i]
		for _, name := range c.variantNames() {
			help := c.help
			if strings.HasPrefix(name, "not_") && name != "not_time" {
				help = "inverted version of --" + dashed(c.name)
			}
			writeOption(&b, optionSyntax(c, name), help)
		}
	}
	b.WriteString("\nother options:\n")
	writeOption(&b, "--stop", "cancel the backup and stop processing timer lines")
	writeOption(&b, "--verbose", "trace condition evaluation on stdout")
	writeOption(&b, "--utc-offset +HHMM", "override the active time zone; '-' restores the local zone")
	b.WriteString("\nargument formats:\n")
	writeFormat(&b, "DURATION", timespec.BurpDurationPattern)
	writeFormat(&b, "TIME-OF-DAY", timespec.TimeOfDayPattern)
	writeFormat(&b, "WEEKDAY", strings.Join(timespec.WeekdayNames(), "|"))
	writeFormat(&b, "IP-NETWORK", "CIDR prefix or single address")
	return b.String()
}

func optionSyntax(c *condition, name string) string {
	syntax := "--" + dashed(name)
	if c.metavar != "" {
		syntax += " " + c.metavar
		if c.kind == kindList {
			syntax += ",..."
		}
	}
	return syntax
}

func writeOption(b *strings.Builder, syntax, help string) {
	fmt.Fprintf(b, "  %-46s%s\n", syntax, help)
}

func writeFormat(b *strings.Builder, name, pattern string) {
	fmt.Fprintf(b, "  %-22s%s\n", name, pattern)
}
