package timespec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FormatError reports a token that does not fully match its grammar.
type FormatError struct {
	Text    string // offending input
	Pattern string // expected pattern
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed token %q: expected %s", e.Text, e.Pattern)
}

// Grammar patterns, exported for usage text.
const (
	BurpDurationPattern = `^(\d+)([smhdwn])$`
	TimeOfDayPattern    = `^((?P<days>[+-]?\d+)[T ]|T?)(?P<hours>[+-]?\d+)(:(?P<minutes>[+-]?\d+)(:(?P<seconds>[+-]?\d+))?)?$`
	intervalPattern     = `^(?P<start>[0-9:T +-]+)\.\.(?P<end>[0-9:T +-]+)$`
	utcOffsetPattern    = `^([+-])(\d\d)(\d\d)?$`
)

var (
	burpDurationRE = regexp.MustCompile(BurpDurationPattern)
	timeOfDayRE    = regexp.MustCompile(TimeOfDayPattern)
	intervalRE     = regexp.MustCompile(intervalPattern)
	utcOffsetRE    = regexp.MustCompile(utcOffsetPattern)
)

// burpUnitSeconds maps a duration unit suffix to its length in seconds.
// "n" is the burp convention for a nominal month of 30 days.
var burpUnitSeconds = map[string]int64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 86400,
	"w": 7 * 86400,
	"n": 30 * 86400,
}

// ParseBurpDuration parses an unsigned unit-suffixed duration such as
// "20h" or "3d". Units are s, m, h, d, w and n (30 days).
func ParseBurpDuration(text string) (time.Duration, error) {
	m := burpDurationRE.FindStringSubmatch(text)
	if m == nil {
		return 0, &FormatError{Text: text, Pattern: BurpDurationPattern}
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, &FormatError{Text: text, Pattern: BurpDurationPattern}
	}
	return time.Duration(n*burpUnitSeconds[m[2]]) * time.Second, nil
}

// ParseTimeOfDay parses a signed day/time-of-day offset: an optional
// signed day count, a "T" or space separator, a signed hour, and optional
// ":minute[:second]" fields. The result is the sum of all fields.
func ParseTimeOfDay(text string) (time.Duration, error) {
	m := timeOfDayRE.FindStringSubmatch(text)
	if m == nil {
		return 0, &FormatError{Text: text, Pattern: TimeOfDayPattern}
	}
	fields := []struct {
		group string
		unit  time.Duration
	}{
		{"days", 24 * time.Hour},
		{"hours", time.Hour},
		{"minutes", time.Minute},
		{"seconds", time.Second},
	}
	var total time.Duration
	for _, f := range fields {
		s := m[timeOfDayRE.SubexpIndex(f.group)]
		if s == "" {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, &FormatError{Text: text, Pattern: TimeOfDayPattern}
		}
		total += time.Duration(n) * f.unit
	}
	return total, nil
}

// Interval is a pair of offsets from midnight of an anchor date. Offsets
// may exceed 24h or be negative, reaching into adjacent days. No ordering
// between Start and End is enforced at parse time; the comparison that
// uses the interval decides whether it is satisfiable.
type Interval struct {
	Start time.Duration
	End   time.Duration
}

// ParseInterval parses "<time-of-day>..<time-of-day>". Both sides follow
// the ParseTimeOfDay grammar.
func ParseInterval(text string) (Interval, error) {
	m := intervalRE.FindStringSubmatch(text)
	if m == nil {
		return Interval{}, &FormatError{Text: text, Pattern: intervalPattern}
	}
	start, err := ParseTimeOfDay(m[intervalRE.SubexpIndex("start")])
	if err != nil {
		return Interval{}, err
	}
	end, err := ParseTimeOfDay(m[intervalRE.SubexpIndex("end")])
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: end}, nil
}

// Weekday indexes days Mon=0 through Sun=6, the ordering the rule
// grammar uses.
type Weekday int

var weekdayNames = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (d Weekday) String() string {
	if d < 0 || int(d) >= len(weekdayNames) {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// WeekdayNames returns the accepted weekday tokens in order.
func WeekdayNames() []string {
	names := make([]string, len(weekdayNames))
	copy(names, weekdayNames[:])
	return names
}

// WeekdayOf converts a time.Weekday (Sunday=0) to the Mon=0 indexing.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// ParseWeekday parses an exact weekday name, Mon through Sun.
func ParseWeekday(text string) (Weekday, error) {
	for i, name := range weekdayNames {
		if name == text {
			return Weekday(i), nil
		}
	}
	return 0, &FormatError{Text: text, Pattern: strings.Join(weekdayNames[:], "|")}
}

// ParseUTCOffset parses a UTC offset token: "Z" for UTC, or a sign
// followed by two hour digits and optional two minute digits ("+0300",
// "-07", "+1200").
func ParseUTCOffset(text string) (*time.Location, error) {
	if text == "Z" {
		return time.UTC, nil
	}
	m := utcOffsetRE.FindStringSubmatch(text)
	if m == nil {
		return nil, &FormatError{Text: text, Pattern: "Z or " + utcOffsetPattern}
	}
	hours, _ := strconv.Atoi(m[2])
	minutes := 0
	if m[3] != "" {
		minutes, _ = strconv.Atoi(m[3])
	}
	seconds := hours*3600 + minutes*60
	if m[1] == "-" {
		seconds = -seconds
	}
	return time.FixedZone(text, seconds), nil
}
