package backup

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/burptools/burp-timer/internal/timespec"
)

// stampLayout is the local-time part of a burp timestamp line.
const stampLayout = "2006-01-02 15:04:05"

// MissingResourceError reports a backup metadata file that could not be
// read. It is fatal for the timestamp file when a timestamp is required;
// a missing backup log is tolerated and handled inside IsContinued.
type MissingResourceError struct {
	Path string
	Err  error
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("missing backup resource %s: %v", e.Path, e.Err)
}

func (e *MissingResourceError) Unwrap() error { return e.Err }

// ReadTimestamp parses a burp timestamp file: one line holding a
// whitespace-delimited index (ignored), a local time, and an optional
// UTC offset token. "Z" means UTC, "±HHMM"/"±HH" a fixed zone, and "-"
// or an absent token means loc, the evaluator's active zone.
func ReadTimestamp(filename string, loc *time.Location) (time.Time, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return time.Time{}, &MissingResourceError{Path: filename, Err: err}
	}
	line, _, _ := strings.Cut(string(data), "\n")
	line = strings.TrimRight(line, "\r")
	_, rest, ok := strings.Cut(line, " ")
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp file %s: no timestamp after index in %q", filename, line)
	}
	ts, err := parseStamp(strings.TrimSpace(rest), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp file %s: %w", filename, err)
	}
	return ts, nil
}

func parseStamp(text string, loc *time.Location) (time.Time, error) {
	base := text
	offset := ""
	if len(text) > len(stampLayout) {
		base = text[:len(stampLayout)]
		offset = strings.TrimSpace(text[len(stampLayout):])
	}
	if offset != "" && offset != "-" {
		zone, err := timespec.ParseUTCOffset(offset)
		if err != nil {
			return time.Time{}, err
		}
		loc = zone
	}
	ts, err := time.ParseInLocation(stampLayout, base, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", text, err)
	}
	return ts, nil
}

// WriteTimestamp writes a timestamp file in the timezone-aware format:
// a 7-digit zero-padded index, the local time, and the UTC offset.
func WriteTimestamp(filename string, index int, ts time.Time) error {
	line := fmt.Sprintf("%07d %s\n", index, ts.Format(stampLayout+" -0700"))
	return os.WriteFile(filename, []byte(line), 0o644)
}

// WriteTimestampLegacy omits the offset field, for compatibility with
// burp servers that predate timezone-aware timestamps.
func WriteTimestampLegacy(filename string, index int, ts time.Time) error {
	line := fmt.Sprintf("%07d %s\n", index, ts.Format(stampLayout))
	return os.WriteFile(filename, []byte(line), 0o644)
}
