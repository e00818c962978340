package engine

import (
	"time"

	"github.com/burptools/burp-timer/internal/timespec"
)

// Context is the mutable per-line evaluation state: the anchor date
// that day-relative conditions are judged against. It starts at the
// current instant's calendar date and is shifted by the day-anchor
// conditions (after, time).
type Context struct {
	now    time.Time // current instant in the active zone
	anchor time.Time // midnight of the anchor date, in the active zone
}

func newContext(now time.Time) *Context {
	c := &Context{now: now}
	c.setAnchor(now)
	return c
}

// setAnchor moves the anchor to the calendar date of t.
func (c *Context) setAnchor(t time.Time) {
	year, month, day := t.Date()
	c.anchor = time.Date(year, month, day, 0, 0, 0, 0, c.now.Location())
}

// at returns the instant at the given offset from the anchor midnight.
// Offsets beyond 24h or below zero reach into adjacent days.
func (c *Context) at(offset time.Duration) time.Time {
	return c.anchor.Add(offset)
}

// weekday returns the anchor date's day of week, Mon=0.
func (c *Context) weekday() timespec.Weekday {
	return timespec.WeekdayOf(c.anchor)
}
