package timespec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBurpDuration(t *testing.T) {
	cases := []struct {
		text string
		want time.Duration
	}{
		{"1s", time.Second},
		{"45m", 45 * time.Minute},
		{"20h", 20 * time.Hour},
		{"3d", 3 * 24 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
		{"1n", 30 * 24 * time.Hour},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got, err := ParseBurpDuration(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseBurpDurationRejectsPartialMatches(t *testing.T) {
	for _, text := range []string{"", "3", "h", "3dd", " 3d", "3d ", "-3d", "3x", "3d4h"} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseBurpDuration(text)
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, text, fe.Text)
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		text string
		want time.Duration
	}{
		{"1", time.Hour},
		{"T1", time.Hour},
		{"01:02:03", time.Hour + 2*time.Minute + 3*time.Second},
		{"T01:02:03", time.Hour + 2*time.Minute + 3*time.Second},
		{"1 02:03:04", 26*time.Hour + 3*time.Minute + 4*time.Second},
		{"1T02:03:04", 26*time.Hour + 3*time.Minute + 4*time.Second},
		{"1T2", 26 * time.Hour},
		{"1 2", 26 * time.Hour},
		{"1T2:0", 26 * time.Hour},
		{"1T2:3", 26*time.Hour + 3*time.Minute},
		{"38", 38 * time.Hour},
		{"-10", -10 * time.Hour},
		// Fields are independently signed and summed, not normalized.
		{"-1 -02", -26 * time.Hour},
		{"-1 -02:-03:-04", -(26*time.Hour + 3*time.Minute + 4*time.Second)},
		{"-1T-02:-03:-04", -(26*time.Hour + 3*time.Minute + 4*time.Second)},
		{"-1T2:3", -24*time.Hour + 2*time.Hour + 3*time.Minute},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got, err := ParseTimeOfDay(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseTimeOfDayRejectsLeftovers(t *testing.T) {
	for _, text := range []string{"", "T", "1T2:3:4:5", "1d", "12:", "1T2x", "one"} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseTimeOfDay(text)
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
		})
	}
}

func TestParseInterval(t *testing.T) {
	got, err := ParseInterval("1T2:3..4T5:6")
	require.NoError(t, err)
	assert.Equal(t, Interval{
		Start: 26*time.Hour + 3*time.Minute,
		End:   4*24*time.Hour + 5*time.Hour + 6*time.Minute,
	}, got)
}

func TestParseIntervalNegative(t *testing.T) {
	got, err := ParseInterval("-1T2:3..-4T5:6")
	require.NoError(t, err)
	assert.Equal(t, Interval{
		Start: -24*time.Hour + 2*time.Hour + 3*time.Minute,
		End:   -4*24*time.Hour + 5*time.Hour + 6*time.Minute,
	}, got)
}

func TestParseIntervalAllowsReversedBounds(t *testing.T) {
	// Ordering is validated by the comparison that uses the interval,
	// not at parse time.
	got, err := ParseInterval("15..14")
	require.NoError(t, err)
	assert.Equal(t, Interval{Start: 15 * time.Hour, End: 14 * time.Hour}, got)
}

func TestParseIntervalRejectsMalformed(t *testing.T) {
	for _, text := range []string{"", "14", "14..", "..15", "14..15..16", "a..b"} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseInterval(text)
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
		})
	}
}

func TestParseWeekday(t *testing.T) {
	for i, name := range WeekdayNames() {
		got, err := ParseWeekday(name)
		require.NoError(t, err)
		assert.Equal(t, Weekday(i), got)
		assert.Equal(t, name, got.String())
	}
	_, err := ParseWeekday("Monday")
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	_, err = ParseWeekday("mon")
	require.ErrorAs(t, err, &fe)
}

func TestWeekdayOf(t *testing.T) {
	// 2017-04-24 was a Monday.
	monday := time.Date(2017, 4, 24, 14, 46, 5, 0, time.UTC)
	assert.Equal(t, Weekday(0), WeekdayOf(monday))
	assert.Equal(t, "Mon", WeekdayOf(monday).String())
	sunday := monday.AddDate(0, 0, -1)
	assert.Equal(t, Weekday(6), WeekdayOf(sunday))
}

func TestParseUTCOffset(t *testing.T) {
	cases := []struct {
		text    string
		seconds int
	}{
		{"Z", 0},
		{"+0300", 3 * 3600},
		{"-0123", -(3600 + 23*60)},
		{"+12", 12 * 3600},
		{"-07", -7 * 3600},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			loc, err := ParseUTCOffset(tc.text)
			require.NoError(t, err)
			_, offset := time.Date(2017, 4, 24, 0, 0, 0, 0, loc).Zone()
			assert.Equal(t, tc.seconds, offset)
		})
	}
	for _, text := range []string{"", "-", "0300", "+3", "+030", "+03000", "UTC"} {
		_, err := ParseUTCOffset(text)
		var fe *FormatError
		require.ErrorAs(t, err, &fe, "text %q", text)
	}
}
