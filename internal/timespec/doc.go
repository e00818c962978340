// Package timespec parses the compact token grammar used by burp timer
// rules: unit-suffixed durations (age thresholds), signed day/time-of-day
// offsets, time-of-day intervals, and weekday names.
//
// Every parser is a fullmatch parser: leftover or unmatched characters
// are an error, never a silent partial parse. Failures are reported as
// *FormatError carrying the offending text and the expected pattern.
//
// A time-of-day token is a SUM of independently signed fields, not a
// normalized clock time: "1T2" is one day plus two hours, and "-1 -02"
// is minus one day minus two hours (a net negative span), not "2 AM of
// the day before".
package timespec
