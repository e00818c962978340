// Package engine evaluates burp timer rule lines against the state of
// the prior backup and the current instant, deciding whether a new
// backup should run now.
//
// A ruleset is a list of lines. Conditions on one line AND together;
// lines OR together; a matching line carrying --stop forces "do not
// proceed" and ends evaluation.
//
// Conditions are drawn from a fixed registry and are evaluated in
// registry order, not in the order they were written on the line. The
// order matters: the day-anchor conditions (after, time) shift the
// calendar date that the day-relative conditions (weekday, prior_before,
// not_time) are judged against, so they must run first. The anchor date
// lives in a per-line Context that is created at line start and
// discarded at line end; nothing crosses lines.
//
// Evaluation is single-threaded and deterministic: the same ruleset,
// instant and backup state always produce the same decision.
package engine
