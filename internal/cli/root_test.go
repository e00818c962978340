package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burptools/burp-timer/internal/testutil"
)

type hookRun struct {
	code int
	out  string
	err  string
}

// invoke runs the command the way burp would, with a frozen clock and
// captured streams.
func invoke(t *testing.T, now time.Time, remote string, args ...string) hookRun {
	t.Helper()
	opts := &RootOptions{
		Now:        now,
		RemoteAddr: remote,
		Logger:     testutil.Logger(t),
	}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	code := executeWith(opts, args, out, errOut)
	return hookRun{code: code, out: out.String(), err: errOut.String()}
}

// hookArgs builds the five fixed positionals around a prior-backup
// path, plus the given timer lines.
func hookArgs(t *testing.T, priorPath string, lines ...string) []string {
	t.Helper()
	dataPath := t.TempDir()
	args := []string{"testclient", priorPath, dataPath, "reserved1", "reserved2"}
	return append(args, lines...)
}

func frozenNow(t *testing.T) time.Time {
	return testutil.Instant(t, "2017-04-24 14:46:05") // a Monday
}

func agedBackup(t *testing.T, now time.Time, age time.Duration) string {
	t.Helper()
	path := testutil.NewBackupPath(t)
	testutil.WriteBackup(t, path, now.Add(-age))
	return path
}

func TestExitProceedOnMatch(t *testing.T) {
	now := frozenNow(t)
	prior := agedBackup(t, now, 20*time.Hour)

	run := invoke(t, now, "", hookArgs(t, prior, "--age-exceeds 19h")...)
	assert.Equal(t, ExitProceed, run.code)
	assert.Empty(t, run.out)
}

func TestExitNoBackupWhenNothingMatches(t *testing.T) {
	now := frozenNow(t)
	prior := agedBackup(t, now, 20*time.Hour)

	run := invoke(t, now, "", hookArgs(t, prior, "--age-exceeds 21h")...)
	assert.Equal(t, ExitNoBackup, run.code)
}

func TestExitNoBackupOnStop(t *testing.T) {
	now := frozenNow(t)
	prior := agedBackup(t, now, 20*time.Hour)

	run := invoke(t, now, "10.10.10.10",
		hookArgs(t, prior, "--lan --stop", "--age-exceeds 19h")...)
	assert.Equal(t, ExitNoBackup, run.code)
}

func TestMultipleTimerLines(t *testing.T) {
	now := frozenNow(t)
	prior := agedBackup(t, now, 20*time.Hour)

	run := invoke(t, now, "8.8.8.8",
		hookArgs(t, prior, "--lan", "--age-exceeds 19h")...)
	assert.Equal(t, ExitProceed, run.code)
}

func TestVerboseTraceOnStdout(t *testing.T) {
	now := frozenNow(t)
	prior := agedBackup(t, now, 20*time.Hour)

	run := invoke(t, now, "", hookArgs(t, prior, "--verbose", "--age-exceeds 19h")...)
	assert.Equal(t, ExitProceed, run.code)
	assert.Equal(t, "Matched: --age-exceeds 19h\n", run.out)
}

func TestHelpExitsUsage(t *testing.T) {
	now := frozenNow(t)
	prior := agedBackup(t, now, 20*time.Hour)

	// Leading --help, the conventional spelling.
	run := invoke(t, now, "", "--help")
	assert.Equal(t, ExitUsage, run.code)
	assert.Contains(t, run.out, "--age-exceeds")
	assert.Contains(t, run.out, "TIME-OF-DAY")

	// --help hidden among the timer arguments still asks for usage.
	run = invoke(t, now, "", hookArgs(t, prior, "--lan", "--help")...)
	assert.Equal(t, ExitUsage, run.code)
	assert.Contains(t, run.out, "--age-exceeds")
}

func TestTooFewArgumentsExitsUsage(t *testing.T) {
	now := frozenNow(t)

	run := invoke(t, now, "", "testclient", "/tmp/prior", "/tmp/data")
	assert.Equal(t, ExitUsage, run.code)
	assert.Contains(t, run.out, "Usage:")

	// Five positionals but no timer line and no rules file.
	run = invoke(t, now, "", "testclient", "/tmp/prior", t.TempDir(), "r1", "r2")
	assert.Equal(t, ExitUsage, run.code)
}

func TestMissingDataPathExitsUsage(t *testing.T) {
	now := frozenNow(t)
	prior := agedBackup(t, now, 20*time.Hour)
	args := []string{"testclient", prior, "/no/such/data/path", "r1", "r2", "--age-exceeds 19h"}

	run := invoke(t, now, "", args...)
	assert.Equal(t, ExitUsage, run.code)
	assert.Contains(t, run.err, "data path not accessible")
}

func TestBadTimerLineExitsUsage(t *testing.T) {
	now := frozenNow(t)
	prior := agedBackup(t, now, 20*time.Hour)

	for _, line := range []string{
		"--no-such-option",
		"--age-exceeds nonsense",
		"", // a line with no conditions
		"--after 10 --time 10..11",
	} {
		run := invoke(t, now, "", hookArgs(t, prior, line)...)
		assert.Equal(t, ExitUsage, run.code, "%q", line)
		assert.Contains(t, run.err, "bad timer ruleset", "%q", line)
	}
}

func TestEvaluationErrorExitsNoBackup(t *testing.T) {
	now := frozenNow(t)
	prior := agedBackup(t, now, 20*time.Hour)

	// --lan needs REMOTE_ADDR; without it the evaluation fails and
	// the backup stays suppressed.
	run := invoke(t, now, "", hookArgs(t, prior, "--lan")...)
	assert.Equal(t, ExitNoBackup, run.code)
	assert.Contains(t, run.err, "timer evaluation failed")
}

func TestRulesFile(t *testing.T) {
	now := frozenNow(t)
	prior := agedBackup(t, now, 20*time.Hour)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"lines:\n"+
			"  - '--age-exceeds 21h'\n"+
			"  - '--age-exceeds 19h'\n"), 0o644))

	// A rules file stands in for command-line timer lines.
	args := append([]string{"--rules-file", path}, hookArgs(t, prior)...)
	run := invoke(t, now, "", args...)
	assert.Equal(t, ExitProceed, run.code)

	// Command-line lines are evaluated before the file's.
	args = append([]string{"--rules-file", path}, hookArgs(t, prior, "--stop --not-new")...)
	run = invoke(t, now, "", args...)
	assert.Equal(t, ExitNoBackup, run.code)
}

func TestBadRulesFile(t *testing.T) {
	now := frozenNow(t)
	prior := agedBackup(t, now, 20*time.Hour)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lines: {not: a list}\n"), 0o644))

	args := append([]string{"--rules-file", path}, hookArgs(t, prior)...)
	run := invoke(t, now, "", args...)
	assert.Equal(t, ExitUsage, run.code)
	assert.Contains(t, run.err, "bad rules file")

	args = append([]string{"--rules-file", "/no/such/file.yaml"}, hookArgs(t, prior)...)
	run = invoke(t, now, "", args...)
	assert.Equal(t, ExitUsage, run.code)
}

func TestUnknownLeadingFlagExitsUsage(t *testing.T) {
	now := frozenNow(t)
	run := invoke(t, now, "", "--bogus-flag", "x")
	assert.Equal(t, ExitUsage, run.code)
	assert.Contains(t, run.err, "burp-timer:")
}
