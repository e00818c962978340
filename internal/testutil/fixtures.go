// Package testutil builds on-disk backup fixtures and frozen instants
// for tests. Everything lives under t.TempDir() and is deterministic:
// tests pass an explicit instant instead of reading the wall clock.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/burptools/burp-timer/internal/backup"
	"github.com/burptools/burp-timer/internal/log"
)

// InterruptedLine is a log line in the exact shape burp writes when it
// finds an interrupted backup.
const InterruptedLine = "2017-03-02 10:19:32: burp[8113] Found interrupted backup."

// Instant parses "YYYY-MM-DD HH:MM:SS" as a UTC instant.
func Instant(t *testing.T, text string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", text, time.UTC)
	require.NoError(t, err)
	return ts
}

// Logger returns a quiet logger for wiring into records and evaluators.
func Logger(t *testing.T) *slog.Logger {
	t.Helper()
	return log.Setup(io.Discard, "ERROR")
}

// NewBackupPath returns a path shaped like burp's per-client layout
// (<tmp>/<client>/current) without creating anything, for tests that
// need a backup that does not exist yet.
func NewBackupPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "client", "current")
}

// WriteBackup creates a backup directory at path with a timezone-aware
// timestamp file stamped at ts.
func WriteBackup(t *testing.T, path string, ts time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, backup.WriteTimestamp(filepath.Join(path, "timestamp"), 0, ts))
}

// WriteLog writes the given lines as the backup's gzip-compressed log.
func WriteLog(t *testing.T, path string, lines ...string) {
	t.Helper()
	file, err := os.Create(filepath.Join(path, "log.gz"))
	require.NoError(t, err)
	zw := gzip.NewWriter(file)
	for _, line := range lines {
		_, err := io.WriteString(zw, line+"\n")
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, file.Close())
}

// WriteResumedMarker drops the sentinel file that marks a backup as
// resumed after interruption.
func WriteResumedMarker(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(path, "resumed"), nil, 0o644))
}
