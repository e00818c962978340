package backup

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Filenames inside and next to a backup directory, fixed by the burp
// server.
const (
	logName       = "log.gz"
	timestampName = "timestamp"
	resumedName   = "resumed"

	// createdName is the client-creation marker the hook writes;
	// dotCreatedName is an administrator-placed override that wins on
	// read when both exist.
	createdName    = "created"
	dotCreatedName = ".created"
)

// interruptedRE matches the log line burp writes when it picks up an
// interrupted backup. The whole line must match.
var interruptedRE = regexp.MustCompile(`^\d{4}-\d\d-\d\d \d\d:\d\d:\d\d: burp\[\d+\] Found interrupted backup\.$`)

// Record is the prior backup of one client, read at a fixed evaluation
// instant.
type Record struct {
	path   string
	now    time.Time
	loc    *time.Location
	logger *slog.Logger
}

// NewRecord builds a Record for the backup at path. The instant's zone
// becomes the zone used for offsetless timestamp files.
func NewRecord(path string, now time.Time, logger *slog.Logger) *Record {
	return &Record{
		path:   path,
		now:    now,
		loc:    now.Location(),
		logger: logger.With("component", "backup", "path", path),
	}
}

// Path returns the backup directory path the record was built from.
func (r *Record) Path() string { return r.path }

// IsNew reports whether no prior backup exists at the record's path.
func (r *Record) IsNew() bool {
	_, err := os.Stat(r.path)
	return err != nil
}

// IsContinued reports whether the prior backup was interrupted and then
// resumed: either the resumed sentinel file exists, or the backup log
// contains the interruption marker line. A missing or unreadable log is
// logged and treated as not continued.
func (r *Record) IsContinued() bool {
	if r.IsNew() {
		return false
	}
	if _, err := os.Stat(filepath.Join(r.path, resumedName)); err == nil {
		return true
	}
	logPath := filepath.Join(r.path, logName)
	file, err := os.Open(logPath)
	if err != nil {
		r.logger.Warn("backup log unavailable, assuming not continued", "log", logPath, "error", err)
		return false
	}
	defer file.Close()
	zr, err := gzip.NewReader(file)
	if err != nil {
		r.logger.Warn("backup log not gzip, assuming not continued", "log", logPath, "error", err)
		return false
	}
	defer zr.Close()
	scanner := bufio.NewScanner(zr)
	for scanner.Scan() {
		if interruptedRE.MatchString(scanner.Text()) {
			return true
		}
	}
	if err := scanner.Err(); err != nil {
		r.logger.Warn("backup log truncated, assuming not continued", "log", logPath, "error", err)
	}
	return false
}

// Timestamp returns when the prior backup completed. For a backup that
// does not exist it returns the zero time, so age comparisons always see
// "very old".
func (r *Record) Timestamp() (time.Time, error) {
	if r.IsNew() {
		return time.Time{}, nil
	}
	return ReadTimestamp(filepath.Join(r.path, timestampName), r.loc)
}

// InitCreatedAt returns when the client was first seen without a backup.
// On first access it creates the "created" marker next to the backup
// path, stamped with the evaluation instant. A ".created" file in the
// same directory takes precedence on read, so an administrator can
// backdate or pin the first-sighting instant without touching the
// hook's own marker. Meaningful only while IsNew.
func (r *Record) InitCreatedAt() (time.Time, error) {
	dir := filepath.Dir(r.path)
	if override := filepath.Join(dir, dotCreatedName); fileExists(override) {
		return ReadTimestamp(override, r.loc)
	}
	created := filepath.Join(dir, createdName)
	if fileExists(created) {
		return ReadTimestamp(created, r.loc)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return time.Time{}, err
	}
	if err := WriteTimestamp(created, 0, r.now); err != nil {
		return time.Time{}, err
	}
	r.logger.Debug("created client-creation marker", "marker", created)
	return ReadTimestamp(created, r.loc)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// InitExceeds reports whether the client has been waiting for its first
// backup for longer than maxAge.
func (r *Record) InitExceeds(maxAge time.Duration) (bool, error) {
	if !r.IsNew() {
		return false, nil
	}
	created, err := r.InitCreatedAt()
	if err != nil {
		return false, err
	}
	return r.now.After(created.Add(maxAge)), nil
}

// AgeExceeds reports whether the prior backup is older than maxAge.
// A backup that does not exist is always older.
func (r *Record) AgeExceeds(maxAge time.Duration) (bool, error) {
	ts, err := r.Timestamp()
	if err != nil {
		return false, err
	}
	return r.now.After(ts.Add(maxAge)), nil
}
