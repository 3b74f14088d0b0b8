package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/maconso/energy-sync/internal/pipeline"
)

// Journal configuration constants.
const (
	// dirPermissions is the permission mode for the journal directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the journal file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying connectivity.
	connectionTimeout = 5 * time.Second
)

// schema is applied at open. A single table does not warrant a migration
// registry; new columns get added here with ALTER guards if ever needed.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	day               TEXT    NOT NULL,
	total_fetched     INTEGER NOT NULL,
	skipped_existing  INTEGER NOT NULL,
	skipped_malformed INTEGER NOT NULL,
	points_written    INTEGER NOT NULL,
	success           INTEGER NOT NULL,
	error             TEXT    NOT NULL DEFAULT '',
	started_at        TEXT    NOT NULL,
	duration_ms       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_day ON runs(day);
`

// Journal records the outcome of every pipeline run in SQLite.
//
// It is operational history only: the pipeline's correctness never depends
// on it, and journal failures must not fail a run.
type Journal struct {
	db   *sql.DB
	path string
}

// Config contains journal configuration options.
type Config struct {
	// Path is the filesystem path to the SQLite journal file.
	// The directory will be created if it doesn't exist.
	Path string

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	BusyTimeout int
}

// Entry is one journalled run.
type Entry struct {
	ID               int64
	Day              string
	TotalFetched     int
	SkippedExisting  int
	SkippedMalformed int
	PointsWritten    int
	Success          bool
	Error            string
	StartedAt        time.Time
	DurationMS       int64
}

// Open creates the journal database with the specified configuration.
//
// It performs the following setup:
//  1. Creates the journal directory if it doesn't exist
//  2. Opens the database file (creates if not present)
//  3. Configures WAL mode and busy timeout
//  4. Applies the schema
//  5. Verifies the connection with a ping
//
// Parameters:
//   - cfg: Journal configuration
//
// Returns:
//   - *Journal: Open journal ready for use
//   - error: If connection or schema setup fails
func Open(cfg Config) (*Journal, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	// One writer, one run at a time.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	j := &Journal{
		db:   sqlDB,
		path: cfg.Path,
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying journal connection: %w", err)
	}

	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("applying journal schema: %w", err)
	}

	// Owner read/write only; ignore error on first run before the file exists.
	_ = os.Chmod(cfg.Path, filePermissions)

	return j, nil
}

// Record inserts one run outcome.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - result: The run result to journal
//
// Returns:
//   - error: If the insert fails
func (j *Journal) Record(ctx context.Context, result pipeline.RunResult) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (day, total_fetched, skipped_existing, skipped_malformed,
			points_written, success, error, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Day.Format("2006-01-02"),
		result.TotalFetched,
		result.SkippedExisting,
		result.SkippedMalformed,
		result.PointsWritten,
		result.Success,
		result.Error,
		result.StartedAt.UTC().Format(time.RFC3339),
		result.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// LastRun returns the most recently journalled run.
//
// Returns:
//   - *Entry: The latest entry, or nil when the journal is empty
//   - error: If the query fails
func (j *Journal) LastRun(ctx context.Context) (*Entry, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT id, day, total_fetched, skipped_existing, skipped_malformed,
			points_written, success, error, started_at, duration_ms
		 FROM runs ORDER BY id DESC LIMIT 1`)

	var e Entry
	var startedAt string
	err := row.Scan(&e.ID, &e.Day, &e.TotalFetched, &e.SkippedExisting,
		&e.SkippedMalformed, &e.PointsWritten, &e.Success, &e.Error,
		&startedAt, &e.DurationMS)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading last run: %w", err)
	}

	if t, parseErr := time.Parse(time.RFC3339, startedAt); parseErr == nil {
		e.StartedAt = t
	}

	return &e, nil
}

// HealthCheck verifies the journal is accessible and functioning.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (j *Journal) HealthCheck(ctx context.Context) error {
	var result int
	if err := j.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("journal health check failed: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the journal file.
func (j *Journal) Path() string {
	return j.path
}

// Close closes the journal database.
//
// Returns:
//   - error: If closing fails
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("closing journal: %w", err)
	}
	return nil
}
