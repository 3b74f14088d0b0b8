package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/maconso/energy-sync/internal/meterapi"
)

// Store is the per-run store surface the pipeline depends on.
//
// The influxdb.Client satisfies it; tests substitute fakes.
type Store interface {
	// QueryTimestamps returns the TimestampKey set already stored for one
	// meter and one day.
	QueryTimestamps(ctx context.Context, usagePointID string, day time.Time) (map[string]struct{}, error)

	// WritePoints persists a batch of points; an empty batch is a no-op.
	WritePoints(ctx context.Context, points []*write.Point) error

	// Close releases the connection.
	Close() error
}

// Fetcher retrieves one day's raw readings from the metering API.
type Fetcher interface {
	FetchDay(ctx context.Context, day time.Time) ([]meterapi.Reading, time.Time, error)
}

// StoreOpener opens a scoped store connection for a single run.
//
// The runner opens and closes the store once per run; connections are
// never shared across runs.
type StoreOpener func(ctx context.Context) (Store, error)

// Logger is the logging surface the pipeline needs.
// Compatible with logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Runner sequences one pipeline run: connect, index, fetch, convert, write.
//
// Runs are synchronous and single-threaded; the caller decides when (and
// whether) the next run happens.
type Runner struct {
	usagePointID string
	openStore    StoreOpener
	fetcher      Fetcher
	log          Logger

	// now derives the target day; replaceable for tests.
	now func() time.Time
}

// NewRunner creates a pipeline runner.
//
// Parameters:
//   - usagePointID: Meter identifier tagged onto every written point
//   - openStore: Opens the per-run store connection
//   - fetcher: Metering API client
//   - log: Logger for run progress and skip details
//
// Returns:
//   - *Runner: Runner ready for use
func NewRunner(usagePointID string, openStore StoreOpener, fetcher Fetcher, log Logger) *Runner {
	return &Runner{
		usagePointID: usagePointID,
		openStore:    openStore,
		fetcher:      fetcher,
		log:          log,
		now:          time.Now,
	}
}

// SetClock overrides the clock used to derive the target day.
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// Run executes one complete fetch → dedupe → convert → write sequence.
//
// The target day is yesterday relative to the clock at invocation time,
// truncated to midnight. An index query failure degrades to an empty
// existing set and the run continues; connection, fetch, and write
// failures fail the run. The store connection is released on every exit
// path.
//
// Parameters:
//   - ctx: Context for timeout/cancellation of the in-flight calls
//
// Returns:
//   - RunResult: Counters and outcome, populated on every path
//   - error: nil on success, otherwise the fatal run error
func (r *Runner) Run(ctx context.Context) (result RunResult, err error) {
	started := r.now()
	day := yesterday(started)

	result = RunResult{Day: day, StartedAt: started}
	defer func() {
		result.Duration = r.now().Sub(started)
		result.Success = err == nil
		if err != nil {
			result.Error = err.Error()
		}
	}()

	r.log.Info("starting pipeline run", "day", day.Format("2006-01-02"))

	store, err := r.openStore(ctx)
	if err != nil {
		return result, fmt.Errorf("connecting to store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			r.log.Error("error closing store connection", "error", closeErr)
		}
	}()

	// Degrade-on-failure: a broken index query risks a duplicate write,
	// which is preferable to aborting the whole run.
	existing, queryErr := store.QueryTimestamps(ctx, r.usagePointID, day)
	if queryErr != nil {
		r.log.Warn("existing-record query failed, continuing with empty set",
			"day", day.Format("2006-01-02"),
			"error", queryErr,
		)
		existing = map[string]struct{}{}
	} else {
		r.log.Info("existing records found",
			"day", day.Format("2006-01-02"),
			"count", len(existing),
		)
	}

	readings, fetchedDay, err := r.fetcher.FetchDay(ctx, day)
	if err != nil {
		return result, fmt.Errorf("fetching readings: %w", err)
	}
	result.Day = fetchedDay
	r.log.Info("readings fetched", "count", len(readings))

	points, stats := Convert(r.usagePointID, readings, existing, r.log)
	result.TotalFetched = stats.TotalFetched
	result.SkippedExisting = stats.SkippedExisting
	result.SkippedMalformed = stats.SkippedMalformed

	if len(points) == 0 {
		r.log.Info("no new data to import",
			"total_fetched", stats.TotalFetched,
			"skipped_existing", stats.SkippedExisting,
		)
		return result, nil
	}

	if err = store.WritePoints(ctx, points); err != nil {
		return result, fmt.Errorf("writing points: %w", err)
	}
	result.PointsWritten = len(points)

	r.log.Info("pipeline run complete",
		"day", result.Day.Format("2006-01-02"),
		"total_fetched", result.TotalFetched,
		"skipped_existing", result.SkippedExisting,
		"skipped_malformed", result.SkippedMalformed,
		"points_written", result.PointsWritten,
	)

	return result, nil
}

// yesterday returns the previous day truncated to local midnight.
func yesterday(now time.Time) time.Time {
	d := now.AddDate(0, 0, -1)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}
