package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/maconso/energy-sync/internal/pipeline"
)

// triggerLayout is the wall-clock format for the daily trigger time.
const triggerLayout = "15:04"

// RunFunc executes one pipeline run.
type RunFunc func(ctx context.Context) (pipeline.RunResult, error)

// Reporter receives each run outcome after the run finishes.
// Used to wire in the run journal and the status notifier; reporters must
// be best-effort and never panic the loop (they run inside the same
// recover boundary as the run itself).
type Reporter func(ctx context.Context, result pipeline.RunResult)

// Logger is the logging surface the scheduler needs.
// Compatible with logging.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config contains the scheduling knobs.
type Config struct {
	// DailyAt is the fixed wall-clock trigger time in "HH:MM" (UTC).
	DailyAt string

	// PollInterval is how long the loop sleeps between due-trigger checks.
	PollInterval time.Duration

	// RunOnStartup triggers one immediate run before the first tick.
	RunOnStartup bool
}

// Loop drives the pipeline on a fixed daily schedule.
//
// The loop is process-long-lived and independent of any single run's
// outcome: a failed or even panicking run is logged and the loop keeps
// ticking. Runs execute synchronously; no two runs ever overlap and
// missed triggers are not queued.
//
// Cancellation is cooperative and coarse-grained: the context is checked
// between ticks, never mid-run.
type Loop struct {
	cfg    Config
	hour   int
	minute int

	run    RunFunc
	report Reporter
	log    Logger

	// now is replaceable for tests.
	now func() time.Time
}

// New creates a scheduler loop.
//
// Parameters:
//   - cfg: Scheduling configuration
//   - run: The pipeline run to execute on each trigger
//   - log: Logger for loop and run-boundary events
//
// Returns:
//   - *Loop: Loop ready to start
//   - error: If the trigger time or poll interval is invalid
func New(cfg Config, run RunFunc, log Logger) (*Loop, error) {
	at, err := time.Parse(triggerLayout, cfg.DailyAt)
	if err != nil {
		return nil, fmt.Errorf("invalid daily trigger time %q: %w", cfg.DailyAt, err)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %v", cfg.PollInterval)
	}
	if run == nil {
		return nil, fmt.Errorf("run function is required")
	}

	return &Loop{
		cfg:    cfg,
		hour:   at.Hour(),
		minute: at.Minute(),
		run:    run,
		log:    log,
		now:    time.Now,
	}, nil
}

// SetReporter sets a callback invoked with every run result.
func (l *Loop) SetReporter(report Reporter) {
	l.report = report
}

// SetClock overrides the clock used for trigger computation.
func (l *Loop) SetClock(now func() time.Time) {
	l.now = now
}

// Start runs the scheduling loop until the context is cancelled.
//
// Each tick checks whether the daily trigger is due, executes at most one
// run if so, then sleeps for the poll interval. An in-flight run finishes
// before cancellation takes effect.
//
// Parameters:
//   - ctx: Cancellation token; cancelling exits the loop cleanly
//
// Returns:
//   - error: nil on clean shutdown
func (l *Loop) Start(ctx context.Context) error {
	l.log.Info("scheduler started",
		"daily_at", l.cfg.DailyAt,
		"poll_interval", l.cfg.PollInterval.String(),
		"run_on_startup", l.cfg.RunOnStartup,
	)

	if l.cfg.RunOnStartup {
		l.log.Info("running pipeline on startup")
		l.execute(ctx)
	}

	next := l.NextTrigger(l.now())
	l.log.Info("next run scheduled", "at", next.Format(time.RFC3339))

	for {
		select {
		case <-ctx.Done():
			l.log.Info("scheduler stopped")
			return nil
		case <-time.After(l.cfg.PollInterval):
		}

		if l.now().Before(next) {
			continue
		}

		l.execute(ctx)
		next = l.NextTrigger(l.now())
		l.log.Info("next run scheduled", "at", next.Format(time.RFC3339))
	}
}

// execute performs one pipeline run inside the loop's isolation boundary.
//
// Any error is logged and swallowed; any panic is recovered with a full
// stack trace. Nothing that happens inside a run terminates the loop.
func (l *Loop) execute(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("pipeline run panicked",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	result, err := l.run(ctx)
	if err != nil {
		l.log.Error("pipeline run failed", "error", err)
	} else {
		l.log.Info("pipeline run completed",
			"day", result.Day.Format("2006-01-02"),
			"points_written", result.PointsWritten,
			"duration", result.Duration.String(),
		)
	}

	if l.report != nil {
		l.report(ctx, result)
	}
}

// NextTrigger computes the next daily trigger instant strictly after now.
//
// The trigger is a fixed UTC wall-clock time; if today's instant has
// already passed (or is exactly now), the trigger moves to tomorrow.
func (l *Loop) NextTrigger(now time.Time) time.Time {
	utc := now.UTC()
	next := time.Date(utc.Year(), utc.Month(), utc.Day(), l.hour, l.minute, 0, 0, time.UTC)
	if !next.After(utc) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
