package pipeline

import "time"

// RunResult summarises one pipeline run.
//
// It is transient: it exists for the duration of a run and is reported via
// logs, the run journal, and the optional status notifier.
type RunResult struct {
	// Day is the target day the run synchronised.
	Day time.Time `json:"day"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// TotalFetched counts every reading returned by the API, including
	// those later skipped.
	TotalFetched int `json:"total_fetched"`

	// SkippedExisting counts readings whose timestamp was already stored.
	SkippedExisting int `json:"skipped_existing"`

	// SkippedMalformed counts readings dropped for bad timestamps, bad
	// values, or missing fields.
	SkippedMalformed int `json:"skipped_malformed"`

	// PointsWritten counts points persisted to the store.
	PointsWritten int `json:"points_written"`

	// Duration is the wall-clock length of the run.
	Duration time.Duration `json:"duration_ns"`

	// Success reports whether the run completed without a fatal error.
	Success bool `json:"success"`

	// Error holds the fatal error text for failed runs, empty otherwise.
	Error string `json:"error,omitempty"`
}
