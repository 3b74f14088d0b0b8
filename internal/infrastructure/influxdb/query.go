package influxdb

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the canonical timestamp form shared between the
// metering API payload and the deduplication keys returned by
// QueryTimestamps. Both sides must agree on it exactly.
const TimestampLayout = "2006-01-02 15:04:05"

// QueryTimestamps returns the set of timestamps already stored for one
// meter and one calendar day.
//
// The query is bounded to [day 00:00:00, day+1 00:00:00) UTC and filtered
// by the energy_consumption measurement, the power field, and the
// usage_point_id tag. Only the _time column is kept; values are never
// transferred.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - usagePointID: Meter identifier tag value
//   - day: Target day (only the date part is used)
//
// Returns:
//   - map[string]struct{}: Set of TimestampLayout-formatted keys
//   - error: error wrapping ErrQueryFailed if the query cannot run
func (c *Client) QueryTimestamps(ctx context.Context, usagePointID string, day time.Time) (map[string]struct{}, error) {
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}
	if strings.TrimSpace(usagePointID) == "" {
		return nil, fmt.Errorf("usage point id is required")
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	stop := start.AddDate(0, 0, 1)

	flux := fmt.Sprintf(`from(bucket: %q)
  |> range(start: %s, stop: %s)
  |> filter(fn: (r) => r["_measurement"] == "energy_consumption")
  |> filter(fn: (r) => r["_field"] == "power")
  |> filter(fn: (r) => r["usage_point_id"] == %q)
  |> keep(columns: ["_time"])`,
		c.cfg.Bucket,
		start.Format(time.RFC3339),
		stop.Format(time.RFC3339),
		usagePointID,
	)

	result, err := c.queryAPI.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	defer result.Close()

	existing := make(map[string]struct{})
	for result.Next() {
		t := result.Record().Time()
		if t.IsZero() {
			continue
		}
		existing[t.UTC().Format(TimestampLayout)] = struct{}{}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading result: %w", ErrQueryFailed, err)
	}

	return existing, nil
}
