package influxdb

import (
	"context"
	"fmt"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePoints persists a batch of points in a single blocking call.
//
// An empty batch is a no-op success: nothing is sent to the server. A
// non-empty batch is written atomically from the pipeline's point of view;
// any failure applies to the whole batch and fails the run.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - points: Points to write (may be empty)
//
// Returns:
//   - error: nil on success, error wrapping ErrWriteFailed otherwise
func (c *Client) WritePoints(ctx context.Context, points []*write.Point) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if len(points) == 0 {
		return nil
	}

	if err := c.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	return nil
}
