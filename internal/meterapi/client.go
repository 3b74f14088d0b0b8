package meterapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/maconso/energy-sync/internal/infrastructure/config"
)

// dateLayout is the date-only form used in API query parameters.
const dateLayout = "2006-01-02"

// maxResponseSize bounds the response body read (10 MB).
// A full day of 30-minute readings is a few kilobytes; anything near the
// limit is a misbehaving upstream.
const maxResponseSize = 10 << 20

// Client fetches interval readings from the metering API.
//
// Each fetch is a single bounded-timeout GET for one day window. The
// client never retries: a failed fetch fails the run, and the next
// scheduled trigger is the retry mechanism.
type Client struct {
	url            string
	usagePointID   string
	bearerToken    string
	rateLimitDelay time.Duration
	httpClient     *http.Client
}

// New creates a metering API client from configuration.
//
// Parameters:
//   - cfg: API configuration (endpoint, credentials, timeout)
//
// Returns:
//   - *Client: Client ready for use
func New(cfg config.APIConfig) *Client {
	return &Client{
		url:            cfg.URL,
		usagePointID:   cfg.UsagePointID,
		bearerToken:    cfg.BearerToken,
		rateLimitDelay: time.Duration(cfg.RateLimitDelay * float64(time.Second)),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// FetchDay retrieves all interval readings for one calendar day.
//
// The request window is [day 00:00:00, day+1 00:00:00), expressed as
// date-only start/end parameters. A transport error, a non-2xx status, or
// an undecodable body is a single fatal fetch failure; there is no retry
// and no partial result.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - day: Target day (truncated to midnight before use)
//
// Returns:
//   - []Reading: Parsed readings (may be empty)
//   - time.Time: The resolved start of the fetched day
//   - error: error wrapping ErrFetchFailed on any failure
func (c *Client) FetchDay(ctx context.Context, day time.Time) ([]Reading, time.Time, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	if err := c.pace(ctx); err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	params := url.Values{}
	params.Set("prm", c.usagePointID)
	params.Set("start", start.Format(dateLayout))
	params.Set("end", end.Format(dateLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+params.Encode(), nil)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: creating request: %w", ErrFetchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: reading response: %w", ErrFetchFailed, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, time.Time{}, fmt.Errorf("%w: HTTP %d", ErrFetchFailed, resp.StatusCode)
	}

	var payload intervalPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: decoding response: %w", ErrFetchFailed, err)
	}

	return payload.IntervalReading, start, nil
}

// pace waits for the configured rate-limit delay before a request.
// Cancellation during the pause aborts the fetch.
func (c *Client) pace(ctx context.Context) error {
	if c.rateLimitDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(c.rateLimitDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
