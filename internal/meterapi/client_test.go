package meterapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maconso/energy-sync/internal/infrastructure/config"
)

// testDay is the fixed target day used across fetch tests.
var testDay = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// newTestClient creates a client pointed at the test server with no
// rate-limit pause.
func newTestClient(server *httptest.Server) *Client {
	return New(config.APIConfig{
		URL:            server.URL,
		UsagePointID:   "12345678901234",
		BearerToken:    "test-token",
		Timeout:        5,
		RateLimitDelay: 0,
	})
}

// TestFetchDay verifies request construction and payload parsing.
func TestFetchDay(t *testing.T) {
	var gotAuth string
	gotParams := make(map[string]string)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				gotParams[key] = values[0]
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"interval_reading": [
			{"date": "2024-01-01 00:00:00", "value": "540", "measure_type": "B", "interval_length": "PT30M"},
			{"date": "2024-01-01 00:30:00", "value": 620, "measure_type": "B", "interval_length": "PT30M"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	readings, start, err := client.FetchDay(context.Background(), testDay)
	if err != nil {
		t.Fatalf("FetchDay() error = %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer test-token")
	}
	if gotParams["prm"] != "12345678901234" {
		t.Errorf("prm param = %q, want %q", gotParams["prm"], "12345678901234")
	}
	if gotParams["start"] != "2024-01-01" {
		t.Errorf("start param = %q, want %q", gotParams["start"], "2024-01-01")
	}
	if gotParams["end"] != "2024-01-02" {
		t.Errorf("end param = %q, want %q", gotParams["end"], "2024-01-02")
	}

	if !start.Equal(testDay) {
		t.Errorf("start = %v, want %v", start, testDay)
	}

	if len(readings) != 2 {
		t.Fatalf("len(readings) = %d, want 2", len(readings))
	}
	if readings[0].Date != "2024-01-01 00:00:00" {
		t.Errorf("readings[0].Date = %q", readings[0].Date)
	}
	if readings[0].Value != "540" {
		t.Errorf("readings[0].Value = %q, want %q", readings[0].Value, "540")
	}
	// Bare JSON numbers are accepted too
	if readings[1].Value != "620" {
		t.Errorf("readings[1].Value = %q, want %q", readings[1].Value, "620")
	}
}

// TestFetchDay_TruncatesToMidnight verifies mid-day inputs resolve to the
// day window.
func TestFetchDay_TruncatesToMidnight(t *testing.T) {
	var gotStart string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("start")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"interval_reading": []}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	midday := time.Date(2024, 1, 1, 14, 45, 12, 0, time.UTC)
	_, start, err := client.FetchDay(context.Background(), midday)
	if err != nil {
		t.Fatalf("FetchDay() error = %v", err)
	}

	if gotStart != "2024-01-01" {
		t.Errorf("start param = %q, want %q", gotStart, "2024-01-01")
	}
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Errorf("resolved start = %v, want midnight", start)
	}
}

// TestFetchDay_EmptyPayload verifies a zero-reading day is not an error.
func TestFetchDay_EmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"interval_reading": []}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	readings, _, err := client.FetchDay(context.Background(), testDay)
	if err != nil {
		t.Fatalf("FetchDay() error = %v", err)
	}
	if len(readings) != 0 {
		t.Errorf("len(readings) = %d, want 0", len(readings))
	}
}

// TestFetchDay_ServerError verifies non-2xx responses fail the fetch.
func TestFetchDay_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server)

	_, _, err := client.FetchDay(context.Background(), testDay)
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("error = %v, want ErrFetchFailed", err)
	}
}

// TestFetchDay_MalformedJSON verifies an undecodable body fails the fetch.
func TestFetchDay_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"interval_reading": [`))
	}))
	defer server.Close()

	client := newTestClient(server)

	_, _, err := client.FetchDay(context.Background(), testDay)
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("error = %v, want ErrFetchFailed", err)
	}
}

// TestFetchDay_Timeout verifies context cancellation propagates.
func TestFetchDay_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"interval_reading": []}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, _, err := client.FetchDay(ctx, testDay)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("error = %v, want ErrFetchFailed", err)
	}
}

// TestFetchDay_RateLimitPause verifies the configured delay is applied
// before the request and aborts on cancellation.
func TestFetchDay_RateLimitPause(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"interval_reading": []}`))
	}))
	defer server.Close()

	client := New(config.APIConfig{
		URL:            server.URL,
		UsagePointID:   "12345678901234",
		BearerToken:    "test-token",
		Timeout:        5,
		RateLimitDelay: 0.05,
	})

	started := time.Now()
	_, _, err := client.FetchDay(context.Background(), testDay)
	if err != nil {
		t.Fatalf("FetchDay() error = %v", err)
	}
	if elapsed := time.Since(started); elapsed < 50*time.Millisecond {
		t.Errorf("elapsed = %v, want at least the 50ms pause", elapsed)
	}

	// Cancellation during the pause aborts the fetch
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = client.FetchDay(ctx, testDay)
	if err == nil {
		t.Fatal("expected error for cancelled pause")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
