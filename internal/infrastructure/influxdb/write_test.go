package influxdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

func testPoint(ts time.Time, value float64) *write.Point {
	return write.NewPoint(
		"energy_consumption",
		map[string]string{
			"usage_point_id":  "12345678901234",
			"measure_type":    "B",
			"interval_length": "PT30M",
		},
		map[string]interface{}{"power": value},
		ts,
	)
}

func TestWritePoints(t *testing.T) {
	var gotBody string
	var gotPrecision string

	server := newTestServer(map[string]http.HandlerFunc{
		"/api/v2/write": func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
			gotPrecision = r.URL.Query().Get("precision")
			w.WriteHeader(http.StatusNoContent)
		},
	})
	defer server.Close()

	client, err := Connect(context.Background(), testConfig(server.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	ts := time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)
	points := []*write.Point{testPoint(ts, 540), testPoint(ts.Add(30*time.Minute), 620)}

	if err := client.WritePoints(context.Background(), points); err != nil {
		t.Fatalf("WritePoints() error = %v", err)
	}

	if gotPrecision != "s" {
		t.Errorf("precision = %q, want %q", gotPrecision, "s")
	}

	lines := strings.Split(strings.TrimSpace(gotBody), "\n")
	if len(lines) != 2 {
		t.Fatalf("wrote %d line protocol lines, want 2", len(lines))
	}

	for _, fragment := range []string{
		"energy_consumption",
		"usage_point_id=12345678901234",
		"measure_type=B",
		"interval_length=PT30M",
		"power=540",
	} {
		if !strings.Contains(lines[0], fragment) {
			t.Errorf("line %q missing %q", lines[0], fragment)
		}
	}
}

func TestWritePoints_EmptyBatch(t *testing.T) {
	called := false

	server := newTestServer(map[string]http.HandlerFunc{
		"/api/v2/write": func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusNoContent)
		},
	})
	defer server.Close()

	client, err := Connect(context.Background(), testConfig(server.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if err := client.WritePoints(context.Background(), nil); err != nil {
		t.Errorf("WritePoints(empty) error = %v", err)
	}

	if called {
		t.Error("empty batch must not reach the server")
	}
}

func TestWritePoints_ServerError(t *testing.T) {
	server := newTestServer(map[string]http.HandlerFunc{
		"/api/v2/write": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"code": "internal error", "message": "write refused"}`))
		},
	})
	defer server.Close()

	client, err := Connect(context.Background(), testConfig(server.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	err = client.WritePoints(context.Background(), []*write.Point{testPoint(ts, 540)})
	if err == nil {
		t.Fatal("expected error for failing write")
	}
	if !errors.Is(err, ErrWriteFailed) {
		t.Errorf("error = %v, want ErrWriteFailed", err)
	}
}

func TestWritePoints_NotConnected(t *testing.T) {
	server := newTestServer(nil)
	defer server.Close()

	client, err := Connect(context.Background(), testConfig(server.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	client.Close()

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	err = client.WritePoints(context.Background(), []*write.Point{testPoint(ts, 540)})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("error = %v, want ErrNotConnected", err)
	}
}
