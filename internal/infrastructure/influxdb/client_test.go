package influxdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maconso/energy-sync/internal/infrastructure/config"
)

// newTestServer starts a minimal InfluxDB v2 lookalike. The handler map
// routes by URL path; /ping always answers healthy.
func newTestServer(handlers map[string]http.HandlerFunc) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	for path, handler := range handlers {
		mux.HandleFunc(path, handler)
	}
	return httptest.NewServer(mux)
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		URL:    url,
		Token:  "test-token",
		Org:    "home",
		Bucket: "energy_test",
	}
}

func TestConnect(t *testing.T) {
	server := newTestServer(nil)
	defer server.Close()

	client, err := Connect(context.Background(), testConfig(server.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect")
	}

	if client.Bucket() != "energy_test" {
		t.Errorf("Bucket() = %q, want %q", client.Bucket(), "energy_test")
	}
}

func TestConnect_Unreachable(t *testing.T) {
	// Point at a server that has already gone away
	server := newTestServer(nil)
	url := server.URL
	server.Close()

	_, err := Connect(context.Background(), testConfig(url))
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("error = %v, want ErrConnectionFailed", err)
	}
}

func TestClient_Close(t *testing.T) {
	server := newTestServer(nil)
	defer server.Close()

	client, err := Connect(context.Background(), testConfig(server.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if client.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
}

func TestClient_CloseNil(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v", err)
	}
}

func TestClient_HealthCheck(t *testing.T) {
	server := newTestServer(nil)
	defer server.Close()

	client, err := Connect(context.Background(), testConfig(server.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestClient_HealthCheckNotConnected(t *testing.T) {
	server := newTestServer(nil)
	defer server.Close()

	client, err := Connect(context.Background(), testConfig(server.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	client.Close()

	err = client.HealthCheck(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}
