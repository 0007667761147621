package cacheredis

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

// testConfig returns a config pointing at addr with retries disabled and a quiet logger.
func testConfig(t *testing.T, addr string) *Config {
	t.Helper()

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split %q: %v", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("port %q: %v", portStr, err)
	}

	cfg := DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.Timeout = time.Second
	cfg.MaxRetries = -1
	cfg.Logger = testLogger()
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClient starts an in-process Redis and connects a Client to it.
// Both are torn down when the test ends.
func testClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	return testClientWithConfig(t, nil)
}

// testClientWithConfig is testClient with a hook to adjust the config.
func testClientWithConfig(t *testing.T, modify func(*Config)) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := testConfig(t, mr.Addr())
	if modify != nil {
		modify(cfg)
	}

	client, err := NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	return client, mr
}

// TestValue is a sample struct for value round trips.
type TestValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
