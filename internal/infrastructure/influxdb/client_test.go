package influxdb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/bluewatch/internal/infrastructure/config"
	"github.com/nerrad567/bluewatch/internal/infrastructure/influxdb"
)

func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "bluewatch-dev-token",
		Org:           "bluewatch",
		Bucket:        "telemetry",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := influxdb.Connect(cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999" // Non-existent port

	_, err := influxdb.Connect(cfg)
	if err == nil {
		t.Fatal("Connect() should return error for unreachable server")
	}
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestClient_ZeroValue(t *testing.T) {
	// A zero-value client must behave as disconnected: writes are dropped
	// silently and Flush/Close are no-ops.
	var c influxdb.Client

	if c.IsConnected() {
		t.Error("IsConnected() = true for zero-value client")
	}

	c.WriteSignalStrength("AA:BB:CC:DD:EE:FF", "Phone", -60)
	c.WriteCycleStats(3, 2, 1, 0)
	c.WritePresenceEvent("NEW", "AA:BB:CC:DD:EE:FF", -60, time.Now())
	c.WritePoint("custom", nil, map[string]interface{}{"v": 1})
	c.Flush()

	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if err := c.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}
