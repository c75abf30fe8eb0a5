package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/bluewatch/internal/infrastructure/config"
	"github.com/nerrad567/bluewatch/internal/infrastructure/logging"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, "/nonexistent/path/config.yaml", true)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails when database path is empty.
func TestRun_MissingDatabasePath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
scanner:
  scan_interval: 0.1

database:
  path: ""
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, configPath, true); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestRun_SimulatedStartupAndShutdown runs the full stack with the
// simulator and no external services, then cancels.
func TestRun_SimulatedStartupAndShutdown(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
scanner:
  scan_interval: 0.05
  simulator_seed: 42

tracker:
  grace_seconds: 1
  weak_signal_grace_seconds: 2

watch:
  log_path: "` + filepath.Join(tmpDir, "audit.log") + `"

database:
  path: "` + filepath.Join(tmpDir, "test.db") + `"
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx, configPath, true); err != nil {
		t.Errorf("run() error = %v, want clean shutdown", err)
	}

	// Simulator cycles ran; the audit log should exist.
	if _, err := os.Stat(filepath.Join(tmpDir, "audit.log")); err != nil {
		t.Errorf("audit log not created: %v", err)
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("BLUEWATCH_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("BLUEWATCH_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestBuildSource_RequiresSource verifies a clear error when neither the
// simulator nor MQTT can supply sightings.
func TestBuildSource_RequiresSource(t *testing.T) {
	cfg := &config.Config{}

	if _, err := buildSource(cfg, nil, false, logging.Default()); err == nil {
		t.Fatal("buildSource() should fail without simulator or MQTT")
	}
}

// TestBuildSource_Simulator verifies -simulate selects the simulator even
// without MQTT.
func TestBuildSource_Simulator(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scanner.SimulatorSeed = 7

	source, err := buildSource(cfg, nil, true, logging.Default())
	if err != nil {
		t.Fatalf("buildSource() error = %v", err)
	}
	if source == nil {
		t.Fatal("buildSource() returned nil scanner")
	}
}
