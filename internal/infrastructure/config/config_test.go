package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
scanner:
  adapter: "hci1"
  scan_interval: 2.5
  min_rssi_dbm: -85
  exclude_mac_prefixes: ["00:11:22", "aa:bb"]
tracker:
  grace_seconds: 15
  weak_signal_grace_seconds: 30
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Scanner.Adapter != "hci1" {
		t.Errorf("Scanner.Adapter = %q, want %q", cfg.Scanner.Adapter, "hci1")
	}
	if got := cfg.ScanInterval(); got != 2500*time.Millisecond {
		t.Errorf("ScanInterval() = %v, want 2.5s", got)
	}
	if cfg.Scanner.MinRSSI != -85 {
		t.Errorf("Scanner.MinRSSI = %d, want -85", cfg.Scanner.MinRSSI)
	}
	if len(cfg.Scanner.ExcludeMACPrefixes) != 2 {
		t.Errorf("ExcludeMACPrefixes = %v, want 2 entries", cfg.Scanner.ExcludeMACPrefixes)
	}
	if got := cfg.Grace(); got != 15*time.Second {
		t.Errorf("Grace() = %v, want 15s", got)
	}
	if got := cfg.WeakGrace(); got != 30*time.Second {
		t.Errorf("WeakGrace() = %v, want 30s", got)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/test.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Scanner.Adapter != "hci0" {
		t.Errorf("default Scanner.Adapter = %q, want hci0", cfg.Scanner.Adapter)
	}
	if cfg.Tracker.GraceSeconds != 10 {
		t.Errorf("default GraceSeconds = %d, want 10", cfg.Tracker.GraceSeconds)
	}
	if cfg.Tracker.WeakSignalGraceSeconds != 20 {
		t.Errorf("default WeakSignalGraceSeconds = %d, want 20", cfg.Tracker.WeakSignalGraceSeconds)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.MQTT.Enabled || cfg.InfluxDB.Enabled {
		t.Error("optional sinks should default to disabled")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "scanner: [not: valid: yaml")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for invalid YAML")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/from-file.db"
`)

	t.Setenv("BLUEWATCH_DATABASE_PATH", "/tmp/from-env.db")
	t.Setenv("BLUEWATCH_SCANNER_MIN_RSSI_DBM", "-75")
	t.Setenv("BLUEWATCH_SCANNER_EXCLUDE_MAC_PREFIXES", "de:ad, be:ef ,")
	t.Setenv("BLUEWATCH_TRACKER_GRACE_SECONDS", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/from-env.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.Scanner.MinRSSI != -75 {
		t.Errorf("Scanner.MinRSSI = %d, want -75", cfg.Scanner.MinRSSI)
	}
	if len(cfg.Scanner.ExcludeMACPrefixes) != 2 {
		t.Errorf("ExcludeMACPrefixes = %v, want [de:ad be:ef]", cfg.Scanner.ExcludeMACPrefixes)
	}
	if cfg.Tracker.GraceSeconds != 7 {
		t.Errorf("GraceSeconds = %d, want 7", cfg.Tracker.GraceSeconds)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "zero scan interval",
			mutate:  func(c *Config) { c.Scanner.ScanInterval = 0 },
			wantErr: "scan_interval",
		},
		{
			name:    "zero grace",
			mutate:  func(c *Config) { c.Tracker.GraceSeconds = 0 },
			wantErr: "grace_seconds",
		},
		{
			name:    "weak grace below grace",
			mutate:  func(c *Config) { c.Tracker.WeakSignalGraceSeconds = 5 },
			wantErr: "weak_signal_grace_seconds",
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "negative retention",
			mutate:  func(c *Config) { c.Database.RetentionDays = -1 },
			wantErr: "retention_days",
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name: "mqtt enabled without client id",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Broker.ClientID = ""
			},
			wantErr: "client_id",
		},
		{
			name:    "influxdb enabled without token",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: "influxdb.token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestRetention(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Retention() != 0 {
		t.Errorf("Retention() = %v, want 0 for unset retention", cfg.Retention())
	}

	cfg.Database.RetentionDays = 14
	if got := cfg.Retention(); got != 14*24*time.Hour {
		t.Errorf("Retention() = %v, want 336h", got)
	}
}
