package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for bluewatch.
// All configuration is loaded from YAML and can be overridden by
// BLUEWATCH_* environment variables.
type Config struct {
	Scanner  ScannerConfig  `yaml:"scanner"`
	Tracker  TrackerConfig  `yaml:"tracker"`
	Watch    WatchConfig    `yaml:"watch"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ScannerConfig contains scan source settings.
type ScannerConfig struct {
	// Adapter identifies the radio adapter or remote agent feeding sightings.
	Adapter string `yaml:"adapter"`

	// ScanInterval is the cycle length in seconds.
	ScanInterval float64 `yaml:"scan_interval"`

	// MinRSSI drops sightings weaker than this threshold (dBm) before
	// they reach the tracker.
	MinRSSI int `yaml:"min_rssi_dbm"`

	// ExcludeMACPrefixes drops sightings whose address starts with any of
	// these prefixes (case-insensitive).
	ExcludeMACPrefixes []string `yaml:"exclude_mac_prefixes"`

	// SimulatorSeed seeds the synthetic scanner when running with -simulate.
	SimulatorSeed int64 `yaml:"simulator_seed"`
}

// TrackerConfig contains presence debounce settings.
type TrackerConfig struct {
	// GraceSeconds is the maximum tolerated silence for nominal-signal devices.
	GraceSeconds int `yaml:"grace_seconds"`

	// WeakSignalGraceSeconds is the longer tolerance for devices whose last
	// known RSSI was below -90 dBm.
	WeakSignalGraceSeconds int `yaml:"weak_signal_grace_seconds"`
}

// WatchConfig contains event delivery settings.
type WatchConfig struct {
	// LogPath is the JSONL audit log file. Empty disables the audit log.
	LogPath string `yaml:"log_path"`
}

// DatabaseConfig contains SQLite journal settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// RetentionDays controls journal pruning. Zero keeps events forever.
	RetentionDays int `yaml:"retention_days"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB telemetry settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads, overrides, and validates configuration from a YAML file.
//
// Values are resolved in order: built-in defaults, then the YAML file,
// then BLUEWATCH_* environment variables.
// For example: BLUEWATCH_DATABASE_PATH, BLUEWATCH_MQTT_HOST.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
// The defaults describe a single-adapter watcher with a local journal
// and no external sinks.
func defaultConfig() *Config {
	return &Config{
		Scanner: ScannerConfig{
			Adapter:      "hci0",
			ScanInterval: 1.0,
			MinRSSI:      -100,
		},
		Tracker: TrackerConfig{
			GraceSeconds:           10,
			WeakSignalGraceSeconds: 20,
		},
		Watch: WatchConfig{
			LogPath: "./bluewatch.log",
		},
		Database: DatabaseConfig{
			Path:        "./data/bluewatch.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "bluewatch",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides.
// Variables follow the pattern BLUEWATCH_SECTION_KEY.
func applyEnvOverrides(cfg *Config) {
	// Scanner
	if v := os.Getenv("BLUEWATCH_SCANNER_ADAPTER"); v != "" {
		cfg.Scanner.Adapter = v
	}
	if v := os.Getenv("BLUEWATCH_SCANNER_MIN_RSSI_DBM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scanner.MinRSSI = n
		}
	}
	if v := os.Getenv("BLUEWATCH_SCANNER_EXCLUDE_MAC_PREFIXES"); v != "" {
		prefixes := []string{}
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				prefixes = append(prefixes, p)
			}
		}
		cfg.Scanner.ExcludeMACPrefixes = prefixes
	}

	// Tracker
	if v := os.Getenv("BLUEWATCH_TRACKER_GRACE_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tracker.GraceSeconds = n
		}
	}
	if v := os.Getenv("BLUEWATCH_TRACKER_WEAK_SIGNAL_GRACE_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tracker.WeakSignalGraceSeconds = n
		}
	}

	// Database
	if v := os.Getenv("BLUEWATCH_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("BLUEWATCH_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("BLUEWATCH_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("BLUEWATCH_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("BLUEWATCH_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Scanner.ScanInterval <= 0 {
		errs = append(errs, "scanner.scan_interval must be positive")
	}

	if c.Tracker.GraceSeconds <= 0 {
		errs = append(errs, "tracker.grace_seconds must be positive")
	}
	if c.Tracker.WeakSignalGraceSeconds < c.Tracker.GraceSeconds {
		errs = append(errs, "tracker.weak_signal_grace_seconds must be >= tracker.grace_seconds")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.RetentionDays < 0 {
		errs = append(errs, "database.retention_days must not be negative")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
		if c.MQTT.Broker.ClientID == "" {
			errs = append(errs, "mqtt.broker.client_id is required when mqtt is enabled")
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set BLUEWATCH_INFLUXDB_TOKEN)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ScanInterval returns the scan cycle length as a Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scanner.ScanInterval * float64(time.Second))
}

// Grace returns the nominal-signal grace period as a Duration.
func (c *Config) Grace() time.Duration {
	return time.Duration(c.Tracker.GraceSeconds) * time.Second
}

// WeakGrace returns the weak-signal grace period as a Duration.
func (c *Config) WeakGrace() time.Duration {
	return time.Duration(c.Tracker.WeakSignalGraceSeconds) * time.Second
}

// Retention returns the journal retention window as a Duration.
// Zero means no pruning.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Database.RetentionDays) * 24 * time.Hour
}
