// Package config loads and validates bluewatch configuration.
//
// Configuration comes from a YAML file with built-in defaults and
// BLUEWATCH_* environment variable overrides. The override pattern is
// BLUEWATCH_SECTION_KEY, so the list-valued
// BLUEWATCH_SCANNER_EXCLUDE_MAC_PREFIXES takes a comma-separated value.
//
// # Example config.yaml
//
//	scanner:
//	  adapter: "hci0"
//	  scan_interval: 1.0
//	  min_rssi_dbm: -100
//	  exclude_mac_prefixes: ["00:11:22"]
//	tracker:
//	  grace_seconds: 10
//	  weak_signal_grace_seconds: 20
//	watch:
//	  log_path: "./bluewatch.log"
//	database:
//	  path: "./data/bluewatch.db"
//	  wal_mode: true
//	  busy_timeout: 5
//	mqtt:
//	  enabled: false
//	influxdb:
//	  enabled: false
//	logging:
//	  level: "info"
//	  format: "json"
//
// Secrets (MQTT password, InfluxDB token) should come from the
// environment, not the file.
package config
