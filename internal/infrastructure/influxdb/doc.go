// Package influxdb provides time-series telemetry for bluewatch.
//
// The watcher pushes three measurements:
//   - signal_strength: per-device RSSI, one point per sighting per cycle
//   - cycle_stats: aggregate counts per completed scan cycle
//   - presence_event: NEW/LOST transitions with emission timestamps
//
// Writes are non-blocking and batched; failures surface through the
// SetOnError callback rather than the write path, so a slow or absent
// InfluxDB never stalls the scan loop. The integration is optional and
// controlled by influxdb.enabled in config.yaml.
package influxdb
