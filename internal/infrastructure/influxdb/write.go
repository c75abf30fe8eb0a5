package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSignalStrength records one device's RSSI for the current cycle.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Tags carry the device identity, the field carries the reading.
//
// Example:
//
//	client.WriteSignalStrength("AA:BB:CC:DD:EE:FF", "Phone", -62)
func (c *Client) WriteSignalStrength(mac string, name string, rssi int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"signal_strength",
		map[string]string{
			"mac":  mac,
			"name": name,
		},
		map[string]interface{}{
			"rssi_dbm": rssi,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCycleStats records aggregate statistics for one completed scan cycle.
//
// Parameters:
//   - observed: Number of sightings delivered by the scanner this cycle
//   - tracked: Number of devices held by the tracker after the cycle
//   - newCount: NEW events emitted this cycle
//   - lostCount: LOST events emitted this cycle
func (c *Client) WriteCycleStats(observed, tracked, newCount, lostCount int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"cycle_stats",
		map[string]string{},
		map[string]interface{}{
			"observed": observed,
			"tracked":  tracked,
			"new":      newCount,
			"lost":     lostCount,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePresenceEvent records a presence transition with its emission time.
//
// Events are tagged by type and device so dashboards can chart arrivals
// and departures separately.
func (c *Client) WritePresenceEvent(eventType string, mac string, rssi int, occurredAt time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"presence_event",
		map[string]string{
			"type": eventType,
			"mac":  mac,
		},
		map[string]interface{}{
			"rssi_dbm": rssi,
		},
		occurredAt,
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
