package tracker

import "time"

// AddressType values reported by scan sources.
//
// BLE advertising distinguishes public (IEEE-assigned) addresses from
// random (privacy-rotating) addresses. Sources that cannot tell report
// AddressTypeUnknown.
const (
	AddressTypePublic  = "public"
	AddressTypeRandom  = "random"
	AddressTypeUnknown = "N/A"
)

// Observation is a single device sighting produced by a scan source.
// It is a value type; the tracker copies what it needs and never retains
// a reference to it.
type Observation struct {
	// Timestamp is when the sighting occurred (UTC).
	Timestamp time.Time `json:"timestamp"`

	// MAC is the device address and the tracker's identity key.
	MAC string `json:"mac"`

	// Name is the advertised display name, or AddressTypeUnknown's "N/A"
	// placeholder when the device did not advertise one.
	Name string `json:"name"`

	// AddressType classifies the address (public, random, N/A).
	AddressType string `json:"address_type"`

	// RSSI is the received signal strength in dBm (more negative = weaker).
	RSSI int `json:"rssi_dBm"`
}

// EventType identifies a presence transition.
type EventType string

// Presence event types.
const (
	// EventNew signals a device observed in enough consecutive cycles
	// to be treated as present.
	EventNew EventType = "NEW"

	// EventLost signals a device silent for longer than its grace period.
	EventLost EventType = "LOST"
)

// Event is a presence transition emitted by the Tracker.
type Event struct {
	Type EventType `json:"type"`
	MAC  string    `json:"mac"`
	Name string    `json:"name"`
	RSSI int       `json:"rssi_dBm"`
}

// deviceRecord is the per-address state owned exclusively by the Tracker.
// A record exists iff the address has been observed at least once and has
// not yet been evicted by Expire.
type deviceRecord struct {
	// consecutiveHits counts immediately-preceding consecutive cycles in
	// which the device was seen. Reset to 0 on any missed cycle.
	consecutiveHits int

	lastRSSI        int
	lastName        string
	lastAddressType string

	// lastSeen is the timestamp of the most recent observation.
	// Zero only transiently before the first observation lands.
	lastSeen time.Time

	// confirmed is true once a NEW event has been emitted for the current
	// presence episode. Cleared only by eviction (the record is deleted).
	confirmed bool

	// seenThisCycle is reset by BeginCycle and set by Observe.
	seenThisCycle bool
}
