package journal

import (
	"context"
	"time"

	"github.com/nerrad567/bluewatch/internal/tracker"
)

// Entry represents a single persisted presence event.
//
// Each entry stores the event as emitted plus the address type and
// timestamp attached at emission time. This provides a local audit trail
// even when MQTT and the time-series database are unavailable.
type Entry struct {
	// ID is the auto-incremented primary key for the journal row.
	ID int64 `json:"id"`

	// Type is the presence transition (NEW or LOST).
	Type tracker.EventType `json:"type"`

	// MAC is the device address.
	MAC string `json:"mac"`

	// Name is the last known display name.
	Name string `json:"name"`

	// AddressType is the last known address classification.
	AddressType string `json:"address_type"`

	// RSSI is the last known signal strength in dBm.
	RSSI int `json:"rssi_dBm"`

	// OccurredAt is the emission timestamp (UTC).
	OccurredAt time.Time `json:"occurred_at"`
}

// Repository stores and retrieves presence events.
//
// Implementations must be thread-safe and use UTC timestamps.
type Repository interface {
	// RecordEvent persists one presence event with its emission time.
	RecordEvent(ctx context.Context, ev tracker.Event, addressType string, occurredAt time.Time) error

	// RecentEvents returns the newest events first, up to limit.
	// A mac filter of "" returns events for all addresses.
	RecentEvents(ctx context.Context, mac string, limit int) ([]Entry, error)

	// PruneEvents deletes events older than the given age and reports
	// how many rows were removed.
	PruneEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}
