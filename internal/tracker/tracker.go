package tracker

import "time"

// confirmHits is the number of consecutive cycles a device must be seen
// before a NEW event is emitted. Two cycles suppresses single-cycle noise:
// a device glimpsed once and never again never becomes present.
const confirmHits = 2

// weakRSSIThreshold is the signal strength below which the longer grace
// period applies. Weak links drop and recover sporadically; strong-signal
// devices that go silent are more likely to be genuinely gone.
const weakRSSIThreshold = -90

// Tracker decides, from a raw stream of per-cycle device sightings, when a
// device transitions between absent and present. It applies a two-cycle
// confirmation debounce for NEW events and a signal-dependent grace period
// for LOST events.
//
// The four operations must be driven once per cycle, in order:
//
//	tr.BeginCycle()
//	for _, obs := range scanResults {
//	    tr.Observe(obs)
//	}
//	newEvents := tr.FinalizeCycle()
//	lostEvents := tr.Expire(time.Now().UTC())
//
// This contract is a documented precondition, not enforced at runtime.
// Calling operations out of order does not corrupt state or emit spurious
// events, but the output may be degenerate. Skipping Expire for a cycle
// only delays LOST detection: records then outlive their grace period in
// memory until Expire is next called.
//
// Thread Safety: none. All operations must run on a single goroutine with
// no interleaving. Callers that drive the tracker from multiple goroutines
// must serialize the whole cycle sequence themselves.
type Tracker struct {
	devices   map[string]*deviceRecord
	grace     time.Duration
	weakGrace time.Duration
}

// New creates a Tracker.
//
// grace is the maximum tolerated silence for a device with nominal signal;
// weakGrace is the longer tolerance applied when the last known RSSI was
// below -90 dBm.
func New(grace, weakGrace time.Duration) *Tracker {
	return &Tracker{
		devices:   make(map[string]*deviceRecord),
		grace:     grace,
		weakGrace: weakGrace,
	}
}

// BeginCycle marks the start of a scan cycle, clearing the seen flag on
// every known record. Must be called once before feeding observations.
func (t *Tracker) BeginCycle() {
	for _, rec := range t.devices {
		rec.seenThisCycle = false
	}
}

// Observe records one sighting for the current cycle.
//
// The record for the address is created on first sight (unconfirmed, zero
// hits). The last-known name, address type, RSSI, and timestamp always take
// the observation's values; a second Observe for the same address within
// one cycle simply overwrites them. No events are produced here.
func (t *Tracker) Observe(obs Observation) {
	rec, ok := t.devices[obs.MAC]
	if !ok {
		rec = &deviceRecord{}
		t.devices[obs.MAC] = rec
	}
	rec.lastSeen = obs.Timestamp
	rec.lastRSSI = obs.RSSI
	rec.lastName = obs.Name
	rec.lastAddressType = obs.AddressType
	rec.seenThisCycle = true
}

// FinalizeCycle closes the current cycle and returns the NEW events it
// produced.
//
// Every record seen this cycle gains a consecutive hit; reaching two hits
// while unconfirmed emits exactly one NEW event and marks the record
// confirmed. A record not seen this cycle has its hit count reset to 0,
// with no event and no change to its confirmed flag; eviction is solely
// time-based via Expire.
//
// Event order follows map iteration order and must not be relied upon.
func (t *Tracker) FinalizeCycle() []Event {
	var events []Event
	for mac, rec := range t.devices {
		if !rec.seenThisCycle {
			rec.consecutiveHits = 0
			continue
		}
		rec.consecutiveHits++
		if !rec.confirmed && rec.consecutiveHits >= confirmHits {
			rec.confirmed = true
			events = append(events, Event{
				Type: EventNew,
				MAC:  mac,
				Name: rec.lastName,
				RSSI: rec.lastRSSI,
			})
		}
	}
	return events
}

// Expire evicts every record silent for longer than its effective grace
// period and returns the corresponding LOST events.
//
// The effective grace is weakGrace when the last known RSSI was below
// -90 dBm, grace otherwise. Eviction removes the record entirely: a later
// sighting of the same address starts a fresh, unconfirmed presence
// episode. A record with a zero last-seen timestamp is skipped, never
// expired.
//
// Deleting map entries during range is safe in Go: each record is
// evaluated at most once and no surviving record is skipped.
func (t *Tracker) Expire(now time.Time) []Event {
	var events []Event
	for mac, rec := range t.devices {
		if rec.lastSeen.IsZero() {
			continue
		}
		effective := t.grace
		if rec.lastRSSI < weakRSSIThreshold {
			effective = t.weakGrace
		}
		if now.Sub(rec.lastSeen) > effective {
			events = append(events, Event{
				Type: EventLost,
				MAC:  mac,
				Name: rec.lastName,
				RSSI: rec.lastRSSI,
			})
			delete(t.devices, mac)
		}
	}
	return events
}

// DeviceCount returns the number of addresses currently tracked,
// confirmed or not.
func (t *Tracker) DeviceCount() int {
	return len(t.devices)
}
