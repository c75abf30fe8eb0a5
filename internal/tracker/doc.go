// Package tracker implements the presence state machine at the heart of
// bluewatch.
//
// The Tracker consumes one scan cycle's worth of Observations at a time and
// decides when a device transitions from unconfirmed/absent to present
// (a NEW event) and back to absent (a LOST event). Two policies suppress
// flapping:
//
//   - Confirmation debounce: a device must be seen in two consecutive
//     cycles before a NEW event fires. A single-cycle glimpse never
//     becomes an event.
//   - Signal-dependent grace: a present device is declared LOST only after
//     a silence longer than its grace period, and devices whose last known
//     RSSI was below -90 dBm get a longer grace because weak links drop
//     and recover sporadically.
//
// # Per-address lifecycle
//
//	unknown --Observe--> unconfirmed(hits=1)
//	unconfirmed --consecutive hit--> unconfirmed(hits=2) --> confirmed, NEW emitted
//	confirmed --missed cycle--> confirmed (hits reset, no event)
//	any state --silence > grace--> unknown, LOST emitted, record deleted
//
// A re-sighted address after eviction is a brand-new presence episode, not
// a revival.
//
// # Usage
//
//	tr := tracker.New(10*time.Second, 20*time.Second)
//
//	tr.BeginCycle()
//	for _, obs := range scanResults {
//	    tr.Observe(obs)
//	}
//	for _, ev := range tr.FinalizeCycle() {
//	    // ev.Type == tracker.EventNew
//	}
//	for _, ev := range tr.Expire(time.Now().UTC()) {
//	    // ev.Type == tracker.EventLost
//	}
//
// The tracker knows nothing about how observations are produced or where
// events go; acquiring scan results and delivering events belong to the
// watcher package.
//
// # Thread Safety
//
// None by design. The four operations are synchronous, total functions
// driven from a single goroutine (see internal/watcher). Callers needing
// concurrent access must hold their own mutex around the whole cycle.
package tracker
