// Package journal persists emitted presence events.
//
// The journal is an append-mostly audit trail: every NEW and LOST event
// the watcher delivers is recorded with the timestamp attached at
// emission time. Raw per-cycle observations are deliberately not stored;
// the tracker alone holds the data needed for grace-period decisions.
//
// Retention is controlled by database.retention_days in config.yaml; the
// watcher prunes old rows opportunistically after each cycle that
// produced events.
package journal
