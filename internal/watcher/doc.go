// Package watcher drives the presence detection loop.
//
// One cycle is: pull a batch of sightings from the scanner, filter them,
// feed the tracker, then fan emitted NEW/LOST events out to the sinks:
//
//	scanner → filter → tracker → {audit log, journal, MQTT, InfluxDB}
//
// The scanner owns cycle pacing (Scan blocks for one scan interval), so
// the loop itself has no timer. All sinks except the tracker are
// optional; failures in one sink never block the others or stop the
// loop.
package watcher
