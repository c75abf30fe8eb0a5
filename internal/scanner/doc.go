// Package scanner provides sighting sources for the presence watcher.
//
// A Scanner yields one batch of observations per cycle. Two sources are
// provided:
//
//   - Simulator: a seeded synthetic radio environment for development
//     and demos, with devices that wander in and out of range.
//   - MQTTSource: ingests sightings published by remote scan agents on
//     bluewatch/sighting/{agent}, letting several hosts feed one tracker.
//
// Filter applies signal and address policy (min RSSI, excluded MAC
// prefixes) before sightings reach the tracker.
package scanner
