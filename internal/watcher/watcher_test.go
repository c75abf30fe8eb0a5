package watcher

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/bluewatch/internal/infrastructure/config"
	"github.com/nerrad567/bluewatch/internal/infrastructure/logging"
	"github.com/nerrad567/bluewatch/internal/journal"
	"github.com/nerrad567/bluewatch/internal/tracker"
)

// scriptedScanner returns pre-built observation batches, one per cycle.
type scriptedScanner struct {
	batches [][]tracker.Observation
	cycle   int
}

func (s *scriptedScanner) Scan(_ context.Context) ([]tracker.Observation, error) {
	if s.cycle >= len(s.batches) {
		return nil, nil
	}
	batch := s.batches[s.cycle]
	s.cycle++
	return batch, nil
}

// memoryJournal collects recorded events in memory.
type memoryJournal struct {
	events      []journal.Entry
	pruneCalls  int
	pruneWindow time.Duration
}

func (m *memoryJournal) RecordEvent(_ context.Context, ev tracker.Event, addressType string, occurredAt time.Time) error {
	m.events = append(m.events, journal.Entry{
		Type:        ev.Type,
		MAC:         ev.MAC,
		Name:        ev.Name,
		AddressType: addressType,
		RSSI:        ev.RSSI,
		OccurredAt:  occurredAt,
	})
	return nil
}

func (m *memoryJournal) RecentEvents(_ context.Context, _ string, _ int) ([]journal.Entry, error) {
	return m.events, nil
}

func (m *memoryJournal) PruneEvents(_ context.Context, olderThan time.Duration) (int64, error) {
	m.pruneCalls++
	m.pruneWindow = olderThan
	return 0, nil
}

// capturingPublisher records published topics and payloads.
type capturingPublisher struct {
	retained map[string][]byte
	events   map[string][][]byte
}

func newCapturingPublisher() *capturingPublisher {
	return &capturingPublisher{
		retained: make(map[string][]byte),
		events:   make(map[string][][]byte),
	}
}

func (p *capturingPublisher) PublishRetained(topic string, payload []byte) error {
	p.retained[topic] = payload
	return nil
}

func (p *capturingPublisher) PublishEvent(topic string, payload []byte) error {
	p.events[topic] = append(p.events[topic], payload)
	return nil
}

// countingTelemetry tracks telemetry write counts.
type countingTelemetry struct {
	signals int
	cycles  int
	events  int
}

func (t *countingTelemetry) WriteSignalStrength(_, _ string, _ int) { t.signals++ }

func (t *countingTelemetry) WriteCycleStats(_, _, _, _ int) { t.cycles++ }

func (t *countingTelemetry) WritePresenceEvent(_, _ string, _ int, _ time.Time) { t.events++ }

func testConfig() *config.Config {
	return &config.Config{
		Scanner: config.ScannerConfig{
			ScanInterval: 0.001,
			MinRSSI:      -100,
		},
		Tracker: config.TrackerConfig{
			GraceSeconds:           10,
			WeakSignalGraceSeconds: 20,
		},
		Database: config.DatabaseConfig{RetentionDays: 0},
	}
}

func obs(ts time.Time, mac string, rssi int) tracker.Observation {
	return tracker.Observation{
		Timestamp:   ts,
		MAC:         mac,
		Name:        "Phone",
		AddressType: tracker.AddressTypePublic,
		RSSI:        rssi,
	}
}

func TestWatcher_EmitsNewAfterTwoCycles(t *testing.T) {
	now := time.Now().UTC()
	mac := "AA:BB:CC:DD:EE:FF"
	source := &scriptedScanner{batches: [][]tracker.Observation{
		{obs(now, mac, -55)},
		{obs(now, mac, -54)},
	}}
	jrnl := &memoryJournal{}
	pub := newCapturingPublisher()
	tel := &countingTelemetry{}

	w := New(testConfig(), source, logging.Default(), Options{
		Journal:   jrnl,
		Publisher: pub,
		Telemetry: tel,
	})

	ctx := context.Background()
	if err := w.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	if len(jrnl.events) != 0 {
		t.Fatalf("got %d events after first cycle, want 0", len(jrnl.events))
	}

	if err := w.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	if len(jrnl.events) != 1 {
		t.Fatalf("got %d events after second cycle, want 1", len(jrnl.events))
	}

	got := jrnl.events[0]
	if got.Type != tracker.EventNew {
		t.Errorf("Type = %q, want NEW", got.Type)
	}
	if got.MAC != mac {
		t.Errorf("MAC = %q, want %q", got.MAC, mac)
	}
	if got.RSSI != -54 {
		t.Errorf("RSSI = %d, want last observed -54", got.RSSI)
	}
	if got.AddressType != tracker.AddressTypePublic {
		t.Errorf("AddressType = %q, want public", got.AddressType)
	}

	// Event published once, presence retained as "present".
	if n := len(pub.events["bluewatch/event/new"]); n != 1 {
		t.Errorf("got %d messages on bluewatch/event/new, want 1", n)
	}
	state, ok := pub.retained["bluewatch/presence/aa-bb-cc-dd-ee-ff"]
	if !ok {
		t.Fatal("no retained presence state published")
	}
	var decoded map[string]any
	if err := json.Unmarshal(state, &decoded); err != nil {
		t.Fatalf("presence payload is not valid JSON: %v", err)
	}
	if decoded["status"] != "present" {
		t.Errorf("presence status = %v, want present", decoded["status"])
	}

	// Telemetry: one signal point per observation, one stats point per cycle.
	if tel.signals != 2 {
		t.Errorf("signal writes = %d, want 2", tel.signals)
	}
	if tel.cycles != 2 {
		t.Errorf("cycle stat writes = %d, want 2", tel.cycles)
	}
	if tel.events != 1 {
		t.Errorf("event writes = %d, want 1", tel.events)
	}
}

func TestWatcher_EmitsLostAfterGrace(t *testing.T) {
	// Two fresh sightings confirm the device; a third sighting carrying a
	// timestamp older than the grace period makes the expiry sweep evict
	// it in the same cycle.
	now := time.Now().UTC()
	stale := now.Add(-time.Hour)
	mac := "AA:BB:CC:DD:EE:01"
	source := &scriptedScanner{batches: [][]tracker.Observation{
		{obs(now, mac, -60)},
		{obs(now, mac, -60)},
		{obs(stale, mac, -60)},
	}}
	jrnl := &memoryJournal{}
	pub := newCapturingPublisher()

	w := New(testConfig(), source, logging.Default(), Options{
		Journal:   jrnl,
		Publisher: pub,
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := w.RunCycle(ctx); err != nil {
			t.Fatalf("RunCycle() error = %v", err)
		}
	}

	if len(jrnl.events) != 2 {
		t.Fatalf("got %d events, want NEW then LOST", len(jrnl.events))
	}
	if jrnl.events[0].Type != tracker.EventNew || jrnl.events[1].Type != tracker.EventLost {
		t.Errorf("event order = %q, %q, want NEW, LOST", jrnl.events[0].Type, jrnl.events[1].Type)
	}

	// Retained state ends as absent.
	state := pub.retained["bluewatch/presence/aa-bb-cc-dd-ee-01"]
	var decoded map[string]any
	if err := json.Unmarshal(state, &decoded); err != nil {
		t.Fatalf("presence payload is not valid JSON: %v", err)
	}
	if decoded["status"] != "absent" {
		t.Errorf("presence status = %v, want absent", decoded["status"])
	}

	if w.DeviceCount() != 0 {
		t.Errorf("DeviceCount() = %d after eviction, want 0", w.DeviceCount())
	}
}

func TestWatcher_FilterBlocksSightings(t *testing.T) {
	now := time.Now().UTC()
	cfg := testConfig()
	cfg.Scanner.MinRSSI = -80
	cfg.Scanner.ExcludeMACPrefixes = []string{"DA:"}

	source := &scriptedScanner{batches: [][]tracker.Observation{
		{obs(now, "DA:00:00:00:00:01", -50), obs(now, "AA:00:00:00:00:01", -90)},
		{obs(now, "DA:00:00:00:00:01", -50), obs(now, "AA:00:00:00:00:01", -90)},
	}}
	jrnl := &memoryJournal{}

	w := New(cfg, source, logging.Default(), Options{Journal: jrnl})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := w.RunCycle(ctx); err != nil {
			t.Fatalf("RunCycle() error = %v", err)
		}
	}

	if len(jrnl.events) != 0 {
		t.Errorf("got %d events, want 0 (all sightings filtered)", len(jrnl.events))
	}
	if w.DeviceCount() != 0 {
		t.Errorf("DeviceCount() = %d, want 0", w.DeviceCount())
	}
}

func TestWatcher_AuditLogWritesJSONL(t *testing.T) {
	now := time.Now().UTC()
	mac := "AA:BB:CC:DD:EE:02"
	path := filepath.Join(t.TempDir(), "audit.log")

	audit, err := NewAuditLog(path)
	if err != nil {
		t.Fatalf("NewAuditLog() error = %v", err)
	}

	source := &scriptedScanner{batches: [][]tracker.Observation{
		{obs(now, mac, -55)},
		{obs(now, mac, -54)},
	}}

	w := New(testConfig(), source, logging.Default(), Options{Audit: audit})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := w.RunCycle(ctx); err != nil {
			t.Fatalf("RunCycle() error = %v", err)
		}
	}
	if err := audit.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening audit log: %v", err)
	}
	defer file.Close()

	var kinds []string
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		var line struct {
			Event string `json:"event"`
			MAC   string `json:"mac"`
			RSSI  int    `json:"rssi_dBm"`
		}
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			t.Fatalf("audit line is not valid JSON: %v", err)
		}
		if line.MAC != mac {
			t.Errorf("line MAC = %q, want %q", line.MAC, mac)
		}
		kinds = append(kinds, line.Event)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("reading audit log: %v", err)
	}

	want := []string{"OBSERVATION", "OBSERVATION", "NEW"}
	if len(kinds) != len(want) {
		t.Fatalf("got %d audit lines %v, want %v", len(kinds), kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, kinds[i], want[i])
		}
	}
}

func TestWatcher_PrunesJournalOnSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Database.RetentionDays = 7

	source := &scriptedScanner{batches: [][]tracker.Observation{{}}}
	jrnl := &memoryJournal{}

	w := New(cfg, source, logging.Default(), Options{Journal: jrnl})
	w.lastPrune = time.Now().Add(-2 * pruneInterval)

	if err := w.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	if jrnl.pruneCalls != 1 {
		t.Fatalf("prune calls = %d, want 1", jrnl.pruneCalls)
	}
	if jrnl.pruneWindow != 7*24*time.Hour {
		t.Errorf("prune window = %v, want 168h", jrnl.pruneWindow)
	}

	// Immediately after, the hourly schedule suppresses another prune.
	if err := w.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	if jrnl.pruneCalls != 1 {
		t.Errorf("prune calls = %d after back-to-back cycles, want 1", jrnl.pruneCalls)
	}
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	source := &scriptedScanner{batches: nil}
	w := New(testConfig(), source, logging.Default(), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil on cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop after cancel")
	}
}
