package watcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/bluewatch/internal/infrastructure/config"
	"github.com/nerrad567/bluewatch/internal/infrastructure/logging"
	"github.com/nerrad567/bluewatch/internal/infrastructure/mqtt"
	"github.com/nerrad567/bluewatch/internal/journal"
	"github.com/nerrad567/bluewatch/internal/scanner"
	"github.com/nerrad567/bluewatch/internal/tracker"
)

// pruneInterval is how often the journal retention policy is applied.
const pruneInterval = time.Hour

// Publisher is the subset of the MQTT client the watcher needs.
type Publisher interface {
	PublishRetained(topic string, payload []byte) error
	PublishEvent(topic string, payload []byte) error
}

// Telemetry is the subset of the InfluxDB client the watcher needs.
type Telemetry interface {
	WriteSignalStrength(mac string, name string, rssi int)
	WriteCycleStats(observed, tracked, newCount, lostCount int)
	WritePresenceEvent(eventType string, mac string, rssi int, occurredAt time.Time)
}

// Watcher drives the scan/track/deliver loop.
//
// Each cycle it pulls one batch of sightings from the scanner, applies
// the filter, feeds the tracker, and fans the resulting NEW/LOST events
// out to every configured sink. Only the tracker and the audit log are
// mandatory; journal, MQTT, and telemetry are optional and a nil sink
// is skipped.
//
// Sink failures are logged and never stop the loop: presence detection
// keeps running when the broker or database is down.
type Watcher struct {
	cfg     *config.Config
	source  scanner.Scanner
	filter  *scanner.Filter
	tracker *tracker.Tracker
	log     *logging.Logger

	audit     *AuditLog
	journal   journal.Repository
	publisher Publisher
	telemetry Telemetry

	// addrTypes remembers the last known address type per device so LOST
	// events can be journaled with it after the tracker record is gone.
	addrTypes map[string]string

	lastPrune time.Time
}

// Options carries the optional sinks for New.
type Options struct {
	Audit     *AuditLog
	Journal   journal.Repository
	Publisher Publisher
	Telemetry Telemetry
}

// New creates a Watcher.
func New(cfg *config.Config, source scanner.Scanner, log *logging.Logger, opts Options) *Watcher {
	return &Watcher{
		cfg:       cfg,
		source:    source,
		filter:    scanner.NewFilter(cfg.Scanner),
		tracker:   tracker.New(cfg.Grace(), cfg.WeakGrace()),
		log:       log,
		audit:     opts.Audit,
		journal:   opts.Journal,
		publisher: opts.Publisher,
		telemetry: opts.Telemetry,
		addrTypes: make(map[string]string),
		lastPrune: time.Now(),
	}
}

// Run executes scan cycles until the context is cancelled.
//
// The scanner owns the cycle pacing: Scan blocks for one scan interval.
// Run returns nil on cancellation and an error only if the scanner
// fails in a way that is not a cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info("watcher started",
		"scan_interval", w.cfg.ScanInterval().String(),
		"grace", w.cfg.Grace().String(),
		"weak_grace", w.cfg.WeakGrace().String(),
	)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopping", "tracked_devices", w.tracker.DeviceCount())
			return nil
		default:
		}

		if err := w.RunCycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				w.log.Info("watcher stopping", "tracked_devices", w.tracker.DeviceCount())
				return nil
			}
			w.log.Error("scan cycle failed", "error", err)
		}
	}
}

// RunCycle executes exactly one scan cycle.
func (w *Watcher) RunCycle(ctx context.Context) error {
	w.tracker.BeginCycle()

	observations, err := w.source.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	observations = w.filter.Apply(observations)
	for _, obs := range observations {
		w.tracker.Observe(obs)
		w.addrTypes[obs.MAC] = obs.AddressType

		if w.audit != nil {
			if err := w.audit.LogObservation(obs); err != nil {
				w.log.Warn("audit log write failed", "error", err)
			}
		}
		if w.telemetry != nil {
			w.telemetry.WriteSignalStrength(obs.MAC, obs.Name, obs.RSSI)
		}
	}

	now := time.Now().UTC()
	newEvents := w.tracker.FinalizeCycle()
	lostEvents := w.tracker.Expire(now)

	for _, ev := range newEvents {
		w.deliver(ctx, ev, now)
	}
	for _, ev := range lostEvents {
		w.deliver(ctx, ev, now)
		delete(w.addrTypes, ev.MAC)
	}

	if w.telemetry != nil {
		w.telemetry.WriteCycleStats(len(observations), w.tracker.DeviceCount(), len(newEvents), len(lostEvents))
	}

	w.maybePrune(ctx, now)

	return nil
}

// deliver fans one event out to every configured sink.
func (w *Watcher) deliver(ctx context.Context, ev tracker.Event, occurredAt time.Time) {
	w.log.Info("presence event",
		"type", string(ev.Type),
		"mac", ev.MAC,
		"name", ev.Name,
		"rssi_dbm", ev.RSSI,
	)

	if w.audit != nil {
		if err := w.audit.LogEvent(ev, occurredAt); err != nil {
			w.log.Warn("audit log write failed", "error", err)
		}
	}

	if w.journal != nil {
		if err := w.journal.RecordEvent(ctx, ev, w.addrTypes[ev.MAC], occurredAt); err != nil {
			w.log.Error("journaling event failed", "mac", ev.MAC, "error", err)
		}
	}

	if w.publisher != nil {
		w.publishEvent(ev, occurredAt)
	}

	if w.telemetry != nil {
		w.telemetry.WritePresenceEvent(string(ev.Type), ev.MAC, ev.RSSI, occurredAt)
	}
}

// presencePayload is the retained per-device state message.
type presencePayload struct {
	MAC       string `json:"mac"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	RSSI      int    `json:"rssi_dBm"`
	Timestamp string `json:"timestamp"`
}

// eventPayload is the transition event message.
type eventPayload struct {
	Type        string `json:"type"`
	MAC         string `json:"mac"`
	Name        string `json:"name"`
	AddressType string `json:"address_type,omitempty"`
	RSSI        int    `json:"rssi_dBm"`
	Timestamp   string `json:"timestamp"`
}

// publishEvent publishes the transition event and the retained presence
// state for the device.
func (w *Watcher) publishEvent(ev tracker.Event, occurredAt time.Time) {
	topics := mqtt.Topics{}
	ts := occurredAt.UTC().Format(time.RFC3339)

	status := "present"
	if ev.Type == tracker.EventLost {
		status = "absent"
	}

	evPayload, err := json.Marshal(eventPayload{
		Type:        string(ev.Type),
		MAC:         ev.MAC,
		Name:        ev.Name,
		AddressType: w.addrTypes[ev.MAC],
		RSSI:        ev.RSSI,
		Timestamp:   ts,
	})
	if err == nil {
		if err := w.publisher.PublishEvent(topics.Event(string(ev.Type)), evPayload); err != nil {
			w.log.Warn("publishing event failed", "mac", ev.MAC, "error", err)
		}
	}

	statePayload, err := json.Marshal(presencePayload{
		MAC:       ev.MAC,
		Name:      ev.Name,
		Status:    status,
		RSSI:      ev.RSSI,
		Timestamp: ts,
	})
	if err == nil {
		if err := w.publisher.PublishRetained(topics.Presence(ev.MAC), statePayload); err != nil {
			w.log.Warn("publishing presence state failed", "mac", ev.MAC, "error", err)
		}
	}
}

// maybePrune applies the journal retention policy at most once per hour.
func (w *Watcher) maybePrune(ctx context.Context, now time.Time) {
	if w.journal == nil {
		return
	}
	retention := w.cfg.Retention()
	if retention <= 0 {
		return
	}
	if now.Sub(w.lastPrune) < pruneInterval {
		return
	}
	w.lastPrune = now

	pruned, err := w.journal.PruneEvents(ctx, retention)
	if err != nil {
		w.log.Warn("journal prune failed", "error", err)
		return
	}
	if pruned > 0 {
		w.log.Info("journal pruned", "events", pruned)
	}
}

// DeviceCount exposes the tracker's current device count for status reporting.
func (w *Watcher) DeviceCount() int {
	return w.tracker.DeviceCount()
}
