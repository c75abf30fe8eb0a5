package watcher

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nerrad567/bluewatch/internal/tracker"
)

// AuditLog appends one JSON object per line to a local file.
//
// Every raw observation and every emitted event is recorded, giving a
// replayable trace of what the watcher saw even when all other sinks
// are disabled or down.
type AuditLog struct {
	mu   sync.Mutex
	file *os.File
}

// auditLine is the wire format of one audit log line.
type auditLine struct {
	Event       string `json:"event"`
	Timestamp   string `json:"timestamp"`
	MAC         string `json:"mac"`
	Name        string `json:"name"`
	AddressType string `json:"address_type,omitempty"`
	RSSI        int    `json:"rssi_dBm"`
}

// NewAuditLog opens (or creates) the log file in append mode.
func NewAuditLog(path string) (*AuditLog, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &AuditLog{file: file}, nil
}

// LogObservation records one raw sighting.
func (a *AuditLog) LogObservation(obs tracker.Observation) error {
	return a.write(auditLine{
		Event:       "OBSERVATION",
		Timestamp:   obs.Timestamp.UTC().Format(time.RFC3339),
		MAC:         obs.MAC,
		Name:        obs.Name,
		AddressType: obs.AddressType,
		RSSI:        obs.RSSI,
	})
}

// LogEvent records one presence transition.
func (a *AuditLog) LogEvent(ev tracker.Event, occurredAt time.Time) error {
	return a.write(auditLine{
		Event:     string(ev.Type),
		Timestamp: occurredAt.UTC().Format(time.RFC3339),
		MAC:       ev.MAC,
		Name:      ev.Name,
		RSSI:      ev.RSSI,
	})
}

func (a *AuditLog) write(line auditLine) error {
	data, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("encoding audit line: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing audit line: %w", err)
	}
	return nil
}

// Close flushes and closes the log file.
func (a *AuditLog) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.file.Close()
}
