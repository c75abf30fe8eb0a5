package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/bluewatch/internal/infrastructure/mqtt"
	"github.com/nerrad567/bluewatch/internal/tracker"
)

// defaultSightingBuffer bounds how many sightings can queue between cycles.
// When full, the oldest sightings are discarded; the device will be seen
// again next cycle if it is still in range.
const defaultSightingBuffer = 1024

// Subscriber is the subset of the MQTT client MQTTSource needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// MQTTSource is a Scanner fed by remote scan agents over MQTT.
//
// Agents publish one JSON observation per message on
// bluewatch/sighting/{agent}. Messages accumulate in a bounded buffer;
// each Scan call sleeps for one cycle and then drains whatever arrived,
// so the watcher loop sees remote agents exactly like a local radio.
type MQTTSource struct {
	interval time.Duration

	mu      sync.Mutex
	pending []tracker.Observation
}

// NewMQTTSource creates a source and subscribes it to the sighting topics.
func NewMQTTSource(sub Subscriber, topic string, qos byte, interval time.Duration) (*MQTTSource, error) {
	s := &MQTTSource{interval: interval}

	if err := sub.Subscribe(topic, qos, s.handleMessage); err != nil {
		return nil, fmt.Errorf("subscribing to sightings: %w", err)
	}

	return s, nil
}

// handleMessage decodes one sighting and queues it for the next Scan.
func (s *MQTTSource) handleMessage(_ string, payload []byte) error {
	var obs tracker.Observation
	if err := json.Unmarshal(payload, &obs); err != nil {
		return fmt.Errorf("decoding sighting: %w", err)
	}
	if obs.MAC == "" {
		return fmt.Errorf("sighting missing mac")
	}
	if obs.Timestamp.IsZero() {
		obs.Timestamp = time.Now().UTC()
	}
	if obs.Name == "" {
		obs.Name = "N/A"
	}
	if obs.AddressType == "" {
		obs.AddressType = tracker.AddressTypeUnknown
	}

	s.mu.Lock()
	if len(s.pending) >= defaultSightingBuffer {
		s.pending = s.pending[1:]
	}
	s.pending = append(s.pending, obs)
	s.mu.Unlock()

	return nil
}

// Scan waits one cycle and returns the sightings that arrived meanwhile.
func (s *MQTTSource) Scan(ctx context.Context) ([]tracker.Observation, error) {
	if s.interval > 0 {
		timer := time.NewTimer(s.interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	return batch, nil
}

// Pending returns the number of queued sightings. Useful for monitoring.
func (s *MQTTSource) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
