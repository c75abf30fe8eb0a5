package scanner

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/nerrad567/bluewatch/internal/tracker"
)

// Churn probabilities for the synthetic radio environment.
const (
	// simDropChance is the per-cycle probability a present device vanishes.
	simDropChance = 0.1

	// simArriveChance is the per-cycle probability a new device appears.
	simArriveChance = 0.3

	// simRSSIMin and simRSSIMax bound the initial signal of new devices.
	simRSSIMin = -80
	simRSSIMax = -40
)

// Simulator is a deterministic synthetic Scanner for development and demos.
//
// Each cycle, present devices drift +/-2 dBm and occasionally vanish;
// new devices appear with a fresh address. Identical seeds reproduce
// identical runs.
//
// Simulator is not safe for concurrent use; it belongs to the single
// watcher goroutine, like the tracker it feeds.
type Simulator struct {
	rng      *rand.Rand
	interval time.Duration
	active   map[string]*simDevice
	counter  int
	now      func() time.Time
}

type simDevice struct {
	name string
	rssi int
}

// NewSimulator creates a Simulator with the given seed and cycle length.
func NewSimulator(seed int64, interval time.Duration) *Simulator {
	return &Simulator{
		rng:      rand.New(rand.NewSource(seed)),
		interval: interval,
		active:   make(map[string]*simDevice),
		now:      time.Now,
	}
}

// Scan sleeps for one cycle and returns the synthetic sightings.
func (s *Simulator) Scan(ctx context.Context) ([]tracker.Observation, error) {
	if s.interval > 0 {
		timer := time.NewTimer(s.interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return s.generate(), nil
}

// generate advances the synthetic environment by one cycle.
//
// Map iteration order is randomized by the runtime, which would break
// seed determinism; devices are visited in sorted address order instead.
func (s *Simulator) generate() []tracker.Observation {
	ts := s.now().UTC()
	observations := []tracker.Observation{}

	macs := make([]string, 0, len(s.active))
	for mac := range s.active {
		macs = append(macs, mac)
	}
	sort.Strings(macs)

	for _, mac := range macs {
		dev := s.active[mac]
		if s.rng.Float64() < simDropChance {
			delete(s.active, mac)
			continue
		}
		dev.rssi += s.rng.Intn(5) - 2 // drift within [-2, +2]
		observations = append(observations, tracker.Observation{
			Timestamp:   ts,
			MAC:         mac,
			Name:        dev.name,
			AddressType: tracker.AddressTypePublic,
			RSSI:        dev.rssi,
		})
	}

	if s.rng.Float64() < simArriveChance {
		mac := s.newMAC()
		rssi := simRSSIMin + s.rng.Intn(simRSSIMax-simRSSIMin+1)
		name := "Sim" + mac[len(mac)-2:]
		s.active[mac] = &simDevice{name: name, rssi: rssi}
		observations = append(observations, tracker.Observation{
			Timestamp:   ts,
			MAC:         mac,
			Name:        name,
			AddressType: tracker.AddressTypePublic,
			RSSI:        rssi,
		})
	}

	return observations
}

// newMAC returns the next locally-administered synthetic address.
func (s *Simulator) newMAC() string {
	s.counter++
	return fmt.Sprintf("02:00:00:00:00:%02X", s.counter)
}
