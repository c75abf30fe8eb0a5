package scanner

import (
	"strings"

	"github.com/nerrad567/bluewatch/internal/infrastructure/config"
	"github.com/nerrad567/bluewatch/internal/tracker"
)

// Filter drops sightings the watcher should never see.
//
// Two policies apply, both from scanner config:
//   - sightings weaker than min_rssi_dbm
//   - sightings whose address starts with an excluded prefix
//
// Prefix matching is case-insensitive; "DA:" matches "da:1b:...".
type Filter struct {
	minRSSI  int
	prefixes []string
}

// NewFilter builds a Filter from scanner configuration.
func NewFilter(cfg config.ScannerConfig) *Filter {
	prefixes := make([]string, 0, len(cfg.ExcludeMACPrefixes))
	for _, p := range cfg.ExcludeMACPrefixes {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			prefixes = append(prefixes, p)
		}
	}

	return &Filter{
		minRSSI:  cfg.MinRSSI,
		prefixes: prefixes,
	}
}

// Apply returns the observations that pass both policies, preserving order.
//
// The input slice is not modified.
func (f *Filter) Apply(observations []tracker.Observation) []tracker.Observation {
	kept := make([]tracker.Observation, 0, len(observations))
	for _, obs := range observations {
		if f.Keep(obs) {
			kept = append(kept, obs)
		}
	}
	return kept
}

// Keep reports whether a single observation passes the filter.
func (f *Filter) Keep(obs tracker.Observation) bool {
	if obs.RSSI < f.minRSSI {
		return false
	}

	mac := strings.ToLower(obs.MAC)
	for _, prefix := range f.prefixes {
		if strings.HasPrefix(mac, prefix) {
			return false
		}
	}

	return true
}
