package scanner

import (
	"context"

	"github.com/nerrad567/bluewatch/internal/tracker"
)

// Scanner produces one batch of device sightings per scan cycle.
//
// Implementations block for at most the duration of a cycle and return
// whatever sightings arrived in that window. The same device may appear
// more than once in a batch; the tracker keeps the latest observation.
type Scanner interface {
	// Scan performs one scan cycle and returns the sightings it produced.
	// It returns early with ctx.Err() if the context is cancelled.
	Scan(ctx context.Context) ([]tracker.Observation, error)
}
