package telemetry

import (
	"context"
	"time"
)

// Collector mirrors the sample stream into secondary storage. The text
// data file stays the record of truth; a collector failure must never
// stop an acquisition.
type Collector interface {
	Record(ctx context.Context, sample *Sample) error
	Close() error
}

// Sample is one mirrored acquisition record.
type Sample struct {
	// SessionStart identifies the acquisition run the sample belongs to.
	SessionStart time.Time
	// Minutes is the elapsed time since loop start.
	Minutes float64
	// Reading1 and Reading2 carry the raw instrument text verbatim.
	Reading1 string
	Reading2 string
}
