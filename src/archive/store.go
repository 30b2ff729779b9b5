// Package archive persists the live event stream as queryable log entries.
package archive

import (
	"context"
	"math"

	"dqs-sentinel/src/contracts"
)

// Store defines the interface for persisting live log entries.
type Store interface {
	// Append saves a single log entry
	Append(ctx context.Context, entry contracts.LogEntry) error

	// Range returns entries within [start, end]. Bounds are ISO8601 strings
	// compared lexicographically; an empty bound is open. Entries come back
	// in timestamp order.
	Range(ctx context.Context, start, end string) ([]contracts.LogEntry, error)

	// Stats returns aggregate counts over all entries
	Stats(ctx context.Context) (contracts.StatsSnapshot, error)

	// Clear removes all entries
	Clear(ctx context.Context) error

	// Close closes the store connection
	Close() error
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
