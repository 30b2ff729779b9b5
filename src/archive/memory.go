// Package archive provides an in-memory store implementation.
package archive

import (
	"context"
	"sort"
	"sync"

	"dqs-sentinel/src/contracts"
)

// MemoryStore is an in-memory implementation of Store.
// Useful for testing and local runs without Postgres.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []contracts.LogEntry
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append saves a single log entry.
func (s *MemoryStore) Append(ctx context.Context, entry contracts.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	return nil
}

// Range returns entries within [start, end], both bounds inclusive and
// optional. Comparison is lexicographic over the stored ISO8601 strings.
func (s *MemoryStore) Range(ctx context.Context, start, end string) ([]contracts.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []contracts.LogEntry
	for _, entry := range s.entries {
		if start != "" && entry.Timestamp < start {
			continue
		}
		if end != "" && entry.Timestamp > end {
			continue
		}
		result = append(result, entry)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})
	return result, nil
}

// Stats returns aggregate counts over all entries.
func (s *MemoryStore) Stats(ctx context.Context) (contracts.StatsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats contracts.StatsSnapshot
	var sum float64
	for _, entry := range s.entries {
		switch entry.Action {
		case contracts.ActionSafe:
			stats.Safe++
		case contracts.ActionReview:
			stats.Review++
		case contracts.ActionEscalate:
			stats.Escalate++
		case contracts.ActionNone:
			stats.Rejected++
		}
		sum += entry.DQSScore
	}
	stats.Total = len(s.entries)
	if stats.Total > 0 {
		stats.AvgDQS = round1(sum / float64(stats.Total))
	}
	return stats, nil
}

// Clear removes all entries.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return nil
}

// Close closes the store (no-op for memory store).
func (s *MemoryStore) Close() error {
	return nil
}
