package tui

import (
	"strings"

	"dqs-sentinel/src/stream"
)

// Item wraps a live TransactionEvent and implements bubbles/list.Item.
type Item struct {
	Event stream.TransactionEvent
}

// FilterValue is the value used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Event.ID }

// Title returns the primary text for the item (required by list.Item).
func (i Item) Title() string { return i.Event.ID }

// Description returns the secondary text for the item (required by list.Item).
func (i Item) Description() string { return i.Event.Reason }

// Clock returns the time-of-day portion of the event timestamp. Timestamps
// are RFC3339, e.g. "2026-08-25T10:05:32Z".
func (i Item) Clock() string {
	ts := i.Event.Timestamp
	if len(ts) >= 19 && ts[10] == 'T' {
		return ts[11:19]
	}
	return ts
}

// FlagsLine returns the fired rule flags as one comma-separated string.
func (i Item) FlagsLine() string {
	if len(i.Event.Flags) == 0 {
		return "none"
	}
	return strings.Join(i.Event.Flags, ", ")
}
