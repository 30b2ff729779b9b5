package stream

// DefaultBufferCapacity bounds the replay window when no capacity is
// configured.
const DefaultBufferCapacity = 100

// EventBuffer is a fixed-capacity ring of the most recent transaction
// events. Like the aggregator it is owned by the dispatcher loop and is not
// safe for concurrent use.
type EventBuffer struct {
	items []TransactionEvent
	next  int
	full  bool
}

// NewEventBuffer returns a buffer holding at most capacity events. A
// non-positive capacity falls back to DefaultBufferCapacity.
func NewEventBuffer(capacity int) *EventBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &EventBuffer{items: make([]TransactionEvent, capacity)}
}

// Push appends an event, evicting the oldest once the ring is full.
func (b *EventBuffer) Push(ev TransactionEvent) {
	b.items[b.next] = ev
	b.next++
	if b.next == len(b.items) {
		b.next = 0
		b.full = true
	}
}

// Len reports how many events are currently buffered.
func (b *EventBuffer) Len() int {
	if b.full {
		return len(b.items)
	}
	return b.next
}

// List returns the buffered events newest first. The slice is a copy; the
// caller may keep it across loop turns.
func (b *EventBuffer) List() []TransactionEvent {
	n := b.Len()
	out := make([]TransactionEvent, 0, n)
	for i := 1; i <= n; i++ {
		idx := b.next - i
		if idx < 0 {
			idx += len(b.items)
		}
		out = append(out, b.items[idx])
	}
	return out
}

// Clear drops all buffered events while keeping the allocated ring.
func (b *EventBuffer) Clear() {
	b.next = 0
	b.full = false
	for i := range b.items {
		b.items[i] = TransactionEvent{}
	}
}
