// Package stream implements the live monitoring core: a connection actor
// that keeps a broker session alive, and a dispatcher actor that turns
// scored transactions into display events, running statistics and a bounded
// replay buffer.
package stream

import "dqs-sentinel/src/contracts"

// TransactionEvent is the normalized view of one scored transaction, built
// from the raw stream payload for display and replay.
type TransactionEvent struct {
	ID           string
	Timestamp    string
	Amount       float64
	Currency     string
	Status       string
	Merchant     string
	Score        float64
	Action       contracts.Action
	Reason       string
	Flags        []string
	ProcessingMs float64
}

// Event is the interface for all events flowing from the dispatcher to the
// UI. The UI reads from a channel and re-renders on each event; delivery is
// non-blocking on the dispatcher side.
type Event interface {
	liveEvent() // marker method
}

// ConnectingEvent is emitted when a connection attempt begins.
type ConnectingEvent struct{}

func (ConnectingEvent) liveEvent() {}

// ConnectedEvent is emitted once a session is established and the initial
// server statistics have arrived.
type ConnectedEvent struct {
	Stats contracts.StatsSnapshot
}

func (ConnectedEvent) liveEvent() {}

// ConnectErrorEvent is emitted when a connection attempt fails before a
// session was established.
type ConnectErrorEvent struct {
	Err string
}

func (ConnectErrorEvent) liveEvent() {}

// DisconnectedEvent is emitted when an established session drops.
type DisconnectedEvent struct {
	Reason string
}

func (DisconnectedEvent) liveEvent() {}

// StreamStartedEvent is emitted when the backend acknowledges the stream.
type StreamStartedEvent struct {
	AlreadyRunning bool
}

func (StreamStartedEvent) liveEvent() {}

// StreamStoppedEvent is emitted when the backend confirms the stream
// stopped.
type StreamStoppedEvent struct{}

func (StreamStoppedEvent) liveEvent() {}

// CommandFailedEvent is emitted when a control command gets no usable reply.
type CommandFailedEvent struct {
	Command string
	Err     string
}

func (CommandFailedEvent) liveEvent() {}

// TransactionAddedEvent is emitted for each accepted transaction, carrying
// the event itself plus the statistics after recording it.
type TransactionAddedEvent struct {
	Event TransactionEvent
	Stats contracts.StatsSnapshot
}

func (TransactionAddedEvent) liveEvent() {}

// ClearedEvent is emitted after a successful clear of both the backend log
// and the local state.
type ClearedEvent struct{}

func (ClearedEvent) liveEvent() {}
