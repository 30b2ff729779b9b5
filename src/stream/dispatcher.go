package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"dqs-sentinel/src/contracts"
	"dqs-sentinel/src/logger"
)

// Backend is the REST surface the dispatcher needs: history queries and the
// destructive clear. Satisfied by api.Client.
type Backend interface {
	// LiveLogs fetches persisted log entries. start and end are ISO8601
	// strings; either may be empty for an open bound.
	LiveLogs(ctx context.Context, start, end string) (contracts.LogsResponse, error)

	// ClearLive wipes the backend's live log.
	ClearLive(ctx context.Context) error
}

// Snapshot is a point-in-time copy of the dispatcher's state, safe to read
// outside the loop.
type Snapshot struct {
	State      ConnState
	Streaming  bool
	Stats      contracts.StatsSnapshot
	Events     []TransactionEvent
	Violations int
	Dropped    uint64
}

type dispatchOp interface {
	dispatchOp()
}

type opStartStream struct{}

func (opStartStream) dispatchOp() {}

type opStopStream struct{}

func (opStopStream) dispatchOp() {}

type opClearLocal struct {
	done chan struct{}
}

func (opClearLocal) dispatchOp() {}

type opSnapshot struct {
	reply chan Snapshot
}

func (opSnapshot) dispatchOp() {}

// Dispatcher is the event-routing actor. A single goroutine owns the stats
// aggregator, the replay buffer and the stream intent flags; it consumes
// connection notices in order and turns them into display events. Commands
// from the UI enter through the ops channel, so every mutation happens on
// the loop.
type Dispatcher struct {
	conn    *Conn
	backend Backend
	log     logger.Logger

	ops    chan dispatchOp
	events chan Event

	dropped atomic.Uint64

	startOnce sync.Once
	done      chan struct{}

	// Loop-owned state. Only the run goroutine touches anything below.
	stats  *StatsAggregator
	buffer *EventBuffer
	state  ConnState

	// wantStream is the user's intent; started is the backend's ack. The
	// gap between them drives reconnect-and-resume.
	wantStream   bool
	started      bool
	startPending bool

	violations int
}

// NewDispatcher wires the dispatcher to a connection actor and a backend
// client. Call Start before using it.
func NewDispatcher(conn *Conn, backend Backend, bufferCap int, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Dispatcher{
		conn:    conn,
		backend: backend,
		log:     log,
		ops:     make(chan dispatchOp, 16),
		events:  make(chan Event, 256),
		done:    make(chan struct{}),
		stats:   NewStatsAggregator(),
		buffer:  NewEventBuffer(bufferCap),
	}
}

// Start launches the connection actor and the dispatch loop.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		d.conn.Start(ctx)
		go d.run()
	})
}

// Close tears the connection down and waits for the dispatch loop to drain.
func (d *Dispatcher) Close() {
	d.conn.Shutdown()
	<-d.done
}

// Events returns the display stream. The channel closes when the dispatcher
// stops. A slow reader loses events rather than stalling dispatch; drops are
// counted and show up in snapshots.
func (d *Dispatcher) Events() <-chan Event {
	return d.events
}

// StartStream asks for the live stream. Idempotent: repeat calls while a
// connection or start request is in flight change nothing. Connects first if
// needed.
func (d *Dispatcher) StartStream() {
	d.submit(opStartStream{})
}

// StopStream stops the live stream if it is running and cancels any pending
// reconnect. When not connected it only cancels the retry.
func (d *Dispatcher) StopStream() {
	d.submit(opStopStream{})
}

// Snapshot returns the current state. Zero value after Close.
func (d *Dispatcher) Snapshot() Snapshot {
	reply := make(chan Snapshot, 1)
	select {
	case d.ops <- opSnapshot{reply: reply}:
	case <-d.done:
		return Snapshot{}
	}
	select {
	case s := <-reply:
		return s
	case <-d.done:
		return Snapshot{}
	}
}

// FetchHistory queries the backend's persisted log over HTTP. It never
// touches the live tallies or the replay buffer.
func (d *Dispatcher) FetchHistory(ctx context.Context, start, end string) (contracts.LogsResponse, error) {
	return d.backend.LiveLogs(ctx, start, end)
}

// Clear wipes the backend log first, then resets the local stats and buffer
// in one loop turn. If the backend call fails nothing local changes.
func (d *Dispatcher) Clear(ctx context.Context) error {
	if err := d.backend.ClearLive(ctx); err != nil {
		return fmt.Errorf("backend clear failed: %w", err)
	}

	done := make(chan struct{})
	select {
	case d.ops <- opClearLocal{done: done}:
	case <-d.done:
		return nil
	}
	select {
	case <-done:
	case <-d.done:
	}
	return nil
}

func (d *Dispatcher) submit(op dispatchOp) {
	select {
	case d.ops <- op:
	case <-d.done:
	}
}

func (d *Dispatcher) emit(ev Event) {
	select {
	case d.events <- ev:
	default:
		d.dropped.Add(1)
	}
}

// run drains connection notices until the actor closes its channel. Exiting
// on channel closure rather than a context keeps the contract simple: the
// connection actor can always deliver, and its shutdown is ours.
func (d *Dispatcher) run() {
	defer close(d.done)
	defer close(d.events)

	for {
		select {
		case n, ok := <-d.conn.notices:
			if !ok {
				return
			}
			d.handleNotice(n)
		case op := <-d.ops:
			d.handleOp(op)
		}
	}
}

func (d *Dispatcher) handleNotice(n connNotice) {
	switch n := n.(type) {
	case connStateChanged:
		d.state = n.state
		switch n.state {
		case StateConnecting:
			d.emit(ConnectingEvent{})
		case StateConnected:
			if d.wantStream && !d.started && !d.startPending {
				// Connected display state waits for the start ack, which
				// carries the server's stats.
				d.startPending = true
				d.conn.SendCommand(contracts.CommandStartStream)
			} else {
				d.emit(ConnectedEvent{Stats: d.stats.Snapshot()})
			}
		case StateDisconnected:
			d.started = false
			d.startPending = false
			d.emit(DisconnectedEvent{Reason: n.reason})
		}

	case connDialFailed:
		d.state = StateDisconnected
		d.startPending = false
		d.emit(ConnectErrorEvent{Err: n.err})

	case connMessage:
		d.handleTransaction(n.msg.Value)

	case connCommandResult:
		d.handleCommandResult(n)
	}
}

func (d *Dispatcher) handleOp(op dispatchOp) {
	switch op := op.(type) {
	case opStartStream:
		d.wantStream = true
		switch d.state {
		case StateDisconnected:
			d.conn.Connect()
		case StateConnecting:
			// The attempt in flight picks the stream up on connect.
		case StateConnected:
			if !d.started && !d.startPending {
				d.startPending = true
				d.conn.SendCommand(contracts.CommandStartStream)
			}
		}

	case opStopStream:
		d.wantStream = false
		// Stopping means stop trying too.
		d.conn.SuppressReconnect()
		if d.state == StateConnected && d.started {
			d.conn.SendCommand(contracts.CommandStopStream)
		}

	case opClearLocal:
		d.stats.Reset()
		d.buffer.Clear()
		d.emit(ClearedEvent{})
		close(op.done)

	case opSnapshot:
		op.reply <- Snapshot{
			State:      d.state,
			Streaming:  d.started,
			Stats:      d.stats.Snapshot(),
			Events:     d.buffer.List(),
			Violations: d.violations,
			Dropped:    d.dropped.Load(),
		}
	}
}

func (d *Dispatcher) handleCommandResult(res connCommandResult) {
	switch res.cmdType {
	case contracts.CommandStartStream:
		d.startPending = false
		if res.err != nil {
			d.log.Error("start_stream failed: %v", res.err)
			d.emit(CommandFailedEvent{Command: res.cmdType, Err: res.err.Error()})
			return
		}
		switch res.reply.Status {
		case contracts.StatusStarted, contracts.StatusAlreadyRunning:
			if res.reply.Stats != nil {
				d.stats.Restore(*res.reply.Stats)
			}
			if !d.wantStream {
				// Stopped while the ack was in flight; put the backend back.
				d.conn.SendCommand(contracts.CommandStopStream)
				return
			}
			d.started = true
			d.emit(ConnectedEvent{Stats: d.stats.Snapshot()})
			d.emit(StreamStartedEvent{AlreadyRunning: res.reply.Status == contracts.StatusAlreadyRunning})
		default:
			d.log.Error("start_stream rejected: %s %s", res.reply.Status, res.reply.Reason)
			d.emit(CommandFailedEvent{Command: res.cmdType, Err: res.reply.Status})
		}

	case contracts.CommandStopStream:
		d.started = false
		if res.err != nil {
			d.log.Error("stop_stream failed: %v", res.err)
			d.emit(CommandFailedEvent{Command: res.cmdType, Err: res.err.Error()})
			return
		}
		d.emit(StreamStoppedEvent{})
	}
}

// handleTransaction decodes one event-topic payload and, when it is sound,
// applies the strict order: tally, buffer, then notify.
func (d *Dispatcher) handleTransaction(raw []byte) {
	var ev contracts.StreamEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		d.violations++
		d.log.Debug("undecodable stream event: %v", err)
		return
	}

	id := ev.Result.TransactionID
	if id == "" {
		id = ev.Transaction.Detail.TransactionID
	}
	if id == "" || !ev.Result.Action.Valid() {
		d.violations++
		d.log.Debug("malformed stream event dropped (id=%q action=%q)", id, ev.Result.Action)
		return
	}

	ts := ev.Transaction.Detail.Timestamp
	if ts == "" {
		ts = time.Now().UTC().Format(time.RFC3339)
	}

	tx := TransactionEvent{
		ID:           id,
		Timestamp:    ts,
		Amount:       ev.Transaction.Detail.Amount,
		Currency:     ev.Transaction.Detail.Currency,
		Status:       ev.Transaction.Detail.Status,
		Merchant:     ev.Transaction.Merchant.Name,
		Score:        ev.Result.DQSScore,
		Action:       ev.Result.Action,
		Reason:       ev.Result.Reason,
		Flags:        ev.Result.Flags,
		ProcessingMs: ev.Result.ProcessingTimeMs,
	}

	d.stats.Record(tx.Action, tx.Score)
	d.buffer.Push(tx)
	d.emit(TransactionAddedEvent{Event: tx, Stats: d.stats.Snapshot()})
}
