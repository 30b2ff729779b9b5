package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"dqs-sentinel/src/broker"
	"dqs-sentinel/src/contracts"
)

// testPlane plays the backend's data plane: it hands out fresh in-memory
// brokers on dial and answers stream commands on each of them.
type testPlane struct {
	mu          sync.Mutex
	startStatus string
	startStats  *contracts.StatsSnapshot
	dialErr     error
	dialDelay   time.Duration
	dials       int
	starts      int
	stops       int
	current     *broker.InMemoryBroker
}

func newTestPlane() *testPlane {
	return &testPlane{startStatus: contracts.StatusStarted}
}

func (p *testPlane) dial(ctx context.Context) (broker.Broker, error) {
	p.mu.Lock()
	delay := p.dialDelay
	p.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.dials++
	if p.dialErr != nil {
		return nil, p.dialErr
	}
	b := broker.NewInMemoryBroker()
	p.current = b
	// Subscribe before handing the broker out so a command published right
	// after dial cannot race the serve goroutine's registration.
	cmds, err := b.Subscribe(context.Background(), contracts.TopicLiveCommands, "plane")
	if err == nil {
		go p.serve(b, cmds)
	}
	return b, nil
}

// serve answers stream commands until the broker closes.
func (p *testPlane) serve(b *broker.InMemoryBroker, cmds <-chan broker.Message) {
	for msg := range cmds {
		var cmd contracts.StreamCommand
		if json.Unmarshal(msg.Value, &cmd) != nil {
			continue
		}

		reply := contracts.ControlReply{ID: cmd.ID}
		switch cmd.Type {
		case contracts.CommandStartStream:
			p.mu.Lock()
			p.starts++
			reply.Status = p.startStatus
			reply.Stats = p.startStats
			p.mu.Unlock()
		case contracts.CommandStopStream:
			p.mu.Lock()
			p.stops++
			p.mu.Unlock()
			reply.Status = contracts.StatusStopped
		default:
			continue
		}

		out, _ := json.Marshal(reply)
		b.Publish(context.Background(), contracts.TopicLiveReplies, cmd.ID, out)
	}
}

func (p *testPlane) dialCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dials
}

func (p *testPlane) startCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.starts
}

func (p *testPlane) stopCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stops
}

func (p *testPlane) setDialErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialErr = err
}

func (p *testPlane) liveBroker() *broker.InMemoryBroker {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// publishEvent pushes one scored transaction onto the current broker's
// event topic.
func (p *testPlane) publishEvent(ev contracts.StreamEvent) {
	b := p.liveBroker()
	if b == nil {
		return
	}
	out, _ := json.Marshal(ev)
	b.Publish(context.Background(), contracts.TopicLiveEvents, ev.Result.TransactionID, out)
}

// publishRaw pushes an arbitrary payload, for malformed-input cases.
func (p *testPlane) publishRaw(value []byte) {
	b := p.liveBroker()
	if b == nil {
		return
	}
	b.Publish(context.Background(), contracts.TopicLiveEvents, "", value)
}

// testConnConfig compresses all timings so the suite runs in milliseconds.
func testConnConfig(p *testPlane) ConnConfig {
	return ConnConfig{
		Dial:              p.dial,
		GroupID:           "test",
		HeartbeatInterval: 20 * time.Millisecond,
		ReconnectDelay:    25 * time.Millisecond,
		PingTimeout:       200 * time.Millisecond,
		RequestTimeout:    500 * time.Millisecond,
	}
}

// eventRecorder drains a dispatcher's event channel so emits never drop.
type eventRecorder struct {
	mu  sync.Mutex
	evs []Event
}

func recordEvents(d *Dispatcher) *eventRecorder {
	r := &eventRecorder{}
	go func() {
		for ev := range d.Events() {
			r.mu.Lock()
			r.evs = append(r.evs, ev)
			r.mu.Unlock()
		}
	}()
	return r
}

func (r *eventRecorder) count(match func(Event) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.evs {
		if match(ev) {
			n++
		}
	}
	return n
}

func (r *eventRecorder) find(match func(Event) bool) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.evs {
		if match(ev) {
			return ev, true
		}
	}
	return nil, false
}

func isStreamStarted(ev Event) bool {
	_, ok := ev.(StreamStartedEvent)
	return ok
}

func isConnected(ev Event) bool {
	_, ok := ev.(ConnectedEvent)
	return ok
}

func isDisconnected(ev Event) bool {
	_, ok := ev.(DisconnectedEvent)
	return ok
}

func isConnectError(ev Event) bool {
	_, ok := ev.(ConnectErrorEvent)
	return ok
}

func isTransactionAdded(ev Event) bool {
	_, ok := ev.(TransactionAddedEvent)
	return ok
}

func isCleared(ev Event) bool {
	_, ok := ev.(ClearedEvent)
	return ok
}

func isStreamStopped(ev Event) bool {
	_, ok := ev.(StreamStoppedEvent)
	return ok
}

// fakeBackend is an in-memory stand-in for the REST client.
type fakeBackend struct {
	mu       sync.Mutex
	clearErr error
	cleared  int
	resp     contracts.LogsResponse
	lastQ    [2]string
}

func (f *fakeBackend) LiveLogs(ctx context.Context, start, end string) (contracts.LogsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQ = [2]string{start, end}
	return f.resp, nil
}

func (f *fakeBackend) ClearLive(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared++
	return nil
}

func (f *fakeBackend) clearCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleared
}

func (f *fakeBackend) lastQuery() [2]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQ
}

// scoredEvent builds a minimal valid stream event.
func scoredEvent(id string, action contracts.Action, score float64) contracts.StreamEvent {
	return contracts.StreamEvent{
		Transaction: contracts.Transaction{
			Detail: contracts.TransactionDetail{
				TransactionID: id,
				Amount:        125.50,
				Currency:      "USD",
				Status:        "completed",
				Timestamp:     "2026-08-25T10:00:00Z",
			},
			Merchant: contracts.Merchant{Name: "Acme Corp"},
		},
		Result: contracts.ScoreResult{
			TransactionID: id,
			Action:        action,
			DQSScore:      score,
			Reason:        "test",
		},
	}
}
