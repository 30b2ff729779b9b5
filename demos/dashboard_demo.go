// Demo program showcasing the live dashboard against a scripted in-process
// scoring backend. No Redpanda, Postgres or pipeline required.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sync"
	"time"

	"dqs-sentinel/src/broker"
	"dqs-sentinel/src/contracts"
	"dqs-sentinel/src/stream"
	"dqs-sentinel/src/tui"
)

func main() {
	fmt.Println("Starting scripted scoring backend (in-memory)...")
	plane := newDemoPlane()

	conn := stream.NewConn(stream.ConnConfig{
		Dial:              plane.dial,
		GroupID:           "demo",
		HeartbeatInterval: 5 * time.Second,
		ReconnectDelay:    2 * time.Second,
	})
	d := stream.NewDispatcher(conn, &demoBackend{plane: plane}, 100, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d.Start(ctx)
	d.StartStream()

	fmt.Println("Launching dashboard (decisions stream in continuously)...")
	time.Sleep(500 * time.Millisecond) // Brief pause for effect

	if err := tui.Run(d); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	d.Close()
}

// demoPlane plays the backend's data plane: every dial gets a fresh in-memory
// broker with a command responder and a decision generator attached. Stream
// state and the accumulated log live on the plane, so they survive redials
// the way a real backend's do.
type demoPlane struct {
	mu        sync.Mutex
	streaming bool
	seq       int
	log       []contracts.LogEntry
	counts    map[contracts.Action]int
	scoreSum  float64
}

func newDemoPlane() *demoPlane {
	return &demoPlane{counts: make(map[contracts.Action]int)}
}

func (p *demoPlane) dial(context.Context) (broker.Broker, error) {
	b := broker.NewInMemoryBroker()
	go p.serve(b)
	go p.generate(b)
	return b, nil
}

// serve answers stream commands until the broker closes.
func (p *demoPlane) serve(b *broker.InMemoryBroker) {
	cmds, err := b.Subscribe(context.Background(), contracts.TopicLiveCommands, "demo-plane")
	if err != nil {
		return
	}
	for msg := range cmds {
		var cmd contracts.StreamCommand
		if json.Unmarshal(msg.Value, &cmd) != nil {
			continue
		}

		reply := contracts.ControlReply{ID: cmd.ID}
		switch cmd.Type {
		case contracts.CommandStartStream:
			p.mu.Lock()
			if p.streaming {
				reply.Status = contracts.StatusAlreadyRunning
			} else {
				p.streaming = true
				reply.Status = contracts.StatusStarted
			}
			stats := p.statsLocked()
			reply.Stats = &stats
			p.mu.Unlock()
		case contracts.CommandStopStream:
			p.mu.Lock()
			p.streaming = false
			p.mu.Unlock()
			reply.Status = contracts.StatusStopped
		default:
			continue
		}

		out, _ := json.Marshal(reply)
		b.Publish(context.Background(), contracts.TopicLiveReplies, cmd.ID, out)
	}
}

// generate publishes scripted decisions while the stream is on. It exits when
// the broker closes.
func (p *demoPlane) generate(b *broker.InMemoryBroker) {
	for {
		time.Sleep(time.Duration(400+rand.Intn(500)) * time.Millisecond)

		if !p.isStreaming() {
			if b.Ping(context.Background()) != nil {
				return
			}
			continue
		}

		ev := p.nextEvent()
		out, _ := json.Marshal(ev)
		if b.Publish(context.Background(), contracts.TopicLiveEvents, ev.Result.TransactionID, out) != nil {
			return
		}
	}
}

// nextEvent crafts one scored transaction and records it in the plane's log
// and stats, so refresh and export see the same data the stream delivered.
func (p *demoPlane) nextEvent() contracts.StreamEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	id := fmt.Sprintf("txn_%08d", p.seq)
	now := time.Now().UTC().Format(time.RFC3339)

	action := pickAction()
	score := scoreFor(action)
	flags := flagsFor(action)
	amount := float64(500+rand.Intn(250000)) / 100
	status := statuses[rand.Intn(len(statuses))]
	procMs := math.Round((2+rand.Float64()*18)*10) / 10

	p.log = append(p.log, contracts.LogEntry{
		Timestamp:        now,
		TransactionID:    id,
		Amount:           amount,
		Status:           status,
		DQSScore:         score,
		Action:           action,
		Flags:            flags,
		ProcessingTimeMs: procMs,
	})
	p.counts[action]++
	p.scoreSum += score

	return contracts.StreamEvent{
		Transaction: contracts.Transaction{
			Detail: contracts.TransactionDetail{
				TransactionID: id,
				Amount:        amount,
				Currency:      "USD",
				Status:        status,
				Timestamp:     now,
			},
			Merchant: merchants[rand.Intn(len(merchants))],
		},
		Result: contracts.ScoreResult{
			TransactionID:    id,
			Action:           action,
			DQSScore:         score,
			Reason:           reasonFor(action),
			Flags:            flags,
			ProcessingTimeMs: procMs,
		},
	}
}

func (p *demoPlane) isStreaming() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.streaming
}

func (p *demoPlane) statsLocked() contracts.StatsSnapshot {
	total := 0
	for _, n := range p.counts {
		total += n
	}
	avg := 0.0
	if total > 0 {
		avg = math.Round(p.scoreSum/float64(total)*10) / 10
	}
	return contracts.StatsSnapshot{
		Total:    total,
		Safe:     p.counts[contracts.ActionSafe],
		Review:   p.counts[contracts.ActionReview],
		Escalate: p.counts[contracts.ActionEscalate],
		Rejected: p.counts[contracts.ActionNone],
		AvgDQS:   avg,
	}
}

func (p *demoPlane) history(start, end string) ([]contracts.LogEntry, contracts.StatsSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []contracts.LogEntry
	for _, e := range p.log {
		if start != "" && e.Timestamp < start {
			continue
		}
		if end != "" && e.Timestamp > end {
			continue
		}
		out = append(out, e)
	}
	return out, p.statsLocked()
}

func (p *demoPlane) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log = nil
	p.counts = make(map[contracts.Action]int)
	p.scoreSum = 0
}

// demoBackend serves the REST surface from the plane's accumulated log.
type demoBackend struct {
	plane *demoPlane
}

func (d *demoBackend) LiveLogs(ctx context.Context, start, end string) (contracts.LogsResponse, error) {
	logs, stats := d.plane.history(start, end)
	return contracts.LogsResponse{Success: true, Logs: logs, Stats: stats}, nil
}

func (d *demoBackend) ClearLive(ctx context.Context) error {
	d.plane.clear()
	return nil
}

var merchants = []contracts.Merchant{
	{MerchantID: "mch_1021", Name: "Acme Corp", MCC: "5732", Country: "US"},
	{MerchantID: "mch_2334", Name: "Blue Harbor Foods", MCC: "5411", Country: "US"},
	{MerchantID: "mch_8710", Name: "Northwind Travel", MCC: "4722", Country: "GB"},
	{MerchantID: "mch_4452", Name: "Kite & Anchor", MCC: "5651", Country: "NL"},
	{MerchantID: "mch_0917", Name: "Summit Digital", MCC: "5817", Country: "DE"},
}

var statuses = []string{"approved", "approved", "approved", "approved", "declined", "pending", "failed"}

var flagPool = []string{"velocity", "geo_mismatch", "amount_spike", "schema_drift", "stale_reference"}

func pickAction() contracts.Action {
	switch n := rand.Intn(100); {
	case n < 68:
		return contracts.ActionSafe
	case n < 84:
		return contracts.ActionReview
	case n < 94:
		return contracts.ActionEscalate
	default:
		return contracts.ActionNone
	}
}

func scoreFor(a contracts.Action) float64 {
	var lo, hi float64
	switch a {
	case contracts.ActionSafe:
		lo, hi = 82, 99
	case contracts.ActionReview:
		lo, hi = 55, 78
	case contracts.ActionEscalate:
		lo, hi = 12, 48
	default:
		lo, hi = 0, 35
	}
	return math.Round((lo+rand.Float64()*(hi-lo))*10) / 10
}

func reasonFor(a contracts.Action) string {
	switch a {
	case contracts.ActionSafe:
		return "All quality checks passed"
	case contracts.ActionReview:
		return "Data quality score below threshold"
	case contracts.ActionEscalate:
		return "Anomaly detected in transaction pattern"
	default:
		return "Conflicting quality signals"
	}
}

func flagsFor(a contracts.Action) []string {
	n := 0
	switch a {
	case contracts.ActionReview:
		n = 1 + rand.Intn(2)
	case contracts.ActionEscalate, contracts.ActionNone:
		n = 2 + rand.Intn(2)
	}
	if n == 0 {
		return nil
	}

	idx := rand.Perm(len(flagPool))[:n]
	flags := make([]string, n)
	for i, j := range idx {
		flags[i] = flagPool[j]
	}
	return flags
}
