package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"dqs-sentinel/src/broker"
	"dqs-sentinel/src/contracts"
	"dqs-sentinel/src/logger"
)

// Archiver mirrors the live event topic into a Store. One entry per valid
// scored transaction; malformed payloads are dropped and counted, the loop
// never dies on bad input.
type Archiver struct {
	broker  broker.Broker
	store   Store
	groupID string
	log     logger.Logger

	mu       sync.Mutex
	appended int
	dropped  int
}

// NewArchiver creates an archiver consuming through b and writing to store.
func NewArchiver(b broker.Broker, store Store, groupID string, log logger.Logger) *Archiver {
	if groupID == "" {
		groupID = "dqs-archive"
	}
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Archiver{broker: b, store: store, groupID: groupID, log: log}
}

// Run consumes events until ctx is cancelled or the subscription closes.
func (a *Archiver) Run(ctx context.Context) error {
	events, err := a.broker.Subscribe(ctx, contracts.TopicLiveEvents, a.groupID)
	if err != nil {
		return fmt.Errorf("failed to subscribe to event stream: %w", err)
	}

	a.log.Info("archiving %s (group %s)", contracts.TopicLiveEvents, a.groupID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-events:
			if !ok {
				return fmt.Errorf("event subscription closed")
			}
			a.handle(ctx, msg.Value)
		}
	}
}

// Counts reports how many events were appended and dropped so far.
func (a *Archiver) Counts() (appended, dropped int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.appended, a.dropped
}

func (a *Archiver) handle(ctx context.Context, raw []byte) {
	var ev contracts.StreamEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		a.drop()
		a.log.Debug("undecodable stream event: %v", err)
		return
	}

	id := ev.Result.TransactionID
	if id == "" {
		id = ev.Transaction.Detail.TransactionID
	}
	if id == "" || !ev.Result.Action.Valid() {
		a.drop()
		a.log.Debug("malformed stream event dropped (id=%q action=%q)", id, ev.Result.Action)
		return
	}

	ts := ev.Transaction.Detail.Timestamp
	if ts == "" {
		ts = time.Now().UTC().Format(time.RFC3339)
	}

	entry := contracts.LogEntry{
		Timestamp:        ts,
		TransactionID:    id,
		Amount:           ev.Transaction.Detail.Amount,
		Status:           ev.Transaction.Detail.Status,
		DQSScore:         ev.Result.DQSScore,
		Action:           ev.Result.Action,
		Flags:            ev.Result.Flags,
		ProcessingTimeMs: ev.Result.ProcessingTimeMs,
	}

	if err := a.store.Append(ctx, entry); err != nil {
		a.drop()
		a.log.Error("failed to append %s: %v", id, err)
		return
	}

	a.mu.Lock()
	a.appended++
	a.mu.Unlock()
}

func (a *Archiver) drop() {
	a.mu.Lock()
	a.dropped++
	a.mu.Unlock()
}
