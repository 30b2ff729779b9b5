package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"dqs-sentinel/src/contracts"
	"dqs-sentinel/src/logger"
)

// respondToCommands runs a fake control plane: every command on the command
// topic is acked on the reply topic with the given status.
func respondToCommands(t *testing.T, b *InMemoryBroker, status string, stats *contracts.StatsSnapshot) {
	t.Helper()

	ctx := context.Background()
	cmds, err := b.Subscribe(ctx, contracts.TopicLiveCommands, "fake-backend")
	if err != nil {
		t.Fatalf("responder subscribe failed: %v", err)
	}

	go func() {
		for msg := range cmds {
			var cmd contracts.StreamCommand
			if err := json.Unmarshal(msg.Value, &cmd); err != nil {
				continue
			}
			reply := contracts.ControlReply{ID: cmd.ID, Status: status, Stats: stats}
			payload, _ := json.Marshal(reply)
			_ = b.Publish(ctx, contracts.TopicLiveReplies, cmd.ID, payload)
		}
	}()
}

func TestRequesterRoundTrip(t *testing.T) {
	b := NewInMemoryBroker()
	defer b.Close()

	stats := &contracts.StatsSnapshot{Total: 42, Safe: 40, Review: 2, AvgDQS: 88.5}
	respondToCommands(t, b, contracts.StatusStarted, stats)

	r, err := NewRequester(context.Background(), b, "client-1", logger.NewSilentLogger())
	if err != nil {
		t.Fatalf("NewRequester failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reply, err := r.Request(ctx, contracts.CommandStartStream)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	if reply.Status != contracts.StatusStarted {
		t.Errorf("status = %q, want %q", reply.Status, contracts.StatusStarted)
	}
	if reply.Stats == nil || reply.Stats.Total != 42 {
		t.Errorf("stats = %+v, want total 42", reply.Stats)
	}
}

func TestRequesterTimeout(t *testing.T) {
	b := NewInMemoryBroker()
	defer b.Close()

	// No responder on the command topic.
	r, err := NewRequester(context.Background(), b, "client-1", logger.NewSilentLogger())
	if err != nil {
		t.Fatalf("NewRequester failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := r.Request(ctx, contracts.CommandStopStream); err == nil {
		t.Fatal("Request expected timeout error, got nil")
	}
}

func TestRequesterConcurrentCorrelation(t *testing.T) {
	b := NewInMemoryBroker()
	defer b.Close()

	respondToCommands(t, b, contracts.StatusStarted, nil)

	r, err := NewRequester(context.Background(), b, "client-1", logger.NewSilentLogger())
	if err != nil {
		t.Fatalf("NewRequester failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Several in-flight requests must each get their own reply.
	done := make(chan error, 5)
	for i := 0; i < 5; i++ {
		go func() {
			_, err := r.Request(ctx, contracts.CommandStartStream)
			done <- err
		}()
	}

	for i := 0; i < 5; i++ {
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("request %d failed: %v", i, err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Timeout waiting for concurrent requests")
		}
	}
}
