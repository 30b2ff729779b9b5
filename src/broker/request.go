// Package broker provides request/reply plumbing over the command topics.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"dqs-sentinel/src/contracts"
	"dqs-sentinel/src/logger"
)

// Requester issues stream-control commands and matches replies by
// correlation ID. Commands go out on dqs.live.commands keyed by a UUID; the
// backend echoes the UUID on dqs.live.replies. One Requester serves one
// broker session; when the session's broker closes, the reply loop drains and
// all pending requests fail with the context they were given.
type Requester struct {
	broker Broker
	log    logger.Logger

	mu      sync.Mutex
	pending map[string]chan contracts.ControlReply
}

// NewRequester subscribes to the reply topic and starts the matching loop.
// groupID must be unique per client instance so every client sees every
// reply.
func NewRequester(ctx context.Context, b Broker, groupID string, log logger.Logger) (*Requester, error) {
	if log == nil {
		log = logger.NewSilentLogger()
	}

	replies, err := b.Subscribe(ctx, contracts.TopicLiveReplies, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to reply topic: %w", err)
	}

	r := &Requester{
		broker:  b,
		log:     log,
		pending: make(map[string]chan contracts.ControlReply),
	}

	go r.readLoop(replies)

	return r, nil
}

// Request sends one stream command and waits for its ack. The caller bounds
// the wait through ctx.
func (r *Requester) Request(ctx context.Context, cmdType string) (contracts.ControlReply, error) {
	id := uuid.NewString()

	payload, err := json.Marshal(contracts.StreamCommand{ID: id, Type: cmdType})
	if err != nil {
		return contracts.ControlReply{}, fmt.Errorf("failed to encode command: %w", err)
	}

	ch := make(chan contracts.ControlReply, 1)
	r.mu.Lock()
	r.pending[id] = ch
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.pending, id)
		r.mu.Unlock()
	}()

	if err := r.broker.Publish(ctx, contracts.TopicLiveCommands, id, payload); err != nil {
		return contracts.ControlReply{}, fmt.Errorf("failed to send %s: %w", cmdType, err)
	}

	select {
	case reply := <-ch:
		return reply, nil
	case <-ctx.Done():
		return contracts.ControlReply{}, fmt.Errorf("no reply to %s: %w", cmdType, ctx.Err())
	}
}

// readLoop routes replies to their pending requests. Replies nobody is
// waiting for (another client's, or a late ack) are dropped.
func (r *Requester) readLoop(replies <-chan Message) {
	for msg := range replies {
		var reply contracts.ControlReply
		if err := json.Unmarshal(msg.Value, &reply); err != nil {
			r.log.Debug("undecodable control reply: %v", err)
			continue
		}

		id := reply.ID
		if id == "" {
			id = msg.Key
		}

		r.mu.Lock()
		ch, ok := r.pending[id]
		if ok {
			delete(r.pending, id)
		}
		r.mu.Unlock()

		if ok {
			ch <- reply
		}
	}
}
