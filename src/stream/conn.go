package stream

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"dqs-sentinel/src/broker"
	"dqs-sentinel/src/contracts"
	"dqs-sentinel/src/logger"
)

// ConnState is the lifecycle state of the broker connection.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Connection timing defaults. Heartbeat and reconnect mirror the backend's
// expectations; tests compress them.
const (
	DefaultHeartbeatInterval = 25 * time.Second
	DefaultReconnectDelay    = 3 * time.Second
	defaultPingTimeout       = 5 * time.Second
	defaultRequestTimeout    = 10 * time.Second
)

// DialFunc opens a fresh broker handle. It is called once per connection
// attempt; the previous handle is always closed before the next call.
type DialFunc func(ctx context.Context) (broker.Broker, error)

// ConnConfig configures the connection actor.
type ConnConfig struct {
	Dial    DialFunc
	GroupID string

	HeartbeatInterval time.Duration
	ReconnectDelay    time.Duration
	PingTimeout       time.Duration
	RequestTimeout    time.Duration

	Logger logger.Logger
}

// Notices flowing from the connection actor to the dispatcher. All of them
// are produced by the run loop, so the dispatcher sees state changes,
// inbound messages and command results in the order they happened.

type connNotice interface {
	connNotice() // marker method
}

// connStateChanged reports a lifecycle transition. reason is set only for
// Disconnected.
type connStateChanged struct {
	state  ConnState
	reason string
}

func (connStateChanged) connNotice() {}

// connDialFailed reports a connection attempt that died before a session
// existed. The state is back to Disconnected and a retry is armed.
type connDialFailed struct {
	err string
}

func (connDialFailed) connNotice() {}

// connMessage carries one raw message from the live event topic.
type connMessage struct {
	msg broker.Message
}

func (connMessage) connNotice() {}

// connCommandResult carries the outcome of a SendCommand call.
type connCommandResult struct {
	cmdType string
	reply   contracts.ControlReply
	err     error
}

func (connCommandResult) connNotice() {}

// Operations submitted into the run loop.

type connOp interface {
	connOp()
}

type opConnect struct{}

func (opConnect) connOp() {}

type opSuppressReconnect struct{}

func (opSuppressReconnect) connOp() {}

type opSendCommand struct {
	cmdType string
}

func (opSendCommand) connOp() {}

type opShutdown struct{}

func (opShutdown) connOp() {}

// Results posted back into the loop by helper goroutines. Each carries the
// sequence number of the session (or attempt) it belongs to; the loop drops
// results whose session is already gone.

type connAsync interface {
	connAsync()
}

type dialDone struct {
	seq  uint64
	sess *session
	err  error
}

func (dialDone) connAsync() {}

type pingDone struct {
	seq uint64
	err error
}

func (pingDone) connAsync() {}

type cmdDone struct {
	seq     uint64
	cmdType string
	reply   contracts.ControlReply
	err     error
}

func (cmdDone) connAsync() {}

// session bundles the per-connection resources. A new one is built for
// every attempt.
type session struct {
	seq       uint64
	broker    broker.Broker
	requester *broker.Requester
	events    <-chan broker.Message
}

// Conn is the connection actor. A single goroutine owns the session handle,
// the heartbeat ticker and the one reconnect timer; everything else talks to
// it through channels. Slow work (dialing, pings, command round-trips) runs
// in short-lived goroutines that post their results back into the loop.
type Conn struct {
	cfg   ConnConfig
	log   logger.Logger
	ops   chan connOp
	async chan connAsync

	// notices is drained by the dispatcher until closed.
	notices chan connNotice

	// state mirrors the loop's view for cheap reads from the UI.
	state atomic.Int32

	startOnce sync.Once
	done      chan struct{}

	// Loop-owned state. Only the run goroutine touches anything below.
	sess             *session
	seq              uint64
	events           <-chan broker.Message
	heartbeat        *time.Ticker
	heartbeatC       <-chan time.Time
	reconnectTimer   *time.Timer
	reconnectC       <-chan time.Time
	reconnectPending bool
}

// NewConn builds the actor. Call Start before using it.
func NewConn(cfg ConnConfig) *Conn {
	if cfg.GroupID == "" {
		cfg.GroupID = "dqs-sentinel"
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = defaultPingTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewSilentLogger()
	}

	return &Conn{
		cfg:     cfg,
		log:     log,
		ops:     make(chan connOp, 16),
		async:   make(chan connAsync, 16),
		notices: make(chan connNotice, 256),
		done:    make(chan struct{}),
	}
}

// Start launches the run loop. Cancelling ctx tears the connection down and
// closes the notices channel.
func (c *Conn) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		go c.run(ctx)
	})
}

// Connect requests a connection attempt. No-op unless disconnected.
func (c *Conn) Connect() { c.submit(opConnect{}) }

// SuppressReconnect cancels a pending reconnect timer, if one is armed.
// Later transport failures arm a fresh one.
func (c *Conn) SuppressReconnect() { c.submit(opSuppressReconnect{}) }

// SendCommand issues a stream-control command on the current session. The
// outcome arrives as a notice; when not connected the notice carries an
// error immediately.
func (c *Conn) SendCommand(cmdType string) { c.submit(opSendCommand{cmdType: cmdType}) }

// Shutdown closes the session and stops the loop. Idempotent.
func (c *Conn) Shutdown() { c.submit(opShutdown{}) }

// State reports the current lifecycle state.
func (c *Conn) State() ConnState {
	return ConnState(c.state.Load())
}

func (c *Conn) submit(op connOp) {
	select {
	case c.ops <- op:
	case <-c.done:
	}
}

// post delivers an async result into the loop. Returns false if the loop is
// already gone and the caller should release whatever the result carries.
func (c *Conn) post(res connAsync) bool {
	select {
	case c.async <- res:
		return true
	case <-c.done:
		return false
	}
}

// notify hands a notice to the dispatcher. The dispatcher loop drains this
// channel until closure, so a blocking send here cannot wedge the actor.
func (c *Conn) notify(n connNotice) {
	c.notices <- n
}

func (c *Conn) setState(s ConnState) {
	c.state.Store(int32(s))
}

func (c *Conn) run(ctx context.Context) {
	defer close(c.notices)
	defer close(c.done)

	for {
		select {
		case op := <-c.ops:
			switch op := op.(type) {
			case opConnect:
				c.handleConnect(ctx)
			case opSuppressReconnect:
				if c.cancelReconnect() {
					c.log.Info("pending reconnect cancelled")
				}
			case opSendCommand:
				c.handleSendCommand(ctx, op.cmdType)
			case opShutdown:
				c.teardown()
				c.setState(StateDisconnected)
				return
			}

		case res := <-c.async:
			switch res := res.(type) {
			case dialDone:
				c.handleDialDone(res)
			case pingDone:
				c.handlePingDone(res)
			case cmdDone:
				c.handleCmdDone(res)
			}

		case msg, ok := <-c.events:
			if !ok {
				c.events = nil
				c.dropSession("event stream closed")
				continue
			}
			c.notify(connMessage{msg: msg})

		case <-c.heartbeatC:
			c.firePing(ctx)

		case <-c.reconnectC:
			c.reconnectPending = false
			c.reconnectC = nil
			c.reconnectTimer = nil
			c.log.Info("retrying broker connection")
			c.handleConnect(ctx)

		case <-ctx.Done():
			c.teardown()
			c.setState(StateDisconnected)
			return
		}
	}
}

func (c *Conn) handleConnect(ctx context.Context) {
	if c.State() != StateDisconnected {
		return
	}

	// A fresh attempt starts from a clean slate: the previous handle and any
	// armed timers go first.
	c.teardown()

	c.setState(StateConnecting)
	c.notify(connStateChanged{state: StateConnecting})

	c.seq++
	go c.dial(ctx, c.seq)
}

// dial opens the broker handle, verifies liveness and wires the event and
// reply subscriptions. Runs outside the loop; the result is matched against
// the attempt sequence before it is applied.
func (c *Conn) dial(ctx context.Context, seq uint64) {
	b, err := c.cfg.Dial(ctx)
	if err != nil {
		c.post(dialDone{seq: seq, err: err})
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.cfg.PingTimeout)
	err = b.Ping(pingCtx)
	cancel()
	if err != nil {
		b.Close()
		c.post(dialDone{seq: seq, err: fmt.Errorf("broker unreachable: %w", err)})
		return
	}

	events, err := b.Subscribe(ctx, contracts.TopicLiveEvents, c.cfg.GroupID+"-events")
	if err != nil {
		b.Close()
		c.post(dialDone{seq: seq, err: fmt.Errorf("failed to subscribe to event stream: %w", err)})
		return
	}

	requester, err := broker.NewRequester(ctx, b, c.cfg.GroupID+"-replies", c.log)
	if err != nil {
		b.Close()
		c.post(dialDone{seq: seq, err: err})
		return
	}

	sess := &session{seq: seq, broker: b, requester: requester, events: events}
	if !c.post(dialDone{seq: seq, sess: sess}) {
		b.Close()
	}
}

func (c *Conn) handleDialDone(res dialDone) {
	if res.seq != c.seq || c.State() != StateConnecting {
		// The attempt was superseded while in flight.
		if res.sess != nil {
			res.sess.broker.Close()
		}
		return
	}

	if res.err != nil {
		c.setState(StateDisconnected)
		c.log.Error("connection attempt failed: %v", res.err)
		c.notify(connDialFailed{err: res.err.Error()})
		c.scheduleReconnect()
		return
	}

	c.sess = res.sess
	c.events = res.sess.events
	c.heartbeat = time.NewTicker(c.cfg.HeartbeatInterval)
	c.heartbeatC = c.heartbeat.C
	c.setState(StateConnected)
	c.log.Info("connected to broker")
	c.notify(connStateChanged{state: StateConnected})
}

func (c *Conn) firePing(ctx context.Context) {
	if c.sess == nil {
		return
	}
	sess := c.sess
	go func() {
		pingCtx, cancel := context.WithTimeout(ctx, c.cfg.PingTimeout)
		err := sess.broker.Ping(pingCtx)
		cancel()
		c.post(pingDone{seq: sess.seq, err: err})
	}()
}

func (c *Conn) handlePingDone(res pingDone) {
	if c.sess == nil || res.seq != c.sess.seq {
		return
	}
	if res.err != nil {
		c.dropSession(fmt.Sprintf("heartbeat failed: %v", res.err))
	}
}

func (c *Conn) handleSendCommand(ctx context.Context, cmdType string) {
	if c.sess == nil || c.State() != StateConnected {
		c.notify(connCommandResult{cmdType: cmdType, err: fmt.Errorf("not connected")})
		return
	}
	sess := c.sess
	go func() {
		reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
		reply, err := sess.requester.Request(reqCtx, cmdType)
		cancel()
		c.post(cmdDone{seq: sess.seq, cmdType: cmdType, reply: reply, err: err})
	}()
}

func (c *Conn) handleCmdDone(res cmdDone) {
	// A result from a session that was torn down no longer means anything.
	if c.sess == nil || res.seq != c.sess.seq {
		return
	}
	c.notify(connCommandResult{cmdType: res.cmdType, reply: res.reply, err: res.err})
}

// dropSession tears down the live session after a transport failure and
// arms the retry timer.
func (c *Conn) dropSession(reason string) {
	c.teardown()
	c.setState(StateDisconnected)
	c.log.Error("connection lost: %s", reason)
	c.notify(connStateChanged{state: StateDisconnected, reason: reason})
	c.scheduleReconnect()
}

// scheduleReconnect arms the retry timer. At most one timer is ever armed;
// failures while one is pending do not stack attempts.
func (c *Conn) scheduleReconnect() {
	if c.reconnectPending {
		return
	}
	c.reconnectPending = true
	c.reconnectTimer = time.NewTimer(c.cfg.ReconnectDelay)
	c.reconnectC = c.reconnectTimer.C
	c.log.Info("reconnecting in %s", c.cfg.ReconnectDelay)
}

func (c *Conn) cancelReconnect() bool {
	if !c.reconnectPending {
		return false
	}
	c.reconnectPending = false
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	c.reconnectC = nil
	return true
}

// teardown closes the current session and disarms every timer. Safe to call
// with nothing live.
func (c *Conn) teardown() {
	c.cancelReconnect()
	if c.heartbeat != nil {
		c.heartbeat.Stop()
		c.heartbeat = nil
		c.heartbeatC = nil
	}
	if c.sess != nil {
		c.sess.broker.Close()
		c.sess = nil
	}
	c.events = nil
}
