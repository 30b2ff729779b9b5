// Package contracts defines the wire types shared by the live stream client,
// the archiver and the backend's HTTP surface.
package contracts

// TransactionDetail carries the core fields of a card transaction.
type TransactionDetail struct {
	// Unique identifier, e.g. "txn_000123".
	TransactionID string `json:"transaction_id"`
	// Merchant-side order reference.
	OrderID string `json:"merchant_order_id,omitempty"`
	// Transaction type (e.g. "authorization").
	Type string `json:"type,omitempty"`
	// Amount in minor currency units as sent by the backend.
	Amount float64 `json:"amount"`
	// ISO 4217 currency code.
	Currency string `json:"currency,omitempty"`
	// Creation time, RFC3339/ISO8601 UTC.
	Timestamp string `json:"timestamp,omitempty"`
	// Processing status (approved, declined, failed, pending).
	Status string `json:"status,omitempty"`
	// ISO 8583-style response code ("00" = approved).
	ResponseCode string `json:"response_code,omitempty"`
}

// Card carries the card attributes the client displays.
type Card struct {
	Network    string `json:"network,omitempty"`
	Last4      string `json:"last4,omitempty"`
	CardType   string `json:"card_type,omitempty"`
	IssuerBank string `json:"issuer_bank,omitempty"`
}

// Merchant identifies the accepting merchant.
type Merchant struct {
	MerchantID string `json:"merchant_id,omitempty"`
	Name       string `json:"merchant_name,omitempty"`
	MCC        string `json:"merchant_category_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Customer carries the customer attributes the client displays.
type Customer struct {
	CustomerID string `json:"customer_id,omitempty"`
	Email      string `json:"email,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
}

// FraudSignals carries the upstream risk screening results.
type FraudSignals struct {
	RiskScore     int    `json:"risk_score,omitempty"`
	RiskLevel     string `json:"risk_level,omitempty"`
	VelocityCheck string `json:"velocity_check,omitempty"`
	GeoCheck      string `json:"geo_check,omitempty"`
}

// Transaction is the nested upstream transaction payload. Only the sections
// the client reads are declared; unknown sections are ignored on decode.
type Transaction struct {
	Detail   TransactionDetail `json:"transaction"`
	Card     Card              `json:"card,omitempty"`
	Merchant Merchant          `json:"merchant,omitempty"`
	Customer Customer          `json:"customer,omitempty"`
	Fraud    FraudSignals      `json:"fraud,omitempty"`
}

// ScoreResult is the pipeline's verdict for a single transaction.
type ScoreResult struct {
	TransactionID string `json:"transaction_id"`
	// Terminal disposition (SAFE_TO_USE, REVIEW_REQUIRED, ESCALATE, NO_ACTION).
	Action Action `json:"action"`
	// Data quality score, 0-100.
	DQSScore float64 `json:"dqs_score"`
	// Human-readable primary reason for the disposition.
	Reason string `json:"reason,omitempty"`
	// Rule identifiers that fired during scoring.
	Flags []string `json:"flags,omitempty"`
	// Wall-clock time the pipeline spent on this record.
	ProcessingTimeMs float64 `json:"processing_time_ms,omitempty"`
}

// StatsSnapshot is the six-field aggregate the backend reports and the client
// maintains locally. avg_dqs is rounded to one decimal place.
type StatsSnapshot struct {
	Total    int     `json:"total"`
	Safe     int     `json:"safe"`
	Review   int     `json:"review"`
	Escalate int     `json:"escalate"`
	Rejected int     `json:"rejected"`
	AvgDQS   float64 `json:"avg_dqs"`
}

// StreamEvent is the per-transaction message on the live event topic.
// Published to: dqs.live.events
// Key: {transaction_id}
type StreamEvent struct {
	Transaction Transaction    `json:"transaction"`
	Result      ScoreResult    `json:"result"`
	Stats       *StatsSnapshot `json:"stats,omitempty"`
}

// StreamCommand is a stream-control request.
// Published to: dqs.live.commands
// Key: {id} (correlation ID, echoed on the reply)
type StreamCommand struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// ControlReply acknowledges a StreamCommand.
// Published to: dqs.live.replies
// Key: {id} (correlation ID of the request)
type ControlReply struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	// Server-side stats at the time of the ack. The start_stream ack carries
	// the initial snapshot a freshly connected client seeds itself with.
	Stats *StatsSnapshot `json:"stats,omitempty"`
}

// LogEntry is one persisted live-log record, as returned by GET /live/logs
// and stored by the archiver. Timestamps are RFC3339/ISO8601 UTC strings so
// lexicographic order is chronological order.
type LogEntry struct {
	Timestamp        string   `json:"timestamp"`
	TransactionID    string   `json:"transaction_id"`
	Amount           float64  `json:"amount"`
	Status           string   `json:"status"`
	DQSScore         float64  `json:"dqs_score"`
	Action           Action   `json:"action"`
	Flags            []string `json:"flags"`
	ProcessingTimeMs float64  `json:"processing_time_ms"`
}

// LogsResponse is the body of GET /live/logs: the entries matching the query
// window plus the aggregate stats over the full log.
type LogsResponse struct {
	Success bool          `json:"success"`
	Logs    []LogEntry    `json:"logs"`
	Stats   StatsSnapshot `json:"stats"`
}

// Topic names on the live data plane.
const (
	// TopicLiveEvents carries per-transaction StreamEvents.
	TopicLiveEvents = "dqs.live.events"

	// TopicLiveCommands carries StreamCommands from clients.
	TopicLiveCommands = "dqs.live.commands"

	// TopicLiveReplies carries ControlReplies back to clients.
	TopicLiveReplies = "dqs.live.replies"
)

// StreamCommand types.
const (
	CommandStartStream = "start_stream"
	CommandStopStream  = "stop_stream"
)

// ControlReply statuses. AlreadyRunning is a success from the client's point
// of view: the stream it asked for is flowing.
const (
	StatusStarted        = "started"
	StatusStopped        = "stopped"
	StatusAlreadyRunning = "already_running"
)
