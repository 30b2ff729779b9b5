package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"dqs-sentinel/src/contracts"
)

type fakeBackend struct {
	stats    contracts.StatsSnapshot
	statsErr error
	logs     contracts.LogsResponse
	logsErr  error
}

func (f *fakeBackend) LiveStats(ctx context.Context) (contracts.StatsSnapshot, error) {
	return f.stats, f.statsErr
}

func (f *fakeBackend) LiveLogs(ctx context.Context, start, end string) (contracts.LogsResponse, error) {
	return f.logs, f.logsErr
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultJSON renders a tool result as JSON for content assertions.
func resultJSON(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	return string(raw)
}

func TestNewestFirst(t *testing.T) {
	entries := []contracts.LogEntry{
		{TransactionID: "txn_00000001"},
		{TransactionID: "txn_00000002"},
		{TransactionID: "txn_00000003"},
	}

	out := newestFirst(entries)

	if out[0].TransactionID != "txn_00000003" || out[2].TransactionID != "txn_00000001" {
		t.Errorf("unexpected order: %v", out)
	}
	if entries[0].TransactionID != "txn_00000001" {
		t.Error("input slice was mutated")
	}
}

func TestHandleGetLiveStats(t *testing.T) {
	backend := &fakeBackend{
		stats: contracts.StatsSnapshot{Total: 5, Safe: 4, Escalate: 1, AvgDQS: 72.4},
	}
	srv := NewServer(backend)

	res, err := srv.handleGetLiveStats(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	out := resultJSON(t, res)
	for _, want := range []string{"avg_dqs", "72.4", "escalate"} {
		if !strings.Contains(out, want) {
			t.Errorf("result should contain %q:\n%s", want, out)
		}
	}
}

func TestHandleGetLiveStatsBackendError(t *testing.T) {
	srv := NewServer(&fakeBackend{statsErr: errors.New("connection refused")})

	res, err := srv.handleGetLiveStats(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	out := resultJSON(t, res)
	if !strings.Contains(out, "isError") || !strings.Contains(out, "stats fetch failed") {
		t.Errorf("expected an error result, got:\n%s", out)
	}
}

func TestHandleGetRecentLogs(t *testing.T) {
	backend := &fakeBackend{
		logs: contracts.LogsResponse{
			Success: true,
			Logs: []contracts.LogEntry{
				{Timestamp: "2026-08-25T10:00:00Z", TransactionID: "txn_00000001", Action: contracts.ActionSafe},
				{Timestamp: "2026-08-25T10:01:00Z", TransactionID: "txn_00000002", Action: contracts.ActionReview},
				{Timestamp: "2026-08-25T10:02:00Z", TransactionID: "txn_00000003", Action: contracts.ActionEscalate},
			},
			Stats: contracts.StatsSnapshot{Total: 3, Safe: 1, Review: 1, Escalate: 1, AvgDQS: 57.5},
		},
	}
	srv := NewServer(backend)

	res, err := srv.handleGetRecentLogs(context.Background(), toolRequest(map[string]any{"limit": 2}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	out := resultJSON(t, res)
	if strings.Contains(out, "txn_00000001") {
		t.Error("oldest record should be cut by the limit")
	}
	i3 := strings.Index(out, "txn_00000003")
	i2 := strings.Index(out, "txn_00000002")
	if i3 == -1 || i2 == -1 || i3 > i2 {
		t.Errorf("records should be newest first:\n%s", out)
	}
	if !strings.Contains(out, "total_in_range") {
		t.Errorf("result should report the range total:\n%s", out)
	}
}

func TestHandleGetRecentLogsBackendError(t *testing.T) {
	srv := NewServer(&fakeBackend{logsErr: errors.New("boom")})

	res, err := srv.handleGetRecentLogs(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if out := resultJSON(t, res); !strings.Contains(out, "log fetch failed") {
		t.Errorf("expected an error result, got:\n%s", out)
	}
}

func TestHandleParseDecisionReport(t *testing.T) {
	srv := NewServer(&fakeBackend{})

	reportText := "[!!] ESCALATED RECORDS:\n  - txn_00000042: Anomaly detected in transaction pattern\n" +
		"[??] RECORDS REQUIRING REVIEW: 1\n  - txn_00000043: Low DQS score\n"
	res, err := srv.handleParseDecisionReport(context.Background(), toolRequest(map[string]any{
		"report": reportText,
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	out := resultJSON(t, res)
	for _, want := range []string{"txn_00000042", "ESCALATE", "txn_00000043", "REVIEW_REQUIRED"} {
		if !strings.Contains(out, want) {
			t.Errorf("result should contain %q:\n%s", want, out)
		}
	}
}

func TestHandleParseDecisionReportFallback(t *testing.T) {
	srv := NewServer(&fakeBackend{})

	res, err := srv.handleParseDecisionReport(context.Background(), toolRequest(map[string]any{
		"report":         "nothing structured here",
		"review_count":   1,
		"escalate_count": 1,
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	out := resultJSON(t, res)
	if !strings.Contains(out, "txn_unknown_1") || !strings.Contains(out, "txn_unknown_2") {
		t.Errorf("expected synthesized records:\n%s", out)
	}
}

func TestHandleParseDecisionReportMissingText(t *testing.T) {
	srv := NewServer(&fakeBackend{})

	res, err := srv.handleParseDecisionReport(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if out := resultJSON(t, res); !strings.Contains(out, "report parameter is required") {
		t.Errorf("expected an error result, got:\n%s", out)
	}
}

func TestHandleExportLiveLog(t *testing.T) {
	backend := &fakeBackend{
		logs: contracts.LogsResponse{
			Success: true,
			Logs: []contracts.LogEntry{
				{
					Timestamp:     "2026-08-25T10:00:00Z",
					TransactionID: "txn_00000001",
					Status:        "flagged by ops@corp.io",
					Action:        contracts.ActionReview,
				},
			},
			Stats: contracts.StatsSnapshot{Total: 1, Review: 1, AvgDQS: 44.0},
		},
	}
	srv := NewServer(backend)

	res, err := srv.handleExportLiveLog(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	out := resultJSON(t, res)
	if !strings.Contains(out, "LIVE LOG EXPORT") {
		t.Errorf("expected the artifact banner:\n%s", out)
	}
	if strings.Contains(out, "ops@corp.io") {
		t.Error("email should be masked in the artifact")
	}
	if !strings.Contains(out, "o***@corp.io") {
		t.Errorf("expected the masked email:\n%s", out)
	}
}
