package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"dqs-sentinel/src/contracts"
	"dqs-sentinel/src/export"
	"dqs-sentinel/src/report"
)

// defaultLogLimit bounds get_recent_logs output.
const defaultLogLimit = 20

// registerTools registers all available tools.
func (s *Server) registerTools() {
	statsTool := mcp.NewTool("get_live_stats",
		mcp.WithDescription("Get the scoring backend's aggregate statistics for the live log: per-action counts (safe, review, escalate, rejected), total and average DQS score."),
	)

	logsTool := mcp.NewTool("get_recent_logs",
		mcp.WithDescription("Get recent live-log records, newest first, with the aggregate stats over the full log. Timestamps are ISO8601; bounds are inclusive."),
		mcp.WithString("start",
			mcp.Description("Inclusive lower timestamp bound (ISO8601). Empty means open."),
		),
		mcp.WithString("end",
			mcp.Description("Inclusive upper timestamp bound (ISO8601). Empty means open."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max records to return (default: 20)"),
		),
	)

	parseTool := mcp.NewTool("parse_decision_report",
		mcp.WithDescription("Recover structured action records from a textual decision report. Scans the [!!] ESCALATED and [??] REVIEW sections for transaction ids; when the text yields nothing but the counts say records exist, placeholder records are synthesized."),
		mcp.WithString("report",
			mcp.Required(),
			mcp.Description("The decision report text"),
		),
		mcp.WithNumber("review_count",
			mcp.Description("Number of review records the batch summary announced (default: 0)"),
		),
		mcp.WithNumber("escalate_count",
			mcp.Description("Number of escalated records the batch summary announced (default: 0)"),
		),
	)

	exportTool := mcp.NewTool("export_live_log",
		mcp.WithDescription("Render the live log over a time range as a plain-text artifact with a summary block and one block per transaction, newest first. Emails, card numbers and IP addresses are masked."),
		mcp.WithString("start",
			mcp.Description("Inclusive lower timestamp bound (ISO8601). Empty means open."),
		),
		mcp.WithString("end",
			mcp.Description("Inclusive upper timestamp bound (ISO8601). Empty means open."),
		),
	)

	s.mcpServer.AddTool(statsTool, s.handleGetLiveStats)
	s.mcpServer.AddTool(logsTool, s.handleGetRecentLogs)
	s.mcpServer.AddTool(parseTool, s.handleParseDecisionReport)
	s.mcpServer.AddTool(exportTool, s.handleExportLiveLog)
}

// handleGetLiveStats handles the get_live_stats tool call.
func (s *Server) handleGetLiveStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.backend.LiveStats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats fetch failed: %v", err)), nil
	}

	jsonBytes, err := json.Marshal(stats)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal stats: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// recentLogsResult is the get_recent_logs response shape.
type recentLogsResult struct {
	Count int                     `json:"count"`
	Total int                     `json:"total_in_range"`
	Stats contracts.StatsSnapshot `json:"stats"`
	Logs  []contracts.LogEntry    `json:"logs"`
}

// handleGetRecentLogs handles the get_recent_logs tool call.
func (s *Server) handleGetRecentLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := request.GetString("start", "")
	end := request.GetString("end", "")
	limit := request.GetInt("limit", defaultLogLimit)
	if limit <= 0 {
		limit = defaultLogLimit
	}

	resp, err := s.backend.LiveLogs(ctx, start, end)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("log fetch failed: %v", err)), nil
	}

	logs := newestFirst(resp.Logs)
	total := len(logs)
	if len(logs) > limit {
		logs = logs[:limit]
	}

	result := recentLogsResult{
		Count: len(logs),
		Total: total,
		Stats: resp.Stats,
		Logs:  logs,
	}
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal logs: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleParseDecisionReport handles the parse_decision_report tool call.
func (s *Server) handleParseDecisionReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := request.GetString("report", "")
	if text == "" {
		return mcp.NewToolResultError("report parameter is required"), nil
	}

	summary := report.Summary{
		ReviewCount:   request.GetInt("review_count", 0),
		EscalateCount: request.GetInt("escalate_count", 0),
	}
	records := report.Parse(text, nil, summary)

	jsonBytes, err := json.Marshal(records)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal records: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleExportLiveLog handles the export_live_log tool call.
func (s *Server) handleExportLiveLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := request.GetString("start", "")
	end := request.GetString("end", "")

	resp, err := s.backend.LiveLogs(ctx, start, end)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("log fetch failed: %v", err)), nil
	}

	artifact := export.Render(newestFirst(resp.Logs), resp.Stats, time.Now())
	return mcp.NewToolResultText(artifact), nil
}

// newestFirst returns the entries in reverse order. The backend serves its
// log oldest first.
func newestFirst(entries []contracts.LogEntry) []contracts.LogEntry {
	out := make([]contracts.LogEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}
