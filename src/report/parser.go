// Package report recovers structured action records from textual decision
// reports. Batch submissions come back as a human-readable summary rather
// than per-record decisions; this parser is the best-effort bridge back to
// structure. It never fails on malformed input: unparseable lines are
// skipped.
package report

import (
	"fmt"
	"regexp"
	"strings"

	"dqs-sentinel/src/contracts"
)

// MaxRecords caps parser output to bound rendering cost. A display
// truncation, not a correctness guarantee; callers needing the full set use
// the structured path.
const MaxRecords = 10

// ActionRecord is one decision recovered from a report. Emitted whole or
// not at all.
type ActionRecord struct {
	RecordID string
	Action   contracts.Action
	Reason   string

	// Score and Result are filled from structured results accompanying the
	// report, when the identifier matches one. Otherwise zero and nil.
	Score  float64
	Result *contracts.ScoreResult
}

// Summary carries the batch counts that drive fallback synthesis.
type Summary struct {
	ReviewCount   int
	EscalateCount int
}

// idPattern matches record identifiers.
// Matches: txn_00000042
var idPattern = regexp.MustCompile(`txn_\d+`)

// reasonRules maps line keywords to explanations. Ordered; the first match
// wins.
var reasonRules = []struct {
	keyword string
	reason  string
}{
	{"Anomaly", "Anomaly detected in transaction pattern"},
	{"Low DQS", "Data quality score below threshold"},
	{"Conflict", "Conflicting quality signals"},
}

// reasonFallback covers lines no rule matches, and synthesized records.
const reasonFallback = "Manual verification required"

// Parse scans report text line by line and returns the ordered records it
// recovers. results, when non-nil, enriches records by identifier. summary
// drives the fallback: a report whose text yields nothing but whose counts
// say records exist produces synthesized placeholders instead of an empty
// result.
func Parse(text string, results []contracts.ScoreResult, summary Summary) []ActionRecord {
	byID := make(map[string]*contracts.ScoreResult, len(results))
	for i := range results {
		byID[results[i].TransactionID] = &results[i]
	}

	var section contracts.Action
	var records []ActionRecord

	for _, line := range strings.Split(text, "\n") {
		// Section markers are matched case-sensitively on purpose: summary
		// lines like "Human Review Required: YES" must not flip the
		// section. ESCALATE is checked first so a line carrying both
		// markers lands in the stronger section.
		switch {
		case strings.Contains(line, "ESCALATE"):
			section = contracts.ActionEscalate
		case strings.Contains(line, "REVIEW"):
			section = contracts.ActionReview
		}

		if section == "" {
			continue
		}

		id := idPattern.FindString(line)
		if id == "" {
			continue
		}

		rec := ActionRecord{
			RecordID: id,
			Action:   section,
			Reason:   reasonFor(line),
		}
		if res, ok := byID[id]; ok {
			rec.Score = res.DQSScore
			rec.Result = res
		}
		records = append(records, rec)
		if len(records) == MaxRecords {
			return records
		}
	}

	if len(records) == 0 {
		return synthesize(summary)
	}
	return records
}

func reasonFor(line string) string {
	for _, rule := range reasonRules {
		if strings.Contains(line, rule.keyword) {
			return rule.reason
		}
	}
	return reasonFallback
}

// synthesize builds placeholder records from summary counts. Keeps the UI
// contract that nonzero counts always show at least one record, at the cost
// of records with no identifier or data behind them.
func synthesize(s Summary) []ActionRecord {
	var records []ActionRecord
	n := 1
	for i := 0; i < s.ReviewCount && len(records) < MaxRecords; i++ {
		records = append(records, ActionRecord{
			RecordID: fmt.Sprintf("txn_unknown_%d", n),
			Action:   contracts.ActionReview,
			Reason:   reasonFallback,
		})
		n++
	}
	for i := 0; i < s.EscalateCount && len(records) < MaxRecords; i++ {
		records = append(records, ActionRecord{
			RecordID: fmt.Sprintf("txn_unknown_%d", n),
			Action:   contracts.ActionEscalate,
			Reason:   reasonFallback,
		})
		n++
	}
	return records
}
