// Package export renders live-log history as a plain-text artifact in the
// same dialect as the backend's decision reports. Emails, card numbers and
// IP addresses are masked before anything is written out.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"dqs-sentinel/src/contracts"
)

const banner = "============================================================"

// Render formats entries and their aggregate stats as a downloadable text
// artifact. Entries are written in the order given; callers pass them newest
// first. The result has already been through MaskPII.
func Render(entries []contracts.LogEntry, stats contracts.StatsSnapshot, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString(banner + "\n")
	b.WriteString("              LIVE LOG EXPORT\n")
	b.WriteString(banner + "\n\n")
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Total Records: %d\n\n", stats.Total)

	writeSummary(&b, stats)

	b.WriteString(banner + "\n\n")

	if len(entries) == 0 {
		b.WriteString("No records in range.\n\n")
	}
	for _, e := range entries {
		writeEntry(&b, e)
	}

	b.WriteString(banner + "\n")
	fmt.Fprintf(&b, "END OF EXPORT: %d records\n", len(entries))
	b.WriteString(banner + "\n")

	return MaskPII(b.String())
}

// Write renders the artifact and writes it to w.
func Write(w io.Writer, entries []contracts.LogEntry, stats contracts.StatsSnapshot, generatedAt time.Time) error {
	_, err := io.WriteString(w, Render(entries, stats, generatedAt))
	return err
}

func writeSummary(b *strings.Builder, stats contracts.StatsSnapshot) {
	b.WriteString("ACTION SUMMARY:\n")
	fmt.Fprintf(b, "  %s  %-17s%5d\n", contracts.ActionSafe.Glyph(), contracts.ActionSafe+":", stats.Safe)
	fmt.Fprintf(b, "  %s  %-17s%5d\n", contracts.ActionReview.Glyph(), contracts.ActionReview+":", stats.Review)
	fmt.Fprintf(b, "  %s  %-17s%5d\n", contracts.ActionEscalate.Glyph(), contracts.ActionEscalate+":", stats.Escalate)
	fmt.Fprintf(b, "  %s  %-17s%5d\n", contracts.ActionNone.Glyph(), contracts.ActionNone+":", stats.Rejected)
	b.WriteString("\n")
	fmt.Fprintf(b, "Average DQS Score: %.1f\n", stats.AvgDQS)
	fmt.Fprintf(b, "Overall Quality Rate: %.1f%%\n\n", qualityRate(stats))
}

func writeEntry(b *strings.Builder, e contracts.LogEntry) {
	flags := "none"
	if len(e.Flags) > 0 {
		flags = strings.Join(e.Flags, ", ")
	}
	fmt.Fprintf(b, "%s %s\n", e.Action.Glyph(), e.TransactionID)
	fmt.Fprintf(b, "  Timestamp:  %s\n", e.Timestamp)
	fmt.Fprintf(b, "  Amount:     %.2f\n", e.Amount)
	fmt.Fprintf(b, "  Status:     %s\n", e.Status)
	fmt.Fprintf(b, "  DQS Score:  %.1f\n", e.DQSScore)
	fmt.Fprintf(b, "  Action:     %s\n", e.Action)
	fmt.Fprintf(b, "  Flags:      %s\n", flags)
	fmt.Fprintf(b, "  Processing: %.1f ms\n\n", e.ProcessingTimeMs)
}

func qualityRate(stats contracts.StatsSnapshot) float64 {
	if stats.Total == 0 {
		return 0
	}
	return float64(stats.Safe) / float64(stats.Total) * 100
}
