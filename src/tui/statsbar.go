package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"dqs-sentinel/src/contracts"
)

// renderStatsBar renders the six-counter strip under the header.
func renderStatsBar(stats contracts.StatsSnapshot, styles *StyleConfig, width int) string {
	cell := func(label string, value string, color lipgloss.Color) string {
		labelStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		valueStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
		return labelStyle.Render(label+" ") + valueStyle.Render(value)
	}

	cells := []string{
		cell("Total", fmt.Sprintf("%d", stats.Total), styles.TextPrimary),
		cell(contracts.ActionSafe.Glyph()+" Safe", fmt.Sprintf("%d", stats.Safe), styles.SafeColor),
		cell(contracts.ActionReview.Glyph()+" Review", fmt.Sprintf("%d", stats.Review), styles.ReviewColor),
		cell(contracts.ActionEscalate.Glyph()+" Escalate", fmt.Sprintf("%d", stats.Escalate), styles.EscalateColor),
		cell(contracts.ActionNone.Glyph()+" Rejected", fmt.Sprintf("%d", stats.Rejected), styles.RejectedColor),
		cell("Avg DQS", fmt.Sprintf("%.1f", stats.AvgDQS), styles.PrimaryBlue),
	}

	bar := cells[0]
	sep := lipgloss.NewStyle().Foreground(styles.BorderColor).Render(" │ ")
	for _, c := range cells[1:] {
		bar += sep + c
	}

	return lipgloss.NewStyle().Width(width).Padding(0, 1).MaxWidth(width).Render(bar)
}
