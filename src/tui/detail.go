package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderDetail renders the detail content for a transaction
func (m Model) renderDetail(item Item, maxWidth int) string {
	ev := item.Event
	content := strings.Builder{}

	header := lipgloss.NewStyle().
		Foreground(m.styles.ActionColor(ev.Action)).
		Bold(true).
		Render(fmt.Sprintf("%s %s │ DQS %.1f", ev.Action.Glyph(), ev.Action, ev.Score))
	fmt.Fprintf(&content, "%s\n\n", header)

	label := lipgloss.NewStyle().Foreground(m.styles.TextSecondary).Bold(true)
	value := lipgloss.NewStyle().Foreground(m.styles.TextPrimary)

	field := func(name, v string) {
		fmt.Fprintf(&content, "%s %s\n", label.Render(name+":"), value.Render(v))
	}

	field("ID", ev.ID)
	field("Timestamp", ev.Timestamp)
	amount := fmt.Sprintf("%.2f", ev.Amount)
	if ev.Currency != "" {
		amount += " " + ev.Currency
	}
	field("Amount", amount)
	if ev.Status != "" {
		field("Status", ev.Status)
	}
	if ev.Merchant != "" {
		field("Merchant", ev.Merchant)
	}
	field("Processing", fmt.Sprintf("%.1f ms", ev.ProcessingMs))
	field("Flags", item.FlagsLine())

	if ev.Reason != "" {
		fmt.Fprintln(&content)
		fmt.Fprintln(&content, label.Render("Reason:"))
		wrapped := Wrap(CleanLogText(ev.Reason), maxWidth)
		fmt.Fprintln(&content, lipgloss.NewStyle().Foreground(m.styles.TextPrimary).Render(wrapped))
	}

	return content.String()
}

// updateDetailContent updates the viewport with content from the selected item
func (m *Model) updateDetailContent(item Item) {
	// 1 char padding on each side
	maxWidth := m.detailViewport.Width - 2
	m.detailViewport.SetContent(m.renderDetail(item, maxWidth))
}

// renderDetailPanel renders the right panel with the detail viewport
func (m Model) renderDetailPanel(width, height int) string {
	if selectedItem, ok := m.listView.GetSelectedItem(); ok {
		headerRow := lipgloss.NewStyle().
			Foreground(m.styles.PrimaryBlue).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("Transaction: %s", selectedItem.Event.ID))

		borderColor := m.styles.BorderColor
		if m.detailFocused {
			borderColor = m.styles.AccentBlue
		}

		return lipgloss.JoinVertical(lipgloss.Left, headerRow,
			lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(borderColor).
				Width(width).
				Height(height).
				Render(m.detailViewport.View()))
	}

	placeholderRow := lipgloss.NewStyle().
		Foreground(m.styles.TextSecondary).
		Padding(0, 1).
		Render(" ")

	emptyStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.BorderColor).
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(m.styles.TextSecondary).
		Faint(true)

	return lipgloss.JoinVertical(lipgloss.Left, placeholderRow, emptyStyle.Render("Waiting for live events"))
}
