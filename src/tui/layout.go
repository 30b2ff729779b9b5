package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// panelDimensions holds calculated layout dimensions
type panelDimensions struct {
	availableHeight int
	leftPanelWidth  int
	rightPanelWidth int
}

// calculateDimensions computes panel sizes based on terminal dimensions.
// This centralizes the layout math to ensure consistency across render and resize.
func (m Model) calculateDimensions() panelDimensions {
	headerHeight := lipgloss.Height(m.header.Render(m.width))
	// Account for: header + stats bar (1) + status line (1) + help line (1) +
	// panel column header row (1) + panel borders (2)
	availableHeight := m.height - headerHeight - 1 - 1 - 1 - 1 - 2
	if availableHeight < 3 {
		availableHeight = 3
	}

	// Two-panel layout: event list (55%) | detail (45%)
	leftPanelWidth := int(float64(m.width) * 0.55)
	rightPanelWidth := m.width - leftPanelWidth

	return panelDimensions{
		availableHeight: availableHeight,
		leftPanelWidth:  leftPanelWidth,
		rightPanelWidth: rightPanelWidth,
	}
}

// View renders the complete dashboard layout
func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	header := m.header.Render(m.width)
	statsBar := renderStatsBar(m.snap.Stats, m.styles, m.width)

	dims := m.calculateDimensions()
	leftPanel := m.renderListPanel(dims.leftPanelWidth, dims.availableHeight)
	rightPanel := m.renderDetailPanel(dims.rightPanelWidth, dims.availableHeight)
	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		statsBar,
		mainContent,
		m.renderStatusLine(),
		m.renderHelpText(),
	)
}

// renderListPanel renders the left panel with the live event list
func (m Model) renderListPanel(width, height int) string {
	listPanel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.BorderColor).
		Width(width - 2).
		Height(height).
		Render(m.listView.Render())

	headerText := "Act  Time     │ ID           │    Amount │   DQS │ Reason"
	if m.filter.Valid() {
		headerText = fmt.Sprintf("%s   [filter: %s]", headerText, m.filter.Short())
	}
	headerRow := lipgloss.NewStyle().
		Foreground(m.styles.PrimaryBlue).
		Bold(true).
		Width(width-2).
		Padding(0, 1).
		Render(Truncate(headerText, width-4, true))

	return lipgloss.JoinVertical(lipgloss.Left, headerRow, listPanel)
}

// renderStatusLine renders transient command feedback plus drop counters
func (m Model) renderStatusLine() string {
	text := m.status
	if m.snap.Violations > 0 || m.snap.Dropped > 0 {
		counters := fmt.Sprintf("dropped payloads: %d, lost display events: %d",
			m.snap.Violations, m.snap.Dropped)
		if text != "" {
			text = text + " · " + counters
		} else {
			text = counters
		}
	}
	return lipgloss.NewStyle().
		Foreground(m.styles.TextSecondary).
		Padding(0, 2).
		Width(m.width).
		MaxWidth(m.width).
		Render(text)
}

// renderHelpText renders context-aware help text at the bottom
func (m Model) renderHelpText() string {
	keyStyle := lipgloss.NewStyle().Foreground(m.styles.PrimaryBlue).Bold(true)
	sepStyle := lipgloss.NewStyle().Foreground(m.styles.TextSecondary)

	var helpText string
	if m.detailFocused {
		helpText = fmt.Sprintf("%s: Scroll %s %s: Back %s %s: Quit",
			keyStyle.Render("j/k"), sepStyle.Render("•"),
			keyStyle.Render("Esc"), sepStyle.Render("•"),
			keyStyle.Render("q"))
	} else {
		helpText = fmt.Sprintf("%s: Start %s %s: Stop %s %s: Clear %s %s: Refresh %s %s: Filter %s %s: Nav %s %s: Detail %s %s: Quit",
			keyStyle.Render("s"), sepStyle.Render("•"),
			keyStyle.Render("x"), sepStyle.Render("•"),
			keyStyle.Render("c"), sepStyle.Render("•"),
			keyStyle.Render("r"), sepStyle.Render("•"),
			keyStyle.Render("tab"), sepStyle.Render("•"),
			keyStyle.Render("j/k"), sepStyle.Render("•"),
			keyStyle.Render("enter"), sepStyle.Render("•"),
			keyStyle.Render("q"))
	}

	return m.styles.HelpStyle().Render(helpText)
}

// resizeComponents handles window resize events
func (m *Model) resizeComponents() {
	dims := m.calculateDimensions()

	// Panel borders take 2 columns
	m.listView.SetSize(dims.leftPanelWidth-2, dims.availableHeight)

	// Borders plus the transaction header row
	m.detailViewport.Width = dims.rightPanelWidth - 2
	m.detailViewport.Height = dims.availableHeight - 1

	if selectedItem, ok := m.listView.GetSelectedItem(); ok {
		m.updateDetailContent(selectedItem)
	}
}
