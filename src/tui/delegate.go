package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	// listRenderingOverhead accounts for padding added by bubbles/list and
	// panel borders.
	listRenderingOverhead = 10

	clockWidth  = 8
	idWidth     = 12
	amountWidth = 9
	scoreWidth  = 5
)

// Delegate renders live transactions as compact table rows.
type Delegate struct {
	styles *StyleConfig
}

// NewDelegate creates a new transaction row delegate with default styles
func NewDelegate() Delegate {
	return Delegate{styles: DefaultStyles()}
}

// Height returns the height of a list item
func (d Delegate) Height() int {
	return 1
}

// Spacing returns spacing between items
func (d Delegate) Spacing() int {
	return 0
}

// Update handles item updates
func (d Delegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render renders one transaction row: glyph, clock, id, amount, score and a
// single-line reason snippet.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(Item)
	if !ok {
		return
	}

	ev := entry.Event
	isSelected := index == m.Index()

	glyph := lipgloss.NewStyle().
		Foreground(d.styles.ActionColor(ev.Action)).
		Bold(isSelected).
		Render(ev.Action.Glyph())

	clockCol := TruncateAndPad(entry.Clock(), clockWidth, false)
	idCol := TruncateAndPad(ev.ID, idWidth, true)
	amountCol := fmt.Sprintf("%*.2f", amountWidth, ev.Amount)
	scoreCol := fmt.Sprintf("%*.1f", scoreWidth, ev.Score)

	// Fixed columns: glyph (4) + clock + id + amount + score + separators (15)
	fixedWidth := 4 + clockWidth + idWidth + amountWidth + scoreWidth + 15
	availableWidth := m.Width() - fixedWidth - listRenderingOverhead

	var snippet string
	if availableWidth > 0 {
		snippet = TruncateAndPad(Flatten(ev.Reason), availableWidth, true)
	}

	row := fmt.Sprintf("%s │ %s │ %s │ %s │ %s", clockCol, idCol, amountCol, scoreCol, snippet)

	style := lipgloss.NewStyle().Foreground(d.styles.TextSecondary)
	if isSelected {
		style = style.Bold(true).Foreground(d.styles.PrimaryBlue).Background(d.styles.SelectedColor)
	}

	fmt.Fprintf(w, "%s %s", glyph, style.Render(row))
}
