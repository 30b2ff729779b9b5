package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"dqs-sentinel/src/stream"
)

// Spinner frames shown while a connection attempt is in flight
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Header is the top status bar: connection state, stream state and the
// outcome of the last backend refresh.
type Header struct {
	state        stream.ConnState
	streaming    bool
	backendOK    bool
	backendKnown bool
	spinnerFrame int
	styles       *StyleConfig
}

// NewHeader creates a new header with default styles
func NewHeader() Header {
	return Header{styles: DefaultStyles()}
}

// SetState updates the connection and stream state cells
func (h *Header) SetState(state stream.ConnState, streaming bool) {
	h.state = state
	h.streaming = streaming
}

// SetBackend records the outcome of the last HTTP refresh
func (h *Header) SetBackend(ok bool) {
	h.backendOK = ok
	h.backendKnown = true
}

// AdvanceSpinner moves the connecting spinner one frame
func (h *Header) AdvanceSpinner() {
	h.spinnerFrame = (h.spinnerFrame + 1) % len(spinnerFrames)
}

// Render renders the header bar
func (h Header) Render(width int) string {
	title := h.styles.TitleStyle().Render("DQS Sentinel")

	stateText := h.state.String()
	if h.state == stream.StateConnecting {
		stateText = fmt.Sprintf("%s %s", spinnerFrames[h.spinnerFrame], stateText)
	}
	stateCell := lipgloss.NewStyle().
		Foreground(h.styles.StateColor(h.state)).
		Bold(true).
		Padding(0, 2).
		Render(stateText)

	streamText := "stream: stopped"
	if h.streaming {
		streamText = "stream: live"
	}
	streamColor := h.styles.TextSecondary
	if h.streaming {
		streamColor = h.styles.SafeColor
	}
	streamCell := lipgloss.NewStyle().
		Foreground(streamColor).
		Padding(0, 2).
		Render(streamText)

	backendText := "backend: ?"
	backendColor := h.styles.TextSecondary
	if h.backendKnown {
		if h.backendOK {
			backendText = "backend: ok"
			backendColor = h.styles.SafeColor
		} else {
			backendText = "backend: down"
			backendColor = h.styles.EscalateColor
		}
	}
	backendCell := lipgloss.NewStyle().
		Foreground(backendColor).
		Padding(0, 2).
		Render(backendText)

	leftSection := lipgloss.JoinHorizontal(lipgloss.Left, title, stateCell, streamCell, backendCell)

	headerStyle := lipgloss.NewStyle().
		Background(h.styles.DarkBackground).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(h.styles.BorderColor).
		Width(width)

	spacerWidth := width - lipgloss.Width(leftSection)
	if spacerWidth < 0 {
		spacerWidth = 0
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return headerStyle.Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSection, spacer))
}
