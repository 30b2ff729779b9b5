// Package tui implements the live dashboard: a header status bar, a stats
// strip, a scrolling event list and a detail panel, all fed by the stream
// dispatcher's event channel.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"dqs-sentinel/src/contracts"
	"dqs-sentinel/src/stream"
)

// Controller is the slice of the stream dispatcher the dashboard drives.
// *stream.Dispatcher satisfies it.
type Controller interface {
	StartStream()
	StopStream()
	Clear(ctx context.Context) error
	Snapshot() stream.Snapshot
	Events() <-chan stream.Event
	FetchHistory(ctx context.Context, start, end string) (contracts.LogsResponse, error)
}

type streamEventMsg struct{ event stream.Event }

type streamClosedMsg struct{}

type clearDoneMsg struct{ err error }

type refreshDoneMsg struct {
	stats contracts.StatsSnapshot
	err   error
}

type spinnerTickMsg time.Time

const commandTimeout = 10 * time.Second

// Action filter cycle for the event list. The zero value means no filter.
var filterCycle = []contracts.Action{
	"",
	contracts.ActionSafe,
	contracts.ActionReview,
	contracts.ActionEscalate,
	contracts.ActionNone,
}

// Model is the Bubble Tea model for the live dashboard.
type Model struct {
	ctrl   Controller
	styles *StyleConfig

	header         Header
	listView       View
	detailViewport viewport.Model

	snap   stream.Snapshot
	filter contracts.Action
	status string

	width, height int
	ready         bool
	detailFocused bool
}

// NewModel creates a dashboard model over a started dispatcher.
func NewModel(ctrl Controller) Model {
	return Model{
		ctrl:     ctrl,
		styles:   DefaultStyles(),
		header:   NewHeader(),
		listView: NewView(),
	}
}

// Run starts the dashboard and blocks until the user quits.
func Run(ctrl Controller) error {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init starts listening on the dispatcher's event channel.
func (m Model) Init() tea.Cmd {
	return listenEvents(m.ctrl.Events())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeComponents()
		return m, nil

	case streamEventMsg:
		cmd := m.applyStreamEvent(msg.event)
		return m, tea.Batch(listenEvents(m.ctrl.Events()), cmd)

	case streamClosedMsg:
		return m, tea.Quit

	case clearDoneMsg:
		if msg.err != nil {
			m.status = "clear failed: " + msg.err.Error()
			m.header.SetBackend(false)
		} else {
			m.status = "backend log cleared"
			m.header.SetBackend(true)
		}
		return m, nil

	case refreshDoneMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			m.header.SetBackend(false)
		} else {
			m.status = fmt.Sprintf("backend: %d records, avg DQS %.1f", msg.stats.Total, msg.stats.AvgDQS)
			m.header.SetBackend(true)
		}
		return m, nil

	case spinnerTickMsg:
		if m.snap.State == stream.StateConnecting {
			m.header.AdvanceSpinner()
			return m, spinnerTick()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detailFocused {
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc", "enter":
			m.detailFocused = false
			return m, nil
		default:
			var cmd tea.Cmd
			m.detailViewport, cmd = m.detailViewport.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "s":
		m.ctrl.StartStream()
		m.status = "starting stream"
		return m, nil

	case "x":
		m.ctrl.StopStream()
		return m, nil

	case "c":
		m.status = "clearing"
		return m, clearCmd(m.ctrl)

	case "r":
		m.status = "refreshing"
		return m, refreshCmd(m.ctrl)

	case "tab":
		m.cycleFilter()
		return m, nil

	case "enter":
		if _, ok := m.listView.GetSelectedItem(); ok {
			m.detailFocused = true
		}
		return m, nil

	default:
		var cmd tea.Cmd
		m.listView, cmd = m.listView.Update(msg)
		if sel, ok := m.listView.GetSelectedItem(); ok {
			m.updateDetailContent(sel)
		}
		return m, cmd
	}
}

// applyStreamEvent folds one dispatcher event into the model. The snapshot
// is re-read on every event so counters, state and the list always agree.
func (m *Model) applyStreamEvent(ev stream.Event) tea.Cmd {
	m.snap = m.ctrl.Snapshot()
	m.header.SetState(m.snap.State, m.snap.Streaming)

	var cmd tea.Cmd
	switch ev := ev.(type) {
	case stream.ConnectingEvent:
		m.status = "connecting"
		cmd = spinnerTick()
	case stream.ConnectedEvent:
		m.status = ""
	case stream.ConnectErrorEvent:
		m.status = "connect failed: " + ev.Err
	case stream.DisconnectedEvent:
		if ev.Reason != "" {
			m.status = "disconnected: " + ev.Reason
		}
	case stream.StreamStartedEvent:
		if ev.AlreadyRunning {
			m.status = "stream already running"
		} else {
			m.status = "stream started"
		}
	case stream.StreamStoppedEvent:
		m.status = "stream stopped"
	case stream.CommandFailedEvent:
		m.status = fmt.Sprintf("%s failed: %s", ev.Command, ev.Err)
	case stream.ClearedEvent:
		m.status = "cleared"
	}

	m.refreshItems()
	return cmd
}

// refreshItems rebuilds the list from the latest snapshot, applying the
// action filter.
func (m *Model) refreshItems() {
	items := make([]Item, 0, len(m.snap.Events))
	for _, ev := range m.snap.Events {
		if m.filter.Valid() && ev.Action != m.filter {
			continue
		}
		items = append(items, Item{Event: ev})
	}
	m.listView.SetItems(items)
	if sel, ok := m.listView.GetSelectedItem(); ok {
		m.updateDetailContent(sel)
	}
}

func (m *Model) cycleFilter() {
	for i, f := range filterCycle {
		if f == m.filter {
			m.filter = filterCycle[(i+1)%len(filterCycle)]
			break
		}
	}
	m.refreshItems()
}

func listenEvents(ch <-chan stream.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return streamEventMsg{event: ev}
	}
}

func spinnerTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func clearCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return clearDoneMsg{err: ctrl.Clear(ctx)}
	}
}

func refreshCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		resp, err := ctrl.FetchHistory(ctx, "", "")
		if err != nil {
			return refreshDoneMsg{err: err}
		}
		return refreshDoneMsg{stats: resp.Stats}
	}
}
