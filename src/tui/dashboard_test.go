package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"dqs-sentinel/src/contracts"
	"dqs-sentinel/src/stream"
)

// fakeController records dashboard commands and serves canned snapshots.
type fakeController struct {
	mu       sync.Mutex
	starts   int
	stops    int
	clears   int
	clearErr error
	histErr  error
	hist     contracts.LogsResponse
	snap     stream.Snapshot
	events   chan stream.Event
}

func newFakeController() *fakeController {
	return &fakeController{events: make(chan stream.Event, 16)}
}

func (f *fakeController) StartStream() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
}

func (f *fakeController) StopStream() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeController) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	return f.clearErr
}

func (f *fakeController) Snapshot() stream.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeController) Events() <-chan stream.Event {
	return f.events
}

func (f *fakeController) FetchHistory(ctx context.Context, start, end string) (contracts.LogsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hist, f.histErr
}

func (f *fakeController) setSnapshot(snap stream.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
}

func sampleEvent(id string, action contracts.Action, score float64) stream.TransactionEvent {
	return stream.TransactionEvent{
		ID:           id,
		Timestamp:    "2026-08-25T10:05:32Z",
		Amount:       125.50,
		Currency:     "USD",
		Status:       "approved",
		Merchant:     "Acme Corp",
		Score:        score,
		Action:       action,
		Reason:       "Data quality score below threshold",
		ProcessingMs: 3.2,
	}
}

func sizedModel(t *testing.T, fake *fakeController, width, height int) Model {
	t.Helper()
	model := NewModel(fake)
	updated, _ := model.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return updated.(Model)
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel_InitialView(t *testing.T) {
	model := sizedModel(t, newFakeController(), 120, 40)

	view := model.View()
	for _, want := range []string{"DQS Sentinel", "disconnected", "stream: stopped", "backend: ?", "Total", "Avg DQS", "Waiting for live events"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestModel_StartStopKeys(t *testing.T) {
	fake := newFakeController()
	model := sizedModel(t, fake, 120, 40)

	updated, _ := model.Update(keyMsg('s'))
	model = updated.(Model)
	if fake.starts != 1 {
		t.Errorf("expected 1 start call, got %d", fake.starts)
	}
	if model.status != "starting stream" {
		t.Errorf("unexpected status %q", model.status)
	}

	updated, _ = model.Update(keyMsg('x'))
	model = updated.(Model)
	if fake.stops != 1 {
		t.Errorf("expected 1 stop call, got %d", fake.stops)
	}
	if model.status != "starting stream" {
		t.Errorf("stop should not clobber status, got %q", model.status)
	}
}

func TestModel_TransactionEventUpdatesView(t *testing.T) {
	fake := newFakeController()
	ev := sampleEvent("txn_00000042", contracts.ActionEscalate, 23.4)
	fake.setSnapshot(stream.Snapshot{
		State:     stream.StateConnected,
		Streaming: true,
		Stats:     contracts.StatsSnapshot{Total: 42, Safe: 30, Review: 6, Escalate: 4, Rejected: 2, AvgDQS: 78.3},
		Events:    []stream.TransactionEvent{ev},
	})
	model := sizedModel(t, fake, 120, 40)

	updated, _ := model.Update(streamEventMsg{event: stream.TransactionAddedEvent{Event: ev}})
	model = updated.(Model)

	view := model.View()
	for _, want := range []string{"connected", "stream: live", "txn_00000042", "10:05:32", "42", "78.3", "[!!]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestModel_FilterCycle(t *testing.T) {
	fake := newFakeController()
	safe := sampleEvent("txn_00000001", contracts.ActionSafe, 92.1)
	escalate := sampleEvent("txn_00000002", contracts.ActionEscalate, 23.4)
	fake.setSnapshot(stream.Snapshot{
		State:  stream.StateConnected,
		Stats:  contracts.StatsSnapshot{Total: 2, Safe: 1, Escalate: 1, AvgDQS: 57.8},
		Events: []stream.TransactionEvent{escalate, safe},
	})
	model := sizedModel(t, fake, 160, 40)

	updated, _ := model.Update(streamEventMsg{event: stream.TransactionAddedEvent{Event: safe}})
	model = updated.(Model)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	model = updated.(Model)

	if model.filter != contracts.ActionSafe {
		t.Errorf("expected safe filter, got %q", model.filter)
	}

	view := model.View()
	if !strings.Contains(view, "[filter: safe]") {
		t.Error("view should show the active filter")
	}
	if !strings.Contains(view, "txn_00000001") {
		t.Error("view should contain the safe transaction")
	}
	if strings.Contains(view, "txn_00000002") {
		t.Error("escalated transaction should be filtered out")
	}
}

func TestModel_ClearKey(t *testing.T) {
	fake := newFakeController()
	model := sizedModel(t, fake, 120, 40)

	updated, cmd := model.Update(keyMsg('c'))
	model = updated.(Model)
	if cmd == nil {
		t.Fatal("expected a clear command")
	}

	updated, _ = model.Update(cmd())
	model = updated.(Model)

	if fake.clears != 1 {
		t.Errorf("expected 1 clear call, got %d", fake.clears)
	}
	if model.status != "backend log cleared" {
		t.Errorf("unexpected status %q", model.status)
	}
}

func TestModel_ClearFailure(t *testing.T) {
	fake := newFakeController()
	fake.clearErr = errors.New("boom")
	model := sizedModel(t, fake, 120, 40)

	updated, cmd := model.Update(keyMsg('c'))
	model = updated.(Model)
	updated, _ = model.Update(cmd())
	model = updated.(Model)

	if !strings.Contains(model.status, "clear failed") {
		t.Errorf("unexpected status %q", model.status)
	}
	if !strings.Contains(model.View(), "backend: down") {
		t.Error("view should flag the backend as down")
	}
}

func TestModel_RefreshKey(t *testing.T) {
	fake := newFakeController()
	fake.hist = contracts.LogsResponse{
		Success: true,
		Stats:   contracts.StatsSnapshot{Total: 7, AvgDQS: 66.2},
	}
	model := sizedModel(t, fake, 120, 40)

	updated, cmd := model.Update(keyMsg('r'))
	model = updated.(Model)
	if cmd == nil {
		t.Fatal("expected a refresh command")
	}

	updated, _ = model.Update(cmd())
	model = updated.(Model)

	if !strings.Contains(model.status, "7 records") {
		t.Errorf("unexpected status %q", model.status)
	}
	if !strings.Contains(model.View(), "backend: ok") {
		t.Error("view should flag the backend as reachable")
	}
}

func TestModel_DetailFocus(t *testing.T) {
	fake := newFakeController()
	ev := sampleEvent("txn_00000001", contracts.ActionReview, 55.0)
	fake.setSnapshot(stream.Snapshot{
		State:  stream.StateConnected,
		Stats:  contracts.StatsSnapshot{Total: 1, Review: 1, AvgDQS: 55},
		Events: []stream.TransactionEvent{ev},
	})
	model := sizedModel(t, fake, 120, 40)

	updated, _ := model.Update(streamEventMsg{event: stream.TransactionAddedEvent{Event: ev}})
	model = updated.(Model)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(Model)
	if !model.detailFocused {
		t.Error("expected detail panel to take focus")
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	model = updated.(Model)
	if model.detailFocused {
		t.Error("expected focus back on the list")
	}
}

func TestModel_QuitKey(t *testing.T) {
	model := sizedModel(t, newFakeController(), 120, 40)

	_, cmd := model.Update(keyMsg('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModel_EventChannelClosedQuits(t *testing.T) {
	model := sizedModel(t, newFakeController(), 120, 40)

	_, cmd := model.Update(streamClosedMsg{})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModel_ConnectingStatus(t *testing.T) {
	fake := newFakeController()
	fake.setSnapshot(stream.Snapshot{State: stream.StateConnecting})
	model := sizedModel(t, fake, 120, 40)

	updated, _ := model.Update(streamEventMsg{event: stream.ConnectingEvent{}})
	model = updated.(Model)

	if model.status != "connecting" {
		t.Errorf("unexpected status %q", model.status)
	}
	if !strings.Contains(model.View(), "connecting") {
		t.Error("view should show the connecting state")
	}
}

func TestModel_CommandFailureSurfaced(t *testing.T) {
	fake := newFakeController()
	model := sizedModel(t, fake, 120, 40)

	updated, _ := model.Update(streamEventMsg{event: stream.CommandFailedEvent{
		Command: "start_stream",
		Err:     "request timed out",
	}})
	model = updated.(Model)

	if !strings.Contains(model.status, "start_stream failed") {
		t.Errorf("unexpected status %q", model.status)
	}
}
