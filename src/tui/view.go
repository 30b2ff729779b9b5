package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// View manages the scrolling list of live transactions.
type View struct {
	list  list.Model
	items []Item
}

// NewView creates a new transaction list view
func NewView() View {
	delegate := NewDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return View{
		list:  l,
		items: []Item{},
	}
}

// Update handles list updates
func (v View) Update(msg tea.Msg) (View, tea.Cmd) {
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// SetSize sets the list dimensions
func (v *View) SetSize(width, height int) {
	v.list.SetSize(width, height)
}

// SetItems replaces the list contents, keeping the selection on the same
// transaction when it is still present.
func (v *View) SetItems(items []Item) {
	selectedID := ""
	if sel, ok := v.GetSelectedItem(); ok {
		selectedID = sel.Event.ID
	}

	v.items = items
	listItems := make([]list.Item, len(items))
	index := 0
	for i, item := range items {
		listItems[i] = item
		if selectedID != "" && item.Event.ID == selectedID {
			index = i
		}
	}
	v.list.SetItems(listItems)
	v.list.Select(index)
}

// GetSelectedItem returns the currently selected transaction
func (v View) GetSelectedItem() (Item, bool) {
	if len(v.list.Items()) == 0 {
		return Item{}, false
	}
	return v.list.SelectedItem().(Item), true
}

// Render returns the string representation of the view
func (v View) Render() string {
	return v.list.View()
}
