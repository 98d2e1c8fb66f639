package tasklist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/internal/theme"
	"github.com/nhle/todolist/internal/todo"
)

// SnapshotMsg carries a fresh result set from the active subscription.
type SnapshotMsg struct {
	sub     *store.Subscription
	Entries []model.Entry
}

// Filter is the view's current query.
type Filter struct {
	// List is a registered list name or model.ListAll.
	List string
	// CompletedOnly limits the view to done entries.
	CompletedOnly bool
	// Search is a case-insensitive title substring; empty means none.
	Search string
}

// Query converts f into a store query.
func (f Filter) Query() store.Query {
	q := todo.ListQuery(f.List)
	if f.CompletedOnly {
		done := true
		q.Done = &done
	}
	if f.Search != "" {
		search := f.Search
		q.Title = &search
	}
	return q
}

// Label describes f for the header.
func (f Filter) Label() string {
	label := f.List
	if label == "" {
		label = model.ListAll
	}
	if f.CompletedOnly {
		label += " · completed"
	}
	if f.Search != "" {
		label += fmt.Sprintf(" · %q", f.Search)
	}
	return label
}

// Model is the grouped task list. It renders whatever its subscription last
// delivered; writes elsewhere in the app show up without explicit reloads.
type Model struct {
	list        list.Model
	svc         *todo.Service
	keys        *keys.KeyMap
	filter      Filter
	sub         *store.Subscription
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new task list model showing list.
func New(svc *todo.Service, k *keys.KeyMap, listName string, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	si := textinput.New()
	si.Placeholder = "search titles..."
	si.Prompt = "/ "
	si.Width = width - 4

	if listName == "" {
		listName = model.ListAll
	}

	return Model{
		list:        l,
		svc:         svc,
		keys:        k,
		filter:      Filter{List: listName},
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init subscribes to the initial filter.
func (m *Model) Init() tea.Cmd {
	return m.resubscribe()
}

// resubscribe replaces the active subscription with one for the current filter.
func (m *Model) resubscribe() tea.Cmd {
	if m.sub != nil {
		m.sub.Close()
	}
	m.sub = m.svc.Watch(context.Background(), m.filter.Query())
	return waitForSnapshot(m.sub)
}

// waitForSnapshot blocks until sub publishes. A closed subscription yields nil.
func waitForSnapshot(sub *store.Subscription) tea.Cmd {
	return func() tea.Msg {
		entries, ok := <-sub.C
		if !ok {
			return nil
		}
		return SnapshotMsg{sub: sub, Entries: entries}
	}
}

// Close ends the active subscription.
func (m *Model) Close() {
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
}

// Filter returns the current filter.
func (m Model) Filter() Filter { return m.filter }

// SetFilter switches the view to f.
func (m *Model) SetFilter(f Filter) tea.Cmd {
	if f.List == "" {
		f.List = model.ListAll
	}
	m.filter = f
	return m.resubscribe()
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		// Snapshots from a subscription that has since been replaced are dropped.
		if msg.sub != m.sub {
			return m, nil
		}
		cmd := m.list.SetItems(buildItems(msg.Entries))
		m.skipHeader(1)
		return m, tea.Batch(cmd, waitForSnapshot(m.sub))

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool { return m.searchMode }

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		f := m.filter
		f.Search = m.searchInput.Value()
		return m, m.SetFilter(f)

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		f := m.filter
		f.Search = ""
		return m, m.SetFilter(f)
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.filter.Search)
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.ShowCompleted):
		f := m.filter
		f.CompletedOnly = !f.CompletedOnly
		return m, m.SetFilter(f)

	case key.Matches(msg, m.keys.Down):
		m.list.CursorDown()
		m.skipHeader(1)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.list.CursorUp()
		m.skipHeader(-1)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// skipHeader moves the cursor off a heading in direction dir, reversing at
// the ends of the list.
func (m *Model) skipHeader(dir int) {
	items := m.list.Items()
	if len(items) == 0 {
		return
	}
	for _, d := range []int{dir, -dir} {
		for i := m.list.Index(); i >= 0 && i < len(items); i += d {
			if _, ok := items[i].(EntryItem); ok {
				m.list.Select(i)
				return
			}
		}
	}
}

// SelectedEntry returns the entry under the cursor.
func (m Model) SelectedEntry() (model.Entry, bool) {
	item, ok := m.list.SelectedItem().(EntryItem)
	if !ok {
		return model.Entry{}, false
	}
	return item.Entry, true
}

// Entries returns the entries currently displayed, in display order.
func (m Model) Entries() []model.Entry {
	var out []model.Entry
	for _, it := range m.list.Items() {
		if e, ok := it.(EntryItem); ok {
			out = append(out, e.Entry)
		}
	}
	return out
}

// View renders the task list view.
func (m Model) View() string {
	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = m.renderEmptyState()
	}

	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, body)
	}
	return body
}

// renderEmptyState shows guidance text when nothing matches.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.filter.Search != "" || m.filter.CompletedOnly || m.filter.List != model.ListAll {
		return style.Render("No matching tasks.\nPress tab to switch lists or / to search.")
	}
	return style.Render("Nothing to do.\n\nPress n to add a task.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-1)
	m.searchInput.Width = width - 4
}
