package tasklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/theme"
	"github.com/nhle/todolist/internal/todo"
)

// HeaderItem is a non-selectable bucket heading.
type HeaderItem struct {
	State model.TimeState
	Count int
}

// FilterValue implements list.Item.
func (h HeaderItem) FilterValue() string { return "" }

// EntryItem wraps a model.Entry so it can be used in a bubbles/list.
type EntryItem struct {
	Entry model.Entry
}

// FilterValue implements list.Item.
func (i EntryItem) FilterValue() string { return i.Entry.Title }

// buildItems flattens grouped entries into headings followed by their entries.
func buildItems(entries []model.Entry) []list.Item {
	groups := todo.GroupByTimeState(entries)
	items := make([]list.Item, 0, len(entries)+len(groups))
	for _, g := range groups {
		items = append(items, HeaderItem{State: g.State, Count: len(g.Entries)})
		for _, e := range g.Entries {
			items = append(items, EntryItem{Entry: e})
		}
	}
	return items
}

// ItemDelegate implements list.ItemDelegate for headings and entries.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the gap between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update is a no-op.
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render draws a single list line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	switch it := item.(type) {
	case HeaderItem:
		label := fmt.Sprintf("%s (%d)", it.State.Label(), it.Count)
		fmt.Fprint(w, theme.TimeStateStyle(it.State).Render(label))
	case EntryItem:
		fmt.Fprint(w, renderEntry(it.Entry, index == m.Index()))
	}
}

// renderEntry draws an entry line with its checkbox, due date and badges.
func renderEntry(e model.Entry, selected bool) string {
	prefix := "○"
	if e.IsDone {
		prefix = "✓"
	}

	parts := []string{prefix, e.Title}
	if e.SetDate != nil {
		parts = append(parts, theme.DueDateStyle.Render(e.SetDate.Format("Mon 2 Jan 15:04")))
	}
	if e.Repeat.Recurring() {
		parts = append(parts, theme.BadgeStyle.Render("↻ "+string(e.Repeat)))
	}
	parts = append(parts, theme.BadgeStyle.Render("["+string(e.ListType)+"]"))

	line := strings.Join(parts, " ")
	if e.IsDone {
		line = theme.DimmedStyle.Render(line)
	}

	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}
