package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/todo"
)

// shareTimeout bounds a single IMAP append.
const shareTimeout = 30 * time.Second

// errNoSharer is reported when sharing is not configured.
var errNoSharer = errors.New("sharing is not configured")

// entryResultMsg reports the outcome of a background entry action.
type entryResultMsg struct {
	action string
	detail string
	err    error
}

func (r entryResultMsg) status() string {
	if r.err != nil {
		return fmt.Sprintf("%s failed: %v", r.action, r.err)
	}
	if r.detail != "" {
		return r.detail
	}
	return r.action + " done"
}

// saveEntry creates a new entry, or edits id when it is set. The task list
// picks the change up from its subscription.
func (m Model) saveEntry(id string, d todo.Draft) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		if id == "" {
			e, err := svc.Add(ctx, d)
			return entryResultMsg{action: "add", detail: "added " + e.Title, err: err}
		}
		err := svc.Edit(ctx, id, d)
		return entryResultMsg{action: "edit", detail: "saved " + d.Title, err: err}
	}
}

func (m Model) toggleEntry(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		follow, err := svc.Toggle(context.Background(), id)
		r := entryResultMsg{action: "toggle", err: err}
		if follow != nil && follow.SetDate != nil {
			r.detail = "next occurrence " + follow.SetDate.Format("Mon 2 Jan")
		}
		return r
	}
}

func (m Model) deleteEntry(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		err := svc.Delete(context.Background(), id)
		return entryResultMsg{action: "delete", detail: "deleted", err: err}
	}
}

func (m Model) restamp() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		n, err := svc.Restamp(context.Background())
		return entryResultMsg{action: "restamp", detail: fmt.Sprintf("restamped %d task(s)", n), err: err}
	}
}

func (m Model) shareEntry(e model.Entry) tea.Cmd {
	sharer := m.sharer
	env := m.envelope
	return func() tea.Msg {
		if sharer == nil {
			return entryResultMsg{action: "share", err: errNoSharer}
		}
		ctx, cancel := context.WithTimeout(context.Background(), shareTimeout)
		defer cancel()
		env.Date = time.Now()
		err := sharer.Save(ctx, env, e)
		return entryResultMsg{action: "share", detail: "saved to drafts", err: err}
	}
}
