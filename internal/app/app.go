package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/rollover"
	"github.com/nhle/todolist/internal/share"
	"github.com/nhle/todolist/internal/todo"
	"github.com/nhle/todolist/internal/ui"
	"github.com/nhle/todolist/internal/ui/command"
	helpview "github.com/nhle/todolist/internal/ui/help"
	"github.com/nhle/todolist/internal/ui/listmgr"
	"github.com/nhle/todolist/internal/ui/taskform"
	"github.com/nhle/todolist/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewHelp
	ViewCommand
	ViewForm
	ViewLists
)

// Sharer saves an entry somewhere outside the app.
type Sharer interface {
	Save(ctx context.Context, env share.Envelope, e model.Entry) error
}

// Options wires the root model.
type Options struct {
	Service  *todo.Service
	Rollover *rollover.Watcher
	// Sharer is optional; sharing reports an error when it is nil.
	Sharer      Sharer
	Envelope    share.Envelope
	DefaultList string
	Location    *time.Location
	Logger      *zap.Logger
}

// Model is the root Bubble Tea model that manages view routing and layout.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	svc          *todo.Service
	rollover     *rollover.Watcher
	sharer       Sharer
	envelope     share.Envelope
	log          *zap.Logger
	taskList     tasklist.Model
	helpView     helpview.Model
	commandView  command.Model
	formView     taskform.Model
	listView     listmgr.Model
	ready        bool
	statusMsg    string
	startCmd     tea.Cmd
}

// New creates the root application model.
func New(opts Options) Model {
	k := keys.DefaultKeyMap()
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cmdView := command.New(80, 24)
	cmdView.SetLists(opts.Service.Lists())

	taskList := tasklist.New(opts.Service, k, opts.DefaultList, 80, 24)
	startCmd := taskList.Init()

	return Model{
		currentView: ViewList,
		keys:        k,
		svc:         opts.Service,
		rollover:    opts.Rollover,
		sharer:      opts.Sharer,
		envelope:    opts.Envelope,
		log:         log,
		taskList:    taskList,
		startCmd:    startCmd,
		helpView:    helpview.New(k, 80, 24),
		commandView: cmdView,
		formView:    taskform.New(opts.Location, 80, 24),
		listView:    listmgr.New(opts.Service, k, 80, 24),
	}
}

// Init waits for the task list's first snapshot and starts the rollover
// watcher. The subscription itself is opened by New.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.startCmd}
	if m.rollover != nil {
		cmds = append(cmds, m.rollover.Start())
	}
	return tea.Batch(cmds...)
}

// Shutdown releases the subscription and stops background work.
func (m *Model) Shutdown() {
	m.taskList.Close()
	if m.rollover != nil {
		m.rollover.Stop()
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.taskList.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.formView.SetSize(w, h)
		m.listView.SetSize(w, h)
		return m.updateActiveView(msg)

	case tasklist.SnapshotMsg:
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		return m, cmd

	case rollover.DayChangedMsg:
		if msg.Err != nil {
			m.statusMsg = "restamp failed: " + msg.Err.Error()
		} else if msg.Restamped > 0 {
			m.statusMsg = "new day: tasks regrouped"
		}
		return m, m.rollover.WaitForNextResult()

	case taskform.SubmittedMsg:
		m.currentView = ViewList
		return m, m.saveEntry(msg.ID, msg.Draft)

	case taskform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case entryResultMsg:
		m.statusMsg = msg.status()
		if msg.err != nil {
			m.log.Warn("entry action failed", zap.String("action", msg.action), zap.Error(msg.err))
		}
		return m, nil

	case listmgr.CloseMsg:
		m.currentView = ViewList
		return m, nil

	case listmgr.ChangedMsg:
		m.commandView.SetLists(m.svc.Lists())
		if msg.Removed != "" && m.taskList.Filter().List == msg.Removed {
			f := m.taskList.Filter()
			f.List = model.ListAll
			return m, m.taskList.SetFilter(f)
		}
		return m, nil

	case command.Msg:
		m.currentView = ViewList
		return m.executeCommand(msg)

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, quitKeys) {
			m.Shutdown()
			return m, tea.Quit
		}
		if m.currentView == ViewList && !m.taskList.Searching() {
			if next, cmd, handled := m.handleListKey(msg); handled {
				return next, cmd
			}
		}
		if m.currentView == ViewHelp && (key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back)) {
			m.currentView = m.previousView
			return m, nil
		}
	}

	return m.updateActiveView(msg)
}

var quitKeys = key.NewBinding(key.WithKeys("ctrl+c"))

// handleListKey runs the global shortcuts available on the task list.
func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Shutdown()
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.New):
		m.currentView = ViewForm
		return m, m.formView.StartCreate(m.svc.Lists()), true

	case key.Matches(msg, m.keys.Edit):
		e, ok := m.taskList.SelectedEntry()
		if !ok {
			return m, nil, true
		}
		m.currentView = ViewForm
		return m, m.formView.StartEdit(e, m.svc.Lists()), true

	case key.Matches(msg, m.keys.Toggle):
		if e, ok := m.taskList.SelectedEntry(); ok {
			return m, m.toggleEntry(e.ID), true
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Delete):
		if e, ok := m.taskList.SelectedEntry(); ok {
			return m, m.deleteEntry(e.ID), true
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Share):
		if e, ok := m.taskList.SelectedEntry(); ok {
			return m, m.shareEntry(e), true
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Lists):
		m.previousView = m.currentView
		m.currentView = ViewLists
		m.listView.Open()
		return m, nil, true

	case key.Matches(msg, m.keys.NextList):
		f := m.taskList.Filter()
		f.List = nextList(f.List, m.svc.Lists())
		return m, m.taskList.SetFilter(f), true
	}
	return m, nil, false
}

// nextList cycles All Lists → each registered list → All Lists.
func nextList(current string, names []string) string {
	order := append([]string{model.ListAll}, names...)
	for i, n := range order {
		if n == current {
			return order[(i+1)%len(order)]
		}
	}
	return model.ListAll
}

// executeCommand applies a palette command.
func (m Model) executeCommand(c command.Msg) (tea.Model, tea.Cmd) {
	f := m.taskList.Filter()
	switch c.Name {
	case "add":
		m.currentView = ViewForm
		return m, m.formView.StartCreate(m.svc.Lists())
	case "lists":
		m.currentView = ViewLists
		m.listView.Open()
		return m, nil
	case "all":
		f.List = model.ListAll
	case "list":
		if !containsName(m.svc.Lists(), c.Arg) {
			m.statusMsg = "no list named " + c.Arg
			return m, nil
		}
		f.List = c.Arg
	case "completed":
		f.CompletedOnly = !f.CompletedOnly
	case "search":
		f.Search = c.Arg
	case "clear":
		f = tasklist.Filter{List: model.ListAll}
	case "restamp":
		return m, m.restamp()
	case "share":
		if e, ok := m.taskList.SelectedEntry(); ok {
			return m, m.shareEntry(e)
		}
		return m, nil
	default:
		m.statusMsg = "unknown command: " + c.Name
		return m, nil
	}
	return m, m.taskList.SetFilter(f)
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewForm:
		m.formView, cmd = m.formView.Update(msg)
	case ViewLists:
		m.listView, cmd = m.listView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("To-Do", m.taskList.Filter().Label())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.statusMsg)

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewForm:
		return m.formView.View()
	case ViewLists:
		return m.listView.View()
	default:
		return m.taskList.View()
	}
}

// keyHints returns the status bar hints for the active view.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewForm:
		return "tab next field | enter confirm | esc cancel"
	case ViewCommand:
		return "enter run | tab complete | esc cancel"
	case ViewLists:
		return "n new | d delete | esc back"
	case ViewHelp:
		return "? or esc close"
	default:
		if m.taskList.Searching() {
			return "enter search | esc clear"
		}
		return "n new | e edit | space done | d delete | tab list | / search | ? help | q quit"
	}
}
