package listmgr

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/theme"
	"github.com/nhle/todolist/internal/todo"
)

// CloseMsg signals the parent to close the list manager.
type CloseMsg struct{}

// ChangedMsg signals that the registry was modified. Removed is set when a
// list was deleted so the parent can leave a filter pointing at it.
type ChangedMsg struct {
	Removed string
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name    string
	confirm bool
}

type listAddedMsg struct{ err error }

type listRemovedMsg struct {
	name    string
	deleted int
	err     error
}

// Model is the Bubble Tea model for list management.
type Model struct {
	mode        mode
	svc         *todo.Service
	keys        *keys.KeyMap
	names       []string
	selectedIdx int
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new list manager model.
func New(svc *todo.Service, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:  modeList,
		svc:   svc,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// Open refreshes the names from the registry and resets the view.
func (m *Model) Open() {
	m.mode = modeList
	m.statusMsg = ""
	m.reload()
}

func (m *Model) reload() {
	m.names = m.svc.Lists()
	if m.selectedIdx >= len(m.names) {
		m.selectedIdx = max(len(m.names)-1, 0)
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case listAddedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "List added"
		}
		m.mode = modeList
		m.reload()
		return m, func() tea.Msg { return ChangedMsg{} }

	case listRemovedMsg:
		m.mode = modeList
		m.reload()
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("List %q deleted with %d task(s)", msg.name, msg.deleted)
		name := msg.name
		return m, func() tea.Msg { return ChangedMsg{Removed: name} }

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.names) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.names)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.names) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.names) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.fb.name = ""
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(m.names) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm(m.names[m.selectedIdx])
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("List name").
				Placeholder("e.g. Groceries").
				Value(&m.fb.name).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					switch {
					case s == "":
						return fmt.Errorf("name is required")
					case strings.Contains(s, ","):
						return fmt.Errorf("name must not contain a comma")
					case s == model.ListAll:
						return fmt.Errorf("%q is reserved", model.ListAll)
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm(name string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete list %q?", name)).
				Description("Every task in this list will be deleted too.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m, m.addList(strings.TrimSpace(m.fb.name))
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		if m.fb.confirm && m.selectedIdx < len(m.names) {
			return m, m.removeList(m.names[m.selectedIdx])
		}
		m.mode = modeList
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// View renders the list manager.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Lists"))
	b.WriteString("\n\n")

	for i, name := range m.names {
		label := "▪ " + name
		if !model.ListType(name).Custom() {
			label += theme.HelpStyle.Render("  built-in")
		}
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("n new | d delete | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func (m Model) addList(name string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		return listAddedMsg{err: svc.AddList(name)}
	}
}

func (m Model) removeList(name string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		n, err := svc.RemoveList(context.Background(), name)
		return listRemovedMsg{name: name, deleted: n, err: err}
	}
}
