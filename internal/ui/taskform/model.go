package taskform

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/theme"
	"github.com/nhle/todolist/internal/todo"
)

// SubmittedMsg is dispatched when the form is completed. ID is empty for a
// new entry.
type SubmittedMsg struct {
	ID    string
	Draft todo.Draft
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title  string
	date   string
	clock  string
	repeat model.Repeat
	list   string
}

// Model is the Bubble Tea model for the entry create/edit form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	editID string
	lists  []string
	loc    *time.Location
	width  int
	height int
}

// New creates a new entry form. Dates are read in loc.
func New(loc *time.Location, width, height int) Model {
	if loc == nil {
		loc = time.Local
	}
	return Model{
		fb:     &formBindings{repeat: model.RepeatNone},
		loc:    loc,
		width:  width,
		height: height,
	}
}

// StartCreate resets the form to its defaults: empty title, no date, no
// repeat and the first registered list.
func (m *Model) StartCreate(lists []string) tea.Cmd {
	m.editID = ""
	m.lists = lists
	*m.fb = formBindings{repeat: model.RepeatNone}
	if len(lists) > 0 {
		m.fb.list = lists[0]
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit fills the form from e.
func (m *Model) StartEdit(e model.Entry, lists []string) tea.Cmd {
	m.editID = e.ID
	m.lists = lists
	*m.fb = formBindings{
		title:  e.Title,
		repeat: e.Repeat,
		list:   string(e.ListType),
	}
	if m.fb.repeat == "" {
		m.fb.repeat = model.RepeatNone
	}
	if e.SetDate != nil {
		local := e.SetDate.In(m.loc)
		m.fb.date = local.Format(todo.DateLayout)
		if local.Hour() != 0 || local.Minute() != 0 {
			m.fb.clock = local.Format(todo.TimeLayout)
		}
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Editing reports whether the form edits an existing entry.
func (m Model) Editing() bool { return m.editID != "" }

// Update handles messages for the entry form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.handleSubmit()
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the entry form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.Editing() {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	repeats := make([]huh.Option[model.Repeat], len(model.Repeats))
	for i, r := range model.Repeats {
		repeats[i] = huh.NewOption(string(r), r)
	}

	lists := make([]huh.Option[string], len(m.lists))
	for i, name := range m.lists {
		lists[i] = huh.NewOption(name, name)
	}

	fb, loc := m.fb, m.loc
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&fb.title).
				Validate(validateRequired("Title")),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&fb.date).
				Validate(validateOptionalDate),
			huh.NewInput().
				Title("Time").
				Placeholder("HH:MM (optional)").
				Value(&fb.clock).
				Validate(func(s string) error {
					_, err := todo.ParseDue(fb.date, s, loc)
					if errors.Is(err, todo.ErrTimeWithoutDate) || errors.Is(err, todo.ErrBadTime) {
						return err
					}
					return nil
				}),
			huh.NewSelect[model.Repeat]().
				Title("Repeat").
				Options(repeats...).
				Value(&fb.repeat),
			huh.NewSelect[string]().
				Title("List").
				Options(lists...).
				Value(&fb.list),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	due, err := todo.ParseDue(m.fb.date, m.fb.clock, m.loc)
	if err != nil {
		// Validation already ran; treat leftovers as undated.
		due = nil
	}

	d := todo.Draft{
		Title:    m.fb.title,
		SetDate:  due,
		Repeat:   m.fb.repeat,
		ListType: model.ListType(m.fb.list),
	}
	id := m.editID
	return func() tea.Msg { return SubmittedMsg{ID: id, Draft: d} }
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 12)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(todo.DateLayout, s); err != nil {
		return todo.ErrBadDate
	}
	return nil
}
