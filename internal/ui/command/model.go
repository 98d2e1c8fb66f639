package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/theme"
)

// Msg is emitted when the user executes a command.
type Msg struct {
	Name string
	Arg  string
}

// CancelMsg is emitted when the palette is dismissed.
type CancelMsg struct{}

// Verbs are the commands the palette understands.
var Verbs = []string{
	"add", "lists", "all", "list", "completed", "search", "clear", "restamp", "share",
}

// Parse splits a command line into its verb and the remaining argument.
func Parse(line string) Msg {
	line = strings.TrimSpace(line)
	name, arg, _ := strings.Cut(line, " ")
	return Msg{Name: strings.ToLower(name), Arg: strings.TrimSpace(arg)}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.Width = width - 6

	m := Model{input: ti, width: width, height: height}
	m.SetLists(nil)
	return m
}

// SetLists refreshes the completions offered for "list <name>".
func (m *Model) SetLists(names []string) {
	suggestions := make([]string, 0, len(Verbs)+len(names))
	suggestions = append(suggestions, Verbs...)
	for _, n := range names {
		suggestions = append(suggestions, "list "+n)
	}
	m.input.SetSuggestions(suggestions)
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			line := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(line) == "" {
				return m, func() tea.Msg { return CancelMsg{} }
			}
			parsed := Parse(line)
			return m, func() tea.Msg { return parsed }
		case "esc":
			m.input.Reset()
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Command Palette")

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.input.View())

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
