// Package tui is an interactive prompt that shows suggestions while typing.
package tui

import (
	"strings"

	"github.com/NikitaCOEUR/autosuggest/internal/cache"
	"github.com/NikitaCOEUR/autosuggest/internal/resolve"
	"github.com/NikitaCOEUR/autosuggest/internal/scheduler"
	"github.com/NikitaCOEUR/autosuggest/internal/shellstate"
	"github.com/NikitaCOEUR/autosuggest/internal/view"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// changedMsg tells the model the scheduler store was replaced
type changedMsg struct{}

// Changes coalesces scheduler notifications for the prompt
type Changes chan struct{}

// NewChanges creates a notification channel
func NewChanges() Changes {
	return make(Changes, 1)
}

// Notify is meant for scheduler.Options.OnChange; it never blocks
func (c Changes) Notify([]scheduler.State) {
	select {
	case c <- struct{}{}:
	default:
	}
}

func waitForChange(c Changes) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-c; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// Options wires the prompt to a session
type Options struct {
	Catalog   *resolve.Catalog
	Scheduler *scheduler.Scheduler
	Tracker   *shellstate.Tracker
	Registry  *cache.Registry
	Changes   Changes
	// Limit caps the suggestions listed
	Limit int
}

// Model is the BubbleTea model of the prompt
type Model struct {
	opts  Options
	input textinput.Model

	width      int
	line       string
	resolved   resolve.Result
	workingDir string
	states     []scheduler.State

	// UI state
	selected       int
	showGenerators bool
	message        string
}

// New creates the prompt model
func New(opts Options) *Model {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "type a command"
	input.Focus()

	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	return &Model{opts: opts, input: input}
}

func (m *Model) Init() tea.Cmd {
	m.evaluate()
	return tea.Batch(textinput.Blink, waitForChange(m.opts.Changes))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down":
			if m.selected < m.visible()-1 {
				m.selected++
			}
			return m, nil
		case "tab":
			m.accept()
			return m, nil
		case "ctrl+g":
			m.showGenerators = !m.showGenerators
			return m, nil
		case "ctrl+r":
			m.opts.Registry.ResetAll()
			m.message = "caches reset"
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case changedMsg:
		m.states = m.opts.Scheduler.States()
		m.clampSelection()
		return m, waitForChange(m.opts.Changes)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.line {
		m.message = ""
		m.evaluate()
	}
	return m, cmd
}

func (m *Model) View() string {
	data := &view.Data{
		Line:           m.input.View(),
		WorkingDir:     m.workingDir,
		States:         m.states,
		Limit:          m.opts.Limit,
		ShowGenerators: m.showGenerators,
	}
	if arg := m.resolved.Argument; arg != nil {
		data.Argument = arg.Name
		data.Dangerous = arg.IsDangerous
	}

	body := view.Render(data)
	if sel := m.selection(); sel != "" {
		body += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("⇥ "+sel)
	}
	if m.message != "" {
		body += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render(m.message)
	}

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render(" [tab] Accept • [↑/↓] Select • [ctrl+g] Generators • [ctrl+r] Reset caches • [esc] Quit")

	return lipgloss.NewStyle().Margin(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, body, help),
	)
}

// Line returns the current command line
func (m *Model) Line() string {
	return m.line
}

// evaluate resolves the current line and hands it to the scheduler
func (m *Model) evaluate() {
	m.line = m.input.Value()
	state := m.opts.Tracker.Observe()
	m.workingDir = state.WorkingDir
	m.resolved = m.opts.Catalog.Resolve(m.line)
	m.opts.Scheduler.Update(m.resolved.Input(state.Context()))
	m.states = m.opts.Scheduler.States()
	m.selected = 0
}

func (m *Model) visible() int {
	n := len(scheduler.Flatten(m.states))
	if n > m.opts.Limit {
		n = m.opts.Limit
	}
	return n
}

func (m *Model) clampSelection() {
	if m.selected >= m.visible() {
		m.selected = 0
	}
}

func (m *Model) selection() string {
	suggestions := scheduler.Flatten(m.states)
	if m.selected >= len(suggestions) || m.selected >= m.opts.Limit {
		return ""
	}
	s := suggestions[m.selected]
	if s.Insert != "" {
		return s.Insert
	}
	return s.Name
}

// accept replaces the search term with the selected suggestion
func (m *Model) accept() {
	insert := m.selection()
	if insert == "" {
		return
	}

	line := strings.TrimSuffix(m.line, m.resolved.SearchTerm) + insert
	if !strings.HasSuffix(insert, "/") {
		line += " "
	}
	m.input.SetValue(line)
	m.input.CursorEnd()
	m.evaluate()
}
