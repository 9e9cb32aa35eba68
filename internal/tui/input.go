package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type inputModel struct {
	message   string
	input     textinput.Model
	empty     bool
	done      bool
	cancelled bool
}

func newInputModel(message, placeholder string) inputModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Focus()
	return inputModel{message: message, input: ti}
}

func (m inputModel) value() string {
	return strings.TrimSpace(m.input.Value())
}

func (m inputModel) Init() tea.Cmd { return textinput.Blink }

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(keyMsg, keys.Choose):
			if m.value() == "" {
				m.empty = true
				return m, nil
			}
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.empty = false
	return m, cmd
}

func (m inputModel) View() string {
	if m.cancelled {
		return dimStyle.Render("? "+m.message) + " " + warningStyle.Render("cancelled") + "\n"
	}
	if m.done {
		return dimStyle.Render("? "+m.message) + " " + answerStyle.Render(m.value()) + "\n"
	}

	var b strings.Builder
	b.WriteString(questionStyle.Render("? "+m.message) + "\n")
	b.WriteString("  " + m.input.View() + "\n")
	if m.empty {
		b.WriteString("  " + errorStyle.Render("A value is required") + "\n")
	}
	b.WriteString("  " + helpBar(keys.Choose, keys.Cancel) + "\n")
	return b.String()
}
