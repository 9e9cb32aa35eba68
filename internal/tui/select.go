package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// maxVisibleOptions bounds the rendered option list; longer lists scroll.
const maxVisibleOptions = 10

type selectModel struct {
	message   string
	options   []string
	cursor    int
	done      bool
	cancelled bool
}

func newSelectModel(message string, options []string, defaultIndex int) selectModel {
	cursor := defaultIndex
	if cursor < 0 || cursor >= len(options) {
		cursor = 0
	}
	return selectModel{message: message, options: options, cursor: cursor}
}

func (m selectModel) Init() tea.Cmd { return nil }

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Cancel), key.Matches(keyMsg, keys.Quit):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Choose):
		m.done = true
		return m, tea.Quit
	default:
		// 1-9 picks an option directly.
		if s := keyMsg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if idx := int(s[0] - '1'); idx < len(m.options) {
				m.cursor = idx
				m.done = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m selectModel) View() string {
	if m.cancelled {
		return dimStyle.Render("? "+m.message) + " " + warningStyle.Render("cancelled") + "\n"
	}
	if m.done {
		return dimStyle.Render("? "+m.message) + " " + answerStyle.Render(m.options[m.cursor]) + "\n"
	}

	var b strings.Builder
	b.WriteString(questionStyle.Render("? "+m.message) + "\n")

	start, end := scrollWindow(m.cursor, len(m.options), maxVisibleOptions)
	if start > 0 {
		b.WriteString(dimStyle.Render("    ↑ more") + "\n")
	}
	for i := start; i < end; i++ {
		cur := "  "
		style := normalStyle
		if i == m.cursor {
			cur = selectedStyle.Render("▸ ")
			style = selectedStyle
		}
		num := dimStyle.Render(fmt.Sprintf("[%d] ", i+1))
		b.WriteString("  " + cur + num + style.Render(m.options[i]) + "\n")
	}
	if end < len(m.options) {
		b.WriteString(dimStyle.Render("    ↓ more") + "\n")
	}

	b.WriteString("  " + helpBar(keys.Up, keys.Down, keys.Choose, keys.Cancel) + "\n")
	return b.String()
}
