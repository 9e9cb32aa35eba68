package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MenuHeader is the project summary shown above the main menu.
type MenuHeader struct {
	Version string
	Project string
	Variant string
	Device  string
}

// MenuItem is one main menu entry.
type MenuItem struct {
	// Key identifies the item to the caller.
	Key string

	Label string

	// Hint is shown dimmed next to the label, e.g. the command line
	// equivalent.
	Hint string
}

// menuModel is the main menu the session returns to after a build cycle.
type menuModel struct {
	header MenuHeader
	items  []MenuItem
	cursor int
	width  int
	chosen bool
	quit   bool
}

func newMenuModel(header MenuHeader, items []MenuItem) menuModel {
	return menuModel{header: header, items: items}
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleKey processes key events on the menu.
func (m menuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Quit):
		m.quit = true
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Choose):
		m.chosen = true
		return m, tea.Quit
	default:
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if idx := int(s[0] - '1'); idx < len(m.items) {
				m.cursor = idx
				m.chosen = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m menuModel) View() string {
	if m.quit {
		return ""
	}
	if m.chosen {
		return dimStyle.Render("▸ ") + answerStyle.Render(m.items[m.cursor].Label) + "\n"
	}

	var b strings.Builder
	w := m.width
	if w == 0 {
		w = 80
	}
	sepW := min(w-4, 56)

	version := ""
	if m.header.Version != "" {
		version = "  " + dimStyle.Render("v"+m.header.Version)
	}
	b.WriteString(titleStyle.Render(" DROIDLOOP") + version + "\n")
	b.WriteString(" " + separator(sepW) + "\n")

	b.WriteString(m.renderSummary())

	b.WriteString(" " + separator(sepW) + "\n")
	for i, item := range m.items {
		cur := "  "
		style := normalStyle
		if i == m.cursor {
			cur = selectedStyle.Render("▸ ")
			style = selectedStyle
		}
		num := dimStyle.Render(fmt.Sprintf("[%d] ", i+1))
		line := "  " + cur + num + style.Render(item.Label)
		if item.Hint != "" {
			line += "  " + dimStyle.Render(item.Hint)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n  " + helpBar(keys.Up, keys.Down, keys.Choose, keys.Quit) + "\n")
	return b.String()
}

// renderSummary renders the project, variant and device rows.
func (m menuModel) renderSummary() string {
	label := lipgloss.NewStyle().Foreground(dimGray).Width(10)
	value := func(s, fallback string) string {
		if s == "" {
			return dimStyle.Render(fallback)
		}
		return normalStyle.Render(s)
	}

	var b strings.Builder
	b.WriteString("  " + label.Render("Project") + value(m.header.Project, "unknown") + "\n")
	b.WriteString("  " + label.Render("Variant") + value(m.header.Variant, "not chosen yet") + "\n")
	b.WriteString("  " + label.Render("Device") + value(m.header.Device, "not chosen yet") + "\n")
	return b.String()
}
