package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type confirmModel struct {
	message   string
	answer    bool
	done      bool
	cancelled bool
}

func newConfirmModel(message string, defaultYes bool) confirmModel {
	return confirmModel{message: message, answer: defaultYes}
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, keys.Yes):
		m.answer = true
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, keys.No):
		m.answer = false
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, keys.Choose):
		m.done = true
		return m, tea.Quit
	case keyMsg.String() == "left", keyMsg.String() == "right", keyMsg.String() == "tab":
		m.answer = !m.answer
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.cancelled {
		return dimStyle.Render("? "+m.message) + " " + warningStyle.Render("cancelled") + "\n"
	}
	if m.done {
		return dimStyle.Render("? "+m.message) + " " + answerStyle.Render(yesNo(m.answer)) + "\n"
	}

	yes, no := normalStyle.Render("Yes"), normalStyle.Render("No")
	if m.answer {
		yes = selectedStyle.Render("▸ Yes")
	} else {
		no = selectedStyle.Render("▸ No")
	}
	return questionStyle.Render("? "+m.message) + "  " + yes + "  " + no + "\n" +
		"  " + helpBar(keys.Yes, keys.No, keys.Choose, keys.Cancel) + "\n"
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
