// Package tui provides the Bubble Tea prompts and main menu used when a human
// runs droidloop in an interactive terminal.
//
// They are never used for CI or piped output: --json, --plain and the isatty
// check each independently route callers to the line or non-interactive
// prompters instead.
package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ShouldUseTUI reports whether the full-screen prompts can run.
//
// Parameters:
//   - jsonOutput: whether --json was passed
//   - plain: whether --plain was passed
//
// Returns:
//   - bool: true if stdin and stdout are terminals that can render them
func ShouldUseTUI(jsonOutput, plain bool) bool {
	if jsonOutput || plain || os.Getenv("TERM") == "dumb" {
		return false
	}
	return (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) &&
		(isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()))
}

// --- Colors (mirrors internal/ui/styles.go) ---

var (
	green   = lipgloss.Color("#3DDC84")
	teal    = lipgloss.Color("#14B8A6")
	red     = lipgloss.Color("#EF4444")
	amber   = lipgloss.Color("#F59E0B")
	gray    = lipgloss.Color("#6B7280")
	dimGray = lipgloss.Color("#9CA3AF")
	white   = lipgloss.Color("#E5E7EB")
)

// --- Shared styles ---

var (
	// titleStyle renders the DROIDLOOP header.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(green)

	// questionStyle renders the prompt message.
	questionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(white)

	// selectedStyle highlights the option under the cursor.
	selectedStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(white)

	dimStyle = lipgloss.NewStyle().
			Foreground(dimGray)

	// answerStyle renders the answer left on screen once a prompt closes.
	answerStyle = lipgloss.NewStyle().
			Foreground(teal)

	errorStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(amber)

	// helpStyle renders the bottom key hint bar.
	helpStyle = lipgloss.NewStyle().
			Foreground(gray)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#374151"))
)

// separator returns a horizontal line of the given width.
func separator(width int) string {
	if width < 0 {
		width = 0
	}
	return separatorStyle.Render(strings.Repeat("─", width))
}

// helpKeyRender renders one "key description" hint.
func helpKeyRender(b key.Binding) string {
	h := b.Help()
	return lipgloss.NewStyle().Foreground(green).Bold(true).Render(h.Key) +
		" " + helpStyle.Render(h.Desc)
}

// helpBar joins the hints of bindings on one line.
func helpBar(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, helpKeyRender(b))
	}
	return strings.Join(parts, "  ")
}

// --- Key bindings ---

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Cancel key.Binding
	Quit   key.Binding
	Yes    key.Binding
	No     key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Choose: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "choose"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	Yes: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "yes"),
	),
	No: key.NewBinding(
		key.WithKeys("n", "N"),
		key.WithHelp("n", "no"),
	),
}

// scrollWindow returns the [start, end) slice of a list of n items that keeps
// cursor visible in a window of size rows.
func scrollWindow(cursor, n, size int) (int, int) {
	if size <= 0 || n <= size {
		return 0, n
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	end := start + size
	if end > n {
		end = n
		start = end - size
	}
	return start, end
}
