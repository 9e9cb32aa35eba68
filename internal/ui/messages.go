// Package ui provides message printing utilities.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// quietMode suppresses informational and dim output.
var quietMode bool

// output receives all human-readable output.
var output io.Writer = os.Stdout

// SetOutput redirects human-readable output, e.g. to stderr when stdout
// carries JSON.
func SetOutput(w io.Writer) {
	output = w
}

// SetQuietMode enables or disables quiet output. Errors, warnings and
// successes are always printed.
//
// Parameters:
//   - quiet: Whether to suppress non-essential output
func SetQuietMode(quiet bool) {
	quietMode = quiet
}

// IsQuiet reports whether quiet mode is enabled.
func IsQuiet() bool {
	return quietMode
}

// emit prints one styled line. Errors, warnings and successes ignore quiet
// mode.
func emit(style lipgloss.Style, icon, format string, args []interface{}) {
	fmt.Fprintln(output, style.Render(icon+fmt.Sprintf(format, args...)))
}

// Println prints an empty line.
func Println() {
	if quietMode {
		return
	}
	fmt.Fprintln(output)
}

// PrintSuccess prints a success message.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintSuccess(format string, args ...interface{}) {
	emit(SuccessStyle, "✓ ", format, args)
}

// PrintError prints an error message.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintError(format string, args ...interface{}) {
	emit(ErrorStyle, "✗ ", format, args)
}

// PrintWarning prints a warning message.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintWarning(format string, args ...interface{}) {
	emit(WarningStyle, "⚠ ", format, args)
}

// PrintInfo prints an informational message.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintInfo(format string, args ...interface{}) {
	if quietMode {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(output, InfoStyle.Render(msg))
}

// PrintDim prints a dimmed message.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintDim(format string, args ...interface{}) {
	if quietMode {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(output, DimStyle.Render(msg))
}

// PrintGuidance prints a "How to fix" block, one dimmed line per guidance
// line. Empty guidance prints nothing.
//
// Parameters:
//   - guidance: Multi-line remediation text
func PrintGuidance(guidance string) {
	guidance = strings.TrimSpace(guidance)
	if guidance == "" {
		return
	}
	fmt.Fprintln(output)
	fmt.Fprintln(output, WarningStyle.Render("How to fix:"))
	for _, line := range strings.Split(guidance, "\n") {
		fmt.Fprintln(output, DimStyle.Render("  "+line))
	}
}

// PrintBox prints content in a styled box.
//
// Parameters:
//   - title: Box title
//   - content: Box content
func PrintBox(title, content string) {
	titleStyled := BoxTitleStyle.Render(title)
	box := BoxStyle.Render(titleStyled + "\n" + content)
	fmt.Fprintln(output, box)
}

// Rule prints a dimmed horizontal rule as wide as the terminal, or 60
// columns when stdout is not a terminal.
func Rule() {
	if quietMode {
		return
	}
	fmt.Fprintln(output, DimStyle.Render(strings.Repeat("─", TerminalWidth())))
}

// TerminalWidth returns the width of stdout, capped at 100 columns.
func TerminalWidth() int {
	width := 60
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	if width > 100 {
		width = 100
	}
	return width
}

// Table represents a table with dynamic column widths for formatted output.
type Table struct {
	// Headers contains the column header names.
	Headers []string

	// Rows contains all data rows.
	Rows [][]string
}

// NewTable creates a new table with the specified headers.
//
// Parameters:
//   - headers: Column header names
//
// Returns:
//   - *Table: A new table instance
func NewTable(headers ...string) *Table {
	return &Table{
		Headers: headers,
		Rows:    make([][]string, 0),
	}
}

// AddRow adds a data row to the table.
//
// Parameters:
//   - values: Cell values for the row
func (t *Table) AddRow(values ...string) {
	t.Rows = append(t.Rows, values)
}

// columnWidths computes the width for each column.
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.Headers))
	for i, header := range t.Headers {
		widths[i] = len(header)
	}
	for _, row := range t.Rows {
		for i, val := range row {
			if i < len(widths) && len(val) > widths[i] {
				widths[i] = len(val)
			}
		}
	}
	return widths
}

// padRight pads a string to the specified width with spaces.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Render prints the table with calculated column widths.
func (t *Table) Render() {
	if len(t.Headers) == 0 {
		return
	}

	widths := t.columnWidths()
	colGap := "  "

	var headerCells []string
	for i, header := range t.Headers {
		headerCells = append(headerCells, TableHeaderStyle.Render(padRight(header, widths[i])))
	}
	fmt.Fprintln(output, strings.Join(headerCells, colGap))

	totalWidth := len(colGap) * (len(widths) - 1)
	for _, w := range widths {
		totalWidth += w
	}
	fmt.Fprintln(output, DimStyle.Render(strings.Repeat("─", totalWidth)))

	for _, row := range t.Rows {
		var cells []string
		for i := range t.Headers {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			cells = append(cells, TableCellStyle.Render(padRight(val, widths[i])))
		}
		fmt.Fprintln(output, strings.Join(cells, colGap))
	}
}
