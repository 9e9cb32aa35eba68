package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/droidloop/droidloop/internal/prompt"
)

// Prompter implements prompt.Prompter with inline Bubble Tea programs. Each
// question runs its own short-lived program and leaves a one-line summary of
// the answer in the scrollback.
type Prompter struct {
	in  io.Reader
	out io.Writer
}

// NewPrompter returns a Prompter on the process terminal.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// NewPrompterWithIO returns a Prompter reading keys from in and rendering to
// out.
func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Interactive always reports true.
func (p *Prompter) Interactive() bool { return true }

// Select shows options as a list and returns the chosen index.
func (p *Prompter) Select(ctx context.Context, message string, options []string, defaultIndex int) (int, error) {
	if len(options) == 0 {
		return -1, errors.New("nothing to choose from")
	}
	final, err := p.run(ctx, newSelectModel(message, options, defaultIndex))
	if err != nil {
		return -1, err
	}
	m := final.(selectModel)
	if m.cancelled {
		return -1, prompt.ErrCancelled
	}
	return m.cursor, nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(ctx context.Context, message string, defaultYes bool) (bool, error) {
	final, err := p.run(ctx, newConfirmModel(message, defaultYes))
	if err != nil {
		return false, err
	}
	m := final.(confirmModel)
	if m.cancelled {
		return false, prompt.ErrCancelled
	}
	return m.answer, nil
}

// Input asks for a single non-empty line of text.
func (p *Prompter) Input(ctx context.Context, message, placeholder string) (string, error) {
	final, err := p.run(ctx, newInputModel(message, placeholder))
	if err != nil {
		return "", err
	}
	m := final.(inputModel)
	if m.cancelled {
		return "", prompt.ErrCancelled
	}
	return m.value(), nil
}

// Menu shows the main menu and returns the key of the chosen item.
func (p *Prompter) Menu(ctx context.Context, header MenuHeader, items []MenuItem) (string, error) {
	if len(items) == 0 {
		return "", errors.New("menu has no items")
	}
	final, err := p.run(ctx, newMenuModel(header, items))
	if err != nil {
		return "", err
	}
	m := final.(menuModel)
	if m.quit {
		return "", prompt.ErrCancelled
	}
	return items[m.cursor].Key, nil
}

// run executes m until it quits. A cancelled context wins over whatever the
// program returned.
func (p *Prompter) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.in != nil {
		opts = append(opts, tea.WithInput(p.in))
	}
	if p.out != nil {
		opts = append(opts, tea.WithOutput(p.out))
	}

	final, err := tea.NewProgram(m, opts...).Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	return final, nil
}
