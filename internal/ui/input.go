// Package ui provides the line-based prompter.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/droidloop/droidloop/internal/prompt"
)

// LinePrompter implements prompt.Prompter by reading whole lines. It is the
// fallback for terminals where the full-screen prompts cannot run (TERM=dumb,
// --plain) and is what tests drive with scripted input.
type LinePrompter struct {
	out io.Writer

	once  sync.Once
	in    io.Reader
	lines chan lineResult
}

type lineResult struct {
	text string
	err  error
}

// NewLinePrompter creates a prompter reading answers from in and writing
// questions to out.
//
// Parameters:
//   - in: Source of answers, usually os.Stdin
//   - out: Destination for questions, usually os.Stdout
//
// Returns:
//   - *LinePrompter: A new prompter
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: in, out: out}
}

// Interactive always reports true.
func (p *LinePrompter) Interactive() bool { return true }

// readLine returns the next trimmed line. EOF counts as a cancellation, the
// same as Ctrl-D at a shell prompt.
func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	p.once.Do(func() {
		p.lines = make(chan lineResult)
		go func() {
			reader := bufio.NewReader(p.in)
			for {
				text, err := reader.ReadString('\n')
				if err != nil && text == "" {
					p.lines <- lineResult{err: err}
					close(p.lines)
					return
				}
				p.lines <- lineResult{text: strings.TrimSpace(text)}
			}
		}()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-p.lines:
		if !ok || res.err == io.EOF {
			return "", prompt.ErrCancelled
		}
		if res.err != nil {
			return "", res.err
		}
		return res.text, nil
	}
}

func (p *LinePrompter) ask(ctx context.Context, message string) (string, error) {
	fmt.Fprintf(p.out, "%s ", InfoStyle.Render(message))
	return p.readLine(ctx)
}

// Select displays numbered options and reads a choice. Empty input picks
// the default when there is one.
func (p *LinePrompter) Select(ctx context.Context, message string, options []string, defaultIndex int) (int, error) {
	fmt.Fprintln(p.out, InfoStyle.Render(message))

	for i, opt := range options {
		number := AccentStyle.Render(fmt.Sprintf("[%d]", i+1))
		if i == defaultIndex {
			fmt.Fprintf(p.out, "  %s %s %s\n", AccentStyle.Render(">"), number, TitleStyle.Render(opt))
		} else {
			fmt.Fprintf(p.out, "    %s %s\n", number, InfoStyle.Render(opt))
		}
	}

	hasDefault := defaultIndex >= 0 && defaultIndex < len(options)
	defaultPrompt := ""
	if hasDefault {
		defaultPrompt = fmt.Sprintf(" [%d]", defaultIndex+1)
	}

	for {
		input, err := p.ask(ctx, fmt.Sprintf("Select option%s:", defaultPrompt))
		if err != nil {
			return -1, err
		}

		if input == "" && hasDefault {
			return defaultIndex, nil
		}

		var selection int
		if _, err := fmt.Sscanf(input, "%d", &selection); err != nil || selection < 1 || selection > len(options) {
			fmt.Fprintln(p.out, WarningStyle.Render(fmt.Sprintf("⚠ Please enter a number between 1 and %d", len(options))))
			continue
		}
		return selection - 1, nil
	}
}

// Confirm asks a yes/no question.
func (p *LinePrompter) Confirm(ctx context.Context, message string, defaultYes bool) (bool, error) {
	suffix := "[y/N]"
	if defaultYes {
		suffix = "[Y/n]"
	}

	input, err := p.ask(ctx, fmt.Sprintf("%s %s", message, suffix))
	if err != nil {
		return false, err
	}

	input = strings.ToLower(input)
	if input == "" {
		return defaultYes, nil
	}
	return input == "y" || input == "yes", nil
}

// Input reads one line of text, re-asking while it is empty.
func (p *LinePrompter) Input(ctx context.Context, message, placeholder string) (string, error) {
	label := message
	if placeholder != "" {
		label = fmt.Sprintf("%s (e.g. %s)", message, placeholder)
	}
	for {
		input, err := p.ask(ctx, label)
		if err != nil {
			return "", err
		}
		if input != "" {
			return input, nil
		}
	}
}
